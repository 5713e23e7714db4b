// Package submaker turns timed word-boundary events from a speech
// synthesizer into subtitle cues quoting spans of the original prompt.
//
// The synthesizer reports each word against a filtered character stream
// (spaces and commas stripped), so cue boundaries cannot be read off the
// events directly. SubMaker reconciles the two domains: it projects the
// prompt onto the alphabet actually seen in word events, locates each word
// group inside that projection, and maps the match back to original-text
// indices so the emitted cue restores the stripped punctuation and spacing.
package submaker

import (
	"strings"
	"time"

	"github.com/iorilu/edge-tts/internal/srt"
)

// DefaultWordsInCue is the customary group size for Cues and GetSRT.
// Callers passing a value below 1 get single-word cues instead.
const DefaultWordsInCue = 10

// SubMaker accumulates word-boundary events for a fixed prompt. Appends and
// cue generation are not safe for concurrent use; cue generation alone is a
// read-only derivation and may repeat any number of times.
type SubMaker struct {
	fullPrompt []rune
	offsets    [][2]int64 // (start, end) in ticks, one per word
	texts      []string
	chars      map[rune]struct{}
}

// New creates a SubMaker over the full text that was synthesized.
func New(fullPrompt string) *SubMaker {
	return &SubMaker{
		fullPrompt: []rune(fullPrompt),
		chars:      make(map[rune]struct{}),
	}
}

// AddCuePart records one word-boundary event: an offset and duration in
// ticks plus the reported word text. Events are trusted to arrive in
// non-decreasing time order matching left-to-right occurrence in the
// prompt; nothing is validated here.
func (s *SubMaker) AddCuePart(offsetTicks, durationTicks int64, text string) {
	s.offsets = append(s.offsets, [2]int64{offsetTicks, offsetTicks + durationTicks})
	s.texts = append(s.texts, text)
	for _, r := range text {
		s.chars[r] = struct{}{}
	}
}

// Len reports how many word-boundary events have been added.
func (s *SubMaker) Len() int {
	return len(s.offsets)
}

// FilteredPrompt projects the prompt onto the characters seen in word
// events. Space and comma are excluded from the matching alphabet: word
// text carries them but they are not reliably matchable against the
// original punctuation and spacing. It derives a fresh view from the
// current event list and does not mutate the SubMaker.
func (s *SubMaker) FilteredPrompt() *FilteredText {
	retain := make(map[rune]struct{}, len(s.chars))
	for r := range s.chars {
		if r == ' ' || r == ',' {
			continue
		}
		retain[r] = struct{}{}
	}
	ft := NewFilteredText(string(s.fullPrompt))
	ft.FilterText(retain)
	return ft
}

// Cues derives subtitle cue records from the accumulated events, grouping
// wordsInCue consecutive words per cue (the final group may be shorter).
// Zero events yield zero cues. Generation never fails: a missed match or
// out-of-range lookup degrades to start-of-prompt or end-of-prompt bounds.
func (s *SubMaker) Cues(wordsInCue int) []srt.Cue {
	if len(s.offsets) == 0 {
		return nil
	}
	if wordsInCue < 1 {
		wordsInCue = 1
	}
	if wordsInCue > len(s.offsets) {
		wordsInCue = len(s.offsets)
	}

	ft := s.FilteredPrompt()
	filtered := ft.Filtered()

	var cues []srt.Cue
	lastFilteredIndex := 0
	for i := 0; i < len(s.offsets); i += wordsInCue {
		end := i + wordsInCue
		if end > len(s.offsets) {
			end = len(s.offsets)
		}

		startTime := ticksToDuration(s.offsets[i][0])
		endTime := ticksToDuration(s.offsets[end-1][1])

		matchText := []rune(stripUnmatchable(strings.Join(s.texts[i:end], "")))

		// The search never looks behind the cursor: matching strictly
		// advances through the filtered prompt, which is what keeps a
		// repeated word from re-matching an earlier occurrence.
		fendIndex := -1
		if at := indexRunes(filtered, matchText, lastFilteredIndex); at >= 0 {
			fendIndex = at + len(matchText) - 1
		}

		endIndex := ft.OriginalIndex(fendIndex, len(s.fullPrompt)-1)
		startIndex := ft.OriginalIndex(lastFilteredIndex, 0)

		// An empty match (all of the group's text was stripped) can put
		// the end bound before the start; the cue degrades to empty
		// content rather than failing.
		content := ""
		if endIndex+1 > startIndex {
			content = string(s.fullPrompt[startIndex : endIndex+1])
		}

		cues = append(cues, srt.Cue{
			Index:   i + 1,
			Start:   startTime,
			End:     endTime,
			Content: content,
		})
		lastFilteredIndex = fendIndex + 1
	}
	return cues
}

// GetSRT composes the derived cues into an SRT document. Zero events
// produce an empty document.
func (s *SubMaker) GetSRT(wordsInCue int) string {
	return srt.Compose(s.Cues(wordsInCue))
}

func ticksToDuration(ticks int64) time.Duration {
	return time.Duration(ticks) * 100 * time.Nanosecond
}

func stripUnmatchable(text string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == ',' {
			return -1
		}
		return r
	}, text)
}

// indexRunes finds the first occurrence of needle in haystack at or after
// from. An empty needle matches at from. Returns -1 when absent.
func indexRunes(haystack, needle []rune, from int) int {
	if from < 0 {
		from = 0
	}
	if from > len(haystack) {
		return -1
	}
	if len(needle) == 0 {
		return from
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
