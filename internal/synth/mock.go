package synth

import (
	"context"
	"strings"
)

// Pacing for the mock voice, in ticks (100 ns). Each word takes time
// proportional to its length, with a fixed pause between words.
const (
	mockTicksPerRune = 400000 // 40 ms
	mockGapTicks     = 200000 // 20 ms
)

type mockSynth struct {
	sampleRate int
	channels   int
}

// NewMockSynth returns a synthesizer that produces silence plus
// deterministic word boundaries derived from the request text. Words are
// reported without surrounding punctuation, the way the remote service
// reports them against its filtered character stream.
func NewMockSynth(sampleRate, channels int) Synthesizer {
	return &mockSynth{sampleRate: sampleRate, channels: channels}
}

func (m *mockSynth) Synthesize(ctx context.Context, req Request) (<-chan Event, <-chan error) {
	events := make(chan Event)
	errs := make(chan error, 1)
	go func() {
		defer close(events)
		defer close(errs)

		words := strings.Fields(req.Text)
		var offset int64
		sequence := 0
		for _, word := range words {
			word = strings.Trim(word, ",.!?;:\"'")
			if word == "" {
				continue
			}
			duration := int64(len([]rune(word))) * mockTicksPerRune
			boundary := Event{
				Type:          EventWordBoundary,
				SessionID:     req.SessionID,
				Sequence:      sequence,
				OffsetTicks:   offset,
				DurationTicks: duration,
				Text:          word,
			}
			select {
			case events <- boundary:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
			pcm := make([]byte, m.pcmSize(duration))
			chunk := Event{
				Type:       EventAudio,
				SessionID:  req.SessionID,
				Sequence:   sequence,
				SampleRate: m.sampleRate,
				Channels:   m.channels,
				PCM:        pcm,
			}
			select {
			case events <- chunk:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
			offset += duration + mockGapTicks
			sequence++
		}
		final := Event{
			Type:       EventAudio,
			SessionID:  req.SessionID,
			Sequence:   sequence,
			SampleRate: m.sampleRate,
			Channels:   m.channels,
			Final:      true,
		}
		select {
		case events <- final:
		case <-ctx.Done():
			errs <- ctx.Err()
		}
	}()
	return events, errs
}

// pcmSize converts a tick duration into a 16-bit PCM byte count.
func (m *mockSynth) pcmSize(ticks int64) int {
	seconds := float64(ticks) / 1e7
	samples := int(seconds * float64(m.sampleRate))
	return samples * m.channels * 2
}
