package srt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cue is a single subtitle entry: a time interval plus the text it covers.
type Cue struct {
	Index   int
	Start   time.Duration
	End     time.Duration
	Content string
}

// Compose renders cues as an SRT document: blank-line-separated blocks of
// index, "HH:MM:SS,mmm --> HH:MM:SS,mmm" and content. An empty cue list
// yields an empty document.
func Compose(cues []Cue) string {
	var b strings.Builder
	for i, cue := range cues {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strconv.Itoa(cue.Index))
		b.WriteString("\n")
		b.WriteString(FormatTimestamp(cue.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(cue.End))
		b.WriteString("\n")
		b.WriteString(cue.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// FormatTimestamp renders a duration as an SRT timestamp. SRT uses a comma
// before the millisecond field.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second
	millis := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// ParseTimestamp parses an SRT timestamp back into a duration. A period is
// accepted in place of the standard comma.
func ParseTimestamp(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond, nil
}

// CountCues counts non-empty blocks in an SRT document.
func CountCues(doc string) int {
	content := strings.TrimSpace(doc)
	if content == "" {
		return 0
	}
	count := 0
	for _, block := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count
}

// Validate checks a composed document for format issues. It returns a list
// of issues found; an empty list means validation passed. An empty document
// is valid: zero events produce zero cues.
func Validate(doc string) []string {
	var issues []string
	content := strings.TrimSpace(doc)
	if content == "" {
		return issues
	}
	var last time.Duration
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 3 {
			issues = append(issues, fmt.Sprintf("short_block: %q", block))
			continue
		}
		if _, err := strconv.Atoi(strings.TrimSpace(lines[0])); err != nil {
			issues = append(issues, fmt.Sprintf("bad_index: %q", lines[0]))
		}
		parts := strings.Split(lines[1], "-->")
		if len(parts) != 2 {
			issues = append(issues, fmt.Sprintf("bad_timing_line: %q", lines[1]))
			continue
		}
		start, errStart := ParseTimestamp(parts[0])
		end, errEnd := ParseTimestamp(parts[1])
		if errStart != nil || errEnd != nil {
			issues = append(issues, fmt.Sprintf("timestamp_parse_error: %q", lines[1]))
			continue
		}
		if end < start {
			issues = append(issues, fmt.Sprintf("end_before_start: %q", lines[1]))
		}
		if start < last {
			issues = append(issues, fmt.Sprintf("non_monotonic_start: %q", lines[1]))
		}
		last = start
	}
	return issues
}
