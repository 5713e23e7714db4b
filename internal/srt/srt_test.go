package srt

import (
	"strings"
	"testing"
	"time"
)

func TestComposeEmpty(t *testing.T) {
	if doc := Compose(nil); doc != "" {
		t.Fatalf("expected empty document, got %q", doc)
	}
}

func TestComposeBlocks(t *testing.T) {
	cues := []Cue{
		{Index: 1, Start: 0, End: 200 * time.Millisecond, Content: "Hello, world"},
		{Index: 3, Start: 200 * time.Millisecond, End: 400 * time.Millisecond, Content: "Nice day"},
	}
	doc := Compose(cues)
	want := "1\n00:00:00,000 --> 00:00:00,200\nHello, world\n\n3\n00:00:00,200 --> 00:00:00,400\nNice day\n"
	if doc != want {
		t.Fatalf("unexpected document:\n%q\nwant:\n%q", doc, want)
	}
	if n := CountCues(doc); n != 2 {
		t.Fatalf("expected 2 cues, got %d", n)
	}
}

func TestFormatTimestamp(t *testing.T) {
	d := time.Hour + 2*time.Minute + 3*time.Second + 45*time.Millisecond
	if got := FormatTimestamp(d); got != "01:02:03,045" {
		t.Fatalf("unexpected timestamp %q", got)
	}
	if got := FormatTimestamp(-time.Second); got != "00:00:00,000" {
		t.Fatalf("negative duration should clamp to zero, got %q", got)
	}
}

func TestParseTimestampRoundTrip(t *testing.T) {
	d := 2*time.Hour + 15*time.Minute + 59*time.Second + 999*time.Millisecond
	parsed, err := ParseTimestamp(FormatTimestamp(d))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != d {
		t.Fatalf("round trip mismatch: got %v want %v", parsed, d)
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, value := range []string{"", "1:2", "aa:bb:cc,ddd", "00:00:00"} {
		if _, err := ParseTimestamp(value); err == nil {
			t.Fatalf("expected error for %q", value)
		}
	}
}

func TestValidate(t *testing.T) {
	cues := []Cue{
		{Index: 1, Start: 0, End: time.Second, Content: "one"},
		{Index: 2, Start: time.Second, End: 2 * time.Second, Content: "two"},
	}
	if issues := Validate(Compose(cues)); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
	if issues := Validate(""); len(issues) != 0 {
		t.Fatalf("empty document should be valid, got %v", issues)
	}
	bad := "1\n00:00:02,000 --> 00:00:01,000\nbackwards\n"
	issues := Validate(bad)
	if len(issues) != 1 || !strings.HasPrefix(issues[0], "end_before_start") {
		t.Fatalf("expected end_before_start issue, got %v", issues)
	}
}
