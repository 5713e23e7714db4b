package synth

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func collect(t *testing.T, events <-chan Event, errs <-chan error) []Event {
	t.Helper()
	var out []Event
	for events != nil || errs != nil {
		select {
		case evt, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			out = append(out, evt)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				t.Fatalf("synthesis error: %v", err)
			}
		}
	}
	return out
}

func TestMockSynthBoundaries(t *testing.T) {
	m := NewMockSynth(24000, 1)
	events, errs := m.Synthesize(context.Background(), Request{
		SessionID: "s1",
		Text:      "Hello, world! Nice day.",
	})
	all := collect(t, events, errs)

	var boundaries []Event
	var final bool
	for _, evt := range all {
		if evt.Type == EventWordBoundary {
			boundaries = append(boundaries, evt)
		}
		if evt.Final {
			final = true
		}
	}
	if !final {
		t.Fatal("missing final audio event")
	}
	want := []string{"Hello", "world", "Nice", "day"}
	if len(boundaries) != len(want) {
		t.Fatalf("expected %d boundaries, got %d", len(want), len(boundaries))
	}
	var lastEnd int64 = -1
	for i, b := range boundaries {
		if b.Text != want[i] {
			t.Fatalf("boundary %d text %q, want %q", i, b.Text, want[i])
		}
		if b.OffsetTicks <= lastEnd {
			t.Fatalf("boundary %d does not advance: offset %d after end %d", i, b.OffsetTicks, lastEnd)
		}
		if b.DurationTicks <= 0 {
			t.Fatalf("boundary %d has non-positive duration", i)
		}
		lastEnd = b.OffsetTicks + b.DurationTicks
	}
}

func TestMockSynthCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMockSynth(24000, 1)
	events, errs := m.Synthesize(ctx, Request{SessionID: "s1", Text: "one two three"})
	if err := <-errs; err == nil {
		t.Fatal("expected cancellation error")
	}
	for range events {
	}
}

func TestWriteWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	pcm := make([]byte, 4800) // 100 ms of 24 kHz mono 16-bit silence
	if err := WriteWAV(path, pcm, 24000, 1); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() <= int64(len(pcm)) {
		t.Fatalf("wav file should carry a header, size %d", info.Size())
	}
	if err := WriteWAV(filepath.Join(t.TempDir(), "bad.wav"), []byte{1}, 24000, 1); err == nil {
		t.Fatal("expected error for unaligned pcm")
	}
}
