package synth

import "context"

// Request contains parameters to synthesize speech.
type Request struct {
	SessionID string
	Text      string
	Voice     string
}

// EventType discriminates the items in a synthesis stream.
type EventType int

const (
	EventAudio EventType = iota
	EventWordBoundary
)

// Event is one item in a synthesis stream: an audio chunk or a word
// boundary. Boundary timing is in 100-nanosecond ticks, matching what the
// speech service reports.
type Event struct {
	Type       EventType
	SessionID  string
	Sequence   int
	SampleRate int
	Channels   int
	PCM        []byte

	OffsetTicks   int64
	DurationTicks int64
	Text          string

	Final bool
}

// Synthesizer is the contract for producing audio and word boundaries.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (<-chan Event, <-chan error)
}
