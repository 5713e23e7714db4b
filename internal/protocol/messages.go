package protocol

import "time"

// SpeakRequest asks the caption service to synthesize text and produce
// subtitles for it.
type SpeakRequest struct {
	SessionID    string `json:"session_id"`
	Text         string `json:"text"`
	Voice        string `json:"voice,omitempty"`
	WordsInCue   int    `json:"words_in_cue,omitempty"`
	ReplySubject string `json:"reply_subject,omitempty"`
}

// AudioChunk carries synthesized PCM data for a session.
type AudioChunk struct {
	SessionID  string `json:"session_id"`
	Sequence   int    `json:"sequence"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	PCM        []byte `json:"pcm"`
	Final      bool   `json:"final"`
}

// WordBoundary reports one spoken word with timing in 100-nanosecond ticks.
type WordBoundary struct {
	SessionID     string `json:"session_id"`
	Sequence      int    `json:"sequence"`
	OffsetTicks   int64  `json:"offset_ticks"`
	DurationTicks int64  `json:"duration_ticks"`
	Text          string `json:"text"`
}

// SubtitleDocument is the finished SRT output for a session.
type SubtitleDocument struct {
	SessionID string    `json:"session_id"`
	Voice     string    `json:"voice,omitempty"`
	CueCount  int       `json:"cue_count"`
	SRT       string    `json:"srt"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	SubjectSpeak          = "tts.speak"
	SubjectAudioPrefix    = "tts.audio"
	SubjectBoundaryPrefix = "tts.boundary"
	SubjectSubtitlePrefix = "tts.subtitle"
)
