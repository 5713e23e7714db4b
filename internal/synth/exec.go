package synth

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"

	"github.com/mattn/go-shellwords"
)

type execSynth struct {
	cmd        []string
	sampleRate int
	channels   int
	mu         sync.Mutex
}

type execRequest struct {
	Text       string `json:"text"`
	Voice      string `json:"voice"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// execEvent is one stdout line from the backend process: an audio line
// carries pcm_base64, a boundary line carries word plus tick timing.
type execEvent struct {
	PCMBase64     string `json:"pcm_base64,omitempty"`
	Word          string `json:"word,omitempty"`
	OffsetTicks   int64  `json:"offset_ticks,omitempty"`
	DurationTicks int64  `json:"duration_ticks,omitempty"`
	Final         bool   `json:"final,omitempty"`
}

// NewExecSynth runs an external synthesis command. The request is written
// to its stdin as JSON; the command answers with JSON lines, one event per
// line.
func NewExecSynth(command string, sampleRate, channels int) (Synthesizer, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse synthesis command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("synthesis command empty")
	}
	return &execSynth{cmd: args, sampleRate: sampleRate, channels: channels}, nil
}

func (e *execSynth) Synthesize(ctx context.Context, req Request) (<-chan Event, <-chan error) {
	e.mu.Lock()
	events := make(chan Event)
	errs := make(chan error, 1)
	go func() {
		defer close(events)
		defer close(errs)
		defer e.mu.Unlock()

		reqPayload := execRequest{
			Text:       req.Text,
			Voice:      req.Voice,
			SampleRate: e.sampleRate,
			Channels:   e.channels,
		}
		data, err := json.Marshal(reqPayload)
		if err != nil {
			errs <- err
			return
		}

		base := e.cmd[0]
		args := append([]string{}, e.cmd[1:]...)
		cmd := exec.CommandContext(ctx, base, args...)
		stdin, err := cmd.StdinPipe()
		if err != nil {
			errs <- err
			return
		}
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			errs <- err
			return
		}
		if err := cmd.Start(); err != nil {
			errs <- err
			return
		}

		if _, err := stdin.Write(data); err != nil {
			errs <- err
			cmd.Wait()
			return
		}
		stdin.Close()

		scanner := bufio.NewScanner(stdout)
		audioSeq := 0
		boundarySeq := 0
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			var resp execEvent
			if err := json.Unmarshal(line, &resp); err != nil {
				errs <- err
				cmd.Wait()
				return
			}
			var evt Event
			if resp.Word != "" {
				evt = Event{
					Type:          EventWordBoundary,
					SessionID:     req.SessionID,
					Sequence:      boundarySeq,
					OffsetTicks:   resp.OffsetTicks,
					DurationTicks: resp.DurationTicks,
					Text:          resp.Word,
				}
				boundarySeq++
			} else {
				pcm, err := base64.StdEncoding.DecodeString(resp.PCMBase64)
				if err != nil {
					errs <- err
					cmd.Wait()
					return
				}
				evt = Event{
					Type:       EventAudio,
					SessionID:  req.SessionID,
					Sequence:   audioSeq,
					SampleRate: e.sampleRate,
					Channels:   e.channels,
					PCM:        pcm,
					Final:      resp.Final,
				}
				audioSeq++
			}
			select {
			case events <- evt:
			case <-ctx.Done():
				errs <- ctx.Err()
				cmd.Wait()
				return
			}
		}
		err = cmd.Wait()
		if err != nil {
			errs <- err
			return
		}
		if scanErr := scanner.Err(); scanErr != nil {
			errs <- scanErr
		}
	}()
	return events, errs
}
