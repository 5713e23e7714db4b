// Package captions runs synthesis sessions over the bus: it streams audio
// and word boundaries for each speak request and finishes the session with
// a composed SRT document.
package captions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iorilu/edge-tts/internal/bus"
	"github.com/iorilu/edge-tts/internal/config"
	"github.com/iorilu/edge-tts/internal/cuestore"
	"github.com/iorilu/edge-tts/internal/protocol"
	"github.com/iorilu/edge-tts/internal/srt"
	"github.com/iorilu/edge-tts/internal/submaker"
	"github.com/iorilu/edge-tts/internal/synth"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type Service struct {
	cfg    config.Config
	bus    *bus.Client
	synth  synth.Synthesizer
	store  *cuestore.Store
	sub    *nats.Subscription
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger

	meter         metric.Meter
	documents     metric.Int64Counter
	boundaryCount metric.Int64Counter
}

func NewService(parent context.Context, cfg config.Config, busClient *bus.Client, synthesizer synth.Synthesizer, store *cuestore.Store, log *slog.Logger) *Service {
	ctx, cancel := context.WithCancel(parent)
	s := &Service{
		cfg:    cfg,
		bus:    busClient,
		synth:  synthesizer,
		store:  store,
		ctx:    ctx,
		cancel: cancel,
		logger: log.With(slog.String("component", "caption-service")),
		meter:  otel.Meter("github.com/iorilu/edge-tts/captions"),
	}
	s.initMetrics()
	return s
}

func (s *Service) initMetrics() {
	var err error
	s.documents, err = s.meter.Int64Counter("edge_tts.subtitle_documents",
		metric.WithDescription("Subtitle documents composed"))
	if err != nil {
		s.logger.Warn("failed to create document counter", slogError(err))
	}
	s.boundaryCount, err = s.meter.Int64Counter("edge_tts.word_boundaries",
		metric.WithDescription("Word boundary events received from the synthesizer"))
	if err != nil {
		s.logger.Warn("failed to create boundary counter", slogError(err))
	}
}

func (s *Service) Start() error {
	sub, err := s.bus.Conn().Subscribe(protocol.SubjectSpeak, s.handleSpeak)
	if err != nil {
		return fmt.Errorf("subscribe speak requests: %w", err)
	}
	s.sub = sub
	return nil
}

func (s *Service) Close() {
	s.cancel()
	if s.sub != nil {
		_ = s.sub.Drain()
	}
	s.wg.Wait()
}

func (s *Service) Healthy() bool { return s.sub != nil }

func (s *Service) handleSpeak(msg *nats.Msg) {
	var req protocol.SpeakRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.logger.Warn("failed to decode speak request", slogError(err))
		return
	}
	if req.SessionID == "" || req.Text == "" {
		s.logger.Warn("speak request missing session or text")
		return
	}
	if req.Voice == "" {
		req.Voice = s.cfg.Synthesis.Voice
	}
	if req.WordsInCue < 1 {
		req.WordsInCue = s.cfg.Subtitles.WordsPerCue
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runSession(req)
	}()
}

func (s *Service) runSession(req protocol.SpeakRequest) {
	ctx, cancel := context.WithTimeout(s.ctx, time.Duration(s.cfg.Synthesis.TimeoutMS)*time.Millisecond)
	defer cancel()

	sm := submaker.New(req.Text)
	events, errs := s.synth.Synthesize(ctx, synth.Request{
		SessionID: req.SessionID,
		Text:      req.Text,
		Voice:     req.Voice,
	})

	for events != nil || errs != nil {
		select {
		case evt, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.handleEvent(req, sm, evt)
		case err, ok := <-errs:
			if ok && err != nil {
				// Best effort: a degraded session still yields a
				// document from whatever boundaries arrived.
				s.logger.Warn("synthesis error", slogError(err),
					slog.String("session_id", req.SessionID))
			}
			errs = nil
		case <-ctx.Done():
			s.logger.Warn("synthesis cancelled", slogError(ctx.Err()),
				slog.String("session_id", req.SessionID))
			s.finishSession(req, sm)
			return
		}
	}
	s.finishSession(req, sm)
}

func (s *Service) handleEvent(req protocol.SpeakRequest, sm *submaker.SubMaker, evt synth.Event) {
	switch evt.Type {
	case synth.EventAudio:
		s.publish(protocol.SubjectAudioPrefix+"."+req.SessionID, protocol.AudioChunk{
			SessionID:  req.SessionID,
			Sequence:   evt.Sequence,
			SampleRate: evt.SampleRate,
			Channels:   evt.Channels,
			PCM:        evt.PCM,
			Final:      evt.Final,
		})
	case synth.EventWordBoundary:
		sm.AddCuePart(evt.OffsetTicks, evt.DurationTicks, evt.Text)
		if s.boundaryCount != nil {
			s.boundaryCount.Add(s.ctx, 1)
		}
		s.publish(protocol.SubjectBoundaryPrefix+"."+req.SessionID, protocol.WordBoundary{
			SessionID:     req.SessionID,
			Sequence:      evt.Sequence,
			OffsetTicks:   evt.OffsetTicks,
			DurationTicks: evt.DurationTicks,
			Text:          evt.Text,
		})
	}
}

func (s *Service) finishSession(req protocol.SpeakRequest, sm *submaker.SubMaker) {
	doc := documentFor(req, sm, time.Now().UTC())
	s.publish(protocol.SubjectSubtitlePrefix+"."+req.SessionID, doc)
	if req.ReplySubject != "" {
		s.publish(req.ReplySubject, doc)
	}
	if s.documents != nil {
		s.documents.Add(s.ctx, 1)
	}
	if s.store != nil {
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.store.SaveDocument(saveCtx, cuestore.Document{
			SessionID: doc.SessionID,
			Voice:     doc.Voice,
			CueCount:  doc.CueCount,
			SRT:       doc.SRT,
			CreatedAt: doc.CreatedAt,
		})
		if err != nil {
			s.logger.Warn("failed to persist subtitle document", slogError(err),
				slog.String("session_id", req.SessionID))
		}
	}
	s.logger.Info("session finished",
		slog.String("session_id", req.SessionID),
		slog.Int("cue_count", doc.CueCount),
		slog.Int("words", sm.Len()))
}

// documentFor derives the finished subtitle document from the accumulated
// word boundaries. Zero boundaries produce an empty, zero-cue document.
func documentFor(req protocol.SpeakRequest, sm *submaker.SubMaker, now time.Time) protocol.SubtitleDocument {
	cues := sm.Cues(req.WordsInCue)
	return protocol.SubtitleDocument{
		SessionID: req.SessionID,
		Voice:     req.Voice,
		CueCount:  len(cues),
		SRT:       srt.Compose(cues),
		CreatedAt: now,
	}
}

func (s *Service) publish(subject string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("failed to marshal message", slogError(err), slog.String("subject", subject))
		return
	}
	if err := s.bus.Conn().Publish(subject, data); err != nil {
		s.logger.Warn("failed to publish message", slogError(err), slog.String("subject", subject))
	}
}

func slogError(err error) slog.Attr {
	return slog.String("error", err.Error())
}
