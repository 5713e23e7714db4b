package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iorilu/edge-tts/internal/bus"
	"github.com/iorilu/edge-tts/internal/captions"
	"github.com/iorilu/edge-tts/internal/config"
	"github.com/iorilu/edge-tts/internal/cuestore"
	"github.com/iorilu/edge-tts/internal/natsserver"
	"github.com/iorilu/edge-tts/internal/synth"
	"github.com/iorilu/edge-tts/internal/voices"
)

// Runtime owns the daemon lifecycle: telemetry, bus, cue store, the
// caption service and the health endpoints.
type Runtime struct {
	cfg           config.Config
	logger        *slog.Logger
	httpServer    *http.Server
	metricsServer *http.Server
	tracerClose   func(context.Context) error
	ready         atomic.Bool
	wg            sync.WaitGroup
}

func New(cfg config.Config, logger *slog.Logger) *Runtime {
	return &Runtime{
		cfg:    cfg,
		logger: logger,
	}
}

func (r *Runtime) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownTelemetry, metricsHandler, err := setupTelemetry(r.cfg, r.logger)
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	r.tracerClose = shutdownTelemetry

	embedded, err := natsserver.Start(r.cfg.Bus, r.logger)
	if err != nil {
		return fmt.Errorf("failed to start embedded bus: %w", err)
	}
	defer embedded.Shutdown()

	busClient, err := bus.Connect(r.cfg.Bus, r.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to bus: %w", err)
	}
	defer busClient.Close()

	store, err := cuestore.Open(ctx, r.cfg.CueStore, r.logger)
	if err != nil {
		return fmt.Errorf("failed to open cue store: %w", err)
	}
	defer store.Close()

	synthesizer, err := buildSynthesizer(r.cfg.Synthesis)
	if err != nil {
		return fmt.Errorf("failed to build synthesizer: %w", err)
	}

	catalog, err := voices.Load(ctx, r.cfg.Subtitles.VoiceListURL)
	if err != nil {
		r.logger.Warn("failed to load voice catalog", slog.String("error", err.Error()))
	} else {
		r.logger.Info("voice catalog loaded", slog.Int("voices", len(catalog.All())))
	}

	service := captions.NewService(ctx, r.cfg, busClient, synthesizer, store, r.logger)
	if err := service.Start(); err != nil {
		return fmt.Errorf("failed to start caption service: %w", err)
	}
	defer service.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", r.handleHealth)
	mux.HandleFunc("/readyz", r.handleReady)

	addr := fmt.Sprintf("%s:%d", r.cfg.HTTP.Bind, r.cfg.HTTP.Port)
	r.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	if metricsHandler != nil {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", metricsHandler)
		r.metricsServer = &http.Server{
			Addr:              r.cfg.Telemetry.PrometheusBind,
			Handler:           metricsMux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			if err := r.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				r.logger.Error("metrics server failed", slog.String("error", err.Error()))
			}
		}()
	}

	r.ready.Store(true)
	r.logger.Info("runtime started", slog.String("addr", addr))

	<-ctx.Done()
	r.logger.Info("runtime stopping")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := r.httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Error("http shutdown error", slog.String("error", err.Error()))
	}
	if r.metricsServer != nil {
		if err := r.metricsServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Error("metrics shutdown error", slog.String("error", err.Error()))
		}
	}
	r.wg.Wait()

	if r.tracerClose != nil {
		if err := r.tracerClose(shutdownCtx); err != nil {
			r.logger.Error("telemetry shutdown error", slog.String("error", err.Error()))
		}
	}

	return nil
}

func buildSynthesizer(cfg config.SynthesisConfig) (synth.Synthesizer, error) {
	switch cfg.Mode {
	case "exec":
		return synth.NewExecSynth(cfg.Command, cfg.SampleRate, cfg.Channels)
	default:
		return synth.NewMockSynth(cfg.SampleRate, cfg.Channels), nil
	}
}

func (r *Runtime) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (r *Runtime) handleReady(w http.ResponseWriter, _ *http.Request) {
	if r.ready.Load() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready"))
}
