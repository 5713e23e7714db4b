package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Bus.Servers[0] != "nats://localhost:4222" {
		t.Fatalf("expected default server, got %v", cfg.Bus.Servers)
	}
	if cfg.Synthesis.Mode != "mock" {
		t.Fatalf("expected mock synthesis mode, got %q", cfg.Synthesis.Mode)
	}
	if cfg.Subtitles.WordsPerCue != 10 {
		t.Fatalf("expected 10 words per cue, got %d", cfg.Subtitles.WordsPerCue)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edge-tts.yaml")
	data := []byte(`
synthesis:
  mode: exec
  command: "piper --json"
  voice: en-GB-SoniaNeural
subtitles:
  words_per_cue: 4
cue_store:
  retention_mode: persistent
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Synthesis.Mode != "exec" || cfg.Synthesis.Command != "piper --json" {
		t.Fatalf("synthesis section not applied: %+v", cfg.Synthesis)
	}
	if cfg.Synthesis.Voice != "en-GB-SoniaNeural" {
		t.Fatalf("voice not applied: %q", cfg.Synthesis.Voice)
	}
	if cfg.Subtitles.WordsPerCue != 4 {
		t.Fatalf("words_per_cue not applied: %d", cfg.Subtitles.WordsPerCue)
	}
	if cfg.CueStore.RetentionMode != "persistent" {
		t.Fatalf("retention mode not applied: %q", cfg.CueStore.RetentionMode)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("EDGE_TTS_BUS_SERVERS", "nats://one:4222, nats://two:4222")
	t.Setenv("EDGE_TTS_BUS_USERNAME", "alice")
	t.Setenv("EDGE_TTS_BUS_PASSWORD", "secret")
	t.Setenv("EDGE_TTS_BUS_TLS_INSECURE", "true")
	t.Setenv("EDGE_TTS_BUS_CONNECT_TIMEOUT_MS", "5000")
	t.Setenv("EDGE_TTS_SYNTHESIS_VOICE", "de-DE-KatjaNeural")
	t.Setenv("EDGE_TTS_SYNTHESIS_SAMPLE_RATE", "16000")
	t.Setenv("EDGE_TTS_SUBTITLES_WORDS_PER_CUE", "6")
	t.Setenv("EDGE_TTS_CUE_STORE_PATH", "./tmp.db")
	t.Setenv("EDGE_TTS_CUE_STORE_RETENTION_MODE", "persistent")
	t.Setenv("EDGE_TTS_CUE_STORE_RETENTION_DAYS", "7")
	t.Setenv("EDGE_TTS_CUE_STORE_MAX_SESSIONS", "123")
	t.Setenv("EDGE_TTS_CUE_STORE_VACUUM_ON_START", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Bus.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %v", cfg.Bus.Servers)
	}
	if cfg.Bus.Username != "alice" || cfg.Bus.Password != "secret" {
		t.Fatalf("expected credentials override")
	}
	if !cfg.Bus.TLSInsecure {
		t.Fatal("expected tls insecure override true")
	}
	if cfg.Bus.ConnectTimeout != 5000 {
		t.Fatalf("expected timeout 5000, got %d", cfg.Bus.ConnectTimeout)
	}
	if cfg.Synthesis.Voice != "de-DE-KatjaNeural" {
		t.Fatalf("expected voice override, got %q", cfg.Synthesis.Voice)
	}
	if cfg.Synthesis.SampleRate != 16000 {
		t.Fatalf("expected sample rate override, got %d", cfg.Synthesis.SampleRate)
	}
	if cfg.Subtitles.WordsPerCue != 6 {
		t.Fatalf("expected words per cue override, got %d", cfg.Subtitles.WordsPerCue)
	}
	if cfg.CueStore.Path != "./tmp.db" {
		t.Fatalf("expected cue store path override")
	}
	if cfg.CueStore.RetentionMode != "persistent" {
		t.Fatalf("expected cue store retention mode override")
	}
	if cfg.CueStore.RetentionDays != 7 {
		t.Fatalf("expected cue store retention days override")
	}
	if cfg.CueStore.MaxSessions != 123 {
		t.Fatalf("expected cue store max sessions override")
	}
	if !cfg.CueStore.VacuumOnStart {
		t.Fatalf("expected cue store vacuum flag override")
	}
}

func TestValidateRejectsBadSynthesisMode(t *testing.T) {
	t.Setenv("EDGE_TTS_SYNTHESIS_MODE", "cloud")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for unknown synthesis mode")
	}
}

func TestValidateRequiresExecCommand(t *testing.T) {
	t.Setenv("EDGE_TTS_SYNTHESIS_MODE", "exec")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for exec mode without command")
	}
}
