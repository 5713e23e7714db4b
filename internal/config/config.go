package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type TelemetryConfig struct {
	LogLevel       string `yaml:"log_level"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	OTLPInsecure   bool   `yaml:"otlp_insecure"`
	PrometheusBind string `yaml:"prometheus_bind"`
}

type HTTPConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type BusConfig struct {
	Embedded       bool     `yaml:"embedded"`
	Port           int      `yaml:"port"`
	StoreDir       string   `yaml:"store_dir"`
	Servers        []string `yaml:"servers"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	Token          string   `yaml:"token"`
	TLSInsecure    bool     `yaml:"tls_insecure"`
	ConnectTimeout int      `yaml:"connect_timeout_ms"`
}

type SynthesisConfig struct {
	Mode       string `yaml:"mode"` // mock, exec
	Command    string `yaml:"command"`
	Voice      string `yaml:"voice"`
	SampleRate int    `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`
	TimeoutMS  int    `yaml:"timeout_ms"`
}

type SubtitlesConfig struct {
	WordsPerCue  int    `yaml:"words_per_cue"`
	VoiceListURL string `yaml:"voice_list_url"`
}

type CueStoreConfig struct {
	Path          string `yaml:"path"`
	RetentionMode string `yaml:"retention_mode"`
	RetentionDays int    `yaml:"retention_days"`
	MaxSessions   int    `yaml:"max_sessions"`
	VacuumOnStart bool   `yaml:"vacuum_on_start"`
}

type Config struct {
	RuntimeName string          `yaml:"runtime_name"`
	Environment string          `yaml:"environment"`
	HTTP        HTTPConfig      `yaml:"http"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
	Bus         BusConfig       `yaml:"bus"`
	Synthesis   SynthesisConfig `yaml:"synthesis"`
	Subtitles   SubtitlesConfig `yaml:"subtitles"`
	CueStore    CueStoreConfig  `yaml:"cue_store"`
}

func Default() Config {
	return Config{
		RuntimeName: "edge-tts",
		Environment: "development",
		HTTP: HTTPConfig{
			Bind: "0.0.0.0",
			Port: 8080,
		},
		Telemetry: TelemetryConfig{
			LogLevel:       "info",
			OTLPEndpoint:   "",
			OTLPInsecure:   true,
			PrometheusBind: ":9091",
		},
		Bus: BusConfig{
			Embedded:       true,
			Port:           4222,
			StoreDir:       "./data/nats",
			Servers:        []string{"nats://localhost:4222"},
			ConnectTimeout: 2000,
		},
		Synthesis: SynthesisConfig{
			Mode:       "mock",
			Voice:      "en-US-AriaNeural",
			SampleRate: 24000,
			Channels:   1,
			TimeoutMS:  45000,
		},
		Subtitles: SubtitlesConfig{
			WordsPerCue: 10,
		},
		CueStore: CueStoreConfig{
			Path:          "./data/edge-tts-cues.db",
			RetentionMode: "session",
			RetentionDays: 30,
			MaxSessions:   10000,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.RuntimeName, "EDGE_TTS_RUNTIME_NAME")
	overrideString(&cfg.Environment, "EDGE_TTS_ENVIRONMENT")
	overrideString(&cfg.HTTP.Bind, "EDGE_TTS_HTTP_BIND")
	overrideInt(&cfg.HTTP.Port, "EDGE_TTS_HTTP_PORT")
	overrideString(&cfg.Telemetry.LogLevel, "EDGE_TTS_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "EDGE_TTS_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "EDGE_TTS_TELEMETRY_OTLP_INSECURE")
	overrideString(&cfg.Telemetry.PrometheusBind, "EDGE_TTS_TELEMETRY_PROMETHEUS_BIND")
	overrideBool(&cfg.Bus.Embedded, "EDGE_TTS_BUS_EMBEDDED")
	overrideInt(&cfg.Bus.Port, "EDGE_TTS_BUS_PORT")
	overrideString(&cfg.Bus.StoreDir, "EDGE_TTS_BUS_STORE_DIR")
	overrideStringSlice(&cfg.Bus.Servers, "EDGE_TTS_BUS_SERVERS")
	overrideString(&cfg.Bus.Username, "EDGE_TTS_BUS_USERNAME")
	overrideString(&cfg.Bus.Password, "EDGE_TTS_BUS_PASSWORD")
	overrideString(&cfg.Bus.Token, "EDGE_TTS_BUS_TOKEN")
	overrideBool(&cfg.Bus.TLSInsecure, "EDGE_TTS_BUS_TLS_INSECURE")
	overrideInt(&cfg.Bus.ConnectTimeout, "EDGE_TTS_BUS_CONNECT_TIMEOUT_MS")
	overrideString(&cfg.Synthesis.Mode, "EDGE_TTS_SYNTHESIS_MODE")
	overrideString(&cfg.Synthesis.Command, "EDGE_TTS_SYNTHESIS_COMMAND")
	overrideString(&cfg.Synthesis.Voice, "EDGE_TTS_SYNTHESIS_VOICE")
	overrideInt(&cfg.Synthesis.SampleRate, "EDGE_TTS_SYNTHESIS_SAMPLE_RATE")
	overrideInt(&cfg.Synthesis.Channels, "EDGE_TTS_SYNTHESIS_CHANNELS")
	overrideInt(&cfg.Synthesis.TimeoutMS, "EDGE_TTS_SYNTHESIS_TIMEOUT_MS")
	overrideInt(&cfg.Subtitles.WordsPerCue, "EDGE_TTS_SUBTITLES_WORDS_PER_CUE")
	overrideString(&cfg.Subtitles.VoiceListURL, "EDGE_TTS_SUBTITLES_VOICE_LIST_URL")
	overrideString(&cfg.CueStore.Path, "EDGE_TTS_CUE_STORE_PATH")
	overrideString(&cfg.CueStore.RetentionMode, "EDGE_TTS_CUE_STORE_RETENTION_MODE")
	overrideInt(&cfg.CueStore.RetentionDays, "EDGE_TTS_CUE_STORE_RETENTION_DAYS")
	overrideInt(&cfg.CueStore.MaxSessions, "EDGE_TTS_CUE_STORE_MAX_SESSIONS")
	overrideBool(&cfg.CueStore.VacuumOnStart, "EDGE_TTS_CUE_STORE_VACUUM_ON_START")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideStringSlice(target *[]string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		parts := strings.Split(value, ",")
		var trimmed []string
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			*target = trimmed
		}
	}
}

func validate(cfg Config) error {
	if cfg.RuntimeName == "" {
		return errors.New("runtime_name must not be empty")
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return errors.New("http.port must be between 1 and 65535")
	}
	if cfg.Bus.Embedded {
		if cfg.Bus.Port <= 0 || cfg.Bus.Port > 65535 {
			return errors.New("bus.port must be between 1 and 65535 when embedded mode is enabled")
		}
	} else {
		if len(cfg.Bus.Servers) == 0 {
			return errors.New("bus.servers must not be empty when embedded mode is disabled")
		}
	}
	switch cfg.Synthesis.Mode {
	case "mock", "exec":
	default:
		return errors.New("synthesis.mode must be one of mock|exec")
	}
	if cfg.Synthesis.Mode == "exec" && cfg.Synthesis.Command == "" {
		return errors.New("synthesis.command must be set when mode=exec")
	}
	if cfg.Synthesis.SampleRate <= 0 {
		return errors.New("synthesis.sample_rate must be positive")
	}
	if cfg.Synthesis.Channels <= 0 {
		return errors.New("synthesis.channels must be positive")
	}
	if cfg.Synthesis.TimeoutMS <= 0 {
		return errors.New("synthesis.timeout_ms must be positive")
	}
	if cfg.Subtitles.WordsPerCue < 1 {
		return errors.New("subtitles.words_per_cue must be >= 1")
	}
	if cfg.CueStore.Path == "" {
		return errors.New("cue_store.path must not be empty")
	}
	switch cfg.CueStore.RetentionMode {
	case "ephemeral", "session", "persistent":
		// ok
	default:
		return errors.New("cue_store.retention_mode must be one of ephemeral|session|persistent")
	}
	if cfg.CueStore.RetentionDays < 0 {
		return errors.New("cue_store.retention_days must be >= 0")
	}
	if cfg.Telemetry.PrometheusBind == "" {
		return errors.New("telemetry.prometheus_bind must not be empty")
	}
	return nil
}
