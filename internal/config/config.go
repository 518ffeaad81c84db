// Package config resolves service settings from a .env file, an optional YAML
// file, and the process environment. Environment variables win.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Transcriber backends.
const (
	BackendWhisper = "whisper"
	BackendGateway = "gateway"
	BackendMock    = "mock"
)

// Config holds every setting the service and CLI read.
type Config struct {
	Port         string        `yaml:"port"`
	DBPath       string        `yaml:"db_path"`
	StoreTimeout time.Duration `yaml:"store_timeout"`
	StagingDir   string        `yaml:"staging_dir"`
	MaxUploadMB  int64         `yaml:"max_upload_mb"`
	CORSOrigins  []string      `yaml:"cors_origins"`

	Transcriber Transcriber `yaml:"transcriber"`
}

// Transcriber selects and configures the speech-recognition backend.
type Transcriber struct {
	Backend  string        `yaml:"backend"`
	Timeout  time.Duration `yaml:"timeout"`
	Language string        `yaml:"language"`

	WhisperURL    string `yaml:"whisper_url"`
	WhisperModel  string `yaml:"whisper_model"`
	WhisperAPIKey string `yaml:"whisper_api_key"`

	GatewayURL string `yaml:"gateway_url"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:         "8080",
		DBPath:       "transcriptions.db",
		StoreTimeout: 30 * time.Second,
		MaxUploadMB:  100,
		CORSOrigins:  []string{"http://localhost:3000"},
		Transcriber: Transcriber{
			Backend:      BackendWhisper,
			Timeout:      120 * time.Second,
			Language:     "en",
			WhisperURL:   "https://api.openai.com",
			WhisperModel: "whisper-1",
		},
	}
}

// Load resolves configuration: defaults, then the YAML file named by
// CONFIG_FILE (if set), then environment variables. A .env file in the
// working directory is loaded into the environment first when present.
func Load() (Config, error) {
	_ = godotenv.Load() // loads .env

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	setString("PORT", &c.Port)
	setString("DB_PATH", &c.DBPath)
	setString("STAGING_DIR", &c.StagingDir)
	if err := setDuration("STORE_TIMEOUT", &c.StoreTimeout); err != nil {
		return err
	}
	if v := getenv("MAX_UPLOAD_MB"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_MB: %w", err)
		}
		c.MaxUploadMB = n
	}
	if v := getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}

	t := &c.Transcriber
	setString("TRANSCRIBER", &t.Backend)
	setString("WHISPER_URL", &t.WhisperURL)
	setString("WHISPER_MODEL", &t.WhisperModel)
	setString("WHISPER_API_KEY", &t.WhisperAPIKey)
	setString("WHISPER_LANGUAGE", &t.Language)
	setString("TRANSCRIBE_URL", &t.GatewayURL)
	if err := setDuration("TRANSCRIBE_TIMEOUT", &t.Timeout); err != nil {
		return err
	}
	if getenv("USE_MOCK_TRANSCRIBE") == "true" {
		t.Backend = BackendMock
	}
	return nil
}

// Validate reports settings that would make the service unusable.
func (c Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH is required"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	if c.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_MB must be positive"))
	}
	switch c.Transcriber.Backend {
	case BackendWhisper:
		if c.Transcriber.WhisperURL == "" {
			errs = append(errs, errors.New("WHISPER_URL is required for the whisper backend"))
		}
	case BackendGateway:
		if c.Transcriber.GatewayURL == "" {
			errs = append(errs, errors.New("TRANSCRIBE_URL is required for the gateway backend"))
		}
	case BackendMock:
	default:
		errs = append(errs, fmt.Errorf("unknown TRANSCRIBER %q (supported: whisper, gateway, mock)", c.Transcriber.Backend))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

// MaxUploadBytes returns the request body limit for uploads.
func (c Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
