package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "transcriptions.db", cfg.DBPath)
	assert.Equal(t, 30*time.Second, cfg.StoreTimeout)
	assert.Equal(t, int64(100<<20), cfg.MaxUploadBytes())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, BackendWhisper, cfg.Transcriber.Backend)
	assert.Equal(t, "en", cfg.Transcriber.Language)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
db_path: /var/lib/transcriptions.db
store_timeout: 5s
cors_origins:
  - https://app.example.com
transcriber:
  backend: gateway
  gateway_url: http://asr.internal
  timeout: 1m
`), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "/var/lib/transcriptions.db", cfg.DBPath)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, BackendGateway, cfg.Transcriber.Backend)
	assert.Equal(t, "http://asr.internal", cfg.Transcriber.GatewayURL)
	assert.Equal(t, time.Minute, cfg.Transcriber.Timeout)
}

func TestLoad_MockFlagOverridesBackend(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TRANSCRIBER", BackendGateway)
	t.Setenv("USE_MOCK_TRANSCRIBE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendMock, cfg.Transcriber.Backend)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORE_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_TIMEOUT")
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults ok", func(*Config) {}, ""},
		{"missing db path", func(c *Config) { c.DBPath = "" }, "DB_PATH is required"},
		{"zero timeout", func(c *Config) { c.StoreTimeout = 0 }, "STORE_TIMEOUT must be positive"},
		{"gateway needs url", func(c *Config) { c.Transcriber.Backend = BackendGateway }, "TRANSCRIBE_URL is required"},
		{"unknown backend", func(c *Config) { c.Transcriber.Backend = "vosk" }, `unknown TRANSCRIBER "vosk"`},
		{"mock needs nothing", func(c *Config) {
			c.Transcriber.Backend = BackendMock
			c.Transcriber.WhisperURL = ""
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
