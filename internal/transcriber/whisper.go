package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// WhisperConfig configures the OpenAI-compatible backend.
type WhisperConfig struct {
	BaseURL  string
	APIKey   string
	Model    string
	Language string
	Client   *http.Client

	// MaxElapsed bounds retries of one upload. Defaults to 12s.
	MaxElapsed time.Duration
}

// Whisper transcribes through POST {BaseURL}/v1/audio/transcriptions.
type Whisper struct {
	cfg WhisperConfig
	log *logrus.Entry
}

type whisperResp struct {
	Text string `json:"text"`
}

// NewWhisper creates a Whisper backend.
func NewWhisper(cfg WhisperConfig, log *logrus.Entry) *Whisper {
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 120 * time.Second}
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = defaultMaxElapsed
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	return &Whisper{cfg: cfg, log: log.WithField("backend", "whisper")}
}

// Transcribe implements Transcriber.
func (w *Whisper) Transcribe(ctx context.Context, audioPath string) (string, error) {
	body, contentType, err := multipartFile(audioPath, "file", map[string]string{
		"model":           w.cfg.Model,
		"language":        w.cfg.Language,
		"response_format": "json",
	})
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(w.cfg.BaseURL, "/") + "/v1/audio/transcriptions"
	newReq := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body.Bytes()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		if w.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+w.cfg.APIKey)
		}
		return req, nil
	}

	start := time.Now()
	var resp whisperResp
	if err := doJSON(ctx, w.cfg.Client, w.cfg.MaxElapsed, newReq, &resp); err != nil {
		return "", fmt.Errorf("whisper transcribe: %w", err)
	}
	w.log.WithFields(logrus.Fields{
		"file":        audioPath,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("whisper transcription finished")

	if strings.TrimSpace(resp.Text) == "" {
		return "", ErrNoResult
	}
	return resp.Text, nil
}
