// Package transcriber provides speech-to-text backends.
//
// Supported backends:
//   - whisper: OpenAI-compatible /v1/audio/transcriptions endpoint
//   - gateway: asynchronous ASR gateway (publish, poll, download)
//   - mock: deterministic text for local runs and tests
package transcriber

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"voice-transcribe-go/internal/config"
)

// ErrNoResult signals that the backend finished without usable text.
var ErrNoResult = errors.New("transcription produced no result")

// Transcriber converts an audio file on disk to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Func adapts a function to the Transcriber interface.
type Func func(ctx context.Context, audioPath string) (string, error)

// Transcribe implements Transcriber.
func (f Func) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return f(ctx, audioPath)
}

// New creates the backend selected by cfg.Backend.
func New(cfg config.Transcriber, log *logrus.Entry) (Transcriber, error) {
	hc := &http.Client{Timeout: cfg.Timeout}
	switch cfg.Backend {
	case config.BackendWhisper, "":
		return NewWhisper(WhisperConfig{
			BaseURL:  cfg.WhisperURL,
			APIKey:   cfg.WhisperAPIKey,
			Model:    cfg.WhisperModel,
			Language: cfg.Language,
			Client:   hc,
		}, log), nil
	case config.BackendGateway:
		return NewGateway(GatewayConfig{
			BaseURL: cfg.GatewayURL,
			Client:  hc,
		}, log), nil
	case config.BackendMock:
		return Mock{}, nil
	default:
		return nil, fmt.Errorf("transcriber: unknown backend %q (supported: whisper, gateway, mock)", cfg.Backend)
	}
}
