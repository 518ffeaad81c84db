package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// GatewayConfig configures the asynchronous ASR gateway backend.
type GatewayConfig struct {
	BaseURL string
	Client  *http.Client

	// CallType is sent with every publish. Defaults to "PNS".
	CallType string

	// PollInterval and MaxPolls bound the wait for a queued job.
	// Defaults: 1.5s and 40 (about a minute).
	PollInterval time.Duration
	MaxPolls     int

	// MaxElapsed bounds retries of one HTTP exchange. Defaults to 12s.
	MaxElapsed time.Duration
}

// Gateway publishes audio to an ASR gateway, polls until the job settles,
// then downloads the transcript text.
type Gateway struct {
	cfg GatewayConfig
	log *logrus.Entry
}

type PublishSuccessResponse struct {
	Code   int    `json:"Code"`
	Status string `json:"Status"`
	Data   struct {
		MediaId          string `json:"MediaId"`
		Status           string `json:"Status"`
		LanguageId       int    `json:"LanguageId"`
		TranscriptionURL string `json:"TranscriptionURL"`
		WordsCount       int    `json:"WordsCount"`
	} `json:"Data"`
	Reason   string `json:"Reason,omitempty"`
	UniqueId string `json:"UniqueId,omitempty"`
}

type StatusResponse struct {
	Code   int    `json:"Code"`
	Status string `json:"Status"`
	Data   struct {
		AudioURL             string `json:"AudioURL"`
		LanguageId           int    `json:"LanguageId"`
		Status               string `json:"Status"`
		TranscriptionTextURL string `json:"TranscriptionTextURL"`
		WordsCount           int    `json:"WordsCount"`
	} `json:"Data"`
	Reason   string `json:"Reason,omitempty"`
	UniqueId string `json:"UniqueId,omitempty"`
}

// NewGateway creates a Gateway backend.
func NewGateway(cfg GatewayConfig, log *logrus.Entry) *Gateway {
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 12 * time.Second}
	}
	if cfg.CallType == "" {
		cfg.CallType = "PNS"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 1500 * time.Millisecond
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = 40
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = defaultMaxElapsed
	}
	return &Gateway{cfg: cfg, log: log.WithField("backend", "gateway")}
}

// Transcribe implements Transcriber.
func (g *Gateway) Transcribe(ctx context.Context, audioPath string) (string, error) {
	log := g.log.WithField("file", audioPath)

	mediaID, existingURL, err := g.publish(ctx, audioPath)
	if err != nil {
		return "", err
	}
	if existingURL != "" {
		log.WithField("existing_url", existingURL).Info("transcription already exists, downloading text")
		return g.download(ctx, existingURL)
	}

	finalURL, err := g.poll(ctx, mediaID, log)
	if err != nil {
		return "", err
	}
	log.WithField("final_url", finalURL).Info("download final transcript")
	return g.download(ctx, finalURL)
}

func (g *Gateway) publish(ctx context.Context, audioPath string) (string, string, error) {
	endpoint := strings.TrimRight(g.cfg.BaseURL, "/") + "/transcribe"
	body, contentType, err := multipartFile(audioPath, "audio", map[string]string{
		"callType": g.cfg.CallType,
	})
	if err != nil {
		return "", "", err
	}
	newReq := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body.Bytes()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	}

	var resp PublishSuccessResponse
	if err := doJSON(ctx, g.cfg.Client, g.cfg.MaxElapsed, newReq, &resp); err != nil {
		return "", "", fmt.Errorf("transcribe publish: %w", err)
	}
	if resp.Code != 200 {
		return "", "", fmt.Errorf("transcribe publish error: code=%d reason=%s", resp.Code, resp.Reason)
	}
	if resp.Data.TranscriptionURL != "" && strings.ToLower(resp.Data.Status) == "success" {
		return "", resp.Data.TranscriptionURL, nil
	}
	if resp.Data.MediaId == "" {
		return "", "", fmt.Errorf("transcribe publish: no media id in response")
	}
	return resp.Data.MediaId, "", nil
}

func (g *Gateway) poll(ctx context.Context, mediaID string, log *logrus.Entry) (string, error) {
	u, err := url.Parse(strings.TrimRight(g.cfg.BaseURL, "/") + "/getstatus")
	if err != nil {
		return "", fmt.Errorf("transcribe poll: %w", err)
	}
	q := u.Query()
	q.Set("mediaId", mediaID)
	u.RawQuery = q.Encode()
	newReq := func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	}

	ticker := time.NewTicker(g.cfg.PollInterval)
	defer ticker.Stop()

	for i := 0; i < g.cfg.MaxPolls; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		var s StatusResponse
		if err := doJSON(ctx, g.cfg.Client, g.cfg.MaxElapsed, newReq, &s); err != nil {
			log.WithField("error", err.Error()).Warn("polling failed")
			continue
		}
		log.WithFields(logrus.Fields{
			"media_id": mediaID,
			"status":   s.Data.Status,
		}).Debug("polling transcription")

		switch s.Data.Status {
		case "Success":
			return s.Data.TranscriptionTextURL, nil
		case "Queued", "Processing":
			continue
		case "Failed":
			return "", fmt.Errorf("%w: gateway reported failure: %s", ErrNoResult, s.Reason)
		}
	}
	return "", fmt.Errorf("transcription timeout: media %s not done after %d polls", mediaID, g.cfg.MaxPolls)
}

func (g *Gateway) download(ctx context.Context, textURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, textURL, nil)
	if err != nil {
		return "", fmt.Errorf("download transcript: %w", err)
	}
	resp, err := g.cfg.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download transcript: %w", err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("download transcript: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("download failed: %s", string(b))
	}
	if strings.TrimSpace(string(b)) == "" {
		return "", ErrNoResult
	}
	return string(b), nil
}
