package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// defaultMaxElapsed bounds the retries of one HTTP exchange.
const defaultMaxElapsed = 12 * time.Second

// statusError is a non-2xx response.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.Body)
}

// newRetry builds the backoff policy for one exchange.
func newRetry(ctx context.Context, maxElapsed time.Duration) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = maxElapsed
	return backoff.WithContext(bo, ctx)
}

// doJSON executes the request built by newReq and decodes a JSON body into
// target. Transport errors and 5xx responses are retried; 4xx are permanent.
// newReq is called per attempt so request bodies are never reused.
func doJSON(ctx context.Context, hc *http.Client, maxElapsed time.Duration, newReq func() (*http.Request, error), target any) error {
	op := func() error {
		req, err := newReq()
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := hc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 {
			return &statusError{Code: resp.StatusCode, Body: string(body)}
		}
		if resp.StatusCode >= 300 {
			return backoff.Permanent(&statusError{Code: resp.StatusCode, Body: string(body)})
		}
		if len(body) == 0 {
			return fmt.Errorf("empty body")
		}
		if err := json.Unmarshal(body, target); err != nil {
			return backoff.Permanent(fmt.Errorf("json decode error: %v body=%s", err, string(body)))
		}
		return nil
	}
	return backoff.Retry(op, newRetry(ctx, maxElapsed))
}

// multipartFile builds a multipart body with the given fields and the audio
// file under fileField.
func multipartFile(audioPath, fileField string, fields map[string]string) (*bytes.Buffer, string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	fw, err := mw.CreateFormFile(fileField, filepath.Base(audioPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, "", fmt.Errorf("copy audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &body, mw.FormDataContentType(), nil
}
