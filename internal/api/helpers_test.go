package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"voice-transcribe-go/internal/logger"
	"voice-transcribe-go/internal/pipeline"
	"voice-transcribe-go/internal/transcription"
)

var fixedTime = time.Date(2025, 12, 1, 9, 30, 0, 0, time.UTC)

type fakeProcessor struct {
	results []pipeline.Result
	err     error

	names  []string
	bodies []string
}

func (f *fakeProcessor) Process(_ context.Context, uploads []pipeline.Upload) ([]pipeline.Result, error) {
	for _, up := range uploads {
		f.names = append(f.names, up.Filename)
		rc, err := up.Open()
		if err != nil {
			return nil, err
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		f.bodies = append(f.bodies, string(b))
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeQueries struct {
	views []transcription.View
	err   error

	lastQuery string
}

func (f *fakeQueries) GetAll(context.Context) ([]transcription.View, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.views, nil
}

func (f *fakeQueries) GetByID(_ context.Context, id int64) (transcription.View, error) {
	if f.err != nil {
		return transcription.View{}, f.err
	}
	for _, v := range f.views {
		if v.ID == id {
			return v, nil
		}
	}
	return transcription.View{}, transcription.NewNotFoundError(id)
}

func (f *fakeQueries) Search(_ context.Context, query string) ([]transcription.View, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.views, nil
}

func newTestServer(proc Processor, queries Queries, opts Options) http.Handler {
	return NewServer(proc, queries, opts, logger.NewWithOutput(io.Discard)).Handler()
}

type part struct {
	name string
	body string
}

// multipartRequest builds a POST /transcribe request with one "files" part
// per entry.
func multipartRequest(t *testing.T, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		fw, err := mw.CreateFormFile("files", p.name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, p.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/transcribe", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
