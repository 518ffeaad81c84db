// Package api exposes the transcription service over HTTP.
package api

import (
	"context"
	"net/http"

	"voice-transcribe-go/internal/logger"
	"voice-transcribe-go/internal/pipeline"
	"voice-transcribe-go/internal/transcription"
)

// Processor runs a batch of uploads through transcription and storage.
type Processor interface {
	Process(ctx context.Context, uploads []pipeline.Upload) ([]pipeline.Result, error)
}

// Queries serves read access to stored transcriptions.
type Queries interface {
	GetAll(ctx context.Context) ([]transcription.View, error)
	GetByID(ctx context.Context, id int64) (transcription.View, error)
	Search(ctx context.Context, query string) ([]transcription.View, error)
}

// Options tunes request handling.
type Options struct {
	// CORSOrigins lists origins allowed to call the API from a browser.
	CORSOrigins []string

	// MaxUploadBytes caps the body of POST /transcribe. Zero means no cap.
	MaxUploadBytes int64
}

// Server holds the handlers and their dependencies.
type Server struct {
	proc    Processor
	queries Queries
	opts    Options
	log     *logger.Logger
}

// NewServer creates a Server.
func NewServer(proc Processor, queries Queries, opts Options, log *logger.Logger) *Server {
	return &Server{proc: proc, queries: queries, opts: opts, log: log}
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /transcribe", s.handleTranscribe)
	mux.HandleFunc("GET /transcriptions", s.handleList)
	mux.HandleFunc("GET /transcriptions/search", s.handleSearch)
	mux.HandleFunc("GET /transcriptions/export", s.handleExport)
	mux.HandleFunc("GET /transcriptions/{id}", s.handleGet)

	return s.withRequestLog(s.withCORS(mux))
}
