package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voice-transcribe-go/internal/api"
	"voice-transcribe-go/internal/config"
	"voice-transcribe-go/internal/logger"
	"voice-transcribe-go/internal/pipeline"
	"voice-transcribe-go/internal/store"
	"voice-transcribe-go/internal/transcriber"
	"voice-transcribe-go/internal/transcription"
)

const shutdownGrace = 30 * time.Second

func main() {
	log := logger.New()
	log.WithField("service", "voice-transcribe-go").Info("starting service")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	st, err := store.Open(cfg.DBPath, store.Options{Timeout: cfg.StoreTimeout})
	if err != nil {
		log.WithError(err).WithField("db_path", cfg.DBPath).Fatal("failed to open store")
	}
	defer st.Close()
	log.WithField("db_path", cfg.DBPath).Info("store ready")

	tr, err := transcriber.New(cfg.Transcriber, log.Component("transcriber"))
	if err != nil {
		log.WithError(err).Fatal("failed to build transcriber")
	}
	log.WithField("backend", cfg.Transcriber.Backend).Info("transcriber configured")

	repo := transcription.NewRepository(st)
	orch := pipeline.New(tr, repo, pipeline.Options{StagingRoot: cfg.StagingDir}, log.Entry)
	srvAPI := api.NewServer(orch, transcription.NewQueryService(repo), api.Options{
		CORSOrigins:    cfg.CORSOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}, log)

	srv := newHTTPServer(cfg, srvAPI.Handler())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("server terminated")
		}
	case <-ctx.Done():
		log.Info("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
		}
	}
	log.Info("server stopped")
}

// newHTTPServer bounds only the header read. Upload bodies of up to
// MAX_UPLOAD_MB are read inside the handler and fall under WriteTimeout,
// which starts once the headers are in.
func newHTTPServer(cfg config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      cfg.Transcriber.Timeout + 60*time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
