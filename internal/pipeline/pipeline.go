// Package pipeline turns a batch of uploaded audio files into persisted
// transcription records.
//
// A batch is processed strictly in order and stops at the first failure; the
// caller receives either every result or exactly one error. Records created
// before the failing item stay persisted but are not reported.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"voice-transcribe-go/internal/transcriber"
	"voice-transcribe-go/internal/transcription"
)

// SupportedExtensions lists the accepted upload extensions (lower case).
var SupportedExtensions = []string{".mp3"}

// Upload is one named audio payload. Open is called once, when the item's
// turn comes.
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// Result is the outcome of one successfully processed upload.
type Result struct {
	ID       int64
	Text     string
	Filename string
}

// Creator persists a transcription. *transcription.Repository satisfies it.
type Creator interface {
	Create(ctx context.Context, audioFileName, transcribedText string) (int64, error)
}

// Options configures an Orchestrator.
type Options struct {
	// StagingRoot is the parent of per-request staging directories.
	// Empty means the OS temp dir.
	StagingRoot string
}

// Orchestrator runs the per-request transcription pipeline.
type Orchestrator struct {
	transcriber transcriber.Transcriber
	repo        Creator
	stagingRoot string
	log         *logrus.Entry
}

// New creates an Orchestrator.
func New(t transcriber.Transcriber, repo Creator, opts Options, log *logrus.Entry) *Orchestrator {
	return &Orchestrator{
		transcriber: t,
		repo:        repo,
		stagingRoot: opts.StagingRoot,
		log:         log.WithField("component", "pipeline"),
	}
}

// Process stages, validates, transcribes and persists each upload in order.
// Every staged file and the staging directory are removed before it returns.
// Failures are *transcription.Error values.
func (o *Orchestrator) Process(ctx context.Context, uploads []Upload) ([]Result, error) {
	results := make([]Result, 0, len(uploads))

	// A batch with any unsupported member persists nothing.
	for _, up := range uploads {
		if !Supported(up.Filename) {
			return nil, transcription.NewUnsupportedFormatError(up.Filename)
		}
	}
	if len(uploads) == 0 {
		return results, nil
	}

	area, err := newStagingArea(o.stagingRoot)
	if err != nil {
		return nil, unexpected("", err)
	}
	defer area.release(o.log)

	for i, up := range uploads {
		log := o.log.WithFields(logrus.Fields{"file": up.Filename, "item": i})
		res, err := o.processOne(ctx, area, up, log)
		if err != nil {
			log.WithField("kind", transcription.KindOf(err)).WithError(err).Warn("batch aborted")
			return nil, err
		}
		results = append(results, res)
	}

	return results, nil
}

func (o *Orchestrator) processOne(ctx context.Context, area *stagingArea, up Upload, log *logrus.Entry) (Result, error) {
	path, err := area.stage(up)
	if err != nil {
		return Result{}, unexpected(up.Filename, err)
	}

	start := time.Now()
	text, err := o.transcriber.Transcribe(ctx, path)
	switch {
	case errors.Is(err, transcriber.ErrNoResult):
		return Result{}, transcription.NewTranscriptionFailedError(up.Filename, err)
	case err != nil:
		return Result{}, transcription.NewTranscriptionError(up.Filename, err)
	case strings.TrimSpace(text) == "":
		return Result{}, transcription.NewTranscriptionFailedError(up.Filename, transcriber.ErrNoResult)
	}
	log.WithField("duration_ms", time.Since(start).Milliseconds()).Info("audio transcribed")

	id, err := o.repo.Create(ctx, up.Filename, text)
	if err != nil {
		switch transcription.KindOf(err) {
		case transcription.KindDuplicate:
			return Result{}, err
		case transcription.KindStoreTimeout:
			return Result{}, &transcription.Error{
				Kind:     transcription.KindStoreTimeout,
				FileName: up.Filename,
				Message:  fmt.Sprintf("Transcription store is busy while saving %s, retry the request", up.Filename),
				Err:      err,
			}
		default:
			return Result{}, unexpected(up.Filename, err)
		}
	}
	log.WithField("transcription_id", id).Info("transcription stored")

	return Result{ID: id, Text: text, Filename: up.Filename}, nil
}

// Supported reports whether the file name has an accepted extension,
// ignoring case.
func Supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func unexpected(filename string, err error) *transcription.Error {
	msg := "Unexpected error while processing the upload"
	if filename != "" {
		msg = fmt.Sprintf("Unexpected error while processing %s", filename)
	}
	return &transcription.Error{
		Kind:     transcription.KindUnexpected,
		FileName: filename,
		Message:  msg,
		Err:      err,
	}
}
