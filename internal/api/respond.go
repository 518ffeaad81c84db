package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"voice-transcribe-go/internal/transcription"
)

// retryAfterSeconds is advertised on store contention.
const retryAfterSeconds = "1"

// errorBody is the JSON shape of every failure response.
type errorBody struct {
	Detail   string `json:"detail"`
	FileName string `json:"filename,omitempty"`
	Kind     string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}, log *logrus.Entry) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.WithError(err).Error("failed to write response")
	}
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind transcription.Kind) int {
	switch kind {
	case transcription.KindUnsupportedFormat, transcription.KindTranscriptionFailed:
		return http.StatusBadRequest
	case transcription.KindDuplicate:
		return http.StatusConflict
	case transcription.KindTranscriptionError:
		return http.StatusBadGateway
	case transcription.KindStoreTimeout:
		return http.StatusServiceUnavailable
	case transcription.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Unexpected failures get a generic message; the
// cause only goes to the log.
func writeError(w http.ResponseWriter, err error, log *logrus.Entry) {
	kind := transcription.KindOf(err)
	status := statusFor(kind)
	body := errorBody{Kind: string(kind)}

	var terr *transcription.Error
	if errors.As(err, &terr) {
		body.FileName = terr.FileName
		body.Detail = terr.Message
	}

	switch {
	case kind == transcription.KindUnexpected:
		body.Detail = "Internal server error"
		log.WithError(err).Error("request failed")
	case kind == transcription.KindStoreTimeout:
		if body.Detail == "" {
			body.Detail = "Transcription store is busy, retry the request"
		}
		w.Header().Set("Retry-After", retryAfterSeconds)
		log.WithError(err).Warn("store busy")
	case status >= http.StatusInternalServerError:
		log.WithError(err).Error("request failed")
	default:
		log.WithError(err).Info("request rejected")
	}

	writeJSON(w, status, body, log)
}

// writeProblem renders a request-level failure that has no error kind.
func writeProblem(w http.ResponseWriter, status int, kind, detail string, log *logrus.Entry) {
	log.WithField("status", status).Info(detail)
	writeJSON(w, status, errorBody{Detail: detail, Kind: kind}, log)
}
