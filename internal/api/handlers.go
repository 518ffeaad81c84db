package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"voice-transcribe-go/internal/export"
	"voice-transcribe-go/internal/pipeline"
	"voice-transcribe-go/internal/transcription"
)

// multipartMemory is how much of an upload is held in memory before
// spilling to temp files.
const multipartMemory = 32 << 20

type transcribeItem struct {
	Status   string `json:"status"`
	ID       int64  `json:"transcription_id"`
	Text     string `json:"transcription_text"`
	FileName string `json:"filename"`
}

type transcribeResponse struct {
	Status  string           `json:"status"`
	Results []transcribeItem `json:"results"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.requestLog(r, "health"))
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	log := s.requestLog(r, "transcribe")

	if limit := s.opts.MaxUploadBytes; limit > 0 {
		if r.ContentLength > limit {
			writeTooLarge(w, limit, log)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeTooLarge(w, tooLarge.Limit, log)
			return
		}
		writeProblem(w, http.StatusBadRequest, "invalid_request", "Expected a multipart form with audio files", log)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeProblem(w, http.StatusBadRequest, "invalid_request", "No files provided", log)
		return
	}

	uploads := make([]pipeline.Upload, 0, len(headers))
	for _, fh := range headers {
		uploads = append(uploads, pipeline.Upload{
			Filename: fh.Filename,
			Open:     openPart(fh),
		})
	}
	log.WithField("files", len(uploads)).Info("transcription batch received")

	results, err := s.proc.Process(r.Context(), uploads)
	if err != nil {
		writeError(w, err, log)
		return
	}

	resp := transcribeResponse{Status: "success", Results: make([]transcribeItem, 0, len(results))}
	for _, res := range results {
		resp.Results = append(resp.Results, transcribeItem{
			Status:   "success",
			ID:       res.ID,
			Text:     res.Text,
			FileName: res.Filename,
		})
	}
	writeJSON(w, http.StatusOK, resp, log)
}

func writeTooLarge(w http.ResponseWriter, limit int64, log *logrus.Entry) {
	writeProblem(w, http.StatusRequestEntityTooLarge, "too_large", fmt.Sprintf("Upload exceeds %d bytes", limit), log)
}

func openPart(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return fh.Open()
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	log := s.requestLog(r, "list")

	views, err := s.queries.GetAll(r.Context())
	if err != nil {
		writeError(w, err, log)
		return
	}
	writeJSON(w, http.StatusOK, views, log)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	log := s.requestLog(r, "get")

	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.WithField("id", raw).Debug("non-numeric transcription id")
		writeError(w, transcription.NewNotFoundError(0), log)
		return
	}

	view, err := s.queries.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, log.WithField("id", id))
		return
	}
	writeJSON(w, http.StatusOK, view, log)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	log := s.requestLog(r, "search").WithField("query", query)

	views, err := s.queries.Search(r.Context(), query)
	if err != nil {
		writeError(w, err, log)
		return
	}
	log.WithField("matches", len(views)).Debug("search finished")
	writeJSON(w, http.StatusOK, views, log)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	log := s.requestLog(r, "export")

	views, err := s.queries.GetAll(r.Context())
	if err != nil {
		writeError(w, err, log)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, views); err != nil {
		writeError(w, err, log)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="transcriptions.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.WithError(err).Error("failed to write export")
	}
}
