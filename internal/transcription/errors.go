package transcription

import (
	"errors"
	"fmt"

	"voice-transcribe-go/internal/store"
)

// Kind categorizes a failure so callers can branch without inspecting text.
type Kind string

const (
	// KindUnsupportedFormat indicates an upload with a rejected extension.
	KindUnsupportedFormat Kind = "unsupported_format"

	// KindDuplicate indicates the file name already has a record.
	KindDuplicate Kind = "duplicate"

	// KindTranscriptionFailed indicates the transcriber produced no usable text.
	KindTranscriptionFailed Kind = "transcription_failed"

	// KindTranscriptionError indicates the transcriber faulted.
	KindTranscriptionError Kind = "transcription_error"

	// KindStoreTimeout indicates store contention; the request may be retried.
	KindStoreTimeout Kind = "store_timeout"

	// KindNotFound indicates a read miss on a single record.
	KindNotFound Kind = "not_found"

	// KindUnexpected covers everything else.
	KindUnexpected Kind = "unexpected"
)

// Error is a categorized failure, optionally tied to one audio file.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// FileName is the upload that triggered the failure, if any.
	FileName string

	// Message is a user-facing description.
	Message string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewUnsupportedFormatError creates an Error for a rejected upload extension.
func NewUnsupportedFormatError(fileName string) *Error {
	return &Error{
		Kind:     KindUnsupportedFormat,
		FileName: fileName,
		Message:  fmt.Sprintf("Invalid file type for %s. Supported format(s): MP3", fileName),
	}
}

// NewDuplicateError creates an Error for a file name that already has a record.
func NewDuplicateError(fileName string, cause error) *Error {
	return &Error{
		Kind:     KindDuplicate,
		FileName: fileName,
		Message:  fmt.Sprintf("A transcription for file '%s' already exists", fileName),
		Err:      cause,
	}
}

// NewTranscriptionFailedError creates an Error for a transcription without text.
func NewTranscriptionFailedError(fileName string, cause error) *Error {
	return &Error{
		Kind:     KindTranscriptionFailed,
		FileName: fileName,
		Message:  fmt.Sprintf("Audio transcription failed for %s", fileName),
		Err:      cause,
	}
}

// NewTranscriptionError creates an Error for a transcriber fault.
func NewTranscriptionError(fileName string, cause error) *Error {
	return &Error{
		Kind:     KindTranscriptionError,
		FileName: fileName,
		Message:  fmt.Sprintf("Transcription service error for %s", fileName),
		Err:      cause,
	}
}

// NewNotFoundError creates an Error for a missing record.
func NewNotFoundError(id int64) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: "Transcription not found",
		Err:     fmt.Errorf("id %d", id),
	}
}

// KindOf reports the category of err. Store timeouts are recognized even when
// not wrapped in an *Error; any other unknown error is KindUnexpected.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, store.ErrStoreTimeout) {
		return KindStoreTimeout
	}
	if errors.Is(err, store.ErrDuplicateKey) {
		return KindDuplicate
	}
	return KindUnexpected
}

// IsDuplicate returns true if err is a duplicate file name failure.
func IsDuplicate(err error) bool {
	return KindOf(err) == KindDuplicate
}

// IsNotFound returns true if err is a read miss.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsRetryable returns true if the whole request may be retried unchanged.
func IsRetryable(err error) bool {
	return KindOf(err) == KindStoreTimeout
}
