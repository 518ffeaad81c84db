package transcription

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"voice-transcribe-go/internal/store"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("model crashed")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"unsupported format", NewUnsupportedFormatError("clip.wav"), KindUnsupportedFormat},
		{"wrapped duplicate", fmt.Errorf("batch: %w", NewDuplicateError("a.mp3", nil)), KindDuplicate},
		{"raw duplicate key", fmt.Errorf("insert: %w", store.ErrDuplicateKey), KindDuplicate},
		{"transcription failed", NewTranscriptionFailedError("a.mp3", nil), KindTranscriptionFailed},
		{"transcription error", NewTranscriptionError("a.mp3", cause), KindTranscriptionError},
		{"store timeout", fmt.Errorf("fetch: %w", store.ErrStoreTimeout), KindStoreTimeout},
		{"not found", NewNotFoundError(3), KindNotFound},
		{"unknown", cause, KindUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("model crashed")
	err := NewTranscriptionError("a.mp3", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "transcription_error: Transcription service error for a.mp3: model crashed", err.Error())

	unsupported := NewUnsupportedFormatError("clip.wav")
	assert.Equal(t, "Invalid file type for clip.wav. Supported format(s): MP3", unsupported.Message)
	assert.False(t, IsRetryable(unsupported))
}
