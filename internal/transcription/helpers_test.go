package transcription

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"voice-transcribe-go/internal/store"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewRepository(s)
}

// failingStore returns err from every operation.
type failingStore struct {
	err error
}

func (f failingStore) Insert(context.Context, string, string) (int64, error) { return 0, f.err }
func (f failingStore) FetchByID(context.Context, int64) (*store.Record, error) {
	return nil, f.err
}
func (f failingStore) FetchAll(context.Context) ([]store.Record, error) { return nil, f.err }
func (f failingStore) FetchBySubstring(context.Context, string) ([]store.Record, error) {
	return nil, f.err
}
