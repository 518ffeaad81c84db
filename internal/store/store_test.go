package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path, Options{})
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_PathWithURICharacters(t *testing.T) {
	for _, name := range []string{"a?b.db", "c#d.db", "e%41.db"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, name)

			s, err := Open(path, Options{})
			require.NoError(t, err)
			_, err = s.Insert(context.Background(), "a.mp3", "hello")
			require.NoError(t, err)
			require.NoError(t, s.Close())

			_, err = os.Stat(path)
			assert.NoError(t, err, "database should be created at the exact path")

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			for _, e := range entries {
				assert.True(t, strings.HasPrefix(e.Name(), name), "unexpected file %q", e.Name())
			}
		})
	}
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestOpen_ReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := Open(path, Options{})
	require.NoError(t, err)
	_, err = s1.Insert(ctx, "a.mp3", "hello")
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path, Options{})
	require.NoError(t, err)
	defer s2.Close()

	all, err := s2.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "a.mp3", all[0].AudioFileName)
}

func TestInit_Idempotent(t *testing.T) {
	s := createTestStore(t, Options{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Init(ctx), "Init() iteration %d", i)
	}
}

func TestInit_Concurrent(t *testing.T) {
	s := createTestStore(t, Options{})
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Init(ctx)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestWithConn_TimesOutWhileWriterHoldsLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, Options{Timeout: 100 * time.Millisecond})
	require.NoError(t, err)
	defer s.Close()

	// A second handle holds the write lock for the duration of the test.
	other, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer other.Close()

	tx, err := other.Begin()
	require.NoError(t, err)
	defer tx.Rollback()
	_, err = tx.Exec(`INSERT INTO transcriptions (audio_file_name, transcribed_text) VALUES ('lock.mp3', 'x')`)
	require.NoError(t, err)

	_, err = s.Insert(context.Background(), "a.mp3", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreTimeout)
}
