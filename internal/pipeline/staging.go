package pipeline

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// stagingArea is a request-scoped directory holding uploaded payloads.
type stagingArea struct {
	dir   string
	files []string
}

func newStagingArea(root string) (*stagingArea, error) {
	dir, err := os.MkdirTemp(root, "transcribe-")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &stagingArea{dir: dir}, nil
}

// stage copies one upload into a uniquely named file and returns its path.
// The path is tracked before any byte is written so partial files are
// released too.
func (a *stagingArea) stage(up Upload) (string, error) {
	// The client's name is not reused so its length cannot exceed NAME_MAX.
	path := filepath.Join(a.dir, uuid.NewString()+strings.ToLower(filepath.Ext(up.Filename)))

	src, err := up.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}
	a.files = append(a.files, path)

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("write staged file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close staged file: %w", err)
	}
	return path, nil
}

// release removes every staged file and the directory. Missing entries are
// not errors; anything else is logged and left for the OS temp reaper.
func (a *stagingArea) release(log *logrus.Entry) {
	for _, f := range a.files {
		if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.WithField("file", f).WithError(err).Warn("failed to remove staged file")
		}
	}
	if err := os.Remove(a.dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		if err := os.RemoveAll(a.dir); err != nil {
			log.WithField("dir", a.dir).WithError(err).Warn("failed to remove staging dir")
		}
	}
}
