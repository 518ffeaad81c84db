package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrDuplicateKey is returned by Insert when the audio file name is taken.
	ErrDuplicateKey = errors.New("duplicate audio file name")

	// ErrStoreTimeout is returned when a connection or lock could not be
	// acquired within the configured timeout. Callers may retry.
	ErrStoreTimeout = errors.New("store timeout")

	// ErrEmptyFileName is returned by Insert for an empty audio file name.
	ErrEmptyFileName = errors.New("audio file name is required")
)

// classify maps driver and context failures onto the store sentinels.
// Unknown errors are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var se sqlite3.Error
	if errors.As(err, &se) {
		switch {
		case se.ExtendedCode == sqlite3.ErrConstraintUnique,
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		case se.Code == sqlite3.ErrBusy, se.Code == sqlite3.ErrLocked:
			return fmt.Errorf("%w: %v", ErrStoreTimeout, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrStoreTimeout, err)
	}

	return err
}
