package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Insert stores a new record and returns its id.
//
// The uniqueness check and the insert are one statement inside an immediate
// transaction; a name that already exists yields ErrDuplicateKey and leaves
// the table unchanged.
func (s *Store) Insert(ctx context.Context, audioFileName, transcribedText string) (int64, error) {
	if audioFileName == "" {
		return 0, ErrEmptyFileName
	}

	var id int64
	err := s.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback() // No-op if committed

		result, err := tx.ExecContext(ctx, `
			INSERT INTO transcriptions (audio_file_name, transcribed_text, created_at)
			VALUES (?, ?, ?)
		`, audioFileName, transcribedText, s.now().UTC())
		if err != nil {
			return err
		}

		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}

		return tx.Commit()
	})
	if err != nil {
		return 0, fmt.Errorf("insert transcription %q: %w", audioFileName, err)
	}

	return id, nil
}
