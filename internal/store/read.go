package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// FetchByID returns the record with the given id, or nil if none exists.
func (s *Store) FetchByID(ctx context.Context, id int64) (*Record, error) {
	var rec *Record
	err := s.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		row := conn.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
		r, err := scanRecord(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		rec = &r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch transcription %d: %w", id, err)
	}
	return rec, nil
}

// FetchAll returns every record ordered by id.
// Returns an empty slice (not nil) when the table is empty.
func (s *Store) FetchAll(ctx context.Context) ([]Record, error) {
	var records []Record
	err := s.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, selectColumns+` ORDER BY id ASC`)
		if err != nil {
			return err
		}
		records, err = scanRecords(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch transcriptions: %w", err)
	}
	return records, nil
}

// FetchBySubstring returns records whose file name or text contains query,
// ignoring case, ordered by id. An empty query matches every record.
//
// instr is used instead of LIKE so that % and _ in the query match literally.
func (s *Store) FetchBySubstring(ctx context.Context, query string) ([]Record, error) {
	if query == "" {
		return s.FetchAll(ctx)
	}

	var records []Record
	err := s.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, selectColumns+`
			WHERE instr(casefold(audio_file_name), casefold(?1)) > 0
			   OR instr(casefold(coalesce(transcribed_text, '')), casefold(?1)) > 0
			ORDER BY id ASC
		`, query)
		if err != nil {
			return err
		}
		records, err = scanRecords(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("search transcriptions: %w", err)
	}
	return records, nil
}
