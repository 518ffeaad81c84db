package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Record is one row of the transcriptions table.
type Record struct {
	ID              int64
	AudioFileName   string
	TranscribedText string
	CreatedAt       time.Time
}

const selectColumns = `SELECT id, audio_file_name, transcribed_text, created_at FROM transcriptions`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var r Record
	var text sql.NullString
	if err := row.Scan(&r.ID, &r.AudioFileName, &text, &r.CreatedAt); err != nil {
		return Record{}, err
	}
	if text.Valid {
		r.TranscribedText = text.String
	}
	return r, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transcription: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcriptions: %w", err)
	}
	return records, nil
}
