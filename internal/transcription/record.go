package transcription

import "time"

// Record is a persisted transcription result.
type Record struct {
	ID              int64
	AudioFileName   string
	TranscribedText string
	CreatedAt       time.Time
}

// View is the plain serialisable form of a Record.
type View struct {
	ID              int64     `json:"id"`
	AudioFileName   string    `json:"audio_file_name"`
	TranscribedText string    `json:"transcribed_text"`
	CreatedAt       time.Time `json:"created_at"`
}

// View converts the record for callers outside the storage layer.
func (r Record) View() View {
	return View{
		ID:              r.ID,
		AudioFileName:   r.AudioFileName,
		TranscribedText: r.TranscribedText,
		CreatedAt:       r.CreatedAt.UTC(),
	}
}

// Views converts a slice of records, preserving order.
func Views(records []Record) []View {
	views := make([]View, len(records))
	for i, r := range records {
		views[i] = r.View()
	}
	return views
}
