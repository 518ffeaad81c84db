package transcription

import (
	"context"
	"errors"

	"voice-transcribe-go/internal/store"
)

// RecordStore is the persistence primitive the Repository depends on.
// *store.Store satisfies it.
type RecordStore interface {
	Insert(ctx context.Context, audioFileName, transcribedText string) (int64, error)
	FetchByID(ctx context.Context, id int64) (*store.Record, error)
	FetchAll(ctx context.Context) ([]store.Record, error)
	FetchBySubstring(ctx context.Context, query string) ([]store.Record, error)
}

// Repository is the typed data-access layer over a RecordStore. Its only job
// beyond delegation is translating storage conflicts into domain errors.
//
// A Repository holds no state besides the store handle and is safe for
// concurrent use; construct one at process start and share it.
type Repository struct {
	store RecordStore
}

// NewRepository creates a Repository over s.
func NewRepository(s RecordStore) *Repository {
	return &Repository{store: s}
}

// Create persists a new record and returns its id. A taken file name yields
// a KindDuplicate *Error; every other store failure is returned unchanged.
func (r *Repository) Create(ctx context.Context, audioFileName, transcribedText string) (int64, error) {
	id, err := r.store.Insert(ctx, audioFileName, transcribedText)
	if errors.Is(err, store.ErrDuplicateKey) {
		return 0, NewDuplicateError(audioFileName, err)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Get returns the record with the given id, or nil if none exists.
func (r *Repository) Get(ctx context.Context, id int64) (*Record, error) {
	rec, err := r.store.FetchByID(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}
	out := fromStore(*rec)
	return &out, nil
}

// GetAll returns every record in insertion order.
func (r *Repository) GetAll(ctx context.Context) ([]Record, error) {
	recs, err := r.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return fromStoreAll(recs), nil
}

// Search returns records whose file name or text contains query, ignoring
// case, in insertion order. An empty query returns every record.
func (r *Repository) Search(ctx context.Context, query string) ([]Record, error) {
	recs, err := r.store.FetchBySubstring(ctx, query)
	if err != nil {
		return nil, err
	}
	return fromStoreAll(recs), nil
}

func fromStore(rec store.Record) Record {
	return Record{
		ID:              rec.ID,
		AudioFileName:   rec.AudioFileName,
		TranscribedText: rec.TranscribedText,
		CreatedAt:       rec.CreatedAt,
	}
}

func fromStoreAll(recs []store.Record) []Record {
	out := make([]Record, len(recs))
	for i, rec := range recs {
		out[i] = fromStore(rec)
	}
	return out
}
