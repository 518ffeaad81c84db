package transcription

import "context"

// QueryService is the read-only façade used by handlers and the CLI.
// Every call goes to the repository; nothing is cached.
type QueryService struct {
	repo *Repository
}

// NewQueryService creates a QueryService backed by repo.
func NewQueryService(repo *Repository) *QueryService {
	return &QueryService{repo: repo}
}

// GetAll returns every record view in insertion order.
func (q *QueryService) GetAll(ctx context.Context) ([]View, error) {
	recs, err := q.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return Views(recs), nil
}

// GetByID returns one record view, or a KindNotFound *Error.
func (q *QueryService) GetByID(ctx context.Context, id int64) (View, error) {
	rec, err := q.repo.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	if rec == nil {
		return View{}, NewNotFoundError(id)
	}
	return rec.View(), nil
}

// Search returns matching record views; empty query returns all.
func (q *QueryService) Search(ctx context.Context, query string) ([]View, error) {
	recs, err := q.repo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return Views(recs), nil
}
