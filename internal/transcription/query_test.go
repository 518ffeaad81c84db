package transcription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryService_GetByID(t *testing.T) {
	repo := newTestRepository(t)
	q := NewQueryService(repo)
	ctx := context.Background()

	id, err := repo.Create(ctx, "a.mp3", "hello")
	require.NoError(t, err)

	view, err := q.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, view.ID)
	assert.Equal(t, "a.mp3", view.AudioFileName)
	assert.Equal(t, "hello", view.TranscribedText)
	assert.Equal(t, time.UTC, view.CreatedAt.Location())
}

func TestQueryService_GetByIDNotFound(t *testing.T) {
	q := NewQueryService(newTestRepository(t))

	_, err := q.GetByID(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestQueryService_ReflectsLatestWrites(t *testing.T) {
	repo := newTestRepository(t)
	q := NewQueryService(repo)
	ctx := context.Background()

	all, err := q.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = repo.Create(ctx, "a.mp3", "hello")
	require.NoError(t, err)

	all, err = q.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	found, err := q.Search(ctx, "HELLO")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestQueryService_SearchNoResultsIsEmpty(t *testing.T) {
	q := NewQueryService(newTestRepository(t))

	found, err := q.Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)
}

func TestQueryService_PropagatesErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	q := NewQueryService(NewRepository(failingStore{err: boom}))
	ctx := context.Background()

	_, err := q.GetAll(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, KindUnexpected, KindOf(err))

	_, err = q.GetByID(ctx, 1)
	assert.ErrorIs(t, err, boom)

	_, err = q.Search(ctx, "x")
	assert.ErrorIs(t, err, boom)
}
