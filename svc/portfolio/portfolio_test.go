package portfolio_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/applytrack/pkg/validator"
	"github.com/dmitrymomot/applytrack/svc/portfolio"
)

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newService() *portfolio.Service {
	c := &stepClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	return portfolio.NewService(portfolio.NewMemoryStore(), portfolio.WithClock(c.now))
}

func input(title string) portfolio.Input {
	return portfolio.Input{
		Title:        title,
		Description:  "A job application tracker",
		Technologies: []string{"Go", "Postgres"},
		ProjectURL:   "https://applytrack.app",
	}
}

func TestCreateSlug(t *testing.T) {
	t.Parallel()

	svc := newService()
	ctx := context.Background()

	first, err := svc.Create(ctx, input("Apply Track!"))
	require.NoError(t, err)
	assert.Equal(t, "apply-track", first.Slug)

	second, err := svc.Create(ctx, input("Apply  Track"))
	require.NoError(t, err)
	assert.Equal(t, "apply-track-1", second.Slug)

	third, err := svc.Create(ctx, input("apply track"))
	require.NoError(t, err)
	assert.Equal(t, "apply-track-2", third.Slug)

	got, err := svc.BySlug(ctx, "apply-track-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	_, err = svc.BySlug(ctx, "missing")
	assert.ErrorIs(t, err, portfolio.ErrProjectNotFound)
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	svc := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, portfolio.Input{})
	require.ErrorIs(t, err, validator.ErrValidationFailed)
	ve := validator.Extract(err)
	assert.True(t, ve.Has("title"))
	assert.True(t, ve.Has("description"))

	in := input("Tracker")
	in.GithubURL = "not a url"
	_, err = svc.Create(ctx, in)
	assert.True(t, validator.Extract(err).Has("github_url"))

	_, err = svc.Create(ctx, input("!!!"))
	assert.ErrorIs(t, err, portfolio.ErrEmptySlug)
}

func TestUpdateSlug(t *testing.T) {
	t.Parallel()

	svc := newService()
	ctx := context.Background()

	p, err := svc.Create(ctx, input("Tracker"))
	require.NoError(t, err)

	in := input("Tracker")
	in.Description = "Updated"
	same, err := svc.Update(ctx, p.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "tracker", same.Slug, "unchanged title keeps its slug")

	renamed, err := svc.Update(ctx, p.ID, input("Job Tracker"))
	require.NoError(t, err)
	assert.Equal(t, "job-tracker", renamed.Slug)

	_, err = svc.Update(ctx, uuid.New(), input("Ghost"))
	assert.ErrorIs(t, err, portfolio.ErrProjectNotFound)
}

func TestListOrdering(t *testing.T) {
	t.Parallel()

	svc := newService()
	ctx := context.Background()

	mk := func(title string, position int, featured bool) *portfolio.Project {
		in := input(title)
		in.Position = position
		in.Featured = featured
		p, err := svc.Create(ctx, in)
		require.NoError(t, err)
		return p
	}

	older := mk("Older", 1, false)
	newer := mk("Newer", 1, true)
	first := mk("First", 0, false)
	last := mk("Last", 5, true)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []uuid.UUID{first.ID, newer.ID, older.ID, last.ID}, ids)

	featured, err := svc.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 2)
	assert.Equal(t, newer.ID, featured[0].ID)
	assert.Equal(t, last.ID, featured[1].ID)

	require.NoError(t, svc.Delete(ctx, older.ID))
	assert.ErrorIs(t, svc.Delete(ctx, older.ID), portfolio.ErrProjectNotFound)
}
