package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/restopick/internal/database"
	"github.com/jask/restopick/internal/database/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Prepare(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSubmissionLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := repository.NewSubmissionRepo(openTestDB(t))

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Start(ctx, repository.Submission{
		ID: "s1", City: "Btm", PriceRange: "budget", Cuisines: []string{"Thai", "Chinese"}, MinRating: 3.5, CreatedAt: created,
	}))
	require.NoError(t, repo.Start(ctx, repository.Submission{
		ID: "s2", City: "Hsr", PriceRange: "premium", CreatedAt: created.Add(time.Minute),
	}))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, repository.OutcomePending, got.Outcome)
	require.Equal(t, []string{"Thai", "Chinese"}, got.Cuisines)
	require.Nil(t, got.FinishedAt)

	done := created.Add(2 * time.Second)
	require.NoError(t, repo.Finish(ctx, "s1", repository.OutcomeSuccess, 5, "", done))
	got, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, repository.OutcomeSuccess, got.Outcome)
	require.Equal(t, 5, got.ResultCount)
	require.NotNil(t, got.FinishedAt)
	require.True(t, done.Equal(*got.FinishedAt))

	recent, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "s2", recent[0].ID)
	require.Nil(t, recent[0].Cuisines)

	require.ErrorIs(t, repo.Finish(ctx, "missing", repository.OutcomeFailed, 0, "x", done), repository.ErrNotFound)
	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSavedFilters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := repository.NewSavedFilterRepo(openTestDB(t))

	a, err := repo.Save(ctx, repository.SavedFilter{Name: "Cheap Eats!", City: "Btm", PriceRange: "budget"})
	require.NoError(t, err)
	require.Equal(t, "cheap-eats", a.ID)
	b, err := repo.Save(ctx, repository.SavedFilter{Name: "cheap eats", City: "Hsr", PriceRange: "budget", Cuisines: []string{"Thai"}})
	require.NoError(t, err)
	require.Equal(t, "cheap-eats-2", b.ID)

	_, err = repo.Save(ctx, repository.SavedFilter{Name: "   "})
	require.Error(t, err)

	require.NoError(t, repo.Touch(ctx, b.ID, time.Now()))
	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, b.ID, list[0].ID)
	require.Equal(t, 1, list[0].UseCount)
	require.Equal(t, []string{"Thai"}, list[0].Cuisines)
	require.Equal(t, a.ID, list[1].ID)

	require.NoError(t, repo.Delete(ctx, a.ID))
	_, err = repo.Get(ctx, a.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, a.ID), repository.ErrNotFound)
	require.ErrorIs(t, repo.Touch(ctx, a.ID, time.Now()), repository.ErrNotFound)
}

func TestNextFilterID(t *testing.T) {
	t.Parallel()
	require.Equal(t, "filter", repository.SlugifyFilterID("  "))
	require.Equal(t, "filter", repository.SlugifyFilterID("!!!"))
	require.Equal(t, "jp-nagar-dinner", repository.SlugifyFilterID("JP Nagar / Dinner"))
	require.Equal(t, "x", repository.NextFilterID(nil, "x"))
	require.Equal(t, "x-3", repository.NextFilterID([]string{"x", "X-2"}, "x"))

	long := repository.SlugifyFilterID("abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyzabcdefghijklmnop")
	require.Len(t, long, 63)
	next := repository.NextFilterID([]string{long}, long)
	require.Len(t, next, 63)
	require.Equal(t, "-2", next[61:])
}

func TestFeedbackRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openTestDB(t)
	subs := repository.NewSubmissionRepo(db)
	repo := repository.NewFeedbackRepo(db)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, subs.Start(ctx, repository.Submission{ID: "s1", City: "Btm", PriceRange: "budget", CreatedAt: now}))

	sub := "s1"
	require.NoError(t, repo.Record(ctx, repository.Feedback{
		ID: "f1", SubmissionID: &sub, RestaurantName: "A", Rating: 1, Delivered: true, CreatedAt: now,
	}))
	require.NoError(t, repo.Record(ctx, repository.Feedback{
		ID: "f2", SubmissionID: &sub, RestaurantName: "B", Rating: 0, Error: "offline", CreatedAt: now.Add(time.Second),
	}))

	got, err := repo.ForSubmission(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "A", got[0].RestaurantName)
	require.True(t, got[0].Delivered)
	require.False(t, got[1].Delivered)
	require.Equal(t, "offline", got[1].Error)
	require.Equal(t, "s1", *got[1].SubmissionID)
}
