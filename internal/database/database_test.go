package database

import (
	"context"
	"testing"
	"time"

	"github.com/example/sptracker/internal/errs"
	"github.com/example/sptracker/pkg/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func insert(t *testing.T, repo *SubmissionRepository, s models.Submission) models.Submission {
	t.Helper()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = s.ScheduledAt
	}
	if s.Rts == 0 {
		s.Rts = 1
	}
	require.NoError(t, repo.Create(context.Background(), &s))
	return s
}

var day = time.Date(2023, 10, 1, 17, 28, 0, 0, time.UTC)

// =============================================================================
// Migrate / seed
// =============================================================================

func TestMigrate_IsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db))

	levels, err := NewLookupRepository(db).ListLevels(ctx)
	require.NoError(t, err)
	assert.Len(t, levels, len(defaultLevels))
}

// =============================================================================
// LookupRepository
// =============================================================================

func TestLookup_ListsAreStable(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewLookupRepository(db)

	first, err := repo.ListCategories(ctx, "IP")
	require.NoError(t, err)
	second, err := repo.ListCategories(ctx, "IP")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
	assert.Equal(t, "Leetcode", first[0].Name)

	types1, err := repo.ListTypes(ctx)
	require.NoError(t, err)
	types2, err := repo.ListTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, types1, types2)

	levels1, err := repo.ListLevels(ctx)
	require.NoError(t, err)
	levels2, err := repo.ListLevels(ctx)
	require.NoError(t, err)
	assert.Equal(t, levels1, levels2)
}

func TestLookup_UnknownTabIsEmpty(t *testing.T) {
	db := newTestDB(t)

	categories, err := NewLookupRepository(db).ListCategories(context.Background(), "nope")
	require.NoError(t, err)
	assert.NotNil(t, categories)
	assert.Empty(t, categories)
}

func TestLookup_ListTabs(t *testing.T) {
	db := newTestDB(t)

	tabs, err := NewLookupRepository(db).ListTabs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"DSA", "IP"}, tabs)
}

func TestLookup_RequireCategory(t *testing.T) {
	db := newTestDB(t)
	repo := NewLookupRepository(db)
	ctx := context.Background()

	assert.NoError(t, repo.RequireCategory(ctx, "Leetcode", "IP"))

	err := repo.RequireCategory(ctx, "Leetcode", "DSA")
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, []string{"category", "tab"}, errs.FieldsOf(err))

	assert.ErrorIs(t, repo.RequireCategory(ctx, "Topcoder", "IP"), errs.ErrValidation)
}

func TestLookup_Offset(t *testing.T) {
	db := newTestDB(t)
	repo := NewLookupRepository(db)

	offset, err := repo.Offset(context.Background(), "Editorial", "Very Easy")
	require.NoError(t, err)
	assert.Equal(t, 2, offset)

	offset, err = repo.Offset(context.Background(), "Self", "Medium")
	require.NoError(t, err)
	assert.Equal(t, 3, offset)
}

func TestLookup_OffsetMissingIsConfigurationError(t *testing.T) {
	db := newTestDB(t)

	_, err := NewLookupRepository(db).Offset(context.Background(), "Editorial", "Impossible")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

// =============================================================================
// SubmissionRepository
// =============================================================================

func TestSubmission_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepository(db)

	created := insert(t, repo, models.Submission{
		Link: "https://leetcode.com/problems/zigzag-conversion/", Category: "Leetcode",
		Type: "Editorial", Level: "Very Easy", Done: true, ScheduledAt: day, Tab: "IP",
	})
	require.NotZero(t, created.ID)

	got, err := repo.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Link, got.Link)
	assert.True(t, got.Done)
	assert.Equal(t, 1, got.Rts)
	assert.True(t, day.Equal(got.ScheduledAt), "scheduled_at = %v", got.ScheduledAt)
}

func TestSubmission_GetMissing(t *testing.T) {
	db := newTestDB(t)

	_, err := NewSubmissionRepository(db).Get(context.Background(), 404)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSubmission_MarkDone(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSubmissionRepository(db)

	pending := insert(t, repo, models.Submission{
		Link: "l", Category: "Leetcode", Type: "Self", Level: "Hard", ScheduledAt: day, Tab: "IP",
	})

	done, err := repo.MarkDone(ctx, pending.ID)
	require.NoError(t, err)
	assert.True(t, done.Done)

	_, err = repo.MarkDone(ctx, pending.ID)
	assert.ErrorIs(t, err, errs.ErrConflict)

	_, err = repo.MarkDone(ctx, 9999)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSubmission_CountPendingBetween(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSubmissionRepository(db)
	start := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)

	insert(t, repo, models.Submission{Link: "a", Category: "Leetcode", Type: "Self", Level: "Hard", ScheduledAt: start, Tab: "IP"})
	insert(t, repo, models.Submission{Link: "b", Category: "Leetcode", Type: "Self", Level: "Hard", ScheduledAt: start.Add(23 * time.Hour), Done: true, Tab: "IP"})
	// next day
	insert(t, repo, models.Submission{Link: "c", Category: "Leetcode", Type: "Self", Level: "Hard", ScheduledAt: start.Add(24 * time.Hour), Tab: "IP"})
	// other level
	insert(t, repo, models.Submission{Link: "d", Category: "Leetcode", Type: "Self", Level: "Easy", ScheduledAt: start, Tab: "IP"})

	count, err := repo.CountPendingBetween(ctx, "Leetcode", "Self", "Hard", start, start.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, count, "only the pending record of the day counts")
}

func TestSubmission_ListFilters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSubmissionRepository(db)

	insert(t, repo, models.Submission{Link: "a", Category: "Leetcode", Type: "Self", Level: "Hard", ScheduledAt: day, Tab: "IP"})
	insert(t, repo, models.Submission{Link: "b", Category: "Codeforces", Type: "Self", Level: "Hard", ScheduledAt: day.Add(time.Hour), Tab: "IP"})
	insert(t, repo, models.Submission{Link: "c", Category: "Arrays", Type: "Self", Level: "Hard", ScheduledAt: day, Tab: "DSA"})
	insert(t, repo, models.Submission{Link: "d", Category: "Leetcode", Type: "Self", Level: "Hard", ScheduledAt: day.AddDate(0, 0, 10), Tab: "IP"})

	window := SubmissionFilter{Tab: "IP", From: day.AddDate(0, 0, -1), To: day.AddDate(0, 0, 1)}

	all, err := repo.List(ctx, window)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Link)
	assert.Equal(t, "b", all[1].Link)

	window.Categories = []string{"Codeforces"}
	filtered, err := repo.List(ctx, window)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "b", filtered[0].Link)
}

// =============================================================================
// ProgressRepository
// =============================================================================

func TestProgress_ZeroActivityCategoriesAreIncluded(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	subs := NewSubmissionRepository(db)
	repo := NewProgressRepository(db)

	for _, link := range []string{"a", "b", "c", "d"} {
		insert(t, subs, models.Submission{Link: link, Category: "Leetcode", Type: "Self", Level: "Hard", Done: true, ScheduledAt: day, Tab: "IP"})
	}

	counts, err := repo.CompletedSince(ctx, "IP", day.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Equal(t, []models.CategoryCount{
		{Category: "Leetcode", Count: 4},
		{Category: "Codeforces", Count: 0},
		{Category: "GeeksforGeeks", Count: 0},
	}, counts)
}

func TestProgress_DistinctCompletedCountsLinksOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	subs := NewSubmissionRepository(db)

	insert(t, subs, models.Submission{Link: "a", Category: "Leetcode", Type: "Self", Level: "Hard", Done: true, ScheduledAt: day, Tab: "IP"})
	insert(t, subs, models.Submission{Link: "a", Category: "Leetcode", Type: "Self", Level: "Hard", Done: true, Rts: 2, ScheduledAt: day.AddDate(0, 0, 3), Tab: "IP"})
	insert(t, subs, models.Submission{Link: "b", Category: "Leetcode", Type: "Self", Level: "Hard", Done: false, ScheduledAt: day, Tab: "IP"})

	counts, err := NewProgressRepository(db).DistinctCompleted(ctx, "IP")
	require.NoError(t, err)
	require.Len(t, counts, 3)
	assert.Equal(t, 1, counts[0].Count)
}

func TestProgress_PendingBeforeExcludesFuture(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	subs := NewSubmissionRepository(db)
	endOfToday := time.Date(2023, 10, 2, 0, 0, 0, 0, time.UTC)

	insert(t, subs, models.Submission{Link: "overdue", Category: "Codeforces", Type: "Self", Level: "Hard", ScheduledAt: day.AddDate(0, 0, -3), Tab: "IP"})
	insert(t, subs, models.Submission{Link: "today", Category: "Codeforces", Type: "Self", Level: "Hard", ScheduledAt: day, Tab: "IP"})
	insert(t, subs, models.Submission{Link: "future", Category: "Codeforces", Type: "Self", Level: "Hard", ScheduledAt: endOfToday, Tab: "IP"})
	insert(t, subs, models.Submission{Link: "done", Category: "Codeforces", Type: "Self", Level: "Hard", Done: true, ScheduledAt: day, Tab: "IP"})

	counts, err := NewProgressRepository(db).PendingBefore(ctx, "IP", endOfToday)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryCount{Category: "Codeforces", Count: 2}, counts[1])
}

func TestProgress_SameCategoryNameInOtherTabIsIgnored(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO sp_category (name, tab) VALUES ('Leetcode', 'DSA')`)
	require.NoError(t, err)
	insert(t, NewSubmissionRepository(db), models.Submission{Link: "a", Category: "Leetcode", Type: "Self", Level: "Hard", Done: true, ScheduledAt: day, Tab: "DSA"})

	counts, err := NewProgressRepository(db).DistinctCompleted(ctx, "IP")
	require.NoError(t, err)
	assert.Equal(t, 0, counts[0].Count)
}
