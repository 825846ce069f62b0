package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walkerjoe/gsprobe/internal/expect"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord(suite string, failed int) *RunRecord {
	rec := &RunRecord{
		SuiteName:    suite,
		SuiteFile:    "suites/" + suite + ".yaml",
		Command:      "-D cat gs://bucket/obj",
		ExitCode:     0,
		Duration:     1500 * time.Millisecond,
		ChecksTotal:  5,
		ChecksFailed: failed,
	}
	if failed > 0 {
		rec.FailedLabels = []string{"ETag header"}
	}
	return rec
}

func TestRecordAndRecentRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := sampleRecord("doption-cat", 0)
	require.NoError(t, store.RecordRun(ctx, first))
	assert.NotZero(t, first.ID)

	second := sampleRecord("doption-cat", 1)
	require.NoError(t, store.RecordRun(ctx, second))

	runs, err := store.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, 1, runs[0].ChecksFailed)
	assert.Equal(t, []string{"ETag header"}, runs[0].FailedLabels)
	assert.False(t, runs[0].Passed())

	assert.True(t, runs[1].Passed())
	assert.Empty(t, runs[1].FailedLabels)
	assert.Equal(t, 1500*time.Millisecond, runs[1].Duration)
	assert.False(t, runs[1].CreatedAt.IsZero())
}

func TestRecentRunsLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordRun(ctx, sampleRecord("s", 0)))
	}

	runs, err := store.RecentRuns(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordRun(ctx, sampleRecord("doption-cat", 0)))
	require.NoError(t, store.RecordRun(ctx, sampleRecord("doption-cat", 2)))
	require.NoError(t, store.RecordRun(ctx, sampleRecord("other", 0)))

	stats, err := store.Stats(ctx, "doption-cat")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Runs)
	assert.Equal(t, 1, stats.Passed)
	assert.Equal(t, 1, stats.Failed)
	assert.False(t, stats.LastRun.IsZero())

	empty, err := store.Stats(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Runs)
}

func TestPruneByCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		require.NoError(t, store.RecordRun(ctx, sampleRecord("a", 0)))
	}
	require.NoError(t, store.RecordRun(ctx, sampleRecord("b", 0)))

	require.NoError(t, store.Prune(ctx, 0, 4))

	runs, err := store.RecentRuns(ctx, 100)
	require.NoError(t, err)
	// Suite "a" trimmed to 4, suite "b" untouched.
	var a, b int
	for _, r := range runs {
		switch r.SuiteName {
		case "a":
			a++
		case "b":
			b++
		}
	}
	assert.Equal(t, 4, a)
	assert.Equal(t, 1, b)
}

func TestNewRecordFromReport(t *testing.T) {
	suite := &expect.Suite{
		Name:     "doption-cat",
		FilePath: "suites/doption-cat.yaml",
		Args:     []string{"-D", "cat", "gs://b/o"},
	}
	report := &expect.Report{
		Suite:    suite,
		ExitCode: 0,
		Duration: 2 * time.Second,
		Results: []expect.CheckResult{
			{Check: expect.Check{Label: "banner"}, Passed: true},
			{Check: expect.Check{Label: "ETag header"}, Passed: false},
		},
	}

	rec := NewRecord(report)
	assert.Equal(t, "doption-cat", rec.SuiteName)
	assert.Equal(t, "-D cat gs://b/o", rec.Command)
	assert.Equal(t, 2, rec.ChecksTotal)
	assert.Equal(t, 1, rec.ChecksFailed)
	assert.Equal(t, []string{"ETag header"}, rec.FailedLabels)
}

func TestStoreCreatesParentDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.RecordRun(context.Background(), sampleRecord("s", 0)))
}
