package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sbenjam1n/theseus/internal/maze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore connects to THESEUS_DATABASE_URL and applies the migrations.
// Tests using it are skipped when the variable is unset.
func testStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("THESEUS_DATABASE_URL")
	if url == "" {
		t.Skip("THESEUS_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = Migrate(ctx, pool, filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)
	return New(pool)
}

func TestMigrationCreatesTables(t *testing.T) {
	sql, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_initial.sql"))
	require.NoError(t, err)
	for _, table := range []string{"learned_paths", "runs"} {
		assert.Contains(t, string(sql), "CREATE TABLE IF NOT EXISTS "+table)
	}
}

func TestMigrateNeedsFiles(t *testing.T) {
	_, err := Migrate(context.Background(), nil, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no migrations")
}

func TestRunDuration(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := Run{StartedAt: start, FinishedAt: start.Add(1500 * time.Millisecond)}
	assert.Equal(t, 1500*time.Millisecond, r.Duration())
}

func TestPathRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	mazeID := "test-" + uuid.NewString()
	t.Cleanup(func() { s.DeletePath(ctx, mazeID) })

	_, ok, err := s.LoadPath(ctx, mazeID)
	require.NoError(t, err)
	assert.False(t, ok, "nothing learned yet")

	for _, want := range []string{"SSLS", "LRSL"} {
		turns, err := maze.ParseTurns(want)
		require.NoError(t, err)
		require.NoError(t, s.SavePath(ctx, mazeID, turns))

		p, err := s.GetPath(ctx, mazeID)
		require.NoError(t, err)
		assert.Equal(t, want, maze.FormatTurns(p.Turns))
	}

	paths, err := s.ListPaths(ctx)
	require.NoError(t, err)
	var ids []string
	for _, p := range paths {
		ids = append(ids, p.MazeID)
	}
	assert.Contains(t, ids, mazeID)

	deleted, err := s.DeletePath(ctx, mazeID)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = s.GetPath(ctx, mazeID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunHistoryRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	mazeID := "test-" + uuid.NewString()

	start := time.Now().UTC().Truncate(time.Microsecond)
	older := Run{
		ID: uuid.New(), MazeID: mazeID, Attempt: 1, StartPhase: "exploring",
		Status: RunSolved, Path: "SSLS", Steps: 12,
		StartedAt: start, FinishedAt: start.Add(time.Second),
	}
	newer := Run{
		ID: uuid.New(), MazeID: mazeID, Attempt: 2, StartPhase: "replaying",
		Status: RunFailed, Path: "SSLS", Steps: 3, Divergences: 1, Splices: 2,
		Error:     "divergence unrecoverable",
		StartedAt: start.Add(2 * time.Second), FinishedAt: start.Add(3 * time.Second),
	}
	for _, r := range []Run{older, newer} {
		require.NoError(t, s.RecordRun(ctx, r))
	}

	runs, err := s.History(ctx, mazeID, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	got := runs[0]
	assert.Equal(t, newer.ID, got.ID, "newest first")
	assert.Equal(t, 2, got.Attempt)
	assert.Equal(t, "replaying", got.StartPhase)
	assert.Equal(t, RunFailed, got.Status)
	assert.Equal(t, "SSLS", got.Path)
	assert.Equal(t, 3, got.Steps)
	assert.Equal(t, 1, got.Divergences)
	assert.Equal(t, 2, got.Splices)
	assert.Equal(t, newer.Error, got.Error)
	assert.True(t, got.StartedAt.Equal(newer.StartedAt), "started_at %v", got.StartedAt)
	assert.Equal(t, time.Second, got.Duration())
	assert.Equal(t, older.ID, runs[1].ID)

	limited, err := s.History(ctx, mazeID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
