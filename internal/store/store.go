// Package store persists learned paths and traversal history in PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sbenjam1n/theseus/internal/maze"
)

// ErrNotFound means no path has been learned for the maze.
var ErrNotFound = errors.New("store: no learned path")

// Run statuses.
const (
	RunSolved = "solved"
	RunFailed = "failed"
)

// LearnedPath is the persisted route for one maze.
type LearnedPath struct {
	MazeID    string      `json:"maze_id"`
	Turns     []maze.Turn `json:"-"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Run is one traversal attempt.
type Run struct {
	ID          uuid.UUID `json:"id"`
	MazeID      string    `json:"maze_id"`
	Attempt     int       `json:"attempt"`
	StartPhase  string    `json:"start_phase"`
	Status      string    `json:"status"`
	Path        string    `json:"path"`
	Steps       int       `json:"steps"`
	Divergences int       `json:"divergences"`
	Splices     int       `json:"splices"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Duration is how long the traversal took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store reads and writes the learned_paths and runs tables.
type Store struct {
	db *pgxpool.Pool
}

// New creates a Store on an open pool.
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// GetPath returns the learned path for mazeID, or ErrNotFound.
func (s *Store) GetPath(ctx context.Context, mazeID string) (*LearnedPath, error) {
	var (
		p       = LearnedPath{MazeID: mazeID}
		encoded string
	)
	err := s.db.QueryRow(ctx,
		"SELECT path, updated_at FROM learned_paths WHERE maze_id = $1",
		mazeID,
	).Scan(&encoded, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch path for %s: %w", mazeID, err)
	}

	p.Turns, err = maze.ParseTurns(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode path for %s: %w", mazeID, err)
	}
	return &p, nil
}

// LoadPath returns the learned turns for mazeID. ok is false when the maze
// has never been solved.
func (s *Store) LoadPath(ctx context.Context, mazeID string) (turns []maze.Turn, ok bool, err error) {
	p, err := s.GetPath(ctx, mazeID)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return p.Turns, true, nil
}

// SavePath replaces the learned path for mazeID.
func (s *Store) SavePath(ctx context.Context, mazeID string, turns []maze.Turn) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO learned_paths (maze_id, path, length, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (maze_id) DO UPDATE
		SET path = EXCLUDED.path, length = EXCLUDED.length, updated_at = now()
	`, mazeID, maze.FormatTurns(turns), len(turns))
	if err != nil {
		return fmt.Errorf("save path for %s: %w", mazeID, err)
	}
	return nil
}

// DeletePath forgets the learned path. It reports whether one existed.
func (s *Store) DeletePath(ctx context.Context, mazeID string) (bool, error) {
	tag, err := s.db.Exec(ctx, "DELETE FROM learned_paths WHERE maze_id = $1", mazeID)
	if err != nil {
		return false, fmt.Errorf("delete path for %s: %w", mazeID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListPaths returns every learned path, most recently updated first.
func (s *Store) ListPaths(ctx context.Context) ([]LearnedPath, error) {
	rows, err := s.db.Query(ctx,
		"SELECT maze_id, path, updated_at FROM learned_paths ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list paths: %w", err)
	}
	defer rows.Close()

	var paths []LearnedPath
	for rows.Next() {
		var (
			p       LearnedPath
			encoded string
		)
		if err := rows.Scan(&p.MazeID, &encoded, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan path: %w", err)
		}
		if p.Turns, err = maze.ParseTurns(encoded); err != nil {
			return nil, fmt.Errorf("decode path for %s: %w", p.MazeID, err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// RecordRun inserts a finished traversal.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO runs (id, maze_id, attempt, start_phase, status, path,
		                  steps, divergences, splices, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, run.ID, run.MazeID, run.Attempt, run.StartPhase, run.Status, run.Path,
		run.Steps, run.Divergences, run.Splices, run.Error, run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// History returns the latest runs for mazeID, newest first.
func (s *Store) History(ctx context.Context, mazeID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, maze_id, attempt, start_phase, status, path,
		       steps, divergences, splices, error, started_at, finished_at
		FROM runs
		WHERE maze_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`, mazeID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history for %s: %w", mazeID, err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID, &r.MazeID, &r.Attempt, &r.StartPhase, &r.Status, &r.Path,
			&r.Steps, &r.Divergences, &r.Splices, &r.Error, &r.StartedAt, &r.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
