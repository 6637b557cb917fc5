package runner

import (
	"context"
	"sync"

	"github.com/sbenjam1n/theseus/internal/maze"
	"github.com/sbenjam1n/theseus/internal/store"
)

// MemoryStore is a PathStore that lives only as long as the process.
type MemoryStore struct {
	mu    sync.Mutex
	paths map[string][]maze.Turn
	runs  []store.Run
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{paths: make(map[string][]maze.Turn)}
}

func (m *MemoryStore) LoadPath(_ context.Context, mazeID string) ([]maze.Turn, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.paths[mazeID]
	if !ok {
		return nil, false, nil
	}
	return append([]maze.Turn(nil), p...), true, nil
}

func (m *MemoryStore) SavePath(_ context.Context, mazeID string, turns []maze.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths[mazeID] = append([]maze.Turn(nil), turns...)
	return nil
}

func (m *MemoryStore) RecordRun(_ context.Context, run store.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

// Runs returns the recorded runs for mazeID in insertion order.
func (m *MemoryStore) Runs(mazeID string) []store.Run {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Run
	for _, r := range m.runs {
		if r.MazeID == mazeID {
			out = append(out, r)
		}
	}
	return out
}
