package controller

import (
	"errors"
	"fmt"

	"github.com/sbenjam1n/theseus/internal/maze"
)

var (
	// ErrCapacityExceeded means the path buffer or the ledger is full: the
	// maze is larger than the configured bound.
	ErrCapacityExceeded = maze.ErrCapacityExceeded
	// ErrDivergenceUnrecoverable means replay diverged with repair disabled,
	// or a repair ran out of steps before reaching the goal or a known cell.
	ErrDivergenceUnrecoverable = errors.New("controller: divergence unrecoverable")
	// ErrInvalidClassification marks a dead end reported where the replayed
	// token needs an exit. It is handled as a divergence, never returned.
	ErrInvalidClassification = errors.New("controller: classification has no exit for expected turn")
	// ErrHalted is returned when stepping a controller after a fatal error.
	ErrHalted = errors.New("controller: halted after fatal error")
	// ErrSolved is returned when stepping a traversal that already reached the goal.
	ErrSolved = errors.New("controller: traversal already solved")
	// ErrTraversalInProgress is returned by BeginTraversal before the goal is reached.
	ErrTraversalInProgress = errors.New("controller: traversal in progress")
)

// RunError is a fatal error with the controller state at the time it happened.
type RunError struct {
	Phase    Phase
	Index    int
	Position maze.Position
	Heading  maze.Heading
	Err      error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s at index %d, position %s facing %s: %v",
		e.Phase, e.Index, e.Position, e.Heading, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
