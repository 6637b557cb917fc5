// Package runner drives repeated traversals of one maze: it restores the
// learned path, runs the controller against a vehicle, and records every
// attempt.
package runner

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sbenjam1n/theseus/internal/controller"
	"github.com/sbenjam1n/theseus/internal/lock"
	"github.com/sbenjam1n/theseus/internal/maze"
	"github.com/sbenjam1n/theseus/internal/store"
)

// PathStore persists learned paths and run history.
type PathStore interface {
	LoadPath(ctx context.Context, mazeID string) ([]maze.Turn, bool, error)
	SavePath(ctx context.Context, mazeID string, turns []maze.Turn) error
	RecordRun(ctx context.Context, run store.Run) error
}

// Locker grants exclusive use of a maze.
type Locker interface {
	Acquire(ctx context.Context, mazeID string) (lock.Lease, error)
}

// Vehicle is what the controller drives. Reset returns it to the start.
type Vehicle interface {
	controller.Drive
	controller.Sensor
	Reset()
}

// ObserverFunc builds the observer for one run.
type ObserverFunc func(ctx context.Context, mazeID, runID string) controller.Observer

// Options configures a Session.
type Options struct {
	Attempts   int
	Controller controller.Options
	// Fresh ignores any stored path and explores from scratch.
	Fresh bool
	// Before runs ahead of every attempt, e.g. to change the maze.
	Before  func(attempt int) error
	Locker  Locker
	Observe ObserverFunc
}

// Session runs traversals of one maze.
type Session struct {
	mazeID  string
	vehicle Vehicle
	store   PathStore
	opts    Options
	relay   *relay
}

// NewSession creates a Session. Attempts defaults to 1.
func NewSession(mazeID string, vehicle Vehicle, paths PathStore, opts Options) *Session {
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}
	return &Session{
		mazeID:  mazeID,
		vehicle: vehicle,
		store:   paths,
		opts:    opts,
		relay:   &relay{mazeID: mazeID, fixed: opts.Controller.Observer},
	}
}

// Run performs the configured number of traversals and returns one record
// per attempt that started. It stops at the first failed traversal.
func (s *Session) Run(ctx context.Context) ([]store.Run, error) {
	var lease lock.Lease
	if s.opts.Locker != nil {
		var err error
		if lease, err = s.opts.Locker.Acquire(ctx, s.mazeID); err != nil {
			return nil, err
		}
		defer func() {
			if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
				log.Printf("maze %s: %v", s.mazeID, err)
			}
		}()
	}

	ctrl, err := s.controller(ctx)
	if err != nil {
		return nil, err
	}

	runs := make([]store.Run, 0, s.opts.Attempts)
	for attempt := 1; attempt <= s.opts.Attempts; attempt++ {
		if attempt > 1 && lease != nil {
			if err := lease.Extend(ctx); err != nil {
				return runs, err
			}
		}
		if s.opts.Before != nil {
			if err := s.opts.Before(attempt); err != nil {
				return runs, fmt.Errorf("prepare traversal %d: %w", attempt, err)
			}
		}
		s.vehicle.Reset()

		runID := uuid.New()
		s.relay.run = nil
		if s.opts.Observe != nil {
			s.relay.run = s.opts.Observe(ctx, s.mazeID, runID.String())
		}
		if attempt > 1 {
			if err := ctrl.BeginTraversal(); err != nil {
				return runs, err
			}
		}

		run, err := s.traverse(ctx, ctrl, runID, attempt)
		runs = append(runs, run)
		if err != nil {
			return runs, err
		}
	}
	return runs, nil
}

func (s *Session) controller(ctx context.Context) (*controller.Controller, error) {
	opts := s.opts.Controller
	opts.Observer = s.relay

	if !s.opts.Fresh {
		learned, ok, err := s.store.LoadPath(ctx, s.mazeID)
		if err != nil {
			return nil, fmt.Errorf("load learned path: %w", err)
		}
		if ok {
			log.Printf("maze %s: replaying learned path %s (%d turns)",
				s.mazeID, maze.FormatTurns(learned), len(learned))
			return controller.Resume(s.vehicle, learned, opts)
		}
	}
	log.Printf("maze %s: no learned path, exploring", s.mazeID)
	return controller.New(s.vehicle, opts), nil
}

func (s *Session) traverse(ctx context.Context, ctrl *controller.Controller, runID uuid.UUID, attempt int) (store.Run, error) {
	run := store.Run{
		ID:         runID,
		MazeID:     s.mazeID,
		Attempt:    attempt,
		StartPhase: ctrl.Phase().String(),
		StartedAt:  time.Now(),
	}

	log.Printf("maze %s: traversal %d started (%s), run %s", s.mazeID, attempt, run.StartPhase, run.ID)
	err := ctrl.Traverse(ctx, s.vehicle)

	stats := ctrl.Stats()
	run.FinishedAt = time.Now()
	run.Path = maze.FormatTurns(ctrl.Path())
	run.Steps = stats.Steps
	run.Divergences = stats.Divergences
	run.Splices = stats.Splices

	if err != nil {
		run.Status = store.RunFailed
		run.Error = err.Error()
		log.Printf("maze %s: traversal %d failed after %d steps: %v", s.mazeID, attempt, run.Steps, err)
		s.record(ctx, run)
		return run, fmt.Errorf("traversal %d: %w", attempt, err)
	}

	run.Status = store.RunSolved
	log.Printf("maze %s: traversal %d solved in %d steps (%d divergences, %d splices), path %s",
		s.mazeID, attempt, run.Steps, run.Divergences, run.Splices, run.Path)
	if err := s.store.SavePath(ctx, s.mazeID, ctrl.Path()); err != nil {
		run.Status = store.RunFailed
		run.Error = fmt.Sprintf("save path: %v", err)
		s.record(ctx, run)
		return run, fmt.Errorf("traversal %d: %w", attempt, err)
	}
	s.record(ctx, run)
	return run, nil
}

// record keeps history best effort; a lost row never fails the session.
func (s *Session) record(ctx context.Context, run store.Run) {
	if err := s.store.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		log.Printf("maze %s: %v", s.mazeID, err)
	}
}

// relay forwards controller feedback to the session's fixed observer and the
// current run's observer, and logs repair episodes.
type relay struct {
	mazeID string
	fixed  controller.Observer
	run    controller.Observer
}

func (r *relay) each(fn func(controller.Observer)) {
	for _, o := range []controller.Observer{r.fixed, r.run} {
		if o != nil {
			fn(o)
		}
	}
}

func (r *relay) OnPathChanged(path []maze.Turn) {
	r.each(func(o controller.Observer) { o.OnPathChanged(path) })
}

func (r *relay) OnSolved() {
	r.each(func(o controller.Observer) { o.OnSolved() })
}

func (r *relay) OnPhaseChanged(tr controller.Transition) {
	switch {
	case tr.To == controller.Repairing:
		log.Printf("maze %s: diverged at index %d %s: %v", r.mazeID, tr.Index, tr.Position, tr.Reason)
	case tr.From == controller.Repairing && tr.To == controller.Replaying:
		log.Printf("maze %s: spliced back onto the learned path at %s", r.mazeID, tr.Position)
	}
	r.each(func(o controller.Observer) {
		if po, ok := o.(controller.PhaseObserver); ok {
			po.OnPhaseChanged(tr)
		}
	})
}
