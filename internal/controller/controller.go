// Package controller implements the learn / replay / repair state machine
// that turns intersection classifications into turn commands.
package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/sbenjam1n/theseus/internal/maze"
)

// Default grid extent. The path buffer holds at most width*height tokens.
const (
	DefaultGridWidth  = 11
	DefaultGridHeight = 11
)

var errPathExhausted = errors.New("learned path ended before the goal")

// Phase is the controller's current mode.
type Phase uint8

const (
	Exploring Phase = iota
	Replaying
	Repairing
	Solved
)

var phaseNames = [...]string{"exploring", "replaying", "repairing", "solved"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

// Drive physically performs a turn and advances to the next intersection.
type Drive interface {
	ExecuteTurn(ctx context.Context, t maze.Turn) error
}

// Sensor classifies the intersection the vehicle is standing on.
type Sensor interface {
	Classify(ctx context.Context) (maze.Classification, error)
}

// Observer receives feedback for display or audio. It never changes behavior.
type Observer interface {
	OnPathChanged(path []maze.Turn)
	OnSolved()
}

// PhaseObserver is implemented by observers that also want phase transitions.
type PhaseObserver interface {
	OnPhaseChanged(tr Transition)
}

// Transition describes a phase change. Reason is set when replay diverged.
type Transition struct {
	From     Phase
	To       Phase
	Index    int
	Position maze.Position
	Reason   error
}

// Options configures a Controller.
type Options struct {
	MaxPathLength  int
	RepairEnabled  bool
	InitialHeading maze.Heading
	Observer       Observer
}

// DefaultOptions sizes the path buffer for a width x height grid.
func DefaultOptions(width, height int) Options {
	return Options{
		MaxPathLength:  width * height,
		RepairEnabled:  true,
		InitialHeading: maze.North,
	}
}

// Stats counts what happened during the current traversal.
type Stats struct {
	Steps       int `json:"steps"`
	Divergences int `json:"divergences"`
	Splices     int `json:"splices"`
	Simplified  int `json:"simplified"`
}

// Controller owns the learned path, the ledger and the vehicle's pose.
// It is not safe for concurrent use.
type Controller struct {
	drive   Drive
	opts    Options
	path    *maze.Path
	ledger  *maze.Ledger
	compass maze.Compass
	odo     maze.Odometer

	phase       Phase
	cursor      int
	repairSteps int
	spliced     bool
	stats       Stats
	err         error
}

// New returns a controller that explores an unknown maze.
func New(drive Drive, opts Options) *Controller {
	if opts.MaxPathLength <= 0 {
		opts.MaxPathLength = DefaultGridWidth * DefaultGridHeight
	}
	return &Controller{
		drive:   drive,
		opts:    opts,
		path:    maze.NewPath(opts.MaxPathLength),
		ledger:  maze.NewLedger(2 * opts.MaxPathLength),
		compass: maze.NewCompass(opts.InitialHeading),
		odo:     maze.NewOdometer(maze.Position{}),
		phase:   Exploring,
	}
}

// Resume returns a controller that replays a previously learned path.
func Resume(drive Drive, learned []maze.Turn, opts Options) (*Controller, error) {
	c := New(drive, opts)
	p, err := maze.PathFrom(learned, c.opts.MaxPathLength)
	if err != nil {
		return nil, fmt.Errorf("resume learned path: %w", err)
	}
	c.path = p
	c.phase = Replaying
	return c, nil
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.phase }

// Path returns a snapshot of the learned path.
func (c *Controller) Path() []maze.Turn { return c.path.Turns() }

// Cursor is the replay index into the path.
func (c *Controller) Cursor() int { return c.cursor }

// Position is the odometer's estimate of the vehicle's cell.
func (c *Controller) Position() maze.Position { return c.odo.Position() }

// Heading is the vehicle's current absolute heading.
func (c *Controller) Heading() maze.Heading { return c.compass.Heading() }

// Ledger returns a snapshot of the current repair episode's records.
func (c *Controller) Ledger() []maze.Record { return c.ledger.Records() }

// Stats returns counters for the current traversal.
func (c *Controller) Stats() Stats { return c.stats }

// Err returns the fatal error that halted the controller, if any.
func (c *Controller) Err() error { return c.err }

// Step processes one intersection to completion.
func (c *Controller) Step(ctx context.Context, cls maze.Classification) error {
	if c.err != nil {
		return fmt.Errorf("%w: %w", ErrHalted, c.err)
	}
	switch c.phase {
	case Exploring:
		return c.explore(ctx, cls)
	case Replaying:
		return c.replay(ctx, cls)
	case Repairing:
		return c.repair(ctx, cls)
	}
	return ErrSolved
}

// Traverse classifies and steps until the goal is reached or a fatal error.
func (c *Controller) Traverse(ctx context.Context, sensor Sensor) error {
	for c.phase != Solved {
		if err := ctx.Err(); err != nil {
			return err
		}
		cls, err := sensor.Classify(ctx)
		if err != nil {
			return fmt.Errorf("classify intersection: %w", err)
		}
		if err := c.Step(ctx, cls); err != nil {
			return err
		}
	}
	return nil
}

// BeginTraversal puts a solved controller back at the start, ready to
// replay the learned path.
func (c *Controller) BeginTraversal() error {
	if c.err != nil {
		return fmt.Errorf("%w: %w", ErrHalted, c.err)
	}
	if c.phase != Solved {
		return ErrTraversalInProgress
	}
	c.compass = maze.NewCompass(c.opts.InitialHeading)
	c.odo = maze.NewOdometer(maze.Position{})
	c.ledger.Reset()
	c.cursor = 0
	c.repairSteps = 0
	c.spliced = false
	c.stats = Stats{}
	c.setPhase(Replaying, nil)
	return nil
}

func (c *Controller) explore(ctx context.Context, cls maze.Classification) error {
	if cls.Goal {
		c.solve()
		return nil
	}
	return c.learn(ctx, maze.Choose(cls))
}

func (c *Controller) replay(ctx context.Context, cls maze.Classification) error {
	if cls.Goal {
		if c.cursor < c.path.Len() {
			c.path.Truncate(c.cursor)
			c.notifyPath()
		}
		c.solve()
		return nil
	}
	if c.cursor >= c.path.Len() {
		return c.diverge(ctx, cls, errPathExhausted)
	}

	t := c.path.At(c.cursor)
	if !maze.Consistent(t, cls) {
		reason := fmt.Errorf("expected %s, sensed %s", t, cls)
		if cls.DeadEnd() {
			reason = fmt.Errorf("%w: expected %s", ErrInvalidClassification, t)
		}
		return c.diverge(ctx, cls, reason)
	}
	if err := c.advance(ctx, t); err != nil {
		return err
	}
	c.cursor++
	return nil
}

// diverge remembers where the abandoned part of the path would have led,
// cuts it off and handles the current intersection as a repair step.
func (c *Controller) diverge(ctx context.Context, cls maze.Classification, reason error) error {
	if !c.opts.RepairEnabled {
		return c.fail(fmt.Errorf("%w: %v", ErrDivergenceUnrecoverable, reason))
	}

	c.ledger.Reset()
	stale := c.path.Tail(c.cursor)
	if err := c.ledger.RecordSuffix(c.odo.Position(), c.compass.Heading(), stale); err != nil {
		return c.fail(err)
	}
	c.path.Truncate(c.cursor)
	c.repairSteps = 0
	c.stats.Divergences++
	c.setPhase(Repairing, reason)
	c.notifyPath()

	return c.repair(ctx, cls)
}

func (c *Controller) repair(ctx context.Context, cls maze.Classification) error {
	if cls.Goal {
		c.solve()
		return nil
	}
	if c.repairSteps >= c.opts.MaxPathLength {
		return c.fail(fmt.Errorf("%w: no goal or known cell after %d repair steps",
			ErrDivergenceUnrecoverable, c.repairSteps))
	}

	t := maze.Choose(cls)
	h := c.compass.Heading()
	if err := c.learn(ctx, t); err != nil {
		return err
	}
	c.repairSteps++

	pos := c.odo.Position()
	if err := c.ledger.Explore(h, t, pos); err != nil {
		return c.fail(err)
	}
	if k, ok := c.ledger.Match(pos); ok {
		return c.splice(k)
	}
	return nil
}

// splice appends the still valid remainder of the old route after the
// vehicle reached stale ledger record k, and resumes replay there.
func (c *Controller) splice(k int) error {
	cont := c.ledger.Continuation(k, c.compass.Heading())
	boundary := c.path.Len()
	if err := c.path.Extend(cont); err != nil {
		return c.fail(err)
	}
	c.cursor = boundary
	c.spliced = true
	c.stats.Splices++
	c.setPhase(Replaying, nil)
	c.notifyPath()
	return nil
}

// learn records t in the path, folds dead ends and drives it.
func (c *Controller) learn(ctx context.Context, t maze.Turn) error {
	if _, err := c.path.Append(t); err != nil {
		return c.fail(err)
	}
	if c.path.Simplify() {
		c.stats.Simplified++
	}
	c.notifyPath()
	return c.advance(ctx, t)
}

func (c *Controller) advance(ctx context.Context, t maze.Turn) error {
	h := c.compass.Heading()
	if err := c.drive.ExecuteTurn(ctx, t); err != nil {
		return c.fail(fmt.Errorf("execute turn %s: %w", t, err))
	}
	c.compass.Apply(t)
	c.odo.Apply(h, t)
	c.stats.Steps++
	return nil
}

func (c *Controller) solve() {
	// A splice can leave a Back at the seam between explored and old tokens.
	if c.spliced {
		if n := c.path.Compact(); n > 0 {
			c.stats.Simplified += n / 2
			c.notifyPath()
		}
	}
	c.setPhase(Solved, nil)
	if c.opts.Observer != nil {
		c.opts.Observer.OnSolved()
	}
}

func (c *Controller) setPhase(to Phase, reason error) {
	from := c.phase
	c.phase = to
	if po, ok := c.opts.Observer.(PhaseObserver); ok {
		po.OnPhaseChanged(Transition{
			From:     from,
			To:       to,
			Index:    c.cursor,
			Position: c.odo.Position(),
			Reason:   reason,
		})
	}
}

func (c *Controller) notifyPath() {
	if c.opts.Observer != nil {
		c.opts.Observer.OnPathChanged(c.path.Turns())
	}
}

func (c *Controller) fail(err error) error {
	index := c.path.Len()
	if c.phase == Replaying {
		index = c.cursor
	}
	c.err = &RunError{
		Phase:    c.phase,
		Index:    index,
		Position: c.odo.Position(),
		Heading:  c.compass.Heading(),
		Err:      err,
	}
	return c.err
}
