package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/sbenjam1n/theseus/internal/maze"
)

// Vehicle drives a Grid one cell per turn. Every cell counts as an
// intersection. It satisfies controller.Drive and controller.Sensor.
type Vehicle struct {
	grid    *Grid
	at      Coord
	heading maze.Heading
	trail   []Coord
}

// NewVehicle places a vehicle on the grid's start cell.
func NewVehicle(g *Grid) (*Vehicle, error) {
	if !g.HasStart {
		return nil, errors.New("sim: grid has no start cell")
	}
	v := &Vehicle{grid: g}
	v.Reset()
	return v, nil
}

// Reset puts the vehicle back on the start cell with the start heading.
func (v *Vehicle) Reset() {
	v.at = v.grid.Start
	v.heading = v.grid.StartHeading
	v.trail = []Coord{v.at}
}

// Classify reports the exits relative to the current heading.
func (v *Vehicle) Classify(ctx context.Context) (maze.Classification, error) {
	if err := ctx.Err(); err != nil {
		return maze.Classification{}, err
	}
	return maze.Classification{
		Left:     v.grid.Open(v.at, v.heading.Turn(maze.Left)),
		Straight: v.grid.Open(v.at, v.heading),
		Right:    v.grid.Open(v.at, v.heading.Turn(maze.Right)),
		Goal:     v.grid.HasGoal && v.at == v.grid.Goal,
	}, nil
}

// ExecuteTurn rotates by t and drives to the next cell.
func (v *Vehicle) ExecuteTurn(ctx context.Context, t maze.Turn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h := v.heading.Turn(t)
	if !v.grid.Open(v.at, h) {
		return fmt.Errorf("turn %s at %s facing %s: %w", t, v.at, v.heading, ErrBlocked)
	}
	v.heading = h
	v.at = v.at.Step(h)
	v.trail = append(v.trail, v.at)
	return nil
}

func (v *Vehicle) Position() Coord { return v.at }

func (v *Vehicle) Heading() maze.Heading { return v.heading }

// Moves is the number of cells driven since the last Reset.
func (v *Vehicle) Moves() int { return len(v.trail) - 1 }

// Trail returns the cells visited since the last Reset, start included.
func (v *Vehicle) Trail() []Coord {
	out := make([]Coord, len(v.trail))
	copy(out, v.trail)
	return out
}

func (v *Vehicle) Grid() *Grid { return v.grid }
