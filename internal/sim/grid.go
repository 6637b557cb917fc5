// Package sim provides a simulated grid maze and a vehicle that drives it.
// It stands in for the line-following hardware: the vehicle classifies the
// cell it stands on and moves one cell per executed turn.
package sim

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sbenjam1n/theseus/internal/maze"
)

var (
	// ErrOutOfBounds means a coordinate is outside the grid.
	ErrOutOfBounds = errors.New("sim: cell out of bounds")
	// ErrBlocked means the vehicle tried to drive through a wall.
	ErrBlocked = errors.New("sim: wall blocks the way")
)

// Coord is a cell in screen order: row 0 is the northern edge.
type Coord struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.Col, c.Row)
}

var steps = [4]Coord{
	maze.North: {Col: 0, Row: -1},
	maze.East:  {Col: 1, Row: 0},
	maze.South: {Col: 0, Row: 1},
	maze.West:  {Col: -1, Row: 0},
}

// Step returns the neighbouring coordinate in direction h.
func (c Coord) Step(h maze.Heading) Coord {
	d := steps[h]
	return Coord{Col: c.Col + d.Col, Row: c.Row + d.Row}
}

// Cell holds the four walls of one cell, indexed by heading.
type Cell struct {
	Walls [4]bool
}

// Grid is a rectangular maze of cells with a start and a goal.
type Grid struct {
	Width        int
	Height       int
	Cells        [][]Cell
	Start        Coord
	StartHeading maze.Heading
	Goal         Coord
	HasStart     bool
	HasGoal      bool
}

// NewGrid returns a width x height grid with every wall closed.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", width, height)
	}
	cells := make([][]Cell, height)
	for r := range cells {
		cells[r] = make([]Cell, width)
		for c := range cells[r] {
			cells[r][c] = Cell{Walls: [4]bool{true, true, true, true}}
		}
	}
	return &Grid{Width: width, Height: height, Cells: cells}, nil
}

// Contains reports whether c lies inside the grid.
func (g *Grid) Contains(c Coord) bool {
	return c.Col >= 0 && c.Col < g.Width && c.Row >= 0 && c.Row < g.Height
}

// Open reports whether the vehicle can leave c in direction h.
func (g *Grid) Open(c Coord, h maze.Heading) bool {
	if !g.Contains(c) || !g.Contains(c.Step(h)) {
		return false
	}
	return !g.Cells[c.Row][c.Col].Walls[h]
}

// SetWall opens or closes the wall on side h of c, and the matching wall of
// the neighbour.
func (g *Grid) SetWall(c Coord, h maze.Heading, wall bool) error {
	n := c.Step(h)
	if !g.Contains(c) || !g.Contains(n) {
		return fmt.Errorf("wall %s %s: %w", c, h, ErrOutOfBounds)
	}
	g.Cells[c.Row][c.Col].Walls[h] = wall
	g.Cells[n.Row][n.Col].Walls[h.Turn(maze.Back)] = wall
	return nil
}

// Neighbours returns the cells reachable from c in one move.
func (g *Grid) Neighbours(c Coord) []Coord {
	var out []Coord
	for h := maze.North; h <= maze.West; h++ {
		if g.Open(c, h) {
			out = append(out, c.Step(h))
		}
	}
	return out
}

var startMarks = [4]byte{
	maze.North: '^',
	maze.East:  '>',
	maze.South: 'v',
	maze.West:  '<',
}

// String renders the grid in the same text format Parse reads.
func (g *Grid) String() string {
	var sb strings.Builder
	for r := 0; r <= 2*g.Height; r++ {
		for c := 0; c <= 2*g.Width; c++ {
			sb.WriteByte(g.glyph(r, c))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (g *Grid) glyph(r, c int) byte {
	switch {
	case r%2 == 0 && c%2 == 0:
		return '+'
	case r%2 == 1 && c%2 == 1:
		cell := Coord{Col: c / 2, Row: r / 2}
		switch {
		case g.HasGoal && cell == g.Goal:
			return 'G'
		case g.HasStart && cell == g.Start:
			if g.StartHeading == maze.North {
				return 'S'
			}
			return startMarks[g.StartHeading]
		}
		return ' '
	case r%2 == 0:
		// Horizontal wall below row r/2-1.
		above := Coord{Col: c / 2, Row: r/2 - 1}
		if r == 0 || r == 2*g.Height || !g.Open(above, maze.South) {
			return '-'
		}
		return ' '
	default:
		left := Coord{Col: c/2 - 1, Row: r / 2}
		if c == 0 || c == 2*g.Width || !g.Open(left, maze.East) {
			return '|'
		}
		return ' '
	}
}
