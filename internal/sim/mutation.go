package sim

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sbenjam1n/theseus/internal/maze"
)

// Mutation opens or closes one wall between traversals.
type Mutation struct {
	Cell Coord        `json:"cell"`
	Side maze.Heading `json:"side"`
	Wall bool         `json:"wall"`
}

// ParseMutation reads "open COL,ROW SIDE" or "close COL,ROW SIDE",
// e.g. "close 2,0 S".
func ParseMutation(s string) (Mutation, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return Mutation{}, fmt.Errorf("mutation %q: want \"open|close COL,ROW SIDE\"", s)
	}

	var m Mutation
	switch strings.ToLower(fields[0]) {
	case "open":
	case "close":
		m.Wall = true
	default:
		return Mutation{}, fmt.Errorf("mutation %q: unknown action %q", s, fields[0])
	}

	col, row, ok := strings.Cut(fields[1], ",")
	if !ok {
		return Mutation{}, fmt.Errorf("mutation %q: cell must be COL,ROW", s)
	}
	var err error
	if m.Cell.Col, err = strconv.Atoi(col); err != nil {
		return Mutation{}, fmt.Errorf("mutation %q: column: %w", s, err)
	}
	if m.Cell.Row, err = strconv.Atoi(row); err != nil {
		return Mutation{}, fmt.Errorf("mutation %q: row: %w", s, err)
	}

	if m.Side, err = maze.ParseHeading(fields[2]); err != nil {
		return Mutation{}, fmt.Errorf("mutation %q: %w", s, err)
	}
	return m, nil
}

// Apply changes the wall on g.
func (m Mutation) Apply(g *Grid) error {
	return g.SetWall(m.Cell, m.Side, m.Wall)
}

func (m Mutation) String() string {
	action := "open"
	if m.Wall {
		action = "close"
	}
	return fmt.Sprintf("%s %s %s", action, m.Cell, m.Side)
}
