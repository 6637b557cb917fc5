package sim

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sbenjam1n/theseus/internal/maze"
)

// Maze files draw walls on a (2h+1) x (2w+1) character lattice. Cell (c,r)
// sits at line 2r+1, column 2c+1; the characters between cells are walls
// unless they are a space or a dot. Inside a cell, 'G' marks the goal and
// 'S', '^', '>', 'v' or '<' marks the start and its heading ('S' faces
// north). Blank lines and lines starting with "//" are ignored.

// ParseFile reads a maze file.
func ParseFile(filename string) (*Grid, []string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	g, warnings, err := Parse(f)
	if err != nil {
		return nil, warnings, fmt.Errorf("%s: %w", filename, err)
	}
	return g, warnings, nil
}

// Parse reads a maze from r. Problems that still leave a usable grid are
// returned as warnings.
func Parse(r io.Reader) (*Grid, []string, error) {
	var lines []string
	width := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		lines = append(lines, line)
		if len(line) > width {
			width = len(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}

	if len(lines) < 3 || len(lines)%2 == 0 {
		return nil, nil, fmt.Errorf("maze needs an odd number of at least 3 lines, got %d", len(lines))
	}
	if width < 3 {
		return nil, nil, fmt.Errorf("maze needs at least 3 columns, got %d", width)
	}
	if width%2 == 0 {
		width++
	}

	g, err := NewGrid((width-1)/2, (len(lines)-1)/2)
	if err != nil {
		return nil, nil, err
	}
	at := func(r, c int) byte {
		if c < len(lines[r]) {
			return lines[r][c]
		}
		return ' '
	}

	var warnings []string
	for r := 0; r < g.Height; r++ {
		for c := 0; c < g.Width; c++ {
			cell := Coord{Col: c, Row: r}
			line, col := 2*r+1, 2*c+1
			if err := g.mark(cell, at(line, col)); err != nil {
				warnings = append(warnings, fmt.Sprintf("line %d col %d: %v", line+1, col+1, err))
			}
			if c+1 < g.Width && open(at(line, col+1)) {
				g.SetWall(cell, maze.East, false)
			}
			if r+1 < g.Height && open(at(line+1, col)) {
				g.SetWall(cell, maze.South, false)
			}
		}
	}

	for r := 0; r < g.Height; r++ {
		line := 2*r + 1
		if open(at(line, 0)) || open(at(line, 2*g.Width)) {
			warnings = append(warnings, fmt.Sprintf("line %d: gap in the outer wall is treated as closed", line+1))
		}
	}
	for c := 0; c < g.Width; c++ {
		col := 2*c + 1
		if open(at(0, col)) || open(at(2*g.Height, col)) {
			warnings = append(warnings, fmt.Sprintf("col %d: gap in the outer wall is treated as closed", col+1))
		}
	}

	return g, warnings, nil
}

func open(ch byte) bool {
	return ch == ' ' || ch == '.'
}

func (g *Grid) mark(cell Coord, ch byte) error {
	switch ch {
	case ' ', '.':
		return nil
	case 'G', 'g':
		if g.HasGoal {
			return fmt.Errorf("second goal at %s, keeping %s", cell, g.Goal)
		}
		g.Goal, g.HasGoal = cell, true
		return nil
	}

	heading := maze.North
	switch ch {
	case 'S', 's', '^':
	case '>':
		heading = maze.East
	case 'v', 'V':
		heading = maze.South
	case '<':
		heading = maze.West
	default:
		return fmt.Errorf("unknown cell marker %q", ch)
	}
	if g.HasStart {
		return fmt.Errorf("second start at %s, keeping %s", cell, g.Start)
	}
	g.Start, g.StartHeading, g.HasStart = cell, heading, true
	return nil
}
