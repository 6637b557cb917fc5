package sim

import (
	"context"
	"strings"
	"testing"

	"github.com/sbenjam1n/theseus/internal/maze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mirror = `+-+-+-+
|G    |
+-+-+ +
| | | |
+ + + +
|    S|
+-+-+-+
`

func parse(t *testing.T, text string) *Grid {
	t.Helper()
	g, warnings, err := Parse(strings.NewReader(text))
	require.NoError(t, err)
	require.Empty(t, warnings)
	return g
}

func TestParseMarkersAndWalls(t *testing.T) {
	g := parse(t, mirror)

	assert.Equal(t, 3, g.Width)
	assert.Equal(t, 3, g.Height)
	assert.True(t, g.HasStart)
	assert.Equal(t, Coord{Col: 2, Row: 2}, g.Start)
	assert.Equal(t, maze.North, g.StartHeading)
	assert.True(t, g.HasGoal)
	assert.Equal(t, Coord{Col: 0, Row: 0}, g.Goal)

	assert.True(t, g.Open(Coord{2, 2}, maze.North), "start to the cell above")
	assert.True(t, g.Open(Coord{2, 1}, maze.South), "walls are symmetric")
	assert.False(t, g.Open(Coord{1, 1}, maze.North))
	assert.False(t, g.Open(Coord{1, 1}, maze.East))
	assert.False(t, g.Open(Coord{2, 2}, maze.East), "outer wall")
	assert.False(t, g.Open(Coord{0, 0}, maze.West), "outer wall")
}

func TestParseRoundTrip(t *testing.T) {
	g := parse(t, mirror)
	assert.Equal(t, mirror, g.String())
}

func TestParseStartHeadingAndComments(t *testing.T) {
	text := "// two cells\n\n+-+-+\n|> G|\n+-+-+\n"
	g := parse(t, text)
	assert.Equal(t, maze.East, g.StartHeading)
	assert.Equal(t, Coord{0, 0}, g.Start)
	assert.Equal(t, Coord{1, 0}, g.Goal)
	assert.True(t, g.Open(Coord{0, 0}, maze.East))
}

func TestParseWarnings(t *testing.T) {
	text := "+-+ +\n|S G|\n+-+-+\n|G   \n+-+-+\n"
	g, warnings, err := Parse(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, warnings, 3)
	assert.Contains(t, warnings[0], "second goal")
	assert.Contains(t, warnings[1], "outer wall")
	assert.Contains(t, warnings[2], "outer wall")
	assert.Equal(t, Coord{1, 0}, g.Goal)
	assert.False(t, g.Open(Coord{1, 0}, maze.North))
}

func TestParseRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"even line count", "+-+\n|S|\n"},
		{"too narrow", "+\n|\n+\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(strings.NewReader(tt.text))
			assert.Error(t, err)
		})
	}
}

func TestVehicleClassifyAndDrive(t *testing.T) {
	g := parse(t, mirror)
	v, err := NewVehicle(g)
	require.NoError(t, err)
	ctx := context.Background()

	cls, err := v.Classify(ctx)
	require.NoError(t, err)
	assert.Equal(t, maze.Classification{Left: true, Straight: true}, cls)

	err = v.ExecuteTurn(ctx, maze.Right)
	assert.ErrorIs(t, err, ErrBlocked)
	assert.Equal(t, g.Start, v.Position(), "blocked turn must not move")

	require.NoError(t, v.ExecuteTurn(ctx, maze.Left))
	assert.Equal(t, Coord{1, 2}, v.Position())
	assert.Equal(t, maze.West, v.Heading())

	cls, err = v.Classify(ctx)
	require.NoError(t, err)
	assert.Equal(t, "-SR", cls.String())

	require.NoError(t, v.ExecuteTurn(ctx, maze.Right))
	require.NoError(t, v.ExecuteTurn(ctx, maze.Back))
	assert.Equal(t, Coord{1, 2}, v.Position())
	assert.Equal(t, 3, v.Moves())

	v.Reset()
	assert.Equal(t, g.Start, v.Position())
	assert.Equal(t, maze.North, v.Heading())
	assert.Equal(t, []Coord{g.Start}, v.Trail())
}

func TestVehicleSensesGoal(t *testing.T) {
	g := parse(t, "+-+-+\n|S G|\n+-+-+\n")
	v, err := NewVehicle(g)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, v.ExecuteTurn(ctx, maze.Right))
	cls, err := v.Classify(ctx)
	require.NoError(t, err)
	assert.True(t, cls.Goal)
	assert.True(t, cls.DeadEnd())
}

func TestVehicleHonoursCancellation(t *testing.T) {
	v, err := NewVehicle(parse(t, mirror))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = v.Classify(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, v.ExecuteTurn(ctx, maze.Straight), context.Canceled)
}

func TestNewVehicleNeedsStart(t *testing.T) {
	g, err := NewGrid(2, 2)
	require.NoError(t, err)
	_, err = NewVehicle(g)
	assert.Error(t, err)
}

func TestMutation(t *testing.T) {
	g := parse(t, mirror)

	closeTop, err := ParseMutation("close 2,0 S")
	require.NoError(t, err)
	assert.Equal(t, Mutation{Cell: Coord{2, 0}, Side: maze.South, Wall: true}, closeTop)
	assert.Equal(t, "close 2,0 S", closeTop.String())

	openMiddle, err := ParseMutation("OPEN 1,1 north")
	require.NoError(t, err)
	assert.False(t, openMiddle.Wall)

	require.NoError(t, closeTop.Apply(g))
	require.NoError(t, openMiddle.Apply(g))
	assert.False(t, g.Open(Coord{2, 1}, maze.North))
	assert.True(t, g.Open(Coord{1, 0}, maze.South))

	outside := Mutation{Cell: Coord{0, 0}, Side: maze.West}
	assert.ErrorIs(t, outside.Apply(g), ErrOutOfBounds)
}

func TestParseMutationErrors(t *testing.T) {
	for _, s := range []string{"", "close 2,0", "smash 1,1 N", "open 1;1 N", "open x,1 N", "open 1,1 Q"} {
		_, err := ParseMutation(s)
		assert.Error(t, err, "ParseMutation(%q)", s)
	}
}

func TestValidate(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		res := Validate(parse(t, mirror), 9)
		assert.True(t, res.Passed)
		assert.Equal(t, 0, res.Code)
		assert.Empty(t, res.Warnings)
		require.Len(t, res.Details, 1)
		assert.Equal(t, "shortest route 4 moves", res.Details[0].Got)
	})

	t.Run("missing markers", func(t *testing.T) {
		g, err := NewGrid(2, 1)
		require.NoError(t, err)
		res := Validate(g, 0)
		assert.False(t, res.Passed)
		assert.Equal(t, 1, res.Code)
		require.Len(t, res.Details, 2)
		for _, d := range res.Details {
			assert.NotEmpty(t, d.Fix)
		}
	})

	t.Run("unreachable goal", func(t *testing.T) {
		res := Validate(parse(t, "+-+-+\n|S|G|\n+-+-+\n"), 0)
		assert.False(t, res.Passed)
		assert.Equal(t, 3, res.Code)
	})

	t.Run("path bound", func(t *testing.T) {
		res := Validate(parse(t, mirror), 4)
		assert.False(t, res.Passed)
		assert.Equal(t, 4, res.Code)
	})

	t.Run("loops warn", func(t *testing.T) {
		res := Validate(parse(t, "+-+-+\n|S  |\n+   +\n|  G|\n+-+-+\n"), 0)
		assert.True(t, res.Passed)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "1 loop")
	})
}

func TestReach(t *testing.T) {
	g, err := NewGrid(3, 3)
	require.NoError(t, err)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			c := Coord{Col: col, Row: row}
			if col < 2 {
				require.NoError(t, g.SetWall(c, maze.East, false))
			}
			if row < 2 {
				require.NoError(t, g.SetWall(c, maze.South, false))
			}
		}
	}

	r, err := g.reach(Coord{Col: 0, Row: 0})
	require.NoError(t, err)
	assert.Len(t, r.depth, 9)
	assert.Equal(t, 4, r.depth["2,2"])
	assert.Equal(t, 12, r.graph.EdgeCount())
	assert.Equal(t, 4, r.loops())

	// seal the bottom row off; its passages no longer count
	for col := 0; col < 3; col++ {
		require.NoError(t, g.SetWall(Coord{Col: col, Row: 1}, maze.South, true))
	}
	r, err = g.reach(Coord{Col: 0, Row: 0})
	require.NoError(t, err)
	assert.Len(t, r.depth, 6)
	_, ok := r.depth["1,2"]
	assert.False(t, ok)
	assert.Equal(t, 2, r.loops())
}
