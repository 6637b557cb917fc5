package sim

import (
	"fmt"

	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"
	"github.com/sbenjam1n/theseus/internal/maze"
)

// ValidationResult is the outcome of checking a grid before a run.
type ValidationResult struct {
	Passed   bool               `json:"passed"`
	Code     int                `json:"code"`
	Message  string             `json:"message"`
	Details  []ValidationDetail `json:"details,omitempty"`
	Warnings []string           `json:"warnings,omitempty"`
}

// ValidationDetail describes a single check.
type ValidationDetail struct {
	Check    string `json:"check"`
	Passed   bool   `json:"passed"`
	Expected string `json:"expected,omitempty"`
	Got      string `json:"got,omitempty"`
	Fix      string `json:"fix,omitempty"` // set for every failing check
}

func (r *ValidationResult) fail(code int, msg string, d ValidationDetail) {
	if r.Passed {
		r.Passed = false
		r.Code = code
		r.Message = msg
	}
	d.Passed = false
	r.Details = append(r.Details, d)
}

// Validate checks that g can be driven: a start and a goal exist, the goal
// is reachable, and the grid fits a path buffer of limit tokens. Loops are
// reported as warnings since the wall follower may circle them.
func Validate(g *Grid, limit int) *ValidationResult {
	result := &ValidationResult{Passed: true}

	if !g.HasStart {
		result.fail(1, "no start cell", ValidationDetail{
			Check:    "start_present",
			Expected: "one start marker",
			Got:      "none",
			Fix:      "Mark the start cell with S, ^, >, v or <.",
		})
	}
	if !g.HasGoal {
		result.fail(2, "no goal cell", ValidationDetail{
			Check:    "goal_present",
			Expected: "one goal marker",
			Got:      "none",
			Fix:      "Mark the goal cell with G.",
		})
	}
	if !result.Passed {
		return result
	}

	reach, err := g.reach(g.Start)
	if err != nil {
		result.fail(3, fmt.Sprintf("search from start %s: %v", g.Start, err), ValidationDetail{
			Check:    "goal_reachable",
			Expected: "a corridor from start to goal",
			Got:      err.Error(),
			Fix:      "Check the maze file for malformed walls.",
		})
		return result
	}
	if d, ok := reach.depth[g.Goal.String()]; !ok {
		result.fail(3, fmt.Sprintf("goal %s unreachable from start %s", g.Goal, g.Start), ValidationDetail{
			Check:    "goal_reachable",
			Expected: "a corridor from start to goal",
			Got:      fmt.Sprintf("%d cells reachable, goal not among them", len(reach.depth)),
			Fix:      "Open a wall between the start region and the goal.",
		})
	} else {
		result.Details = append(result.Details, ValidationDetail{
			Check:  "goal_reachable",
			Passed: true,
			Got:    fmt.Sprintf("shortest route %d moves", d),
		})
	}

	if cells := g.Width * g.Height; limit > 0 && cells > limit {
		result.fail(4, fmt.Sprintf("grid has %d cells, path limit is %d", cells, limit), ValidationDetail{
			Check:    "path_bound",
			Expected: fmt.Sprintf("at most %d cells", limit),
			Got:      fmt.Sprintf("%dx%d = %d cells", g.Width, g.Height, cells),
			Fix:      "Raise THESEUS_MAX_PATH_LENGTH or shrink the maze.",
		})
	}

	if loops := reach.loops(); loops > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d loop(s) reachable from the start; a goal off the outer wall may never be found", loops))
	}

	if result.Passed {
		result.Message = "maze ok"
	}
	return result
}

// corridors builds the undirected graph of open passages, one vertex per
// cell keyed by Coord.String.
func (g *Grid) corridors() (*core.Graph, error) {
	cg, err := core.NewGraph()
	if err != nil {
		return nil, err
	}
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			c := Coord{Col: col, Row: row}
			if err := cg.AddVertex(c.String()); err != nil {
				return nil, err
			}
			// each passage once, from its west or north cell
			for _, h := range []maze.Heading{maze.East, maze.South} {
				if !g.Open(c, h) {
					continue
				}
				if _, err := cg.AddEdge(c.String(), c.Step(h).String(), 0); err != nil {
					return nil, fmt.Errorf("passage %s %s: %w", c, h, err)
				}
			}
		}
	}
	return cg, nil
}

type reachability struct {
	graph *core.Graph
	depth map[string]int // moves from the start, reachable cells only
}

// reach runs a breadth-first search over the corridors from start.
func (g *Grid) reach(start Coord) (*reachability, error) {
	cg, err := g.corridors()
	if err != nil {
		return nil, err
	}
	res, err := bfs.BFS(cg, start.String())
	if err != nil {
		return nil, err
	}
	return &reachability{graph: cg, depth: res.Depth}, nil
}

// loops counts independent cycles in the reachable component: passages
// minus the passages of a spanning tree.
func (r *reachability) loops() int {
	edges := 0
	for _, e := range r.graph.Edges() {
		if _, ok := r.depth[e.From]; ok {
			edges++
		}
	}
	return edges - (len(r.depth) - 1)
}
