package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/sbenjam1n/theseus/internal/controller"
	"github.com/sbenjam1n/theseus/internal/events"
	"github.com/sbenjam1n/theseus/internal/lock"
	"github.com/sbenjam1n/theseus/internal/maze"
	"github.com/sbenjam1n/theseus/internal/runner"
	"github.com/sbenjam1n/theseus/internal/sim"
	"github.com/sbenjam1n/theseus/internal/store"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive a simulated maze: learn, replay and repair",
	Long: `Run drives the vehicle through the maze file the given number of times.
The first traversal explores unless a learned path is stored for the maze.
Mutations given with --mutate are applied before traversal --mutate-at.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mazeFile, _ := cmd.Flags().GetString("maze")
		mazeID, _ := cmd.Flags().GetString("id")
		attempts, _ := cmd.Flags().GetInt("attempts")
		specs, _ := cmd.Flags().GetStringArray("mutate")
		mutateAt, _ := cmd.Flags().GetInt("mutate-at")
		fresh, _ := cmd.Flags().GetBool("fresh")
		memory, _ := cmd.Flags().GetBool("memory")
		noEvents, _ := cmd.Flags().GetBool("no-events")
		noLock, _ := cmd.Flags().GetBool("no-lock")
		noRepair, _ := cmd.Flags().GetBool("no-repair")
		verbose, _ := cmd.Flags().GetBool("verbose")

		if mazeID == "" {
			mazeID = strings.TrimSuffix(filepath.Base(mazeFile), filepath.Ext(mazeFile))
		}

		g, warnings, err := sim.ParseFile(mazeFile)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Printf("Warning: %s\n", w)
		}

		opts := controllerOptions()
		opts.InitialHeading = g.StartHeading
		if noRepair {
			opts.RepairEnabled = false
		}
		if result := sim.Validate(g, opts.MaxPathLength); !result.Passed {
			return fmt.Errorf("maze %s: %s", mazeFile, formatValidationResult(result))
		}

		mutations := make([]sim.Mutation, len(specs))
		for i, s := range specs {
			if mutations[i], err = sim.ParseMutation(s); err != nil {
				return err
			}
		}

		vehicle, err := sim.NewVehicle(g)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var paths runner.PathStore
		if memory {
			paths = runner.NewMemoryStore()
		} else {
			pool, err := connectDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			paths = store.New(pool)
		}

		sessionOpts := runner.Options{
			Attempts:   attempts,
			Controller: opts,
			Fresh:      fresh,
			Before: func(attempt int) error {
				if attempt != mutateAt || len(mutations) == 0 {
					return nil
				}
				for _, m := range mutations {
					if err := m.Apply(g); err != nil {
						return err
					}
					fmt.Printf("Maze changed: %s\n", m)
				}
				return nil
			},
		}
		if verbose {
			sessionOpts.Controller.Observer = &console{}
		}

		if !noEvents || !noLock {
			rdb, err := connectRedis()
			if err != nil {
				return err
			}
			defer rdb.Close()

			if !noEvents {
				feed := events.New(rdb, cfg.EventsMaxLen)
				sessionOpts.Observe = func(ctx context.Context, mazeID, runID string) controller.Observer {
					return feed.Observer(ctx, mazeID, runID)
				}
			}
			if !noLock {
				sessionOpts.Locker = lock.New(rdb, cfg.LockTTL)
			}
		}

		runs, err := runner.NewSession(mazeID, vehicle, paths, sessionOpts).Run(ctx)
		fmt.Printf("\nMaze %s (%dx%d):\n", mazeID, g.Width, g.Height)
		for _, r := range runs {
			printRun(r)
		}
		if err != nil {
			return err
		}
		fmt.Printf("\nFinal maze:\n%s", g)
		return nil
	},
}

func printRun(r store.Run) {
	fmt.Printf("  #%d %-9s from %-9s %3d steps  %d divergence(s)  %d splice(s)  %s\n",
		r.Attempt, r.Status, r.StartPhase, r.Steps, r.Divergences, r.Splices, r.Duration().Round(time.Millisecond))
	fmt.Printf("     path: %s\n", displayPath(r.Path))
	if r.Error != "" {
		fmt.Printf("     error: %s\n", r.Error)
	}
}

func displayPath(p string) string {
	if p == "" {
		return "(empty)"
	}
	return p
}

// console prints controller feedback as it happens.
type console struct{}

func (console) OnPathChanged(path []maze.Turn) {
	fmt.Printf("    path %s\n", displayPath(maze.FormatTurns(path)))
}

func (console) OnSolved() {
	fmt.Println("    goal reached")
}

func (console) OnPhaseChanged(tr controller.Transition) {
	fmt.Printf("    %s -> %s at index %d %s", tr.From, tr.To, tr.Index, tr.Position)
	if tr.Reason != nil {
		fmt.Printf(": %v", tr.Reason)
	}
	fmt.Println()
}

func init() {
	runCmd.Flags().String("maze", "", "Maze file to drive (required)")
	runCmd.Flags().String("id", "", "Maze identifier for stored paths (default: file name)")
	runCmd.Flags().Int("attempts", 2, "Number of traversals")
	runCmd.Flags().StringArray("mutate", nil, `Wall change, e.g. "close 2,0 S" (repeatable)`)
	runCmd.Flags().Int("mutate-at", 2, "Apply mutations before this traversal")
	runCmd.Flags().Bool("fresh", false, "Ignore the stored path and explore")
	runCmd.Flags().Bool("memory", false, "Keep paths in memory instead of PostgreSQL")
	runCmd.Flags().Bool("no-events", false, "Do not publish events to Redis")
	runCmd.Flags().Bool("no-lock", false, "Do not take the per-maze Redis lock")
	runCmd.Flags().Bool("no-repair", false, "Treat any divergence as fatal")
	runCmd.Flags().BoolP("verbose", "v", false, "Print every path and phase change")
	runCmd.MarkFlagRequired("maze")
}
