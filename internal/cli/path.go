package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/sbenjam1n/theseus/internal/maze"
	"github.com/sbenjam1n/theseus/internal/store"
	"github.com/spf13/cobra"
)

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Learned path management",
}

var pathShowCmd = &cobra.Command{
	Use:   "show <maze-id>",
	Short: "Show the learned path for a maze",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		pool, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		p, err := store.New(pool).GetPath(ctx, args[0])
		if errors.Is(err, store.ErrNotFound) {
			fmt.Printf("No learned path for %s. Run: theseus run --maze <file> --id %s\n", args[0], args[0])
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("Maze:    %s\n", p.MazeID)
		fmt.Printf("Path:    %s\n", displayPath(maze.FormatTurns(p.Turns)))
		fmt.Printf("Length:  %d turns\n", len(p.Turns))
		fmt.Printf("Updated: %s\n", p.UpdatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var pathListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every learned path",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		pool, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		paths, err := store.New(pool).ListPaths(ctx)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			fmt.Println("  (none)")
			return nil
		}
		for _, p := range paths {
			fmt.Printf("  %-20s %4d  %s\n", p.MazeID, len(p.Turns), displayPath(maze.FormatTurns(p.Turns)))
		}
		return nil
	},
}

var pathResetCmd = &cobra.Command{
	Use:   "reset <maze-id>",
	Short: "Forget the learned path so the next run explores",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		pool, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		deleted, err := store.New(pool).DeletePath(ctx, args[0])
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Printf("No learned path for %s\n", args[0])
			return nil
		}
		fmt.Printf("Forgot learned path for %s\n", args[0])
		return nil
	},
}

var pathHistoryCmd = &cobra.Command{
	Use:   "history <maze-id>",
	Short: "Show recent traversals of a maze",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		ctx := context.Background()
		pool, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		runs, err := store.New(pool).History(ctx, args[0], limit)
		if err != nil {
			return err
		}

		fmt.Printf("Runs for %s (newest first):\n", args[0])
		if len(runs) == 0 {
			fmt.Println("  (none)")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("  %s  %s\n", r.StartedAt.Format("2006-01-02 15:04:05"), r.ID)
			printRun(r)
		}
		return nil
	},
}

var pathSimplifyCmd = &cobra.Command{
	Use:   "simplify <turns>",
	Short: "Learn a raw turn sequence and print the simplified path",
	Long: `Simplify feeds the turns one by one into a path buffer, folding each
dead end the way exploration does, e.g. "LSRBLLBLLSLS" becomes "SSLS".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := maze.ParseTurns(args[0])
		if err != nil {
			return err
		}

		p := maze.NewPath(len(raw))
		folds := 0
		for _, t := range raw {
			if _, err := p.Append(t); err != nil {
				return err
			}
			if p.Simplify() {
				folds++
			}
		}
		fmt.Printf("Raw:        %s (%d turns)\n", maze.FormatTurns(raw), len(raw))
		fmt.Printf("Simplified: %s (%d turns, %d folds)\n", displayPath(p.String()), p.Len(), folds)
		return nil
	},
}

func init() {
	pathHistoryCmd.Flags().Int("limit", 20, "Number of runs to show")

	pathCmd.AddCommand(pathShowCmd)
	pathCmd.AddCommand(pathListCmd)
	pathCmd.AddCommand(pathResetCmd)
	pathCmd.AddCommand(pathHistoryCmd)
	pathCmd.AddCommand(pathSimplifyCmd)
}
