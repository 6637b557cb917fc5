package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sbenjam1n/theseus/internal/events"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Traversal event stream",
}

var eventsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show how many events are on the Redis stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		rdb, err := connectRedis()
		if err != nil {
			return err
		}
		defer rdb.Close()

		ctx := context.Background()
		n, err := events.New(rdb, 0).Status(ctx)
		if err != nil {
			return fmt.Errorf("events status: %w", err)
		}

		fmt.Printf("Event Stream Status:\n")
		fmt.Printf("  %s: %d entries\n", events.StreamEvents, n)
		return nil
	},
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print recent events, optionally following new ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt64("count")
		follow, _ := cmd.Flags().GetBool("follow")
		mazeID, _ := cmd.Flags().GetString("maze")

		rdb, err := connectRedis()
		if err != nil {
			return err
		}
		defer rdb.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		feed := events.New(rdb, 0)

		recent, err := feed.Recent(ctx, count)
		if err != nil {
			return err
		}
		lastID := "$"
		for _, ev := range recent {
			printEvent(ev, mazeID)
			lastID = ev.ID
		}
		if !follow {
			return nil
		}

		for {
			batch, err := feed.Read(ctx, lastID, 100, 5*time.Second)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			for _, ev := range batch {
				printEvent(ev, mazeID)
				lastID = ev.ID
			}
		}
	},
}

func printEvent(ev events.Event, mazeID string) {
	if mazeID != "" && ev.MazeID != mazeID {
		return
	}
	run := ev.RunID
	if len(run) > 8 {
		run = run[:8]
	}
	fmt.Printf("%s  %-12s %s  %s\n", ev.ID, ev.MazeID, run, ev.Summary())
}

func init() {
	eventsTailCmd.Flags().Int64("count", 20, "Number of recent events to print")
	eventsTailCmd.Flags().BoolP("follow", "f", false, "Keep printing new events")
	eventsTailCmd.Flags().String("maze", "", "Only show events for this maze")

	eventsCmd.AddCommand(eventsStatusCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
