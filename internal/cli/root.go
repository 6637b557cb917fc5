package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sbenjam1n/theseus/internal/config"
	"github.com/sbenjam1n/theseus/internal/controller"
	"github.com/sbenjam1n/theseus/internal/events"
	"github.com/sbenjam1n/theseus/internal/store"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	rootCmd = &cobra.Command{
		Use:   "theseus",
		Short: "Theseus: learn, replay and repair routes through changing grid mazes",
		Long: `Theseus drives a vehicle through a grid maze with the left-hand rule,
learns a simplified route to the goal, and replays it on later runs. When a
wall moves, it explores around the change and splices back onto the part of
the old route that still works.

Typical session:
  theseus init
  theseus maze validate mazes/mirror.txt
  theseus run --maze mazes/mirror.txt --attempts 3 --mutate-at 2 \
    --mutate "close 2,0 S" --mutate "open 1,1 N"
  theseus path show mirror`,
		SilenceUsage: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(mazeCmd)
	rootCmd.AddCommand(eventsCmd)
}

func initConfig() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}

func connectDB(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w\nSet THESEUS_DATABASE_URL environment variable", err)
	}
	return pool, nil
}

func connectRedis() (*redis.Client, error) {
	rdb, err := events.ConnectRedis(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("%w\nSet THESEUS_REDIS_URL environment variable", err)
	}
	return rdb, nil
}

func projectRoot() string {
	return cfg.ProjectRoot
}

func migrationsDir() string {
	return filepath.Join(projectRoot(), "migrations")
}

func controllerOptions() controller.Options {
	opts := controller.DefaultOptions(cfg.GridWidth, cfg.GridHeight)
	opts.MaxPathLength = cfg.PathLimit()
	opts.RepairEnabled = cfg.RepairEnabled
	return opts
}
