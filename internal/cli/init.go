package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sbenjam1n/theseus/internal/store"
	"github.com/spf13/cobra"
)

var minimal bool

const exampleMaze = `// Start bottom right facing north, goal top left.
+-+-+-+
|G    |
+-+-+ +
| | | |
+ + + +
|    S|
+-+-+-+
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a theseus project",
	Long:  "Initialize project: mazes/ with an example maze, PostgreSQL schema, Redis connectivity check",
	RunE: func(cmd *cobra.Command, args []string) error {
		root := projectRoot()
		ctx := context.Background()

		mazesDir := filepath.Join(root, "mazes")
		if err := os.MkdirAll(mazesDir, 0755); err != nil {
			return fmt.Errorf("create mazes/: %w", err)
		}
		examplePath := filepath.Join(mazesDir, "mirror.txt")
		if _, err := os.Stat(examplePath); os.IsNotExist(err) {
			if err := os.WriteFile(examplePath, []byte(exampleMaze), 0644); err != nil {
				return fmt.Errorf("create mazes/mirror.txt: %w", err)
			}
			fmt.Println("Created mazes/mirror.txt")
		} else {
			fmt.Println("mazes/mirror.txt already exists")
		}

		if minimal {
			fmt.Println("\nMinimal init complete. Run 'theseus init' (without --minimal) to set up PostgreSQL and Redis.")
			return nil
		}

		fmt.Println("Connecting to PostgreSQL...")
		pool, err := connectDB(ctx)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()

		fmt.Println("Running migrations...")
		applied, err := store.Migrate(ctx, pool, migrationsDir())
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		for _, name := range applied {
			fmt.Printf("  applied %s\n", name)
		}
		fmt.Println("PostgreSQL schema created")

		fmt.Println("Connecting to Redis...")
		rdb, err := connectRedis()
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		fmt.Println("Redis reachable")

		fmt.Println("\ntheseus project initialized successfully.")
		fmt.Println("Next steps:")
		fmt.Println("  1. Run: theseus maze show mazes/mirror.txt")
		fmt.Println("  2. Run: theseus run --maze mazes/mirror.txt --attempts 2")
		fmt.Println("  3. Run: theseus path history mirror")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&minimal, "minimal", false, "Minimal init: mazes/ only")
}
