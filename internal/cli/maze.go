package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sbenjam1n/theseus/internal/sim"
	"github.com/spf13/cobra"
)

var mazeCmd = &cobra.Command{
	Use:   "maze",
	Short: "Inspect and edit maze files",
}

var mazeShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Parse a maze file and print it back",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, warnings, err := sim.ParseFile(args[0])
		if err != nil {
			return err
		}

		fmt.Print(g)
		fmt.Printf("\n%dx%d cells", g.Width, g.Height)
		if g.HasStart {
			fmt.Printf(", start %s facing %s", g.Start, g.StartHeading)
		}
		if g.HasGoal {
			fmt.Printf(", goal %s", g.Goal)
		}
		fmt.Println()

		if len(warnings) > 0 {
			fmt.Println("\nWarnings:")
			for _, w := range warnings {
				fmt.Printf("  %s\n", w)
			}
		}
		return nil
	},
}

var mazeValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check that a maze can be driven",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		g, warnings, err := sim.ParseFile(args[0])
		if err != nil {
			return err
		}
		result := sim.Validate(g, cfg.PathLimit())
		result.Warnings = append(warnings, result.Warnings...)

		if asJSON {
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
		} else {
			fmt.Printf("Validating %s...\n", args[0])
			for _, d := range result.Details {
				if d.Passed {
					fmt.Printf("  %s: ok %s\n", d.Check, d.Got)
				}
			}
			for _, w := range result.Warnings {
				fmt.Printf("  Warning: %s\n", w)
			}
			fmt.Printf("  Result: %s\n", formatValidationResult(result))
		}

		if !result.Passed {
			return fmt.Errorf("maze %s failed validation", args[0])
		}
		return nil
	},
}

var mazeMutateCmd = &cobra.Command{
	Use:   "mutate <file>",
	Short: "Apply wall changes to a maze file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		specs, _ := cmd.Flags().GetStringArray("apply")
		write, _ := cmd.Flags().GetBool("write")
		if len(specs) == 0 {
			return fmt.Errorf("specify at least one --apply")
		}

		g, _, err := sim.ParseFile(args[0])
		if err != nil {
			return err
		}
		for _, s := range specs {
			m, err := sim.ParseMutation(s)
			if err != nil {
				return err
			}
			if err := m.Apply(g); err != nil {
				return err
			}
		}

		if write {
			if err := os.WriteFile(args[0], []byte(g.String()), 0644); err != nil {
				return fmt.Errorf("write %s: %w", args[0], err)
			}
			fmt.Printf("Updated %s\n", args[0])
			return nil
		}
		fmt.Print(g)
		return nil
	},
}

func formatValidationResult(r *sim.ValidationResult) string {
	if r.Passed {
		return "PASSED"
	}
	result := fmt.Sprintf("FAILED (code %d): %s", r.Code, r.Message)
	for _, d := range r.Details {
		if !d.Passed && d.Fix != "" {
			result += fmt.Sprintf("\n    Fix: %s", d.Fix)
		}
	}
	return result
}

func init() {
	mazeValidateCmd.Flags().Bool("json", false, "Print the result as JSON")
	mazeMutateCmd.Flags().StringArray("apply", nil, `Wall change, e.g. "open 1,1 N" (repeatable)`)
	mazeMutateCmd.Flags().Bool("write", false, "Rewrite the file instead of printing")

	mazeCmd.AddCommand(mazeShowCmd)
	mazeCmd.AddCommand(mazeValidateCmd)
	mazeCmd.AddCommand(mazeMutateCmd)
}
