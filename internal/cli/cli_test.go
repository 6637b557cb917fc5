package cli

import (
	"testing"

	"github.com/sbenjam1n/theseus/internal/sim"
	"github.com/stretchr/testify/assert"
)

func TestDisplayPath(t *testing.T) {
	assert.Equal(t, "(empty)", displayPath(""))
	assert.Equal(t, "SSLS", displayPath("SSLS"))
}

func TestFormatValidationResult(t *testing.T) {
	assert.Equal(t, "PASSED", formatValidationResult(&sim.ValidationResult{Passed: true}))

	r := &sim.ValidationResult{
		Code:    3,
		Message: "goal unreachable",
		Details: []sim.ValidationDetail{
			{Check: "start", Passed: true},
			{Check: "reachable", Passed: false, Fix: "open a wall between start and goal"},
		},
	}
	got := formatValidationResult(r)
	assert.Regexp(t, `^FAILED \(code 3\): goal unreachable`, got)
	assert.Contains(t, got, "Fix: open a wall between start and goal")
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, name := range []string{"init", "run", "path", "maze", "events"} {
		assert.Contains(t, names, name)
	}
}
