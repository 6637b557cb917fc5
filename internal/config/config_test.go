package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"THESEUS_DATABASE_URL",
	"THESEUS_REDIS_URL",
	"THESEUS_PROJECT_ROOT",
	"THESEUS_GRID_WIDTH",
	"THESEUS_GRID_HEIGHT",
	"THESEUS_MAX_PATH_LENGTH",
	"THESEUS_REPAIR_ENABLED",
	"THESEUS_LOCK_TTL",
	"THESEUS_EVENTS_MAX_LEN",
}

// clean runs the test in an empty directory with no THESEUS_ variables.
func clean(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, k := range keys {
		t.Setenv(k, "x")
		os.Unsetenv(k)
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := clean(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Contains(t, cfg.DatabaseURL, "/theseus")
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, 11, cfg.GridWidth)
	assert.Equal(t, 11, cfg.GridHeight)
	assert.Equal(t, 121, cfg.PathLimit())
	assert.True(t, cfg.RepairEnabled)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.Equal(t, int64(10000), cfg.EventsMaxLen)
}

func TestLoadOverrides(t *testing.T) {
	clean(t)
	t.Setenv("THESEUS_GRID_WIDTH", "5")
	t.Setenv("THESEUS_GRID_HEIGHT", "4")
	t.Setenv("THESEUS_REPAIR_ENABLED", "false")
	t.Setenv("THESEUS_LOCK_TTL", "2m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.PathLimit())
	assert.False(t, cfg.RepairEnabled)
	assert.Equal(t, 2*time.Minute, cfg.LockTTL)

	t.Setenv("THESEUS_MAX_PATH_LENGTH", "64")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.PathLimit())
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"THESEUS_GRID_WIDTH", "wide"},
		{"THESEUS_GRID_HEIGHT", "0"},
		{"THESEUS_MAX_PATH_LENGTH", "-1"},
		{"THESEUS_REPAIR_ENABLED", "sometimes"},
		{"THESEUS_LOCK_TTL", "30"},
		{"THESEUS_EVENTS_MAX_LEN", "lots"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clean(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := clean(t)
	env := "THESEUS_GRID_WIDTH=7\nTHESEUS_REDIS_URL=redis://cache:6379/2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0644))
	t.Setenv("THESEUS_REDIS_URL", "redis://env:6379/0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.GridWidth)
	assert.Equal(t, "redis://env:6379/0", cfg.RedisURL, "environment wins over .env")
}
