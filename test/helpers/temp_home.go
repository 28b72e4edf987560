package test

import (
	"os"
	"path/filepath"
	"testing"
)

// TempHome creates a temporary home directory for isolated tests.
type TempHome struct {
	Dir string
}

// NewTempHome creates a temporary home directory, points HOME at it and
// clears the mirai path overrides. The environment is restored when the test ends.
func NewTempHome(t *testing.T) *TempHome {
	t.Helper()

	dir := t.TempDir()

	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	t.Setenv("MIRAI_CONFIG_PATH", "")
	t.Setenv("MIRAI_STATE_DIR", "")

	if err := os.MkdirAll(filepath.Join(dir, ".mirai"), 0755); err != nil {
		t.Fatalf("Failed to create state dir: %v", err)
	}

	return &TempHome{Dir: dir}
}

// StateDir returns the mirai state directory in the temp home.
func (th *TempHome) StateDir() string {
	return filepath.Join(th.Dir, ".mirai")
}

// WriteConfig writes mirai.json to the state directory.
func (th *TempHome) WriteConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(th.StateDir(), "mirai.json")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return configPath
}
