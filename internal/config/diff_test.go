package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/relay/internal/driver"
	"github.com/zjrosen/relay/internal/mux"
)

func TestDiffLines(t *testing.T) {
	before := "seed: 1\ntraffic:\n  max_count: 3\n"
	after := "seed: 1\ntraffic:\n  max_count: 5\n"

	require.Equal(t, "  seed: 1\n  traffic:\n-   max_count: 3\n+   max_count: 5\n", DiffLines(before, after))
}

func TestDiffLines_Identical(t *testing.T) {
	require.Empty(t, DiffLines("a\n", "a\n"))
}

func TestDiffLines_MissingTrailingNewline(t *testing.T) {
	require.Equal(t, "- a\n+ b\n", DiffLines("a", "b"))
}

func TestPatchTrafficPhases_DoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	original := "seed: 9\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o600))

	current, updated, err := PatchTrafficPhases(path, []driver.Phase{{State: mux.Active, Events: 4}})
	require.NoError(t, err)
	require.Equal(t, original, string(current))
	require.Contains(t, string(updated), "state: ACTIVE")

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, original, string(onDisk))

	diff := DiffLines(string(current), string(updated))
	require.Contains(t, diff, "  seed: 9\n")
	require.Contains(t, diff, "+ traffic:\n")
}
