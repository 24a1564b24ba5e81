// Package testutil provides shared test helpers for setting up collections.
package testutil

import (
	"log/slog"
	"os"
	"testing"

	"github.com/starford/othala/internal/collection"
)

// TestCollection creates a temporary collection with a .txt extension
// that is automatically cleaned up.
func TestCollection(t *testing.T) *collection.Collection {
	t.Helper()
	col, err := collection.Open(t.TempDir(), ".txt", "utf-8")
	if err != nil {
		t.Fatal(err)
	}
	return col
}

// TestLogger returns a logger that only surfaces errors, keeping test
// output quiet.
func TestLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
