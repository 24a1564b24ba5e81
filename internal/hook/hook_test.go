package hook

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewCommandEmpty(t *testing.T) {
	if c := NewCommand("", testLogger()); c != nil {
		t.Error("empty command line should yield nil")
	}
	if c := NewCommand("   ", testLogger()); c != nil {
		t.Error("blank command line should yield nil")
	}
}

func TestNotifyPassesPathAsLastArgument(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")
	script := filepath.Join(dir, "hook.sh")
	content := "#!/bin/sh\nprintf '%s' \"$1\" > " + marker + "\n"
	if err := os.WriteFile(script, []byte(content), 0o755); err != nil {
		t.Fatal(err)
	}

	c := NewCommand(script, testLogger())
	if c == nil {
		t.Fatal("expected non-nil command")
	}
	c.Notify("/some/collection/item.txt")

	got, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("marker not written: %v", err)
	}
	if string(got) != "/some/collection/item.txt" {
		t.Errorf("hook argument = %q", got)
	}
}

func TestNotifyExtraArgumentsPrecedePath(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")
	script := filepath.Join(dir, "hook.sh")
	content := "#!/bin/sh\nprintf '%s %s' \"$1\" \"$2\" > " + marker + "\n"
	if err := os.WriteFile(script, []byte(content), 0o755); err != nil {
		t.Fatal(err)
	}

	c := NewCommand(script+" refresh", testLogger())
	c.Notify("/c/item.txt")

	got, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("marker not written: %v", err)
	}
	if !strings.HasPrefix(string(got), "refresh ") || !strings.HasSuffix(string(got), "/c/item.txt") {
		t.Errorf("hook arguments = %q", got)
	}
}

func TestNotifyFailureIsIsolated(t *testing.T) {
	c := NewCommand("/nonexistent/binary", testLogger())
	// Must not panic or propagate anything.
	c.Notify("/some/path")
}
