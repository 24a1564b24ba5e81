// Package hook runs an optional external command after successful writes.
package hook

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds one hook invocation.
const DefaultTimeout = 30 * time.Second

// Notifier is invoked with the absolute path of every file that was just
// written. Implementations must isolate their own failures: the storage
// contract never observes them.
type Notifier interface {
	Notify(path string)
}

// Command runs an external command with the written path appended as the
// final argument. A failed or timed-out command is logged and dropped.
type Command struct {
	argv    []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewCommand builds a Command from a whitespace-separated command line.
// An empty command line yields nil, which callers treat as "no hook".
func NewCommand(cmdline string, logger *slog.Logger) *Command {
	argv := strings.Fields(cmdline)
	if len(argv) == 0 {
		return nil
	}
	return &Command{argv: argv, timeout: DefaultTimeout, logger: logger}
}

// Notify runs the command with path appended, waiting for it to finish.
func (c *Command) Notify(path string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	args := append(append([]string{}, c.argv[1:]...), path)
	cmd := exec.CommandContext(ctx, c.argv[0], args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		c.logger.Warn("hook: command failed",
			slog.String("command", c.argv[0]),
			slog.String("path", path),
			slog.String("error", err.Error()),
			slog.String("output", strings.TrimSpace(string(out))))
		return
	}
	c.logger.Debug("hook: command finished",
		slog.String("command", c.argv[0]),
		slog.String("path", path))
}
