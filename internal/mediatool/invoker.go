package mediatool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// stderr is diagnostic only; anything past this adds noise, not signal.
const maxStderr = 500

// Result holds the accumulated streams of one finished tool invocation.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   string
}

// ToolUnavailableError means the binary could not be spawned at all
// (typically not installed or not on PATH). Never retried.
type ToolUnavailableError struct {
	Tool string
	Err  error
}

func (e *ToolUnavailableError) Error() string {
	return fmt.Sprintf("%s is not available: %v", e.Tool, e.Err)
}

func (e *ToolUnavailableError) Unwrap() error { return e.Err }

// ExternalToolError means the tool ran but exited non-zero. Stderr carries
// the truncated tail of the tool's diagnostics.
type ExternalToolError struct {
	Tool     string
	ExitCode int
	Stderr   string
}

func (e *ExternalToolError) Error() string {
	return fmt.Sprintf("%s exited with code %d: %s", e.Tool, e.ExitCode, e.Stderr)
}

// Invoker spawns external media tools with a constructed argument list and
// resolves on exit code. It does not interpret argument semantics; that is
// each caller's job. Retries, if any, are a caller decision.
type Invoker struct{}

func New() *Invoker { return &Invoker{} }

// Run executes the tool and waits for it to close both streams.
func (i *Invoker) Run(ctx context.Context, tool string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, tool, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return Result{ExitCode: 0, Stdout: stdout.Bytes(), Stderr: stderr.String()}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Result{}, &ExternalToolError{
			Tool:     tool,
			ExitCode: exitErr.ExitCode(),
			Stderr:   Truncate(strings.TrimSpace(stderr.String()), maxStderr),
		}
	}
	return Result{}, &ToolUnavailableError{Tool: tool, Err: err}
}

// Truncate bounds s to n runes for diagnostics.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
