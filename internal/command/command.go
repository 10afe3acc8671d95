// Package command runs the external tools mm2ledger depends on (sqlcipher,
// ledger, op) behind a small interface so callers can swap in fakes.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrToolUnavailable is returned when the executable cannot be found on PATH.
var ErrToolUnavailable = errors.New("tool unavailable")

// Result is the captured output of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes name with args, feeding stdin. A non-zero exit is not an
// error: callers inspect ExitCode and map it to their own failure kinds.
type Runner interface {
	Run(ctx context.Context, name string, args []string, stdin []byte) (Result, error)
}

// Exec runs real processes via os/exec.
type Exec struct {
	// Hints maps an executable name to an install instruction appended to
	// ErrToolUnavailable.
	Hints map[string]string
}

// DefaultHints are the install instructions for the tools mm2ledger shells out to.
var DefaultHints = map[string]string{
	"sqlcipher": "Install it with: brew install sqlcipher (macOS)",
	"ledger":    "Install it with: brew install ledger (macOS) or apt install ledger (Debian)",
	"op":        "Install it from: https://developer.1password.com/docs/cli/get-started/",
}

func NewExec() *Exec {
	return &Exec{Hints: DefaultHints}
}

func (e *Exec) Run(ctx context.Context, name string, args []string, stdin []byte) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}
	// A killed child also reports an ExitError; the cancellation is the cause.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("run %s: %w", name, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if errors.Is(err, exec.ErrNotFound) {
		return res, Unavailable(name, e.Hints[name])
	}
	return res, fmt.Errorf("run %s: %w", name, err)
}

// Unavailable builds the ErrToolUnavailable error for name.
func Unavailable(name, hint string) error {
	if hint == "" {
		return fmt.Errorf("%w: %s is not installed", ErrToolUnavailable, name)
	}
	return fmt.Errorf("%w: %s is not installed.\n%s", ErrToolUnavailable, name, hint)
}

// Diagnostic returns trimmed stderr, falling back to stdout when stderr is empty.
func (r Result) Diagnostic() string {
	if s := strings.TrimSpace(string(r.Stderr)); s != "" {
		return s
	}
	if s := strings.TrimSpace(string(r.Stdout)); s != "" {
		return s
	}
	return fmt.Sprintf("exit status %d", r.ExitCode)
}
