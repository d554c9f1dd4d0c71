// Package runner abstracts external process invocation.
//
// All interaction with the spotdl and yt-dlp binaries goes through the
// Runner interface so the download executors, the metadata prober, and
// their retry logic can be tested with fakes, never touching real binaries.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout marks an invocation that was killed by its deadline.
var ErrTimeout = errors.New("process timed out")

// Result carries the captured output of one invocation.
type Result struct {
	Stdout []byte
	Stderr []byte
}

// Runner runs one external command to completion, bounded by timeout.
//
// A non-zero exit is reported as an error (wrapping *exec.ExitError);
// deadline expiry is reported as an error wrapping ErrTimeout. In both
// cases whatever output was captured is still returned.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error)
}

// Func adapts a plain function to the Runner interface, the way
// http.HandlerFunc does. Tests use it to inject canned results.
type Func func(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error)

// Run calls f.
func (f Func) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error) {
	return f(ctx, timeout, name, args...)
}

// ExecRunner invokes real processes via os/exec.
type ExecRunner struct{}

// New returns a Runner backed by os/exec.
func New() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command, capturing stdout and stderr separately.
func (e *ExecRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error) {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running command", "name", name, "args", strings.Join(args, " "), "timeout", timeout)

	err := cmd.Run()
	result := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	if runCtx.Err() == context.DeadlineExceeded {
		return result, fmt.Errorf("%s: %w after %s", name, ErrTimeout, timeout)
	}
	if err != nil {
		return result, fmt.Errorf("%s: %w", name, err)
	}
	return result, nil
}

// IsTimeout reports whether err came from a deadline-killed invocation.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// CheckTool verifies that a tool is installed and responding by running
// "<name> --version" with a short deadline. Returns the reported version.
func CheckTool(ctx context.Context, r Runner, name string) (string, error) {
	result, err := r.Run(ctx, 10*time.Second, name, "--version")
	if err != nil {
		return "", fmt.Errorf("%s is not available: %w", name, err)
	}
	return strings.TrimSpace(string(result.Stdout)), nil
}
