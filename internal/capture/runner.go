// Package capture runs the CLI under test and captures its output streams.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Stream identifies which captured stream a check reads.
type Stream string

const (
	// StreamStdout selects standard output only.
	StreamStdout Stream = "stdout"
	// StreamStderr selects standard error only.
	StreamStderr Stream = "stderr"
	// StreamCombined selects stdout followed by stderr.
	StreamCombined Stream = "combined"
)

// Capture holds the output of one invocation of the CLI under test.
// It is created per invocation and discarded after checks complete.
type Capture struct {
	// Stdout and Stderr are the full captured streams, separately buffered.
	Stdout string
	Stderr string

	// ExitCode is the process exit code. -1 when the process never started.
	ExitCode int

	StartedAt time.Time
	Duration  time.Duration

	// Args is the full command line that was run, binary first.
	Args []string
}

// Combined returns stdout followed by stderr.
func (c *Capture) Combined() string {
	return c.Stdout + c.Stderr
}

// Text returns the stream selected by s. Unknown streams fall back to the
// combined output, matching the suite-file default.
func (c *Capture) Text(s Stream) string {
	switch s {
	case StreamStdout:
		return c.Stdout
	case StreamStderr:
		return c.Stderr
	default:
		return c.Combined()
	}
}

// Runner is a reusable client for invoking the CLI under test.
// It follows the http.Client pattern: create once, use many times.
// Thread-safe for concurrent use.
type Runner struct {
	// Path is the path to the CLI binary under test (required).
	Path string

	// Timeout is the default timeout for invocations.
	// Can be overridden per-request via context. Zero means no timeout.
	Timeout time.Duration

	// Env is extra environment entries ("KEY=value") appended to the
	// current process environment for each invocation.
	Env []string

	// Dir is the working directory for the process. Empty means inherit.
	Dir string
}

// ErrNotFound is returned when the CLI binary under test cannot be located.
var ErrNotFound = errors.New("cli binary not found")

// Run invokes the CLI with the given arguments and captures both streams.
// A nonzero exit is not an error: the Capture records the exit code and the
// caller's checks decide what it means. Run returns an error only when the
// process could not be started or the context ended before it finished.
func (r *Runner) Run(ctx context.Context, args ...string) (*Capture, error) {
	if r.Path == "" {
		return nil, fmt.Errorf("runner: no cli path configured")
	}

	ctxToUse := ctx
	var cancel context.CancelFunc
	if r.Timeout > 0 {
		ctxToUse, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctxToUse, r.Path, args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), r.Env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	cap := &Capture{
		StartedAt: time.Now(),
		Args:      append([]string{r.Path}, args...),
	}

	err := cmd.Run()
	cap.Duration = time.Since(cap.StartedAt)
	cap.Stdout = stdout.String()
	cap.Stderr = stderr.String()

	if err == nil {
		cap.ExitCode = 0
		return cap, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Process ran to completion with a nonzero exit. Context expiry
		// also surfaces as an ExitError (killed process), so check it.
		if ctxErr := ctxToUse.Err(); ctxErr != nil {
			return nil, fmt.Errorf("cli %s: %w", r.Path, ctxErr)
		}
		cap.ExitCode = exitErr.ExitCode()
		return cap, nil
	}

	cap.ExitCode = -1
	if isNotFound(err) {
		return nil, fmt.Errorf("cli %s: %w", r.Path, ErrNotFound)
	}
	return nil, fmt.Errorf("cli %s failed to start: %w", r.Path, err)
}

// isNotFound reports whether err means the binary does not exist.
func isNotFound(err error) bool {
	var execErr *exec.Error
	if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
		return true
	}
	// On some platforms the underlying error is a PathError.
	var pathErr *os.PathError
	return errors.As(err, &pathErr) && errors.Is(pathErr.Err, exec.ErrNotFound)
}
