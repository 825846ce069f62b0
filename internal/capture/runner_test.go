package capture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// writeScript writes a shell script into a temp dir and returns its path.
// Capture tests exercise real process invocation, so they are skipped on
// Windows where /bin/sh is unavailable.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not available on windows")
	}
	path := filepath.Join(t.TempDir(), "fakecli")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func TestRunCapturesStreamsSeparately(t *testing.T) {
	path := writeScript(t, `echo "to stdout"
echo "to stderr" >&2`)

	r := &Runner{Path: path}
	cap, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !strings.Contains(cap.Stdout, "to stdout") {
		t.Errorf("Stdout = %q, want it to contain %q", cap.Stdout, "to stdout")
	}
	if strings.Contains(cap.Stdout, "to stderr") {
		t.Errorf("Stdout = %q, stderr leaked into stdout", cap.Stdout)
	}
	if !strings.Contains(cap.Stderr, "to stderr") {
		t.Errorf("Stderr = %q, want it to contain %q", cap.Stderr, "to stderr")
	}
	if cap.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", cap.ExitCode)
	}
	if cap.Duration <= 0 {
		t.Errorf("Duration = %v, want > 0", cap.Duration)
	}
}

func TestRunNonzeroExitIsNotAnError(t *testing.T) {
	path := writeScript(t, `echo "partial output"
exit 3`)

	r := &Runner{Path: path}
	cap, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v, nonzero exit should not be an error", err)
	}
	if cap.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", cap.ExitCode)
	}
	if !strings.Contains(cap.Stdout, "partial output") {
		t.Errorf("Stdout = %q, output before exit should be captured", cap.Stdout)
	}
}

func TestRunMissingBinary(t *testing.T) {
	r := &Runner{Path: filepath.Join(t.TempDir(), "does-not-exist")}
	_, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("Run() error = nil, want not-found error")
	}
}

func TestRunNoPathConfigured(t *testing.T) {
	r := &Runner{}
	_, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("Run() error = nil, want configuration error")
	}
}

func TestRunTimeout(t *testing.T) {
	path := writeScript(t, `sleep 10`)

	r := &Runner{Path: path, Timeout: 100 * time.Millisecond}
	_, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("Run() error = nil, want timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestRunPassesArgsAndEnv(t *testing.T) {
	path := writeScript(t, `echo "args: $@"
echo "token: $PROBE_TOKEN"`)

	r := &Runner{Path: path, Env: []string{"PROBE_TOKEN=123"}}
	cap, err := r.Run(context.Background(), "-D", "cat", "gs://bucket/obj")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(cap.Stdout, "args: -D cat gs://bucket/obj") {
		t.Errorf("Stdout = %q, args not passed through", cap.Stdout)
	}
	if !strings.Contains(cap.Stdout, "token: 123") {
		t.Errorf("Stdout = %q, env not passed through", cap.Stdout)
	}
}

func TestCaptureText(t *testing.T) {
	cap := &Capture{Stdout: "out", Stderr: "err"}

	if got := cap.Text(StreamStdout); got != "out" {
		t.Errorf("Text(stdout) = %q, want %q", got, "out")
	}
	if got := cap.Text(StreamStderr); got != "err" {
		t.Errorf("Text(stderr) = %q, want %q", got, "err")
	}
	if got := cap.Text(StreamCombined); got != "outerr" {
		t.Errorf("Text(combined) = %q, want %q", got, "outerr")
	}
	// Unknown stream falls back to combined.
	if got := cap.Text(Stream("bogus")); got != "outerr" {
		t.Errorf("Text(bogus) = %q, want combined fallback", got)
	}
}
