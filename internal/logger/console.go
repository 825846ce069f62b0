// Package logger provides console logging for check runs.
//
// The logger reports suite progress and per-check outcomes. Implementations
// are thread-safe. Color output is enabled automatically when writing to a
// terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/walkerjoe/gsprobe/internal/expect"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Logger is what command handlers log through.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogSuiteStart(name string, args []string)
	LogCheckResult(result expect.CheckResult)
	LogSummary(reports []*expect.Report)
}

// ConsoleLogger logs check progress to a writer with [HH:MM:SS] timestamps
// and thread safety. It supports level filtering (trace, debug, info, warn,
// error; default info).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided
// io.Writer. A nil writer silently discards messages. An empty or invalid
// logLevel defaults to "info". Color is enabled when the writer is a TTY.
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal reports whether the writer is a terminal that supports colors.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel lowercases a level and falls back to "info" for
// anything unrecognized.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// logWithLevel writes "[HH:MM:SS] [LEVEL] message" if filtering allows it.
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	if cl.colorOutput {
		fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", ts, colorLevel(level), message)
		return
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", ts, level, message)
}

func colorLevel(level string) string {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	}
	return level
}

// LogSuiteStart logs the start of a suite run at INFO level.
func (cl *ConsoleLogger) LogSuiteStart(name string, args []string) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	suiteName := name
	if cl.colorOutput {
		suiteName = color.New(color.Bold).Sprint(name)
	}
	fmt.Fprintf(cl.writer, "[%s] Running %s: %s\n", timestamp(), suiteName, strings.Join(args, " "))
}

// LogCheckResult logs one check outcome. Passes log at DEBUG so a default
// run stays quiet; failures log at ERROR with the full diagnostic.
func (cl *ConsoleLogger) LogCheckResult(result expect.CheckResult) {
	if result.Passed {
		cl.logWithLevel("DEBUG", fmt.Sprintf("PASS %s", result.Check.Label))
		return
	}

	label := result.Check.Label
	if cl.colorOutput {
		label = color.New(color.FgRed).Sprint(label)
	}
	cl.logWithLevel("ERROR", fmt.Sprintf("FAIL %s: %s", label, result.Diagnostic))
}

// LogSummary logs the aggregate outcome of all suite runs.
func (cl *ConsoleLogger) LogSummary(reports []*expect.Report) {
	if cl.writer == nil {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	var total, failed int
	for _, report := range reports {
		total += len(report.Results)
		failed += len(report.Failed())
	}

	fmt.Fprintf(cl.writer, "\n")
	if cl.colorOutput {
		fmt.Fprintf(cl.writer, "%s\n", color.New(color.Bold).Sprint("=== Check Summary ==="))
	} else {
		fmt.Fprintf(cl.writer, "=== Check Summary ===\n")
	}
	fmt.Fprintf(cl.writer, "Suites: %d\n", len(reports))
	fmt.Fprintf(cl.writer, "Checks: %d\n", total)

	passedText := fmt.Sprintf("Passed: %d", total-failed)
	if cl.colorOutput {
		passedText = color.New(color.FgGreen).Sprint(passedText)
	}
	fmt.Fprintf(cl.writer, "%s\n", passedText)

	if failed > 0 {
		failedText := fmt.Sprintf("Failed: %d", failed)
		if cl.colorOutput {
			failedText = color.New(color.FgRed).Sprint(failedText)
		}
		fmt.Fprintf(cl.writer, "%s\n", failedText)

		for _, report := range reports {
			for _, res := range report.Failed() {
				fmt.Fprintf(cl.writer, "  - %s: %s\n", report.Suite.Name, res.Check.Label)
			}
		}
	}
}

func timestamp() string {
	return time.Now().Format("15:04:05")
}

// NoOpLogger discards all messages. Used when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a logger that discards everything.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (*NoOpLogger) LogDebug(string)                   {}
func (*NoOpLogger) LogInfo(string)                    {}
func (*NoOpLogger) LogWarn(string)                    {}
func (*NoOpLogger) LogError(string)                   {}
func (*NoOpLogger) LogSuiteStart(string, []string)    {}
func (*NoOpLogger) LogCheckResult(expect.CheckResult) {}
func (*NoOpLogger) LogSummary([]*expect.Report)       {}
