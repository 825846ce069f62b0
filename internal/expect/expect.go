// Package expect defines expectation sets and evaluates them against
// captured CLI output.
package expect

import (
	"fmt"
	"time"

	"github.com/walkerjoe/gsprobe/internal/capture"
	"github.com/walkerjoe/gsprobe/internal/textmatch"
)

// Check is one expectation against a captured stream. At least one of the
// AnyOf alternatives must appear, and none of the Absent substrings may.
// Checks are built once and never mutated after construction.
type Check struct {
	// Label identifies the check in reports (e.g. "Expires header").
	Label string

	// AnyOf is the ordered list of acceptable substring alternatives.
	// Empty is allowed only when AllOf or Absent is non-empty.
	AnyOf []string

	// AllOf lists substrings that must all appear, e.g. every line of the
	// version banner.
	AllOf []string

	// Absent lists substrings that must not appear, e.g. an upload media
	// body that debug output must never leak.
	Absent []string

	// Stream selects which captured stream to search. Empty means combined.
	Stream capture.Stream
}

// Suite is an ordered expectation set plus the command line it applies to.
type Suite struct {
	// Name identifies the suite, usually derived from its file name.
	Name string

	// Args is the command line for the CLI under test, without the binary.
	Args []string

	// Checks are evaluated in order against the capture.
	Checks []Check

	// FilePath is the suite file this was parsed from, if any.
	FilePath string
}

// Validate reports the first structural problem with the suite.
func (s *Suite) Validate() error {
	if len(s.Args) == 0 {
		return fmt.Errorf("suite %s: no command line", s.Name)
	}
	if len(s.Checks) == 0 {
		return fmt.Errorf("suite %s: no checks", s.Name)
	}
	for i, c := range s.Checks {
		if c.Label == "" {
			return fmt.Errorf("suite %s: check %d has no label", s.Name, i+1)
		}
		if len(c.AnyOf) == 0 && len(c.AllOf) == 0 && len(c.Absent) == 0 {
			return fmt.Errorf("suite %s: check %q has no substrings", s.Name, c.Label)
		}
		switch c.Stream {
		case "", capture.StreamStdout, capture.StreamStderr, capture.StreamCombined:
		default:
			return fmt.Errorf("suite %s: check %q has unknown stream %q", s.Name, c.Label, c.Stream)
		}
	}
	return nil
}

// CheckResult is the outcome of evaluating one check.
type CheckResult struct {
	Check      Check
	Passed     bool
	Diagnostic string // names the matched candidate, or the missing fragments plus the searched text
}

// Report is the ordered outcome of evaluating a suite against one capture.
type Report struct {
	Suite    *Suite
	Results  []CheckResult
	ExitCode int
	Duration time.Duration
}

// Passed reports whether every check in the report passed.
func (r *Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed {
			return false
		}
	}
	return true
}

// Failed returns the results of checks that did not pass, in order.
func (r *Report) Failed() []CheckResult {
	var failed []CheckResult
	for _, res := range r.Results {
		if !res.Passed {
			failed = append(failed, res)
		}
	}
	return failed
}

// Evaluate runs every check in the suite against the capture and returns the
// ordered report. It has no side effects on the suite or the capture.
func Evaluate(suite *Suite, cap *capture.Capture) *Report {
	report := &Report{
		Suite:    suite,
		Results:  make([]CheckResult, 0, len(suite.Checks)),
		ExitCode: cap.ExitCode,
		Duration: cap.Duration,
	}

	for _, check := range suite.Checks {
		text := cap.Text(check.Stream)
		result := CheckResult{Check: check, Passed: true}

		if len(check.AnyOf) > 0 {
			found, diag := textmatch.ContainsAny(text, check.AnyOf, check.Label)
			result.Passed = found
			result.Diagnostic = diag
		}
		if result.Passed && len(check.AllOf) > 0 {
			found, diag := textmatch.ContainsAll(text, check.AllOf, check.Label)
			result.Passed = found
			result.Diagnostic = diag
		}
		if result.Passed && len(check.Absent) > 0 {
			ok, diag := textmatch.NotContains(text, check.Absent, check.Label)
			result.Passed = ok
			result.Diagnostic = diag
		}

		report.Results = append(report.Results, result)
	}

	return report
}
