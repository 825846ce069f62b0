// Package parser loads expectation suite files in YAML or Markdown format.
package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/walkerjoe/gsprobe/internal/expect"
)

// Format represents the format of a suite file
type Format int

const (
	// FormatUnknown represents an unknown or unsupported file format
	FormatUnknown Format = iota
	// FormatMarkdown represents a Markdown (.md, .markdown) suite file
	FormatMarkdown
	// FormatYAML represents a YAML (.yaml, .yml) suite file
	FormatYAML
)

// String returns the string representation of the Format
func (f Format) String() string {
	switch f {
	case FormatMarkdown:
		return "markdown"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Parser is the interface that all suite parsers must implement
type Parser interface {
	// Parse reads from an io.Reader and returns a parsed Suite
	Parse(r io.Reader) (*expect.Suite, error)
}

// DetectFormat automatically detects the suite format based on file extension
// Supported extensions:
//   - .md, .markdown -> FormatMarkdown
//   - .yaml, .yml -> FormatYAML
//   - all others -> FormatUnknown
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// NewParser creates a new parser instance for the specified format
// Returns an error if the format is unknown or unsupported
func NewParser(format Format) (Parser, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownParser(), nil
	case FormatYAML:
		return NewYAMLParser(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %v", format)
	}
}

// ParseFile is a convenience function that:
//  1. Auto-detects the format from the file extension
//  2. Opens and parses the file
//  3. Stores the original file path in suite.FilePath and derives a suite
//     name from the file name when the file does not set one
//  4. Validates the parsed suite
//
// This is the recommended way to load suite files from disk.
func ParseFile(path string) (*expect.Suite, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unknown file format: %s (supported: .md, .markdown, .yaml, .yml)", path)
	}

	p, err := NewParser(format)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open suite file: %w", err)
	}
	defer f.Close()

	suite, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	suite.FilePath = path
	if suite.Name == "" {
		base := filepath.Base(path)
		suite.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if err := suite.Validate(); err != nil {
		return nil, err
	}
	return suite, nil
}

// ParseDirectory loads every suite file in dir (non-recursive), sorted by
// file name so evaluation order is deterministic.
func ParseDirectory(dir string) ([]*expect.Suite, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if DetectFormat(entry.Name()) == FormatUnknown {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no suite files in %s", dir)
	}

	suites := make([]*expect.Suite, 0, len(paths))
	for _, path := range paths {
		suite, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		suites = append(suites, suite)
	}
	return suites, nil
}
