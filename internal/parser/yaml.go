package parser

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/walkerjoe/gsprobe/internal/capture"
	"github.com/walkerjoe/gsprobe/internal/expect"
)

// YAMLParser parses suite files in YAML format.
type YAMLParser struct{}

// NewYAMLParser creates a new YAML suite parser.
func NewYAMLParser() *YAMLParser {
	return &YAMLParser{}
}

// suiteYAML mirrors the on-disk YAML suite layout.
type suiteYAML struct {
	Name    string      `yaml:"name"`
	Command []string    `yaml:"command"`
	Checks  []checkYAML `yaml:"checks"`
}

type checkYAML struct {
	Label  string   `yaml:"label"`
	AnyOf  []string `yaml:"any_of"`
	AllOf  []string `yaml:"all_of"`
	Absent []string `yaml:"absent"`
	Stream string   `yaml:"stream"`
}

// Parse reads a YAML suite from r.
func (p *YAMLParser) Parse(r io.Reader) (*expect.Suite, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	var raw suiteYAML
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return raw.toSuite(), nil
}

func (s *suiteYAML) toSuite() *expect.Suite {
	suite := &expect.Suite{
		Name: s.Name,
		Args: s.Command,
	}
	for _, c := range s.Checks {
		suite.Checks = append(suite.Checks, expect.Check{
			Label:  c.Label,
			AnyOf:  c.AnyOf,
			AllOf:  c.AllOf,
			Absent: c.Absent,
			Stream: capture.Stream(c.Stream),
		})
	}
	return suite
}
