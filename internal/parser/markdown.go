package parser

import (
	"bytes"
	"fmt"
	"io"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/walkerjoe/gsprobe/internal/capture"
	"github.com/walkerjoe/gsprobe/internal/expect"
)

// MarkdownParser parses suite files written as Markdown documents. The
// document carries suite metadata (name, command) in YAML frontmatter and one
// "## Check N: <label>" section per check, whose body is YAML with the
// stream/any_of/absent keys.
type MarkdownParser struct {
	markdown goldmark.Markdown
}

// markdownFrontmatter represents the suite metadata in frontmatter
type markdownFrontmatter struct {
	Name    string   `yaml:"name"`
	Command []string `yaml:"command"`
}

var checkHeadingRegex = regexp.MustCompile(`^Check\s+(\d+):\s+(.+)$`)

// NewMarkdownParser creates a new Markdown suite parser.
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{
		markdown: goldmark.New(),
	}
}

// Parse reads a Markdown suite from r.
func (p *MarkdownParser) Parse(r io.Reader) (*expect.Suite, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	suite := &expect.Suite{}
	content, frontmatter := extractFrontmatter(content)
	if frontmatter != nil {
		var meta markdownFrontmatter
		if err := yaml.Unmarshal(frontmatter, &meta); err != nil {
			return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
		}
		suite.Name = meta.Name
		suite.Args = meta.Command
	}

	// Parse markdown AST and extract check sections
	doc := p.markdown.Parser().Parse(text.NewReader(content))
	checks, err := p.extractChecks(doc, content)
	if err != nil {
		return nil, err
	}

	suite.Checks = checks
	return suite, nil
}

// checkSection marks a check heading and the byte range of its body.
type checkSection struct {
	label string
	start int // first byte after the heading line
}

// extractChecks walks level-2 headings matching "Check N: <label>" and parses
// each section body as YAML. A section ends at the next level-2 heading of
// any kind, so trailing prose sections stay out of check bodies. Headings
// inside fenced code blocks are not headings in the AST, so fenced examples
// never start or end a section.
func (p *MarkdownParser) extractChecks(doc ast.Node, source []byte) ([]expect.Check, error) {
	var sections []checkSection
	var boundaries []int // line starts of every level-2 heading

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		heading, ok := n.(*ast.Heading)
		if !ok || heading.Level != 2 || heading.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}

		seg := heading.Lines().At(heading.Lines().Len() - 1)
		boundaries = append(boundaries, lineStart(source, seg.Start))

		headingText := extractText(heading, source)
		matches := checkHeadingRegex.FindStringSubmatch(headingText)
		if len(matches) != 3 {
			// Not a check heading; its content is prose, skip it.
			return ast.WalkContinue, nil
		}

		sections = append(sections, checkSection{
			label: matches[2],
			start: seg.Stop,
		})
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	checks := make([]expect.Check, 0, len(sections))
	for _, sec := range sections {
		end := len(source)
		for _, b := range boundaries {
			if b > sec.start && b < end {
				end = b
			}
		}
		body := source[sec.start:end]

		var raw checkYAML
		if err := yaml.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("check %q: invalid body: %w", sec.label, err)
		}

		checks = append(checks, expect.Check{
			Label:  sec.label,
			AnyOf:  raw.AnyOf,
			AllOf:  raw.AllOf,
			Absent: raw.Absent,
			Stream: capture.Stream(raw.Stream),
		})
	}
	return checks, nil
}

// extractText returns the plain text content of a node
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
	}
	return buf.String()
}

// lineStart returns the offset of the beginning of the line containing pos.
func lineStart(source []byte, pos int) int {
	if i := bytes.LastIndexByte(source[:pos], '\n'); i >= 0 {
		return i + 1
	}
	return 0
}

// extractFrontmatter extracts YAML frontmatter from markdown content
// Returns the content without frontmatter and the frontmatter bytes
func extractFrontmatter(content []byte) ([]byte, []byte) {
	lines := bytes.Split(content, []byte("\n"))

	// Check if starts with ---
	if len(lines) < 3 || !bytes.Equal(bytes.TrimSpace(lines[0]), []byte("---")) {
		return content, nil
	}

	// Find closing ---
	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			frontmatter := bytes.Join(lines[1:i], []byte("\n"))
			body := bytes.Join(lines[i+1:], []byte("\n"))
			return body, frontmatter
		}
	}

	// No closing delimiter found
	return content, nil
}
