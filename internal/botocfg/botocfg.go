// Package botocfg manages the boto-style INI configuration consumed by the
// CLI under test, including scoped overrides for the duration of a check run.
package botocfg

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// EnvVar is the environment variable the CLI under test reads its
// configuration path from.
const EnvVar = "BOTO_CONFIG"

// sensitiveKeys are config keys whose values must never appear in logs or
// String() output. The CLI under test redacts these in its own debug dump;
// we match that behavior when rendering configs.
var sensitiveKeys = map[string]bool{
	"proxy_pass":              true,
	"proxy_user":              true,
	"gs_secret_access_key":    true,
	"aws_secret_access_key":   true,
	"gs_oauth2_refresh_token": true,
}

// Config is an in-memory boto-style INI configuration: named sections of
// key/value pairs. Section and key lookups are case-sensitive, matching the
// CLI under test.
type Config struct {
	sections map[string]map[string]string
	order    []string
}

// New returns an empty Config.
func New() *Config {
	return &Config{sections: make(map[string]map[string]string)}
}

// Parse reads an INI config from r. Lines outside any section and comment
// lines (#, ;) are ignored. Values keep internal whitespace.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	var current string

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, ";") {
			continue
		}

		if strings.HasPrefix(text, "[") {
			if !strings.HasSuffix(text, "]") {
				return nil, fmt.Errorf("line %d: malformed section header %q", line, text)
			}
			current = strings.TrimSpace(text[1 : len(text)-1])
			if current == "" {
				return nil, fmt.Errorf("line %d: empty section name", line)
			}
			cfg.ensureSection(current)
			continue
		}

		if current == "" {
			continue
		}
		key, value, found := strings.Cut(text, "=")
		if !found {
			return nil, fmt.Errorf("line %d: malformed entry %q", line, text)
		}
		cfg.sections[current][strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return cfg, nil
}

// Load reads an INI config file. A missing file yields an empty Config,
// matching how the CLI under test treats an absent boto config.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func (c *Config) ensureSection(name string) map[string]string {
	if sec, ok := c.sections[name]; ok {
		return sec
	}
	sec := make(map[string]string)
	c.sections[name] = sec
	c.order = append(c.order, name)
	return sec
}

// Set assigns a value in the given section, creating the section if needed.
func (c *Config) Set(section, key, value string) {
	c.ensureSection(section)[key] = value
}

// Get returns the value for key in section, and whether it is present.
func (c *Config) Get(section, key string) (string, bool) {
	sec, ok := c.sections[section]
	if !ok {
		return "", false
	}
	v, ok := sec[key]
	return v, ok
}

// Sections returns the section names in first-seen order.
func (c *Config) Sections() []string {
	return append([]string(nil), c.order...)
}

// WriteTo renders the config as INI. Sections appear in first-seen order,
// keys sorted within each section for stable output.
func (c *Config) WriteTo(w io.Writer) error {
	for i, name := range c.order {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "[%s]\n", name); err != nil {
			return err
		}
		sec := c.sections[name]
		keys := make([]string, 0, len(sec))
		for k := range sec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, err := fmt.Fprintf(w, "%s = %s\n", k, sec[k]); err != nil {
				return err
			}
		}
	}
	return nil
}

// String renders the config with sensitive values redacted. Use this for
// logging; use WriteTo for the file handed to the CLI under test.
func (c *Config) String() string {
	var sb strings.Builder
	for i, name := range c.order {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "[%s]\n", name)
		sec := c.sections[name]
		keys := make([]string, 0, len(sec))
		for k := range sec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := sec[k]
			if sensitiveKeys[k] {
				v = "REDACTED"
			}
			fmt.Fprintf(&sb, "%s = %s\n", k, v)
		}
	}
	return sb.String()
}
