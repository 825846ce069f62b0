package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for gsprobe
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gsprobe",
		Short: "Debug-output contract checker for cloud storage CLIs",
		Long: `gsprobe runs a cloud storage CLI (such as gsutil) with its debug flag,
captures stdout and stderr, and checks the output against expectation
suites: ordered sets of substring alternatives that tolerate wording
differences across CLI versions.

Suites are YAML or Markdown files; see the validate command for checking
them without running the CLI.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
