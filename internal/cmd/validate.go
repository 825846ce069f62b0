package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <suite-file-or-directory>...",
		Short: "Parse and validate expectation suites without running the CLI",
		Long: `Validate parses each suite file, checks its structure (command line
present, every check labeled with at least one substring), and reports
problems without invoking the CLI under test.

Examples:
  gsprobe validate suites/doption-cat.yaml
  gsprobe validate suites/`,
		Args: cobra.MinimumNArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	suites, err := loadSuites(args)
	if err != nil {
		return err
	}

	for _, suite := range suites {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d check(s), command: %v\n",
			suite.Name, len(suite.Checks), suite.Args)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d suite(s) valid\n", len(suites))
	return nil
}
