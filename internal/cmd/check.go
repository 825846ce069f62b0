package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/walkerjoe/gsprobe/internal/capture"
	"github.com/walkerjoe/gsprobe/internal/config"
	"github.com/walkerjoe/gsprobe/internal/expect"
	"github.com/walkerjoe/gsprobe/internal/history"
	"github.com/walkerjoe/gsprobe/internal/logger"
	"github.com/walkerjoe/gsprobe/internal/parser"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <suite-file-or-directory>...",
		Short: "Run expectation suites against the CLI under test",
		Long: `Run each expectation suite: invoke the CLI under test with the suite's
command line, capture stdout and stderr, and evaluate every check.

Configuration is loaded from .gsprobe/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  # Single suite
  gsprobe check suites/doption-cat.yaml

  # All suites in a directory
  gsprobe check suites/

  # Override the binary under test and timeout
  gsprobe check --cli /usr/local/bin/gsutil --timeout 2m suites/

  # Verbose output (per-check PASS lines)
  gsprobe check --verbose suites/doption-cat.md

  # Do not record this run in history
  gsprobe check --no-history suites/`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheck,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .gsprobe/config.yaml)")
	cmd.Flags().String("cli", "", "Path to the CLI binary under test")
	cmd.Flags().String("timeout", "", "Maximum run time per invocation (e.g. 30s, 2m)")
	cmd.Flags().Bool("verbose", false, "Show per-check results, including passes")
	cmd.Flags().Bool("no-history", false, "Do not record runs in the history store")

	return cmd
}

// runCheck implements the check command logic
func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	log := logger.NewConsoleLogger(os.Stderr, cfg.LogLevel)

	suites, err := loadSuites(args)
	if err != nil {
		return err
	}

	var store *history.Store
	noHistory, _ := cmd.Flags().GetBool("no-history")
	if cfg.History.Enabled && !noHistory {
		store, err = history.NewStore(cfg.History.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open history store: %w", err)
		}
		defer store.Close()
	}

	runner := &capture.Runner{
		Path:    cfg.CLIPath,
		Timeout: cfg.Timeout,
		Env:     cfg.Env,
	}

	ctx := cmd.Context()
	reports := make([]*expect.Report, 0, len(suites))
	for _, suite := range suites {
		log.LogSuiteStart(suite.Name, suite.Args)

		cap, err := runner.Run(ctx, suite.Args...)
		if err != nil {
			return fmt.Errorf("suite %s: %w", suite.Name, err)
		}
		log.LogDebug(fmt.Sprintf("%s exited %d after %s", suite.Name, cap.ExitCode, cap.Duration.Round(time.Millisecond)))

		report := expect.Evaluate(suite, cap)
		for _, res := range report.Results {
			log.LogCheckResult(res)
		}
		reports = append(reports, report)

		if store != nil {
			if err := store.RecordRun(ctx, history.NewRecord(report)); err != nil {
				log.LogWarn(fmt.Sprintf("failed to record run: %v", err))
			}
		}
	}

	if store != nil {
		if err := store.Prune(ctx, cfg.History.KeepRunsDays, cfg.History.MaxRunsPerSuite); err != nil {
			log.LogWarn(fmt.Sprintf("failed to prune history: %v", err))
		}
	}

	log.LogSummary(reports)

	var failed int
	for _, report := range reports {
		failed += len(report.Failed())
	}
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

// loadConfigFromFlags loads the config file and applies flag overrides.
func loadConfigFromFlags(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return nil, err
	}

	var cliOverride *string
	if cliPath, _ := cmd.Flags().GetString("cli"); cliPath != "" {
		cliOverride = &cliPath
	}
	var timeoutOverride *time.Duration
	if timeoutStr, _ := cmd.Flags().GetString("timeout"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", timeoutStr, err)
		}
		timeoutOverride = &timeout
	}
	var levelOverride *string
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level := "debug"
		levelOverride = &level
	}
	cfg.MergeWithFlags(cliOverride, timeoutOverride, levelOverride, nil)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadSuites loads suites from file and directory arguments, in order.
func loadSuites(args []string) ([]*expect.Suite, error) {
	var suites []*expect.Suite
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", arg, err)
		}
		if info.IsDir() {
			dirSuites, err := parser.ParseDirectory(arg)
			if err != nil {
				return nil, err
			}
			suites = append(suites, dirSuites...)
			continue
		}
		suite, err := parser.ParseFile(arg)
		if err != nil {
			return nil, err
		}
		suites = append(suites, suite)
	}
	return suites, nil
}
