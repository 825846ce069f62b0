package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/walkerjoe/gsprobe/internal/config"
	"github.com/walkerjoe/gsprobe/internal/history"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded suite runs",
		Long: `Show recent suite runs from the history store, newest first.

Examples:
  gsprobe history
  gsprobe history --limit 5
  gsprobe history --suite doption-cat`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .gsprobe/config.yaml)")
	cmd.Flags().Int("limit", 20, "Maximum number of runs to show")
	cmd.Flags().String("suite", "", "Show aggregate stats for one suite instead of recent runs")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return err
	}

	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if suiteName, _ := cmd.Flags().GetString("suite"); suiteName != "" {
		stats, err := store.Stats(ctx, suiteName)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Suite: %s\n", stats.SuiteName)
		fmt.Fprintf(out, "Runs: %d\n", stats.Runs)
		fmt.Fprintf(out, "Passed: %d\n", stats.Passed)
		fmt.Fprintf(out, "Failed: %d\n", stats.Failed)
		if stats.Runs > 0 {
			fmt.Fprintf(out, "Last run: %s\n", stats.LastRun.Format(time.RFC3339))
		}
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.RecentRuns(ctx, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No recorded runs")
		return nil
	}

	for _, run := range runs {
		status := "PASS"
		if !run.Passed() {
			status = "FAIL"
		}
		fmt.Fprintf(out, "%-5d %s %-20s %d/%d checks  %s  %s\n",
			run.ID, status, run.SuiteName,
			run.ChecksTotal-run.ChecksFailed, run.ChecksTotal,
			run.Duration.Round(time.Millisecond),
			run.CreatedAt.Format("2006-01-02 15:04:05"))
		for _, label := range run.FailedLabels {
			fmt.Fprintf(out, "        failed: %s\n", label)
		}
	}
	return nil
}
