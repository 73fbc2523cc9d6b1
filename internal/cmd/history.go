package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/pfind/internal/history"
	"github.com/harrison/pfind/internal/logger"
	"github.com/harrison/pfind/internal/models"
)

// NewHistoryCommand creates the 'pfind history' command group
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past searches",
		Long: `Inspect searches recorded in the history database.

The database lives at $PFIND_HOME/history/runs.db unless history.db_path is
set in the configuration.`,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: .pfind/config.yaml)")
	cmd.PersistentFlags().String("db", "", "History database path (overrides config)")

	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryPruneCommand())
	return cmd
}

func newHistoryListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent searches, newest first",
		Args:  cobra.NoArgs,
		RunE:  runHistoryList,
	}
	cmd.Flags().Int("limit", 20, "Maximum number of searches to list (0 = all)")
	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one search with its matches, skipped directories and failures",
		Long: `Show one recorded search. <run-id> may be any unique prefix of the
run ID printed by 'pfind history list'.`,
		Args: cobra.ExactArgs(1),
		RunE: runHistoryShow,
	}
}

func newHistoryPruneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete searches older than a number of days",
		Args:  cobra.NoArgs,
		RunE:  runHistoryPrune,
	}
	cmd.Flags().Int("days", 90, "Keep searches from the last N days")
	return cmd
}

// openHistory opens the history store. It returns a nil store when no
// database exists yet.
func openHistory(cmd *cobra.Command) (*history.Store, error) {
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, err
		}
		if dbPath, err = historyDBPath(cfg); err != nil {
			return nil, fmt.Errorf("failed to get history database path: %w", err)
		}
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, nil
	}
	store, err := history.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return store, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	if store == nil {
		fmt.Fprintln(out, "No search history found.")
		return nil
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(commandContext(cmd), limit)
	if err != nil {
		return fmt.Errorf("list searches: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No search history found.")
		return nil
	}

	printRunList(out, runs)
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("%w: %s (no search history found)", history.ErrRunNotFound, args[0])
	}
	defer store.Close()

	run, err := store.GetRun(commandContext(cmd), args[0])
	if err != nil {
		return err
	}

	printRunDetails(out, run)
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	days, _ := cmd.Flags().GetInt("days")
	if days < 1 {
		return fmt.Errorf("--days must be at least 1, got %d", days)
	}

	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	if store == nil {
		fmt.Fprintln(out, "No search history found.")
		return nil
	}
	defer store.Close()

	n, err := store.Prune(commandContext(cmd), days)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	fmt.Fprintf(out, "Deleted %d searches older than %d days\n", n, days)
	return nil
}

// shortID is the run ID prefix shown in listings.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func statusColor(run *models.Run) *color.Color {
	if run.Success() {
		return color.New(color.FgGreen)
	}
	return color.New(color.FgRed)
}

// printRunList prints one line per run.
func printRunList(w io.Writer, runs []*models.Run) {
	cyan := color.New(color.FgCyan, color.Bold)

	cyan.Fprintf(w, "%-8s  %-19s  %-7s  %7s  %7s  %s\n", "ID", "STARTED", "STATUS", "MATCHES", "WORKERS", "SEARCH")
	for _, run := range runs {
		fmt.Fprintf(w, "%-8s  %-19s  ", shortID(run.ID), run.StartedAt.Local().Format("2006-01-02 15:04:05"))
		statusColor(run).Fprintf(w, "%-7s", run.Status)
		fmt.Fprintf(w, "  %7d  %7d  %q in %s\n", run.Matches, run.Workers, run.Term, run.Root)
	}
}

// printRunDetails prints one run with its detail rows.
func printRunDetails(w io.Writer, run *models.Run) {
	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow)
	gray := color.New(color.FgHiBlack)

	cyan.Fprintf(w, "\n=== Search %s ===\n\n", run.ID)
	fmt.Fprintf(w, "  Root: %s\n", run.Root)
	fmt.Fprintf(w, "  Term: %q\n", run.Term)
	if run.Host != "" {
		fmt.Fprintf(w, "  Host: %s\n", run.Host)
	}
	fmt.Fprintf(w, "  Started: %s ", run.StartedAt.Local().Format(time.RFC3339))
	gray.Fprintf(w, "(%s ago)\n", logger.FormatDuration(time.Since(run.StartedAt).Truncate(time.Second)))
	fmt.Fprintf(w, "  Duration: %s\n", logger.FormatDuration(run.Duration))
	fmt.Fprintf(w, "  Workers: %d (%d failed)\n", run.Workers, run.FailedWorkers)
	fmt.Fprintf(w, "  Status: ")
	statusColor(run).Fprintf(w, "%s\n", run.Status)

	cyan.Fprintf(w, "\nMatches (%d):\n", len(run.MatchPaths))
	if len(run.MatchPaths) == 0 {
		gray.Fprintln(w, "  (none)")
	}
	for _, p := range run.MatchPaths {
		fmt.Fprintf(w, "  %s\n", p)
	}

	if len(run.Skipped) > 0 {
		cyan.Fprintf(w, "\nSkipped directories (%d):\n", len(run.Skipped))
		for _, d := range run.Skipped {
			fmt.Fprintf(w, "  %s: ", d.Path)
			yellow.Fprintln(w, d.Reason)
		}
	}

	if len(run.Failures) > 0 {
		cyan.Fprintf(w, "\nWorker failures (%d):\n", len(run.Failures))
		for _, f := range run.Failures {
			fmt.Fprintf(w, "  %s\n", strings.TrimSpace(f.Message))
		}
	}
	fmt.Fprintln(w)
}
