package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/harrison/pfind/internal/config"
	"github.com/harrison/pfind/internal/display"
	"github.com/harrison/pfind/internal/filelock"
	"github.com/harrison/pfind/internal/fsys"
	"github.com/harrison/pfind/internal/history"
	"github.com/harrison/pfind/internal/logger"
	"github.com/harrison/pfind/internal/models"
	"github.com/harrison/pfind/internal/report"
	"github.com/harrison/pfind/internal/search"
)

// maxListedSkipped caps the paths shown in the skipped-directories warning.
const maxListedSkipped = 10

// NewSearchCommand creates the search command
func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <root> <term> [workers]",
		Short: "Search a directory tree for file names containing a term",
		Long: `Search the tree under <root> for files whose name contains <term>.

Each matching path is printed on its own line, followed by
"Done searching, found K files". Diagnostics go to stderr. The exit status
is 0 when every worker finished cleanly and 1 otherwise.

Examples:
  pfind search /var/log error
  pfind search ~/src _test.go 16
  pfind search . .md --output matches.txt --report report.html
  pfind search /data core --log-level warn --no-history`,
		Args: cobra.RangeArgs(2, 3),
		RunE: runSearchCommand,
	}

	addSearchFlags(cmd.Flags())
	return cmd
}

// addSearchFlags registers the flags shared by search and watch.
func addSearchFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to config file (default: .pfind/config.yaml)")
	flags.Int("workers", 0, "Number of search workers (default: config or number of CPUs)")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error")
	flags.String("log-dir", "", "Directory for run logs (empty disables file logging)")
	flags.String("color", "", "Color output: auto, always, never")
	flags.Int("batch-size", 0, "Directory entries read per listing call")
	flags.String("output", "", "Write the sorted list of matched paths to this file")
	flags.String("report", "", "Write a Markdown report, or HTML for .html/.htm paths")
	flags.Bool("no-history", false, "Do not record this search in the history database")
}

// searchRequest is a fully resolved search invocation.
type searchRequest struct {
	cfg    *config.Config
	root   string
	term   string
	stdout io.Writer
	stderr io.Writer
}

func runSearchCommand(cmd *cobra.Command, args []string) error {
	req, err := newSearchRequest(cmd, args)
	if err != nil {
		return err
	}

	_, res, err := executeSearch(cmd.Context(), req)
	if err != nil {
		return err
	}
	if res.Status != search.StatusSuccess {
		return &ExitError{Code: res.Status.ExitCode()}
	}
	return nil
}

// newSearchRequest loads configuration, applies flags and positional
// arguments, and validates the result.
func newSearchRequest(cmd *cobra.Command, args []string) (*searchRequest, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if len(args) == 3 {
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("%w: worker count %q is not a number", search.ErrInvalidArgument, args[2])
		}
		if n < 1 {
			return nil, fmt.Errorf("%w: worker count must be at least 1, got %d", search.ErrInvalidArgument, n)
		}
		cfg.Workers = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &searchRequest{
		cfg:    cfg,
		root:   args[0],
		term:   args[1],
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
	}, nil
}

// loadConfig reads the config file named by --config, or .pfind/config.yaml,
// and applies the flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	cfg.MergeWithFlags(overridesFromFlags(cmd.Flags()))
	return cfg, nil
}

// overridesFromFlags returns only the flags that were set on the command line.
func overridesFromFlags(flags *pflag.FlagSet) config.Overrides {
	var o config.Overrides
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}
	str := func(name string) *string {
		v, _ := flags.GetString(name)
		return &v
	}
	num := func(name string) *int {
		v, _ := flags.GetInt(name)
		return &v
	}

	if changed("workers") {
		o.Workers = num("workers")
	}
	if changed("log-level") {
		o.LogLevel = str("log-level")
	}
	if changed("log-dir") {
		o.LogDir = str("log-dir")
	}
	if changed("color") {
		o.Color = str("color")
	}
	if changed("batch-size") {
		o.BatchSize = num("batch-size")
	}
	if changed("output") {
		o.Output = str("output")
	}
	if changed("report") {
		o.Report = str("report")
	}
	if changed("no-history") {
		v, _ := flags.GetBool("no-history")
		o.NoHistory = &v
	}
	if changed("debounce") {
		v, _ := flags.GetDuration("debounce")
		o.Debounce = &v
	}
	return o
}

// useColor resolves the color mode for writer w.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return logger.IsTerminal(w)
	}
}

// executeSearch runs one search and its side outputs: match list, report,
// history record and end-of-run warnings. Output and history failures are
// reported on stderr and do not fail the search.
func executeSearch(ctx context.Context, req *searchRequest) (*models.Run, search.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := req.cfg
	host, _ := os.Hostname()
	run := &models.Run{
		ID:        uuid.NewString(),
		Host:      host,
		Root:      req.root,
		Term:      req.term,
		Workers:   cfg.Workers,
		StartedAt: time.Now(),
	}

	console := logger.NewConsoleLogger(req.stderr, cfg.LogLevel)
	if cfg.Color != config.ColorAuto {
		console.SetColorOutput(useColor(cfg.Color, req.stderr))
	}
	collector := report.NewCollector(run)
	printer := logger.NewAutoMatchPrinter(req.stdout, req.term)
	if cfg.Color != config.ColorAuto {
		printer = logger.NewMatchPrinter(req.stdout, req.term, useColor(cfg.Color, req.stdout))
	}
	reporters := []search.Reporter{printer, console, collector}

	if cfg.LogDir != "" {
		fileLog, err := logger.NewFileLoggerWithDirAndLevel(cfg.LogDir, run.ID, cfg.LogLevel)
		if err != nil {
			return nil, search.Result{}, fmt.Errorf("failed to create file logger: %w", err)
		}
		defer fileLog.Close()
		fileLog.LogInfo(fmt.Sprintf("Searching %s for %q with %d workers", req.root, req.term, cfg.Workers))
		reporters = append(reporters, fileLog)
	}

	fs := fsys.NewOS(cfg.BatchSize)
	fs.Exclude(ownOutputs(cfg)...)
	pool := search.NewPool(fs, newMultiReporter(reporters...))
	res, err := pool.Run(req.root, req.term, cfg.Workers)
	if err != nil {
		return nil, res, err
	}

	warnColor := useColor(cfg.Color, req.stderr)
	if len(run.Skipped) > 0 {
		display.SkippedWarning(run.Skipped, maxListedSkipped).Display(req.stderr, warnColor)
	}
	if len(run.Failures) > 0 {
		display.FailureWarning(run.Failures, run.Workers).Display(req.stderr, warnColor)
	}

	if cfg.Output != "" {
		if err := report.WriteMatchList(cfg.Output, run); err != nil {
			console.LogError(err.Error())
		}
	}
	if cfg.Report != "" {
		if err := report.Write(cfg.Report, run); err != nil {
			console.LogError(err.Error())
		}
	}
	if cfg.History.Enabled {
		if err := recordHistory(ctx, cfg, run); err != nil {
			console.LogWarn(fmt.Sprintf("search not recorded in history: %v", err))
		}
	}

	return run, res, nil
}

// ownOutputs lists the files and directories pfind itself writes. Searches
// never report them and watch mode never re-runs on them.
func ownOutputs(cfg *config.Config) []string {
	var paths []string
	if cfg.LogDir != "" {
		paths = append(paths, cfg.LogDir)
	}
	for _, p := range []string{cfg.Output, cfg.Report} {
		if p != "" {
			paths = append(paths, p, p+filelock.LockSuffix)
		}
	}
	if cfg.History.Enabled {
		if db, err := historyDBPath(cfg); err == nil {
			// SQLite keeps -wal and -shm files next to the database
			paths = append(paths, filepath.Dir(db))
		}
	}
	return paths
}

// historyDBPath returns the configured database path or the default under
// the pfind home.
func historyDBPath(cfg *config.Config) (string, error) {
	if cfg.History.DBPath != "" {
		return cfg.History.DBPath, nil
	}
	return config.HistoryDBPath()
}

func recordHistory(ctx context.Context, cfg *config.Config, run *models.Run) error {
	dbPath, err := historyDBPath(cfg)
	if err != nil {
		return err
	}
	store, err := history.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.RecordRun(ctx, run)
}
