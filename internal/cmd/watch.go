package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/pfind/internal/display"
	"github.com/harrison/pfind/internal/filelock"
	"github.com/harrison/pfind/internal/logger"
	"github.com/harrison/pfind/internal/watch"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <root> <term> [workers]",
		Short: "Search, then search again whenever the tree changes",
		Long: `Run a search like 'pfind search', then keep watching <root> and re-run
the search each time the tree has been quiet for the debounce period after
a change. pfind's own log, output, report and history files are ignored.
Stop with Ctrl+C.

Examples:
  pfind watch ~/src _test.go
  pfind watch . TODO --debounce 2s --output todo-files.txt`,
		Args: cobra.RangeArgs(2, 3),
		RunE: runWatchCommand,
	}

	addSearchFlags(cmd.Flags())
	cmd.Flags().Duration("debounce", 0, "Quiet period before re-running (default: config or 500ms)")
	return cmd
}

func runWatchCommand(cmd *cobra.Command, args []string) error {
	req, err := newSearchRequest(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, _, err := executeSearch(ctx, req); err != nil {
		return err
	}

	console := logger.NewConsoleLogger(req.stderr, req.cfg.LogLevel)
	w, err := watch.New(req.root, watch.Options{
		Debounce:       req.cfg.Watch.Debounce,
		IgnorePaths:    ownOutputs(req.cfg),
		IgnorePatterns: []string{"*" + filelock.LockSuffix, ".*.tmp-*"},
		OnError: func(err error) {
			console.LogWarn(fmt.Sprintf("watch: %v", err))
		},
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", req.root, err)
	}
	defer w.Close()

	status := display.NewWatchStatus(req.stderr, useColor(req.cfg.Color, req.stderr))
	status.Start(w.Root(), w.Watching())
	started := time.Now()

	err = w.Run(ctx, func(changed []string) {
		status.Rerun(changed)
		if _, _, err := executeSearch(ctx, req); err != nil {
			// The root may have been removed or made unreadable; keep watching
			console.LogError(err.Error())
		}
	})
	status.Stopped(time.Since(started))

	if err != nil && !errors.Is(err, watch.ErrClosed) {
		return err
	}
	return nil
}
