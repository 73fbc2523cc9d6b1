package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for pfind
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pfind",
		Short: "Parallel file name search",
		Long: `pfind searches a directory tree for files whose name contains a term.

A fixed pool of workers lists directories concurrently, sharing a queue of
directories still to be searched. Directories that cannot be read are
reported and skipped; a worker that hits an unexpected filesystem error
stops while the others finish the search.

Configuration is loaded from .pfind/config.yaml if present.
CLI flags override configuration file settings.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints errors so an ExitError can stay quiet
		SilenceErrors: true,
	}

	cmd.AddCommand(NewSearchCommand())
	cmd.AddCommand(NewWatchCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
