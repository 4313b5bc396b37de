// Package cmd defines and implements the CLI commands for the recrawl
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recrawl",
		Short: "A concurrent recursive website crawler.",
		Long: `recrawl fetches every reachable page under a start URL, confined to
URLs that are descendants of it, and saves each page to a flat file in the
output directory. Pages already saved by a prior run are skipped, so an
interrupted crawl can be resumed by re-running it.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	cmd.AddCommand(newCrawlCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
