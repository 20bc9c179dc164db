// Package cmd provides command-line interface commands for filelist
package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/dimasma0305/filelist/internal/log"
)

var workDir string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "filelist",
	Short: "Publish a filtered, compressed listing of a watched directory",
	Long: `filelist - keeps a compressed JSON listing of a directory up to date

The service watches one directory, filters its entries with a regular
expression and publishes the result into a fixed-capacity snapshot buffer
that readers poll over a Unix socket or HTTP.

Features:
  • Refresh on create, remove and rename inside the watched directory
  • Runtime configuration writes (directory, pattern, flags)
  • zlib or zstd compressed snapshots with a valid-length header
  • Refresh history in SQLite and Prometheus metrics`,
	Example: `  # Write .filelist/conf.yaml interactively
  filelist init

  # Start the daemon on the configured directory
  filelist start

  # Change the filter pattern while running
  filelist set pattern '\.log$'

  # Print the currently published names
  filelist list`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			log.SetDebugMode(true)
			log.Debug("Debug mode enabled")
		}
	},
}

// Execute runs the root command through fang. This is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version()),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&workDir, "workdir", "C", ".", "Project directory holding .filelist/")
}
