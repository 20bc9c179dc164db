package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dimasma0305/filelist/internal/filelist/daemon"
	"github.com/dimasma0305/filelist/internal/log"
)

var (
	logsFile  string
	logsLines int
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Follow the daemon log in real-time",
	Long:  `Stream the daemon log file in real-time (like tail -f).`,
	Example: `  # Follow logs
  filelist logs

  # Show more history first
  filelist logs -n 100`,
	Run: func(cmd *cobra.Command, _ []string) {
		opts, err := loadOptions(workDir)
		if err != nil {
			log.Fatal("Failed to load configuration: ", err)
		}
		logFile := opts.LogFile
		if logsFile != "" {
			logFile = logsFile
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Info("📋 Following filelist logs: %s", logFile)
		log.InfoH2("Press Ctrl+C to stop")
		if err := daemon.FollowLogs(ctx, logFile, logsLines, cmd.OutOrStdout()); err != nil {
			log.Fatal("Failed to follow logs: ", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().StringVar(&logsFile, "log-file", "", "Custom log file location")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 20, "Number of existing lines to show first")
}
