package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dimasma0305/filelist/internal/filelist/daemon"
	"github.com/dimasma0305/filelist/internal/log"
)

var (
	stopPidFile string
	stopTimeout time.Duration
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the filelist daemon",
	Long:  `Send SIGTERM to the running daemon and wait for it to exit, killing it after the timeout.`,
	Example: `  # Stop the daemon
  filelist stop

  # Stop with custom PID file
  filelist stop --pid-file /custom/path/filelist.pid`,
	Run: func(_ *cobra.Command, _ []string) {
		opts, err := loadOptions(workDir)
		if err != nil {
			log.Fatal("Failed to load configuration: ", err)
		}
		pidFile := opts.PidFile
		if stopPidFile != "" {
			pidFile = stopPidFile
		}
		timeout := opts.StopTimeout
		if stopTimeout > 0 {
			timeout = stopTimeout
		}

		log.Info("🛑 Stopping filelist daemon...")
		if err := daemon.StopDaemon(pidFile, timeout); err != nil {
			log.Fatal("Failed to stop daemon: ", err)
		}
		log.Info("✅ filelist stopped")
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)

	stopCmd.Flags().StringVar(&stopPidFile, "pid-file", "", "Custom PID file location")
	stopCmd.Flags().DurationVar(&stopTimeout, "timeout", 0, "How long to wait before killing the daemon")
}
