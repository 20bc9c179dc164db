package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dimasma0305/filelist/internal/filelist/daemon"
	"github.com/dimasma0305/filelist/internal/filelist/socket"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show filelist status",
	Long: `Display the state of the running service: configuration, watch target,
snapshot size and sequence. When the service does not answer on its socket
the PID file is inspected instead.`,
	Example: `  # Show status
  filelist status

  # Show status in JSON format
  filelist status --json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := loadOptions(workDir)
		if err != nil {
			return err
		}

		client, err := serviceClient(opts)
		if err != nil {
			return daemon.ShowStatus(opts.PidFile, opts.LogFile, statusJSON)
		}
		resp, err := client.Status()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if statusJSON {
			data, err := json.MarshalIndent(resp.Data, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal status to JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}
		socket.PrintStatus(out, resp)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output status in JSON format")
}
