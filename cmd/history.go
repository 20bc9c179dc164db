package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dimasma0305/filelist/internal/filelist/socket"
	"github.com/dimasma0305/filelist/internal/log"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent refreshes",
	Example: `  # Last 20 refreshes
  filelist history

  # Last 100 as JSON
  filelist history --limit 100 --json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := loadOptions(workDir)
		if err != nil {
			return err
		}
		client, err := serviceClient(opts)
		if err != nil {
			return err
		}
		records, err := client.GetHistory(historyLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if historyJSON {
			data, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal history: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}
		socket.PrintHistory(out, records)
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run a refresh now",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := loadOptions(workDir)
		if err != nil {
			return err
		}
		client, err := serviceClient(opts)
		if err != nil {
			return err
		}
		resp, err := client.Refresh()
		if err != nil {
			return err
		}
		log.Info("✅ %s", resp.Message)
		errMsg, _ := resp.Data["error"].(string)
		printRefresh(cmd.OutOrStdout(), fmt.Sprint(resp.Data["result"]),
			num(resp.Data["matches"]), num(resp.Data["entries"]), uint64(num(resp.Data["sequence"])), errMsg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(refreshCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of refreshes to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output in JSON format")
}
