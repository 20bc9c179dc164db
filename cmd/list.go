package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dimasma0305/filelist/internal/filelist/api"
	"github.com/dimasma0305/filelist/internal/log"
)

var (
	listHTTP     string
	listJSON     bool
	snapshotHTTP string
	snapshotOut  string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print the names in the published snapshot",
	Example: `  # One name per line
  filelist list

  # As the JSON array that was compressed
  filelist list --json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		names, err := publishedNames(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if listJSON {
			return json.NewEncoder(out).Encode(names)
		}
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		return nil
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Write the compressed snapshot bytes",
	Long: `Write the valid bytes of the published snapshot, exactly as readers of
the buffer see them, to stdout or to --output.`,
	Example: `  # Save the snapshot and inspect it
  filelist snapshot -o list.z`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, seq, codec, err := publishedSnapshot(cmd.Context())
		if err != nil {
			return err
		}

		if snapshotOut == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(snapshotOut, data, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", snapshotOut, err)
		}
		log.Info("Wrote %d bytes (%s, sequence %d) to %s", len(data), codec, seq, snapshotOut)
		return nil
	},
}

func publishedNames(ctx context.Context) ([]string, error) {
	if listHTTP != "" {
		return api.NewClient(listHTTP).Names(ctx)
	}
	opts, err := loadOptions(workDir)
	if err != nil {
		return nil, err
	}
	client, err := serviceClient(opts)
	if err != nil {
		return nil, err
	}
	return client.GetNames()
}

func publishedSnapshot(ctx context.Context) ([]byte, uint64, string, error) {
	if snapshotHTTP != "" {
		snap, err := api.NewClient(snapshotHTTP).Snapshot(ctx)
		if err != nil {
			return nil, 0, "", err
		}
		return snap.Data, snap.Sequence, snap.Codec, nil
	}
	opts, err := loadOptions(workDir)
	if err != nil {
		return nil, 0, "", err
	}
	client, err := serviceClient(opts)
	if err != nil {
		return nil, 0, "", err
	}
	snap, err := client.GetSnapshot()
	if err != nil {
		return nil, 0, "", err
	}
	return snap.Data, snap.Sequence, snap.Codec, nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(snapshotCmd)

	listCmd.Flags().StringVar(&listHTTP, "http", "", "Read from the HTTP surface at this address instead of the socket")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print a JSON array")
	snapshotCmd.Flags().StringVar(&snapshotHTTP, "http", "", "Read from the HTTP surface at this address instead of the socket")
	snapshotCmd.Flags().StringVarP(&snapshotOut, "output", "o", "", "Write to this file instead of stdout")
}
