package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dimasma0305/filelist/internal/filelist/api"
	"github.com/dimasma0305/filelist/internal/filelist/config"
	"github.com/dimasma0305/filelist/internal/filelist/errors"
	"github.com/dimasma0305/filelist/internal/log"
)

var (
	setHTTP string
	getHTTP string
)

var configFields = []string{
	config.FieldDirectory,
	config.FieldPattern,
	config.FieldCaseSensitive,
	config.FieldFullPath,
}

var setCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Write one configuration field of the running service",
	Long: `Write a configuration field. Writing directory moves the watch and
refreshes; writing pattern refreshes; case_sensitive and full_path apply
from the next refresh on.

Fields: directory, pattern, case_sensitive, full_path`,
	Example: `  # Watch another directory
  filelist set directory /srv/outgoing

  # Same thing through the HTTP surface
  filelist set --http localhost:8080 pattern '\.json$'`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: configFields,
	RunE: func(cmd *cobra.Command, args []string) error {
		field, value := args[0], args[1]

		if setHTTP != "" {
			patch, err := patchFor(field, value)
			if err != nil {
				return err
			}
			resp, err := api.NewClient(setHTTP).SetConfig(cmd.Context(), patch)
			if err != nil {
				return err
			}
			log.Info("✅ %s updated", field)
			if resp.Refresh != nil {
				printRefresh(cmd.OutOrStdout(), resp.Refresh.Outcome, resp.Refresh.Matches, resp.Refresh.Entries, resp.Refresh.Sequence, resp.Refresh.Error)
			}
			return nil
		}

		opts, err := loadOptions(workDir)
		if err != nil {
			return err
		}
		client, err := serviceClient(opts)
		if err != nil {
			return err
		}
		resp, err := client.SetConfig(field, value)
		if err != nil {
			return err
		}
		log.Info("✅ %s", resp.Message)
		if r, ok := resp.Data["refresh"].(map[string]interface{}); ok {
			errMsg, _ := r["error"].(string)
			printRefresh(cmd.OutOrStdout(), fmt.Sprint(r["result"]), num(r["matches"]), num(r["entries"]), uint64(num(r["sequence"])), errMsg)
		}
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get [field]",
	Short: "Print the configuration of the running service",
	Example: `  # Print every field
  filelist get

  # Print one field over HTTP
  filelist get --http localhost:8080 pattern`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: configFields,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := currentConfig(cmd.Context())
		if err != nil {
			return err
		}

		values := map[string]string{
			config.FieldDirectory:     cfg.Directory,
			config.FieldPattern:       cfg.Pattern,
			config.FieldCaseSensitive: strconv.FormatBool(cfg.CaseSensitive),
			config.FieldFullPath:      strconv.FormatBool(cfg.FullPath),
		}

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			v, ok := values[args[0]]
			if !ok {
				return errors.Wrapf(errors.ErrUnknownField, "%q", args[0])
			}
			fmt.Fprintln(out, v)
			return nil
		}
		for _, field := range configFields {
			fmt.Fprintf(out, "%s: %s\n", field, values[field])
		}
		return nil
	},
}

func currentConfig(ctx context.Context) (config.Configuration, error) {
	if getHTTP != "" {
		return api.NewClient(getHTTP).Config(ctx)
	}

	opts, err := loadOptions(workDir)
	if err != nil {
		return config.Configuration{}, err
	}
	client, err := serviceClient(opts)
	if err != nil {
		return config.Configuration{}, err
	}
	resp, err := client.GetConfig()
	if err != nil {
		return config.Configuration{}, err
	}
	var cfg config.Configuration
	if err := resp.DecodeData(&cfg); err != nil {
		return config.Configuration{}, err
	}
	return cfg, nil
}

// patchFor turns a field/value pair into a partial HTTP config write
func patchFor(field, value string) (api.ConfigPatch, error) {
	var patch api.ConfigPatch
	switch field {
	case config.FieldDirectory:
		patch.Directory = &value
	case config.FieldPattern:
		patch.Pattern = &value
	case config.FieldCaseSensitive, config.FieldFullPath:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return patch, errors.Wrapf(errors.ErrInvalidConfig, "%s expects a boolean, got %q", field, value)
		}
		if field == config.FieldCaseSensitive {
			patch.CaseSensitive = &b
		} else {
			patch.FullPath = &b
		}
	default:
		return patch, errors.Wrapf(errors.ErrUnknownField, "%q", field)
	}
	return patch, nil
}

func printRefresh(w io.Writer, result string, matches, entries int, sequence uint64, errMsg string) {
	fmt.Fprintf(w, "refresh: %s, %d/%d entries matched, sequence %d\n", result, matches, entries, sequence)
	if errMsg != "" {
		fmt.Fprintf(w, "  %s\n", errMsg)
	}
}

// num reads a JSON number out of loosely typed socket data
func num(v interface{}) int {
	f, _ := v.(float64)
	return int(f)
}

func init() {
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(getCmd)

	setCmd.Flags().StringVar(&setHTTP, "http", "", "Talk to the HTTP surface at this address instead of the socket")
	getCmd.Flags().StringVar(&getHTTP, "http", "", "Talk to the HTTP surface at this address instead of the socket")
}
