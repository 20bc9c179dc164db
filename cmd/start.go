package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dimasma0305/filelist/internal/filelist/config"
	"github.com/dimasma0305/filelist/internal/filelist/core"
	"github.com/dimasma0305/filelist/internal/filelist/daemon"
	"github.com/dimasma0305/filelist/internal/log"
)

var (
	startForeground    bool
	startPattern       string
	startCaseSensitive bool
	startFullPath      bool
	startCapacity      int
	startCodec         string
	startRegexEngine   string
	startHTTPAddr      string
	startPidFile       string
	startLogFile       string
	startSocketPath    string
	startNoDatabase    bool
)

var startCmd = &cobra.Command{
	Use:   "start [directory]",
	Short: "Start the filelist service",
	Long: `Start watching a directory and publishing its filtered listing.

Values come from .filelist/conf.yaml; flags given on the command line
override them. The service runs as a daemon by default. Use --foreground
to run in the current terminal.`,
	Example: `  # Start as daemon with the configured directory
  filelist start

  # Start in foreground on another directory
  filelist start --foreground /srv/incoming

  # Publish only CSV files, case-sensitively, over HTTP too
  filelist start --pattern '\.csv$' --case-sensitive --http :8080`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := loadOptions(workDir)
		if err != nil {
			log.Fatal("Failed to load configuration: ", err)
		}
		opts = applyStartFlags(cmd, args, opts)

		if st := daemon.GetStatus(opts.PidFile); st.Running {
			log.Fatal("filelist is already running (PID: ", st.PID, ")")
		}

		svc, err := core.New(opts)
		if err != nil {
			log.Fatal("Failed to initialize: ", err)
		}
		if err := svc.Start(); err != nil {
			log.Fatal("Failed to start: ", err)
		}
	},
}

// applyStartFlags overrides opts with the flags that were set explicitly
func applyStartFlags(cmd *cobra.Command, args []string, opts config.Options) config.Options {
	flags := cmd.Flags()
	if len(args) > 0 {
		opts.Directory = args[0]
	}
	if flags.Changed("pattern") {
		opts.Pattern = startPattern
	}
	if flags.Changed("case-sensitive") {
		opts.CaseSensitive = startCaseSensitive
	}
	if flags.Changed("full-path") {
		opts.FullPath = startFullPath
	}
	if flags.Changed("capacity") {
		opts.Capacity = startCapacity
	}
	if flags.Changed("codec") {
		opts.Codec = startCodec
	}
	if flags.Changed("regex-engine") {
		opts.RegexEngine = startRegexEngine
	}
	if flags.Changed("http") {
		opts.HTTPAddr = startHTTPAddr
	}
	if startPidFile != "" {
		opts.PidFile = startPidFile
	}
	if startLogFile != "" {
		opts.LogFile = startLogFile
	}
	if startSocketPath != "" {
		opts.SocketPath = startSocketPath
	}
	if startNoDatabase {
		opts.DatabaseEnabled = false
	}
	opts.DaemonMode = !startForeground
	return opts
}

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().BoolVarP(&startForeground, "foreground", "f", false, "Run in the foreground instead of as a daemon")
	startCmd.Flags().StringVar(&startPattern, "pattern", "", "Filter pattern")
	startCmd.Flags().BoolVar(&startCaseSensitive, "case-sensitive", false, "Match the pattern case-sensitively")
	startCmd.Flags().BoolVar(&startFullPath, "full-path", false, "Publish directory-joined paths")
	startCmd.Flags().IntVar(&startCapacity, "capacity", config.DefaultCapacity, "Snapshot buffer capacity in bytes")
	startCmd.Flags().StringVar(&startCodec, "codec", "", "Snapshot codec (zlib or zstd)")
	startCmd.Flags().StringVar(&startRegexEngine, "regex-engine", "", "Pattern engine (re2 or pcre)")
	startCmd.Flags().StringVar(&startHTTPAddr, "http", "", "HTTP listen address")
	startCmd.Flags().StringVar(&startPidFile, "pid-file", "", "Custom PID file location")
	startCmd.Flags().StringVar(&startLogFile, "log-file", "", "Custom log file location")
	startCmd.Flags().StringVar(&startSocketPath, "socket", "", "Custom socket file location")
	startCmd.Flags().BoolVar(&startNoDatabase, "no-db", false, "Disable the refresh history database")
}
