package cmd

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/dimasma0305/filelist/internal/filelist/config"
	"github.com/dimasma0305/filelist/internal/log"
)

var (
	initDirectory     string
	initPattern       string
	initCaseSensitive bool
	initFullPath      bool
	initCodec         string
	initHTTPAddr      string
	initYes           bool
	initForce         bool
)

type initAnswers struct {
	Directory     string `survey:"directory"`
	Pattern       string `survey:"pattern"`
	CaseSensitive bool   `survey:"case_sensitive"`
	FullPath      bool   `survey:"full_path"`
	Codec         string `survey:"codec"`
	HTTPAddr      string `survey:"http_addr"`
}

var initCmd = &cobra.Command{
	Use:     "init",
	Aliases: []string{"i"},
	Short:   "Write a filelist configuration file",
	Long: `Create .filelist/conf.yaml in the project directory.

Values given as flags become the defaults of the interactive prompts.
Use --yes to skip the prompts and take the flags as they are.`,
	Example: `  # Initialize with prompts
  filelist init

  # Initialize without prompts
  filelist init --yes --directory /var/spool/in --pattern '\.csv$'`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		confPath := config.Path(workDir)
		if _, err := os.Stat(confPath); err == nil && !initForce {
			return fmt.Errorf("%s already exists, use --force to overwrite", confPath)
		}

		answers := initAnswers{
			Directory:     initDirectory,
			Pattern:       initPattern,
			CaseSensitive: initCaseSensitive,
			FullPath:      initFullPath,
			Codec:         initCodec,
			HTTPAddr:      initHTTPAddr,
		}
		if !initYes {
			if err := survey.Ask(initQuestions(answers), &answers); err != nil {
				return fmt.Errorf("init canceled: %w", err)
			}
		}

		opts := config.Default
		opts.Directory = answers.Directory
		opts.Pattern = answers.Pattern
		opts.CaseSensitive = answers.CaseSensitive
		opts.FullPath = answers.FullPath
		opts.Codec = answers.Codec
		opts.HTTPAddr = answers.HTTPAddr

		opts = opts.WithDefaults()
		if err := opts.Validate(); err != nil {
			return err
		}
		if err := config.Save(workDir, opts); err != nil {
			return err
		}

		log.Info("✅ Configuration written to %s", confPath)
		log.InfoH2("Run 'filelist start' to start watching %s", opts.Directory)
		return nil
	},
}

func initQuestions(def initAnswers) []*survey.Question {
	return []*survey.Question{
		{
			Name:     "directory",
			Prompt:   &survey.Input{Message: "Directory to watch:", Default: def.Directory},
			Validate: survey.Required,
		},
		{
			Name:   "pattern",
			Prompt: &survey.Input{Message: "Filter pattern (regular expression):", Default: def.Pattern},
		},
		{
			Name:   "case_sensitive",
			Prompt: &survey.Confirm{Message: "Case-sensitive matching?", Default: def.CaseSensitive},
		},
		{
			Name:   "full_path",
			Prompt: &survey.Confirm{Message: "Publish full paths instead of bare names?", Default: def.FullPath},
		},
		{
			Name: "codec",
			Prompt: &survey.Select{
				Message: "Snapshot compression:",
				Options: []string{"zlib", "zstd"},
				Default: def.Codec,
			},
		},
		{
			Name:   "http_addr",
			Prompt: &survey.Input{Message: "HTTP listen address (empty to disable):", Default: def.HTTPAddr},
		},
	}
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initDirectory, "directory", "", "Directory to watch")
	initCmd.Flags().StringVar(&initPattern, "pattern", config.Default.Pattern, "Filter pattern")
	initCmd.Flags().BoolVar(&initCaseSensitive, "case-sensitive", false, "Match the pattern case-sensitively")
	initCmd.Flags().BoolVar(&initFullPath, "full-path", false, "Publish directory-joined paths")
	initCmd.Flags().StringVar(&initCodec, "codec", config.Default.Codec, "Snapshot codec (zlib or zstd)")
	initCmd.Flags().StringVar(&initHTTPAddr, "http", "", "HTTP listen address")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Skip prompts and use the flag values")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
}
