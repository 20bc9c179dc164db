// Package config holds the runtime configuration of the refresh pipeline and
// the startup options that construct it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dimasma0305/filelist/internal/filelist/errors"
)

const (
	FILELIST_DIR = ".filelist"
	CONFIG_FILE  = "conf.yaml"

	// DefaultCapacity is the historical size of the published snapshot buffer.
	DefaultCapacity = 16 * 1024
)

// Field names accepted by configuration writes.
const (
	FieldDirectory     = "directory"
	FieldPattern       = "pattern"
	FieldCaseSensitive = "case_sensitive"
	FieldFullPath      = "full_path"
)

// Configuration is the set of values a refresh reads as one consistent copy.
type Configuration struct {
	Directory     string `yaml:"directory" json:"directory"`
	Pattern       string `yaml:"pattern" json:"pattern"`
	CaseSensitive bool   `yaml:"case_sensitive" json:"case_sensitive"`
	FullPath      bool   `yaml:"full_path" json:"full_path"`
}

// Options are the startup parameters of a filelist service.
type Options struct {
	Configuration `yaml:",inline"`

	Capacity    int    `yaml:"capacity"`
	Codec       string `yaml:"codec"`
	RegexEngine string `yaml:"regex_engine"`

	DaemonMode   bool          `yaml:"-"`
	PidFile      string        `yaml:"pid_file"`
	LogFile      string        `yaml:"log_file"`
	SocketPath   string        `yaml:"socket_path"`
	DatabasePath string        `yaml:"database_path"`
	HTTPAddr     string        `yaml:"http_addr"`
	StopTimeout  time.Duration `yaml:"stop_timeout"`

	DatabaseEnabled bool `yaml:"database_enabled"`
	SocketEnabled   bool `yaml:"socket_enabled"`
}

// Default provides default option values
var Default = Options{
	Configuration: Configuration{
		Pattern:       ".*",
		CaseSensitive: false,
		FullPath:      false,
	},
	Capacity:        DefaultCapacity,
	Codec:           "zlib",
	RegexEngine:     "re2",
	DaemonMode:      true,
	PidFile:         ".filelist/filelist.pid",
	LogFile:         ".filelist/filelist.log",
	SocketPath:      ".filelist/filelist.sock",
	DatabasePath:    ".filelist/filelist.db",
	HTTPAddr:        "",
	StopTimeout:     10 * time.Second,
	DatabaseEnabled: true,
	SocketEnabled:   true,
}

// WithDefaults fills every zero-valued option from Default.
func (o Options) WithDefaults() Options {
	if o.Pattern == "" {
		o.Pattern = Default.Pattern
	}
	if o.Capacity <= 0 {
		o.Capacity = Default.Capacity
	}
	if o.Codec == "" {
		o.Codec = Default.Codec
	}
	if o.RegexEngine == "" {
		o.RegexEngine = Default.RegexEngine
	}
	if o.PidFile == "" {
		o.PidFile = Default.PidFile
	}
	if o.LogFile == "" {
		o.LogFile = Default.LogFile
	}
	if o.SocketPath == "" {
		o.SocketPath = Default.SocketPath
	}
	if o.DatabasePath == "" {
		o.DatabasePath = Default.DatabasePath
	}
	if o.StopTimeout <= 0 {
		o.StopTimeout = Default.StopTimeout
	}
	return o
}

// Validate checks the options needed to construct the pipeline.
func (o Options) Validate() error {
	if strings.TrimSpace(o.Directory) == "" {
		return errors.Wrap(errors.ErrInvalidConfig, "directory is required")
	}
	if o.Capacity <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "capacity must be positive, got %d", o.Capacity)
	}
	switch o.RegexEngine {
	case "re2", "pcre":
	default:
		return errors.Wrapf(errors.ErrInvalidConfig, "unknown regex engine %q", o.RegexEngine)
	}
	switch o.Codec {
	case "zlib", "zstd":
	default:
		return errors.Wrapf(errors.ErrInvalidConfig, "unknown codec %q", o.Codec)
	}
	return nil
}

// Path returns the configuration file path under dir.
func Path(dir string) string {
	return filepath.Join(dir, FILELIST_DIR, CONFIG_FILE)
}

// Load reads options from the configuration file in dir. A missing file is
// not an error; the returned options then hold only defaults.
func Load(dir string) (Options, bool, error) {
	opts := Default
	confPath := Path(dir)

	if _, err := os.Stat(confPath); os.IsNotExist(err) {
		return opts, false, nil
	}
	if err := readYAML(confPath, &opts); err != nil {
		return Default, false, fmt.Errorf("failed to load %s: %w", confPath, err)
	}
	return opts.WithDefaults(), true, nil
}

// Save writes opts to the configuration file in dir.
func Save(dir string, opts Options) error {
	confPath := Path(dir)
	if err := os.MkdirAll(filepath.Dir(confPath), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return writeYAML(confPath, opts)
}
