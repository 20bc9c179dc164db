package cmd

import (
	"path/filepath"
	"time"

	"github.com/dimasma0305/filelist/internal/filelist/config"
	"github.com/dimasma0305/filelist/internal/filelist/errors"
	"github.com/dimasma0305/filelist/internal/filelist/socket"
	"github.com/dimasma0305/filelist/internal/log"
)

// loadOptions reads .filelist/conf.yaml under dir and anchors every state
// path at dir. A missing file yields the defaults.
func loadOptions(dir string) (config.Options, error) {
	opts, found, err := config.Load(dir)
	if err != nil {
		return opts, err
	}
	if !found {
		log.DebugH2("No %s, using defaults", config.Path(dir))
	}
	return resolvePaths(dir, opts), nil
}

// resolvePaths makes relative state paths relative to dir. The watched
// directory is left alone; it is resolved against the process working
// directory like any other command-line path.
func resolvePaths(dir string, opts config.Options) config.Options {
	anchor := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	opts.PidFile = anchor(opts.PidFile)
	opts.LogFile = anchor(opts.LogFile)
	opts.SocketPath = anchor(opts.SocketPath)
	opts.DatabasePath = anchor(opts.DatabasePath)
	return opts
}

// serviceClient returns a socket client for the running service, or
// ErrServiceNotRunning when nothing answers.
func serviceClient(opts config.Options) (*socket.Client, error) {
	client := socket.NewClient(opts.SocketPath)
	client.SetTimeout(5 * time.Second)
	if !client.IsRunning() {
		return nil, errors.Wrapf(errors.ErrServiceNotRunning,
			"no answer on %s, run 'filelist start' first", opts.SocketPath)
	}
	return client, nil
}
