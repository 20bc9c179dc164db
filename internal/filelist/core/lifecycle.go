package core

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	godaemon "github.com/sevlyar/go-daemon"
	"golang.org/x/sync/errgroup"

	"github.com/dimasma0305/filelist/internal/filelist/daemon"
	"github.com/dimasma0305/filelist/internal/filelist/refresh"
	"github.com/dimasma0305/filelist/internal/log"
)

// Start runs the service in the mode the options ask for. In daemon mode the
// parent returns as soon as the child has been forked; in the foreground it
// runs until SIGINT or SIGTERM.
func (s *Service) Start() error {
	if s.opts.DaemonMode {
		log.Info("Starting filelist in DAEMON mode...")
		return s.startAsDaemon()
	}

	log.Info("Starting filelist in foreground mode...")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := daemon.WritePIDFile(s.opts.PidFile, os.Getpid()); err != nil {
		return err
	}
	defer daemon.RemovePIDFile(s.opts.PidFile, os.Getpid())

	return s.Run(ctx)
}

func (s *Service) startAsDaemon() error {
	if err := daemon.EnsureDirectoriesExist(s.opts.PidFile, s.opts.LogFile); err != nil {
		return err
	}

	daemonCtx := &godaemon.Context{
		PidFileName: s.opts.PidFile,
		PidFilePerm: 0644,
		LogFileName: s.opts.LogFile,
		LogFilePerm: 0640,
		WorkDir:     "./",
		Umask:       027,
	}

	child, err := daemonCtx.Reborn()
	if err != nil {
		return fmt.Errorf("failed to fork daemon: %w", err)
	}
	if child != nil {
		log.Info("✅ filelist daemon started")
		log.InfoH2("PID: %d (saved to %s)", child.Pid, s.opts.PidFile)
		log.InfoH2("Logs: %s", s.opts.LogFile)
		return nil
	}
	defer func() {
		if err := daemonCtx.Release(); err != nil {
			log.Error("Failed to release PID file: %v", err)
		}
	}()

	log.Info("🚀 filelist daemon running (PID: %d)", os.Getpid())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run starts every component and blocks until ctx is done, then stops them
// and waits up to the configured stop timeout.
func (s *Service) Run(ctx context.Context) error {
	if err := s.setRunning(true); err != nil {
		return err
	}
	defer func() { _ = s.setRunning(false) }()

	if err := s.db.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := s.socketServer.Init(); err != nil {
		_ = s.db.Close()
		return fmt.Errorf("failed to initialize socket server: %w", err)
	}

	s.startedAt = time.Now()
	s.db.LogToDatabase("INFO", "service", "filelist started", "")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		return s.supervisor.Run(gctx)
	})

	if s.socketServer.IsEnabled() {
		g.Go(func() error {
			s.socketServer.Run(gctx)
			return nil
		})
	}
	if s.httpServer != nil {
		g.Go(func() error {
			return s.httpServer.Run(gctx)
		})
	}

	// Closing the listener is what unblocks Accept
	g.Go(func() error {
		<-gctx.Done()
		return s.socketServer.Close()
	})

	dir := s.store.Config().Directory
	if err := s.supervisor.RetargetAndWait(gctx, dir); err != nil {
		log.Error("Initial watch on %s not armed: %v", dir, err)
		log.ErrorH2("Changes will not be picked up until the directory is written again")
	}
	if _, err := s.coordinator.Refresh(refresh.SourceStartup); err != nil {
		log.Error("Initial refresh failed: %v", err)
	}

	log.Info("filelist serving %s (pattern %q)", dir, s.store.Config().Pattern)
	<-gctx.Done()
	log.Info("Stopping filelist...")
	s.db.LogToDatabase("INFO", "service", "filelist shutdown initiated", "")

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var err error
	select {
	case err = <-done:
		log.InfoH3("All components stopped")
	case <-time.After(s.opts.StopTimeout):
		err = fmt.Errorf("timed out after %v waiting for components to stop", s.opts.StopTimeout)
		log.Error("%v", err)
	}

	s.db.LogToDatabase("INFO", "service", "filelist stopped", "")
	if closeErr := s.db.Close(); closeErr != nil {
		log.Error("Failed to close database: %v", closeErr)
	}
	log.Info("filelist stopped")
	return err
}
