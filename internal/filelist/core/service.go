//nolint:revive // Handler methods follow interface patterns with some unused parameters
package core

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dimasma0305/filelist/internal/filelist/api"
	"github.com/dimasma0305/filelist/internal/filelist/config"
	"github.com/dimasma0305/filelist/internal/filelist/database"
	"github.com/dimasma0305/filelist/internal/filelist/params"
	"github.com/dimasma0305/filelist/internal/filelist/refresh"
	"github.com/dimasma0305/filelist/internal/filelist/serializer"
	"github.com/dimasma0305/filelist/internal/filelist/socket"
	"github.com/dimasma0305/filelist/internal/filelist/watcher"
	"github.com/dimasma0305/filelist/internal/log"
)

// Service wires the refresh pipeline to its watch and its outer surfaces
type Service struct {
	opts config.Options

	codec       serializer.Codec
	store       *params.Store
	coordinator *refresh.Coordinator
	supervisor  *watcher.Supervisor

	db           *database.DB
	socketServer *socket.Server
	httpServer   *api.Server

	startedAt time.Time
	runMu     sync.Mutex
	running   bool
}

// New builds a service from opts. Nothing is started until Run.
func New(opts config.Options) (*Service, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	codec, err := serializer.NewCodec(opts.Codec)
	if err != nil {
		return nil, err
	}

	s := &Service{opts: opts, codec: codec}
	s.store = params.New(opts.Configuration, serializer.NewBuffer(opts.Capacity, codec.Name()))
	s.db = database.New(opts.DatabasePath, opts.DatabaseEnabled)
	s.coordinator = refresh.New(s.store, codec,
		refresh.WithEngine(opts.RegexEngine),
		refresh.WithRecorder(s.db),
	)
	s.supervisor = watcher.New(s.coordinator,
		watcher.WithRetargetRecorder(s.db),
		watcher.WithRetargetRecorder(s),
	)
	s.socketServer = socket.NewServer(opts.SocketPath, opts.SocketEnabled, socket.NewDefaultCommandHandler(s))
	if opts.HTTPAddr != "" {
		s.httpServer = api.NewServer(opts.HTTPAddr, s)
	}
	return s, nil
}

// Options returns the options the service was built with
func (s *Service) Options() config.Options {
	return s.opts
}

// Config returns the current configuration
func (s *Service) Config() config.Configuration {
	return s.store.Config()
}

// Snapshot returns the published snapshot
func (s *Service) Snapshot() serializer.Snapshot {
	return s.store.Snapshot()
}

// ReadInto copies the valid snapshot bytes into dst
func (s *Service) ReadInto(dst []byte) int {
	return s.store.ReadInto(dst)
}

// Names decodes the published snapshot
func (s *Service) Names() ([]string, error) {
	snap := s.store.Snapshot()
	if snap.Sequence == 0 {
		return []string{}, nil
	}
	return serializer.Decode(snap.Data, s.codec)
}

// Subscribe registers a change subscriber
func (s *Service) Subscribe(depth int) (<-chan params.Event, func()) {
	return s.store.Subscribe(depth)
}

// Refresh runs a refresh
func (s *Service) Refresh(source refresh.Source) (refresh.Result, error) {
	return s.coordinator.Refresh(source)
}

// SetConfig writes one configuration field. A directory write retargets the
// watch and refreshes; a pattern write refreshes; flag writes only take
// effect on the next refresh. The returned error covers the write itself,
// the refresh outcome is carried in the result.
func (s *Service) SetConfig(ctx context.Context, field, value string) (*refresh.Result, error) {
	if err := s.store.Set(field, value); err != nil {
		return nil, err
	}
	log.Info("Configuration %s set to %q", field, value)
	s.db.LogToDatabase("INFO", "config", fmt.Sprintf("%s set to %q", field, value), "")

	switch field {
	case config.FieldDirectory:
		if s.isRunning() {
			if err := s.supervisor.Retarget(ctx, value); err != nil {
				log.Error("Failed to queue retarget to %s: %v", value, err)
			}
		}
	case config.FieldPattern:
	default:
		return nil, nil
	}

	res, _ := s.coordinator.Refresh(refresh.SourceConfig)
	return &res, nil
}

// RecordRetarget forwards retarget outcomes to change subscribers
func (s *Service) RecordRetarget(target string, err error) {
	ev := params.Event{Kind: params.EventRetarget, Value: target}
	if err != nil {
		ev.Error = err.Error()
		s.db.LogToDatabase("ERROR", "watcher", "retarget to "+target+" failed", err.Error())
	}
	s.store.Notify(ev)
}

// Status returns a flat status view used by the socket and the CLI
func (s *Service) Status() map[string]interface{} {
	cfg := s.store.Config()
	snap := s.store.Snapshot()
	ws := s.supervisor.Status()

	status := map[string]interface{}{
		"directory":         cfg.Directory,
		"pattern":           cfg.Pattern,
		"case_sensitive":    cfg.CaseSensitive,
		"full_path":         cfg.FullPath,
		"state":             s.coordinator.State().String(),
		"watch_armed":       ws.Armed,
		"watch_target":      ws.Target,
		"watch_generation":  ws.Generation,
		"watch_events":      ws.Events,
		"retarget_pending":  ws.Pending,
		"snapshot_length":   snap.Length,
		"snapshot_capacity": snap.Capacity,
		"snapshot_sequence": snap.Sequence,
		"codec":             snap.Codec,
		"regex_engine":      s.opts.RegexEngine,
		"pid":               os.Getpid(),
	}
	if ws.LastError != "" {
		status["watch_error"] = ws.LastError
	}
	if !snap.UpdatedAt.IsZero() {
		status["updated_at"] = snap.UpdatedAt.Format(time.RFC3339)
	}
	if !s.startedAt.IsZero() {
		status["uptime"] = time.Since(s.startedAt).Round(time.Second).String()
	}
	if s.opts.HTTPAddr != "" {
		status["http_addr"] = s.opts.HTTPAddr
	}
	return status
}

func (s *Service) isRunning() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.running
}

func (s *Service) setRunning(v bool) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if v && s.running {
		return fmt.Errorf("service already running")
	}
	s.running = v
	return nil
}
