// Package watcher keeps exactly one filesystem watch armed on the configured
// directory and turns every entry change it reports into a refresh.
package watcher

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dimasma0305/filelist/internal/filelist/errors"
	"github.com/dimasma0305/filelist/internal/filelist/metrics"
	"github.com/dimasma0305/filelist/internal/filelist/refresh"
	"github.com/dimasma0305/filelist/internal/log"
)

// DefaultQueueDepth is the number of retarget requests that may be pending
const DefaultQueueDepth = 8

// Refresher is the refresh entry point shared with configuration writes
type Refresher interface {
	Refresh(source refresh.Source) (refresh.Result, error)
}

// RetargetRecorder receives the outcome of every processed retarget
type RetargetRecorder interface {
	RecordRetarget(target string, err error)
}

// Status is a point-in-time view of the supervisor
type Status struct {
	Target     string    `json:"target"`
	Armed      bool      `json:"armed"`
	Generation uint64    `json:"generation"`
	Pending    int       `json:"pending"`
	Events     uint64    `json:"events"`
	LastError  string    `json:"last_error,omitempty"`
	ArmedAt    time.Time `json:"armed_at,omitempty"`
	Running    bool      `json:"running"`
}

type request struct {
	dir  string
	done chan error
}

// Option configures a Supervisor
type Option func(*Supervisor)

// WithQueueDepth sets the retarget queue depth
func WithQueueDepth(depth int) Option {
	return func(s *Supervisor) {
		if depth > 0 {
			s.depth = depth
		}
	}
}

// WithNotifierFactory replaces the fsnotify backend
func WithNotifierFactory(f NotifierFactory) Option {
	return func(s *Supervisor) { s.newNotifier = f }
}

// WithRetargetRecorder adds a recorder for retarget outcomes
func WithRetargetRecorder(r RetargetRecorder) Option {
	return func(s *Supervisor) { s.recorders = append(s.recorders, r) }
}

// Supervisor owns the watch. Only the goroutine running Run creates or
// closes the notifier; everything else talks to it through the queue.
type Supervisor struct {
	refresher   Refresher
	newNotifier NotifierFactory
	recorders   []RetargetRecorder
	depth       int

	requests chan request
	stopped  chan struct{}
	stopOnce sync.Once

	notifier Notifier

	mu     sync.RWMutex
	status Status
}

// New creates a supervisor forwarding changes to refresher
func New(refresher Refresher, opts ...Option) *Supervisor {
	s := &Supervisor{
		refresher:   refresher,
		newNotifier: NewFSNotifier,
		depth:       DefaultQueueDepth,
		stopped:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.requests = make(chan request, s.depth)
	return s
}

// Retarget enqueues a request to watch dir. When the queue is full it waits
// for room until ctx is done.
func (s *Supervisor) Retarget(ctx context.Context, dir string) error {
	return s.enqueue(ctx, request{dir: dir})
}

// RetargetAndWait enqueues a request to watch dir and waits until it has
// been processed, returning the arm result.
func (s *Supervisor) RetargetAndWait(ctx context.Context, dir string) error {
	req := request{dir: dir, done: make(chan error, 1)}
	if err := s.enqueue(ctx, req); err != nil {
		return err
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return errors.ErrSupervisorStopped
	}
}

func (s *Supervisor) enqueue(ctx context.Context, req request) error {
	select {
	case <-s.stopped:
		return errors.ErrSupervisorStopped
	default:
	}

	select {
	case s.requests <- req:
		return nil
	default:
	}

	log.Warn("Retarget queue full (%d pending), waiting to enqueue %s", len(s.requests), req.dir)
	select {
	case s.requests <- req:
		return nil
	case <-s.stopped:
		return errors.ErrSupervisorStopped
	case <-ctx.Done():
		return errors.Wrapf(errors.ErrRetargetQueueFull, "%s: %v", req.dir, ctx.Err())
	}
}

// Status returns the current supervisor status
func (s *Supervisor) Status() Status {
	s.mu.RLock()
	st := s.status
	s.mu.RUnlock()
	st.Pending = len(s.requests)
	return st
}

// Run processes retarget requests and watch events until ctx is done. It
// returns nil on cancellation; arm failures never stop it.
func (s *Supervisor) Run(ctx context.Context) error {
	s.setStatus(func(st *Status) { st.Running = true })
	defer s.shutdown()

	for {
		var (
			events <-chan fsnotify.Event
			errs   <-chan error
		)
		if s.notifier != nil {
			events = s.notifier.Events()
			errs = s.notifier.Errors()
		}

		select {
		case <-ctx.Done():
			return nil

		case req := <-s.requests:
			err := s.retarget(req.dir)
			if req.done != nil {
				req.done <- err
			}

		case ev, ok := <-events:
			if !ok {
				s.lost("event channel closed")
				continue
			}
			if !triggers(ev) {
				continue
			}
			metrics.WatchEventsTotal.WithLabelValues(opLabel(ev)).Inc()
			s.setStatus(func(st *Status) { st.Events++ })
			log.DebugH2("Watch event %s on %s", ev.Op, ev.Name)
			_, _ = s.refresher.Refresh(refresh.SourceWatch)

			// the kernel drops the watch once its directory is gone
			if removesTarget(ev, s.Status().Target) {
				reason := "watched directory removed"
				if ev.Has(fsnotify.Rename) {
					reason = "watched directory renamed"
				}
				s.lost(reason)
			}

		case err, ok := <-errs:
			if !ok {
				s.lost("error channel closed")
				continue
			}
			log.Error("Watch error on %s: %v", s.Status().Target, err)
			s.setStatus(func(st *Status) { st.LastError = err.Error() })
		}
	}
}

// retarget tears down the current watch and arms a new one on dir. On
// failure no watch remains until the next successful retarget.
func (s *Supervisor) retarget(dir string) error {
	s.teardown()

	target := NormalizeWatchPath(dir)
	err := s.arm(target)

	metrics.ObserveRetarget(err)
	for _, r := range s.recorders {
		r.RecordRetarget(target, err)
	}

	if err != nil {
		log.Error("Failed to watch %s: %v", target, err)
		s.setStatus(func(st *Status) {
			st.Target = target
			st.Armed = false
			st.LastError = err.Error()
		})
		return err
	}

	log.Info("Watching %s", target)
	s.setStatus(func(st *Status) {
		st.Target = target
		st.Armed = true
		st.Generation++
		st.LastError = ""
		st.ArmedAt = time.Now()
	})
	return nil
}

func (s *Supervisor) arm(target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return errors.Wrap(errors.ErrWatchArmFailure, err.Error())
	}
	if !info.IsDir() {
		return errors.Wrap(errors.ErrWatchArmFailure, fmt.Sprintf("%s is not a directory", target))
	}

	n, err := s.newNotifier()
	if err != nil {
		return errors.Wrapf(errors.ErrWatchArmFailure, "create watcher: %v", err)
	}
	if err := n.Add(target); err != nil {
		_ = n.Close()
		return errors.Wrapf(errors.ErrWatchArmFailure, "add %s: %v", target, err)
	}
	s.notifier = n
	return nil
}

func (s *Supervisor) teardown() {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Close(); err != nil {
		log.DebugH2("Closing watch: %v", err)
	}
	s.notifier = nil
	s.setStatus(func(st *Status) { st.Armed = false })
}

func (s *Supervisor) lost(reason string) {
	log.Error("Watch on %s lost: %s", s.Status().Target, reason)
	s.teardown()
	metrics.WatchArmed.Set(0)
	s.setStatus(func(st *Status) { st.LastError = reason })
}

func (s *Supervisor) shutdown() {
	s.teardown()
	s.stopOnce.Do(func() { close(s.stopped) })
	s.setStatus(func(st *Status) { st.Running = false })
	metrics.WatchArmed.Set(0)

	for {
		select {
		case req := <-s.requests:
			if req.done != nil {
				req.done <- errors.ErrSupervisorStopped
			}
		default:
			return
		}
	}
}

func (s *Supervisor) setStatus(update func(*Status)) {
	s.mu.Lock()
	update(&s.status)
	s.mu.Unlock()
}
