// Package refresh runs the list, filter, serialize and publish sequence as a
// single mutually exclusive operation.
package refresh

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dimasma0305/filelist/internal/filelist/errors"
	"github.com/dimasma0305/filelist/internal/filelist/filter"
	"github.com/dimasma0305/filelist/internal/filelist/lister"
	"github.com/dimasma0305/filelist/internal/filelist/metrics"
	"github.com/dimasma0305/filelist/internal/filelist/params"
	"github.com/dimasma0305/filelist/internal/filelist/serializer"
	"github.com/dimasma0305/filelist/internal/log"
)

// Source names what triggered a refresh
type Source string

const (
	SourceStartup Source = "startup"
	SourceConfig  Source = "config"
	SourceWatch   Source = "watch"
	SourceManual  Source = "manual"
)

// State of the coordinator
type State int32

const (
	Idle State = iota
	Refreshing
)

func (s State) String() string {
	if s == Refreshing {
		return "refreshing"
	}
	return "idle"
}

// Result describes one refresh attempt
type Result struct {
	ID              string        `json:"id"`
	Source          Source        `json:"source"`
	Directory       string        `json:"directory"`
	Pattern         string        `json:"pattern"`
	Entries         int           `json:"entries"`
	Matches         int           `json:"matches"`
	RawBytes        int           `json:"raw_bytes"`
	CompressedBytes int           `json:"compressed_bytes"`
	Sequence        uint64        `json:"sequence"`
	Overflowed      bool          `json:"overflowed"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration"`
	Err             error         `json:"-"`
}

// Recorder receives every finished refresh, successful or not
type Recorder interface {
	RecordRefresh(Result)
}

// RecorderFunc adapts a function to Recorder
type RecorderFunc func(Result)

func (f RecorderFunc) RecordRefresh(r Result) { f(r) }

// Option configures a Coordinator
type Option func(*Coordinator)

// WithLister replaces the directory lister
func WithLister(l lister.Lister) Option {
	return func(c *Coordinator) { c.lister = l }
}

// WithEngine selects the regex engine
func WithEngine(engine string) Option {
	return func(c *Coordinator) { c.engine = engine }
}

// WithRecorder adds a recorder notified after every refresh
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) { c.recorders = append(c.recorders, r) }
}

// Coordinator owns the refresh lock
type Coordinator struct {
	mu    sync.Mutex
	state atomic.Int32

	store     *params.Store
	codec     serializer.Codec
	lister    lister.Lister
	engine    string
	recorders []Recorder
}

// New creates a coordinator publishing into store using codec
func New(store *params.Store, codec serializer.Codec, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:  store,
		codec:  codec,
		lister: lister.OS{},
		engine: filter.EngineRE2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Refresh runs one complete refresh. A caller arriving while another refresh
// is running waits for it and then reads the configuration afresh. On any
// error the previously published snapshot is left as it was.
func (c *Coordinator) Refresh(source Source) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Store(int32(Refreshing))
	defer c.state.Store(int32(Idle))

	res := c.run(source)
	c.finish(res)
	return res, res.Err
}

func (c *Coordinator) run(source Source) (res Result) {
	cfg := c.store.Config()
	res = Result{
		ID:        uuid.NewString(),
		Source:    source,
		Directory: cfg.Directory,
		Pattern:   cfg.Pattern,
		StartedAt: time.Now(),
	}
	defer func() { res.Duration = time.Since(res.StartedAt) }()

	names, err := c.lister.List(cfg.Directory)
	if err != nil {
		res.Err = err
		return res
	}
	res.Entries = len(names)

	matched, err := filter.Apply(names, filter.Options{
		Pattern:       cfg.Pattern,
		CaseSensitive: cfg.CaseSensitive,
		FullPath:      cfg.FullPath,
		BaseDir:       cfg.Directory,
		Engine:        c.engine,
	})
	if err != nil {
		res.Err = err
		return res
	}
	res.Matches = len(matched)

	encoded, err := serializer.Encode(matched, c.codec)
	res.RawBytes = len(encoded.Raw)
	if err != nil {
		res.Err = err
		return res
	}
	res.CompressedBytes = len(encoded.Compressed)

	if c.store.Publish(encoded.Compressed) {
		res.Overflowed = true
		res.Err = errors.Wrapf(errors.ErrOverflowed, "%d bytes into capacity %d", len(encoded.Compressed), c.store.Capacity())
		return res
	}
	res.Sequence = c.store.Snapshot().Sequence
	return res
}

func (c *Coordinator) finish(res Result) {
	metrics.ObserveRefresh(string(res.Source), errors.Kind(res.Err), res.Duration)

	switch {
	case res.Err == nil:
		metrics.ObservePublish(res.Entries, res.Matches, res.CompressedBytes, res.Sequence)
		log.Debug("refresh %s (%s): %d/%d entries, %d bytes, sequence %d",
			res.ID, res.Source, res.Matches, res.Entries, res.CompressedBytes, res.Sequence)
	case errors.IsSoft(res.Err):
		log.Warn("refresh %s (%s) kept previous snapshot: %v", res.ID, res.Source, res.Err)
	default:
		log.Error("refresh %s (%s) of %s failed: %v", res.ID, res.Source, res.Directory, res.Err)
	}

	if res.Err != nil {
		c.store.Notify(params.Event{Kind: params.EventRefreshFailed, Error: res.Err.Error()})
	}
	for _, r := range c.recorders {
		r.RecordRefresh(res)
	}
}
