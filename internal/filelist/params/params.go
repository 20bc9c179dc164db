// Package params is the parameter store shared by every surface of the
// service: the current configuration, the published snapshot and the
// subscribers that want to hear about changes to either.
package params

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dimasma0305/filelist/internal/filelist/config"
	"github.com/dimasma0305/filelist/internal/filelist/errors"
	"github.com/dimasma0305/filelist/internal/filelist/serializer"
)

// EventKind identifies what changed in the store
type EventKind string

const (
	EventConfig        EventKind = "config"
	EventSnapshot      EventKind = "snapshot"
	EventRefreshFailed EventKind = "refresh_failed"
	EventRetarget      EventKind = "retarget"
)

// Event is delivered to subscribers. Only the fields relevant to Kind are set.
type Event struct {
	Kind      EventKind `json:"kind"`
	Field     string    `json:"field,omitempty"`
	Value     string    `json:"value,omitempty"`
	Sequence  uint64    `json:"sequence,omitempty"`
	Length    int       `json:"length,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Store holds configuration and the published snapshot.
type Store struct {
	mu  sync.RWMutex
	cfg config.Configuration

	buffer *serializer.Buffer

	subMu  sync.Mutex
	subs   map[int]chan Event
	nextID int
}

// New creates a store holding cfg and publishing into buffer
func New(cfg config.Configuration, buffer *serializer.Buffer) *Store {
	return &Store{
		cfg:    cfg,
		buffer: buffer,
		subs:   make(map[int]chan Event),
	}
}

// Config returns a consistent copy of the configuration
func (s *Store) Config() config.Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SetDirectory replaces the watched directory
func (s *Store) SetDirectory(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.Wrap(errors.ErrInvalidConfig, "directory must not be empty")
	}
	s.update(config.FieldDirectory, dir, func(c *config.Configuration) { c.Directory = dir })
	return nil
}

// SetPattern replaces the search pattern. The pattern is validated by the
// next refresh, not here.
func (s *Store) SetPattern(pattern string) {
	s.update(config.FieldPattern, pattern, func(c *config.Configuration) { c.Pattern = pattern })
}

// SetCaseSensitive toggles case-sensitive matching
func (s *Store) SetCaseSensitive(v bool) {
	s.update(config.FieldCaseSensitive, strconv.FormatBool(v), func(c *config.Configuration) { c.CaseSensitive = v })
}

// SetFullPath toggles full-path rendering
func (s *Store) SetFullPath(v bool) {
	s.update(config.FieldFullPath, strconv.FormatBool(v), func(c *config.Configuration) { c.FullPath = v })
}

// Validate checks a write of value to field without applying it. Patterns
// are not compiled here; a bad pattern surfaces as a refresh failure.
func Validate(field, value string) error {
	switch field {
	case config.FieldDirectory:
		if strings.TrimSpace(value) == "" {
			return errors.Wrap(errors.ErrInvalidConfig, "directory must not be empty")
		}
	case config.FieldPattern:
	case config.FieldCaseSensitive, config.FieldFullPath:
		if _, err := strconv.ParseBool(strings.TrimSpace(value)); err != nil {
			return errors.Wrapf(errors.ErrInvalidConfig, "%s expects a boolean, got %q", field, value)
		}
	default:
		return errors.Wrapf(errors.ErrUnknownField, "%q", field)
	}
	return nil
}

// Set writes a field by name, parsing value as the field requires.
func (s *Store) Set(field, value string) error {
	if err := Validate(field, value); err != nil {
		return err
	}
	switch field {
	case config.FieldDirectory:
		return s.SetDirectory(value)
	case config.FieldPattern:
		s.SetPattern(value)
	case config.FieldCaseSensitive:
		v, _ := strconv.ParseBool(strings.TrimSpace(value))
		s.SetCaseSensitive(v)
	case config.FieldFullPath:
		v, _ := strconv.ParseBool(strings.TrimSpace(value))
		s.SetFullPath(v)
	}
	return nil
}

func (s *Store) update(field, value string, apply func(*config.Configuration)) {
	s.mu.Lock()
	apply(&s.cfg)
	s.mu.Unlock()

	s.Notify(Event{Kind: EventConfig, Field: field, Value: value})
}

// Capacity returns the snapshot buffer capacity
func (s *Store) Capacity() int {
	return s.buffer.Capacity()
}

// Publish stores payload as the new snapshot. It reports overflow without
// touching the previous snapshot.
func (s *Store) Publish(payload []byte) (overflowed bool) {
	if s.buffer.Publish(payload) {
		return true
	}
	snap := s.buffer.Snapshot()
	s.Notify(Event{Kind: EventSnapshot, Sequence: snap.Sequence, Length: snap.Length})
	return false
}

// Snapshot returns the current published snapshot without blocking
// publishers.
func (s *Store) Snapshot() serializer.Snapshot {
	return s.buffer.Snapshot()
}

// ReadInto copies the valid snapshot bytes into dst
func (s *Store) ReadInto(dst []byte) int {
	return s.buffer.ReadInto(dst)
}

// Subscribe registers a subscriber with a channel of the given depth. Events
// are dropped for a subscriber whose channel is full. The returned function
// unregisters and closes the channel.
func (s *Store) Subscribe(depth int) (<-chan Event, func()) {
	if depth <= 0 {
		depth = 16
	}
	ch := make(chan Event, depth)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

// Notify delivers ev to every subscriber
func (s *Store) Notify(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
