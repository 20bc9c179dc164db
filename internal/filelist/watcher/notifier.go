package watcher

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Notifier is a single armed filesystem watch
type Notifier interface {
	Add(path string) error
	Events() <-chan fsnotify.Event
	Errors() <-chan error
	Close() error
}

// NotifierFactory creates an unarmed notifier
type NotifierFactory func() (Notifier, error)

type fsNotifier struct {
	w *fsnotify.Watcher
}

// NewFSNotifier creates a notifier backed by fsnotify
func NewFSNotifier() (Notifier, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &fsNotifier{w: w}, nil
}

func (n *fsNotifier) Add(path string) error         { return n.w.Add(path) }
func (n *fsNotifier) Events() <-chan fsnotify.Event { return n.w.Events }
func (n *fsNotifier) Errors() <-chan error          { return n.w.Errors }
func (n *fsNotifier) Close() error                  { return n.w.Close() }

// triggers reports whether ev should refresh the listing. Any change
// inside the directory does, whatever its kind.
func triggers(ev fsnotify.Event) bool {
	return ev.Op != 0
}

// removesTarget reports whether ev removed or renamed the watched directory
// itself rather than one of its entries.
func removesTarget(ev fsnotify.Event, target string) bool {
	if target == "" || !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return filepath.Clean(ev.Name) == filepath.Clean(target)
}

func opLabel(ev fsnotify.Event) string {
	switch {
	case ev.Has(fsnotify.Create):
		return "create"
	case ev.Has(fsnotify.Remove):
		return "remove"
	case ev.Has(fsnotify.Rename):
		return "rename"
	case ev.Has(fsnotify.Write):
		return "write"
	case ev.Has(fsnotify.Chmod):
		return "chmod"
	default:
		return "other"
	}
}
