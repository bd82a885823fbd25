// Package diag provides a severity-tagged diagnostic event stream.
//
// Scan and write-back failures in this system are almost never fatal: a note
// that fails to parse is skipped, a missing write-back target is a warning.
// Components report those conditions here instead of writing to a logger
// directly, and whoever owns the process (CLI, daemon, dashboard) decides
// where they go.
package diag

import (
	"fmt"
	"sync"
)

// Severity classifies a diagnostic event.
type Severity int

const (
	Debug Severity = iota
	Info
	Warn
)

func (s Severity) String() string {
	switch s {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	default:
		return "unknown"
	}
}

// Event is a single diagnostic. Path is the note the event concerns, when
// there is one.
type Event struct {
	Severity Severity
	Path     string
	Message  string
}

func (e Event) String() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Severity, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Severity, e.Message)
}

// Hub fans diagnostic events out to subscribers, synchronously and in
// registration order. A nil *Hub is valid and drops everything, so
// components can run without diagnostics wired up.
type Hub struct {
	mu      sync.Mutex
	subs    []subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func(Event)
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers fn for all future events. The returned function
// removes the subscription.
func (h *Hub) Subscribe(fn func(Event)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextSub
	h.nextSub++
	h.subs = append(h.subs, subscriber{id: id, fn: fn})

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, sub := range h.subs {
			if sub.id == id {
				h.subs = append(h.subs[:i], h.subs[i+1:]...)
				return
			}
		}
	}
}

// Report publishes an event.
func (h *Hub) Report(sev Severity, path, format string, args ...any) {
	if h == nil {
		return
	}

	ev := Event{
		Severity: sev,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
	}

	h.mu.Lock()
	subs := make([]subscriber, len(h.subs))
	copy(subs, h.subs)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}

// Debugf reports a debug-level event.
func (h *Hub) Debugf(path, format string, args ...any) {
	h.Report(Debug, path, format, args...)
}

// Infof reports an info-level event.
func (h *Hub) Infof(path, format string, args ...any) {
	h.Report(Info, path, format, args...)
}

// Warnf reports a warn-level event.
func (h *Hub) Warnf(path, format string, args ...any) {
	h.Report(Warn, path, format, args...)
}
