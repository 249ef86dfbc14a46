// Package events delivers analytics events fire-and-forget. Delivery never
// blocks the caller and a failing sink never reaches the caller either.
package events

import (
	"sort"
	"sync"

	"github.com/julianstephens/steady/internal/errors"
	"github.com/julianstephens/steady/internal/instrument"
	"github.com/julianstephens/steady/internal/logger"
)

// Props is a flat property map attached to an event.
type Props map[string]any

// Sink receives events. Implementations may fail or panic.
type Sink interface {
	Track(name string, props Props) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(name string, props Props) error

func (f SinkFunc) Track(name string, props Props) error { return f(name, props) }

// Emitter dispatches each event to its sink on a separate goroutine inside
// a failure boundary.
type Emitter struct {
	sink Sink
	wg   sync.WaitGroup
}

// NewEmitter wraps sink. A nil sink drops every event.
func NewEmitter(sink Sink) *Emitter {
	return &Emitter{sink: sink}
}

// Track queues name for delivery and returns immediately.
func (e *Emitter) Track(name string, props Props) {
	if e == nil || e.sink == nil {
		return
	}
	copied := make(Props, len(props))
	for k, v := range props {
		copied[k] = v
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		failed := errors.Contain("events."+name, func() error {
			return e.sink.Track(name, copied)
		})
		if failed {
			instrument.Event("failed")
		} else {
			instrument.Event("delivered")
		}
	}()
}

// Flush waits for every queued event to be delivered or dropped.
func (e *Emitter) Flush() {
	if e == nil {
		return
	}
	e.wg.Wait()
}

// LogSink writes events to the debug log.
type LogSink struct{}

func (LogSink) Track(name string, props Props) error {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	keyvals := []interface{}{"event", name}
	for _, k := range keys {
		keyvals = append(keyvals, k, props[k])
	}
	logger.Debug("Analytics event", keyvals...)
	return nil
}
