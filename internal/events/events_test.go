package events

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/julianstephens/steady/internal/logger"
)

type recordingSink struct {
	mu     sync.Mutex
	names  []string
	props  []Props
	err    error
	panics bool
}

func (r *recordingSink) Track(name string, props Props) error {
	if r.panics {
		panic("sink down")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
	r.props = append(r.props, props)
	return r.err
}

func TestEmitterDelivers(t *testing.T) {
	sink := &recordingSink{}
	e := NewEmitter(sink)

	props := Props{"position": 2}
	e.Track("todo_created", props)
	props["position"] = 3
	e.Flush()

	assert.Equal(t, []string{"todo_created"}, sink.names)
	assert.Equal(t, 2, sink.props[0]["position"], "props are copied at call time")
}

func TestEmitterSwallowsFailures(t *testing.T) {
	for name, sink := range map[string]*recordingSink{
		"error": {err: errors.New("rate limited")},
		"panic": {panics: true},
	} {
		t.Run(name, func(t *testing.T) {
			e := NewEmitter(sink)
			assert.NotPanics(t, func() {
				e.Track("journal_saved", nil)
				e.Flush()
			})
		})
	}
}

func TestNilEmitterAndSink(t *testing.T) {
	var e *Emitter
	assert.NotPanics(t, func() {
		e.Track("x", nil)
		e.Flush()
		NewEmitter(nil).Track("x", nil)
	})
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(&bytes.Buffer{})

	assert.NoError(t, LogSink{}.Track("todo_completed", Props{"position": 1, "date": "2024-03-01"}))
	out := buf.String()
	assert.Contains(t, out, "todo_completed")
	assert.Contains(t, out, "date=2024-03-01")
}
