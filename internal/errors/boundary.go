package errors

import (
	"fmt"
	"runtime/debug"

	"github.com/julianstephens/steady/internal/logger"
)

// Contain runs fn inside a failure boundary. A returned error or a panic is
// logged under name and never reaches the caller.
func Contain(name string, fn func() error) (failed bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered from panic", "op", name, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			failed = true
		}
	}()

	if err := fn(); err != nil {
		logger.Warn("Background operation failed", "op", name, "error", err)
		return true
	}
	return false
}

// Go runs fn on its own goroutine inside a failure boundary. The returned
// channel is closed once fn has finished, for callers that want to wait.
func Go(name string, fn func() error) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		Contain(name, fn)
	}()
	return done
}
