package errors

import (
	"errors"
	"testing"
	"time"
)

func TestContain(t *testing.T) {
	tests := []struct {
		name       string
		fn         func() error
		wantFailed bool
	}{
		{
			name:       "success",
			fn:         func() error { return nil },
			wantFailed: false,
		},
		{
			name:       "returned error",
			fn:         func() error { return errors.New("remote unreachable") },
			wantFailed: true,
		},
		{
			name:       "panic",
			fn:         func() error { panic("sink exploded") },
			wantFailed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contain(tt.name, tt.fn); got != tt.wantFailed {
				t.Errorf("Contain() = %v, want %v", got, tt.wantFailed)
			}
		})
	}
}

func TestGo(t *testing.T) {
	ran := make(chan struct{}, 1)
	done := Go("panicky", func() error {
		ran <- struct{}{}
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Go() did not finish")
	}
	if len(ran) != 1 {
		t.Error("Go() did not run fn")
	}
}
