// Package apptest builds an App over an in-memory local store and a
// temporary sqlite record store.
package apptest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/steady/internal/app"
	"github.com/julianstephens/steady/internal/config"
	"github.com/julianstephens/steady/internal/constants"
	"github.com/julianstephens/steady/internal/events"
	"github.com/julianstephens/steady/internal/localstore"
	"github.com/julianstephens/steady/internal/storage/sqlite"
)

// Now is the fixed instant reported by the default test clock.
var Now = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

// New returns an App closed automatically when the test ends. Later options
// override the defaults.
func New(t testing.TB, opts ...app.Option) *app.App {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{
		DataDir:          dir,
		LocalBackend:     localstore.BackendMemory,
		Timezone:         "UTC",
		TodoStaleAfter:   constants.TodoStaleAfter,
		HealthStaleAfter: constants.HealthStaleAfter,
		RolloverSpec:     constants.DefaultRolloverSpec,
	}
	defaults := []app.Option{
		app.WithLocalStore(localstore.NewMemory()),
		app.WithRemote(sqlite.NewStore(filepath.Join(dir, "remote.db"))),
		app.WithSink(events.SinkFunc(func(string, events.Props) error { return nil })),
		app.WithClock(func() time.Time { return Now }),
	}
	a, err := app.New(context.Background(), cfg, append(defaults, opts...)...)
	if err != nil {
		t.Fatalf("failed to build app: %v", err)
	}
	t.Cleanup(func() {
		if err := a.Close(); err != nil {
			t.Errorf("failed to close app: %v", err)
		}
	})
	return a
}

// SignedIn is New followed by a sign-in as userID.
func SignedIn(t testing.TB, userID string, opts ...app.Option) *app.App {
	t.Helper()
	a := New(t, opts...)
	if _, err := a.Session.SignIn(context.Background(), userID); err != nil {
		t.Fatalf("failed to sign in: %v", err)
	}
	return a
}
