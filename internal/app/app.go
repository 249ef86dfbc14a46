// Package app wires the sync layer together for one process.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/steady/internal/config"
	"github.com/julianstephens/steady/internal/events"
	"github.com/julianstephens/steady/internal/health"
	"github.com/julianstephens/steady/internal/health/bridge"
	"github.com/julianstephens/steady/internal/journal"
	"github.com/julianstephens/steady/internal/keyring"
	"github.com/julianstephens/steady/internal/localstore"
	"github.com/julianstephens/steady/internal/logger"
	"github.com/julianstephens/steady/internal/mutation"
	"github.com/julianstephens/steady/internal/querycache"
	"github.com/julianstephens/steady/internal/rollover"
	"github.com/julianstephens/steady/internal/session"
	"github.com/julianstephens/steady/internal/settings"
	"github.com/julianstephens/steady/internal/storage"
	"github.com/julianstephens/steady/internal/storage/postgres"
	"github.com/julianstephens/steady/internal/storage/sqlite"
	"github.com/julianstephens/steady/internal/todos"
	"github.com/julianstephens/steady/internal/utils"
)

type App struct {
	Config    config.Config
	Clock     func() time.Time
	Local     localstore.Store
	Remote    storage.Provider
	Cache     *querycache.Cache
	Events    *events.Emitter
	Settings  *settings.Manager
	Session   *session.Session
	Todos     *todos.Service
	Journal   *journal.Service
	Health    *health.Connector
	Histories *health.Histories
	Rollover  *rollover.Job
}

type options struct {
	local  localstore.Store
	remote storage.Provider
	source health.Source
	sink   events.Sink
	clock  func() time.Time
}

type Option func(*options)

func WithLocalStore(s localstore.Store) Option { return func(o *options) { o.local = s } }

func WithRemote(p storage.Provider) Option { return func(o *options) { o.remote = p } }

func WithHealthSource(s health.Source) Option { return func(o *options) { o.source = s } }

func WithSink(s events.Sink) Option { return func(o *options) { o.sink = s } }

func WithClock(now func() time.Time) Option { return func(o *options) { o.clock = now } }

// New opens the stores and constructs every component. The caller must Close
// the returned App.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	o := options{sink: events.LogSink{}, clock: utils.ClockIn(cfg.Timezone)}
	for _, opt := range opts {
		opt(&o)
	}

	local := o.local
	if local == nil {
		var err error
		local, err = localstore.Open(cfg.LocalBackend, cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open local store: %w", err)
		}
	}

	remote := o.remote
	if remote == nil {
		var err error
		conn, fromKeyring := ResolveRemote(cfg)
		remote, err = OpenRemote(conn, fromKeyring)
		if err != nil {
			local.Close()
			return nil, err
		}
	}
	if err := remote.Init(ctx); err != nil {
		local.Close()
		remote.Close()
		return nil, fmt.Errorf("failed to initialize %s: %w", remote.Describe(), err)
	}

	source := o.source
	if source == nil && cfg.HealthURL != "" {
		source = bridge.New(cfg.HealthURL)
	}

	cache := querycache.New(querycache.WithClock(o.clock))
	emitter := events.NewEmitter(o.sink)
	mgr := settings.NewManager(local, remote, emitter)
	mgr.Load()
	sess := session.New(local, mgr, cache)
	coord := mutation.New(cache)
	connector := health.NewConnector(source, cache, emitter)

	var job *rollover.Job
	loc, err := utils.LoadLocation(cfg.Timezone)
	if err == nil {
		job, err = rollover.New(cache, connector, cfg.RolloverSpec, cron.WithLocation(loc))
	}
	if err != nil {
		local.Close()
		remote.Close()
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Clock:    o.clock,
		Local:    local,
		Remote:   remote,
		Cache:    cache,
		Events:   emitter,
		Settings: mgr,
		Session:  sess,
		Todos: todos.NewService(remote, coord, emitter, sess,
			todos.WithClock(o.clock), todos.WithStaleAfter(cfg.TodoStaleAfter)),
		Journal: journal.NewService(remote, coord, emitter, sess,
			journal.WithClock(o.clock), journal.WithStaleAfter(cfg.TodoStaleAfter)),
		Health:    connector,
		Histories: health.NewHistories(healthRegistry(source), cache, connector, cfg.HealthStaleAfter),
		Rollover:  job,
	}
	return a, nil
}

func healthRegistry(source health.Source) *health.Registry {
	if source == nil {
		return health.EmptyRegistry()
	}
	return health.DefaultRegistry(source)
}

// Resume runs the settings merge for a restored session. Failures are
// logged; the local settings stay in effect.
func (a *App) Resume(ctx context.Context) {
	if _, err := a.Session.Resume(ctx); err != nil {
		logger.Warn("Settings merge deferred", "error", err)
	}
}

// Close waits for background work and releases the stores.
func (a *App) Close() error {
	a.Settings.Wait()
	a.Events.Flush()
	return errors.Join(a.Remote.Close(), a.Local.Close())
}

// ResolveRemote picks the record store: the configured value, then the
// keyring, then the embedded sqlite database in the data directory.
func ResolveRemote(cfg config.Config) (conn string, fromKeyring bool) {
	if cfg.Remote != "" {
		return cfg.Remote, false
	}
	if conn := keyring.Lookup(keyring.AccountRemote, ""); conn != "" {
		return conn, true
	}
	return cfg.DefaultRemotePath(), false
}

// OpenRemote constructs the provider for conn without connecting.
// PostgreSQL connection strings given on the command line or in config must
// not embed a password; the keyring may hold one.
func OpenRemote(conn string, fromKeyring bool) (storage.Provider, error) {
	cfg := config.Config{Remote: conn}
	if !cfg.RemoteIsPostgres() {
		return sqlite.NewStore(conn), nil
	}
	if err := postgres.ValidateConnString(conn); err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			if fromKeyring {
				return postgres.New(conn), nil
			}
			return nil, fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed; use the OS keyring, PGPASSWORD or .pgpass instead")
		}
		return nil, err
	}
	return postgres.New(conn), nil
}
