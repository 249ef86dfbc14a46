package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/steady/internal/app"
	"github.com/julianstephens/steady/internal/cli"
	"github.com/julianstephens/steady/internal/cli/auth"
	"github.com/julianstephens/steady/internal/cli/health"
	"github.com/julianstephens/steady/internal/cli/journal"
	"github.com/julianstephens/steady/internal/cli/settings"
	"github.com/julianstephens/steady/internal/cli/system"
	"github.com/julianstephens/steady/internal/cli/todos"
	"github.com/julianstephens/steady/internal/config"
	"github.com/julianstephens/steady/internal/constants"
	"github.com/julianstephens/steady/internal/errors"
	"github.com/julianstephens/steady/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	DataDir string `help:"Directory for local state, logs and the embedded record store." type:"path" env:"STEADY_DATA_DIR"`
	Remote  string `help:"Record store: sqlite path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use the OS keyring, PGPASSWORD or .pgpass instead."`
	Verbose bool   `help:"Log debug output to stderr." short:"v"`

	Init    system.InitCmd    `cmd:"" help:"Initialize steady storage and write a default config."`
	Migrate system.MigrateCmd `cmd:"" help:"Run record store migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Debug   system.DebugCmd   `cmd:"" help:"Debug commands for troubleshooting."`
	Metrics system.MetricsCmd `cmd:"" help:"Print this process's sync counters."`
	Watch   system.WatchCmd   `cmd:"" help:"Run day rollover and health refresh until interrupted."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show a stored secret (masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Delete a stored secret."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability." default:"1"`
	} `cmd:"" help:"Manage credentials in the OS keyring."`

	Login  auth.LoginCmd  `cmd:"" help:"Sign in and sync settings."`
	Logout auth.LogoutCmd `cmd:"" help:"Sign out of this device."`
	Whoami auth.WhoamiCmd `cmd:"" help:"Show the signed-in user."`

	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Todo     struct {
		List   todos.TodoListCmd   `cmd:"" help:"Show the top-3 todos for a day." default:"withargs"`
		Set    todos.TodoSetCmd    `cmd:"" help:"Create or replace the todo in a slot."`
		Toggle todos.TodoToggleCmd `cmd:"" help:"Mark a todo done or not done."`
		Delete todos.TodoDeleteCmd `cmd:"" help:"Delete a todo."`
	} `cmd:"" help:"Manage your top-3 daily todos."`
	Journal struct {
		Show   journal.JournalShowCmd   `cmd:"" help:"Show the journal entry for a day." default:"withargs"`
		Save   journal.JournalSaveCmd   `cmd:"" help:"Write the journal entry for a day."`
		Delete journal.JournalDeleteCmd `cmd:"" help:"Delete the journal entry for a day."`
		Recent journal.JournalRecentCmd `cmd:"" help:"List recent journal entries."`
	} `cmd:"" help:"Manage your daily journal."`
	Health struct {
		Status      health.HealthStatusCmd      `cmd:"" help:"Show health authorization and today's metrics." default:"1"`
		Connect     health.HealthConnectCmd     `cmd:"" help:"Request access to health data."`
		Permissions health.HealthPermissionsCmd `cmd:"" help:"Request access to newly added metric types."`
		History     health.HealthHistoryCmd     `cmd:"" help:"Show a metric's daily history."`
	} `cmd:"" help:"Device health metrics."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Daily habits companion: top-3 todos, journal and health metrics"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":      constants.Version,
			"history_days": strconv.Itoa(constants.DefaultHistoryDays),
		},
	)

	cfg, err := config.Load(CLI.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if CLI.Remote != "" {
		cfg.Remote = CLI.Remote
	}
	cfg.Debug = cfg.Debug || CLI.Verbose

	if err := logger.Init(logger.Config{Debug: cfg.Debug, DataDir: cfg.DataDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	bg := context.Background()
	a, err := app.New(bg, cfg)
	if err != nil {
		errors.Fatal(err)
	}
	a.Resume(bg)

	runErr := ctx.Run(&cli.Context{App: a})
	if err := a.Close(); err != nil {
		logger.Warn("Failed to close stores", "error", err)
	}
	errors.Fatal(runErr)
}
