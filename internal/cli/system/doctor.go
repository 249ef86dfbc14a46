package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/steady/internal/cli"
	"github.com/julianstephens/steady/internal/health"
	"github.com/julianstephens/steady/internal/keyring"
	"github.com/julianstephens/steady/internal/models"
	"github.com/julianstephens/steady/internal/utils"
)

const probeKey = "doctor_probe"

type DoctorCmd struct{}

type check struct {
	name string
	run  func(ctx *cli.Context) error
	// warnOnly checks never fail the run.
	warnOnly bool
	// needsDB checks are skipped when the record store is unreachable.
	needsDB bool
}

var checks = []check{
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Migrations complete", run: checkMigrationsComplete, needsDB: true},
	{name: "Todo integrity", run: checkTodoIntegrity, needsDB: true},
	{name: "Local store", run: checkLocalStore},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "OS keyring", run: checkKeyring, warnOnly: true},
	{name: "Health source", run: checkHealthSource, warnOnly: true},
	{name: "Watcher", run: checkWatcher, warnOnly: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	out := ctx.Writer()
	fmt.Fprintln(out, "Running diagnostics...")
	fmt.Fprintln(out)

	hasError := false
	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		fmt.Fprintln(out, cli.Fail("Database reachable: FAIL"))
		fmt.Fprintf(out, "   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		fmt.Fprintln(out, cli.OK("Database reachable: OK"))
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Fprintf(out, "⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Fprintln(out, cli.OK(c.name+": OK"))
		case c.warnOnly:
			fmt.Fprintln(out, cli.Warn(c.name+": WARNING"))
			fmt.Fprintf(out, "   %v\n", err)
		default:
			fmt.Fprintln(out, cli.Fail(c.name+": FAIL"))
			fmt.Fprintf(out, "   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Fprintln(out)
	if hasError {
		fmt.Fprintln(out, "Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Fprintln(out, "All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	runner, err := schemaRunner(ctx.App.Remote)
	if err != nil {
		return err
	}
	if _, err := runner.GetCurrentVersion(); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	runner, err := schemaRunner(ctx.App.Remote)
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func checkMigrationsComplete(ctx *cli.Context) error {
	runner, err := schemaRunner(ctx.App.Remote)
	if err != nil {
		return err
	}

	currentVersion, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	latestVersion, err := runner.GetLatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}
	if currentVersion < latestVersion {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", currentVersion, latestVersion)
	}
	return nil
}

// checkTodoIntegrity verifies today's todos for the signed-in user occupy
// distinct valid slots.
func checkTodoIntegrity(ctx *cli.Context) error {
	userID, err := ctx.App.Session.UserID()
	if err != nil {
		return nil
	}
	today := models.DayOf(ctx.App.Clock())
	list, err := ctx.App.Remote.ListTodos(context.Background(), userID, today)
	if err != nil {
		return fmt.Errorf("failed to list todos: %w", err)
	}

	seen := make(map[models.TodoPosition]bool)
	for _, t := range list {
		if !t.Position.Valid() {
			return fmt.Errorf("todo %s has invalid position %d", t.ID, t.Position)
		}
		if seen[t.Position] {
			return fmt.Errorf("found duplicate todos in slot %d", t.Position)
		}
		seen[t.Position] = true
	}
	return nil
}

func checkLocalStore(ctx *cli.Context) error {
	local := ctx.App.Local
	stamp := time.Now().UTC().Format(time.RFC3339Nano)
	if err := local.Set(probeKey, stamp); err != nil {
		return fmt.Errorf("failed to write: %w", err)
	}
	got, ok, err := local.Get(probeKey)
	if err != nil {
		return fmt.Errorf("failed to read: %w", err)
	}
	if !ok || got != stamp {
		return fmt.Errorf("read back %q, want %q", got, stamp)
	}
	return local.Remove(probeKey)
}

func checkClockTimezone(ctx *cli.Context) error {
	if !utils.ValidateTimezone(ctx.App.Config.Timezone) {
		return fmt.Errorf("invalid timezone %q", ctx.App.Config.Timezone)
	}

	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkKeyring(*cli.Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}

func checkHealthSource(ctx *cli.Context) error {
	switch ctx.App.Health.Start(context.Background()) {
	case health.Unavailable:
		return fmt.Errorf("no health source configured; set health_url to enable health metrics")
	case health.Unauthorized:
		return fmt.Errorf("health access not granted; run 'steady health connect'")
	}
	return nil
}

func checkWatcher(ctx *cli.Context) error {
	pid, err := runningWatcher(ctx.App.Config.DataDir)
	if err != nil {
		return err
	}
	if pid == 0 {
		return fmt.Errorf("'steady watch' is not running; cached days roll over on the next launch")
	}
	return nil
}
