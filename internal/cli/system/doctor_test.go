package system

import (
	"bytes"
	"database/sql"
	"strings"
	"testing"

	"github.com/julianstephens/steady/internal/app/apptest"
	"github.com/julianstephens/steady/internal/cli"
	"github.com/julianstephens/steady/internal/storage/sqlite"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	var out bytes.Buffer
	return &cli.Context{App: apptest.SignedIn(t, "user-1"), Out: &out}, &out
}

func remoteDB(t *testing.T, ctx *cli.Context) *sql.DB {
	store, ok := ctx.App.Remote.(*sqlite.Store)
	if !ok {
		t.Fatal("expected sqlite record store")
	}
	db := store.GetDB()
	if db == nil {
		t.Fatal("database connection is nil")
	}
	return db
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v\n%s", err, out.String())
	}
	// No health source is configured in tests; that is a warning only.
	if !strings.Contains(out.String(), "Health source: WARNING") {
		t.Errorf("expected health source warning, got:\n%s", out.String())
	}
}

func TestDoctorCmd_BrokenSchema(t *testing.T) {
	ctx, _ := setupTestContext(t)
	db := remoteDB(t, ctx)

	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to delete schema version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (999)"); err != nil {
		t.Fatalf("failed to insert corrupted schema version: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail with corrupted schema")
	}
}

func TestCheckMigrationsComplete_Incomplete(t *testing.T) {
	ctx, _ := setupTestContext(t)
	db := remoteDB(t, ctx)

	if err := checkMigrationsComplete(ctx); err != nil {
		t.Fatalf("fresh database should be fully migrated: %v", err)
	}
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to delete schema version: %v", err)
	}
	if err := checkMigrationsComplete(ctx); err == nil {
		t.Error("checkMigrationsComplete should fail with incomplete migrations")
	}
}

func TestCheckTodoIntegrity(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if _, err := ctx.App.Todos.Save(t.Context(), "2025-03-10", 1, "stretch"); err != nil {
		t.Fatalf("failed to save todo: %v", err)
	}
	if err := checkTodoIntegrity(ctx); err != nil {
		t.Errorf("todo integrity check failed: %v", err)
	}
}

func TestCheckLocalStore(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := checkLocalStore(ctx); err != nil {
		t.Errorf("local store check failed: %v", err)
	}
	if _, ok, _ := ctx.App.Local.Get(probeKey); ok {
		t.Error("probe key should be removed")
	}
}

func TestCheckClockTimezone(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := checkClockTimezone(ctx); err != nil {
		t.Errorf("clock/timezone check failed: %v", err)
	}

	ctx.App.Config.Timezone = "Mars/Olympus"
	if err := checkClockTimezone(ctx); err == nil {
		t.Error("expected invalid timezone to fail")
	}
}

func TestMigrateCmd_UpToDate(t *testing.T) {
	ctx, out := setupTestContext(t)
	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out.String(), "up to date") {
		t.Errorf("unexpected output %q", out.String())
	}
}
