package settings

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/julianstephens/steady/internal/app/apptest"
	"github.com/julianstephens/steady/internal/cli"
	"github.com/julianstephens/steady/internal/models"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	var out bytes.Buffer
	return &cli.Context{App: apptest.SignedIn(t, "user-1"), Out: &out}, &out
}

func TestSettingsCmd_List(t *testing.T) {
	ctx, out := setupTestContext(t)

	cmd := &SettingsCmd{List: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings list failed: %v", err)
	}
	if !strings.Contains(out.String(), "system") {
		t.Errorf("expected default theme in output, got %q", out.String())
	}
	if !strings.Contains(out.String(), "user-1") {
		t.Errorf("expected synced user in output, got %q", out.String())
	}
}

func TestSettingsCmd_UpdateFlags(t *testing.T) {
	ctx, _ := setupTestContext(t)

	off := false
	theme := "dark"
	cmd := &SettingsCmd{Journal: &off, Theme: &theme}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}

	got := ctx.App.Settings.Current()
	if got.JournalEnabled {
		t.Error("expected journal to be disabled")
	}
	if got.ThemePreference != models.ThemeDark {
		t.Errorf("expected dark theme, got %s", got.ThemePreference)
	}
	if !got.Top3TodosEnabled {
		t.Error("untouched field should keep its value")
	}

	ctx.App.Settings.Wait()
	remote, err := ctx.App.Remote.GetUserSettings(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("failed to read remote settings: %v", err)
	}
	if remote == nil || !remote.Equal(got) {
		t.Errorf("expected remote %+v, got %+v", got, remote)
	}
}

func TestSettingsCmd_NoChanges(t *testing.T) {
	ctx, out := setupTestContext(t)
	before := ctx.App.Settings.Current()

	cmd := &SettingsCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings run failed: %v", err)
	}
	if !strings.Contains(out.String(), "No changes specified") {
		t.Errorf("unexpected output %q", out.String())
	}
	if ctx.App.Settings.Current() != before {
		t.Error("settings changed without flags")
	}
}

func TestDiff(t *testing.T) {
	current := models.DefaultSettings()

	same := &settingsForm{Top3: current.Top3TodosEnabled, Journal: current.JournalEnabled, Theme: current.ThemePreference}
	if p := diff(current, same); !p.Empty() {
		t.Errorf("expected empty patch, got %+v", p)
	}

	changed := &settingsForm{Top3: !current.Top3TodosEnabled, Journal: current.JournalEnabled, Theme: models.ThemeLight}
	p := diff(current, changed)
	if p.Top3TodosEnabled == nil || *p.Top3TodosEnabled == current.Top3TodosEnabled {
		t.Error("expected top-3 change in patch")
	}
	if p.JournalEnabled != nil {
		t.Error("journal should not be in patch")
	}
	if p.ThemePreference == nil || *p.ThemePreference != models.ThemeLight {
		t.Error("expected light theme in patch")
	}
}
