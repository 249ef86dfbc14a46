package settings

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/steady/internal/cli"
	"github.com/julianstephens/steady/internal/models"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`
	Edit bool `help:"Edit settings in an interactive form."`

	Top3    *bool   `help:"Show the top-3 daily todos card."`
	Journal *bool   `help:"Show the daily journal card."`
	Theme   *string `help:"Theme preference (light, dark, system)." enum:"light,dark,system"`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	out := ctx.Writer()
	mgr := ctx.App.Settings

	if c.List {
		s := mgr.Current()
		fmt.Fprintln(out, cli.Header("Current Settings:"))
		fmt.Fprintln(out, cli.Field("Top-3 Todos Enabled", s.Top3TodosEnabled))
		fmt.Fprintln(out, cli.Field("Journal Enabled", s.JournalEnabled))
		fmt.Fprintln(out, cli.Field("Theme", s.ThemePreference))
		if user := mgr.LastSyncedUser(); user != "" {
			fmt.Fprintln(out, cli.Muted("\n  Synced for "+user))
		}
		return nil
	}

	patch := models.PatchFromFlags(c.Top3, c.Journal, c.Theme)
	if c.Edit {
		var err error
		if patch, err = runForm(mgr.Current()); err != nil {
			return err
		}
	}

	if patch.Empty() {
		fmt.Fprintln(out, "No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}
	if _, err := mgr.Update(context.Background(), patch); err != nil {
		return err
	}
	fmt.Fprintln(out, cli.OK("Settings updated successfully."))
	return nil
}

// settingsForm holds the editable values bound to the huh form.
type settingsForm struct {
	Top3    bool
	Journal bool
	Theme   models.Theme
}

func newForm(fm *settingsForm) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Top-3 daily todos").
				Value(&fm.Top3),
			huh.NewConfirm().
				Title("Daily journal").
				Value(&fm.Journal),
			huh.NewSelect[models.Theme]().
				Title("Theme").
				Options(
					huh.NewOption("System", models.ThemeSystem),
					huh.NewOption("Light", models.ThemeLight),
					huh.NewOption("Dark", models.ThemeDark),
				).
				Value(&fm.Theme),
		),
	).WithTheme(huh.ThemeDracula())
}

func runForm(current models.Settings) (models.SettingsPatch, error) {
	fm := &settingsForm{
		Top3:    current.Top3TodosEnabled,
		Journal: current.JournalEnabled,
		Theme:   current.ThemePreference,
	}
	if err := newForm(fm).Run(); err != nil {
		return models.SettingsPatch{}, fmt.Errorf("settings form: %w", err)
	}
	return diff(current, fm), nil
}

// diff keeps only the fields the form changed.
func diff(current models.Settings, fm *settingsForm) models.SettingsPatch {
	var p models.SettingsPatch
	if fm.Top3 != current.Top3TodosEnabled {
		p.Top3TodosEnabled = &fm.Top3
	}
	if fm.Journal != current.JournalEnabled {
		p.JournalEnabled = &fm.Journal
	}
	if fm.Theme != current.ThemePreference {
		p.ThemePreference = &fm.Theme
	}
	return p
}
