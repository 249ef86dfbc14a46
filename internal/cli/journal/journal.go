package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/steady/internal/cli"
	"github.com/julianstephens/steady/internal/journal"
	"github.com/julianstephens/steady/internal/models"
)

type JournalShowCmd struct {
	Day string `arg:"" optional:"" help:"Day to show (today, yesterday, -N or YYYY-MM-DD)." default:"today"`
}

func (c *JournalShowCmd) Run(ctx *cli.Context) error {
	out := ctx.Writer()
	day, err := ctx.Day(c.Day)
	if err != nil {
		return err
	}
	entry, err := ctx.App.Journal.Get(context.Background(), day)
	if err != nil {
		return fmt.Errorf("failed to load journal: %w", err)
	}
	if !ctx.App.Settings.Current().JournalEnabled {
		fmt.Fprintln(out, cli.Warn("The journal card is hidden. Enable it with 'steady settings --journal'."))
	}
	if entry == nil {
		fmt.Fprintln(out, cli.Muted("No journal entry for "+day.String()))
		return nil
	}
	fmt.Fprintln(out, cli.FormatJournal(*entry))
	return nil
}

type JournalSaveCmd struct {
	Day       string  `help:"Day to write." default:"today"`
	Win       *string `help:"Today's win."`
	Tension   *string `help:"What felt tense."`
	Gratitude *string `help:"Something you're grateful for."`
	Edit      bool    `help:"Write the entry in an interactive form."`
}

func (c *JournalSaveCmd) Run(ctx *cli.Context) error {
	day, err := ctx.Day(c.Day)
	if err != nil {
		return err
	}
	svc := ctx.App.Journal
	existing, err := svc.Get(context.Background(), day)
	if err != nil {
		return fmt.Errorf("failed to load journal: %w", err)
	}

	var fields models.JournalFields
	if existing != nil {
		fields = existing.Fields()
	}
	if c.Win != nil {
		fields.Win = *c.Win
	}
	if c.Tension != nil {
		fields.Tension = *c.Tension
	}
	if c.Gratitude != nil {
		fields.Gratitude = *c.Gratitude
	}
	if c.Edit {
		if err := newForm(&fields).Run(); err != nil {
			return fmt.Errorf("journal form: %w", err)
		}
	} else if c.Win == nil && c.Tension == nil && c.Gratitude == nil {
		return errors.New("nothing to save; pass --win, --tension, --gratitude or --edit")
	}

	entry, err := svc.Save(context.Background(), day, fields)
	if err != nil {
		return fmt.Errorf("failed to save journal: %w", err)
	}
	fmt.Fprintln(ctx.Writer(), cli.OK("Journal saved"))
	fmt.Fprintln(ctx.Writer(), cli.FormatJournal(entry))
	return nil
}

func newForm(f *models.JournalFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Win").
				Value(&f.Win),
			huh.NewText().
				Title("Tension").
				Value(&f.Tension),
			huh.NewText().
				Title("Gratitude").
				Value(&f.Gratitude),
		),
	).WithTheme(huh.ThemeDracula())
}

type JournalDeleteCmd struct {
	Day string `arg:"" optional:"" help:"Day to delete." default:"today"`
}

func (c *JournalDeleteCmd) Run(ctx *cli.Context) error {
	day, err := ctx.Day(c.Day)
	if err != nil {
		return err
	}
	if err := ctx.App.Journal.Delete(context.Background(), day); err != nil {
		if errors.Is(err, journal.ErrNoEntry) {
			return fmt.Errorf("no journal entry for %s", day)
		}
		return fmt.Errorf("failed to delete journal: %w", err)
	}
	fmt.Fprintln(ctx.Writer(), cli.OK("Deleted journal entry for "+day.String()))
	return nil
}

type JournalRecentCmd struct {
	Days int `help:"How many days back to list." default:"${history_days}"`
}

func (c *JournalRecentCmd) Run(ctx *cli.Context) error {
	entries, err := ctx.App.Journal.Recent(context.Background(), c.Days)
	if err != nil {
		return fmt.Errorf("failed to load journal: %w", err)
	}
	out := ctx.Writer()
	if len(entries) == 0 {
		fmt.Fprintln(out, cli.Muted(fmt.Sprintf("No journal entries in the last %d days", c.Days)))
		return nil
	}
	for i, e := range entries {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, cli.FormatJournal(e))
	}
	return nil
}
