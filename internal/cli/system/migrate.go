package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/steady/internal/cli"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	runner, err := schemaRunner(ctx.App.Remote)
	if err != nil {
		return err
	}

	count, err := runner.ApplyMigrations(context.Background())
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	out := ctx.Writer()
	if count == 0 {
		version, err := runner.GetCurrentVersion()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "No migrations to apply. Database is up to date (version %d).\n", version)
	} else {
		fmt.Fprintf(out, "Successfully applied %d migration(s).\n", count)
	}
	return nil
}
