package system

import (
	"fmt"

	"github.com/julianstephens/steady/internal/cli"
	"github.com/julianstephens/steady/internal/config"
	"github.com/julianstephens/steady/internal/constants"
)

type InitCmd struct {
	Force bool `help:"Sign out and reset this device's settings to the defaults."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	out := ctx.Writer()
	a := ctx.App

	if c.Force {
		if err := a.Session.SignOut(); err != nil {
			return err
		}
		if err := a.Local.Remove(constants.SettingsStorageKey); err != nil {
			return fmt.Errorf("failed to reset settings: %w", err)
		}
		a.Settings.Load()
		fmt.Fprintln(out, "Reset device settings and signed out")
	}

	path, created, err := config.WriteDefault(a.Config.DataDir)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(out, "Wrote default config to: %s\n", path)
	} else {
		fmt.Fprintf(out, "Using existing config: %s\n", path)
	}
	fmt.Fprintf(out, "Initialized steady storage at: %s\n", a.Config.DataDir)
	fmt.Fprintf(out, "  Local backend: %s\n", a.Config.LocalBackend)
	fmt.Fprintf(out, "  Record store:  %s\n", a.Remote.Describe())
	return nil
}
