package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/steady/internal/cli"
	"github.com/julianstephens/steady/internal/session"
	"github.com/julianstephens/steady/internal/settings"
)

// LoginCmd signs in and reconciles settings with the user's remote record.
type LoginCmd struct {
	User string `arg:"" help:"User id to sign in as."`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	out := ctx.Writer()
	result, err := ctx.App.Session.SignIn(context.Background(), c.User)
	if err != nil {
		if result == settings.SyncFailed {
			if id, uerr := ctx.App.Session.UserID(); uerr == nil && id == strings.TrimSpace(c.User) {
				fmt.Fprintln(out, cli.OK("Signed in as "+c.User))
				fmt.Fprintln(out, cli.Warn("Settings sync failed; local settings stay in effect until the next sign-in."))
				return nil
			}
		}
		return err
	}

	fmt.Fprintln(out, cli.OK("Signed in as "+c.User))
	switch result {
	case settings.SyncSeeded:
		fmt.Fprintln(out, cli.Muted("  Saved this device's settings to your account."))
	case settings.SyncAdopted:
		fmt.Fprintln(out, cli.Muted("  Applied settings from your account."))
	case settings.SyncUnchanged, settings.SyncSkipped:
		fmt.Fprintln(out, cli.Muted("  Settings already up to date."))
	}
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	if err := ctx.App.Session.SignOut(); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Writer(), cli.OK("Signed out"))
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	user, err := ctx.App.Session.UserID()
	if errors.Is(err, session.ErrNotSignedIn) {
		fmt.Fprintln(ctx.Writer(), cli.Muted("Not signed in"))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Writer(), user)
	return nil
}
