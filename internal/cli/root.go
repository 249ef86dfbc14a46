package cli

import (
	"io"
	"os"

	"github.com/julianstephens/steady/internal/app"
	"github.com/julianstephens/steady/internal/models"
	"github.com/julianstephens/steady/internal/utils"
)

type Context struct {
	App *app.App
	// Out receives command output. Nil means stdout.
	Out io.Writer
}

// Writer returns where command output should go.
func (c *Context) Writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Day resolves a day argument ("today", "yesterday", "-2", "2025-01-31")
// against the app clock.
func (c *Context) Day(arg string) (models.Day, error) {
	return utils.ResolveDay(arg, c.App.Clock())
}
