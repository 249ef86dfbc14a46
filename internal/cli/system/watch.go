package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/steady/internal/cli"
	"github.com/julianstephens/steady/internal/errors"
	"github.com/julianstephens/steady/internal/logger"
)

// WatchCmd keeps the process alive so cached day-scoped data rolls over at
// midnight and health metrics are refreshed.
type WatchCmd struct {
	For time.Duration `help:"Stop after this long. Zero runs until interrupted."`
}

func (cmd *WatchCmd) Run(ctx *cli.Context) error {
	a := ctx.App
	release, err := acquireWatchLock(a.Config.DataDir)
	if err != nil {
		return err
	}
	defer release()

	bg, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cmd.For > 0 {
		var cancel context.CancelFunc
		bg, cancel = context.WithTimeout(bg, cmd.For)
		defer cancel()
	}

	started := errors.Go("watch.health", func() error {
		status := a.Health.Start(bg)
		logger.Info("Health connector started", "status", status)
		return nil
	})
	a.Rollover.Start()
	logger.Info("Watching", "rollover", a.Config.RolloverSpec)
	fmt.Fprintln(ctx.Writer(), "Watching. Press Ctrl+C to stop.")

	<-bg.Done()
	a.Rollover.Stop()
	<-started
	fmt.Fprintln(ctx.Writer(), "Stopped")
	// Interrupted rather than timed out.
	if bg.Err() == context.Canceled {
		return context.Canceled
	}
	return nil
}
