package system

import (
	"github.com/julianstephens/steady/internal/cli"
	"github.com/julianstephens/steady/internal/instrument"
)

// MetricsCmd prints this process's counters in the prometheus text format.
type MetricsCmd struct{}

func (cmd *MetricsCmd) Run(ctx *cli.Context) error {
	return instrument.WriteText(ctx.Writer())
}
