package health

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/steady/internal/cli"
	"github.com/julianstephens/steady/internal/health"
	"github.com/julianstephens/steady/internal/models"
)

type HealthStatusCmd struct{}

func (c *HealthStatusCmd) Run(ctx *cli.Context) error {
	conn := ctx.App.Health
	conn.Start(context.Background())
	render(ctx, conn.State())
	return nil
}

type HealthConnectCmd struct{}

func (c *HealthConnectCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	conn := ctx.App.Health
	if conn.Start(bg) == health.Unavailable {
		return health.ErrUnavailable
	}
	if !conn.Connect(bg) {
		render(ctx, conn.State())
		return health.ErrNotAuthorized
	}
	fmt.Fprintln(ctx.Writer(), cli.OK("Health data connected"))
	render(ctx, conn.State())
	return nil
}

// HealthPermissionsCmd re-prompts for metric types added since the first grant.
type HealthPermissionsCmd struct{}

func (c *HealthPermissionsCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	conn := ctx.App.Health
	conn.Start(bg)
	if err := conn.RequestMorePermissions(bg); err != nil {
		return err
	}
	render(ctx, conn.State())
	return nil
}

type HealthHistoryCmd struct {
	Metric string `arg:"" help:"Metric key." enum:"steps,weight,restingHeartRate,bodyFatPercentage,hrv"`
	Days   int    `help:"Number of days to fetch." default:"${history_days}"`
}

func (c *HealthHistoryCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if ctx.App.Health.Start(bg) == health.Unauthorized {
		return fmt.Errorf("%w; run 'steady health connect' first", health.ErrNotAuthorized)
	}
	points, err := ctx.App.Histories.Get(bg, models.MetricKey(c.Metric), c.Days)
	if err != nil {
		return err
	}
	out := ctx.Writer()
	fmt.Fprintln(out, cli.Header(fmt.Sprintf("%s, last %d days", c.Metric, c.Days)))
	if len(points) == 0 {
		fmt.Fprintln(out, cli.Muted("  No data"))
		return nil
	}
	for _, p := range points {
		fmt.Fprintln(out, cli.Field(p.Date.String(), models.FormatMetric(&p.Value)))
	}
	return nil
}

func render(ctx *cli.Context, st health.State) {
	out := ctx.Writer()
	fmt.Fprintln(out, cli.Header("Health"))
	fmt.Fprintln(out, cli.Field("Status", st.Status))
	if st.AuthFailed {
		fmt.Fprintln(out, cli.Warn("Access was not granted. Allow it in your device settings, then retry."))
	}
	if st.Metrics == nil {
		return
	}
	fmt.Fprintln(out, cli.Muted("  Loaded "+st.LoadedAt.Format(time.Kitchen)))
	values := st.Metrics.Values()
	for _, key := range metricOrder {
		fmt.Fprintln(out, cli.Field(string(key), models.FormatMetric(values[key])))
	}
	if len(st.Missing) > 0 {
		fmt.Fprintln(out, cli.Warn(fmt.Sprintf("%d metrics have no data; grant more types with 'steady health permissions'", len(st.Missing))))
	}
}

var metricOrder = []models.MetricKey{
	models.MetricSteps,
	models.MetricExerciseMinutes,
	models.MetricWorkoutsThisWeek,
	models.MetricTimeInDaylight,
	models.MetricRestingHeartRate,
	models.MetricHRV,
	models.MetricWeight,
	models.MetricBodyFatPercentage,
	models.MetricLeanBodyMass,
	models.MetricBodyMassIndex,
}
