package health

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/steady/internal/app"
	"github.com/julianstephens/steady/internal/app/apptest"
	"github.com/julianstephens/steady/internal/cli"
	"github.com/julianstephens/steady/internal/health"
	"github.com/julianstephens/steady/internal/models"
)

type stubSource struct {
	available bool
	granted   bool
	grant     bool
}

func (s *stubSource) IsAvailable() bool { return s.available }

func (s *stubSource) CheckAuthorization(context.Context) (bool, error) { return s.granted, nil }

func (s *stubSource) RequestPermissions(context.Context) (bool, error) {
	if s.grant {
		s.granted = true
	}
	return s.grant, nil
}

func (s *stubSource) TodayMetrics(context.Context) (models.HealthMetrics, error) {
	return models.HealthMetrics{Steps: models.Float(8421), HRV: models.Float(48)}, nil
}

func (s *stubSource) MetricHistory(_ context.Context, key models.MetricKey, days int) ([]models.MetricPoint, error) {
	return []models.MetricPoint{
		{Date: "2025-03-09", Value: 0.215},
		{Date: "2025-03-08", Value: 0.22},
	}, nil
}

func setup(t *testing.T, src health.Source) (*cli.Context, *bytes.Buffer) {
	var out bytes.Buffer
	a := apptest.SignedIn(t, "user-1", app.WithHealthSource(src))
	return &cli.Context{App: a, Out: &out}, &out
}

func TestHealthStatusUnavailable(t *testing.T) {
	ctx, out := setup(t, &stubSource{})
	require.NoError(t, (&HealthStatusCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "unavailable")

	assert.ErrorIs(t, (&HealthConnectCmd{}).Run(ctx), health.ErrUnavailable)
	assert.ErrorIs(t, (&HealthPermissionsCmd{}).Run(ctx), health.ErrUnavailable)
}

func TestHealthConnectDenied(t *testing.T) {
	ctx, out := setup(t, &stubSource{available: true})
	assert.ErrorIs(t, (&HealthConnectCmd{}).Run(ctx), health.ErrNotAuthorized)
	assert.Contains(t, out.String(), "not granted")
	assert.True(t, ctx.App.Health.State().AuthFailed)
}

func TestHealthConnectGranted(t *testing.T) {
	ctx, out := setup(t, &stubSource{available: true, grant: true})
	require.NoError(t, (&HealthConnectCmd{}).Run(ctx))

	assert.Contains(t, out.String(), "8421.0")
	assert.Contains(t, out.String(), "metrics have no data")
	assert.Equal(t, health.Authorized, ctx.App.Health.Status())
}

func TestHealthHistory(t *testing.T) {
	ctx, out := setup(t, &stubSource{available: true, granted: true})
	require.NoError(t, (&HealthHistoryCmd{Metric: "bodyFatPercentage", Days: 7}).Run(ctx))

	listing := out.String()
	assert.Contains(t, listing, "21.5")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("2025-03-08")), bytes.Index(out.Bytes(), []byte("2025-03-09")))
}

func TestHealthHistoryRequiresAuthorization(t *testing.T) {
	ctx, _ := setup(t, &stubSource{available: true})
	assert.ErrorIs(t, (&HealthHistoryCmd{Metric: "steps", Days: 7}).Run(ctx), health.ErrNotAuthorized)
}
