// Package health bridges the permission-gated device health source into the
// query cache: a connector tracks authorization and loads today's snapshot,
// and a registry of descriptors serves metric histories.
package health

import (
	"context"
	"errors"

	"github.com/julianstephens/steady/internal/models"
)

var (
	ErrUnavailable   = errors.New("health data is not available on this device")
	ErrNotAuthorized = errors.New("health data access has not been granted")
	ErrUnknownMetric = errors.New("unknown health metric")
)

// Source is the device health provider.
type Source interface {
	IsAvailable() bool
	CheckAuthorization(ctx context.Context) (bool, error)
	// RequestPermissions may prompt the user. Already decided metric types
	// are not prompted again.
	RequestPermissions(ctx context.Context) (bool, error)
	TodayMetrics(ctx context.Context) (models.HealthMetrics, error)
	MetricHistory(ctx context.Context, key models.MetricKey, days int) ([]models.MetricPoint, error)
}

// Status is the authorization state of the health source.
type Status int

const (
	// Unavailable is terminal: the device has no health capability.
	Unavailable Status = iota
	Unauthorized
	Authorized
)

func (s Status) String() string {
	switch s {
	case Unavailable:
		return "unavailable"
	case Unauthorized:
		return "unauthorized"
	case Authorized:
		return "authorized"
	}
	return "unknown"
}
