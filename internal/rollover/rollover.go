// Package rollover marks day-scoped cache entries stale when the calendar
// day changes and refreshes health metrics for the new day.
package rollover

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/steady/internal/constants"
	"github.com/julianstephens/steady/internal/errors"
	"github.com/julianstephens/steady/internal/logger"
	"github.com/julianstephens/steady/internal/querycache"
)

// Refresher reloads health metrics when authorized.
type Refresher interface {
	Refresh(ctx context.Context)
}

var dayKinds = []constants.RecordKind{
	constants.KindDailyTodos,
	constants.KindJournalEntry,
	constants.KindJournalRecent,
	constants.KindHealthToday,
	constants.KindHealthHistory,
}

type Job struct {
	cron      *cron.Cron
	cache     *querycache.Cache
	refresher Refresher
}

// New schedules the rollover on spec, a standard cron expression or
// descriptor such as "@midnight". Pass cron.WithLocation to evaluate the
// schedule in the user's timezone.
func New(cache *querycache.Cache, refresher Refresher, spec string, opts ...cron.Option) (*Job, error) {
	j := &Job{
		cron:      cron.New(opts...),
		cache:     cache,
		refresher: refresher,
	}
	if spec == "" {
		spec = constants.DefaultRolloverSpec
	}
	if _, err := j.cron.AddFunc(spec, j.Run); err != nil {
		return nil, fmt.Errorf("invalid rollover schedule %q: %w", spec, err)
	}
	return j, nil
}

func (j *Job) Start() {
	j.cron.Start()
}

// Stop halts the scheduler and waits for a running rollover to finish.
func (j *Job) Stop() {
	<-j.cron.Stop().Done()
}

// Run performs one rollover immediately.
func (j *Job) Run() {
	errors.Contain("rollover", func() error {
		n := 0
		for _, kind := range dayKinds {
			n += j.cache.InvalidateKind(kind)
		}
		logger.Debug("Day rollover", "invalidated", n)
		if j.refresher != nil {
			j.refresher.Refresh(context.Background())
		}
		return nil
	})
}
