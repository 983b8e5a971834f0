package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Spok95/tuition-center-admin/internal/observability"
)

type Job func(ctx context.Context) error

type Runner struct {
	ctx context.Context
}

func New(ctx context.Context) *Runner { return &Runner{ctx: ctx} }

func (r *Runner) Every(interval time.Duration, name string, fn Job) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-t.C:
				start := time.Now()
				if err := safeRun(r.ctx, name, fn); err != nil {
					jobErrors.WithLabelValues(name).Inc()
				}
				jobRuns.WithLabelValues(name).Inc()
				jobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
			}
		}
	}()
}

// safeRun — паника внутри job не валит процесс, а уходит в Sentry.
func safeRun(ctx context.Context, name string, fn Job) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in job %s: %v", name, rec)
			observability.CaptureErr(err)
		}
	}()
	return fn(ctx)
}
