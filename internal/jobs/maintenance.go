package jobs

import (
	"context"
	"database/sql"
	"time"

	"github.com/Spok95/tuition-center-admin/internal/metrics"
	"github.com/Spok95/tuition-center-admin/internal/reconcile"
)

// StartMaintenance — фоновые задачи обслуживания:
//   - db_ping: метрика задержки хранилища;
//   - refresh: страховочный полный пересчёт на случай потерянного NOTIFY
//     (после переподключения listener уведомления могли не дойти).
func StartMaintenance(ctx context.Context, database *sql.DB, loop *reconcile.Loop, refreshEvery time.Duration) {
	r := New(ctx)

	r.Every(30*time.Second, "db_ping", func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		t0 := time.Now()
		if err := database.PingContext(pingCtx); err != nil {
			return err
		}
		metrics.ObserveDBPing(time.Since(t0))
		return nil
	})

	r.Every(refreshEvery, "refresh", func(ctx context.Context) error {
		loop.Refresh()
		return nil
	})
}
