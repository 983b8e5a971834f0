package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/Spok95/tuition-center-admin/internal/models"
)

// Snapshot — источник снимков для цикла пересчёта: обёртка над пакетными
// функциями с привязкой к владельцу. Реализует reconcile.Source.
type Snapshot struct {
	DB      *sql.DB
	OwnerID int64
}

func (s Snapshot) ListStudents(ctx context.Context) ([]models.Student, error) {
	return ListStudents(ctx, s.DB, s.OwnerID)
}

func (s Snapshot) ListFeePayments(ctx context.Context, period string) ([]models.FeePaymentWithStudent, error) {
	return ListFeePayments(ctx, s.DB, s.OwnerID, period)
}

func (s Snapshot) ListAttendanceRange(ctx context.Context, from, to time.Time) ([]models.AttendanceRecord, error) {
	return ListAttendanceRange(ctx, s.DB, s.OwnerID, from, to)
}

// ListAttendanceByDate — дневной журнал на выбранную дату.
func (s Snapshot) ListAttendanceByDate(ctx context.Context, date time.Time) ([]models.AttendanceRecord, error) {
	return ListAttendanceByDate(ctx, s.DB, s.OwnerID, date)
}
