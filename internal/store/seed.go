package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Spok95/tuition-center-admin/internal/models"
)

// SeedDemo — демо-данные для dev-окружения. Повторный запуск ничего не
// добавляет: сидим только в пустую таблицу учеников владельца.
func SeedDemo(ctx context.Context, database *sql.DB, ownerID int64) error {
	var count int
	if err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM students WHERE owner_id = $1`, ownerID).Scan(&count); err != nil {
		return fmt.Errorf("проверка таблицы students: %w", err)
	}
	if count > 0 {
		return nil
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	batchMorning := "утро 8:00"
	batchEvening := "вечер 17:00"

	students := []models.Student{
		{FullName: "Айша Хан", ClassLabel: "9", ParentPhone: "+92-300-1110001", AdmissionDate: monthStart.AddDate(0, -6, 0), BatchLabel: &batchMorning, Status: models.StatusActive, OwnerID: ownerID},
		{FullName: "Билал Ахмед", ClassLabel: "10", ParentPhone: "+92-300-1110002", AdmissionDate: monthStart.AddDate(0, -3, 9), BatchLabel: &batchEvening, Status: models.StatusActive, OwnerID: ownerID},
		{FullName: "Зайнаб Малик", ClassLabel: "O-Level", ParentPhone: "+92-300-1110003", AdmissionDate: monthStart.AddDate(0, -1, 4), Status: models.StatusActive, OwnerID: ownerID},
	}
	ids := make([]int64, 0, len(students))
	for _, s := range students {
		id, err := InsertStudent(ctx, database, s)
		if err != nil {
			return fmt.Errorf("seed ученика %q: %w", s.FullName, err)
		}
		ids = append(ids, id)
	}

	period := models.MonthOf(today).Key()
	payments := []models.FeePayment{
		{StudentID: ids[0], Period: period, Amount: 500000, PaidOn: monthStart.AddDate(0, 0, 2), Channel: models.ChannelCash, OwnerID: ownerID},
		{StudentID: ids[1], Period: period, Amount: 600000, PaidOn: monthStart.AddDate(0, 0, 5), Channel: models.ChannelOnline, OwnerID: ownerID},
	}
	for _, p := range payments {
		if _, err := InsertFeePayment(ctx, database, p); err != nil {
			return fmt.Errorf("seed платежа: %w", err)
		}
	}

	for _, id := range ids {
		if err := UpsertAttendance(ctx, database, ownerID, id, today, models.AttendancePresent); err != nil {
			return fmt.Errorf("seed посещаемости: %w", err)
		}
	}
	return nil
}
