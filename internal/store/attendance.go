package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Spok95/tuition-center-admin/internal/ctxutil"
	"github.com/Spok95/tuition-center-admin/internal/models"
)

// ListAttendanceByDate — отметки владельца за один день.
func ListAttendanceByDate(ctx context.Context, database *sql.DB, ownerID int64, date time.Time) ([]models.AttendanceRecord, error) {
	return listAttendance(ctx, database, ownerID, date, date)
}

// ListAttendanceRange — отметки в окне [from, to] включительно.
func ListAttendanceRange(ctx context.Context, database *sql.DB, ownerID int64, from, to time.Time) ([]models.AttendanceRecord, error) {
	return listAttendance(ctx, database, ownerID, from, to)
}

func listAttendance(ctx context.Context, database *sql.DB, ownerID int64, from, to time.Time) ([]models.AttendanceRecord, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT id, student_id, date, status, owner_id
		FROM attendance
		WHERE owner_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date, student_id
	`, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AttendanceRecord
	for rows.Next() {
		var a models.AttendanceRecord
		if err := rows.Scan(&a.ID, &a.StudentID, &a.Date, &a.Status, &a.OwnerID); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpsertAttendance — вставка или замена отметки по ключу (student_id, date).
// Двух строк на один ключ не бывает: новая отметка затирает старую.
func UpsertAttendance(ctx context.Context, database *sql.DB, ownerID, studentID int64, date time.Time, status models.AttendanceStatus) error {
	if !status.Valid() {
		return fmt.Errorf("неизвестный статус посещаемости %q", status)
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := database.ExecContext(ctx, `
		INSERT INTO attendance (student_id, date, status, owner_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_id, date) DO UPDATE SET status = excluded.status
	`, studentID, date, string(status), ownerID)
	return err
}

// BulkUpsertAttendance — «отметить всех» на одну дату. Именно best-effort:
// каждая строка пишется отдельно, отказ одной не откатывает остальные.
// Возвращает число записанных строк и объединённую ошибку по неудачным.
func BulkUpsertAttendance(ctx context.Context, database *sql.DB, ownerID int64, date time.Time, status models.AttendanceStatus, studentIDs []int64) (int, error) {
	if !status.Valid() {
		return 0, fmt.Errorf("неизвестный статус посещаемости %q", status)
	}
	written := 0
	var errs []error
	for _, id := range studentIDs {
		if err := UpsertAttendance(ctx, database, ownerID, id, date, status); err != nil {
			errs = append(errs, fmt.Errorf("ученик %d: %w", id, err))
			continue
		}
		written++
	}
	if len(errs) > 0 {
		return written, fmt.Errorf("массовая отметка выполнена частично (%d из %d): %w",
			written, len(studentIDs), errors.Join(errs...))
	}
	return written, nil
}
