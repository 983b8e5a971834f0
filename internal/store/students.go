package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Spok95/tuition-center-admin/internal/ctxutil"
	"github.com/Spok95/tuition-center-admin/internal/models"
)

// ListStudents — полный снимок учеников владельца, по алфавиту.
func ListStudents(ctx context.Context, database *sql.DB, ownerID int64) ([]models.Student, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT id, full_name, class_label, school_name, parent_phone,
		       admission_date, batch_label, status, leaving_date, notes, owner_id
		FROM students
		WHERE owner_id = $1
		ORDER BY full_name
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func GetStudent(ctx context.Context, database *sql.DB, ownerID, id int64) (*models.Student, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := database.QueryRowContext(ctx, `
		SELECT id, full_name, class_label, school_name, parent_phone,
		       admission_date, batch_label, status, leaving_date, notes, owner_id
		FROM students
		WHERE owner_id = $1 AND id = $2
	`, ownerID, id)
	s, err := scanStudent(row)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func InsertStudent(ctx context.Context, database *sql.DB, s models.Student) (int64, error) {
	if s.Status == models.StatusLeft && s.LeavingDate == nil {
		return 0, fmt.Errorf("статус 'left' без даты ухода")
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := database.QueryRowContext(ctx, `
		INSERT INTO students (full_name, class_label, school_name, parent_phone,
		                      admission_date, batch_label, status, leaving_date, notes, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, s.FullName, s.ClassLabel, s.SchoolName, s.ParentPhone,
		s.AdmissionDate, s.BatchLabel, string(s.Status), s.LeavingDate, s.Notes, s.OwnerID,
	).Scan(&id)
	return id, err
}

// MarkStudentLeft — одностороннее списание: обратного перехода в active нет.
func MarkStudentLeft(ctx context.Context, database *sql.DB, ownerID, id int64, leavingDate time.Time) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := database.ExecContext(ctx, `
		UPDATE students
		SET status = 'left', leaving_date = $3
		WHERE owner_id = $1 AND id = $2 AND status = 'active'
	`, ownerID, id, leavingDate)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("ученик %d не найден или уже отчислен", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(r rowScanner) (models.Student, error) {
	var s models.Student
	err := r.Scan(&s.ID, &s.FullName, &s.ClassLabel, &s.SchoolName, &s.ParentPhone,
		&s.AdmissionDate, &s.BatchLabel, &s.Status, &s.LeavingDate, &s.Notes, &s.OwnerID)
	return s, err
}
