package models

import "time"

type StudentStatus string

const (
	StatusActive StudentStatus = "active"
	StatusLeft   StudentStatus = "left"
)

type Student struct {
	ID            int64         `db:"id"`
	FullName      string        `db:"full_name"`
	ClassLabel    string        `db:"class_label"`
	SchoolName    *string       `db:"school_name"`
	ParentPhone   string        `db:"parent_phone"`
	AdmissionDate time.Time     `db:"admission_date"`
	BatchLabel    *string       `db:"batch_label"`
	Status        StudentStatus `db:"status"`
	LeavingDate   *time.Time    `db:"leaving_date"`
	Notes         *string       `db:"notes"`
	OwnerID       int64         `db:"owner_id"`
}

// IsActive — текущий статус, без учёта периода.
func (s Student) IsActive() bool { return s.Status == StatusActive }
