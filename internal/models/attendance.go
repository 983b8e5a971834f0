package models

import "time"

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLeave   AttendanceStatus = "leave"
	AttendanceHoliday AttendanceStatus = "holiday"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLeave, AttendanceHoliday:
		return true
	default:
		return false
	}
}

// AttendanceRecord — отметка за день. Суррогатный id есть, но семантический
// ключ — пара (student_id, date): на неё стоит UNIQUE в БД.
type AttendanceRecord struct {
	ID        int64            `db:"id"`
	StudentID int64            `db:"student_id"`
	Date      time.Time        `db:"date"`
	Status    AttendanceStatus `db:"status"`
	OwnerID   int64            `db:"owner_id"`
}
