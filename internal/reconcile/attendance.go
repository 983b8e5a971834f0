package reconcile

import "github.com/Spok95/tuition-center-admin/internal/models"

// AttendanceTally — счётчики отметок ученика за месяц.
type AttendanceTally struct {
	Student models.Student
	Present int
	Absent  int
	Leave   int
	Holiday int
}

// SummarizeAttendance — помесячный свод. В отчёт входят ТОЛЬКО ученики со
// статусом active на данный момент: это более узкий фильтр, чем активный
// набор биллинга, и с ним не смешивается. Ученик без отметок за месяц даёт
// нулевые счётчики, а не отсутствующую строку. classLabel — опциональный
// пост-фильтр по ученикам; на сами счётчики он не влияет.
func SummarizeAttendance(students []models.Student, records []models.AttendanceRecord, m models.Month, classLabel string) []AttendanceTally {
	current := make([]models.Student, 0, len(students))
	for _, s := range students {
		if s.Status == models.StatusActive {
			current = append(current, s)
		}
	}
	current = FilterByClass(current, classLabel)

	byStudent := make(map[int64]int, len(current)) // id -> индекс в out
	out := make([]AttendanceTally, len(current))
	for i, s := range current {
		out[i] = AttendanceTally{Student: s}
		byStudent[s.ID] = i
	}

	for _, r := range records {
		if !m.Contains(dateOnly(r.Date)) {
			continue
		}
		i, ok := byStudent[r.StudentID]
		if !ok {
			continue
		}
		switch r.Status {
		case models.AttendancePresent:
			out[i].Present++
		case models.AttendanceAbsent:
			out[i].Absent++
		case models.AttendanceLeave:
			out[i].Leave++
		case models.AttendanceHoliday:
			out[i].Holiday++
		}
	}
	return out
}
