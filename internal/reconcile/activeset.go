package reconcile

import (
	"time"

	"github.com/Spok95/tuition-center-admin/internal/models"
)

// ActiveStudents — подмножество учеников, считающихся зачисленными хотя бы
// часть месяца m: поступил не позже конца месяца И (числится сейчас ИЛИ ушёл
// не раньше начала месяца). Ушедший в середине месяца остаётся в наборе —
// месяц ему ещё выставляется. Порядок входного снимка сохраняется.
func ActiveStudents(students []models.Student, m models.Month) []models.Student {
	start, end := m.Start(), m.End()
	out := make([]models.Student, 0, len(students))
	for _, s := range students {
		if dateOnly(s.AdmissionDate).After(end) {
			continue
		}
		if s.Status == models.StatusActive {
			out = append(out, s)
			continue
		}
		if s.LeavingDate != nil && !dateOnly(*s.LeavingDate).Before(start) {
			out = append(out, s)
		}
	}
	return out
}

// FilterByClass — срез по метке класса; пустой фильтр пропускает всех.
func FilterByClass(students []models.Student, classLabel string) []models.Student {
	if classLabel == "" {
		return students
	}
	out := make([]models.Student, 0, len(students))
	for _, s := range students {
		if s.ClassLabel == classLabel {
			out = append(out, s)
		}
	}
	return out
}

// dateOnly — сравниваем календарные даты, не моменты времени: значения из БД
// могут приехать с разными локациями.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
