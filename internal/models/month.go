package models

import (
	"fmt"
	"time"
)

// Month — отчётный период (год + месяц). Границы считаем включительно:
// Start — первое число, End — последнее число месяца.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("неверный формат периода %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// Key — каноническая строковая форма, в ней же хранится FeePayment.Period.
func (m Month) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, -1)
}

func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

func (m Month) Prev() Month {
	t := m.Start().AddDate(0, -1, 0)
	return MonthOf(t)
}

func (m Month) Next() Month {
	t := m.Start().AddDate(0, 1, 0)
	return MonthOf(t)
}
