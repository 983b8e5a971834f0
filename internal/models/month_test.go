package models

import (
	"testing"
	"time"
)

func TestMonth_KeyAndParse(t *testing.T) {
	m := Month{Year: 2024, Month: time.February}
	if m.Key() != "2024-02" {
		t.Fatalf("ожидали 2024-02, получили %s", m.Key())
	}
	parsed, err := ParseMonth("2024-02")
	if err != nil {
		t.Fatal(err)
	}
	if parsed != m {
		t.Fatalf("parse/key не согласованы: %+v", parsed)
	}
	if _, err := ParseMonth("февраль 2024"); err == nil {
		t.Fatal("мусор обязан давать ошибку")
	}
}

func TestMonth_Bounds(t *testing.T) {
	m := Month{Year: 2024, Month: time.February} // високосный год
	if got := m.Start(); got != time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("начало месяца: %v", got)
	}
	if got := m.End(); got != time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("конец месяца: %v", got)
	}
	if !m.Contains(time.Date(2024, 2, 15, 10, 30, 0, 0, time.UTC)) {
		t.Fatal("середина месяца должна входить")
	}
	if m.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("первое число следующего месяца не входит")
	}
}

func TestMonth_PrevNext(t *testing.T) {
	m := Month{Year: 2024, Month: time.January}
	if m.Prev() != (Month{Year: 2023, Month: time.December}) {
		t.Fatalf("prev через границу года: %+v", m.Prev())
	}
	if m.Next() != (Month{Year: 2024, Month: time.February}) {
		t.Fatalf("next: %+v", m.Next())
	}
}
