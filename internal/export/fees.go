package export

import (
	"fmt"

	"github.com/Spok95/tuition-center-admin/internal/reconcile"
)

// BuildFeeSheets — отчёт по сборам из опубликованного состояния движка.
// Семантика «оплатил/не оплатил» берётся из FeeSummary как есть.
// classLabel — опциональный срез по классу (только по измерению учеников,
// сводные суммы периода не пересчитываются).
func BuildFeeSheets(st *reconcile.DerivedState, classLabel string) []SheetSpec {
	summary := SheetSpec{
		Title:  "Сводка",
		Header: []string{"Показатель", "Значение"},
		Rows: [][]string{
			{"Период", st.Month.Key()},
			{"Собрано всего", fmtAmount(st.Fees.Total)},
			{"Наличными", fmtAmount(st.Fees.Cash)},
			{"Онлайн", fmtAmount(st.Fees.Online)},
			{"Оплатили", fmt.Sprintf("%d", st.Fees.PaidCount)},
			{"Не оплатили", fmt.Sprintf("%d", st.Fees.UnpaidCount)},
			{"Ушли за период", fmt.Sprintf("%d", st.Fees.LeftThisPeriod)},
		},
	}

	unpaid := make(map[int64]bool, len(st.Fees.Unpaid))
	for _, s := range st.Fees.Unpaid {
		unpaid[s.ID] = true
	}

	students := SheetSpec{
		Title:  "Ученики",
		Header: []string{"ФИО ученика", "Класс", "Телефон родителя", "Статус оплаты"},
	}
	for _, s := range reconcile.FilterByClass(st.Active, classLabel) {
		status := "Оплачено"
		if unpaid[s.ID] {
			status = "Не оплачено"
		}
		students.Rows = append(students.Rows, []string{
			s.FullName, s.ClassLabel, s.ParentPhone, status,
		})
	}

	return []SheetSpec{summary, students}
}

// fmtAmount — сумма хранится в минимальных единицах валюты.
func fmtAmount(v int64) string {
	return fmt.Sprintf("%d.%02d", v/100, v%100)
}
