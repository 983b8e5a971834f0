package reconcile

import "github.com/Spok95/tuition-center-admin/internal/models"

// FeeSummary — сводка сборов за период. Инвариант: Cash + Online == Total.
type FeeSummary struct {
	Month          models.Month
	Total          int64
	Cash           int64
	Online         int64
	PaidCount      int
	UnpaidCount    int
	Unpaid         []models.Student
	LeftThisPeriod int
}

// ReconcileFees — чистая свёртка: полный снимок учеников, активный набор за
// месяц и платежи этого периода. «Оплатил» — хотя бы одна строка платежа за
// период, сумма и количество строк роли не играют; при этом в Total входят
// ВСЕ строки, т.е. две оплаты одного ученика удваивают сбор, но в набор
// оплативших он попадает один раз. Это намеренно: так вносятся корректировки.
func ReconcileFees(snapshot, active []models.Student, payments []models.FeePaymentWithStudent, m models.Month) FeeSummary {
	sum := FeeSummary{Month: m}
	key := m.Key()

	paid := make(map[int64]bool, len(active))
	for _, p := range payments {
		if p.Period != key {
			// защита от смешивания периодов: чужие строки не считаем
			continue
		}
		sum.Total += p.Amount
		switch p.Channel {
		case models.ChannelOnline:
			sum.Online += p.Amount
		default:
			sum.Cash += p.Amount
		}
		paid[p.StudentID] = true
	}

	for _, s := range active {
		if paid[s.ID] {
			sum.PaidCount++
		} else {
			sum.Unpaid = append(sum.Unpaid, s)
		}
	}
	sum.UnpaidCount = len(sum.Unpaid)

	// Ушедшие в этом периоде: отдельный предикат «дата ухода внутри окна»,
	// не правило включения в активный набор.
	start, end := m.Start(), m.End()
	for _, s := range snapshot {
		if s.Status != models.StatusLeft || s.LeavingDate == nil {
			continue
		}
		d := dateOnly(*s.LeavingDate)
		if !d.Before(start) && !d.After(end) {
			sum.LeftThisPeriod++
		}
	}
	return sum
}
