package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Spok95/tuition-center-admin/internal/ctxutil"
	"github.com/Spok95/tuition-center-admin/internal/models"
)

// ListFeePayments — все платежи владельца за период, с display-полями ученика.
func ListFeePayments(ctx context.Context, database *sql.DB, ownerID int64, period string) ([]models.FeePaymentWithStudent, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT fp.id, fp.student_id, fp.period, fp.amount, fp.paid_on,
		       fp.channel, fp.reference, fp.owner_id,
		       st.full_name AS student_name, st.class_label
		FROM fee_payments fp
		JOIN students st ON st.id = fp.student_id
		WHERE fp.owner_id = $1 AND fp.period = $2
		ORDER BY fp.paid_on, fp.id
	`, ownerID, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.FeePaymentWithStudent
	for rows.Next() {
		var p models.FeePaymentWithStudent
		if err := rows.Scan(&p.ID, &p.StudentID, &p.Period, &p.Amount, &p.PaidOn,
			&p.Channel, &p.Reference, &p.OwnerID, &p.StudentName, &p.ClassLabel); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func InsertFeePayment(ctx context.Context, database *sql.DB, p models.FeePayment) (int64, error) {
	if p.Amount <= 0 {
		return 0, fmt.Errorf("сумма платежа должна быть положительной")
	}
	if _, err := models.ParseMonth(p.Period); err != nil {
		return 0, err
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := database.QueryRowContext(ctx, `
		INSERT INTO fee_payments (student_id, period, amount, paid_on, channel, reference, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, p.StudentID, p.Period, p.Amount, p.PaidOn, string(p.Channel), p.Reference, p.OwnerID).Scan(&id)
	return id, err
}
