package models

import "time"

type PaymentChannel string

const (
	ChannelCash   PaymentChannel = "cash"
	ChannelOnline PaymentChannel = "online"
)

// FeePayment — один платёж за период. Уникальность по (student_id, period)
// НЕ гарантируется: корректировки вносятся второй строкой.
type FeePayment struct {
	ID        int64          `db:"id"`
	StudentID int64          `db:"student_id"`
	Period    string         `db:"period"` // "2006-01"
	Amount    int64          `db:"amount"` // в минимальных единицах валюты
	PaidOn    time.Time      `db:"paid_on"`
	Channel   PaymentChannel `db:"channel"`
	Reference *string        `db:"reference"`
	OwnerID   int64          `db:"owner_id"`
}

// FeePaymentWithStudent — строка платежа вместе с display-полями ученика.
type FeePaymentWithStudent struct {
	FeePayment
	StudentName string `db:"student_name"`
	ClassLabel  string `db:"class_label"`
}
