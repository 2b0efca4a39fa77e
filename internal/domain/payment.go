package domain

import "time"

type PaymentStatus string

const (
	StatusCreated PaymentStatus = "created"
	StatusPaid    PaymentStatus = "paid"
)

// PaymentAttempt — одна запись локальной книги платежей: одна строка на каждое
// выставление счёта. Статус движется только вперёд: created -> paid.
type PaymentAttempt struct {
	ID          int64
	CreatedAt   time.Time
	OrderNumber string
	Services    string
	Amount      float64
	PaymentURL  string
	Status      PaymentStatus
	InvoiceID   *int64
	TgUserID    int64
	TgUsername  string
}

// OrderItem — позиция заказа из внешней легаси-базы мерчанта.
type OrderItem struct {
	Name  string
	Price float64
}
