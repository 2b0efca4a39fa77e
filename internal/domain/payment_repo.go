package domain

import "context"

type PaymentRepository interface {
	Insert(attempt *PaymentAttempt) error
	// MarkPaid переводит в paid все ещё не оплаченные записи заказа
	// и возвращает число затронутых строк. Повторный вызов — no-op (0 строк).
	MarkPaid(orderNumber string) (int64, error)
	MostRecent(orderNumber string, limit int) ([]*PaymentAttempt, error)
	Last(orderNumber string) (*PaymentAttempt, error)
	All(filterSubstring string) ([]*PaymentAttempt, error)
}

// OrderImporter — внешняя легаси-база заказов. Единственная способность:
// отдать позиции заказа по его номеру. Ядро от неё не зависит.
type OrderImporter interface {
	FetchOrderItems(ctx context.Context, orderNumber string) ([]OrderItem, error)
}
