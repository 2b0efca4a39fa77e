package domain

import "context"

// InvoiceResult — итог успешного создания счёта у шлюза.
// InvoiceID может отсутствовать: провайдер возвращает его не всегда.
type InvoiceResult struct {
	PaymentURL string
	InvoiceID  *int64
}

// PaymentState — разобранный ответ сервиса статусов шлюза.
type PaymentState struct {
	ResultCode        string
	ResultDescription string
	StateCode         string
	RequestDate       string
	StateDate         string
	IncCurrLabel      string
	IncSum            string
	IncAccount        string
	PaymentMethodCode string
	OutCurrLabel      string
	OutSum            string
	OpKey             string
}

type PaymentGateway interface {
	CreateInvoice(ctx context.Context, description string, amount float64, itemName string) (*InvoiceResult, error)
	QueryStatus(ctx context.Context, invoiceID int64) (*PaymentState, error)
}

type Notifier interface {
	SendPaymentQR(orderNumber, paymentURL string) error
	NotifyAdminPaid(attempt *PaymentAttempt) error
}

type Message struct {
	Key   []byte
	Value []byte
}

type PublisherPort interface {
	Publish(topic string, msgs ...Message) error
}
