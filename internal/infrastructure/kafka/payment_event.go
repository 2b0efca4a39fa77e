package kafka

type PaymentEvent struct {
	OrderNumber string  `json:"order_number"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
	InvoiceID   *int64  `json:"invoice_id,omitempty"`
}
