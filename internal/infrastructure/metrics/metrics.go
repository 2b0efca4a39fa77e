package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// InvoiceMetrics содержит все метрики выставления и оплаты счетов
type InvoiceMetrics struct {
	// Выставленные счета
	InvoicesCreatedTotal       prometheus.Counter
	InvoicesCreatedAmountTotal prometheus.Counter

	// Оплаченные счета (по ResultURL-уведомлениям)
	PaymentsPaidTotal       prometheus.Counter
	PaymentsPaidAmountTotal prometheus.Counter

	// Входящие уведомления по исходу
	ConfirmationsTotal prometheus.CounterVec

	// Ошибки обращений к шлюзу
	GatewayErrorsTotal prometheus.CounterVec

	// Время обращения к шлюзу
	GatewayRequestDuration prometheus.HistogramVec
}

// NewInvoiceMetrics создает новый экземпляр метрик
func NewInvoiceMetrics() *InvoiceMetrics {
	return &InvoiceMetrics{
		InvoicesCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "invoices_created_total",
				Help: "Общее количество выставленных счетов",
			},
		),

		InvoicesCreatedAmountTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "invoices_created_amount_total",
				Help: "Общая сумма выставленных счетов в рублях",
			},
		),

		PaymentsPaidTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payments_paid_total",
				Help: "Общее количество оплаченных счетов",
			},
		),

		PaymentsPaidAmountTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payments_paid_amount_total",
				Help: "Общая сумма оплаченных счетов в рублях",
			},
		),

		ConfirmationsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "result_confirmations_total",
				Help: "Входящие ResultURL-уведомления по исходу обработки",
			},
			[]string{"outcome"},
		),

		GatewayErrorsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_errors_total",
				Help: "Общее количество ошибок при обращении к шлюзу",
			},
			[]string{"op"},
		),

		GatewayRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_request_duration_seconds",
				Help:    "Время обращения к шлюзу в секундах",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms, 200ms, 400ms...
			},
			[]string{"op"},
		),
	}
}

// RecordInvoiceCreated записывает выставленный счёт
func (m *InvoiceMetrics) RecordInvoiceCreated(amount float64) {
	m.InvoicesCreatedTotal.Inc()
	m.InvoicesCreatedAmountTotal.Add(amount)
}

// RecordPaymentPaid записывает оплаченный счёт
func (m *InvoiceMetrics) RecordPaymentPaid(amount float64) {
	m.PaymentsPaidTotal.Inc()
	m.PaymentsPaidAmountTotal.Add(amount)
}

// RecordConfirmation записывает исход обработки входящего уведомления
func (m *InvoiceMetrics) RecordConfirmation(outcome string) {
	m.ConfirmationsTotal.WithLabelValues(outcome).Inc()
}

// RecordGatewayError записывает ошибку шлюза
func (m *InvoiceMetrics) RecordGatewayError(op string) {
	m.GatewayErrorsTotal.WithLabelValues(op).Inc()
}

// RecordGatewayDuration записывает время обращения к шлюзу
func (m *InvoiceMetrics) RecordGatewayDuration(op string, durationSeconds float64) {
	m.GatewayRequestDuration.WithLabelValues(op).Observe(durationSeconds)
}
