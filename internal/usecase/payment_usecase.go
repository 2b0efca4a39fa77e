package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bonjour-pay/invoice-service/internal/domain"
	"github.com/bonjour-pay/invoice-service/internal/infrastructure/kafka"
	"github.com/bonjour-pay/invoice-service/internal/infrastructure/metrics"
	"github.com/bonjour-pay/invoice-service/internal/infrastructure/robokassa"
	"github.com/jaevor/go-nanoid"
	"go.uber.org/zap"
)

type CreateInvoiceInput struct {
	OrderNumber string
	Services    string
	Amount      float64
	TgUserID    int64
	TgUsername  string
}

// OrderStatusEntry — строка отчёта о статусе: локальная запись плюс
// онлайн-состояние шлюза, когда для записи сохранён InvoiceID.
type OrderStatusEntry struct {
	Attempt    *domain.PaymentAttempt
	State      *domain.PaymentState
	StatusText string
	StatusDate string
	QueryError string
}

// OrderDraft — черновик счёта, собранный из легаси-базы заказов.
type OrderDraft struct {
	Items    []domain.OrderItem
	Services string
	Total    float64
}

type EventPublisher interface {
	PublishPayment(topic string, event kafka.PaymentEvent) error
}

type PaymentUsecase interface {
	CreateInvoice(ctx context.Context, input *CreateInvoiceInput) (*domain.PaymentAttempt, error)
	ConfirmPayment(orderNumber string) (*domain.PaymentAttempt, error)
	CheckOrderStatus(ctx context.Context, orderNumber string) ([]*OrderStatusEntry, error)
	ListPayments(filterSubstring string) ([]*domain.PaymentAttempt, error)
	ExportCSV(w io.Writer) error
	ImportOrder(ctx context.Context, orderNumber string) (*OrderDraft, error)
}

type DefaultPaymentUsecase struct {
	PaymentRepo domain.PaymentRepository
	Gateway     domain.PaymentGateway
	Notifier    domain.Notifier
	Importer    domain.OrderImporter
	Publisher   EventPublisher
	Topic       string
	Metrics     *metrics.InvoiceMetrics
	Logger      *zap.Logger

	generateOrderNumber func() string
}

func NewDefaultPaymentUsecase(
	paymentRepo domain.PaymentRepository,
	gateway domain.PaymentGateway,
	notifier domain.Notifier,
	importer domain.OrderImporter,
	eventPublisher EventPublisher,
	topic string,
	invoiceMetrics *metrics.InvoiceMetrics,
	logger *zap.Logger) (*DefaultPaymentUsecase, error) {

	idGenerator, err := nanoid.Standard(12)
	if err != nil {
		return nil, err
	}

	return &DefaultPaymentUsecase{
		PaymentRepo:         paymentRepo,
		Gateway:             gateway,
		Notifier:            notifier,
		Importer:            importer,
		Publisher:           eventPublisher,
		Topic:               topic,
		Metrics:             invoiceMetrics,
		Logger:              logger,
		generateOrderNumber: idGenerator,
	}, nil
}

func (uc *DefaultPaymentUsecase) CreateInvoice(ctx context.Context, input *CreateInvoiceInput) (*domain.PaymentAttempt, error) {
	orderNumber := strings.TrimSpace(input.OrderNumber)
	if orderNumber == "" {
		orderNumber = uc.generateOrderNumber()
	}

	description := fmt.Sprintf("Оплата заказа %s", orderNumber)
	itemName := strings.TrimSpace(input.Services)
	if itemName == "" {
		itemName = description
	}
	if len(itemName) > 128 {
		itemName = itemName[:128]
	}

	start := time.Now()
	result, err := uc.Gateway.CreateInvoice(ctx, description, input.Amount, itemName)
	uc.Metrics.RecordGatewayDuration("create_invoice", time.Since(start).Seconds())
	if err != nil {
		uc.Metrics.RecordGatewayError("create_invoice")
		return nil, err
	}

	attempt := &domain.PaymentAttempt{
		CreatedAt:   time.Now(),
		OrderNumber: orderNumber,
		Services:    input.Services,
		Amount:      input.Amount,
		PaymentURL:  result.PaymentURL,
		Status:      domain.StatusCreated,
		InvoiceID:   result.InvoiceID,
		TgUserID:    input.TgUserID,
		TgUsername:  input.TgUsername,
	}
	if err := uc.PaymentRepo.Insert(attempt); err != nil {
		return nil, err
	}

	uc.Metrics.RecordInvoiceCreated(attempt.Amount)

	// Уведомление и событие — best-effort, счёт уже записан.
	if err := uc.Notifier.SendPaymentQR(attempt.OrderNumber, attempt.PaymentURL); err != nil {
		uc.Logger.Warn("payment QR delivery failed", zap.String("order_number", attempt.OrderNumber), zap.Error(err))
	}
	uc.publishPaymentEvent(attempt)

	return attempt, nil
}

// ConfirmPayment переводит заказ в paid. Возвращает nil без ошибки, когда
// все записи заказа уже оплачены или заказ неизвестен — повторные
// уведомления шлюза не дают побочных эффектов.
func (uc *DefaultPaymentUsecase) ConfirmPayment(orderNumber string) (*domain.PaymentAttempt, error) {
	updated, err := uc.PaymentRepo.MarkPaid(orderNumber)
	if err != nil {
		return nil, err
	}
	if updated == 0 {
		return nil, nil
	}

	attempt, err := uc.PaymentRepo.Last(orderNumber)
	if err != nil {
		return nil, err
	}

	uc.Metrics.RecordPaymentPaid(attempt.Amount)

	if err := uc.Notifier.NotifyAdminPaid(attempt); err != nil {
		uc.Logger.Warn("admin alert delivery failed", zap.String("order_number", orderNumber), zap.Error(err))
	}
	uc.publishPaymentEvent(attempt)

	return attempt, nil
}

// CheckOrderStatus опрашивает OpStateExt не больше чем по трём последним
// попыткам заказа: более старые брошенные попытки перепроверять не имеет смысла.
func (uc *DefaultPaymentUsecase) CheckOrderStatus(ctx context.Context, orderNumber string) ([]*OrderStatusEntry, error) {
	attempts, err := uc.PaymentRepo.MostRecent(orderNumber, 3)
	if err != nil {
		return nil, err
	}
	if len(attempts) == 0 {
		return nil, domain.ErrPaymentNotFound
	}

	entries := make([]*OrderStatusEntry, 0, len(attempts))
	for _, attempt := range attempts {
		entry := &OrderStatusEntry{Attempt: attempt}

		if attempt.InvoiceID == nil {
			entry.StatusText = "нет данных об онлайн-статусе (InvId не сохранён)"
			entry.StatusDate = attempt.CreatedAt.Format("2006-01-02 15:04:05")
			entries = append(entries, entry)
			continue
		}

		start := time.Now()
		state, err := uc.Gateway.QueryStatus(ctx, *attempt.InvoiceID)
		uc.Metrics.RecordGatewayDuration("query_status", time.Since(start).Seconds())
		if err != nil {
			uc.Metrics.RecordGatewayError("query_status")
			entry.QueryError = err.Error()
			entry.StatusText = fmt.Sprintf("ошибка при запросе статуса: %v", err)
			entry.StatusDate = attempt.CreatedAt.Format("2006-01-02 15:04:05")
			entries = append(entries, entry)
			continue
		}

		entry.State = state
		entry.StatusText = robokassa.StateDescription(state.StateCode)
		entry.StatusDate = state.StateDate
		if entry.StatusDate == "" {
			entry.StatusDate = attempt.CreatedAt.Format("2006-01-02 15:04:05")
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (uc *DefaultPaymentUsecase) ListPayments(filterSubstring string) ([]*domain.PaymentAttempt, error) {
	return uc.PaymentRepo.All(filterSubstring)
}

// ExportCSV выгружает всю книгу платежей, разделитель `;`.
func (uc *DefaultPaymentUsecase) ExportCSV(w io.Writer) error {
	attempts, err := uc.PaymentRepo.All("")
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	writer.Comma = ';'

	header := []string{
		"ID", "Создан", "Номер заказа", "Услуги", "Сумма", "Статус",
		"TG username", "TG user id", "Ссылка на оплату", "InvoiceID",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, attempt := range attempts {
		invoiceID := ""
		if attempt.InvoiceID != nil {
			invoiceID = strconv.FormatInt(*attempt.InvoiceID, 10)
		}
		record := []string{
			strconv.FormatInt(attempt.ID, 10),
			attempt.CreatedAt.Format("2006-01-02 15:04:05"),
			attempt.OrderNumber,
			attempt.Services,
			fmt.Sprintf("%.2f", attempt.Amount),
			string(attempt.Status),
			attempt.TgUsername,
			strconv.FormatInt(attempt.TgUserID, 10),
			attempt.PaymentURL,
			invoiceID,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ImportOrder собирает черновик счёта из легаси-базы заказов.
func (uc *DefaultPaymentUsecase) ImportOrder(ctx context.Context, orderNumber string) (*OrderDraft, error) {
	items, err := uc.Importer.FetchOrderItems(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrPaymentNotFound
	}

	draft := &OrderDraft{Items: items}
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
		draft.Total += item.Price
	}
	draft.Services = strings.Join(names, "; ")

	return draft, nil
}

func (uc *DefaultPaymentUsecase) publishPaymentEvent(attempt *domain.PaymentAttempt) {
	if uc.Publisher == nil {
		return
	}
	event := kafka.PaymentEvent{
		OrderNumber: attempt.OrderNumber,
		Amount:      attempt.Amount,
		Status:      string(attempt.Status),
		InvoiceID:   attempt.InvoiceID,
	}
	if err := uc.Publisher.PublishPayment(uc.Topic, event); err != nil {
		uc.Logger.Warn("payment event publish failed", zap.String("order_number", attempt.OrderNumber), zap.Error(err))
	}
}
