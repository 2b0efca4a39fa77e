package usecase

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bonjour-pay/invoice-service/internal/domain"
	"github.com/bonjour-pay/invoice-service/internal/infrastructure/kafka"
	"github.com/bonjour-pay/invoice-service/internal/infrastructure/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Один экземпляр на пакет: promauto регистрирует метрики в глобальном реестре.
var testMetrics = metrics.NewInvoiceMetrics()

type fakeRepo struct {
	inserted []*domain.PaymentAttempt
	marked   []string
	markRows int64
	markErr  error
}

func (f *fakeRepo) Insert(attempt *domain.PaymentAttempt) error {
	attempt.ID = int64(len(f.inserted) + 1)
	f.inserted = append(f.inserted, attempt)
	return nil
}

func (f *fakeRepo) MarkPaid(orderNumber string) (int64, error) {
	f.marked = append(f.marked, orderNumber)
	return f.markRows, f.markErr
}

func (f *fakeRepo) MostRecent(orderNumber string, limit int) ([]*domain.PaymentAttempt, error) {
	var out []*domain.PaymentAttempt
	for i := len(f.inserted) - 1; i >= 0 && len(out) < limit; i-- {
		if f.inserted[i].OrderNumber == orderNumber {
			out = append(out, f.inserted[i])
		}
	}
	return out, nil
}

func (f *fakeRepo) Last(orderNumber string) (*domain.PaymentAttempt, error) {
	for i := len(f.inserted) - 1; i >= 0; i-- {
		if f.inserted[i].OrderNumber == orderNumber {
			return f.inserted[i], nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (f *fakeRepo) All(filterSubstring string) ([]*domain.PaymentAttempt, error) {
	var out []*domain.PaymentAttempt
	for i := len(f.inserted) - 1; i >= 0; i-- {
		if strings.Contains(f.inserted[i].OrderNumber, filterSubstring) {
			out = append(out, f.inserted[i])
		}
	}
	return out, nil
}

type fakeGateway struct {
	result    *domain.InvoiceResult
	createErr error
	state     *domain.PaymentState
	queryErr  error

	lastDescription string
	lastItemName    string
	queried         []int64
}

func (f *fakeGateway) CreateInvoice(ctx context.Context, description string, amount float64, itemName string) (*domain.InvoiceResult, error) {
	f.lastDescription = description
	f.lastItemName = itemName
	return f.result, f.createErr
}

func (f *fakeGateway) QueryStatus(ctx context.Context, invoiceID int64) (*domain.PaymentState, error) {
	f.queried = append(f.queried, invoiceID)
	return f.state, f.queryErr
}

type fakeNotifier struct {
	qrOrders    []string
	qrErr       error
	adminAlerts []*domain.PaymentAttempt
	adminErr    error
}

func (f *fakeNotifier) SendPaymentQR(orderNumber, paymentURL string) error {
	f.qrOrders = append(f.qrOrders, orderNumber)
	return f.qrErr
}

func (f *fakeNotifier) NotifyAdminPaid(attempt *domain.PaymentAttempt) error {
	f.adminAlerts = append(f.adminAlerts, attempt)
	return f.adminErr
}

type fakeImporter struct {
	items []domain.OrderItem
	err   error
}

func (f *fakeImporter) FetchOrderItems(ctx context.Context, orderNumber string) ([]domain.OrderItem, error) {
	return f.items, f.err
}

type fakePublisher struct {
	events []kafka.PaymentEvent
	topics []string
}

func (f *fakePublisher) PublishPayment(topic string, event kafka.PaymentEvent) error {
	f.topics = append(f.topics, topic)
	f.events = append(f.events, event)
	return nil
}

type fixture struct {
	uc        *DefaultPaymentUsecase
	repo      *fakeRepo
	gateway   *fakeGateway
	notifier  *fakeNotifier
	importer  *fakeImporter
	publisher *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	invID := int64(777)
	f := &fixture{
		repo:      &fakeRepo{},
		gateway:   &fakeGateway{result: &domain.InvoiceResult{PaymentURL: "https://pay.example/inv", InvoiceID: &invID}},
		notifier:  &fakeNotifier{},
		importer:  &fakeImporter{},
		publisher: &fakePublisher{},
	}
	uc, err := NewDefaultPaymentUsecase(
		f.repo, f.gateway, f.notifier, f.importer,
		f.publisher, "payment-events", testMetrics, zap.NewNop())
	require.NoError(t, err)
	f.uc = uc
	return f
}

func TestCreateInvoice_InsertsAndNotifies(t *testing.T) {
	f := newFixture(t)

	attempt, err := f.uc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		OrderNumber: "A-1",
		Services:    "Фотосессия",
		Amount:      1500,
		TgUsername:  "client",
	})
	require.NoError(t, err)

	require.Len(t, f.repo.inserted, 1)
	assert.Equal(t, "A-1", attempt.OrderNumber)
	assert.Equal(t, "https://pay.example/inv", attempt.PaymentURL)
	assert.Equal(t, domain.StatusCreated, attempt.Status)
	require.NotNil(t, attempt.InvoiceID)
	assert.Equal(t, int64(777), *attempt.InvoiceID)

	assert.Equal(t, "Оплата заказа A-1", f.gateway.lastDescription)
	assert.Equal(t, "Фотосессия", f.gateway.lastItemName)
	assert.Equal(t, []string{"A-1"}, f.notifier.qrOrders)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "payment-events", f.publisher.topics[0])
	assert.Equal(t, string(domain.StatusCreated), f.publisher.events[0].Status)
}

func TestCreateInvoice_GeneratesOrderNumber(t *testing.T) {
	f := newFixture(t)

	attempt, err := f.uc.CreateInvoice(context.Background(), &CreateInvoiceInput{Services: "Съёмка", Amount: 100})
	require.NoError(t, err)

	assert.Len(t, attempt.OrderNumber, 12)
	assert.Contains(t, f.gateway.lastDescription, attempt.OrderNumber)
}

func TestCreateInvoice_ItemNameFallbackAndCap(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CreateInvoice(context.Background(), &CreateInvoiceInput{OrderNumber: "A-1", Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, "Оплата заказа A-1", f.gateway.lastItemName)

	long := strings.Repeat("x", 200)
	_, err = f.uc.CreateInvoice(context.Background(), &CreateInvoiceInput{OrderNumber: "A-2", Services: long, Amount: 100})
	require.NoError(t, err)
	assert.Len(t, f.gateway.lastItemName, 128)
}

func TestCreateInvoice_GatewayError(t *testing.T) {
	f := newFixture(t)
	f.gateway.createErr = &domain.GatewayError{Op: "create invoice", Message: "bad signature"}

	_, err := f.uc.CreateInvoice(context.Background(), &CreateInvoiceInput{OrderNumber: "A-1", Amount: 100})

	var gatewayErr *domain.GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Empty(t, f.repo.inserted)
	assert.Empty(t, f.notifier.qrOrders)
	assert.Empty(t, f.publisher.events)
}

func TestCreateInvoice_QRFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	f.notifier.qrErr = &domain.NotificationError{Op: "send photo", Err: assert.AnError}

	attempt, err := f.uc.CreateInvoice(context.Background(), &CreateInvoiceInput{OrderNumber: "A-1", Amount: 100})
	require.NoError(t, err)
	assert.NotNil(t, attempt)
	require.Len(t, f.repo.inserted, 1)
}

func TestConfirmPayment_MarksAndAlerts(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.CreateInvoice(context.Background(), &CreateInvoiceInput{OrderNumber: "A-1", Services: "Съёмка", Amount: 1500})
	require.NoError(t, err)
	f.repo.markRows = 1
	f.publisher.events = nil

	attempt, err := f.uc.ConfirmPayment("A-1")
	require.NoError(t, err)
	require.NotNil(t, attempt)

	assert.Equal(t, []string{"A-1"}, f.repo.marked)
	require.Len(t, f.notifier.adminAlerts, 1)
	require.Len(t, f.publisher.events, 1)
}

func TestConfirmPayment_DuplicateIsNoop(t *testing.T) {
	f := newFixture(t)
	f.repo.markRows = 0

	attempt, err := f.uc.ConfirmPayment("A-1")
	require.NoError(t, err)
	assert.Nil(t, attempt)
	assert.Empty(t, f.notifier.adminAlerts)
	assert.Empty(t, f.publisher.events)
}

func TestConfirmPayment_AdminAlertFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.CreateInvoice(context.Background(), &CreateInvoiceInput{OrderNumber: "A-1", Amount: 100})
	require.NoError(t, err)
	f.repo.markRows = 1
	f.notifier.adminErr = &domain.NotificationError{Op: "send message", Err: assert.AnError}

	attempt, err := f.uc.ConfirmPayment("A-1")
	require.NoError(t, err)
	assert.NotNil(t, attempt)
}

func TestCheckOrderStatus_UnknownOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CheckOrderStatus(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

func TestCheckOrderStatus_MixedAttempts(t *testing.T) {
	f := newFixture(t)
	f.gateway.state = &domain.PaymentState{StateCode: "100", StateDate: "2026-08-30T12:00:00"}

	// Первая попытка без сохранённого InvId.
	f.gateway.result = &domain.InvoiceResult{PaymentURL: "https://pay.example/1"}
	_, err := f.uc.CreateInvoice(context.Background(), &CreateInvoiceInput{OrderNumber: "A-1", Amount: 100})
	require.NoError(t, err)

	invID := int64(777)
	f.gateway.result = &domain.InvoiceResult{PaymentURL: "https://pay.example/2", InvoiceID: &invID}
	_, err = f.uc.CreateInvoice(context.Background(), &CreateInvoiceInput{OrderNumber: "A-1", Amount: 100})
	require.NoError(t, err)

	entries, err := f.uc.CheckOrderStatus(context.Background(), "A-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Новые попытки первыми.
	assert.Equal(t, "успешно оплачено", entries[0].StatusText)
	assert.Equal(t, "2026-08-30T12:00:00", entries[0].StatusDate)
	assert.Equal(t, []int64{777}, f.gateway.queried)

	assert.Contains(t, entries[1].StatusText, "InvId не сохранён")
	assert.Nil(t, entries[1].State)
}

func TestCheckOrderStatus_QueryErrorPerAttempt(t *testing.T) {
	f := newFixture(t)
	f.gateway.queryErr = &domain.GatewayError{Op: "query status", Message: "HTTP 500"}

	_, err := f.uc.CreateInvoice(context.Background(), &CreateInvoiceInput{OrderNumber: "A-1", Amount: 100})
	require.NoError(t, err)

	entries, err := f.uc.CheckOrderStatus(context.Background(), "A-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].StatusText, "ошибка при запросе статуса")
	assert.NotEmpty(t, entries[0].QueryError)
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t)
	invID := int64(777)
	f.repo.inserted = []*domain.PaymentAttempt{{
		ID:          1,
		CreatedAt:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		OrderNumber: "A-1",
		Services:    "Фотосессия",
		Amount:      1500,
		PaymentURL:  "https://pay.example/inv",
		Status:      domain.StatusPaid,
		InvoiceID:   &invID,
		TgUsername:  "client",
	}}

	var buf bytes.Buffer
	require.NoError(t, f.uc.ExportCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID;Создан;Номер заказа;Услуги;Сумма;Статус;TG username;TG user id;Ссылка на оплату;InvoiceID", lines[0])
	assert.Equal(t, "1;2026-08-30 12:00:00;A-1;Фотосессия;1500.00;paid;client;0;https://pay.example/inv;777", lines[1])
}

func TestImportOrder(t *testing.T) {
	f := newFixture(t)
	f.importer.items = []domain.OrderItem{
		{Name: "Фотосессия", Price: 1500},
		{Name: "Печать", Price: 300.50},
	}

	draft, err := f.uc.ImportOrder(context.Background(), "ORD-100")
	require.NoError(t, err)

	assert.Equal(t, "Фотосессия; Печать", draft.Services)
	assert.InDelta(t, 1800.50, draft.Total, 0.001)
	assert.Len(t, draft.Items, 2)
}

func TestImportOrder_Empty(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.ImportOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}
