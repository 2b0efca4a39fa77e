package httpapi

import (
	"errors"
	"net/http"

	"github.com/bonjour-pay/invoice-service/internal/domain"
	"github.com/bonjour-pay/invoice-service/internal/usecase"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	uc     usecase.PaymentUsecase
	logger *zap.Logger
}

func NewPaymentHandler(uc usecase.PaymentUsecase, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{uc: uc, logger: logger}
}

type createInvoiceRequest struct {
	OrderNumber string  `json:"order_number"`
	Services    string  `json:"services" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	TgUserID    int64   `json:"tg_user_id"`
	TgUsername  string  `json:"tg_username"`
}

type paymentResponse struct {
	ID          int64   `json:"id"`
	CreatedAt   string  `json:"created_at"`
	OrderNumber string  `json:"order_number"`
	Services    string  `json:"services"`
	Amount      float64 `json:"amount"`
	PaymentURL  string  `json:"payment_url"`
	Status      string  `json:"status"`
	InvoiceID   *int64  `json:"invoice_id,omitempty"`
	TgUsername  string  `json:"tg_username,omitempty"`
}

func toPaymentResponse(attempt *domain.PaymentAttempt) paymentResponse {
	return paymentResponse{
		ID:          attempt.ID,
		CreatedAt:   attempt.CreatedAt.Format("2006-01-02 15:04:05"),
		OrderNumber: attempt.OrderNumber,
		Services:    attempt.Services,
		Amount:      attempt.Amount,
		PaymentURL:  attempt.PaymentURL,
		Status:      string(attempt.Status),
		InvoiceID:   attempt.InvoiceID,
		TgUsername:  attempt.TgUsername,
	}
}

func (h *PaymentHandler) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attempt, err := h.uc.CreateInvoice(c.Request.Context(), &usecase.CreateInvoiceInput{
		OrderNumber: req.OrderNumber,
		Services:    req.Services,
		Amount:      req.Amount,
		TgUserID:    req.TgUserID,
		TgUsername:  req.TgUsername,
	})
	if err != nil {
		h.logger.Error("invoice creation failed", zap.String("order_number", req.OrderNumber), zap.Error(err))
		h.respondError(c, err)
		return
	}

	h.logger.Info("invoice created",
		zap.String("order_number", attempt.OrderNumber),
		zap.Float64("amount", attempt.Amount),
	)
	c.JSON(http.StatusCreated, toPaymentResponse(attempt))
}

type statusEntryResponse struct {
	Payment    paymentResponse      `json:"payment"`
	StatusText string               `json:"status_text"`
	StatusDate string               `json:"status_date"`
	State      *domain.PaymentState `json:"state,omitempty"`
	QueryError string               `json:"query_error,omitempty"`
}

func (h *PaymentHandler) CheckOrderStatus(c *gin.Context) {
	orderNumber := c.Param("order_number")

	entries, err := h.uc.CheckOrderStatus(c.Request.Context(), orderNumber)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response := make([]statusEntryResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, statusEntryResponse{
			Payment:    toPaymentResponse(entry.Attempt),
			StatusText: entry.StatusText,
			StatusDate: entry.StatusDate,
			State:      entry.State,
			QueryError: entry.QueryError,
		})
	}

	c.JSON(http.StatusOK, gin.H{"order_number": orderNumber, "attempts": response})
}

func (h *PaymentHandler) ImportOrder(c *gin.Context) {
	orderNumber := c.Param("order_number")

	draft, err := h.uc.ImportOrder(c.Request.Context(), orderNumber)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_number": orderNumber,
		"services":     draft.Services,
		"total":        draft.Total,
		"items":        draft.Items,
	})
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	attempts, err := h.uc.ListPayments(c.Query("order"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	response := make([]paymentResponse, 0, len(attempts))
	for _, attempt := range attempts {
		response = append(response, toPaymentResponse(attempt))
	}
	c.JSON(http.StatusOK, gin.H{"payments": response})
}

func (h *PaymentHandler) ExportCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="payments.csv"`)
	if err := h.uc.ExportCSV(c.Writer); err != nil {
		h.logger.Error("CSV export failed", zap.Error(err))
		c.Status(http.StatusInternalServerError)
	}
}

// respondError переводит доменную таксономию ошибок в HTTP-статусы;
// текст провайдера уходит оператору дословно.
func (h *PaymentHandler) respondError(c *gin.Context, err error) {
	var confErr *domain.ConfigurationError
	var gatewayErr *domain.GatewayError

	switch {
	case errors.Is(err, domain.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.As(err, &confErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": confErr.Error()})
	case errors.As(err, &gatewayErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": gatewayErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
