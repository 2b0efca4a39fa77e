package httpapi

import (
	"github.com/bonjour-pay/invoice-service/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func NewRouter(uc usecase.PaymentUsecase, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	h := NewPaymentHandler(uc, logger)

	r.POST("/invoices", h.CreateInvoice)
	r.GET("/orders/:order_number/status", h.CheckOrderStatus)
	r.POST("/orders/:order_number/import", h.ImportOrder)
	r.GET("/payments", h.ListPayments)
	r.GET("/payments/export", h.ExportCSV)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
