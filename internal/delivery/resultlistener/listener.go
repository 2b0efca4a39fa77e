package resultlistener

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bonjour-pay/invoice-service/internal/config"
	"github.com/bonjour-pay/invoice-service/internal/infrastructure/metrics"
	"github.com/bonjour-pay/invoice-service/internal/infrastructure/robokassa"
	"github.com/bonjour-pay/invoice-service/internal/usecase"
	"go.uber.org/zap"
)

// Listener принимает асинхронные ResultURL-уведомления шлюза об оплате.
// Ответ всегда 200 "OK" либо 500 с текстом ошибки: тело ответа — единственный
// сигнал доставки для шлюза, внутренние сбои наружу не выпускаются.
type Listener struct {
	uc      usecase.PaymentUsecase
	cfg     *config.InvoiceConfig
	metrics *metrics.InvoiceMetrics
	logger  *zap.Logger
}

func NewListener(uc usecase.PaymentUsecase, cfg *config.InvoiceConfig, invoiceMetrics *metrics.InvoiceMetrics, logger *zap.Logger) *Listener {
	return &Listener{
		uc:      uc,
		cfg:     cfg,
		metrics: invoiceMetrics,
		logger:  logger,
	}
}

func (l *Listener) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(l.cfg.ResultServer.Path, l.handleResult)
	return mux
}

func (l *Listener) Start() error {
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", l.cfg.ResultServer.Host, l.cfg.ResultServer.Port),
		Handler:           l.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	l.logger.Info("result listener started", zap.String("addr", server.Addr), zap.String("path", l.cfg.ResultServer.Path))
	return server.ListenAndServe()
}

func (l *Listener) handleResult(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			l.logger.Error("panic in result handler", zap.Any("panic", rec))
			l.metrics.RecordConfirmation("error")
			writeError(w, fmt.Errorf("%v", rec))
		}
	}()

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	values, err := requestValues(r)
	if err != nil {
		l.metrics.RecordConfirmation("error")
		writeError(w, err)
		return
	}

	outSum := values.Get("OutSum")
	invID := values.Get("InvId")
	signature := values.Get("SignatureValue")
	shpOrder := values.Get("Shp_order")

	l.logger.Info("result notification received",
		zap.String("order_number", shpOrder),
		zap.String("out_sum", outSum),
		zap.String("inv_id", invID),
	)

	if shpOrder == "" {
		// Нечего отмечать, но шлюзу отвечаем успехом.
		l.metrics.RecordConfirmation("no_order")
		writeOK(w)
		return
	}

	if l.cfg.Robokassa.VerifyResultSignature && l.cfg.Robokassa.Password2 != "" {
		expected := robokassa.ResultSignature(outSum, invID, l.cfg.Robokassa.Password2, shpOrder)
		if !strings.EqualFold(signature, expected) {
			l.logger.Warn("result notification with bad signature",
				zap.String("order_number", shpOrder),
				zap.String("signature", signature),
			)
			l.metrics.RecordConfirmation("bad_signature")
			writeError(w, fmt.Errorf("bad signature"))
			return
		}
	}

	attempt, err := l.uc.ConfirmPayment(shpOrder)
	if err != nil {
		l.logger.Error("failed to mark order paid", zap.String("order_number", shpOrder), zap.Error(err))
		l.metrics.RecordConfirmation("error")
		writeError(w, err)
		return
	}

	if attempt == nil {
		l.metrics.RecordConfirmation("duplicate")
	} else {
		l.metrics.RecordConfirmation("paid")
	}
	writeOK(w)
}

// requestValues достаёт поля уведомления: query string для GET,
// тело формы для POST.
func requestValues(r *http.Request) (url.Values, error) {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("failed to parse form: %w", err)
		}
		return r.PostForm, nil
	}
	return r.URL.Query(), nil
}

func writeOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func writeError(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusInternalServerError)
	fmt.Fprintf(w, "Error: %v", err)
}
