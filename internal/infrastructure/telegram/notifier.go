package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/bonjour-pay/invoice-service/internal/config"
	"github.com/bonjour-pay/invoice-service/internal/domain"
	"github.com/bonjour-pay/invoice-service/internal/infrastructure/qr"
	"go.uber.org/zap"
)

const apiBase = "https://api.telegram.org"

// Notifier шлёт QR со ссылкой покупателю и текстовые алерты админу.
// Доставка best-effort: сбой логируется и возвращается как NotificationError,
// вызывающая сторона его не поднимает.
type Notifier struct {
	cfg        *config.Telegram
	httpClient *http.Client
	logger     *zap.Logger
}

func NewNotifier(cfg *config.Telegram, logger *zap.Logger) *Notifier {
	return &Notifier{
		cfg:    cfg,
		logger: logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (n *Notifier) SendPaymentQR(orderNumber, paymentURL string) error {
	if n.cfg.BotToken == "" || n.cfg.UserChatID == 0 {
		n.logger.Info("telegram token or user chat id is not configured, QR delivery skipped")
		return nil
	}

	qrBytes, err := qr.EncodePNG(paymentURL)
	if err != nil {
		n.logger.Warn("failed to encode QR", zap.Error(err))
		return &domain.NotificationError{Op: "send payment QR", Err: err}
	}

	caption := fmt.Sprintf("Оплата заказа %s\n\nСсылка для оплаты: %s", orderNumber, paymentURL)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("photo", "qr.png")
	if err != nil {
		return &domain.NotificationError{Op: "send payment QR", Err: err}
	}
	part.Write(qrBytes)
	writer.WriteField("chat_id", strconv.FormatInt(n.cfg.UserChatID, 10))
	writer.WriteField("caption", caption)
	writer.Close()

	url := fmt.Sprintf("%s/bot%s/sendPhoto", apiBase, n.cfg.BotToken)
	response, err := n.httpClient.Post(url, writer.FormDataContentType(), &body)
	if err != nil {
		n.logger.Warn("failed to send QR photo", zap.String("order_number", orderNumber), zap.Error(err))
		return &domain.NotificationError{Op: "send payment QR", Err: err}
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		responseBodyBytes, _ := io.ReadAll(response.Body)
		n.logger.Warn("telegram rejected QR photo",
			zap.String("order_number", orderNumber),
			zap.Int("status", response.StatusCode),
			zap.ByteString("body", responseBodyBytes),
		)
		return &domain.NotificationError{
			Op:  "send payment QR",
			Err: fmt.Errorf("telegram returned HTTP %d", response.StatusCode),
		}
	}

	return nil
}

func (n *Notifier) NotifyAdminPaid(attempt *domain.PaymentAttempt) error {
	if n.cfg.BotToken == "" || n.cfg.AdminID == 0 {
		n.logger.Info("telegram token or admin id is not configured, admin alert skipped")
		return nil
	}

	buyer := "(покупатель не указан)"
	if attempt.TgUsername != "" {
		buyer = "@" + attempt.TgUsername
	}
	text := fmt.Sprintf(
		"💸 Оплата получена\nЗаказ (ID записи): %d\nСумма: %.2f руб.\nПокупатель: %s",
		attempt.ID, attempt.Amount, buyer,
	)

	payload, err := json.Marshal(map[string]any{
		"chat_id": n.cfg.AdminID,
		"text":    text,
	})
	if err != nil {
		return &domain.NotificationError{Op: "notify admin", Err: err}
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", apiBase, n.cfg.BotToken)
	response, err := n.httpClient.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		n.logger.Warn("failed to send admin alert", zap.Int64("payment_id", attempt.ID), zap.Error(err))
		return &domain.NotificationError{Op: "notify admin", Err: err}
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		responseBodyBytes, _ := io.ReadAll(response.Body)
		n.logger.Warn("telegram rejected admin alert",
			zap.Int64("payment_id", attempt.ID),
			zap.Int("status", response.StatusCode),
			zap.ByteString("body", responseBodyBytes),
		)
		return &domain.NotificationError{
			Op:  "notify admin",
			Err: fmt.Errorf("telegram returned HTTP %d", response.StatusCode),
		}
	}

	return nil
}
