package robokassa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bonjour-pay/invoice-service/internal/config"
	"github.com/bonjour-pay/invoice-service/internal/domain"
)

const requestTimeout = 20 * time.Second

// Client выполняет два исходящих вызова шлюза: создание счёта (Invoice API)
// и запрос статуса (OpStateExt). Все сбои заворачиваются в domain.GatewayError.
type Client struct {
	cfg        *config.Robokassa
	httpClient *http.Client
	debugLog   *DebugLog
}

func NewClient(cfg *config.Robokassa, debugLog *DebugLog) *Client {
	return &Client{
		cfg:      cfg,
		debugLog: debugLog,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

func (c *Client) CreateInvoice(ctx context.Context, description string, amount float64, itemName string) (*domain.InvoiceResult, error) {
	token, err := BuildInvoiceToken(c.cfg.MerchantLogin, c.cfg.Password1, c.cfg.Tax, description, amount, itemName)
	if err != nil {
		return nil, err
	}

	// Тело запроса — сам токен, завёрнутый в JSON-строку.
	bodyBytes, err := json.Marshal(token.Token)
	if err != nil {
		return nil, &domain.GatewayError{Op: "create invoice", Message: "failed to encode request body", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.InvoiceAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, &domain.GatewayError{Op: "create invoice", Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.GatewayError{Op: "create invoice", Message: "invoice API is unreachable", Err: err}
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, &domain.GatewayError{Op: "create invoice", Message: "failed to read response body", Err: err}
	}

	c.debugLog.AppendInvoice(token, string(bodyBytes), response.StatusCode, responseBodyBytes)

	var data map[string]any
	if err := json.Unmarshal(responseBodyBytes, &data); err != nil {
		return nil, &domain.GatewayError{
			Op:      "create invoice",
			Message: fmt.Sprintf("expected JSON, got: %s", truncate(responseBodyBytes, 500)),
			Err:     err,
		}
	}

	if success, _ := data["isSuccess"].(bool); !success {
		msg := "unknown invoice API error"
		if m, ok := lookupField(data, "message", "Message"); ok {
			if s, ok := m.(string); ok && s != "" {
				msg = s
			}
		}
		return nil, &domain.GatewayError{Op: "create invoice", Message: msg}
	}

	// Провайдер непоследователен в регистре имён полей.
	link := ""
	if v, ok := lookupField(data, "invoiceUrl", "InvoiceUrl", "url", "Url", "paymentUrl", "PaymentUrl"); ok {
		link, _ = v.(string)
	}
	if link == "" {
		return nil, &domain.GatewayError{
			Op:      "create invoice",
			Message: fmt.Sprintf("no link in response: %s", truncate(responseBodyBytes, 500)),
		}
	}

	result := &domain.InvoiceResult{PaymentURL: link}
	if v, ok := lookupField(data, "invId", "invoiceId", "InvoiceId"); ok {
		if id, ok := parseInvoiceID(v); ok {
			result.InvoiceID = &id
		}
	}

	return result, nil
}

func (c *Client) QueryStatus(ctx context.Context, invoiceID int64) (*domain.PaymentState, error) {
	if c.cfg.MerchantLogin == "" {
		return nil, &domain.ConfigurationError{Missing: "merchant_login"}
	}
	if c.cfg.Password2 == "" {
		return nil, &domain.ConfigurationError{Missing: "password2"}
	}

	params := url.Values{}
	params.Set("MerchantLogin", c.cfg.MerchantLogin)
	params.Set("InvoiceID", strconv.FormatInt(invoiceID, 10))
	params.Set("Signature", StatusSignature(c.cfg.MerchantLogin, invoiceID, c.cfg.Password2))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.OpStateURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &domain.GatewayError{Op: "query status", Message: "failed to build request", Err: err}
	}

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.GatewayError{Op: "query status", Message: "OpStateExt is unreachable", Err: err}
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, &domain.GatewayError{Op: "query status", Message: "failed to read response body", Err: err}
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, &domain.GatewayError{
			Op:      "query status",
			Message: fmt.Sprintf("OpStateExt returned HTTP %d: %s", response.StatusCode, truncate(responseBodyBytes, 500)),
		}
	}

	state, err := ParseOpStateXML(responseBodyBytes)
	if err != nil {
		return nil, &domain.GatewayError{
			Op:      "query status",
			Message: fmt.Sprintf("failed to parse OpState XML: %s", truncate(responseBodyBytes, 2000)),
			Err:     err,
		}
	}

	return state, nil
}

// lookupField перебирает имена-кандидаты по порядку и возвращает первое
// присутствующее значение.
func lookupField(data map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := data[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func parseInvoiceID(v any) (int64, bool) {
	switch id := v.(type) {
	case float64:
		return int64(id), true
	case string:
		parsed, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

func truncate(b []byte, limit int) string {
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit])
}
