package robokassa

import (
	"bytes"
	"crypto/hmac"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/bonjour-pay/invoice-service/internal/domain"
)

// Константы счёта фиксированы схемой Invoice API: одна позиция,
// полная оплата услуги.
const (
	invoiceType   = "OneTime"
	culture       = "ru"
	paymentMethod = "full_payment"
	paymentObject = "service"
)

type tokenHeader struct {
	Typ string `json:"typ"`
	Alg string `json:"alg"`
}

type invoiceItem struct {
	Name          string  `json:"Name"`
	Quantity      int     `json:"Quantity"`
	Cost          float64 `json:"Cost"`
	Tax           string  `json:"Tax"`
	PaymentMethod string  `json:"PaymentMethod"`
	PaymentObject string  `json:"PaymentObject"`
}

type invoicePayload struct {
	MerchantLogin string        `json:"MerchantLogin"`
	InvoiceType   string        `json:"InvoiceType"`
	Culture       string        `json:"Culture"`
	OutSum        float64       `json:"OutSum"`
	Description   string        `json:"Description"`
	InvoiceItems  []invoiceItem `json:"InvoiceItems"`
}

// SignedToken — собранный токен счёта вместе с промежуточными формами,
// которые уходят в отладочный журнал.
type SignedToken struct {
	Token        string
	HeaderJSON   []byte
	PayloadJSON  []byte
	SigningInput string
}

// BuildInvoiceToken собирает токен `header.payload.signature`:
// компактный JSON без экранирования HTML, base64url без паддинга,
// подпись HMAC-MD5 ключом `MerchantLogin:Password1`.
func BuildInvoiceToken(merchantLogin, password1, tax, description string, amount float64, itemName string) (*SignedToken, error) {
	if merchantLogin == "" {
		return nil, &domain.ConfigurationError{Missing: "merchant_login"}
	}
	if password1 == "" {
		return nil, &domain.ConfigurationError{Missing: "password1"}
	}

	if tax == "" {
		tax = "none"
	}

	header := tokenHeader{Typ: "JWT", Alg: "MD5"}
	payload := invoicePayload{
		MerchantLogin: merchantLogin,
		InvoiceType:   invoiceType,
		Culture:       culture,
		OutSum:        amount,
		Description:   description,
		InvoiceItems: []invoiceItem{
			{
				Name:          itemName,
				Quantity:      1,
				Cost:          amount,
				Tax:           tax,
				PaymentMethod: paymentMethod,
				PaymentObject: paymentObject,
			},
		},
	}

	headerJSON, err := compactJSON(header)
	if err != nil {
		return nil, fmt.Errorf("marshal token header: %w", err)
	}
	payloadJSON, err := compactJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal token payload: %w", err)
	}

	headerB64 := base64.RawURLEncoding.EncodeToString(headerJSON)
	payloadB64 := base64.RawURLEncoding.EncodeToString(payloadJSON)
	signingInput := headerB64 + "." + payloadB64

	mac := hmac.New(md5.New, []byte(merchantLogin+":"+password1))
	mac.Write([]byte(signingInput))
	signatureB64 := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	return &SignedToken{
		Token:        signingInput + "." + signatureB64,
		HeaderJSON:   headerJSON,
		PayloadJSON:  payloadJSON,
		SigningInput: signingInput,
	}, nil
}

// StatusSignature — подпись запроса статуса: hex md5 от
// `MerchantLogin:InvoiceID:Password2`.
func StatusSignature(merchantLogin string, invoiceID int64, password2 string) string {
	src := fmt.Sprintf("%s:%d:%s", merchantLogin, invoiceID, password2)
	sum := md5.Sum([]byte(src))
	return hex.EncodeToString(sum[:])
}

// ResultSignature — ожидаемая подпись ResultURL-уведомления:
// hex md5 от `OutSum:InvId:Password2:Shp_order=<order>`.
// Суммы и InvId берутся как их прислал шлюз, без нормализации.
func ResultSignature(outSum, invID, password2, shpOrder string) string {
	src := fmt.Sprintf("%s:%s:%s:Shp_order=%s", outSum, invID, password2, shpOrder)
	sum := md5.Sum([]byte(src))
	return hex.EncodeToString(sum[:])
}

func compactJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
