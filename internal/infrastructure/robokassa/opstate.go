package robokassa

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/bonjour-pay/invoice-service/internal/domain"
)

// Коды состояния OpStateExt в человеко-читаемый статус.
var stateDescriptions = map[string]string{
	"5":   "ожидает оплаты",
	"10":  "отменён, деньги не получены",
	"20":  "средства заморожены (HOLD)",
	"50":  "деньги получены, зачисляются",
	"60":  "отказ в зачислении / возврат",
	"80":  "исполнение приостановлено",
	"100": "успешно оплачено",
}

// StateDescription тотальна: неизвестный или пустой код — "статус не определён".
func StateDescription(stateCode string) string {
	if text, ok := stateDescriptions[stateCode]; ok {
		return text
	}
	return "статус не определён"
}

// ParseOpStateXML разбирает ответ OpStateExt. Тело может начинаться с BOM
// и нести namespace-префиксы — обе особенности срезаются до разбора.
func ParseOpStateXML(raw []byte) (*domain.PaymentState, error) {
	cleaned := stripBOM(raw)
	if i := bytes.IndexByte(cleaned, '<'); i > 0 {
		cleaned = cleaned[i:]
	}

	state := &domain.PaymentState{}
	fields := map[string]*string{
		"Result/Code":            &state.ResultCode,
		"Result/Description":     &state.ResultDescription,
		"State/Code":             &state.StateCode,
		"State/RequestDate":      &state.RequestDate,
		"State/StateDate":        &state.StateDate,
		"Info/IncCurrLabel":      &state.IncCurrLabel,
		"Info/IncSum":            &state.IncSum,
		"Info/IncAccount":        &state.IncAccount,
		"Info/PaymentMethodCode": &state.PaymentMethodCode,
		"Info/OutCurrLabel":      &state.OutCurrLabel,
		"Info/OutSum":            &state.OutSum,
		"Info/OpKey":             &state.OpKey,
	}

	// Обход токенов по локальным именам: namespace игнорируется,
	// путь сверяется по двум последним сегментам.
	decoder := xml.NewDecoder(bytes.NewReader(cleaned))
	var path []string
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			path = append(path, t.Name.Local)
		case xml.EndElement:
			path = path[:len(path)-1]
		case xml.CharData:
			if len(path) < 2 {
				continue
			}
			key := path[len(path)-2] + "/" + path[len(path)-1]
			dst, ok := fields[key]
			if !ok {
				continue
			}
			if value := strings.TrimSpace(string(t)); value != "" {
				*dst = value
			}
		}
	}

	return state, nil
}

func stripBOM(raw []byte) []byte {
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	// BOM, перекодированный как текст (ï»¿) — встречается у шлюза.
	raw = bytes.TrimPrefix(raw, []byte("ï»¿"))
	return bytes.TrimSpace(raw)
}
