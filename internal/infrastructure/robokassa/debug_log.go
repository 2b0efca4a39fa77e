package robokassa

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DebugLog — append-only журнал обращений к Invoice API: заголовок и payload
// токена, подписываемая строка, сам токен и сырой ответ. Сбои записи
// проглатываются: журнал никогда не прерывает операцию.
type DebugLog struct {
	path string
	mu   sync.Mutex
}

func NewDebugLog(path string) *DebugLog {
	return &DebugLog{path: path}
}

func (l *DebugLog) AppendInvoice(token *SignedToken, httpBody string, statusCode int, responseBody []byte) {
	if l == nil || l.path == "" {
		return
	}

	ts := time.Now().Format("2006-01-02 15:04:05")
	requestID := uuid.New().String()

	var lines []string
	lines = append(lines, strings.Repeat("=", 80))
	lines = append(lines, fmt.Sprintf("[%s] Invoice debug %s", ts, requestID))
	lines = append(lines, "=== REQUEST TO INVOICE API ===")
	lines = append(lines, "Headers:")
	lines = append(lines, `{"Content-Type": "application/json; charset=utf-8"}`)
	lines = append(lines, "Header JSON:")
	lines = append(lines, indented(token.HeaderJSON))
	lines = append(lines, "Payload JSON:")
	lines = append(lines, indented(token.PayloadJSON))
	lines = append(lines, "Signing input (header.payload):")
	lines = append(lines, token.SigningInput)
	lines = append(lines, "JWT token:")
	lines = append(lines, token.Token)
	lines = append(lines, "HTTP body:")
	lines = append(lines, httpBody)
	lines = append(lines, "")
	lines = append(lines, strings.Repeat("=", 80))
	lines = append(lines, fmt.Sprintf("[%s] Invoice debug %s", ts, requestID))
	lines = append(lines, "=== RESPONSE ===")
	lines = append(lines, fmt.Sprintf("Status: %d", statusCode))
	lines = append(lines, indented(responseBody))
	lines = append(lines, "")

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()
	f.WriteString(strings.Join(lines, "\n") + "\n")
}

// indented красиво печатает JSON, а не-JSON отдаёт как есть.
func indented(raw []byte) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(pretty)
}
