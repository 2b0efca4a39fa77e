package domain

import (
	"errors"
	"fmt"
)

var ErrPaymentNotFound = errors.New("payment not found")

// ConfigurationError — не заданы обязательные реквизиты мерчанта.
// Операция прерывается до любых сетевых вызовов.
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s is not set", e.Missing)
}

// GatewayError — сбой при обращении к платёжному шлюзу: транспорт, HTTP-статус
// или неразбираемый ответ. Message несёт текст провайдера дословно, если он был.
type GatewayError struct {
	Op      string
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway error (%s): %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("gateway error (%s): %s", e.Op, e.Message)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// PersistenceError — локальная книга платежей недоступна.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NotificationError — сбой доставки уведомления. Только логируется,
// никогда не прерывает основную операцию.
type NotificationError struct {
	Op  string
	Err error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification error (%s): %v", e.Op, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }
