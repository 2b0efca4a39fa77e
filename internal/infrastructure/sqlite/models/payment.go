package models

import (
	"time"

	"github.com/bonjour-pay/invoice-service/internal/domain"
)

type PaymentModel struct {
	ID          int64                `gorm:"primaryKey;autoIncrement"`
	CreatedAt   time.Time            `gorm:"index:idx_created_at;not null"`
	TgUserID    int64
	TgUsername  string
	OrderNumber string               `gorm:"index:idx_order_number;not null"`
	Services    string               `gorm:"not null"`
	Amount      float64              `gorm:"not null"`
	PaymentURL  string               `gorm:"not null"`
	Status      domain.PaymentStatus `gorm:"index:idx_status;not null"`
	InvoiceID   *int64
}

func (PaymentModel) TableName() string { return "payments" }
