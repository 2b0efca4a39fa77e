package mappers

import (
	"github.com/bonjour-pay/invoice-service/internal/domain"
	"github.com/bonjour-pay/invoice-service/internal/infrastructure/sqlite/models"
)

func ToDomainPayment(model *models.PaymentModel) *domain.PaymentAttempt {
	return &domain.PaymentAttempt{
		ID:          model.ID,
		CreatedAt:   model.CreatedAt,
		OrderNumber: model.OrderNumber,
		Services:    model.Services,
		Amount:      model.Amount,
		PaymentURL:  model.PaymentURL,
		Status:      model.Status,
		InvoiceID:   model.InvoiceID,
		TgUserID:    model.TgUserID,
		TgUsername:  model.TgUsername,
	}
}

func ToGORMPayment(attempt *domain.PaymentAttempt) *models.PaymentModel {
	return &models.PaymentModel{
		ID:          attempt.ID,
		CreatedAt:   attempt.CreatedAt,
		OrderNumber: attempt.OrderNumber,
		Services:    attempt.Services,
		Amount:      attempt.Amount,
		PaymentURL:  attempt.PaymentURL,
		Status:      attempt.Status,
		InvoiceID:   attempt.InvoiceID,
		TgUserID:    attempt.TgUserID,
		TgUsername:  attempt.TgUsername,
	}
}
