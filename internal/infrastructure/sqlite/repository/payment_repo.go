package repository

import (
	"errors"
	"time"

	"github.com/bonjour-pay/invoice-service/internal/domain"
	"github.com/bonjour-pay/invoice-service/internal/infrastructure/sqlite/mappers"
	"github.com/bonjour-pay/invoice-service/internal/infrastructure/sqlite/models"
	"gorm.io/gorm"
)

type DefaultPaymentRepository struct {
	DB *gorm.DB
}

func NewDefaultPaymentRepository(db *gorm.DB) *DefaultPaymentRepository {
	return &DefaultPaymentRepository{DB: db}
}

func (r *DefaultPaymentRepository) Insert(attempt *domain.PaymentAttempt) error {
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}
	if attempt.Status == "" {
		attempt.Status = domain.StatusCreated
	}

	paymentModel := mappers.ToGORMPayment(attempt)
	if err := r.DB.Create(paymentModel).Error; err != nil {
		return &domain.PersistenceError{Op: "insert payment", Err: err}
	}
	attempt.ID = paymentModel.ID
	return nil
}

// MarkPaid затрагивает только ещё не оплаченные записи заказа, поэтому
// повторное уведомление возвращает 0 и не даёт побочных эффектов.
func (r *DefaultPaymentRepository) MarkPaid(orderNumber string) (int64, error) {
	result := r.DB.Model(&models.PaymentModel{}).
		Where("order_number = ? AND status <> ?", orderNumber, domain.StatusPaid).
		Update("status", domain.StatusPaid)
	if result.Error != nil {
		return 0, &domain.PersistenceError{Op: "mark paid", Err: result.Error}
	}
	return result.RowsAffected, nil
}

func (r *DefaultPaymentRepository) MostRecent(orderNumber string, limit int) ([]*domain.PaymentAttempt, error) {
	var paymentModels []models.PaymentModel
	err := r.DB.
		Where("order_number = ?", orderNumber).
		Order("id DESC").
		Limit(limit).
		Find(&paymentModels).Error
	if err != nil {
		return nil, &domain.PersistenceError{Op: "most recent payments", Err: err}
	}

	attempts := make([]*domain.PaymentAttempt, 0, len(paymentModels))
	for i := range paymentModels {
		attempts = append(attempts, mappers.ToDomainPayment(&paymentModels[i]))
	}
	return attempts, nil
}

func (r *DefaultPaymentRepository) Last(orderNumber string) (*domain.PaymentAttempt, error) {
	var paymentModel models.PaymentModel
	err := r.DB.
		Where("order_number = ?", orderNumber).
		Order("id DESC").
		First(&paymentModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, &domain.PersistenceError{Op: "last payment", Err: err}
	}
	return mappers.ToDomainPayment(&paymentModel), nil
}

func (r *DefaultPaymentRepository) All(filterSubstring string) ([]*domain.PaymentAttempt, error) {
	query := r.DB.Model(&models.PaymentModel{}).Order("id DESC")
	if filterSubstring != "" {
		query = query.Where("order_number LIKE ?", "%"+filterSubstring+"%")
	}

	var paymentModels []models.PaymentModel
	if err := query.Find(&paymentModels).Error; err != nil {
		return nil, &domain.PersistenceError{Op: "list payments", Err: err}
	}

	attempts := make([]*domain.PaymentAttempt, 0, len(paymentModels))
	for i := range paymentModels {
		attempts = append(attempts, mappers.ToDomainPayment(&paymentModels[i]))
	}
	return attempts, nil
}
