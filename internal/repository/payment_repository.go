package repository

import (
	"context"

	"github.com/bookscope/bookscope/internal/models"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *PaymentRepository) Save(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *PaymentRepository) FindActiveByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Scopes(active).
		Preload("User", "deleted_at IS NULL").
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindForUser looks up one of a user's payments; other users' payments
// are invisible through it.
func (r *PaymentRepository) FindForUser(ctx context.Context, id, userID uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Scopes(active).
		Where("user_id = ?", userID).
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) FindByStripeID(ctx context.Context, stripePaymentID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Scopes(active).
		Preload("User", "deleted_at IS NULL").
		Where("stripe_payment_id = ?", stripePaymentID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListForUser returns a user's payments, newest first.
func (r *PaymentRepository) ListForUser(ctx context.Context, userID uint, skip, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).Scopes(active).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) ListByStatus(ctx context.Context, status models.PaymentStatus, skip, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).Scopes(active).
		Preload("User", "deleted_at IS NULL").
		Where("status = ?", status).
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Find(&payments).Error
	return payments, err
}

// CountForUser counts a user's payments, optionally narrowed to one status.
func (r *PaymentRepository) CountForUser(ctx context.Context, userID uint, status *models.PaymentStatus) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{}).Scopes(active).Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var n int64
	err := query.Count(&n).Error
	return n, err
}
