package repository

import (
	"context"
	"time"

	"counterdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	CreateTx(tx *gorm.DB, p *model.Payment) error
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]model.Payment, error)
	// RefundTx marks a payment refunded only when it is still completed.
	// Returns rows affected so callers can distinguish "refunded now" from
	// "already refunded by an earlier attempt".
	RefundTx(tx *gorm.DB, id uuid.UUID) (int64, error)
}

type paymentRepo struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) PaymentRepository { return &paymentRepo{db: db} }

func (r *paymentRepo) CreateTx(tx *gorm.DB, p *model.Payment) error {
	return tx.Create(p).Error
}

func (r *paymentRepo) ListBySale(ctx context.Context, saleID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).Where("sale_id = ?", saleID).Order("created_at ASC").Find(&payments).Error
	return payments, err
}

func (r *paymentRepo) RefundTx(tx *gorm.DB, id uuid.UUID) (int64, error) {
	now := time.Now()
	res := tx.Model(&model.Payment{}).
		Where("id = ? AND status = ?", id, model.PaymentCompleted).
		Updates(map[string]interface{}{
			"status":      model.PaymentRefunded,
			"refunded_at": now,
		})
	return res.RowsAffected, res.Error
}
