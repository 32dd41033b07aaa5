package repository

import (
	"context"

	"counterdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockMovementRepository interface {
	CreateTx(tx *gorm.DB, m *model.StockMovement) error
	ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error)
	// ExistsForSaleTx reports whether a movement of the given type was already
	// recorded for this sale+product pair. The reversal orchestrator uses it
	// to skip restores a previous (partially failed) attempt already applied.
	ExistsForSaleTx(tx *gorm.DB, saleID, productID uuid.UUID, movType string) (bool, error)
}

type stockMovementRepo struct{ db *gorm.DB }

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) CreateTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *stockMovementRepo) ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	if limit < 1 {
		limit = 100
	}
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").Limit(limit).
		Find(&movements).Error
	return movements, err
}

func (r *stockMovementRepo) ExistsForSaleTx(tx *gorm.DB, saleID, productID uuid.UUID, movType string) (bool, error) {
	var count int64
	err := tx.Model(&model.StockMovement{}).
		Where("sale_id = ? AND product_id = ? AND type = ?", saleID, productID, movType).
		Count(&count).Error
	return count > 0, err
}
