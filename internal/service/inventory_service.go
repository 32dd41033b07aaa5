package service

import (
	"context"
	"fmt"

	"counterdesk/internal/model"
	"counterdesk/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryService defines the contract for stock management.
type InventoryService interface {
	// DeductStockTx is called within a sale transaction — requires the live tx
	DeductStockTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	RecordMovementTx(tx *gorm.DB, m *model.StockMovement) error
	ManualAdjust(ctx context.Context, productID uuid.UUID, delta int, note string) error
	ListMovements(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error)
}

type inventoryService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
}

func NewInventoryService(productRepo repository.ProductRepository, movementRepo repository.StockMovementRepository) InventoryService {
	return &inventoryService{productRepo: productRepo, movementRepo: movementRepo}
}

func (s *inventoryService) DeductStockTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	return s.productRepo.UpdateStockTx(tx, productID, -qty)
}

func (s *inventoryService) RecordMovementTx(tx *gorm.DB, m *model.StockMovement) error {
	return s.movementRepo.CreateTx(tx, m)
}

// ManualAdjust applies a supervisor stock correction and records it in the
// movement ledger.
func (s *inventoryService) ManualAdjust(ctx context.Context, productID uuid.UUID, delta int, note string) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("product %s not found", productID)
	}

	return runTx(ctx, s.productRepo.DB(), func(tx *gorm.DB) error {
		if err := s.productRepo.UpdateStockTx(tx, productID, delta); err != nil {
			return err
		}
		mov := &model.StockMovement{
			ProductID:   productID,
			Type:        "manual_adjustment",
			Quantity:    delta,
			StockBefore: product.StockQty,
			StockAfter:  product.StockQty + delta,
			Note:        note,
		}
		return s.movementRepo.CreateTx(tx, mov)
	})
}

func (s *inventoryService) ListMovements(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	return s.movementRepo.ListByProduct(ctx, productID, limit)
}
