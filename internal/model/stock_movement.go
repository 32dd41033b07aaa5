package model

import (
	"time"

	"github.com/google/uuid"
)

// StockMovement records every stock change on a product.
// Created automatically on sale, manual adjustment, or reversal.
//
// The (sale_id, product_id, type) tuple doubles as the idempotency check for
// reversal restores: a retried reversal skips products that already have a
// "reversal_restore" movement for the sale.
type StockMovement struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Type        string    `gorm:"not null"` // "sale" | "manual_adjustment" | "reversal_restore"
	Quantity    int       `gorm:"not null"` // positive = in, negative = out
	StockBefore int       `gorm:"not null"`
	StockAfter  int       `gorm:"not null"`
	Note        string
	SaleID      *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TableName overrides GORM's default pluralization.
func (StockMovement) TableName() string { return "stock_movements" }
