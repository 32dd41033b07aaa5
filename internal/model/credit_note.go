package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditNote documents the refund side of a cancelled sale.
// Created asynchronously by the reversal worker after a successful Execute.
// Status: "pending" | "issued" | "error"
type CreditNote struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	Number       int             `gorm:"uniqueIndex;not null"`
	RefundTotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reason       string          `gorm:"not null"`
	IssuedBy     uuid.UUID       `gorm:"type:uuid;not null"`
	Status       string          `gorm:"type:varchar(20);not null;default:'pending'"`
	// PDFPath is relative to PDF_STORAGE_PATH
	PDFPath   *string
	LastError *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
