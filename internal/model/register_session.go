package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterSession represents the lifecycle of a cash drawer session.
// Status: "open" | "closed"
type RegisterSession struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RegisterNo    int              `gorm:"not null;index"`
	UserID        uuid.UUID        `gorm:"type:uuid;not null"`
	OpeningFloat  decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	ExpectedTotal *decimal.Decimal `gorm:"type:decimal(12,2)"`
	DeclaredTotal *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Status        string           `gorm:"type:varchar(20);not null;default:'open'"`
	Notes         *string
	OpenedAt      time.Time
	ClosedAt      *time.Time

	Movements []RegisterMovement `gorm:"foreignKey:SessionID"`
}

// RegisterMovement is an immutable event in the cash drawer ledger.
// Type: "sale" | "manual_in" | "manual_out" | "reversal"
// Movements are never modified or deleted — reversals create inverse entries.
type RegisterMovement struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Type        string          `gorm:"type:varchar(20);not null"`
	Method      *string         `gorm:"type:varchar(20)"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description string          `gorm:"not null"`
	// ReferenceID links to the originating Sale when applicable
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
}
