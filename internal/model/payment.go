package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment statuses. A reversal moves COMPLETED payments to REFUNDED;
// there is no other transition.
const (
	PaymentCompleted = "completed"
	PaymentRefunded  = "refunded"
)

// Payment is a captured payment against a sale. Owned by the sale; mutated
// only by payment processing or by the reversal orchestrator.
type Payment struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Method         string          `gorm:"type:varchar(20);not null"` // cash | debit | credit | transfer
	AmountReceived decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status         string          `gorm:"type:varchar(20);not null;default:'completed'"`
	RefundedAt     *time.Time
	CreatedAt      time.Time
}

// Refundable reports whether the payment still holds captured money.
func (p *Payment) Refundable() bool { return p.Status == PaymentCompleted }
