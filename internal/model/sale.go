package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale statuses. CANCELLED is terminal — no transition leaves it.
const (
	SalePending        = "pending"
	SalePartialPayment = "partial_payment"
	SalePaid           = "paid"
	SaleCompleted      = "completed"
	SaleCancelled      = "cancelled"
)

// saleTransitions enumerates the allowed status moves. Anything not listed
// here is rejected by CanTransitionTo.
var saleTransitions = map[string][]string{
	SalePending:        {SalePartialPayment, SalePaid, SaleCancelled},
	SalePartialPayment: {SalePaid, SaleCancelled},
	SalePaid:           {SaleCompleted, SaleCancelled},
	SaleCompleted:      {SaleCancelled},
	SaleCancelled:      {},
}

type Sale struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TicketNumber      int             `gorm:"uniqueIndex;not null"`
	RegisterSessionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null"`
	ClientID          *uuid.UUID      `gorm:"type:uuid;index"`
	ClientEmail       *string
	Subtotal          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountTotal     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TaxTotal          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status            string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	CancelReason      *string
	CancelledBy       *uuid.UUID `gorm:"type:uuid"`
	CancelledAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Items    []SaleItem `gorm:"foreignKey:SaleID"`
	Payments []Payment  `gorm:"foreignKey:SaleID"`
	User     *User      `gorm:"foreignKey:UserID"`
}

// CanTransitionTo checks the sale state machine.
func (s *Sale) CanTransitionTo(status string) bool {
	for _, next := range saleTransitions[s.Status] {
		if next == status {
			return true
		}
	}
	return false
}

// IsCancelled reports whether the sale reached its terminal state.
func (s *Sale) IsCancelled() bool { return s.Status == SaleCancelled }

// SaleItem is one line of a sale. UnitPrice is the catalogue price at sale
// time; FinalPrice is the price after the (optional) adjustment was applied.
type SaleItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity   int             `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	FinalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// AdjustmentKind: "" | "percentage" | "fixed_amount" | "direct_price"
	AdjustmentKind   string          `gorm:"type:varchar(20);not null;default:''"`
	AdjustmentValue  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Markup           bool            `gorm:"not null;default:false"`
	DiscountReasonID *string         `gorm:"type:varchar(50)"`
	Justification    *string
	AuthorizedBy     *uuid.UUID      `gorm:"type:uuid"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// Adjusted reports whether this line carries a price adjustment.
func (i *SaleItem) Adjusted() bool { return i.AdjustmentKind != "" }
