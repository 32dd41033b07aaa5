package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product kinds. Physical products carry stock that a sale deducts and a
// reversal restores. Reservable products (court slots, appointments) are
// backed by a Reservation instead of stock. Services carry neither.
const (
	ProductPhysical   = "physical"
	ProductReservable = "reservable"
	ProductService    = "service"
)

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code        string    `gorm:"uniqueIndex;not null"`
	Name        string    `gorm:"index;not null"`
	Description *string
	Kind        string          `gorm:"type:varchar(20);not null;default:'physical'"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SalePrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StockQty    int             `gorm:"not null;default:0"`
	MinStock    int             `gorm:"not null;default:5"`
	Active      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TracksStock reports whether selling this product deducts stock
// (and whether a reversal must restore it).
func (p *Product) TracksStock() bool { return p.Kind == ProductPhysical }

// ReservationBacked reports whether selling this product creates a
// reservation hold instead of a stock deduction.
func (p *Product) ReservationBacked() bool { return p.Kind == ProductReservable }
