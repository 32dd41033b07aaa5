package model

import (
	"time"

	"github.com/google/uuid"
)

// Reservation statuses and kinds.
//
// CONFIRMED holds are open. A reversal moves a dedicated hold (created for
// this sale alone) to REVERTED and a shared slot hold to RELEASED. Both are
// terminal for the hold.
const (
	ReservationConfirmed = "confirmed"
	ReservationReverted  = "reverted"
	ReservationReleased  = "released"

	ReservationDedicated = "dedicated"
	ReservationShared    = "shared"
)

type Reservation struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	SaleItemID *uuid.UUID `gorm:"type:uuid"`
	ProductID  uuid.UUID  `gorm:"type:uuid;not null"`
	Kind       string     `gorm:"type:varchar(20);not null;default:'dedicated'"`
	Status     string     `gorm:"type:varchar(20);not null;default:'confirmed'"`
	StartsAt   *time.Time
	EndsAt     *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Open reports whether the hold is still active.
func (r *Reservation) Open() bool { return r.Status == ReservationConfirmed }

// ReversalStatus returns the status a reversal must move this hold to:
// dedicated holds are reverted, shared slot holds are released back.
func (r *Reservation) ReversalStatus() string {
	if r.Kind == ReservationShared {
		return ReservationReleased
	}
	return ReservationReverted
}
