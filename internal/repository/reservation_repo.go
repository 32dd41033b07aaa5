package repository

import (
	"context"

	"counterdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReservationRepository interface {
	CreateTx(tx *gorm.DB, r *model.Reservation) error
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]model.Reservation, error)
	// SetStatusTx transitions a reservation only when it is still confirmed.
	// Returns rows affected: 0 means the hold was already handled.
	SetStatusTx(tx *gorm.DB, id uuid.UUID, status string) (int64, error)
}

type reservationRepo struct{ db *gorm.DB }

func NewReservationRepository(db *gorm.DB) ReservationRepository { return &reservationRepo{db: db} }

func (r *reservationRepo) CreateTx(tx *gorm.DB, res *model.Reservation) error {
	return tx.Create(res).Error
}

func (r *reservationRepo) ListBySale(ctx context.Context, saleID uuid.UUID) ([]model.Reservation, error) {
	var reservations []model.Reservation
	err := r.db.WithContext(ctx).Where("sale_id = ?", saleID).Find(&reservations).Error
	return reservations, err
}

func (r *reservationRepo) SetStatusTx(tx *gorm.DB, id uuid.UUID, status string) (int64, error) {
	res := tx.Model(&model.Reservation{}).
		Where("id = ? AND status = ?", id, model.ReservationConfirmed).
		Update("status", status)
	return res.RowsAffected, res.Error
}
