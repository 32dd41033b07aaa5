package repository

import (
	"context"

	"counterdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreditNoteRepository interface {
	Create(ctx context.Context, n *model.CreditNote) error
	FindBySaleID(ctx context.Context, saleID uuid.UUID) (*model.CreditNote, error)
	NextNumber(ctx context.Context) (int, error)
	Update(ctx context.Context, n *model.CreditNote) error
}

type creditNoteRepo struct{ db *gorm.DB }

func NewCreditNoteRepository(db *gorm.DB) CreditNoteRepository { return &creditNoteRepo{db: db} }

func (r *creditNoteRepo) Create(ctx context.Context, n *model.CreditNote) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *creditNoteRepo) FindBySaleID(ctx context.Context, saleID uuid.UUID) (*model.CreditNote, error) {
	var n model.CreditNote
	err := r.db.WithContext(ctx).Where("sale_id = ?", saleID).First(&n).Error
	return &n, err
}

func (r *creditNoteRepo) NextNumber(ctx context.Context) (int, error) {
	var num int
	err := r.db.WithContext(ctx).Raw("SELECT nextval('credit_notes_number_seq')").Scan(&num).Error
	return num, err
}

func (r *creditNoteRepo) Update(ctx context.Context, n *model.CreditNote) error {
	return r.db.WithContext(ctx).Save(n).Error
}
