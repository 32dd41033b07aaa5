package repository

import (
	"context"

	"counterdesk/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RegisterRepository interface {
	CreateSession(ctx context.Context, s *model.RegisterSession) error
	FindOpenByRegisterNo(ctx context.Context, registerNo int) (*model.RegisterSession, error)
	FindSessionByID(ctx context.Context, id uuid.UUID) (*model.RegisterSession, error)
	UpdateSession(ctx context.Context, s *model.RegisterSession) error
	CreateMovement(ctx context.Context, m *model.RegisterMovement) error
	CreateMovementTx(tx *gorm.DB, m *model.RegisterMovement) error
	ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.RegisterMovement, error)
	SumMovementsByMethod(ctx context.Context, sessionID uuid.UUID) (map[string]decimal.Decimal, error)
}

type registerRepo struct{ db *gorm.DB }

func NewRegisterRepository(db *gorm.DB) RegisterRepository { return &registerRepo{db: db} }

func (r *registerRepo) CreateSession(ctx context.Context, s *model.RegisterSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *registerRepo) FindOpenByRegisterNo(ctx context.Context, registerNo int) (*model.RegisterSession, error) {
	var s model.RegisterSession
	err := r.db.WithContext(ctx).
		Where("register_no = ? AND status = 'open'", registerNo).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *registerRepo) FindSessionByID(ctx context.Context, id uuid.UUID) (*model.RegisterSession, error) {
	var s model.RegisterSession
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *registerRepo) UpdateSession(ctx context.Context, s *model.RegisterSession) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *registerRepo) CreateMovement(ctx context.Context, m *model.RegisterMovement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *registerRepo) CreateMovementTx(tx *gorm.DB, m *model.RegisterMovement) error {
	return tx.Create(m).Error
}

func (r *registerRepo) ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.RegisterMovement, error) {
	var movements []model.RegisterMovement
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&movements).Error
	return movements, err
}

func (r *registerRepo) SumMovementsByMethod(ctx context.Context, sessionID uuid.UUID) (map[string]decimal.Decimal, error) {
	type row struct {
		Method string
		Total  decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.RegisterMovement{}).
		Select("method, COALESCE(SUM(amount), 0) AS total").
		Where("session_id = ? AND method IS NOT NULL", sessionID).
		Group("method").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sums := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		sums[r.Method] = r.Total
	}
	return sums, nil
}
