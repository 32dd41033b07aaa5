package tests

// Shared in-memory repository stubs. Services run with a nil *gorm.DB, so the
// transaction helper calls the work function directly and every Tx method
// receives nil — the stubs ignore the tx argument.

import (
	"context"
	"errors"
	"time"

	"counterdesk/internal/dto"
	"counterdesk/internal/model"
	"counterdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Sale repo ─────────────────────────────────────────────────────────────────

type stubSaleRepo struct {
	sales     map[uuid.UUID]*model.Sale
	ticketSeq int
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *stubSaleRepo) Create(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for i := range s.Items {
		if s.Items[i].ID == uuid.Nil {
			s.Items[i].ID = uuid.New()
		}
		s.Items[i].SaleID = s.ID
	}
	s.CreatedAt = time.Now()
	r.sales[s.ID] = s
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return s, nil
}

func (r *stubSaleRepo) NextTicketNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.ticketSeq++
	return r.ticketSeq, nil
}

func (r *stubSaleRepo) List(_ context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if filter.Status != "" && filter.Status != "all" && s.Status != filter.Status {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	s, ok := r.sales[id]
	if !ok {
		return errors.New("record not found")
	}
	s.Status = status
	return nil
}

func (r *stubSaleRepo) CancelTx(_ *gorm.DB, id uuid.UUID, reason string, actor uuid.UUID) (int64, error) {
	s, ok := r.sales[id]
	if !ok || s.Status == model.SaleCancelled {
		return 0, nil
	}
	now := time.Now()
	s.Status = model.SaleCancelled
	s.CancelReason = &reason
	s.CancelledBy = &actor
	s.CancelledAt = &now
	return 1, nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

// ── Product repo ──────────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func seedProduct(r *stubProductRepo, name, code, kind string, price float64, stock int) *model.Product {
	p := &model.Product{
		ID:        uuid.New(),
		Code:      code,
		Name:      name,
		Kind:      kind,
		SalePrice: decimal.NewFromFloat(price),
		StockQty:  stock,
		Active:    true,
	}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return p, nil
}

func (r *stubProductRepo) FindByCode(_ context.Context, code string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Code == code && p.Active {
			return p, nil
		}
	}
	return nil, errors.New("record not found")
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.products[id]
	if !ok {
		return errors.New("record not found")
	}
	p.StockQty += delta
	return nil
}

func (r *stubProductRepo) AdjustStock(_ context.Context, id uuid.UUID, delta int) error {
	return r.UpdateStockTx(nil, id, delta)
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── Payment repo ──────────────────────────────────────────────────────────────

type stubPaymentRepo struct {
	payments map[uuid.UUID]*model.Payment
}

func newStubPaymentRepo() *stubPaymentRepo {
	return &stubPaymentRepo{payments: make(map[uuid.UUID]*model.Payment)}
}

func (r *stubPaymentRepo) CreateTx(_ *gorm.DB, p *model.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.payments[p.ID] = p
	return nil
}

func (r *stubPaymentRepo) ListBySale(_ context.Context, saleID uuid.UUID) ([]model.Payment, error) {
	var out []model.Payment
	for _, p := range r.payments {
		if p.SaleID == saleID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPaymentRepo) RefundTx(_ *gorm.DB, id uuid.UUID) (int64, error) {
	p, ok := r.payments[id]
	if !ok || p.Status != model.PaymentCompleted {
		return 0, nil
	}
	now := time.Now()
	p.Status = model.PaymentRefunded
	p.RefundedAt = &now
	return 1, nil
}

var _ repository.PaymentRepository = (*stubPaymentRepo)(nil)

// ── Reservation repo ──────────────────────────────────────────────────────────

type stubReservationRepo struct {
	reservations map[uuid.UUID]*model.Reservation
}

func newStubReservationRepo() *stubReservationRepo {
	return &stubReservationRepo{reservations: make(map[uuid.UUID]*model.Reservation)}
}

func (r *stubReservationRepo) CreateTx(_ *gorm.DB, res *model.Reservation) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	r.reservations[res.ID] = res
	return nil
}

func (r *stubReservationRepo) ListBySale(_ context.Context, saleID uuid.UUID) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, res := range r.reservations {
		if res.SaleID == saleID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *stubReservationRepo) SetStatusTx(_ *gorm.DB, id uuid.UUID, status string) (int64, error) {
	res, ok := r.reservations[id]
	if !ok || res.Status != model.ReservationConfirmed {
		return 0, nil
	}
	res.Status = status
	return 1, nil
}

var _ repository.ReservationRepository = (*stubReservationRepo)(nil)

// ── Stock movement repo ───────────────────────────────────────────────────────

type stubMovementRepo struct {
	movements []model.StockMovement
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) ListByProduct(_ context.Context, productID uuid.UUID, _ int) ([]model.StockMovement, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMovementRepo) ExistsForSaleTx(_ *gorm.DB, saleID, productID uuid.UUID, movType string) (bool, error) {
	for _, m := range r.movements {
		if m.SaleID != nil && *m.SaleID == saleID && m.ProductID == productID && m.Type == movType {
			return true, nil
		}
	}
	return false, nil
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

// ── Register repo ─────────────────────────────────────────────────────────────

type stubRegisterRepo struct {
	sessions  map[uuid.UUID]*model.RegisterSession
	movements []model.RegisterMovement
}

func newStubRegisterRepo() *stubRegisterRepo {
	return &stubRegisterRepo{sessions: make(map[uuid.UUID]*model.RegisterSession)}
}

func seedOpenSession(r *stubRegisterRepo) *model.RegisterSession {
	s := &model.RegisterSession{
		ID:           uuid.New(),
		RegisterNo:   1,
		UserID:       uuid.New(),
		OpeningFloat: decimal.NewFromInt(1000),
		Status:       "open",
		OpenedAt:     time.Now(),
	}
	r.sessions[s.ID] = s
	return s
}

func (r *stubRegisterRepo) CreateSession(_ context.Context, s *model.RegisterSession) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *stubRegisterRepo) FindOpenByRegisterNo(_ context.Context, registerNo int) (*model.RegisterSession, error) {
	for _, s := range r.sessions {
		if s.RegisterNo == registerNo && s.Status == "open" {
			return s, nil
		}
	}
	return nil, errors.New("record not found")
}

func (r *stubRegisterRepo) FindSessionByID(_ context.Context, id uuid.UUID) (*model.RegisterSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return s, nil
}

func (r *stubRegisterRepo) UpdateSession(_ context.Context, s *model.RegisterSession) error {
	r.sessions[s.ID] = s
	return nil
}

func (r *stubRegisterRepo) CreateMovement(_ context.Context, m *model.RegisterMovement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubRegisterRepo) CreateMovementTx(_ *gorm.DB, m *model.RegisterMovement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubRegisterRepo) ListMovements(_ context.Context, sessionID uuid.UUID) ([]model.RegisterMovement, error) {
	var out []model.RegisterMovement
	for _, m := range r.movements {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubRegisterRepo) SumMovementsByMethod(_ context.Context, sessionID uuid.UUID) (map[string]decimal.Decimal, error) {
	sums := make(map[string]decimal.Decimal)
	for _, m := range r.movements {
		if m.SessionID != sessionID || m.Method == nil {
			continue
		}
		sums[*m.Method] = sums[*m.Method].Add(m.Amount)
	}
	return sums, nil
}

var _ repository.RegisterRepository = (*stubRegisterRepo)(nil)
