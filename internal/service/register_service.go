package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"counterdesk/internal/dto"
	"counterdesk/internal/model"
	"counterdesk/internal/repository"

	"github.com/google/uuid"
)

type RegisterService interface {
	Open(ctx context.Context, userID uuid.UUID, req dto.OpenRegisterRequest) (*dto.RegisterReportResponse, error)
	RecordMovement(ctx context.Context, req dto.ManualMovementRequest) error
	Close(ctx context.Context, req dto.CloseRegisterRequest) (*dto.RegisterReportResponse, error)
	Report(ctx context.Context, sessionID uuid.UUID) (*dto.RegisterReportResponse, error)
	// FindOpenSession is called by SaleService to validate an open session
	FindOpenSession(ctx context.Context, sessionID uuid.UUID) error
}

type registerService struct {
	repo repository.RegisterRepository
}

func NewRegisterService(repo repository.RegisterRepository) RegisterService {
	return &registerService{repo: repo}
}

// ── Open ──────────────────────────────────────────────────────────────────────

func (s *registerService) Open(ctx context.Context, userID uuid.UUID, req dto.OpenRegisterRequest) (*dto.RegisterReportResponse, error) {
	// Guard: no duplicate open session per register
	if existing, err := s.repo.FindOpenByRegisterNo(ctx, req.RegisterNo); err == nil && existing != nil {
		return nil, errors.New("register already has an open session")
	}

	session := &model.RegisterSession{
		RegisterNo:   req.RegisterNo,
		UserID:       userID,
		OpeningFloat: req.OpeningFloat,
		Status:       "open",
		OpenedAt:     time.Now(),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return s.buildReport(ctx, session)
}

// ── RecordMovement ────────────────────────────────────────────────────────────
// Manual cash in / out. Movements are immutable — no Update/Delete.

func (s *registerService) RecordMovement(ctx context.Context, req dto.ManualMovementRequest) error {
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return fmt.Errorf("invalid session_id: %w", err)
	}
	if err := s.FindOpenSession(ctx, sessionID); err != nil {
		return err
	}

	amount := req.Amount
	if req.Type == "manual_out" {
		amount = req.Amount.Neg()
	}
	method := req.Method
	mov := &model.RegisterMovement{
		SessionID:   sessionID,
		Type:        req.Type,
		Method:      &method,
		Amount:      amount,
		Description: req.Description,
	}
	return s.repo.CreateMovement(ctx, mov)
}

// ── Close ─────────────────────────────────────────────────────────────────────
// Blind count: the expected total is computed only after the declaration.

func (s *registerService) Close(ctx context.Context, req dto.CloseRegisterRequest) (*dto.RegisterReportResponse, error) {
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session_id: %w", err)
	}

	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, errors.New("register session not found")
	}
	if session.Status != "open" {
		return nil, ErrSessionClosed
	}

	sums, err := s.repo.SumMovementsByMethod(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	expected := session.OpeningFloat
	for _, v := range sums {
		expected = expected.Add(v)
	}

	now := time.Now()
	session.Status = "closed"
	session.ExpectedTotal = &expected
	session.DeclaredTotal = &req.DeclaredTotal
	session.Notes = req.Notes
	session.ClosedAt = &now
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}

	return s.buildReport(ctx, session)
}

func (s *registerService) Report(ctx context.Context, sessionID uuid.UUID) (*dto.RegisterReportResponse, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, errors.New("register session not found")
	}
	return s.buildReport(ctx, session)
}

func (s *registerService) FindOpenSession(ctx context.Context, sessionID uuid.UUID) error {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil || session.Status != "open" {
		return ErrNoOpenSession
	}
	return nil
}

func (s *registerService) buildReport(ctx context.Context, session *model.RegisterSession) (*dto.RegisterReportResponse, error) {
	movements, err := s.repo.ListMovements(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	report := &dto.RegisterReportResponse{
		SessionID:     session.ID.String(),
		RegisterNo:    session.RegisterNo,
		Status:        session.Status,
		OpeningFloat:  session.OpeningFloat,
		ExpectedTotal: session.ExpectedTotal,
		DeclaredTotal: session.DeclaredTotal,
	}
	for _, m := range movements {
		report.Movements = append(report.Movements, dto.RegisterMovementResponse{
			Type:        m.Type,
			Method:      m.Method,
			Amount:      m.Amount,
			Description: m.Description,
		})
	}
	return report, nil
}
