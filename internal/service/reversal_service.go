package service

import (
	"context"
	"fmt"
	"strings"

	"counterdesk/internal/dto"
	"counterdesk/internal/model"
	"counterdesk/internal/repository"
	"counterdesk/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReversalService is the two-phase sale reversal orchestrator.
//
// Preview is a pure read: it reports everything a cancellation would touch
// (stock restores, reservation transitions, payment refunds) and is
// recomputed fresh on every call. Execute re-derives truth from current
// state — it never trusts a preview — and applies the compensating actions
// in a fixed order: stock → reservations → payments → sale status. The sale
// status write is a compare-and-set and acts as the commit marker; every
// earlier step checks "already applied" so a retry after a partial failure
// never double-restores stock or double-refunds a payment.
type ReversalService interface {
	Preview(ctx context.Context, saleID uuid.UUID) (*dto.ReversalPreviewResponse, error)
	Execute(ctx context.Context, saleID, actor uuid.UUID, reason string) (*dto.ReversalResultResponse, error)
}

type reversalService struct {
	saleRepo        repository.SaleRepository
	productRepo     repository.ProductRepository
	paymentRepo     repository.PaymentRepository
	reservationRepo repository.ReservationRepository
	movementRepo    repository.StockMovementRepository
	registerRepo    repository.RegisterRepository
	dispatcher      *worker.Dispatcher
}

func NewReversalService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	paymentRepo repository.PaymentRepository,
	reservationRepo repository.ReservationRepository,
	movementRepo repository.StockMovementRepository,
	registerRepo repository.RegisterRepository,
	dispatcher *worker.Dispatcher,
) ReversalService {
	return &reversalService{
		saleRepo:        saleRepo,
		productRepo:     productRepo,
		paymentRepo:     paymentRepo,
		reservationRepo: reservationRepo,
		movementRepo:    movementRepo,
		registerRepo:    registerRepo,
		dispatcher:      dispatcher,
	}
}

// ── Preview ───────────────────────────────────────────────────────────────────

func (s *reversalService) Preview(ctx context.Context, saleID uuid.UUID) (*dto.ReversalPreviewResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, ErrSaleNotFound
	}

	reservations, err := s.reservationRepo.ListBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}

	openBySaleItem := make(map[uuid.UUID]bool)
	openByProduct := make(map[uuid.UUID]bool)
	for _, r := range reservations {
		if !r.Open() {
			continue
		}
		if r.SaleItemID != nil {
			openBySaleItem[*r.SaleItemID] = true
		}
		openByProduct[r.ProductID] = true
	}

	preview := &dto.ReversalPreviewResponse{Sale: saleToResponse(sale)}

	for _, item := range sale.Items {
		product := item.Product
		if product == nil {
			product, err = s.productRepo.FindByID(ctx, item.ProductID)
			if err != nil {
				return nil, fmt.Errorf("product %s: %w", item.ProductID, err)
			}
		}
		impact := dto.ReversalProductImpact{
			ProductID:        item.ProductID.String(),
			Product:          product.Name,
			Quantity:         item.Quantity,
			WillRestoreStock: product.TracksStock(),
			WillRevertReserve: product.ReservationBacked() &&
				(openBySaleItem[item.ID] || openByProduct[item.ProductID]),
		}
		preview.Products = append(preview.Products, impact)
		if impact.WillRestoreStock {
			preview.Summary.StockMovements++
		}
	}

	for _, r := range reservations {
		if !r.Open() {
			continue
		}
		preview.Reserves = append(preview.Reserves, dto.ReversalReserveImpact{
			ReservationID: r.ID.String(),
			CurrentStatus: r.Status,
			NewStatus:     r.ReversalStatus(),
		})
	}

	totalRefund := decimal.Zero
	for _, p := range payments {
		if !p.Refundable() {
			continue
		}
		preview.Payments = append(preview.Payments, dto.ReversalPaymentImpact{
			PaymentID:      p.ID.String(),
			Method:         p.Method,
			AmountReceived: p.AmountReceived,
		})
		totalRefund = totalRefund.Add(p.AmountReceived)
	}

	preview.Summary.TotalProducts = len(sale.Items)
	preview.Summary.ReservesToHandle = len(preview.Reserves)
	preview.Summary.PaymentsToRefund = len(preview.Payments)
	preview.Summary.TotalRefund = totalRefund

	return preview, nil
}

// ── Execute ───────────────────────────────────────────────────────────────────

func (s *reversalService) Execute(ctx context.Context, saleID, actor uuid.UUID, reason string) (*dto.ReversalResultResponse, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}

	// Re-read current state: the interval since any preview is unbounded
	// and the sale may have been paid or cancelled meanwhile.
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, ErrSaleNotFound
	}
	if sale.IsCancelled() {
		return nil, ErrSaleAlreadyCancelled
	}

	result := &dto.ReversalResultResponse{
		SaleID:       sale.ID.String(),
		TicketNumber: sale.TicketNumber,
		Reason:       reason,
		CancelledBy:  actor.String(),
		TotalRefund:  decimal.Zero,
	}

	txErr := runTx(ctx, s.saleRepo.DB(), func(tx *gorm.DB) error {
		// 1. Restore stock for every physical line item. The movement record
		// doubles as the "already applied" marker for retries.
		for _, item := range sale.Items {
			product := item.Product
			if product == nil {
				if product, err = s.productRepo.FindByID(ctx, item.ProductID); err != nil {
					return fmt.Errorf("product %s: %w", item.ProductID, err)
				}
			}
			if !product.TracksStock() {
				continue
			}

			applied, err := s.movementRepo.ExistsForSaleTx(tx, sale.ID, item.ProductID, "reversal_restore")
			if err != nil {
				return err
			}
			if applied {
				continue
			}

			stockBefore := product.StockQty
			if err := s.productRepo.UpdateStockTx(tx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("restoring stock for %s: %w", product.Name, err)
			}

			saleRef := sale.ID
			mov := &model.StockMovement{
				ProductID:   item.ProductID,
				Type:        "reversal_restore",
				Quantity:    item.Quantity,
				StockBefore: stockBefore,
				StockAfter:  stockBefore + item.Quantity,
				Note:        fmt.Sprintf("Reversal of sale #%d — %s", sale.TicketNumber, reason),
				SaleID:      &saleRef,
			}
			if err := s.movementRepo.CreateTx(tx, mov); err != nil {
				return err
			}
			result.StockRestored++
		}

		// 2. Transition every open reservation. The conditional update only
		// touches holds still confirmed, so re-running is harmless.
		reservations, err := s.reservationRepo.ListBySale(ctx, sale.ID)
		if err != nil {
			return err
		}
		for _, r := range reservations {
			if !r.Open() {
				continue
			}
			next := r.ReversalStatus()
			rows, err := s.reservationRepo.SetStatusTx(tx, r.ID, next)
			if err != nil {
				return err
			}
			if rows == 0 {
				continue
			}
			if next == model.ReservationReleased {
				result.ReservesReleased++
			} else {
				result.ReservesReverted++
			}
		}

		// 3. Refund every completed payment and write the inverse cash
		// drawer movement.
		payments, err := s.paymentRepo.ListBySale(ctx, sale.ID)
		if err != nil {
			return err
		}
		for _, p := range payments {
			if !p.Refundable() {
				continue
			}
			rows, err := s.paymentRepo.RefundTx(tx, p.ID)
			if err != nil {
				return err
			}
			if rows == 0 {
				continue
			}
			result.PaymentsRefunded++
			result.TotalRefund = result.TotalRefund.Add(p.AmountReceived)

			method := p.Method
			mov := &model.RegisterMovement{
				SessionID:   sale.RegisterSessionID,
				Type:        "reversal",
				Method:      &method,
				Amount:      p.AmountReceived.Neg(),
				Description: fmt.Sprintf("Reversal of sale #%d — %s", sale.TicketNumber, reason),
				ReferenceID: &sale.ID,
			}
			if err := s.registerRepo.CreateMovementTx(tx, mov); err != nil {
				return err
			}
		}

		// 4. Flip the sale to cancelled — the commit marker. The CAS on the
		// status column guarantees at most one successful execute per sale:
		// a concurrent winner leaves zero rows for us and we fail the whole
		// transaction with ALREADY_CANCELLED.
		rows, err := s.saleRepo.CancelTx(tx, sale.ID, reason, actor)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrSaleAlreadyCancelled
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Credit note + reconciliation notification — async, best-effort.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueCreditNote(ctx, worker.CreditNoteJobPayload{
			SaleID:      sale.ID.String(),
			Reason:      reason,
			IssuedBy:    actor.String(),
			TotalRefund: result.TotalRefund.String(),
		})
	}

	return result, nil
}
