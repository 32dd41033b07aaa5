package service

import (
	"context"
	"fmt"

	"counterdesk/internal/dto"
	"counterdesk/internal/model"
	"counterdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	RegisterSale(ctx context.Context, userID uuid.UUID, authorizer *uuid.UUID, req dto.RegisterSaleRequest) (*dto.SaleResponse, error)
	CompleteSale(ctx context.Context, id uuid.UUID) error
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	repo            repository.SaleRepository
	productRepo     repository.ProductRepository
	paymentRepo     repository.PaymentRepository
	reservationRepo repository.ReservationRepository
	registerRepo    repository.RegisterRepository
	inventory       InventoryService
	register        RegisterService
	discounts       DiscountService
	taxRate         decimal.Decimal
}

func NewSaleService(
	repo repository.SaleRepository,
	productRepo repository.ProductRepository,
	paymentRepo repository.PaymentRepository,
	reservationRepo repository.ReservationRepository,
	registerRepo repository.RegisterRepository,
	inventory InventoryService,
	register RegisterService,
	discounts DiscountService,
	taxRate decimal.Decimal,
) SaleService {
	return &saleService{
		repo:            repo,
		productRepo:     productRepo,
		paymentRepo:     paymentRepo,
		reservationRepo: reservationRepo,
		registerRepo:    registerRepo,
		inventory:       inventory,
		register:        register,
		discounts:       discounts,
		taxRate:         taxRate,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── RegisterSale ──────────────────────────────────────────────────────────────
// Checkout as one logical unit:
//   1. Validate the register session is open
//   2. Resolve products, run every requested line adjustment through the
//      discount validator, compute totals with the flat tax rate
//   3. BEGIN TX: next ticket, create sale+items+payments, deduct stock for
//      physical items, create holds for reservable items, cash movements
//   4. COMMIT

func (s *saleService) RegisterSale(ctx context.Context, userID uuid.UUID, authorizer *uuid.UUID, req dto.RegisterSaleRequest) (*dto.SaleResponse, error) {
	sessionID, err := uuid.Parse(req.RegisterSessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid register_session_id: %w", err)
	}
	if err := s.register.FindOpenSession(ctx, sessionID); err != nil {
		return nil, err
	}

	type resolvedItem struct {
		product    *model.Product
		quantity   int
		finalPrice decimal.Decimal
		adjustment *dto.AcceptedAdjustment
	}

	var resolved []resolvedItem
	subtotal := decimal.Zero
	discountTotal := decimal.Zero

	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product_id: %w", err)
		}
		p, err := s.productRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("product %s not found", item.ProductID)
		}
		if !p.Active {
			return nil, fmt.Errorf("product %s is inactive and cannot be sold", p.Name)
		}

		finalPrice := p.SalePrice
		var accepted *dto.AcceptedAdjustment
		if item.Adjustment != nil {
			verdict := s.discounts.ValidateLineAdjustment(p.SalePrice, *item.Adjustment, authorizer)
			if !verdict.OK {
				return nil, fmt.Errorf("adjustment rejected for %s: %v", p.Name, verdict.Errors)
			}
			accepted = verdict.Adjustment
			finalPrice = accepted.NewPrice
			if !accepted.IsMarkup {
				discountTotal = discountTotal.Add(accepted.ChangeAmount.Mul(decimal.NewFromInt(int64(item.Quantity))))
			}
		}

		subtotal = subtotal.Add(finalPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		resolved = append(resolved, resolvedItem{
			product:    p,
			quantity:   item.Quantity,
			finalPrice: finalPrice,
			adjustment: accepted,
		})
	}

	taxTotal := subtotal.Mul(s.taxRate).Div(hundred)
	total := subtotal.Add(taxTotal)

	totalPayments := decimal.Zero
	for _, pay := range req.Payments {
		totalPayments = totalPayments.Add(pay.Amount)
	}

	status := model.SalePending
	switch {
	case totalPayments.GreaterThanOrEqual(total) && total.IsPositive():
		status = model.SalePaid
	case totalPayments.IsPositive():
		status = model.SalePartialPayment
	}

	change := decimal.Zero
	if totalPayments.GreaterThan(total) {
		change = totalPayments.Sub(total)
	}

	var clientID *uuid.UUID
	if req.ClientID != nil {
		cid, err := uuid.Parse(*req.ClientID)
		if err != nil {
			return nil, fmt.Errorf("invalid client_id: %w", err)
		}
		clientID = &cid
	}

	var sale model.Sale
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ticketNum, err := s.repo.NextTicketNumber(ctx, tx)
		if err != nil {
			return err
		}

		sale = model.Sale{
			TicketNumber:      ticketNum,
			RegisterSessionID: sessionID,
			UserID:            userID,
			ClientID:          clientID,
			ClientEmail:       req.ClientEmail,
			Subtotal:          subtotal,
			DiscountTotal:     discountTotal,
			TaxTotal:          taxTotal,
			Total:             total,
			Status:            status,
		}

		for _, r := range resolved {
			line := model.SaleItem{
				ProductID:  r.product.ID,
				Quantity:   r.quantity,
				UnitPrice:  r.product.SalePrice,
				FinalPrice: r.finalPrice,
				Subtotal:   r.finalPrice.Mul(decimal.NewFromInt(int64(r.quantity))),
			}
			if a := r.adjustment; a != nil {
				line.AdjustmentKind = a.Kind
				line.AdjustmentValue = a.Value
				line.DiscountAmount = a.ChangeAmount
				line.Markup = a.IsMarkup
				if a.ReasonID != "" {
					reasonID := a.ReasonID
					line.DiscountReasonID = &reasonID
				}
				if a.Justification != "" {
					just := a.Justification
					line.Justification = &just
				}
				if a.AuthorizedBy != "" {
					if actorID, err := uuid.Parse(a.AuthorizedBy); err == nil {
						line.AuthorizedBy = &actorID
					}
				}
			}
			sale.Items = append(sale.Items, line)
		}

		if err := s.repo.Create(ctx, tx, &sale); err != nil {
			return err
		}

		for _, pay := range req.Payments {
			payment := &model.Payment{
				SaleID:         sale.ID,
				Method:         pay.Method,
				AmountReceived: pay.Amount,
				Status:         model.PaymentCompleted,
			}
			if err := s.paymentRepo.CreateTx(tx, payment); err != nil {
				return err
			}
		}

		for i, r := range resolved {
			switch {
			case r.product.TracksStock():
				stockBefore := r.product.StockQty
				if err := s.inventory.DeductStockTx(ctx, tx, r.product.ID, r.quantity); err != nil {
					return fmt.Errorf("deducting stock for %s: %w", r.product.Name, err)
				}
				saleRef := sale.ID
				mov := &model.StockMovement{
					ProductID:   r.product.ID,
					Type:        "sale",
					Quantity:    -r.quantity,
					StockBefore: stockBefore,
					StockAfter:  stockBefore - r.quantity,
					Note:        fmt.Sprintf("Sale #%d", ticketNum),
					SaleID:      &saleRef,
				}
				if err := s.inventory.RecordMovementTx(tx, mov); err != nil {
					return err
				}

			case r.product.ReservationBacked():
				itemID := sale.Items[i].ID
				hold := &model.Reservation{
					SaleID:     sale.ID,
					SaleItemID: &itemID,
					ProductID:  r.product.ID,
					Kind:       model.ReservationDedicated,
					Status:     model.ReservationConfirmed,
				}
				if err := s.reservationRepo.CreateTx(tx, hold); err != nil {
					return err
				}
			}
		}

		// One cash drawer movement per payment method
		for _, pay := range req.Payments {
			method := pay.Method
			mov := &model.RegisterMovement{
				SessionID:   sessionID,
				Type:        "sale",
				Method:      &method,
				Amount:      pay.Amount,
				Description: fmt.Sprintf("Sale #%d", ticketNum),
				ReferenceID: &sale.ID,
			}
			if err := s.registerRepo.CreateMovementTx(tx, mov); err != nil {
				return err
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := saleToResponse(&sale)
	resp.Change = change
	resp.Payments = req.Payments
	for i, r := range resolved {
		resp.Items[i].Product = r.product.Name
	}
	return &resp, nil
}

// ── CompleteSale ──────────────────────────────────────────────────────────────

func (s *saleService) CompleteSale(ctx context.Context, id uuid.UUID) error {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrSaleNotFound
	}
	if !sale.CanTransitionTo(model.SaleCompleted) {
		return ErrInvalidSaleStatus
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.UpdateStatusTx(tx, id, model.SaleCompleted)
	})
}

// ListSales returns a paginated list of sales, filtered by date and status.
// Default filter: today's completed sales.
func (s *saleService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Status == "" {
		filter.Status = model.SaleCompleted
	}
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func saleToResponse(sale *model.Sale) dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		items = append(items, dto.SaleItemResponse{
			Product:        name,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			FinalPrice:     item.FinalPrice,
			DiscountAmount: item.DiscountAmount,
			Subtotal:       item.Subtotal,
		})
	}
	payments := make([]dto.PaymentRequest, 0, len(sale.Payments))
	for _, p := range sale.Payments {
		payments = append(payments, dto.PaymentRequest{Method: p.Method, Amount: p.AmountReceived})
	}
	return dto.SaleResponse{
		ID:            sale.ID.String(),
		TicketNumber:  sale.TicketNumber,
		Items:         items,
		Subtotal:      sale.Subtotal,
		DiscountTotal: sale.DiscountTotal,
		TaxTotal:      sale.TaxTotal,
		Total:         sale.Total,
		Payments:      payments,
		Change:        decimal.Zero,
		Status:        sale.Status,
		CreatedAt:     sale.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
