package tests

import (
	"context"
	"testing"

	"counterdesk/internal/model"
	"counterdesk/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reversalFixture struct {
	svc             service.ReversalService
	saleRepo        *stubSaleRepo
	productRepo     *stubProductRepo
	paymentRepo     *stubPaymentRepo
	reservationRepo *stubReservationRepo
	movementRepo    *stubMovementRepo
	registerRepo    *stubRegisterRepo
}

func buildReversalSvc() *reversalFixture {
	f := &reversalFixture{
		saleRepo:        newStubSaleRepo(),
		productRepo:     newStubProductRepo(),
		paymentRepo:     newStubPaymentRepo(),
		reservationRepo: newStubReservationRepo(),
		movementRepo:    &stubMovementRepo{},
		registerRepo:    newStubRegisterRepo(),
	}
	f.svc = service.NewReversalService(f.saleRepo, f.productRepo, f.paymentRepo,
		f.reservationRepo, f.movementRepo, f.registerRepo, nil)
	return f
}

// seedSale stores a paid sale with one line per product, a completed cash
// payment for the full total, and a confirmed hold for every reservable line.
func seedSale(f *reversalFixture, products ...*model.Product) *model.Sale {
	sale := &model.Sale{
		ID:                uuid.New(),
		TicketNumber:      101,
		RegisterSessionID: uuid.New(),
		UserID:            uuid.New(),
		Status:            model.SalePaid,
	}
	total := decimal.Zero
	for _, p := range products {
		item := model.SaleItem{
			ID:         uuid.New(),
			SaleID:     sale.ID,
			ProductID:  p.ID,
			Quantity:   2,
			UnitPrice:  p.SalePrice,
			FinalPrice: p.SalePrice,
			Subtotal:   p.SalePrice.Mul(decimal.NewFromInt(2)),
			Product:    p,
		}
		sale.Items = append(sale.Items, item)
		total = total.Add(item.Subtotal)

		if p.ReservationBacked() {
			itemID := item.ID
			_ = f.reservationRepo.CreateTx(nil, &model.Reservation{
				SaleID:     sale.ID,
				SaleItemID: &itemID,
				ProductID:  p.ID,
				Kind:       model.ReservationDedicated,
				Status:     model.ReservationConfirmed,
			})
		}
	}
	sale.Subtotal = total
	sale.Total = total
	f.saleRepo.sales[sale.ID] = sale

	_ = f.paymentRepo.CreateTx(nil, &model.Payment{
		SaleID:         sale.ID,
		Method:         "cash",
		AmountReceived: total,
		Status:         model.PaymentCompleted,
	})
	return sale
}

// ── Preview ───────────────────────────────────────────────────────────────────

func TestPreview_SaleNotFound(t *testing.T) {
	f := buildReversalSvc()
	_, err := f.svc.Preview(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrSaleNotFound)
}

func TestPreview_ImpactReport(t *testing.T) {
	f := buildReversalSvc()
	beer := seedProduct(f.productRepo, "Beer 355ml", "1010101010101", model.ProductPhysical, 1500, 48)
	court := seedProduct(f.productRepo, "Court slot 1h", "2020202020202", model.ProductReservable, 8000, 0)
	cleaning := seedProduct(f.productRepo, "Racket cleaning", "3030303030303", model.ProductService, 2000, 0)
	sale := seedSale(f, beer, court, cleaning)

	preview, err := f.svc.Preview(context.Background(), sale.ID)
	require.NoError(t, err)

	require.Len(t, preview.Products, 3)
	assert.True(t, preview.Products[0].WillRestoreStock)   // physical
	assert.False(t, preview.Products[0].WillRevertReserve)
	assert.False(t, preview.Products[1].WillRestoreStock)  // reservable
	assert.True(t, preview.Products[1].WillRevertReserve)
	assert.False(t, preview.Products[2].WillRestoreStock)  // service
	assert.False(t, preview.Products[2].WillRevertReserve)

	require.Len(t, preview.Reserves, 1)
	assert.Equal(t, model.ReservationConfirmed, preview.Reserves[0].CurrentStatus)
	assert.Equal(t, model.ReservationReverted, preview.Reserves[0].NewStatus)

	require.Len(t, preview.Payments, 1)
	assert.Equal(t, 3, preview.Summary.TotalProducts)
	assert.Equal(t, 1, preview.Summary.StockMovements)
	assert.Equal(t, 1, preview.Summary.ReservesToHandle)
	assert.Equal(t, 1, preview.Summary.PaymentsToRefund)
	assert.True(t, preview.Summary.TotalRefund.Equal(sale.Total))
}

func TestPreview_MutatesNothing(t *testing.T) {
	f := buildReversalSvc()
	beer := seedProduct(f.productRepo, "Beer 355ml", "1010101010101", model.ProductPhysical, 1500, 48)
	sale := seedSale(f, beer)

	_, err := f.svc.Preview(context.Background(), sale.ID)
	require.NoError(t, err)
	_, err = f.svc.Preview(context.Background(), sale.ID)
	require.NoError(t, err)

	// Stock untouched, payment still completed, sale still paid
	assert.Equal(t, 48, f.productRepo.products[beer.ID].StockQty)
	assert.Empty(t, f.movementRepo.movements)
	assert.Equal(t, model.SalePaid, f.saleRepo.sales[sale.ID].Status)
	for _, p := range f.paymentRepo.payments {
		assert.Equal(t, model.PaymentCompleted, p.Status)
	}
}

// ── Execute ───────────────────────────────────────────────────────────────────

func TestExecute_ReasonRequired(t *testing.T) {
	f := buildReversalSvc()
	beer := seedProduct(f.productRepo, "Beer 355ml", "1010101010101", model.ProductPhysical, 1500, 48)
	sale := seedSale(f, beer)

	_, err := f.svc.Execute(context.Background(), sale.ID, uuid.New(), "   ")
	assert.ErrorIs(t, err, service.ErrReasonRequired)
	assert.Equal(t, model.SalePaid, f.saleRepo.sales[sale.ID].Status)
}

func TestExecute_SaleNotFound(t *testing.T) {
	f := buildReversalSvc()
	_, err := f.svc.Execute(context.Background(), uuid.New(), uuid.New(), "wrong ticket")
	assert.ErrorIs(t, err, service.ErrSaleNotFound)
}

func TestExecute_FullReversal(t *testing.T) {
	f := buildReversalSvc()
	beer := seedProduct(f.productRepo, "Beer 355ml", "1010101010101", model.ProductPhysical, 1500, 46)
	court := seedProduct(f.productRepo, "Court slot 1h", "2020202020202", model.ProductReservable, 8000, 0)
	sale := seedSale(f, beer, court)
	actor := uuid.New()

	result, err := f.svc.Execute(context.Background(), sale.ID, actor, "client returned the purchase")
	require.NoError(t, err)

	// Stock restored for the physical line only (qty 2)
	assert.Equal(t, 48, f.productRepo.products[beer.ID].StockQty)
	assert.Equal(t, 1, result.StockRestored)

	// Restore movement recorded — the idempotency marker
	require.Len(t, f.movementRepo.movements, 1)
	assert.Equal(t, "reversal_restore", f.movementRepo.movements[0].Type)
	assert.Equal(t, 2, f.movementRepo.movements[0].Quantity)

	// Dedicated hold reverted
	assert.Equal(t, 1, result.ReservesReverted)
	assert.Equal(t, 0, result.ReservesReleased)
	for _, r := range f.reservationRepo.reservations {
		assert.Equal(t, model.ReservationReverted, r.Status)
	}

	// Payment refunded, inverse drawer movement with negative amount
	assert.Equal(t, 1, result.PaymentsRefunded)
	assert.True(t, result.TotalRefund.Equal(sale.Total))
	require.Len(t, f.registerRepo.movements, 1)
	assert.Equal(t, "reversal", f.registerRepo.movements[0].Type)
	assert.True(t, f.registerRepo.movements[0].Amount.IsNegative())

	// Sale reached the terminal state with the audit trail set
	stored := f.saleRepo.sales[sale.ID]
	assert.Equal(t, model.SaleCancelled, stored.Status)
	require.NotNil(t, stored.CancelReason)
	assert.Equal(t, "client returned the purchase", *stored.CancelReason)
	require.NotNil(t, stored.CancelledBy)
	assert.Equal(t, actor, *stored.CancelledBy)
}

func TestExecute_SharedHoldIsReleased(t *testing.T) {
	f := buildReversalSvc()
	court := seedProduct(f.productRepo, "Court slot 1h", "2020202020202", model.ProductReservable, 8000, 0)
	sale := seedSale(f, court)

	// Flip the seeded hold to a shared slot
	for _, r := range f.reservationRepo.reservations {
		r.Kind = model.ReservationShared
	}

	result, err := f.svc.Execute(context.Background(), sale.ID, uuid.New(), "court flooded")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ReservesReverted)
	assert.Equal(t, 1, result.ReservesReleased)
	for _, r := range f.reservationRepo.reservations {
		assert.Equal(t, model.ReservationReleased, r.Status)
	}
}

func TestExecute_SecondCallFails(t *testing.T) {
	f := buildReversalSvc()
	beer := seedProduct(f.productRepo, "Beer 355ml", "1010101010101", model.ProductPhysical, 1500, 46)
	sale := seedSale(f, beer)

	_, err := f.svc.Execute(context.Background(), sale.ID, uuid.New(), "first attempt")
	require.NoError(t, err)

	_, err = f.svc.Execute(context.Background(), sale.ID, uuid.New(), "second attempt")
	assert.ErrorIs(t, err, service.ErrSaleAlreadyCancelled)

	// Stock restored exactly once
	assert.Equal(t, 48, f.productRepo.products[beer.ID].StockQty)
	assert.Len(t, f.movementRepo.movements, 1)
}

func TestExecute_SkipsAlreadyAppliedSteps(t *testing.T) {
	// Simulates a retry after a partial earlier attempt: the stock restore and
	// the refund already happened, but the sale never reached cancelled.
	f := buildReversalSvc()
	beer := seedProduct(f.productRepo, "Beer 355ml", "1010101010101", model.ProductPhysical, 1500, 48) // already restored
	sale := seedSale(f, beer)

	saleRef := sale.ID
	_ = f.movementRepo.CreateTx(nil, &model.StockMovement{
		ProductID: beer.ID,
		Type:      "reversal_restore",
		Quantity:  2,
		SaleID:    &saleRef,
	})
	for _, p := range f.paymentRepo.payments {
		p.Status = model.PaymentRefunded
	}

	result, err := f.svc.Execute(context.Background(), sale.ID, uuid.New(), "retry after crash")
	require.NoError(t, err)

	// Nothing re-applied: stock unchanged, no second movement, no refund counted
	assert.Equal(t, 48, f.productRepo.products[beer.ID].StockQty)
	assert.Len(t, f.movementRepo.movements, 1)
	assert.Equal(t, 0, result.StockRestored)
	assert.Equal(t, 0, result.PaymentsRefunded)
	assert.True(t, result.TotalRefund.IsZero())

	// But the commit marker still lands
	assert.Equal(t, model.SaleCancelled, f.saleRepo.sales[sale.ID].Status)
}

func TestExecute_ServiceOnlySale(t *testing.T) {
	f := buildReversalSvc()
	cleaning := seedProduct(f.productRepo, "Racket cleaning", "3030303030303", model.ProductService, 2000, 0)
	sale := seedSale(f, cleaning)

	result, err := f.svc.Execute(context.Background(), sale.ID, uuid.New(), "booked by mistake")
	require.NoError(t, err)
	assert.Equal(t, 0, result.StockRestored)
	assert.Equal(t, 0, result.ReservesReverted+result.ReservesReleased)
	assert.Equal(t, 1, result.PaymentsRefunded) // payment still refunds
	assert.Equal(t, model.SaleCancelled, f.saleRepo.sales[sale.ID].Status)
}
