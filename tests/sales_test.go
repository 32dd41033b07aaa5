package tests

import (
	"context"
	"testing"

	"counterdesk/internal/dto"
	"counterdesk/internal/model"
	"counterdesk/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saleFixture struct {
	svc             service.SaleService
	saleRepo        *stubSaleRepo
	productRepo     *stubProductRepo
	paymentRepo     *stubPaymentRepo
	reservationRepo *stubReservationRepo
	movementRepo    *stubMovementRepo
	registerRepo    *stubRegisterRepo
	session         *model.RegisterSession
}

func buildSaleSvc(t *testing.T) *saleFixture {
	t.Helper()
	f := &saleFixture{
		saleRepo:        newStubSaleRepo(),
		productRepo:     newStubProductRepo(),
		paymentRepo:     newStubPaymentRepo(),
		reservationRepo: newStubReservationRepo(),
		movementRepo:    &stubMovementRepo{},
		registerRepo:    newStubRegisterRepo(),
	}
	f.session = seedOpenSession(f.registerRepo)

	inventory := service.NewInventoryService(f.productRepo, f.movementRepo)
	register := service.NewRegisterService(f.registerRepo)
	f.svc = service.NewSaleService(f.saleRepo, f.productRepo, f.paymentRepo,
		f.reservationRepo, f.registerRepo, inventory, register, buildDiscountSvc(),
		decimal.NewFromInt(10)) // 10% flat tax
	return f
}

func TestRegisterSale_NoOpenSession(t *testing.T) {
	f := buildSaleSvc(t)
	p := seedProduct(f.productRepo, "Beer 355ml", "1010101010101", model.ProductPhysical, 1000, 50)

	_, err := f.svc.RegisterSale(context.Background(), uuid.New(), nil, dto.RegisterSaleRequest{
		RegisterSessionID: uuid.New().String(), // unknown session
		Items:             []dto.SaleItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
		Payments:          []dto.PaymentRequest{{Method: "cash", Amount: dec(1100)}},
	})
	assert.ErrorIs(t, err, service.ErrNoOpenSession)
}

func TestRegisterSale_PhysicalProduct(t *testing.T) {
	f := buildSaleSvc(t)
	p := seedProduct(f.productRepo, "Beer 355ml", "1010101010101", model.ProductPhysical, 1000, 50)

	// subtotal 2000, tax 200, total 2200, paid 2500 → change 300
	resp, err := f.svc.RegisterSale(context.Background(), uuid.New(), nil, dto.RegisterSaleRequest{
		RegisterSessionID: f.session.ID.String(),
		Items:             []dto.SaleItemRequest{{ProductID: p.ID.String(), Quantity: 2}},
		Payments:          []dto.PaymentRequest{{Method: "cash", Amount: dec(2500)}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TicketNumber)
	assert.True(t, resp.Subtotal.Equal(dec(2000)))
	assert.True(t, resp.TaxTotal.Equal(dec(200)))
	assert.True(t, resp.Total.Equal(dec(2200)))
	assert.True(t, resp.Change.Equal(dec(300)))
	assert.Equal(t, model.SalePaid, resp.Status)

	// Stock deducted with an audited movement
	assert.Equal(t, 48, f.productRepo.products[p.ID].StockQty)
	require.Len(t, f.movementRepo.movements, 1)
	assert.Equal(t, "sale", f.movementRepo.movements[0].Type)
	assert.Equal(t, -2, f.movementRepo.movements[0].Quantity)

	// One drawer movement per payment method
	require.Len(t, f.registerRepo.movements, 1)
	assert.Equal(t, "sale", f.registerRepo.movements[0].Type)
}

func TestRegisterSale_PartialPayment(t *testing.T) {
	f := buildSaleSvc(t)
	p := seedProduct(f.productRepo, "Beer 355ml", "1010101010101", model.ProductPhysical, 1000, 50)

	resp, err := f.svc.RegisterSale(context.Background(), uuid.New(), nil, dto.RegisterSaleRequest{
		RegisterSessionID: f.session.ID.String(),
		Items:             []dto.SaleItemRequest{{ProductID: p.ID.String(), Quantity: 2}},
		Payments:          []dto.PaymentRequest{{Method: "cash", Amount: dec(1000)}}, // total is 2200
	})
	require.NoError(t, err)
	assert.Equal(t, model.SalePartialPayment, resp.Status)
	assert.True(t, resp.Change.IsZero())
}

func TestRegisterSale_WithAdjustment(t *testing.T) {
	f := buildSaleSvc(t)
	p := seedProduct(f.productRepo, "Beer 355ml", "1010101010101", model.ProductPhysical, 1000, 50)

	// 10% markdown with a catalogued reason: final 900/unit, discount 100×2
	resp, err := f.svc.RegisterSale(context.Background(), uuid.New(), nil, dto.RegisterSaleRequest{
		RegisterSessionID: f.session.ID.String(),
		Items: []dto.SaleItemRequest{{
			ProductID: p.ID.String(),
			Quantity:  2,
			Adjustment: &dto.AdjustmentRequest{
				Percentage: decp(10),
				ReasonID:   "damaged_item",
			},
		}},
		Payments: []dto.PaymentRequest{{Method: "cash", Amount: dec(1980)}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Subtotal.Equal(dec(1800)))
	assert.True(t, resp.DiscountTotal.Equal(dec(200)))
	assert.True(t, resp.Total.Equal(dec(1980))) // 1800 + 10% tax
	assert.Equal(t, model.SalePaid, resp.Status)

	// Audit fields land on the stored line
	var stored *model.Sale
	for _, s := range f.saleRepo.sales {
		stored = s
	}
	require.NotNil(t, stored)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, service.AdjustPercentage, stored.Items[0].AdjustmentKind)
	require.NotNil(t, stored.Items[0].DiscountReasonID)
	assert.Equal(t, "damaged_item", *stored.Items[0].DiscountReasonID)
}

func TestRegisterSale_MarkupDoesNotCountAsDiscount(t *testing.T) {
	f := buildSaleSvc(t)
	p := seedProduct(f.productRepo, "Beer 355ml", "1010101010101", model.ProductPhysical, 1000, 50)

	resp, err := f.svc.RegisterSale(context.Background(), uuid.New(), nil, dto.RegisterSaleRequest{
		RegisterSessionID: f.session.ID.String(),
		Items: []dto.SaleItemRequest{{
			ProductID: p.ID.String(),
			Quantity:  1,
			Adjustment: &dto.AdjustmentRequest{
				DirectPrice:   decp(1200),
				Justification: "imported batch surcharge",
			},
		}},
		Payments: []dto.PaymentRequest{{Method: "cash", Amount: dec(1320)}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Subtotal.Equal(dec(1200)))
	assert.True(t, resp.DiscountTotal.IsZero())
}

func TestRegisterSale_AdjustmentRejected(t *testing.T) {
	f := buildSaleSvc(t)
	p := seedProduct(f.productRepo, "Beer 355ml", "1010101010101", model.ProductPhysical, 1000, 50)

	_, err := f.svc.RegisterSale(context.Background(), uuid.New(), nil, dto.RegisterSaleRequest{
		RegisterSessionID: f.session.ID.String(),
		Items: []dto.SaleItemRequest{{
			ProductID:  p.ID.String(),
			Quantity:   1,
			Adjustment: &dto.AdjustmentRequest{Percentage: decp(150), ReasonID: "damaged_item"},
		}},
		Payments: []dto.PaymentRequest{{Method: "cash", Amount: dec(1000)}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adjustment rejected")
	// Atomic: nothing persisted
	assert.Empty(t, f.saleRepo.sales)
	assert.Equal(t, 50, f.productRepo.products[p.ID].StockQty)
}

func TestRegisterSale_ReservableCreatesHold(t *testing.T) {
	f := buildSaleSvc(t)
	court := seedProduct(f.productRepo, "Court slot 1h", "2020202020202", model.ProductReservable, 8000, 0)

	_, err := f.svc.RegisterSale(context.Background(), uuid.New(), nil, dto.RegisterSaleRequest{
		RegisterSessionID: f.session.ID.String(),
		Items:             []dto.SaleItemRequest{{ProductID: court.ID.String(), Quantity: 1}},
		Payments:          []dto.PaymentRequest{{Method: "debit", Amount: dec(8800)}},
	})
	require.NoError(t, err)

	require.Len(t, f.reservationRepo.reservations, 1)
	for _, r := range f.reservationRepo.reservations {
		assert.Equal(t, model.ReservationConfirmed, r.Status)
		assert.Equal(t, model.ReservationDedicated, r.Kind)
	}
	// No stock movement for reservation-backed items
	assert.Empty(t, f.movementRepo.movements)
}

func TestRegisterSale_InactiveProduct(t *testing.T) {
	f := buildSaleSvc(t)
	p := seedProduct(f.productRepo, "Old promo pack", "9090909090909", model.ProductPhysical, 500, 10)
	p.Active = false

	_, err := f.svc.RegisterSale(context.Background(), uuid.New(), nil, dto.RegisterSaleRequest{
		RegisterSessionID: f.session.ID.String(),
		Items:             []dto.SaleItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
		Payments:          []dto.PaymentRequest{{Method: "cash", Amount: dec(550)}},
	})
	assert.ErrorContains(t, err, "inactive")
}

func TestCompleteSale_Transitions(t *testing.T) {
	f := buildSaleSvc(t)
	p := seedProduct(f.productRepo, "Beer 355ml", "1010101010101", model.ProductPhysical, 1000, 50)

	resp, err := f.svc.RegisterSale(context.Background(), uuid.New(), nil, dto.RegisterSaleRequest{
		RegisterSessionID: f.session.ID.String(),
		Items:             []dto.SaleItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
		Payments:          []dto.PaymentRequest{{Method: "cash", Amount: dec(1100)}},
	})
	require.NoError(t, err)
	saleID := uuid.MustParse(resp.ID)

	require.NoError(t, f.svc.CompleteSale(context.Background(), saleID))
	assert.Equal(t, model.SaleCompleted, f.saleRepo.sales[saleID].Status)

	// completed → completed is not a legal move
	assert.ErrorIs(t, f.svc.CompleteSale(context.Background(), saleID), service.ErrInvalidSaleStatus)
}

func TestCompleteSale_PendingCannotComplete(t *testing.T) {
	f := buildSaleSvc(t)
	p := seedProduct(f.productRepo, "Beer 355ml", "1010101010101", model.ProductPhysical, 1000, 50)

	resp, err := f.svc.RegisterSale(context.Background(), uuid.New(), nil, dto.RegisterSaleRequest{
		RegisterSessionID: f.session.ID.String(),
		Items:             []dto.SaleItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.SalePending, resp.Status)

	err = f.svc.CompleteSale(context.Background(), uuid.MustParse(resp.ID))
	assert.ErrorIs(t, err, service.ErrInvalidSaleStatus)
}
