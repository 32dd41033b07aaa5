package dto

import "github.com/shopspring/decimal"

// ─── Reversal preview ────────────────────────────────────────────────────────
// The preview is advisory: it is recomputed fresh on every call and is never
// cached, because the state it reflects can change before Execute runs.

// ReversalProductImpact describes what a reversal would do to one line item.
type ReversalProductImpact struct {
	ProductID         string `json:"product_id"`
	Product           string `json:"product"`
	Quantity          int    `json:"quantity"`
	WillRestoreStock  bool   `json:"will_restore_stock"`
	WillRevertReserve bool   `json:"will_revert_reserve"`
}

// ReversalReserveImpact is the status transition a reversal would apply to
// one reservation hold.
type ReversalReserveImpact struct {
	ReservationID string `json:"reservation_id"`
	CurrentStatus string `json:"current_status"`
	NewStatus     string `json:"new_status"`
}

// ReversalPaymentImpact is one payment the reversal would refund.
type ReversalPaymentImpact struct {
	PaymentID      string          `json:"payment_id"`
	Method         string          `json:"method"`
	AmountReceived decimal.Decimal `json:"amount_received"`
}

type ReversalSummary struct {
	TotalProducts    int             `json:"total_products"`
	StockMovements   int             `json:"stock_movements"`
	ReservesToHandle int             `json:"reserves_to_handle"`
	PaymentsToRefund int             `json:"payments_to_refund"`
	TotalRefund      decimal.Decimal `json:"total_refund"`
}

// ReversalPreviewResponse is the full impact report shown before the
// operator confirms a cancellation.
type ReversalPreviewResponse struct {
	Sale     SaleResponse            `json:"sale"`
	Products []ReversalProductImpact `json:"products"`
	Reserves []ReversalReserveImpact `json:"reserves"`
	Payments []ReversalPaymentImpact `json:"payments"`
	Summary  ReversalSummary         `json:"summary"`
}

// ─── Reversal execute ────────────────────────────────────────────────────────

type ExecuteReversalRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

// ReversalResultResponse summarizes what an executed reversal actually did,
// for the caller to notify dependent subsystems.
type ReversalResultResponse struct {
	SaleID            string          `json:"sale_id"`
	TicketNumber      int             `json:"ticket_number"`
	StockRestored     int             `json:"stock_restored"`
	ReservesReverted  int             `json:"reserves_reverted"`
	ReservesReleased  int             `json:"reserves_released"`
	PaymentsRefunded  int             `json:"payments_refunded"`
	TotalRefund       decimal.Decimal `json:"total_refund"`
	Reason            string          `json:"reason"`
	CancelledBy       string          `json:"cancelled_by"`
}
