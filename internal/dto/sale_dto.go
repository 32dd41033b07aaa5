package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	Date   string `form:"date"`                     // YYYY-MM-DD; empty = today
	Status string `form:"status,default=completed"` // pending | paid | completed | cancelled | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
	// Adjustment is optional; when present it must pass the adjustment
	// validator before the sale is accepted.
	Adjustment *AdjustmentRequest `json:"adjustment"`
}

type PaymentRequest struct {
	Method string          `json:"method" validate:"required,oneof=cash debit credit transfer"`
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type RegisterSaleRequest struct {
	RegisterSessionID string            `json:"register_session_id" validate:"required,uuid"`
	ClientID          *string           `json:"client_id"           validate:"omitempty,uuid"`
	Items             []SaleItemRequest `json:"items"               validate:"required,min=1,dive"`
	Payments          []PaymentRequest  `json:"payments"            validate:"omitempty,dive"`
	// ClientEmail: optional — when present, the credit note worker mails
	// the PDF on a later reversal.
	ClientEmail *string `json:"client_email" validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	Product        string          `json:"product"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	FinalPrice     decimal.Decimal `json:"final_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	TicketNumber  int                `json:"ticket_number"`
	Items         []SaleItemResponse `json:"items"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	DiscountTotal decimal.Decimal    `json:"discount_total"`
	TaxTotal      decimal.Decimal    `json:"tax_total"`
	Total         decimal.Decimal    `json:"total"`
	Payments      []PaymentRequest   `json:"payments"`
	Change        decimal.Decimal    `json:"change"`
	Status        string             `json:"status"`
	CreatedAt     string             `json:"created_at"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
