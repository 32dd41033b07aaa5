package dto

import "github.com/shopspring/decimal"

// ─── Adjustment request / response ───────────────────────────────────────────

// AdjustmentRequest is the proposed price change for one sale line.
// Exactly one of Percentage / FixedAmount / DirectPrice must be set.
type AdjustmentRequest struct {
	Percentage  *decimal.Decimal `json:"percentage"`
	FixedAmount *decimal.Decimal `json:"fixed_amount"`
	DirectPrice *decimal.Decimal `json:"direct_price"`
	// ReasonID references the configured discount reason catalogue.
	// Justification is required when ReasonID is absent.
	ReasonID      string `json:"reason_id"`
	Justification string `json:"justification"`
}

// ValidateAdjustmentBody is the HTTP body of POST /v1/sales/adjustments/validate.
type ValidateAdjustmentBody struct {
	OriginalUnitPrice decimal.Decimal   `json:"original_unit_price" validate:"min=0"`
	Quantity          int               `json:"quantity"            validate:"required,min=1"`
	Adjustment        AdjustmentRequest `json:"adjustment"          validate:"required"`
}

// AcceptedAdjustment is the outcome of a successful validation: the computed
// price change plus the audit fields that travel on the sale line.
type AcceptedAdjustment struct {
	Kind          string          `json:"kind"` // percentage | fixed_amount | direct_price
	Value         decimal.Decimal `json:"value"`
	NewPrice      decimal.Decimal `json:"new_price"`
	ChangeAmount  decimal.Decimal `json:"change_amount"`
	IsMarkup      bool            `json:"is_markup"`
	ReasonID      string          `json:"reason_id,omitempty"`
	Justification string          `json:"justification,omitempty"`
	AuthorizedBy  string          `json:"authorized_by,omitempty"`
}

// AdjustmentValidationResponse carries either the accepted adjustment or the
// full list of validation errors — all collected, never short-circuited, so
// the till UI can show every problem at once.
type AdjustmentValidationResponse struct {
	OK         bool                `json:"ok"`
	Adjustment *AcceptedAdjustment `json:"adjustment,omitempty"`
	Errors     []string            `json:"errors,omitempty"`
}
