package dto

import "github.com/shopspring/decimal"

type OpenRegisterRequest struct {
	RegisterNo   int             `json:"register_no"   validate:"required,min=1"`
	OpeningFloat decimal.Decimal `json:"opening_float" validate:"min=0"`
}

type ManualMovementRequest struct {
	SessionID   string          `json:"session_id"  validate:"required,uuid"`
	Type        string          `json:"type"        validate:"required,oneof=manual_in manual_out"`
	Method      string          `json:"method"      validate:"required,oneof=cash debit credit transfer"`
	Amount      decimal.Decimal `json:"amount"      validate:"required"`
	Description string          `json:"description" validate:"required,min=3"`
}

type CloseRegisterRequest struct {
	SessionID     string          `json:"session_id"     validate:"required,uuid"`
	DeclaredTotal decimal.Decimal `json:"declared_total" validate:"min=0"`
	Notes         *string         `json:"notes"`
}

type RegisterMovementResponse struct {
	Type        string          `json:"type"`
	Method      *string         `json:"method"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type RegisterReportResponse struct {
	SessionID     string                     `json:"session_id"`
	RegisterNo    int                        `json:"register_no"`
	Status        string                     `json:"status"`
	OpeningFloat  decimal.Decimal            `json:"opening_float"`
	ExpectedTotal *decimal.Decimal           `json:"expected_total,omitempty"`
	DeclaredTotal *decimal.Decimal           `json:"declared_total,omitempty"`
	Movements     []RegisterMovementResponse `json:"movements"`
}
