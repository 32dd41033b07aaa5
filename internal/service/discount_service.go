package service

import (
	"counterdesk/internal/config"
	"counterdesk/internal/dto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Adjustment kinds stored on sale lines.
const (
	AdjustPercentage  = "percentage"
	AdjustFixedAmount = "fixed_amount"
	AdjustDirectPrice = "direct_price"
)

var hundred = decimal.NewFromInt(100)

// PriceChange is the outcome of the pure price calculation.
type PriceChange struct {
	NewPrice     decimal.Decimal
	ChangeAmount decimal.Decimal
	IsMarkup     bool
}

// ── Calculator ────────────────────────────────────────────────────────────────
// CalculateAdjustment is a pure function: no side effects, no error path.
// Bound checking is the validator's job; the calculator only clamps the
// result so newPrice never goes below zero.
//
//   percentage:   change = original * p / 100; new = original - change
//   fixed_amount: change = min(value, original); new = original - change
//   direct_price: new = value; change = |original - value|; markup when value > original

func CalculateAdjustment(originalPrice decimal.Decimal, kind string, value decimal.Decimal) PriceChange {
	var change PriceChange
	switch kind {
	case AdjustPercentage:
		change.ChangeAmount = originalPrice.Mul(value).Div(hundred)
		change.NewPrice = originalPrice.Sub(change.ChangeAmount)
	case AdjustFixedAmount:
		change.ChangeAmount = decimal.Min(value, originalPrice)
		change.NewPrice = originalPrice.Sub(change.ChangeAmount)
	case AdjustDirectPrice:
		change.NewPrice = value
		change.ChangeAmount = originalPrice.Sub(value).Abs()
		change.IsMarkup = value.GreaterThan(originalPrice)
	}
	if change.NewPrice.IsNegative() {
		change.NewPrice = decimal.Zero
	}
	return change
}

// ── Authorization policy ──────────────────────────────────────────────────────

// AuthorizationPolicy decides when an adjustment needs a named authorizer:
// a reason flagged requires_auth, or a change amount / percentage above the
// configured ceilings. Absence of the authorizer is a validation error,
// never a silent downgrade.
type AuthorizationPolicy struct {
	MaxAmountWithoutAuth  decimal.Decimal
	MaxPercentWithoutAuth decimal.Decimal
}

func (p AuthorizationPolicy) RequiresAuthorization(reason *config.DiscountReason, changeAmount, percentage decimal.Decimal) bool {
	if reason != nil && reason.RequiresAuth {
		return true
	}
	if changeAmount.GreaterThan(p.MaxAmountWithoutAuth) {
		return true
	}
	return percentage.GreaterThan(p.MaxPercentWithoutAuth)
}

// ── Validator ─────────────────────────────────────────────────────────────────

// DiscountService validates a line item price adjustment end to end:
// calculator + reason catalogue + authorization policy. Pure — touches no
// shared state, so identical input always yields identical output.
type DiscountService interface {
	ValidateLineAdjustment(originalUnitPrice decimal.Decimal, req dto.AdjustmentRequest, actor *uuid.UUID) dto.AdjustmentValidationResponse
}

type discountService struct {
	catalog *config.ReasonCatalog
	policy  AuthorizationPolicy
}

func NewDiscountService(catalog *config.ReasonCatalog, policy AuthorizationPolicy) DiscountService {
	return &discountService{catalog: catalog, policy: policy}
}

// ValidateLineAdjustment collects every problem instead of short-circuiting.
// Check order: justification → authorization → bounds → kind exclusivity.
func (s *discountService) ValidateLineAdjustment(originalUnitPrice decimal.Decimal, req dto.AdjustmentRequest, actor *uuid.UUID) dto.AdjustmentValidationResponse {
	var errs []string

	// 1. A reason or a non-empty justification must be present — and they
	// are mutually exclusive on the stored line.
	var reason *config.DiscountReason
	switch {
	case req.ReasonID == "" && req.Justification == "":
		errs = append(errs, ErrCodeReasonOrJustification)
	case req.ReasonID != "" && req.Justification != "":
		errs = append(errs, ErrCodeReasonExclusive)
	case req.ReasonID != "":
		if r, ok := s.catalog.Lookup(req.ReasonID); ok {
			reason = &r
		} else {
			errs = append(errs, ErrCodeUnknownReason)
		}
	}

	kind, value, kindCount := resolveKind(req)
	if kindCount == 0 {
		errs = append(errs, ErrCodeAdjustmentRequired)
		return dto.AdjustmentValidationResponse{OK: false, Errors: errs}
	}

	change := CalculateAdjustment(originalUnitPrice, kind, value)

	// 2. Authorization — the percentage fed to the policy is the effective
	// one (the requested percentage, or the change relative to the original
	// price for the other kinds).
	percentage := value
	if kind != AdjustPercentage {
		percentage = decimal.Zero
		if originalUnitPrice.IsPositive() {
			percentage = change.ChangeAmount.Mul(hundred).Div(originalUnitPrice)
		}
	}
	if s.policy.RequiresAuthorization(reason, change.ChangeAmount, percentage) && actor == nil {
		errs = append(errs, ErrCodeAuthRequired)
	}

	// 3. Bounds. Percentage in (0,100]. Fixed amount in (0, originalPrice):
	// a markdown to exactly zero must go through direct_price 0 or a 100%
	// percentage, never through the fixed-amount path. Direct price ≥ 0.
	switch kind {
	case AdjustPercentage:
		if !value.IsPositive() || value.GreaterThan(hundred) {
			errs = append(errs, ErrCodePercentOutOfRange)
		}
	case AdjustFixedAmount:
		if !value.IsPositive() || value.GreaterThanOrEqual(originalUnitPrice) {
			errs = append(errs, ErrCodeFixedOutOfRange)
		}
	case AdjustDirectPrice:
		if value.IsNegative() {
			errs = append(errs, ErrCodeDirectPriceNegative)
		}
	}

	// 4. Only one adjustment kind may be set.
	if kindCount > 1 {
		errs = append(errs, ErrCodeMultipleKinds)
	}

	if len(errs) > 0 {
		return dto.AdjustmentValidationResponse{OK: false, Errors: errs}
	}

	accepted := &dto.AcceptedAdjustment{
		Kind:          kind,
		Value:         value,
		NewPrice:      change.NewPrice,
		ChangeAmount:  change.ChangeAmount,
		IsMarkup:      change.IsMarkup,
		ReasonID:      req.ReasonID,
		Justification: req.Justification,
	}
	if actor != nil {
		accepted.AuthorizedBy = actor.String()
	}
	return dto.AdjustmentValidationResponse{OK: true, Adjustment: accepted}
}

// resolveKind picks the requested adjustment kind. When several are set the
// first in percentage → fixed → direct order drives the calculation and the
// MULTIPLE_ADJUSTMENT_KINDS error is reported alongside.
func resolveKind(req dto.AdjustmentRequest) (kind string, value decimal.Decimal, count int) {
	if req.Percentage != nil {
		count++
		if kind == "" {
			kind, value = AdjustPercentage, *req.Percentage
		}
	}
	if req.FixedAmount != nil {
		count++
		if kind == "" {
			kind, value = AdjustFixedAmount, *req.FixedAmount
		}
	}
	if req.DirectPrice != nil {
		count++
		if kind == "" {
			kind, value = AdjustDirectPrice, *req.DirectPrice
		}
	}
	return kind, value, count
}
