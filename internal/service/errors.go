package service

import "errors"

// State errors surfaced verbatim to the caller. The services never guess
// intent or auto-retry on any of these.
var (
	ErrSaleNotFound         = errors.New("sale not found")
	ErrSaleAlreadyCancelled = errors.New("sale is already cancelled")
	ErrReasonRequired       = errors.New("cancellation reason is required")
	ErrInvalidSaleStatus    = errors.New("sale status does not allow this transition")
	ErrNoOpenSession        = errors.New("no open register session")
	ErrSessionClosed        = errors.New("register session is already closed")
	ErrInvalidCredentials   = errors.New("invalid username or password")
)

// Validation error codes returned by the line adjustment validator.
// Collected into a list — the till UI shows every problem at once.
const (
	ErrCodeReasonOrJustification = "REASON_OR_JUSTIFICATION_REQUIRED"
	ErrCodeReasonExclusive       = "REASON_AND_JUSTIFICATION_EXCLUSIVE"
	ErrCodeUnknownReason         = "UNKNOWN_REASON"
	ErrCodeAuthRequired          = "AUTH_REQUIRED"
	ErrCodeAdjustmentRequired    = "ADJUSTMENT_REQUIRED"
	ErrCodeMultipleKinds         = "MULTIPLE_ADJUSTMENT_KINDS"
	ErrCodePercentOutOfRange     = "PERCENTAGE_OUT_OF_RANGE"
	ErrCodeFixedOutOfRange       = "FIXED_AMOUNT_OUT_OF_RANGE"
	ErrCodeDirectPriceNegative   = "DIRECT_PRICE_NEGATIVE"
)
