package worker

// creditnote_worker.go
// Processes credit note jobs from QueueCreditNote.
// A job is enqueued after a sale reversal commits. The worker persists the
// credit note, renders its PDF, emails a copy to the issuing supervisor and
// posts the event to the reconciliation webhook through the circuit breaker.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"counterdesk/internal/infra"
	"counterdesk/internal/model"
	"counterdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreditNoteJobPayload is the job envelope sent to QueueCreditNote.
type CreditNoteJobPayload struct {
	SaleID      string `json:"sale_id"`
	Reason      string `json:"reason"`
	IssuedBy    string `json:"issued_by"`
	TotalRefund string `json:"total_refund"`
}

// CreditNoteWorker processes credit note jobs from QueueCreditNote.
type CreditNoteWorker struct {
	creditNoteRepo repository.CreditNoteRepository
	saleRepo       repository.SaleRepository
	userRepo       repository.UserRepository
	dispatcher     *Dispatcher
	notifier       *infra.ReconcileNotifier
	rdb            *redis.Client
	pdfStoragePath string
}

// NewCreditNoteWorker wires all dependencies for the credit note worker.
func NewCreditNoteWorker(
	creditNoteRepo repository.CreditNoteRepository,
	saleRepo repository.SaleRepository,
	userRepo repository.UserRepository,
	dispatcher *Dispatcher,
	notifier *infra.ReconcileNotifier,
	rdb *redis.Client,
	pdfStoragePath string,
) *CreditNoteWorker {
	return &CreditNoteWorker{
		creditNoteRepo: creditNoteRepo,
		saleRepo:       saleRepo,
		userRepo:       userRepo,
		dispatcher:     dispatcher,
		notifier:       notifier,
		rdb:            rdb,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process handles a single credit note job:
//  1. Parse CreditNoteJobPayload from the job envelope
//  2. Skip if a credit note was already issued for the sale (redelivery)
//  3. Persist the note with the next sequence number, status "pending"
//  4. Render the PDF and flip the note to "issued"
//  5. Enqueue an email copy (client address when captured, issuer otherwise)
//  6. Post the event to the reconciliation webhook (circuit breaker, retries)
func (w *CreditNoteWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload CreditNoteJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("creditnote_worker: invalid payload")
		return
	}

	saleID, err := uuid.Parse(payload.SaleID)
	if err != nil {
		log.Error().Str("sale_id", payload.SaleID).Msg("creditnote_worker: invalid sale_id")
		return
	}
	issuedBy, err := uuid.Parse(payload.IssuedBy)
	if err != nil {
		log.Error().Str("issued_by", payload.IssuedBy).Msg("creditnote_worker: invalid issued_by")
		return
	}
	refund, err := decimal.NewFromString(payload.TotalRefund)
	if err != nil {
		log.Error().Str("total_refund", payload.TotalRefund).Msg("creditnote_worker: invalid total_refund")
		return
	}

	// Redelivered jobs must not mint a second note for the same sale.
	if existing, err := w.creditNoteRepo.FindBySaleID(ctx, saleID); err == nil && existing.Status == "issued" {
		log.Info().Str("sale_id", payload.SaleID).Int("number", existing.Number).
			Msg("creditnote_worker: note already issued, skipping")
		return
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Err(err).Str("sale_id", payload.SaleID).Msg("creditnote_worker: lookup failed")
		return
	}

	sale, err := w.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		log.Error().Err(err).Str("sale_id", payload.SaleID).Msg("creditnote_worker: sale not found")
		return
	}

	number, err := w.creditNoteRepo.NextNumber(ctx)
	if err != nil {
		log.Error().Err(err).Msg("creditnote_worker: failed to allocate number")
		w.toDLQ(ctx, raw, fmt.Sprintf("allocate number: %v", err))
		return
	}

	note := &model.CreditNote{
		SaleID:      saleID,
		Number:      number,
		RefundTotal: refund,
		Reason:      payload.Reason,
		IssuedBy:    issuedBy,
		Status:      "pending",
	}
	if err := w.creditNoteRepo.Create(ctx, note); err != nil {
		log.Error().Err(err).Str("sale_id", payload.SaleID).Msg("creditnote_worker: failed to create note")
		w.toDLQ(ctx, raw, fmt.Sprintf("create note: %v", err))
		return
	}

	pdfPath, pdfErr := infra.GenerateCreditNotePDF(note, sale, w.pdfStoragePath)
	if pdfErr != nil {
		log.Error().Err(pdfErr).Str("sale_id", payload.SaleID).Msg("creditnote_worker: PDF generation failed")
		note.Status = "error"
		msg := pdfErr.Error()
		note.LastError = &msg
		_ = w.creditNoteRepo.Update(ctx, note)
		w.toDLQ(ctx, raw, fmt.Sprintf("render pdf: %v", pdfErr))
		return
	}

	note.Status = "issued"
	note.PDFPath = &pdfPath
	note.LastError = nil
	if err := w.creditNoteRepo.Update(ctx, note); err != nil {
		log.Error().Err(err).Str("sale_id", payload.SaleID).Msg("creditnote_worker: failed to update note")
		return
	}
	log.Info().Int("number", note.Number).Str("sale_id", payload.SaleID).Str("pdf", pdfPath).
		Msg("creditnote_worker: credit note issued")

	// Email a copy to the client when the sale captured an address,
	// otherwise to the supervisor who authorised the reversal.
	recipient := ""
	if sale.ClientEmail != nil && *sale.ClientEmail != "" {
		recipient = *sale.ClientEmail
	} else if issuer, err := w.userRepo.FindByID(ctx, issuedBy); err == nil && issuer.Email != nil && *issuer.Email != "" {
		recipient = *issuer.Email
	}
	if recipient != "" {
		emailJob := EmailJobPayload{
			ToEmail: recipient,
			Subject: fmt.Sprintf("Credit note #%d — ticket #%d", note.Number, sale.TicketNumber),
			Body: fmt.Sprintf("Credit note #%d was issued for cancelled ticket #%d.\nRefund total: $%s\nReason: %s",
				note.Number, sale.TicketNumber, note.RefundTotal.StringFixed(2), note.Reason),
			PDFPath: pdfPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", recipient).Msg("creditnote_worker: failed to enqueue email")
		}
	}

	// Reconciliation webhook — retried with backoff, fast-fails while the
	// breaker is open.
	if w.notifier != nil && w.notifier.Enabled() {
		event := infra.ReconcileEvent{
			Event:        "credit_note_issued",
			SaleID:       payload.SaleID,
			TicketNumber: sale.TicketNumber,
			CreditNote:   note.Number,
			RefundTotal:  payload.TotalRefund,
			Reason:       payload.Reason,
			IssuedBy:     payload.IssuedBy,
		}
		notifyErr := withRetry(ctx, 3, func(attempt int) error {
			if err := w.notifier.Notify(ctx, event); err != nil {
				log.Warn().Err(err).Int("attempt", attempt+1).Str("sale_id", payload.SaleID).
					Msg("creditnote_worker: webhook attempt failed")
				return err
			}
			return nil
		})
		if notifyErr != nil {
			log.Error().Err(notifyErr).Str("sale_id", payload.SaleID).
				Msg("creditnote_worker: webhook failed after all retries")
			w.toDLQ(ctx, raw, fmt.Sprintf("reconcile webhook: %v", notifyErr))
		}
	}
}

func (w *CreditNoteWorker) toDLQ(ctx context.Context, payload json.RawMessage, reason string) {
	SendToDLQ(ctx, w.rdb, QueueCreditNote, "credit_note", payload, reason, 3)
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
