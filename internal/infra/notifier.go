package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ReconcileEvent is posted to the back-office reconciliation webhook whenever
// a financial event alters the expected cash position (sale cancellations,
// refunds, credit notes).
type ReconcileEvent struct {
	Event        string `json:"event"` // "sale_cancelled" | "credit_note_issued"
	SaleID       string `json:"sale_id"`
	TicketNumber int    `json:"ticket_number,omitempty"`
	CreditNote   int    `json:"credit_note,omitempty"`
	RefundTotal  string `json:"refund_total"`
	Reason       string `json:"reason"`
	IssuedBy     string `json:"issued_by"`
	OccurredAt   string `json:"occurred_at"` // ISO 8601
}

// ReconcileNotifier posts financial events to the reconciliation webhook.
// Calls go through a circuit breaker so a downed endpoint never blocks or
// cascades into the reversal pipeline.
type ReconcileNotifier struct {
	webhookURL string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewReconcileNotifier(webhookURL string, cb *CircuitBreaker) *ReconcileNotifier {
	return &ReconcileNotifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cb:         cb,
	}
}

// Enabled reports whether a webhook URL is configured.
func (n *ReconcileNotifier) Enabled() bool { return n.webhookURL != "" }

// CBState exposes the breaker state for health endpoints.
func (n *ReconcileNotifier) CBState() CBState { return n.cb.State() }

// Notify posts the event through the circuit breaker.
func (n *ReconcileNotifier) Notify(ctx context.Context, event ReconcileEvent) error {
	if !n.Enabled() {
		return nil
	}
	if event.OccurredAt == "" {
		event.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}
	return n.cb.Execute(func() error {
		return n.post(ctx, event)
	})
}

func (n *ReconcileNotifier) post(ctx context.Context, event ReconcileEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notifier: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notifier: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notifier: webhook unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notifier: webhook returned %d", resp.StatusCode)
	}
	return nil
}
