package types

import "time"

// AlertEvent is the SQS payload published when a forecast render fires one or
// more alerts. The alert worker consumes it and forwards the alerts to the
// configured webhook. JSON keys are snake_case; downstream consumers depend on
// the exact key set.
type AlertEvent struct {
	// Core Identity
	EventID string `json:"event_id"`
	City    string `json:"city"`
	Unit    Unit   `json:"unit"`

	// The alerts fired by this render pass, in evaluation order
	// (wind before heat).
	Alerts []Alert `json:"alerts"`

	// Observability
	RequestID string    `json:"request_id,omitempty"`
	EmittedAt time.Time `json:"emitted_at"`
}
