package events

import (
	"time"

	"github.com/spec-kit/scan-token-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTokenIssued   EventType = "token_issued"
	EventScanCompleted EventType = "scan_completed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TokenIssuedPayload payload. Claims are not carried to keep tokens out of logs.
type TokenIssuedPayload struct {
	ClaimNames []string  `json:"claim_names"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ScanCompletedPayload payload.
type ScanCompletedPayload struct {
	Scan domain.ScanEvent `json:"scan"`
}
