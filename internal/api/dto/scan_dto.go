package dto

import "time"

// ScanRequest is a decoded barcode submitted by the scanning client.
type ScanRequest struct {
	Format   string `json:"format"`
	RawValue string `json:"raw_value"`
	DeviceID string `json:"device_id"`
}

// ScanResponse reports a processed scan.
type ScanResponse struct {
	ID        string                 `json:"id"`
	DeviceID  string                 `json:"device_id"`
	Format    string                 `json:"format"`
	Outcome   string                 `json:"outcome"`
	Reason    string                 `json:"reason,omitempty"`
	Token     *VerifiedTokenResponse `json:"token,omitempty"`
	Claims    map[string]any         `json:"claims,omitempty"`
	ScannedAt time.Time              `json:"scanned_at"`
}
