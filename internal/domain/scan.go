package domain

import (
	"strings"
	"time"
)

// BarcodeFormat names the symbology reported by the scanning client.
type BarcodeFormat string

const (
	BarcodeFormatQRCode     BarcodeFormat = "QR_CODE"
	BarcodeFormatAztec      BarcodeFormat = "AZTEC"
	BarcodeFormatDataMatrix BarcodeFormat = "DATA_MATRIX"
	BarcodeFormatPDF417     BarcodeFormat = "PDF_417"
	BarcodeFormatCode128    BarcodeFormat = "CODE_128"
	BarcodeFormatEAN13      BarcodeFormat = "EAN_13"
)

// ParseBarcodeFormat normalizes client supplied format names ("qr_code", "QrCode").
func ParseBarcodeFormat(raw string) BarcodeFormat {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	switch normalized {
	case "QRCODE":
		return BarcodeFormatQRCode
	case "DATAMATRIX":
		return BarcodeFormatDataMatrix
	case "PDF417":
		return BarcodeFormatPDF417
	case "CODE128":
		return BarcodeFormatCode128
	case "EAN13":
		return BarcodeFormatEAN13
	}
	return BarcodeFormat(normalized)
}

// ScanOutcome records how a scan was resolved.
type ScanOutcome string

const (
	ScanOutcomeVerified ScanOutcome = "verified"
	ScanOutcomeIgnored  ScanOutcome = "ignored"
	ScanOutcomeRejected ScanOutcome = "rejected"
)

// ScanEvent is the persisted record of a single scan.
type ScanEvent struct {
	ID        string         `json:"id"`
	DeviceID  string         `json:"device_id"`
	Format    BarcodeFormat  `json:"format"`
	Outcome   ScanOutcome    `json:"outcome"`
	Reason    string         `json:"reason,omitempty"`
	Claims    map[string]any `json:"claims,omitempty"`
	ScannedAt time.Time      `json:"scanned_at"`
}
