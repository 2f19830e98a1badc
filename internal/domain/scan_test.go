package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBarcodeFormat(t *testing.T) {
	cases := map[string]BarcodeFormat{
		"QR_CODE":    BarcodeFormatQRCode,
		" qrcode ":   BarcodeFormatQRCode,
		"QrCode":     BarcodeFormatQRCode,
		"ean13":      BarcodeFormatEAN13,
		"CODE_128":   BarcodeFormatCode128,
		"DataMatrix": BarcodeFormatDataMatrix,
		"upc_a":      BarcodeFormat("UPC_A"),
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseBarcodeFormat(in), in)
	}
}
