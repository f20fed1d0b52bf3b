package qr

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// Payload is what the badge QR encodes. Scanners hand it to the check-in
// endpoint verbatim, where the TICKET: label is stripped by normalization.
func Payload(ticketCode string) string {
	return "TICKET:" + ticketCode
}

// GenerateDataURL renders the ticket QR as a PNG data URL ready for an <img>
// tag in the confirmation page and email.
func GenerateDataURL(ticketCode string) (string, error) {
	png, err := qrcode.Encode(Payload(ticketCode), qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// GeneratePNG renders the raw PNG for the downloadable badge endpoint.
func GeneratePNG(ticketCode string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(Payload(ticketCode), qrcode.Medium, size)
}
