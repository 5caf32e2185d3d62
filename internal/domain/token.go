package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewLinkToken returns a 64-character hex token (256 bits of entropy)
// used as the opaque download-link key.
func NewLinkToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate link token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

const ticketCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewTicketCode returns a human-readable support ticket code such as
// TKT-7H2K9M. The alphabet omits easily confused characters.
func NewTicketCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate ticket code: %w", err)
	}
	code := make([]byte, len(buf))
	for i, b := range buf {
		code[i] = ticketCodeAlphabet[int(b)%len(ticketCodeAlphabet)]
	}
	return "TKT-" + string(code), nil
}
