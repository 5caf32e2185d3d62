package domain

import (
	"fmt"
	"math"
	"time"
)

// DonationStatus enumerates the lifecycle states of a donation row.
type DonationStatus string

const (
	// DonationPending is the state of a freshly created attempt that has
	// not been confirmed by the payment processor yet.
	DonationPending DonationStatus = "pending"
	// DonationCompleted is reached either via the browser-driven verify
	// call or via the asynchronous IPN listener.
	DonationCompleted DonationStatus = "completed"
	// DonationUnlinked marks rows inserted from an IPN notification that
	// carried neither a donation id nor a known transaction id. They can
	// never be resolved to a document.
	DonationUnlinked DonationStatus = "unlinked"
)

// Donation represents one attempt to pay for document access.
type Donation struct {
	ID                  string
	DocumentID          *string
	PayerName           string
	PayerEmail          string
	AmountCents         int64
	Currency            string
	Status              DonationStatus
	PayPalPaymentID     *string
	PayPalTransactionID *string
	LinkToken           string
	Country             string
	CreatedAt           time.Time
	// ExpiresAt is anchored to creation time. Completing a donation must
	// never move it: the pending window already consumed real time.
	ExpiresAt time.Time
}

// Expired reports whether the download window has closed at the given
// instant.
func (d *Donation) Expired(now time.Time) bool {
	return now.After(d.ExpiresAt)
}

// FormatAmount renders a cent amount the way the payment processor
// expects totals: two decimal places, no grouping.
func FormatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// ParseAmount converts a decimal euro amount into cents. Non-positive
// totals are rejected.
func ParseAmount(amount float64) (int64, error) {
	cents := int64(math.Round(amount * 100))
	if cents <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}
	return cents, nil
}
