package domain

import (
	"testing"
	"time"
)

func TestResolveDonationBranches(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if got := ResolveDonation(nil, now, false); got != ResolveNotFound {
		t.Fatalf("nil donation = %v, want ResolveNotFound", got)
	}

	pending := &Donation{Status: DonationPending, ExpiresAt: now.Add(time.Hour)}
	if got := ResolveDonation(pending, now, false); got != ResolveNotCompleted {
		t.Fatalf("pending = %v, want ResolveNotCompleted", got)
	}

	expired := &Donation{Status: DonationCompleted, ExpiresAt: now.Add(-time.Minute)}
	if got := ResolveDonation(expired, now, false); got != ResolveExpired {
		t.Fatalf("expired = %v, want ResolveExpired", got)
	}

	valid := &Donation{Status: DonationCompleted, ExpiresAt: now.Add(time.Minute)}
	if got := ResolveDonation(valid, now, false); got != ResolveOK {
		t.Fatalf("valid = %v, want ResolveOK", got)
	}
}

func TestResolveDonationAdminBypassesEverything(t *testing.T) {
	now := time.Now()
	cases := []*Donation{
		{Status: DonationPending, ExpiresAt: now.Add(-time.Hour)},
		{Status: DonationCompleted, ExpiresAt: now.Add(-time.Hour)},
		{Status: DonationUnlinked, ExpiresAt: now.Add(-time.Hour)},
	}
	for _, d := range cases {
		if got := ResolveDonation(d, now, true); got != ResolveOK {
			t.Fatalf("admin resolve of %s = %v, want ResolveOK", d.Status, got)
		}
	}
}

func TestResolveExpiryTransitionIsMonotonic(t *testing.T) {
	expires := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	d := &Donation{Status: DonationCompleted, ExpiresAt: expires}

	if got := ResolveDonation(d, expires, false); got != ResolveOK {
		t.Fatalf("at expiry instant = %v, want ResolveOK", got)
	}
	if got := ResolveDonation(d, expires.Add(time.Second), false); got != ResolveExpired {
		t.Fatalf("after expiry = %v, want ResolveExpired", got)
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(1200); got != "12.00" {
		t.Fatalf("FormatAmount(1200) = %q, want \"12.00\"", got)
	}
	if got := FormatAmount(505); got != "5.05" {
		t.Fatalf("FormatAmount(505) = %q, want \"5.05\"", got)
	}
}

func TestParseAmountRejectsNonPositive(t *testing.T) {
	if _, err := ParseAmount(0); err == nil {
		t.Fatal("expected error for zero amount")
	}
	if _, err := ParseAmount(-3); err == nil {
		t.Fatal("expected error for negative amount")
	}
	cents, err := ParseAmount(12.00)
	if err != nil {
		t.Fatalf("ParseAmount(12.00) error: %v", err)
	}
	if cents != 1200 {
		t.Fatalf("ParseAmount(12.00) = %d, want 1200", cents)
	}
}

func TestNewLinkTokenIsHighEntropyHex(t *testing.T) {
	a, err := NewLinkToken()
	if err != nil {
		t.Fatalf("NewLinkToken error: %v", err)
	}
	b, err := NewLinkToken()
	if err != nil {
		t.Fatalf("NewLinkToken error: %v", err)
	}
	if len(a) != 64 {
		t.Fatalf("token length = %d, want 64", len(a))
	}
	if a == b {
		t.Fatal("two tokens collided")
	}
}

func TestNewTicketCodeShape(t *testing.T) {
	code, err := NewTicketCode()
	if err != nil {
		t.Fatalf("NewTicketCode error: %v", err)
	}
	if len(code) != 10 || code[:4] != "TKT-" {
		t.Fatalf("unexpected ticket code %q", code)
	}
}
