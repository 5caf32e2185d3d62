package domain

import "time"

// ResolveOutcome tags the result of a download-link lookup so every
// branch the resolver can take is explicit and exhaustive.
type ResolveOutcome int

const (
	// ResolveOK grants access to the donation and its document.
	ResolveOK ResolveOutcome = iota
	// ResolveNotFound means no donation carries the token.
	ResolveNotFound
	// ResolveNotCompleted means the donation exists but was never paid.
	ResolveNotCompleted
	// ResolveExpired means the donation was paid but the window closed.
	// Callers must surface this distinctly from ResolveNotFound.
	ResolveExpired
)

// ResolveResult is the tagged outcome of resolving a link token.
// Donation is set for every outcome except ResolveNotFound; Document is
// only set on ResolveOK and may still be nil for pure monetary support.
type ResolveResult struct {
	Outcome  ResolveOutcome
	Donation *Donation
	Document *DocumentPointer
}

// ResolveDonation classifies a donation against the resolver rules.
// Admin callers skip the completed/expiry checks entirely.
func ResolveDonation(d *Donation, now time.Time, admin bool) ResolveOutcome {
	if d == nil {
		return ResolveNotFound
	}
	if admin {
		return ResolveOK
	}
	if d.Status != DonationCompleted {
		return ResolveNotCompleted
	}
	if d.Expired(now) {
		return ResolveExpired
	}
	return ResolveOK
}
