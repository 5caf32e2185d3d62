package domain

import "time"

// NotificationStatus tracks outbox delivery state.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// Notification is a best-effort email queued after a primary state
// change committed. Delivery failures never roll anything back; the
// worker just records them here.
type Notification struct {
	ID        string
	Kind      string
	Recipient string
	Subject   string
	Body      string
	Status    NotificationStatus
	Attempts  int
	LastError string
	CreatedAt time.Time
	SentAt    *time.Time
}

// Notification kinds enqueued by the handlers.
const (
	NotifyDonationReceipt = "donation_receipt"
	NotifyTicketReceived  = "ticket_received"
	NotifyTicketReply     = "ticket_reply"
)
