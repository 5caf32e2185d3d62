package domain

import "time"

// TicketStatus tracks whether an admin has looked at a ticket yet.
type TicketStatus string

// TicketLifecycle tracks whether a ticket still accepts user messages.
type TicketLifecycle string

const (
	TicketUnread TicketStatus = "unread"
	TicketRead   TicketStatus = "read"

	TicketActive TicketLifecycle = "active"
	TicketClosed TicketLifecycle = "closed"
)

// ReplySender tags who authored a support reply.
type ReplySender string

const (
	SenderUser  ReplySender = "user"
	SenderAdmin ReplySender = "admin"
)

// Ticket aggregates a chat-bot transcript that was escalated to a human
// agent. The transcript is the ordered message history captured at
// escalation time; later messages are appended as SupportReply rows.
type Ticket struct {
	ID         string
	TicketCode string
	Email      string
	Transcript []TranscriptMessage
	Status     TicketStatus
	Lifecycle  TicketLifecycle
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TranscriptMessage is one utterance in the captured chat transcript.
type TranscriptMessage struct {
	Sender string `json:"sender"`
	Body   string `json:"body"`
	SentAt string `json:"sent_at,omitempty"`
}

// SupportReply is an append-only child row of a ticket.
type SupportReply struct {
	ID        string
	TicketID  string
	Sender    ReplySender
	Body      string
	CreatedAt time.Time
}
