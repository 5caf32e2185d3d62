package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"engrafo/internal/domain"
	"engrafo/internal/sqlinline"
)

type ticketCreateRequest struct {
	Email      string                     `json:"email"`
	Transcript []domain.TranscriptMessage `json:"transcript"`
}

// TicketsCreate escalates a chat-bot conversation to a human agent. The
// transcript is captured verbatim and the visitor gets a ticket code to
// check back on.
func (a *App) TicketsCreate(w http.ResponseWriter, r *http.Request) {
	var req ticketCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "email is required")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid email address")
		return
	}
	if len(req.Transcript) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "transcript is required")
		return
	}

	transcript, err := json.Marshal(req.Transcript)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid transcript")
		return
	}

	code, err := domain.NewTicketCode()
	if err != nil {
		a.Logger.Error().Err(err).Msg("ticket code generation failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create ticket")
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertTicket, code, email, transcript)
	var id string
	var createdAt time.Time
	if err := row.Scan(&id, &createdAt); err != nil {
		a.Logger.Error().Err(err).Msg("insert ticket failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create ticket")
		return
	}

	a.enqueueNotification(r.Context(), domain.NotifyTicketReceived, email,
		"We received your support request",
		fmt.Sprintf("<p>Your support request was received. Your ticket code is <strong>%s</strong>.</p><p>We will reply to this address as soon as possible.</p>", code))

	a.json(w, http.StatusCreated, map[string]any{
		"success":     true,
		"ticket_code": code,
		"created_at":  createdAt,
	})
}

type replyDTO struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type ticketDTO struct {
	ID         string                     `json:"id"`
	TicketCode string                     `json:"ticket_code"`
	Email      string                     `json:"email"`
	Transcript []domain.TranscriptMessage `json:"transcript"`
	Status     string                     `json:"status"`
	Lifecycle  string                     `json:"lifecycle"`
	CreatedAt  time.Time                  `json:"created_at"`
	UpdatedAt  time.Time                  `json:"updated_at"`
	Replies    []replyDTO                 `json:"replies"`
}

func (a *App) fetchTicketByCode(r *http.Request, code string) (*domain.Ticket, error) {
	row := a.SQL.QueryRow(r.Context(), sqlinline.QGetTicketByCode, code)
	var t domain.Ticket
	var transcript []byte
	var status, lifecycle string
	if err := row.Scan(&t.ID, &t.TicketCode, &t.Email, &transcript,
		&status, &lifecycle, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(transcript, &t.Transcript); err != nil {
		return nil, err
	}
	t.Status = domain.TicketStatus(status)
	t.Lifecycle = domain.TicketLifecycle(lifecycle)
	return &t, nil
}

func (a *App) fetchReplies(r *http.Request, ticketID string) ([]replyDTO, error) {
	rows, err := a.SQL.Query(r.Context(), sqlinline.QListReplies, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	replies := []replyDTO{}
	for rows.Next() {
		var reply replyDTO
		var tid string
		if err := rows.Scan(&reply.ID, &tid, &reply.Sender, &reply.Body, &reply.CreatedAt); err != nil {
			return nil, err
		}
		replies = append(replies, reply)
	}
	return replies, rows.Err()
}

// TicketsGet lets a visitor check their ticket by code: transcript plus
// any replies exchanged since escalation.
func (a *App) TicketsGet(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
	if code == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "ticket code is required")
		return
	}
	t, err := a.fetchTicketByCode(r, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusNotFound, "not_found", "Ticket not found")
			return
		}
		a.Logger.Error().Err(err).Msg("fetch ticket failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load ticket")
		return
	}
	replies, err := a.fetchReplies(r, t.ID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("fetch replies failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load ticket")
		return
	}
	a.json(w, http.StatusOK, ticketToDTO(t, replies))
}

func ticketToDTO(t *domain.Ticket, replies []replyDTO) ticketDTO {
	transcript := t.Transcript
	if transcript == nil {
		transcript = []domain.TranscriptMessage{}
	}
	return ticketDTO{
		ID:         t.ID,
		TicketCode: t.TicketCode,
		Email:      t.Email,
		Transcript: transcript,
		Status:     string(t.Status),
		Lifecycle:  string(t.Lifecycle),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
		Replies:    replies,
	}
}

type ticketMessageRequest struct {
	Body string `json:"body"`
}

// TicketsAppendMessage lets the visitor add a follow-up to an open
// ticket. Closed tickets reject new messages; the visitor has to open
// a fresh one.
func (a *App) TicketsAppendMessage(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
	var req ticketMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Body) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "body is required")
		return
	}

	t, err := a.fetchTicketByCode(r, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusNotFound, "not_found", "Ticket not found")
			return
		}
		a.Logger.Error().Err(err).Msg("fetch ticket failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load ticket")
		return
	}
	if t.Lifecycle == domain.TicketClosed {
		a.error(w, http.StatusForbidden, "ticket_closed", "Ticket is closed")
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertReply, t.ID, string(domain.SenderUser), req.Body)
	var replyID string
	var createdAt time.Time
	if err := row.Scan(&replyID, &createdAt); err != nil {
		a.Logger.Error().Err(err).Msg("insert reply failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to save message")
		return
	}
	if _, err := a.SQL.Exec(r.Context(), sqlinline.QMarkTicketUnread, t.ID); err != nil {
		a.Logger.Error().Err(err).Str("ticket_id", t.ID).Msg("mark ticket unread failed")
	}

	a.json(w, http.StatusCreated, map[string]any{
		"id":         replyID,
		"created_at": createdAt,
	})
}

// AdminTicketsList supports the inbox view: filter by read status and
// lifecycle, newest first.
func (a *App) AdminTicketsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := strings.TrimSpace(q.Get("status"))
	lifecycle := strings.TrimSpace(q.Get("lifecycle"))
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	rows, err := a.SQL.Query(r.Context(), sqlinline.QListTickets, status, lifecycle, limit, offset)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list tickets failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list tickets")
		return
	}
	defer rows.Close()

	items := []ticketDTO{}
	for rows.Next() {
		var t domain.Ticket
		var transcript []byte
		var st, lc string
		if err := rows.Scan(&t.ID, &t.TicketCode, &t.Email, &transcript,
			&st, &lc, &t.CreatedAt, &t.UpdatedAt); err != nil {
			a.Logger.Error().Err(err).Msg("scan ticket row failed")
			continue
		}
		if err := json.Unmarshal(transcript, &t.Transcript); err != nil {
			a.Logger.Error().Err(err).Str("ticket_id", t.ID).Msg("decode transcript failed")
			continue
		}
		t.Status = domain.TicketStatus(st)
		t.Lifecycle = domain.TicketLifecycle(lc)
		items = append(items, ticketToDTO(&t, nil))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

type adminReplyRequest struct {
	Body string `json:"body"`
}

// AdminTicketReply records the agent's answer and emails the visitor.
// Replying implicitly marks the ticket read.
func (a *App) AdminTicketReply(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
	var req adminReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Body) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "body is required")
		return
	}

	t, err := a.fetchTicketByCode(r, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusNotFound, "not_found", "Ticket not found")
			return
		}
		a.Logger.Error().Err(err).Msg("fetch ticket failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load ticket")
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertReply, t.ID, string(domain.SenderAdmin), req.Body)
	var replyID string
	var createdAt time.Time
	if err := row.Scan(&replyID, &createdAt); err != nil {
		a.Logger.Error().Err(err).Msg("insert reply failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to save reply")
		return
	}
	if _, err := a.SQL.Exec(r.Context(), sqlinline.QMarkTicketRead, t.ID); err != nil {
		a.Logger.Error().Err(err).Str("ticket_id", t.ID).Msg("mark ticket read failed")
	}

	a.enqueueNotification(r.Context(), domain.NotifyTicketReply, t.Email,
		fmt.Sprintf("Reply to your support ticket %s", t.TicketCode),
		fmt.Sprintf("<p>%s</p><p>Ticket: %s</p>", req.Body, t.TicketCode))

	a.json(w, http.StatusCreated, map[string]any{
		"id":         replyID,
		"created_at": createdAt,
	})
}

// AdminTicketClose ends the conversation. The ticket stays readable by
// its code but rejects further visitor messages.
func (a *App) AdminTicketClose(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
	if code == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "ticket code is required")
		return
	}
	var id string
	if err := a.SQL.QueryRow(r.Context(), sqlinline.QCloseTicket, code).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusNotFound, "not_found", "Ticket not found")
			return
		}
		a.Logger.Error().Err(err).Msg("close ticket failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to close ticket")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true})
}
