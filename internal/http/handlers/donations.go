package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"engrafo/internal/domain"
	"engrafo/internal/middleware"
	"engrafo/internal/providers/paypal"
	"engrafo/internal/sqlinline"
)

type donationUserData struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type donationCreateRequest struct {
	UserData       donationUserData `json:"userData"`
	DocumentID     string           `json:"documentId"`
	DocumentTitle  string           `json:"documentTitle"`
	DonationAmount float64          `json:"donationAmount"`
}

// DonationsCreate is the payment-creation gateway: it inserts a pending
// donation row, opens a payment with the processor and hands the
// approval redirect back to the browser. Every attempt is a fresh row;
// there is no retry and no idempotency key.
func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	var req donationCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	name := strings.TrimSpace(req.UserData.Name)
	email := strings.TrimSpace(req.UserData.Email)
	if name == "" || email == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "name and email are required")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid email address")
		return
	}
	cents, err := domain.ParseAmount(req.DonationAmount)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	token, err := domain.NewLinkToken()
	if err != nil {
		a.Logger.Error().Err(err).Msg("link token generation failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create donation")
		return
	}

	country := middleware.CountryFromContext(r.Context())
	props, _ := json.Marshal(map[string]string{
		"locale":         middleware.LocaleFromContext(r.Context()),
		"document_title": req.DocumentTitle,
	})

	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertDonation,
		req.DocumentID, name, email, cents, a.Cfg.DonationCurrency,
		token, country, props, a.Cfg.DonationLinkTTL)
	var donationID string
	var createdAt, expiresAt time.Time
	if err := row.Scan(&donationID, &createdAt, &expiresAt); err != nil {
		a.Logger.Error().Err(err).Msg("insert donation failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create donation")
		return
	}

	created, err := a.PayPal.CreatePayment(r.Context(), paypal.CreatePaymentParams{
		AmountTotal: domain.FormatAmount(cents),
		Currency:    a.Cfg.DonationCurrency,
		Description: req.DocumentTitle,
		Custom:      donationID,
		ReturnURL:   a.Cfg.PublicBaseURL + "/donation/success",
		CancelURL:   a.Cfg.PublicBaseURL + "/donation/cancelled",
	})
	if err != nil {
		a.paypalError(w, err)
		return
	}

	if _, err := a.SQL.Exec(r.Context(), sqlinline.QSetDonationPaymentID, donationID, created.PaymentID); err != nil {
		a.Logger.Error().Err(err).Str("donation_id", donationID).Msg("store payment id failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to record payment")
		return
	}

	a.json(w, http.StatusCreated, map[string]any{
		"success":      true,
		"paymentId":    created.PaymentID,
		"approvalUrl":  created.ApprovalURL,
		"donationId":   donationID,
		"donationLink": a.Cfg.DownloadLink(token),
	})
}

type donationVerifyRequest struct {
	PaymentID  string `json:"paymentId"`
	PayerID    string `json:"payerId"`
	DonationID string `json:"donationId"`
}

// DonationsVerify is the payment-verification gateway invoked when the
// browser returns from the processor's approval redirect.
func (a *App) DonationsVerify(w http.ResponseWriter, r *http.Request) {
	var req donationVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.PaymentID == "" || req.PayerID == "" || req.DonationID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "paymentId, payerId and donationId are required")
		return
	}

	executed, err := a.PayPal.ExecutePayment(r.Context(), req.PaymentID, req.PayerID)
	if err != nil {
		a.paypalError(w, err)
		return
	}
	if executed.State != paypal.StateApproved {
		a.error(w, http.StatusBadGateway, "not_approved",
			fmt.Sprintf("payment state %q is not approved", executed.State))
		return
	}

	// The update deliberately leaves expires_at alone: the window was
	// fixed at creation and the pending period already consumed it.
	row := a.SQL.QueryRow(r.Context(), sqlinline.QCompleteDonation, req.DonationID, executed.TransactionID)
	var payerEmail, linkToken string
	var amountCents int64
	var expiresAt time.Time
	if err := row.Scan(&payerEmail, &amountCents, &linkToken, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusNotFound, "not_found", "Donation not found")
			return
		}
		a.Logger.Error().Err(err).Str("donation_id", req.DonationID).Msg("complete donation failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to complete donation")
		return
	}

	link := a.Cfg.DownloadLink(linkToken)
	a.enqueueNotification(r.Context(), domain.NotifyDonationReceipt, payerEmail,
		"Your download link",
		fmt.Sprintf("<p>Thank you for your donation of %s %s.</p><p>Download: <a href=%q>%s</a></p><p>The link expires at %s.</p>",
			domain.FormatAmount(amountCents), a.Cfg.DonationCurrency, link, link, expiresAt.UTC().Format(time.RFC3339)))

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"donation": map[string]any{
			"id":                    req.DonationID,
			"status":                string(domain.DonationCompleted),
			"paypal_transaction_id": executed.TransactionID,
			"link_token":            linkToken,
			"download_url":          link,
			"expires_at":            expiresAt,
		},
	})
}

// DonationsIPN is the passive webhook listener. Responses are plain
// text because the processor's retry logic keys off them, not off a
// JSON body.
func (a *App) DonationsIPN(w http.ResponseWriter, r *http.Request) {
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		a.plain(w, http.StatusBadRequest, "INVALID")
		return
	}

	ack, err := a.PayPal.VerifyIPN(r.Context(), rawBody)
	if err != nil {
		a.Logger.Error().Err(err).Msg("ipn verification call failed")
		a.plain(w, http.StatusInternalServerError, "INVALID")
		return
	}
	if ack != paypal.AckVerified {
		a.Logger.Warn().Str("ack", ack).Msg("ipn payload failed verification")
		a.plain(w, http.StatusBadRequest, "INVALID")
		return
	}

	values, err := paypal.ParseIPN(rawBody)
	if err != nil {
		a.plain(w, http.StatusBadRequest, "INVALID")
		return
	}

	// Any status other than Completed is acknowledged without mutation
	// so the processor does not treat it as a delivery failure.
	if values.PaymentStatus != paypal.IPNCompleted {
		a.plain(w, http.StatusOK, "IGNORED: "+values.PaymentStatus)
		return
	}

	if values.Custom != "" {
		row := a.SQL.QueryRow(r.Context(), sqlinline.QCompleteDonation, values.Custom, values.TxnID)
		var payerEmail, linkToken string
		var amountCents int64
		var expiresAt time.Time
		err := row.Scan(&payerEmail, &amountCents, &linkToken, &expiresAt)
		if err == nil {
			a.plain(w, http.StatusOK, "OK: VERIFIED+PROCESSED")
			return
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			a.plain(w, http.StatusInternalServerError, "DB ERROR: "+err.Error())
			return
		}
		// Correlation id did not match a row; fall through to the
		// transaction-id path.
	}

	if values.TxnID != "" {
		row := a.SQL.QueryRow(r.Context(), sqlinline.QCompleteDonationByTxn, values.TxnID)
		var id string
		err := row.Scan(&id)
		if err == nil {
			a.plain(w, http.StatusOK, "OK: VERIFIED+PROCESSED")
			return
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			a.plain(w, http.StatusInternalServerError, "DB ERROR: "+err.Error())
			return
		}
	}

	// No way to correlate the notification. Record the money as an
	// unlinked donation: it can never resolve to a document.
	cents := parseGrossAmount(values.GrossAmount)
	currency := values.Currency
	if currency == "" {
		currency = a.Cfg.DonationCurrency
	}
	token, err := domain.NewLinkToken()
	if err != nil {
		a.plain(w, http.StatusInternalServerError, "DB ERROR: "+err.Error())
		return
	}
	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertUnlinkedDonation,
		"", values.PayerEmail, cents, currency, token)
	var id string
	if err := row.Scan(&id); err != nil {
		a.plain(w, http.StatusInternalServerError, "DB ERROR: "+err.Error())
		return
	}
	a.plain(w, http.StatusOK, "OK: VERIFIED+PROCESSED")
}

func (a *App) plain(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}

func parseGrossAmount(gross string) int64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(gross), 64)
	if err != nil || f < 0 {
		return 0
	}
	cents, err := domain.ParseAmount(f)
	if err != nil {
		return 0
	}
	return cents
}

type donationResolveRequest struct {
	Token string `json:"token"`
}

// DonationsResolve is the download-link resolver. The three failure
// cases carry distinct status codes so the frontend can branch its
// messaging; an authenticated admin bypasses all checks.
func (a *App) DonationsResolve(w http.ResponseWriter, r *http.Request) {
	var req donationResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "token is required")
		return
	}

	admin := middleware.IsAdminRequest(a.Cfg.JWTSecret, r)

	d, err := a.fetchDonationByToken(r, req.Token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusNotFound, "not_found", "Donation not found")
			return
		}
		a.Logger.Error().Err(err).Msg("fetch donation by token failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to resolve download link")
		return
	}

	result := domain.ResolveResult{
		Outcome:  domain.ResolveDonation(d, time.Now(), admin),
		Donation: d,
	}
	switch result.Outcome {
	case domain.ResolveNotCompleted:
		a.error(w, http.StatusForbidden, "not_completed", "Donation not completed")
		return
	case domain.ResolveExpired:
		a.error(w, http.StatusGone, "expired", "Download link has expired")
		return
	case domain.ResolveNotFound:
		a.error(w, http.StatusNotFound, "not_found", "Donation not found")
		return
	}

	if d.DocumentID != nil {
		pointer, err := a.fetchDocumentPointer(r, *d.DocumentID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			a.Logger.Error().Err(err).Msg("fetch document pointer failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to resolve document")
			return
		}
		result.Document = pointer
	}

	payload := map[string]any{
		"success": true,
		"donation": map[string]any{
			"id":          d.ID,
			"status":      string(d.Status),
			"payer_email": d.PayerEmail,
			"amount":      domain.FormatAmount(d.AmountCents),
			"currency":    d.Currency,
			"created_at":  d.CreatedAt,
			"expires_at":  d.ExpiresAt,
		},
	}
	// A donation without a document is pure monetary support, not an
	// error: the document field is simply null.
	if result.Document != nil {
		payload["document"] = result.Document
	} else {
		payload["document"] = nil
	}
	a.json(w, http.StatusOK, payload)
}

func (a *App) fetchDonationByToken(r *http.Request, token string) (*domain.Donation, error) {
	row := a.SQL.QueryRow(r.Context(), sqlinline.QGetDonationByToken, token)
	var d domain.Donation
	var status string
	if err := row.Scan(&d.ID, &d.DocumentID, &d.PayerName, &d.PayerEmail, &d.AmountCents,
		&d.Currency, &status, &d.PayPalPaymentID, &d.PayPalTransactionID,
		&d.LinkToken, &d.Country, &d.CreatedAt, &d.ExpiresAt); err != nil {
		return nil, err
	}
	d.Status = domain.DonationStatus(status)
	return &d, nil
}

func (a *App) fetchDocumentPointer(r *http.Request, documentID string) (*domain.DocumentPointer, error) {
	row := a.SQL.QueryRow(r.Context(), sqlinline.QGetDocumentPointer, documentID)
	var pointer domain.DocumentPointer
	var storageKey string
	if err := row.Scan(&pointer.ID, &pointer.Title, &storageKey); err != nil {
		return nil, err
	}
	pointer.StorageURL = a.Cfg.PublicBaseURL + "/files/" + storageKey
	return &pointer, nil
}

type donationDTO struct {
	ID                  string    `json:"id"`
	DocumentID          *string   `json:"document_id"`
	PayerName           string    `json:"payer_name"`
	PayerEmail          string    `json:"payer_email"`
	Amount              string    `json:"amount"`
	Currency            string    `json:"currency"`
	Status              string    `json:"status"`
	PayPalPaymentID     *string   `json:"paypal_payment_id"`
	PayPalTransactionID *string   `json:"paypal_transaction_id"`
	LinkToken           string    `json:"link_token"`
	Country             string    `json:"country"`
	CreatedAt           time.Time `json:"created_at"`
	ExpiresAt           time.Time `json:"expires_at"`
}

// AdminDonationsList returns every donation attempt, unlinked rows
// included, newest first.
func (a *App) AdminDonationsList(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	rows, err := a.SQL.Query(r.Context(), sqlinline.QListDonations, limit, offset)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list donations failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list donations")
		return
	}
	defer rows.Close()

	items := []donationDTO{}
	for rows.Next() {
		var d domain.Donation
		var status string
		if err := rows.Scan(&d.ID, &d.DocumentID, &d.PayerName, &d.PayerEmail, &d.AmountCents,
			&d.Currency, &status, &d.PayPalPaymentID, &d.PayPalTransactionID,
			&d.LinkToken, &d.Country, &d.CreatedAt, &d.ExpiresAt); err != nil {
			a.Logger.Error().Err(err).Msg("scan donation row failed")
			continue
		}
		items = append(items, donationDTO{
			ID:                  d.ID,
			DocumentID:          d.DocumentID,
			PayerName:           d.PayerName,
			PayerEmail:          d.PayerEmail,
			Amount:              domain.FormatAmount(d.AmountCents),
			Currency:            d.Currency,
			Status:              status,
			PayPalPaymentID:     d.PayPalPaymentID,
			PayPalTransactionID: d.PayPalTransactionID,
			LinkToken:           d.LinkToken,
			Country:             d.Country,
			CreatedAt:           d.CreatedAt,
			ExpiresAt:           d.ExpiresAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// AdminDonationDelete removes a donation row. Rows are never deleted
// automatically; this is the explicit admin action.
func (a *App) AdminDonationDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid donation id")
		return
	}
	tag, err := a.SQL.Exec(r.Context(), sqlinline.QDeleteDonation, id)
	if err != nil {
		a.Logger.Error().Err(err).Msg("delete donation failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete donation")
		return
	}
	if tag.RowsAffected() == 0 {
		a.error(w, http.StatusNotFound, "not_found", "Donation not found")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return fallback
}
