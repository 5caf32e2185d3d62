package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"engrafo/internal/infra"
	"engrafo/internal/providers/paypal"
	"engrafo/internal/sqlinline"
	"engrafo/internal/storage"
)

// PaymentGateway is the slice of the PayPal client the handlers use.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, params paypal.CreatePaymentParams) (*paypal.CreatedPayment, error)
	ExecutePayment(ctx context.Context, paymentID, payerID string) (*paypal.ExecutedPayment, error)
	VerifyIPN(ctx context.Context, rawBody []byte) (string, error)
}

// App carries the request-scoped dependencies of every handler. There
// is no other shared state: each invocation works off the database and
// the injected clients alone.
type App struct {
	SQL    infra.SQLExecutor
	Logger zerolog.Logger
	Cfg    *infra.Config
	PayPal PaymentGateway
	Store  *storage.FileStore
	// PingDB reports database reachability for the readiness probe.
	// Nil means "always ready" (tests).
	PingDB func(ctx context.Context) error
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"success": false,
		"error":   errCode,
		"message": message,
	})
}

// paypalError surfaces a processor failure verbatim: the step that
// failed plus the raw payload, never a generic message.
func (a *App) paypalError(w http.ResponseWriter, err error) {
	if se, ok := paypal.AsStepError(err); ok {
		a.Logger.Error().Err(se.Err).Str("step", se.Step).Msg("paypal call failed")
		payload := map[string]any{
			"success": false,
			"step":    se.Step,
			"error":   se.Err.Error(),
		}
		if len(se.Details) > 0 {
			payload["details"] = json.RawMessage(se.Details)
		}
		a.json(w, http.StatusBadGateway, payload)
		return
	}
	a.Logger.Error().Err(err).Msg("paypal call failed")
	a.error(w, http.StatusBadGateway, "paypal", err.Error())
}

// enqueueNotification records a post-commit email in the outbox. A
// failure here is logged and swallowed: notification delivery must
// never undo or block the primary state change.
func (a *App) enqueueNotification(ctx context.Context, kind, recipient, subject, body string) {
	row := a.SQL.QueryRow(ctx, sqlinline.QEnqueueNotification, kind, recipient, subject, body)
	var id string
	if err := row.Scan(&id); err != nil {
		a.Logger.Error().Err(err).Str("kind", kind).Msg("enqueue notification failed")
	}
}
