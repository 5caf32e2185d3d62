package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 20 * time.Second

// StepError tags a processor-side failure with the step that produced
// it and the raw response payload, so callers can surface the precise
// failure point instead of a generic message.
type StepError struct {
	Step    string
	Err     error
	Details json.RawMessage
}

func (e *StepError) Error() string {
	return fmt.Sprintf("paypal %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// AsStepError extracts a StepError from an error chain.
func AsStepError(err error) (*StepError, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Options configures a Client. BaseURL and IPNURL default to the
// sandbox endpoints.
type Options struct {
	ClientID   string
	Secret     string
	BaseURL    string
	IPNURL     string
	HTTPClient *http.Client
}

// Client talks to the PayPal REST payments API and the IPN
// verification endpoint.
type Client struct {
	clientID string
	secret   string
	baseURL  string
	ipnURL   string
	client   *http.Client
}

// NewClient validates the credentials and returns a ready client.
func NewClient(opts Options) (*Client, error) {
	if opts.ClientID == "" || opts.Secret == "" {
		return nil, errors.New("paypal credentials are required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api-m.sandbox.paypal.com"
	}
	ipnURL := strings.TrimSpace(opts.IPNURL)
	if ipnURL == "" {
		ipnURL = "https://ipnpb.sandbox.paypal.com/cgi-bin/webscr"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		clientID: opts.ClientID,
		secret:   opts.Secret,
		baseURL:  baseURL,
		ipnURL:   ipnURL,
		client:   client,
	}, nil
}

// AccessToken fetches a client-credentials token. Failures are tagged
// with step "token" and carry the processor's raw error payload.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", &StepError{Step: "token", Err: err}
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &StepError{Step: "token", Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return "", &StepError{Step: "token", Err: fmt.Errorf("status %d", resp.StatusCode), Details: body}
	}
	var out tokenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &StepError{Step: "token", Err: err, Details: body}
	}
	if out.AccessToken == "" {
		return "", &StepError{Step: "token", Err: errors.New("empty access token"), Details: body}
	}
	return out.AccessToken, nil
}

// CreatePayment opens a payment resource and returns its id together
// with the user-facing approval redirect URL.
func (c *Client) CreatePayment(ctx context.Context, params CreatePaymentParams) (*CreatedPayment, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	payload := createPaymentRequest{
		Intent: "sale",
		Payer:  payerInfo{PaymentMethod: "paypal"},
		Transactions: []paymentTransaction{{
			Amount:      paymentAmount{Total: params.AmountTotal, Currency: params.Currency},
			Description: params.Description,
			Custom:      params.Custom,
		}},
		RedirectURLs: redirectURLs{ReturnURL: params.ReturnURL, CancelURL: params.CancelURL},
	}

	body, err := c.postJSON(ctx, token, "/v1/payments/payment", payload, "payment")
	if err != nil {
		return nil, err
	}

	var out paymentResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &StepError{Step: "payment", Err: err, Details: body}
	}
	if out.ID == "" {
		return nil, &StepError{Step: "payment-missing-id", Err: errors.New("payment resource has no id"), Details: body}
	}
	approval := ""
	for _, link := range out.Links {
		if link.Rel == "approval_url" {
			approval = link.Href
			break
		}
	}
	if approval == "" {
		// The approval link is the one thing the browser needs. Its
		// absence is a hard error, never silently ignored.
		return nil, &StepError{Step: "approval-url", Err: errors.New("no approval_url link in payment resource"), Details: body}
	}
	return &CreatedPayment{PaymentID: out.ID, ApprovalURL: approval}, nil
}

// ExecutePayment finalizes an approved payment on behalf of payerID and
// reports the resulting state plus the sale transaction id.
func (c *Client) ExecutePayment(ctx context.Context, paymentID, payerID string) (*ExecutedPayment, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	path := "/v1/payments/payment/" + url.PathEscape(paymentID) + "/execute"
	body, err := c.postJSON(ctx, token, path, executePaymentRequest{PayerID: payerID}, "execute")
	if err != nil {
		return nil, err
	}

	var out paymentResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &StepError{Step: "execute", Err: err, Details: body}
	}
	executed := &ExecutedPayment{State: out.State}
	for _, txn := range out.Transactions {
		for _, related := range txn.RelatedResources {
			if related.Sale != nil && related.Sale.ID != "" {
				executed.TransactionID = related.Sale.ID
				break
			}
		}
	}
	return executed, nil
}

// VerifyIPN replays a raw IPN body to the verification endpoint with
// the _notify-validate marker prepended and returns the processor's
// literal acknowledgement.
func (c *Client) VerifyIPN(ctx context.Context, rawBody []byte) (string, error) {
	payload := append([]byte("cmd=_notify-validate&"), rawBody...)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ipnURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ipn verify: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ipn verify: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ipn verify: read response: %w", err)
	}
	return strings.TrimSpace(string(body)), nil
}

func (c *Client) postJSON(ctx context.Context, token, path string, payload any, step string) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, &StepError{Step: step, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, &StepError{Step: step, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &StepError{Step: step, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, &StepError{Step: step, Err: fmt.Errorf("status %d", resp.StatusCode), Details: body}
	}
	return body, nil
}

// ParseIPN decodes the fields the webhook listener acts on from a raw
// form-encoded IPN body.
func ParseIPN(rawBody []byte) (IPNValues, error) {
	values, err := url.ParseQuery(string(rawBody))
	if err != nil {
		return IPNValues{}, fmt.Errorf("parse ipn body: %w", err)
	}
	return IPNValues{
		PaymentStatus: values.Get("payment_status"),
		TxnID:         values.Get("txn_id"),
		Custom:        values.Get("custom"),
		PayerEmail:    values.Get("payer_email"),
		GrossAmount:   values.Get("mc_gross"),
		Currency:      values.Get("mc_currency"),
	}, nil
}
