package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers email messages. The worker depends on this contract
// so tests can substitute fakes.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ResendOptions configures the Resend API client.
type ResendOptions struct {
	APIKey     string
	From       string
	BaseURL    string
	HTTPClient *http.Client
}

// ResendClient sends email through the Resend HTTP API.
type ResendClient struct {
	apiKey  string
	from    string
	baseURL string
	client  *http.Client
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// NewResendClient validates the options and returns a ready client.
func NewResendClient(opts ResendOptions) (*ResendClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("resend api key is required")
	}
	if opts.From == "" {
		return nil, errors.New("sender address is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &ResendClient{
		apiKey:  opts.APIKey,
		from:    opts.From,
		baseURL: baseURL,
		client:  client,
	}, nil
}

// Send delivers one message. Errors carry the API's raw response body.
func (c *ResendClient) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("recipient is required")
	}
	payload := resendRequest{
		From:    c.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return fmt.Errorf("encode email: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", &buf)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("send email: status %d: %s", resp.StatusCode, body)
	}
	return nil
}
