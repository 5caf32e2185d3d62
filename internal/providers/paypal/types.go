package paypal

// Payment states returned by the execute call. Only StateApproved
// permits marking a donation completed.
const (
	StateApproved = "approved"
)

// IPN acknowledgements from the verification endpoint. Anything other
// than the literal AckVerified must be treated as spoofed.
const (
	AckVerified = "VERIFIED"
	AckInvalid  = "INVALID"
)

// IPN payment_status sentinel that triggers a mutation.
const IPNCompleted = "Completed"

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type paymentLink struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type paymentAmount struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type paymentTransaction struct {
	Amount           paymentAmount     `json:"amount"`
	Description      string            `json:"description,omitempty"`
	Custom           string            `json:"custom,omitempty"`
	RelatedResources []relatedResource `json:"related_resources,omitempty"`
}

type relatedResource struct {
	Sale *saleResource `json:"sale,omitempty"`
}

type saleResource struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

type redirectURLs struct {
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

type payerInfo struct {
	PaymentMethod string `json:"payment_method"`
}

type createPaymentRequest struct {
	Intent       string               `json:"intent"`
	Payer        payerInfo            `json:"payer"`
	Transactions []paymentTransaction `json:"transactions"`
	RedirectURLs redirectURLs         `json:"redirect_urls"`
}

type paymentResponse struct {
	ID           string               `json:"id"`
	State        string               `json:"state"`
	Transactions []paymentTransaction `json:"transactions"`
	Links        []paymentLink        `json:"links"`
}

type executePaymentRequest struct {
	PayerID string `json:"payer_id"`
}

// CreatePaymentParams describes one payment-creation attempt.
type CreatePaymentParams struct {
	AmountTotal string // two-decimal string, e.g. "12.00"
	Currency    string
	Description string
	// Custom carries the internal donation id so the IPN listener can
	// correlate asynchronous notifications back to the row.
	Custom    string
	ReturnURL string
	CancelURL string
}

// CreatedPayment is the useful subset of a created payment resource.
type CreatedPayment struct {
	PaymentID   string
	ApprovalURL string
}

// ExecutedPayment is the useful subset of an executed payment resource.
type ExecutedPayment struct {
	State         string
	TransactionID string
}

// IPNValues is the form-decoded subset of an IPN notification the
// webhook listener acts on.
type IPNValues struct {
	PaymentStatus string
	TxnID         string
	Custom        string
	PayerEmail    string
	GrossAmount   string
	Currency      string
}
