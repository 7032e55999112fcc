// Package payments wraps the payment provider capability and normalizes
// every completion signal into the entitlement store's grant operation.
package payments

import (
	"context"
	"encoding/json"
)

// Provider statuses as reported by the payment API.
const (
	IntentStatusSucceeded = "succeeded"
	SessionStatusPaid     = "paid"
)

// EventCheckoutCompleted is the webhook event type delivered when a
// checkout session finishes.
const EventCheckoutCompleted = "checkout.session.completed"

// Intent is a payment intent as seen through the provider capability.
type Intent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret,omitempty"`
	Status       string            `json:"status"`
	AmountCents  int64             `json:"amount"`
	Metadata     map[string]string `json:"metadata"`
}

// Session is a hosted checkout session.
type Session struct {
	ID               string            `json:"id"`
	URL              string            `json:"url,omitempty"`
	PaymentStatus    string            `json:"payment_status"`
	AmountTotalCents int64             `json:"amount_total"`
	Metadata         map[string]string `json:"metadata"`
}

// LineItem is one priced entry of a checkout session.
type LineItem struct {
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
	Quantity    int    `json:"quantity"`
}

// Event is a webhook notification from the provider.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Provider is the opaque payment capability consumed by the adapter.
// Implementations: the REST Client, and fakes in tests.
type Provider interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error)
	CreateCheckoutSession(ctx context.Context, lineItems []LineItem, successURL, cancelURL string, metadata map[string]string) (*Session, error)
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
	RetrieveSession(ctx context.Context, id string) (*Session, error)
}
