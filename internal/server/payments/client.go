package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client implements Provider against the provider's REST API: bearer-key
// auth, form-encoded request bodies, JSON responses.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", currency)
	addMetadata(form, metadata)

	intent := &Intent{}
	if err := c.do(ctx, http.MethodPost, "/v1/payment_intents", form, intent); err != nil {
		return nil, err
	}
	return intent, nil
}

func (c *Client) CreateCheckoutSession(ctx context.Context, lineItems []LineItem, successURL, cancelURL string, metadata map[string]string) (*Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	for i, li := range lineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[name]", li.Name)
		form.Set(prefix+"[amount]", strconv.FormatInt(li.AmountCents, 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(li.Quantity))
	}
	addMetadata(form, metadata)

	session := &Session{}
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (c *Client) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	intent := &Intent{}
	if err := c.do(ctx, http.MethodGet, "/v1/payment_intents/"+url.PathEscape(id), nil, intent); err != nil {
		return nil, err
	}
	return intent, nil
}

func (c *Client) RetrieveSession(ctx context.Context, id string) (*Session, error) {
	session := &Session{}
	if err := c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(id), nil, session); err != nil {
		return nil, err
	}
	return session, nil
}

func addMetadata(form url.Values, metadata map[string]string) {
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, dest any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payment provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("payment provider returned %s: %s", resp.Status, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decoding payment provider response: %w", err)
	}
	return nil
}
