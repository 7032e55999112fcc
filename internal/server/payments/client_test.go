package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "2900", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "u1", r.PostForm.Get("metadata[user_id]"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_1","client_secret":"cs_1","status":"requires_payment","amount":2900,"metadata":{"user_id":"u1"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test")
	intent, err := c.CreateIntent(context.Background(), 2900, "usd", map[string]string{"user_id": "u1"})
	require.NoError(t, err)

	assert.Equal(t, "pi_1", intent.ID)
	assert.Equal(t, "cs_1", intent.ClientSecret)
	assert.Equal(t, int64(2900), intent.AmountCents)
}

func TestClient_RetrieveSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/checkout/sessions/sess_1", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"sess_1","payment_status":"paid","amount_total":7900,"metadata":{"bundle":"Money,Ego"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test")
	session, err := c.RetrieveSession(context.Background(), "sess_1")
	require.NoError(t, err)

	assert.Equal(t, SessionStatusPaid, session.PaymentStatus)
	assert.Equal(t, int64(7900), session.AmountTotalCents)
	assert.Equal(t, "Money,Ego", session.Metadata["bundle"])
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no such intent"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test")
	_, err := c.RetrieveIntent(context.Background(), "pi_missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
