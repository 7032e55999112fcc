package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/trackpass/internal/server/models"
	"github.com/dmitrijs2005/trackpass/internal/server/payments"
)

type intentRequest struct {
	Track models.Track `json:"track"`
}

func (h *Handler) handleCreateIntent(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())

	var req intentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	intent, err := h.payments.CreateTrackIntent(r.Context(), caller.ID, req.Track)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, intent)
}

type checkoutRequest struct {
	Tracks     []models.Track `json:"tracks"`
	SuccessURL string         `json:"success_url"`
	CancelURL  string         `json:"cancel_url"`
}

func (h *Handler) handleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())

	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.payments.CreateTrackCheckout(r.Context(), caller.ID, req.Tracks, req.SuccessURL, req.CancelURL)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, session)
}

type confirmIntentRequest struct {
	IntentID string       `json:"intent_id"`
	Track    models.Track `json:"track"`
}

type grantedResponse struct {
	AddedTracks []models.Track `json:"added_tracks"`
}

func (h *Handler) handleConfirmIntent(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())

	var req confirmIntentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	added, err := h.payments.ConfirmIntent(r.Context(), caller.ID, req.IntentID, req.Track)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, grantedResponse{AddedTracks: added})
}

type confirmSessionRequest struct {
	SessionID string `json:"session_id"`
}

func (h *Handler) handleConfirmSession(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())

	var req confirmSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	added, err := h.payments.ConfirmSession(r.Context(), caller.ID, req.SessionID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, grantedResponse{AddedTracks: added})
}

// handlePaymentWebhook ingests provider events. Unknown event types are
// acknowledged without action so the provider stops retrying them.
func (h *Handler) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var event payments.Event
	if err := decodeJSON(r, &event); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid event body")
		return
	}

	added, err := h.payments.HandleWebhookEvent(r.Context(), &event)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, grantedResponse{AddedTracks: added})
}
