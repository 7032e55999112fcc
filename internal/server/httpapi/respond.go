package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/trackpass/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorResponse{Error: message})
}

// statusForError maps the sentinel errors onto HTTP status codes. Anything
// unmatched is a 500; the handler logs those instead of echoing them.
func statusForError(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorPaymentNotCompleted), errors.Is(err, common.ErrorMetadataMismatch):
		return http.StatusPaymentRequired
	case errors.Is(err, common.ErrorAdminRequired):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrorProfileMissing):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorEmailTaken),
		errors.Is(err, common.ErrorNotEntitled),
		errors.Is(err, common.ErrorNotActiveTrack),
		errors.Is(err, common.ErrorWrongDay),
		errors.Is(err, common.ErrorCodeDeactivated),
		errors.Is(err, common.ErrorCodeExpired),
		errors.Is(err, common.ErrorCodeExhausted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError translates a service error into an HTTP response.
// Internal errors are logged with the request path and hidden from the
// client.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusForError(err)
	if code == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		respondWithError(w, code, "internal error")
		return
	}
	respondWithError(w, code, err.Error())
}

func decodeJSON(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return common.ErrorValidation
	}
	return nil
}
