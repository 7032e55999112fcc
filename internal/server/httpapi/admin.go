package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/trackpass/internal/server/models"
)

type adminGrantRequest struct {
	UserID string         `json:"user_id"`
	Tracks []models.Track `json:"tracks"`
	Revoke bool           `json:"revoke,omitempty"`
}

type grantResponse struct {
	Tracks []models.Track `json:"tracks"`
	Added  []models.Track `json:"added,omitempty"`
}

// handleAdminGrant adjusts a user's entitlement ledger directly. With
// revoke set the listed tracks are removed instead of added.
func (h *Handler) handleAdminGrant(w http.ResponseWriter, r *http.Request) {
	var req adminGrantRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Revoke {
		set, _, err := h.entitlements.Revoke(r.Context(), req.UserID, req.Tracks)
		if err != nil {
			h.respondServiceError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, grantResponse{Tracks: set.Tracks})
		return
	}

	set, added, err := h.entitlements.Grant(r.Context(), req.UserID, req.Tracks)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, grantResponse{Tracks: set.Tracks, Added: added})
}

type createCodeRequest struct {
	Tracks     []models.Track `json:"tracks"`
	UsageLimit int            `json:"usage_limit"`
	TTLDays    int            `json:"ttl_days"`
}

func (h *Handler) handleAdminCreateCode(w http.ResponseWriter, r *http.Request) {
	var req createCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	code, err := h.codes.Create(r.Context(), req.Tracks, req.UsageLimit, req.TTLDays)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, code)
}

type codeListResponse struct {
	Codes []*models.AccessCode `json:"codes"`
}

func (h *Handler) handleAdminListCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.codes.List(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, codeListResponse{Codes: codes})
}

func (h *Handler) handleAdminDeactivateCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.codes.Deactivate(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, code)
}

type addAdminRequest struct {
	Email string `json:"email"`
}

func (h *Handler) handleAdminAddAdmin(w http.ResponseWriter, r *http.Request) {
	var req addAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.admins.AddAdmin(r.Context(), req.Email); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"email": req.Email})
}

type adminListResponse struct {
	Emails []string `json:"emails"`
}

func (h *Handler) handleAdminListAdmins(w http.ResponseWriter, r *http.Request) {
	emails, err := h.admins.ListAdmins(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, adminListResponse{Emails: emails})
}
