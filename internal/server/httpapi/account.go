package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/trackpass/internal/server/models"
)

// userView is the wire shape of an account. The stored record carries the
// password hash; it must never leave the server.
type userView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func viewUser(u *models.User) userView {
	return userView{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

type signUpRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.SignUp(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, viewUser(user))
}

type logInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type logInResponse struct {
	AccessToken string   `json:"access_token"`
	User        userView `json:"user"`
}

func (h *Handler) handleLogIn(w http.ResponseWriter, r *http.Request) {
	var req logInRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.users.LogIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, logInResponse{AccessToken: token, User: viewUser(user)})
}

type meResponse struct {
	User    userView        `json:"user"`
	Profile *models.Profile `json:"profile"`
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())

	user, err := h.users.Get(r.Context(), caller.ID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	profile, err := h.progress.GetProfile(r.Context(), caller.ID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, meResponse{User: viewUser(user), Profile: profile})
}

func (h *Handler) handleCompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())

	profile, err := h.progress.CompleteOnboarding(r.Context(), caller.ID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())
	respondWithJSON(w, http.StatusOK, h.users.GetPreferences(r.Context(), caller.ID))
}

func (h *Handler) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())

	var patch models.PreferencesPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prefs, err := h.users.UpdatePreferences(r.Context(), caller.ID, &patch)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, prefs)
}

type redeemRequest struct {
	Code string `json:"code"`
}

func (h *Handler) handleRedeemCode(w http.ResponseWriter, r *http.Request) {
	caller := identityFrom(r.Context())

	var req redeemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.codes.Redeem(r.Context(), req.Code, caller.ID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

type devGrantRequest struct {
	Tracks []models.Track `json:"tracks"`
}

// handleDevGrant grants the caller tracks without any payment. The route
// answers 404 unless explicitly enabled in config; it must stay off in
// production.
func (h *Handler) handleDevGrant(w http.ResponseWriter, r *http.Request) {
	if !h.devGrantEnabled {
		respondWithError(w, http.StatusNotFound, "not found")
		return
	}
	caller := identityFrom(r.Context())

	var req devGrantRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	set, added, err := h.entitlements.Grant(r.Context(), caller.ID, req.Tracks)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, grantResponse{Tracks: set.Tracks, Added: added})
}
