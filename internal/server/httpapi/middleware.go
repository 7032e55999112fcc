package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/trackpass/internal/server/auth"
)

type ctxKey int

const identityKey ctxKey = iota

// identity is the verified caller, placed on the request context by
// requireUser.
type identity struct {
	ID    string
	Email string
}

func identityFrom(ctx context.Context) identity {
	id, _ := ctx.Value(identityKey).(identity)
	return id
}

// requireUser verifies the bearer token, resolves the account and puts
// the identity on the context. Tokens for deleted accounts are refused.
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			respondWithError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, err := auth.GetUserIDFromToken(token, h.jwtSecret)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		user, err := h.users.Get(r.Context(), userID)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "unknown account")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity{ID: user.ID, Email: user.Email})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin gates a route on the admin allow-list. It must run after
// requireUser. The check fails closed: a policy read error is a 500, not
// a pass.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := identityFrom(r.Context())

		authorized, err := h.admins.IsAuthorized(r.Context(), caller.Email)
		if err != nil {
			h.logger.Error(r.Context(), "admin policy check failed", "error", err)
			respondWithError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !authorized {
			respondWithError(w, http.StatusForbidden, "admin required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
