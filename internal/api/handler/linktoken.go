package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ibadahth/salah-notify/internal/api/respond"
)

// CreateLinkToken issues a short-lived token the user sends to the bot as
// `link <code>` to pair their LINE account.
func (h *Handler) CreateLinkToken(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	token, expiresAt, err := h.store.IssueLinkToken(r.Context(), userID)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Could not issue link token")
		return
	}

	respond.WriteJSONObject(w, http.StatusCreated, map[string]interface{}{
		"token":      token,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
	})
}
