package handlers

import (
	"chatrooms-backend/internal/database"
	"errors"
	"net/http"
)

func (h *Handlers) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	u, err := h.db.UserByUsername(r.Context(), user.UserName)
	if errors.Is(err, database.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		h.writeInternalError(w, err)
		return
	}

	h.writeSuccess(w, http.StatusOK, "", u)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	err := h.db.DB().PingContext(r.Context())
	if err != nil {
		h.sugar.Error(err)
		h.writeError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	h.writeSuccess(w, http.StatusOK, "ok", nil)
}
