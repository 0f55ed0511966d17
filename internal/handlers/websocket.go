package handlers

import (
	"net/http"
)

func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	// every connection gets its own id, one user can have several tabs open
	connectionID := h.ids.Generate()

	h.hub.Serve(w, r, h.wsConfig(), connectionID, user.UserName, h.chat.Handler)
}
