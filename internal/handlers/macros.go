package handlers

import (
	"chatrooms-backend/internal/models"
	"encoding/json"
	"net/http"
)

type response struct {
	Flash  models.Flash      `json:"flash"`
	Data   any               `json:"data,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		h.sugar.Error(err)
	}
}

func (h *Handlers) writeSuccess(w http.ResponseWriter, status int, msg string, data any) {
	h.writeJSON(w, status, response{Flash: models.Flash{Success: msg}, Data: data})
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, response{Flash: models.Flash{Error: msg}})
}

func (h *Handlers) writeFieldErrors(w http.ResponseWriter, fieldErrors map[string]string) {
	h.writeJSON(w, http.StatusBadRequest, response{Flash: models.Flash{Error: "Please check the highlighted fields"}, Fields: fieldErrors})
}

func (h *Handlers) writeInternalError(w http.ResponseWriter, err error) {
	h.sugar.Error(err)
	h.writeError(w, http.StatusInternalServerError, "Something went wrong, try again later")
}

// decodeJSON reads a request body of at most 1 MB into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(v)
}
