package handlers

import (
	"chatrooms-backend/internal/database"
	"chatrooms-backend/internal/fileHandlers"
	"errors"
	"io"
	"net/http"
	"strconv"
)

// UploadImage shares a multipart "image" in the room the user is live in.
// The optional connectionID field picks the tab when several are open.
func (h *Handlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	maxBytes := h.uploads.MaxBytes()

	// room for the multipart framing around the file
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)

	err := r.ParseMultipartForm(maxBytes)
	if err != nil {
		h.sugar.Debug(err)
		h.writeError(w, http.StatusBadRequest, "Image is too large or the form is invalid")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.sugar.Error(err)
		}
	}()

	var connectionID int64
	if value := r.FormValue("connectionID"); value != "" {
		connectionID, err = strconv.ParseInt(value, 10, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid connection ID")
			return
		}
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.sugar.Debug(err)
		h.writeError(w, http.StatusBadRequest, "No image was provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		h.writeInternalError(w, err)
		return
	}

	msg, err := h.chat.ShareImage(r.Context(), user.UserName, connectionID, header.Filename, data)
	switch {
	case err == nil:
		h.writeSuccess(w, http.StatusCreated, "Image uploaded", msg)
	case errors.Is(err, database.ErrNotFound):
		h.writeError(w, http.StatusConflict, "Join a room before uploading")
	case errors.Is(err, fileHandlers.ErrTooLarge):
		h.writeError(w, http.StatusRequestEntityTooLarge, "Image is too large")
	case errors.Is(err, fileHandlers.ErrNotImage), errors.Is(err, fileHandlers.ErrEmpty):
		h.writeError(w, http.StatusBadRequest, "Only images can be uploaded")
	default:
		h.writeInternalError(w, err)
	}
}
