package handlers

import (
	"chatrooms-backend/internal/database"
	"chatrooms-backend/internal/models"
	"chatrooms-backend/internal/validator"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.db.ListRooms(r.Context())
	if err != nil {
		h.writeInternalError(w, err)
		return
	}

	h.writeSuccess(w, http.StatusOK, "", rooms)
}

func (h *Handlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	type CreateRoomRequest struct {
		Name string `json:"name"`
	}

	var request CreateRoomRequest
	err := decodeJSON(w, r, &request)
	if err != nil {
		h.sugar.Debug(err)
		h.writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	name := strings.TrimSpace(request.Name)
	err = validator.RoomName(name)
	if err != nil {
		if err.Error() == "not_allowed_chars" {
			h.writeError(w, http.StatusBadRequest, validator.RoomNameNotAllowed+" are not allowed in room names")
		} else {
			h.writeFieldErrors(w, map[string]string{"Name": err.Error()})
		}
		return
	}

	creator, err := h.db.UserByUsername(r.Context(), user.UserName)
	if err != nil {
		h.writeInternalError(w, err)
		return
	}

	room := models.Room{
		ID:        h.ids.Generate(),
		Name:      name,
		Creator:   creator.DisplayName,
		CreatedAt: h.now().UnixMilli(),
	}

	err = h.db.CreateRoom(r.Context(), room)
	if errors.Is(err, database.ErrDuplicate) {
		h.writeError(w, http.StatusConflict, "Room exists already")
		return
	} else if err != nil {
		h.writeInternalError(w, err)
		return
	}

	h.sugar.Infof("User [%s] created room [%s]", user.UserName, room.Name)
	h.writeSuccess(w, http.StatusCreated, "Room created", room)
}

// GetRoom returns the stored history of a room and who is live in it.
func (h *Handlers) GetRoom(w http.ResponseWriter, r *http.Request) {
	requested := chi.URLParam(r, "room")

	room, err := h.db.RoomByName(r.Context(), requested)
	if errors.Is(err, database.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("%s doesn't exist", requested))
		return
	} else if err != nil {
		h.writeInternalError(w, err)
		return
	}

	history, err := h.db.MessagesByRoom(r.Context(), room.Name)
	if err != nil {
		h.writeInternalError(w, err)
		return
	}

	roomUsers, err := h.chat.RoomUsers(r.Context(), room.Name)
	if err != nil {
		h.writeInternalError(w, err)
		return
	}

	type RoomResponse struct {
		Room     models.Room             `json:"room"`
		Messages []models.Message        `json:"messages"`
		Users    []models.ActivePresence `json:"users"`
	}

	if history == nil {
		history = []models.Message{}
	}
	if roomUsers.Users == nil {
		roomUsers.Users = []models.ActivePresence{}
	}

	h.writeSuccess(w, http.StatusOK, "", RoomResponse{Room: room, Messages: history, Users: roomUsers.Users})
}
