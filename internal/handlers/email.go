package handlers

import (
	"chatrooms-backend/internal/database"
	"chatrooms-backend/internal/models"
	"chatrooms-backend/internal/validator"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const usedResetLink = "You have used this url to reset your password once and cannot be used again."

func (h *Handlers) Forgot(w http.ResponseWriter, r *http.Request) {
	type Forgot struct {
		Email string `json:"email"`
	}

	var forgot Forgot
	err := decodeJSON(w, r, &forgot)
	if err != nil {
		h.sugar.Debug(err)
		h.writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	user, err := h.db.UserByEmail(r.Context(), strings.TrimSpace(forgot.Email))
	if errors.Is(err, database.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "Account with this email doesn't exist!")
		return
	} else if err != nil {
		h.writeInternalError(w, err)
		return
	}

	token, err := uuid.NewRandom()
	if err != nil {
		h.writeInternalError(w, err)
		return
	}

	err = h.db.CreateResetLink(r.Context(), models.ResetLink{
		Token:     token.String(),
		UserName:  user.UserName,
		CreatedAt: h.now(),
	})
	if err != nil {
		h.writeInternalError(w, err)
		return
	}

	err = h.mailer.SendPasswordReset(r.Context(), user.Email, user.DisplayName, token.String())
	if err != nil {
		h.writeInternalError(w, err)
		return
	}

	h.writeSuccess(w, http.StatusOK, "Check your email!", nil)
}

func (h *Handlers) ResetCheck(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	_, err := h.db.ResetLinkByToken(r.Context(), token)
	if errors.Is(err, database.ErrNotFound) {
		h.writeError(w, http.StatusGone, usedResetLink)
		return
	} else if err != nil {
		h.writeInternalError(w, err)
		return
	}

	h.writeSuccess(w, http.StatusOK, "", map[string]string{"token": token})
}

func (h *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	type Reset struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}

	var reset Reset
	err := decodeJSON(w, r, &reset)
	if err != nil {
		h.sugar.Debug(err)
		h.writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	err = validator.Password(reset.Password)
	if err != nil {
		h.writeFieldErrors(w, map[string]string{"Password": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reset.Password), h.bcryptCost)
	if err != nil {
		h.writeInternalError(w, err)
		return
	}

	link, err := h.db.ResetPassword(r.Context(), reset.Token, hash)
	if errors.Is(err, database.ErrNotFound) {
		h.writeError(w, http.StatusGone, usedResetLink)
		return
	} else if err != nil {
		h.writeInternalError(w, err)
		return
	}

	h.sugar.Infof("Password of user [%s] was reset", link.UserName)
	h.writeSuccess(w, http.StatusOK, "Password updated!", nil)
}
