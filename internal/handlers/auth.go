package handlers

import (
	"chatrooms-backend/internal/database"
	"chatrooms-backend/internal/models"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	type Signup struct {
		Email    string `json:"email" validate:"required,email,max=64"`
		UserName string `json:"username" validate:"username"`
		Name     string `json:"name" validate:"required,max=64"`
		Password string `json:"password" validate:"password"`
	}

	var signup Signup
	err := decodeJSON(w, r, &signup)
	if err != nil {
		h.sugar.Debug(err)
		h.writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	signup.Email = strings.TrimSpace(signup.Email)
	signup.Name = strings.TrimSpace(signup.Name)

	fieldErrors, err := h.validate.Struct(signup)
	if err != nil {
		h.writeInternalError(w, err)
		return
	}
	if fieldErrors != nil {
		if fieldErrors["UserName"] != "" && strings.EqualFold(signup.UserName, "admin") {
			h.writeError(w, http.StatusBadRequest, "username can't be admin")
			return
		}
		// sends back 400 with the form field errors
		h.writeFieldErrors(w, fieldErrors)
		return
	}

	taken, err := h.db.EmailOrUsernameTaken(r.Context(), signup.Email, signup.UserName)
	if err != nil {
		h.writeInternalError(w, err)
		return
	}
	if taken {
		h.writeError(w, http.StatusConflict, "Email/username is registered already")
		return
	}

	passwordBytes, err := bcrypt.GenerateFromPassword([]byte(signup.Password), h.bcryptCost)
	if err != nil {
		h.writeInternalError(w, err)
		return
	}

	user := models.User{
		ID:          h.ids.Generate(),
		Email:       signup.Email,
		UserName:    signup.UserName,
		DisplayName: signup.Name,
		Password:    passwordBytes,
	}

	err = h.db.CreateUser(r.Context(), user)
	if errors.Is(err, database.ErrDuplicate) {
		// lost a race against another signup
		h.writeError(w, http.StatusConflict, "Email/username is registered already")
		return
	} else if err != nil {
		h.writeInternalError(w, err)
		return
	}

	h.sugar.Infof("New user [%s] signed up", user.UserName)
	h.writeSuccess(w, http.StatusCreated, "You are registered! Log in to continue", user)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	type Login struct {
		UserName   string `json:"username"`
		Password   string `json:"password"`
		RememberMe bool   `json:"rememberMe"`
	}

	var login Login
	err := decodeJSON(w, r, &login)
	if err != nil {
		h.sugar.Debug(err)
		h.writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	user, err := h.db.UserByUsername(r.Context(), login.UserName)
	if errors.Is(err, database.ErrNotFound) {
		h.sugar.Debug(err)
		h.writeError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	} else if err != nil {
		h.writeInternalError(w, err)
		return
	}

	err = bcrypt.CompareHashAndPassword(user.Password, []byte(login.Password))
	if err != nil {
		h.sugar.Debug(err)
		h.writeError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	cookie, err := h.issuer.CreateToken(login.RememberMe, user.ID, user.UserName)
	if err != nil {
		h.writeInternalError(w, err)
		return
	}

	http.SetCookie(w, &cookie)
	h.writeSuccess(w, http.StatusOK, "Logged in", user)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	cookie := h.issuer.ExpiredCookie()
	http.SetCookie(w, &cookie)
	h.writeSuccess(w, http.StatusOK, "Logged out", nil)
}
