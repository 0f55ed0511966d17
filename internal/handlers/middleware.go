package handlers

import (
	"chatrooms-backend/internal/jwt"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	userExistsCacheTime = 15 * time.Minute
	tokenRenewalAfter   = 15 * time.Minute
)

type UserKeyType struct{}

// AuthUser is the logged in user of a request, set by UserVerifier.
type AuthUser struct {
	ID       int64
	UserName string
}

func userFromContext(ctx context.Context) AuthUser {
	return ctx.Value(UserKeyType{}).(AuthUser)
}

func (h *Handlers) userExists(ctx context.Context, userID int64) (bool, error) {
	key := fmt.Sprintf("user_exists:%d", userID)

	value, err := h.kv.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if value != "" {
		h.sugar.Debugf("User ID %d was found in cache", userID)
		return true, nil
	}

	found, err := h.db.UserExists(ctx, userID)
	if err != nil {
		return false, err
	}
	if !found {
		h.sugar.Warnf("User ID %d was not found in database", userID)
		return false, nil
	}

	err = h.kv.Set(ctx, key, "y", userExistsCacheTime)
	if err != nil {
		return false, err
	}
	h.sugar.Debugf("User ID %d was found in database and was cached", userID)
	return true, nil
}

func (h *Handlers) UserVerifier(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jwtCookie, err := r.Cookie(jwt.CookieName)
		if err != nil {
			h.sugar.Debug(err)
			switch {
			case errors.Is(err, http.ErrNoCookie):
				h.writeError(w, http.StatusUnauthorized, "Please log in first")
			default:
				h.writeError(w, http.StatusBadRequest, "Couldn't read login cookie")
			}
			return
		}

		// expiry is checked here as well
		userToken, err := h.issuer.VerifyToken(jwtCookie.Value)
		if err != nil {
			h.sugar.Debug(err)
			expired := h.issuer.ExpiredCookie()
			http.SetCookie(w, &expired)
			h.writeError(w, http.StatusUnauthorized, "Login expired, please log in again")
			return
		}

		userFound, err := h.userExists(r.Context(), userToken.UserID)
		if err != nil {
			h.writeInternalError(w, err)
			return
		}

		// delete JWT token from client, this should run when a user deleted their account,
		// but kept the JWT token for any reason
		if !userFound {
			expired := h.issuer.ExpiredCookie()
			http.SetCookie(w, &expired)
			h.writeError(w, http.StatusUnauthorized, "Please log in first")
			return
		}

		// renew JWT and cookie
		if h.issuer.NeedsRenewal(userToken, tokenRenewalAfter) {
			updatedCookie, err := h.issuer.CreateToken(userToken.Remember, userToken.UserID, userToken.UserName)
			if err != nil {
				h.sugar.Error(err)
				h.writeError(w, http.StatusInternalServerError, "Couldn't renew login")
				return
			}

			http.SetCookie(w, &updatedCookie)
		}

		// this passes the authenticated user to next handler
		ctx := context.WithValue(r.Context(), UserKeyType{}, AuthUser{ID: userToken.UserID, UserName: userToken.UserName})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
