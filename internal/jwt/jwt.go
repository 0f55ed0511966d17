package jwt

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const CookieName = "JWT"

const (
	shortLifeTime = time.Hour * 24         // 1 day
	longLifeTime  = time.Hour * 24 * 7 * 4 // 4 weeks
)

type UserToken struct {
	UserID   int64  `json:"userID,string"`
	UserName string `json:"username"`
	Remember bool   `json:"rem"`
	jwt.RegisteredClaims
}

// Issuer signs and checks the login cookie.
type Issuer struct {
	secret  []byte
	isHttps bool
	now     func() time.Time
}

func NewIssuer(secret string, isHttps bool) *Issuer {
	return &Issuer{secret: []byte(secret), isHttps: isHttps, now: time.Now}
}

func (i *Issuer) CreateToken(rememberMe bool, userID int64, username string) (http.Cookie, error) {
	tokenLifeTime := shortLifeTime
	if rememberMe {
		tokenLifeTime = longLifeTime
	}

	currentTime := i.now().UTC()
	expirationDate := currentTime.Add(tokenLifeTime)

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, UserToken{
		UserID:   userID,
		UserName: username,
		Remember: rememberMe,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(expirationDate),
		},
	})

	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return http.Cookie{}, err
	}

	cookie := http.Cookie{
		Name:     CookieName,
		Value:    tokenString,
		Path:     "/",
		HttpOnly: true,
		Secure:   i.isHttps,
		SameSite: http.SameSiteLaxMode,
	}

	if rememberMe {
		cookie.Expires = expirationDate
	}

	return cookie, nil
}

func (i *Issuer) VerifyToken(tokenString string) (UserToken, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserToken{}, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return UserToken{}, err
	} else if claims, ok := token.Claims.(*UserToken); ok {
		return *claims, nil
	} else {
		return UserToken{}, errors.New("invalid token")
	}
}

// NeedsRenewal reports whether a valid token is old enough to be reissued.
func (i *Issuer) NeedsRenewal(token UserToken, after time.Duration) bool {
	if token.IssuedAt == nil {
		return true
	}
	return i.now().Sub(token.IssuedAt.Time) > after
}

// ExpiredCookie removes the login cookie from the browser.
func (i *Issuer) ExpiredCookie() http.Cookie {
	return http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   i.isHttps,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	}
}
