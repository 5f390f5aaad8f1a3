package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"ticketdesk/internal/config"
)

// CookieName is the organiser session cookie.
const CookieName = "organiser_session"

// ErrInvalidCredentials is returned for a wrong email or password; the
// two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidSession is returned for a missing, malformed or expired
// session token.
var ErrInvalidSession = errors.New("invalid session")

// Sessions issues and verifies organiser session tokens. There is one
// configured organiser identity: an email and a bcrypt password hash.
// Tokens are HS256 JWTs carried in an HttpOnly cookie.
type Sessions struct {
	organiserEmail string
	passwordHash   []byte
	secret         []byte
	ttl            time.Duration
}

func NewSessions(cfg config.AuthConfig) *Sessions {
	return &Sessions{
		organiserEmail: cfg.OrganiserEmail,
		passwordHash:   []byte(cfg.PasswordHash),
		secret:         []byte(cfg.SessionSecret),
		ttl:            cfg.SessionTTL,
	}
}

// Login checks the submitted credentials against the configured
// organiser identity and returns a signed session token.
func (s *Sessions) Login(email, password string) (string, error) {
	if email != s.organiserEmail {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks a session token's signature and expiry.
func (s *Sessions) Verify(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidSession
	}
	return nil
}

// SessionCookie wraps a signed token in the organiser session cookie.
func (s *Sessions) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(s.ttl),
	}
}

// ClearedCookie expires the session cookie, logging the organiser out.
func (s *Sessions) ClearedCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}
