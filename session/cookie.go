package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultCookieName = "timesheet_session"

// ErrInvalidToken covers missing, forged and expired cookies alike.
var ErrInvalidToken = errors.New("invalid session token")

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Name     string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

func (o CookieOptions) normalize() CookieOptions {
	if o.Name == "" {
		o.Name = DefaultCookieName
	}
	if o.Path == "" {
		o.Path = "/"
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// CookieCodec signs session ids so that a cookie cannot name a session the
// server did not issue. Role and user never travel in the token.
type CookieCodec struct {
	secret []byte
	opts   CookieOptions
}

type claims struct {
	jwt.RegisteredClaims
}

func NewCookieCodec(secret string, opts CookieOptions) *CookieCodec {
	return &CookieCodec{secret: []byte(secret), opts: opts.normalize()}
}

func (c *CookieCodec) Name() string {
	return c.opts.Name
}

func (c *CookieCodec) Encode(sessionID string, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("session: sign cookie: %w", err)
	}
	return signed, nil
}

func (c *CookieCodec) Decode(value string) (string, error) {
	var parsed claims
	token, err := jwt.ParseWithClaims(value, &parsed, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid || parsed.ID == "" {
		return "", ErrInvalidToken
	}
	return parsed.ID, nil
}

// SessionID reads and verifies the session cookie of r.
func (c *CookieCodec) SessionID(r *http.Request) (string, error) {
	cookie, err := r.Cookie(c.opts.Name)
	if err != nil || cookie.Value == "" {
		return "", ErrInvalidToken
	}
	return c.Decode(cookie.Value)
}

// SetCookie issues the session cookie to the client.
func (c *CookieCodec) SetCookie(w http.ResponseWriter, sessionID string, expiresAt time.Time) error {
	value, err := c.Encode(sessionID, expiresAt)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.opts.Name,
		Value:    value,
		Path:     c.opts.Path,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   c.opts.Secure,
		SameSite: c.opts.SameSite,
	})
	return nil
}

// ClearCookie removes the session cookie from the client.
func (c *CookieCodec) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.opts.Name,
		Value:    "",
		Path:     c.opts.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.opts.Secure,
		SameSite: c.opts.SameSite,
	})
}
