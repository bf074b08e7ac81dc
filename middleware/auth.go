package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"timesheet/models"
	"timesheet/service"
	"timesheet/session"
)

type contextKey string

const (
	principalContextKey contextKey = "principal"
	sessionContextKey   contextKey = "session_id"
)

// Authenticator turns the session cookie into a Principal. The role comes
// from the server-side session only; nothing in the request can change it.
type Authenticator struct {
	cookies *session.CookieCodec
	auth    service.AuthService
}

func NewAuthenticator(cookies *session.CookieCodec, auth service.AuthService) *Authenticator {
	return &Authenticator{cookies: cookies, auth: auth}
}

func (a *Authenticator) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.cookies.SessionID(r)
		if err != nil {
			if _, cookieErr := r.Cookie(a.cookies.Name()); cookieErr == nil {
				a.cookies.ClearCookie(w)
			}
			deny(w, http.StatusUnauthorized, service.KindUnauthorized, "authentication required")
			return
		}

		sess, err := a.auth.Resolve(r.Context(), id)
		if err != nil {
			if service.KindOf(err) == service.KindUnauthorized {
				a.cookies.ClearCookie(w)
				deny(w, http.StatusUnauthorized, service.KindUnauthorized, "authentication required")
				return
			}
			LoggerFrom(r.Context()).WithError(err).Error("resolve session")
			deny(w, http.StatusInternalServerError, service.KindInternal, "internal server error")
			return
		}

		ctx := context.WithValue(r.Context(), principalContextKey, sess.Principal())
		ctx = context.WithValue(ctx, sessionContextKey, sess.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireManager lets managers and admins through and answers 403 otherwise.
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok {
			deny(w, http.StatusUnauthorized, service.KindUnauthorized, "authentication required")
			return
		}
		if !p.IsManager() {
			deny(w, http.StatusForbidden, service.KindForbidden, "managers only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(models.Principal)
	return p, ok
}

func SessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionContextKey).(string)
	return id
}

// WithPrincipal is used by tests that bypass the cookie.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func deny(w http.ResponseWriter, status int, kind service.Kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"kind": string(kind), "error": msg})
}
