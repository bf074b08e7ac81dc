package handlers

import (
	"net/http"

	"timesheet/middleware"
	"timesheet/models"
	"timesheet/service"
	"timesheet/session"
)

type AuthHandler struct {
	auth    service.AuthService
	cookies *session.CookieCodec
}

func NewAuthHandler(auth service.AuthService, cookies *session.CookieCodec) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		cookies: cookies,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       uint        `json:"id"`
	Username string      `json:"username"`
	Name     string      `json:"name"`
	Role     models.Role `json:"role"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Name: u.DisplayName(), Role: u.Role}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, sess, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if service.KindOf(err) == service.KindUnauthorized {
			middleware.LoggerFrom(r.Context()).WithField("username", req.Username).Debug("login rejected")
		}
		writeError(w, r, err)
		return
	}

	if err := h.cookies.SetCookie(w, sess.ID, sess.ExpiresAt); err != nil {
		_ = h.auth.Logout(r.Context(), sess.ID)
		writeError(w, r, service.Internal(err))
		return
	}

	middleware.LoggerFrom(r.Context()).WithField("user_id", user.ID).Info("user logged in")
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), middleware.SessionIDFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	h.cookies.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.CurrentUser(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}
