package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"timesheet/middleware"
	"timesheet/models"
	"timesheet/service"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Kind  service.Kind `json:"kind"`
	Error string       `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a service error to its status code. Causes of internal
// errors go to the log, never to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := service.KindOf(err)
	if kind == service.KindInternal {
		middleware.LoggerFrom(r.Context()).WithError(err).Error("request failed")
	}
	writeJSON(w, statusFor(kind), errorResponse{Kind: kind, Error: service.MessageOf(err)})
}

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	case service.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body. Unknown fields are ignored, so a
// client sending "role" or "owner_id" simply has no effect.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.Validation("request body too large")
		}
		return service.Validation("request body must be valid JSON")
	}
	return nil
}

func principal(r *http.Request) models.Principal {
	p, _ := middleware.PrincipalFrom(r.Context())
	return p
}

func entryID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil || id == 0 {
		return 0, service.Validation("invalid entry id")
	}
	return uint(id), nil
}
