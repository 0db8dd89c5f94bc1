package web

// errors.go turns handler errors into responses.
//
// Every error is logged with the request ID and answered with the mapped
// user message from core.MapError: JSON for API routes and clients that
// ask for it, an HTML page otherwise. The HTTP status follows the error
// kind, see statusFor.

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/gradebook/internal/college"
	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/store"
	"github.com/JonMunkholm/gradebook/internal/web/templates"
)

// errInvalidLoadID is returned for a load ID path segment that is not a UUID.
var errInvalidLoadID = errors.New("invalid load id")

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

func newErrorResponse(err error) ErrorResponse {
	msg := core.MapError(err)
	return ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	switch {
	case errors.Is(err, college.ErrUnknownCollege),
		errors.Is(err, core.ErrFileNotFound),
		errors.Is(err, store.ErrNoLoad):
		return http.StatusNotFound
	case errors.Is(err, errInvalidLoadID):
		return http.StatusBadRequest
	case core.IsLoadFailure(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, college.ErrTooManyLoads),
		errors.Is(err, store.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the user-facing error response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := newErrorResponse(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", resp.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	if errors.Is(err, college.ErrTooManyLoads) {
		w.Header().Set("Retry-After", "5")
	}

	if wantsJSON(r) {
		writeJSON(w, status, resp)
		return
	}
	respondErrorHTML(w, r, resp, status)
}

// respondErrorHTML renders the error as a full page.
func respondErrorHTML(w http.ResponseWriter, r *http.Request, resp ErrorResponse, status int) {
	page := templates.Page("Error", templates.ErrorAlert(resp.Message, resp.Action, resp.Code))
	templ.Handler(page, templ.WithStatus(status)).ServeHTTP(w, r)
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}

	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
