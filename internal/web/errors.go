package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is:
//   - Logged with its technical details and the request ID
//   - Mapped to a user message with an action and support code
//   - Returned as JSON for API clients and as an HTML page otherwise

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/logging"
	"github.com/JonMunkholm/gradebook/internal/web/templates"
)

var (
	errRateLimited  = errors.New("rate limit exceeded")
	errNoFile       = errors.New("no file provided")
	errBadRowIndex  = errors.New("invalid row index")
	errBadBody      = errors.New("invalid request body")
	errUnknownGroup = errors.New("unknown grouping")
	errNoRoute      = errors.New("page not found")
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the user-facing message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Info("request rejected", args...)
	}

	if wantsJSON(r) {
		render.Status(r, statusCode)
		render.JSON(w, r, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
		return
	}

	s.renderHTML(w, r, statusCode, templates.ErrorPage(userMsg))
}

// statusFor picks the HTTP status of a service error. Errors the service
// does not classify get fallback.
func statusFor(err error, fallback int) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes), errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrNoTable),
		errors.Is(err, core.ErrRowNotFound),
		errors.Is(err, core.ErrStudentNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrMissingRequiredField),
		errors.Is(err, core.ErrEmptyFile),
		errors.Is(err, errNoFile),
		errors.Is(err, errBadRowIndex),
		errors.Is(err, errBadBody),
		errors.Is(err, errUnknownGroup):
		return http.StatusBadRequest
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	}
	return fallback
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
