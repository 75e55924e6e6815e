package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical detail and request ID, then mapped
// through core.MapError and written as JSON for API clients or as a short
// text body otherwise. The search form renders its own errors inline.

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/contactfinder/internal/core"
	"github.com/JonMunkholm/contactfinder/internal/logging"
)

// ErrorResponse is the JSON body of an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for a mapped error code.
func statusFor(code string) int {
	switch {
	case strings.HasPrefix(code, "VAL"):
		return http.StatusBadRequest
	case code == "CFG001":
		return http.StatusServiceUnavailable
	case code == "RES001", code == "FILE001":
		return http.StatusNotFound
	case code == "API002", code == "RATE001":
		return http.StatusTooManyRequests
	case code == "RATE002":
		return http.StatusServiceUnavailable
	case strings.HasPrefix(code, "API"):
		return http.StatusBadGateway
	case code == "REQ002":
		return http.StatusGatewayTimeout
	case code == "REQ001":
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the mapped message. A zero status is
// derived from the error code.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := logError(r, err)
	if status == 0 {
		status = statusFor(msg.Code)
	}

	if wantsJSON(r) {
		respondErrorJSON(w, msg, status)
		return
	}
	http.Error(w, msg.Message+" (Code: "+msg.Code+")", status)
}

// logError records the technical error and returns its user-facing mapping.
func logError(r *http.Request, err error) core.UserMessage {
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"error", err.Error(),
		"code", msg.Code,
	}
	if statusFor(msg.Code) >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Info("request rejected", attrs...)
	}
	return msg
}

func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	writeJSON(w, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// writeJSON encodes v with the given status. Encoding errors are only logged
// since the header is already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}

// wantsJSON reports whether the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
