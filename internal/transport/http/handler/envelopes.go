package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/policy-letter-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps login and verify-otp responses.
type AuthEnvelope struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// SendEnvelope wraps the send-email response.
type SendEnvelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Recipients *domain.Recipients `json:"recipients"`
}

// HealthEnvelope is the health-check body.
type HealthEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// httpError maps a service error to a status code and a client-safe message.
// fallback is shown for failures whose detail should not leave the server.
func httpError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, strings.TrimSuffix(err.Error(), ": "+domain.ErrBadRequest.Error()))
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, unauthorizedMessage(err))
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		slog.Error(fallback, "err", err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrOTPNotFound):
		return "OTP not found or expired"
	case errors.Is(err, domain.ErrOTPExpired):
		return "OTP expired"
	case errors.Is(err, domain.ErrOTPMismatch):
		return "Invalid OTP"
	case errors.Is(err, domain.ErrInvalidPassword):
		return "Invalid password"
	default:
		return "Unauthorized user"
	}
}
