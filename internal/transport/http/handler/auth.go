package handler

import (
	"net/http"
	"strings"

	"github.com/policy-letter-api/internal/application/auth"
)

// AuthHandler handles password and OTP sign-in. Field checks are left to
// the service so an address off the roster is always rejected as unauthorized.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type otpRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpError(w, err, "Login failed")
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Token: sess.Token, Email: sess.Email})
}

func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.RequestOTP(r.Context(), req.Email); err != nil {
		httpError(w, err, "Failed to send OTP")
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP sent successfully"})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.svc.VerifyOTP(r.Context(), req.Email, strings.TrimSpace(req.OTP))
	if err != nil {
		httpError(w, err, "OTP verification failed")
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Token: sess.Token, Email: sess.Email})
}
