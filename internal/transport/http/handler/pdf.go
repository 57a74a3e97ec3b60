package handler

import (
	"net/http"
	"strconv"

	"github.com/policy-letter-api/internal/application/letter"
	"github.com/policy-letter-api/internal/domain"
	"github.com/policy-letter-api/internal/transport/http/middleware"
)

// PDFHandler renders and emails policy letters.
type PDFHandler struct {
	svc letter.Service
}

func NewPDFHandler(svc letter.Service) *PDFHandler {
	return &PDFHandler{svc: svc}
}

func signedInEmail(r *http.Request) string {
	if c, ok := middleware.ClaimsFromContext(r.Context()); ok {
		return c.Email
	}
	return ""
}

func (h *PDFHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req domain.LetterRequest
	if !decode(w, r, &req) {
		return
	}
	l, err := h.svc.Generate(r.Context(), &req, signedInEmail(r))
	if err != nil {
		httpError(w, err, "Failed to generate PDF")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+l.FileName)
	w.Header().Set("Content-Length", strconv.Itoa(len(l.PDF)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(l.PDF)
}

func (h *PDFHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req domain.LetterRequest
	if !decode(w, r, &req) {
		return
	}
	rcpt, err := h.svc.Send(r.Context(), &req, signedInEmail(r))
	if err != nil {
		httpError(w, err, "Failed to send email")
		return
	}
	writeJSON(w, http.StatusOK, SendEnvelope{Success: true, Message: "Email sent successfully", Recipients: rcpt})
}
