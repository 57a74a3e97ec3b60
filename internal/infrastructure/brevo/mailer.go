// Package brevo sends transactional email through the Brevo HTTP API.
package brevo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/policy-letter-api/internal/domain"
)

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type attachment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type sendRequest struct {
	Sender      address      `json:"sender"`
	To          []address    `json:"to"`
	CC          []address    `json:"cc,omitempty"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"htmlContent"`
	Attachment  []attachment `json:"attachment,omitempty"`
}

// Mailer posts messages to the Brevo smtp/email endpoint.
type Mailer struct {
	url    string
	apiKey string
	http   *http.Client
}

func NewMailer(url, apiKey string) *Mailer {
	return &Mailer{url: url, apiKey: apiKey, http: &http.Client{Timeout: 30 * time.Second}}
}

func toAddresses(in []domain.Address) []address {
	out := make([]address, 0, len(in))
	for _, a := range in {
		out = append(out, address{Email: a.Email, Name: a.Name})
	}
	return out
}

// Send delivers msg. Any non-2xx answer is a delivery failure.
func (m *Mailer) Send(ctx context.Context, msg domain.Email) error {
	body := sendRequest{
		Sender:      address{Email: msg.From.Email, Name: msg.From.Name},
		To:          toAddresses(msg.To),
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	}
	if len(msg.CC) > 0 {
		body.CC = toAddresses(msg.CC)
	}
	for _, a := range msg.Attachments {
		body.Attachment = append(body.Attachment, attachment{
			Name:    a.Name,
			Content: base64.StdEncoding.EncodeToString(a.Content),
		})
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal brevo request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build brevo request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", m.apiKey)
	req.Header.Set("content-type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return fmt.Errorf("brevo call: %w: %w", domain.ErrDelivery, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		slog.Error("brevo rejected message", "status", resp.StatusCode, "body", string(detail))
		return fmt.Errorf("brevo status %d: %w", resp.StatusCode, domain.ErrDelivery)
	}
	return nil
}
