package smtp

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/policy-letter-api/internal/domain"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends messages over SMTP as multipart/mixed.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	send     sendFunc
}

func NewMailer(host, port, username, password string) *Mailer {
	return &Mailer{host: host, port: port, username: username, password: password, send: smtp.SendMail}
}

func (m *Mailer) Send(_ context.Context, msg domain.Email) error {
	body, err := buildMessage(msg)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	rcpts := make([]string, 0, len(msg.To)+len(msg.CC))
	for _, a := range append(append([]domain.Address{}, msg.To...), msg.CC...) {
		rcpts = append(rcpts, a.Email)
	}
	if err := m.send(m.host+":"+m.port, auth, msg.From.Email, rcpts, body); err != nil {
		return fmt.Errorf("smtp send: %w: %w", domain.ErrDelivery, err)
	}
	return nil
}

func formatList(list []domain.Address) string {
	parts := make([]string, 0, len(list))
	for _, a := range list {
		parts = append(parts, (&mail.Address{Name: a.Name, Address: a.Email}).String())
	}
	return strings.Join(parts, ", ")
}

func buildMessage(msg domain.Email) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }
	hdr("From", (&mail.Address{Name: msg.From.Name, Address: msg.From.Email}).String())
	hdr("To", formatList(msg.To))
	if len(msg.CC) > 0 {
		hdr("Cc", formatList(msg.CC))
	}
	hdr("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	hdr("MIME-Version", "1.0")
	hdr("Content-Type", "multipart/mixed; boundary="+mw.Boundary())
	buf.WriteString("\r\n")

	html, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/html; charset=utf-8"},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return nil, err
	}
	if err := writeBase64(html, []byte(msg.HTML)); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {mime.FormatMediaType(ct, map[string]string{"name": a.Name})},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Name})},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64(part, a.Content); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeBase64 writes b base64-encoded in 76-column lines.
func writeBase64(w io.Writer, b []byte) error {
	enc := base64.StdEncoding.EncodeToString(b)
	for len(enc) > 76 {
		if _, err := fmt.Fprintf(w, "%s\r\n", enc[:76]); err != nil {
			return err
		}
		enc = enc[76:]
	}
	_, err := fmt.Fprintf(w, "%s\r\n", enc)
	return err
}
