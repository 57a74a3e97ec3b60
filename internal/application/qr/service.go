package qr

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

const maxLabelLen = 24

// PayloadFetcher gets a payment payload from the merchant-QR provider.
type PayloadFetcher interface {
	FetchPayload(ctx context.Context, billNumber, customerLabel string) (string, error)
}

// ImageWriter rasterizes a payload into a temporary file and returns its path.
type ImageWriter interface {
	Write(payload, policyNo string) (string, error)
}

// Token is a provisioned QR image. It belongs to one render call and must be
// released once the PDF is produced.
type Token struct {
	PolicyNo      string
	CustomerLabel string
	Payload       string
	ImagePath     string

	once sync.Once
}

// Release deletes the image file. Safe on a nil token and safe to call twice.
func (t *Token) Release() {
	if t == nil {
		return
	}
	t.once.Do(func() {
		if t.ImagePath == "" {
			return
		}
		if err := os.Remove(t.ImagePath); err != nil && !os.IsNotExist(err) {
			slog.Warn("could not remove qr image", "path", t.ImagePath, "err", err)
		}
	})
}

type Service interface {
	// Provision returns nil when no QR could be produced; callers render without one.
	Provision(ctx context.Context, policyNo, firstName, surname string) *Token
}

type service struct {
	fetcher PayloadFetcher
	writer  ImageWriter
}

func NewService(fetcher PayloadFetcher, writer ImageWriter) Service {
	return &service{fetcher: fetcher, writer: writer}
}

func (s *service) Provision(ctx context.Context, policyNo, firstName, surname string) *Token {
	bill := FormatPolicyNumber(policyNo)
	label := FormatCustomerLabel(firstName, surname)

	payload, err := s.fetcher.FetchPayload(ctx, bill, label)
	if err != nil {
		slog.Warn("qr payload unavailable", "policy_no", policyNo, "err", err)
		return nil
	}
	if payload == "" {
		slog.Warn("qr provider returned no payload", "policy_no", policyNo)
		return nil
	}

	path, err := s.writer.Write(payload, policyNo)
	if err != nil {
		slog.Warn("qr rasterize failed", "policy_no", policyNo, "err", err)
		return nil
	}
	return &Token{PolicyNo: bill, CustomerLabel: label, Payload: payload, ImagePath: path}
}

// FormatPolicyNumber turns "00423/003456" into "00423.003456".
func FormatPolicyNumber(policyNo string) string {
	return strings.ReplaceAll(policyNo, "/", ".")
}

// FormatCustomerLabel is the upper-cased first initial, a space and the
// surname, cut to 24 characters.
func FormatCustomerLabel(firstName, surname string) string {
	firstName = strings.TrimSpace(firstName)
	surname = strings.TrimSpace(surname)
	if firstName == "" || surname == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(firstName)
	label := []rune(string(unicode.ToUpper(r)) + " " + surname)
	if len(label) > maxLabelLen {
		label = label[:maxLabelLen]
	}
	return string(label)
}
