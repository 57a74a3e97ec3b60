package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/policy-letter-api/internal/domain"
)

// Mailer hands a message to one mail transport (Brevo, SMTP, log).
type Mailer interface {
	Send(ctx context.Context, msg domain.Email) error
}

// DispatchPublisher records sent letters; optional.
type DispatchPublisher interface {
	PublishDispatch(ctx context.Context, ev domain.DispatchEvent) error
}

type ServiceDeps struct {
	Mailer           Mailer
	Publisher        DispatchPublisher
	OTPSender        domain.Address
	LetterSender     domain.Address
	AttachmentPrefix string
	CompanyName      string
	Now              func() time.Time
}

type Service interface {
	SendOTPEmail(ctx context.Context, email, code string, ttl time.Duration) error
	SendLetterEmail(ctx context.Context, pdf []byte, req *domain.LetterRequest, sentBy string) (*domain.Recipients, error)
}

type service struct {
	mailer       Mailer
	publisher    DispatchPublisher
	otpSender    domain.Address
	letterSender domain.Address
	prefix       string
	company      string
	now          func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	prefix := deps.AttachmentPrefix
	if prefix == "" {
		prefix = "NICL_Policy"
	}
	return &service{
		mailer:       deps.Mailer,
		publisher:    deps.Publisher,
		otpSender:    deps.OTPSender,
		letterSender: deps.LetterSender,
		prefix:       prefix,
		company:      deps.CompanyName,
		now:          now,
	}
}

var otpBody = template.Must(template.New("otp").Parse(`<html>
  <body style="font-family: Arial, sans-serif; padding: 20px;">
    <h2>NICL Letter Generator - OTP Verification</h2>
    <p>Your One-Time Password (OTP) is:</p>
    <h1 style="color: #0066cc; letter-spacing: 5px;">{{.Code}}</h1>
    <p>This OTP is valid for {{.Minutes}} minutes.</p>
    <p>If you did not request this OTP, please ignore this email.</p>
    <br>
    <p>Best regards,<br>NICL Team</p>
  </body>
</html>
`))

var letterBody = template.Must(template.New("letter").Parse(`<html>
  <body style="font-family: Arial, sans-serif; padding: 20px; line-height: 1.6;">
    <h2 style="color: #2c3e50;">Life Insurance Policy Proposal</h2>
    <p>Dear {{.Title}} {{.Surname}},</p>
    <p>Please find attached your life insurance policy proposal letter for <strong>Policy Number {{.PolicyNo}}</strong>.</p>
    <p>This proposal outlines the terms and conditions of your life insurance coverage. Please review the document carefully and contact us if you have any questions.</p>
    <p><strong>Your Insurance Advisor:</strong> {{.Advisor}}</p>
    <p>For any queries, please feel free to reach out to your insurance advisor or our customer service team.</p>
    <br>
    <p>Best regards,<br>
    <strong>NIC Life Insurance Team</strong>{{if .Company}}<br>
    {{.Company}}{{end}}</p>
    <hr style="border: 1px solid #e0e0e0; margin: 20px 0;">
    <p style="font-size: 12px; color: #7f8c8d;">
      This is an automated email. Please do not reply to this email address.
    </p>
  </body>
</html>
`))

func (s *service) SendOTPEmail(ctx context.Context, email, code string, ttl time.Duration) error {
	var body bytes.Buffer
	err := otpBody.Execute(&body, struct {
		Code    string
		Minutes int
	}{code, int(ttl.Minutes())})
	if err != nil {
		return fmt.Errorf("otp body: %w", err)
	}
	msg := domain.Email{
		From:    s.otpSender,
		To:      []domain.Address{{Email: email}},
		Subject: "Your OTP for NICL Letter Generator",
		HTML:    body.String(),
	}
	return s.deliver(ctx, msg)
}

func (s *service) SendLetterEmail(ctx context.Context, pdf []byte, req *domain.LetterRequest, sentBy string) (*domain.Recipients, error) {
	f := req.Data
	to, cc := ComputeRecipients(f)

	var body bytes.Buffer
	err := letterBody.Execute(&body, struct {
		Title, Surname, PolicyNo, Advisor, Company string
	}{f.CustomerTitle, f.Surname, f.PolicyNo, f.AdvisorName, s.company})
	if err != nil {
		return nil, fmt.Errorf("letter body: %w", err)
	}

	msg := domain.Email{
		From:    s.letterSender,
		To:      to,
		CC:      cc,
		Subject: fmt.Sprintf("Life Insurance Policy Proposal - PN %s - %s %s", f.PolicyNo, f.FirstName, f.Surname),
		HTML:    body.String(),
		Attachments: []domain.Attachment{{
			Name:        AttachmentName(s.prefix, f.PolicyNo),
			ContentType: "application/pdf",
			Content:     pdf,
		}},
	}
	if err := s.deliver(ctx, msg); err != nil {
		return nil, err
	}
	slog.Info("letter email sent", "policy_no", f.PolicyNo, "to", addrs(to), "cc", addrs(cc))

	s.publish(ctx, req, to, cc, sentBy)

	rcpt := &domain.Recipients{Advisor: f.AdvisorEmail}
	if f.CustomerEmail != "" {
		customer := f.CustomerEmail
		rcpt.Customer = &customer
	}
	return rcpt, nil
}

func (s *service) deliver(ctx context.Context, msg domain.Email) error {
	if err := s.mailer.Send(ctx, msg); err != nil {
		if errors.Is(err, domain.ErrDelivery) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrDelivery, err)
	}
	return nil
}

func (s *service) publish(ctx context.Context, req *domain.LetterRequest, to, cc []domain.Address, sentBy string) {
	if s.publisher == nil {
		return
	}
	ev := domain.DispatchEvent{
		PolicyNo:      req.Data.PolicyNo,
		LetterType:    string(req.LetterType),
		LayoutVersion: string(req.Layout()),
		To:            addrs(to),
		CC:            addrs(cc),
		SentBy:        sentBy,
		SentAt:        s.now().UTC(),
	}
	if err := s.publisher.PublishDispatch(ctx, ev); err != nil {
		slog.Warn("failed to publish dispatch event", "policy_no", ev.PolicyNo, "err", err)
	}
}

// ComputeRecipients sends to the customer with the advisor in CC, or to the
// advisor alone when there is no distinct customer address.
func ComputeRecipients(f *domain.LetterFields) (to, cc []domain.Address) {
	advisor := domain.Address{Email: f.AdvisorEmail, Name: f.AdvisorName}
	if f.CustomerEmail == "" {
		return []domain.Address{advisor}, nil
	}
	to = []domain.Address{{Email: f.CustomerEmail, Name: f.CustomerName()}}
	if strings.EqualFold(strings.TrimSpace(f.CustomerEmail), strings.TrimSpace(f.AdvisorEmail)) {
		return to, nil
	}
	return to, []domain.Address{advisor}
}

// AttachmentName is "<prefix>_<policyNo>.pdf" with slashes in the policy number replaced.
func AttachmentName(prefix, policyNo string) string {
	return prefix + "_" + strings.ReplaceAll(policyNo, "/", "_") + ".pdf"
}

func addrs(list []domain.Address) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Email)
	}
	return out
}
