package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/policy-letter-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpMin = 100000
	otpMax = 999999
)

// OTPStore keeps one record per normalized email.
type OTPStore interface {
	Put(ctx context.Context, rec *domain.OTPRecord) error
	Get(ctx context.Context, email string) (*domain.OTPRecord, error)
	DeleteIfMatch(ctx context.Context, email, code string) (bool, error)
}

type OTPMailer interface {
	SendOTPEmail(ctx context.Context, email, code string, ttl time.Duration) error
}

type TokenSigner interface {
	Sign(email string) (string, time.Time, error)
}

type ServiceDeps struct {
	Roster       Roster
	OTPStore     OTPStore
	Mailer       OTPMailer
	Tokens       TokenSigner
	PasswordHash []byte // bcrypt; empty disables password login
	OTPTTL       time.Duration
	Now          func() time.Time
}

type Service interface {
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (*domain.Session, error)
	Login(ctx context.Context, email, password string) (*domain.Session, error)
}

type service struct {
	roster       Roster
	store        OTPStore
	mailer       OTPMailer
	tokens       TokenSigner
	passwordHash []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	ttl := deps.OTPTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &service{
		roster:       deps.Roster,
		store:        deps.OTPStore,
		mailer:       deps.Mailer,
		tokens:       deps.Tokens,
		passwordHash: deps.PasswordHash,
		ttl:          ttl,
		now:          now,
	}
}

func (s *service) authorize(email string) (string, error) {
	email = domain.NormalizeEmail(email)
	if _, ok := s.roster.Lookup(email); !ok {
		return "", fmt.Errorf("email not authorized: %w", domain.ErrUnauthorized)
	}
	return email, nil
}

func (s *service) RequestOTP(ctx context.Context, email string) error {
	email, err := s.authorize(email)
	if err != nil {
		return err
	}
	code, err := generateCode()
	if err != nil {
		return err
	}
	rec := domain.NewOTPRecord(email, code, s.now().Add(s.ttl))
	if err := s.store.Put(ctx, rec); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	if err := s.mailer.SendOTPEmail(ctx, email, code, s.ttl); err != nil {
		if _, derr := s.store.DeleteIfMatch(ctx, email, code); derr != nil {
			slog.Warn("failed to drop undelivered otp", "email", email, "err", derr)
		}
		if errors.Is(err, domain.ErrDelivery) {
			return err
		}
		return fmt.Errorf("send otp: %w: %w", domain.ErrDelivery, err)
	}
	return nil
}

func (s *service) VerifyOTP(ctx context.Context, email, code string) (*domain.Session, error) {
	email, err := s.authorize(email)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrOTPNotFound
		}
		return nil, fmt.Errorf("load otp: %w", err)
	}
	if rec.Expired(s.now()) {
		if _, err := s.store.DeleteIfMatch(ctx, email, rec.Code); err != nil {
			slog.Warn("failed to delete expired otp", "email", email, "err", err)
		}
		return nil, domain.ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		return nil, domain.ErrOTPMismatch
	}
	consumed, err := s.store.DeleteIfMatch(ctx, email, rec.Code)
	if err != nil {
		return nil, fmt.Errorf("consume otp: %w", err)
	}
	if !consumed {
		// A newer code replaced this one after it was read.
		return nil, domain.ErrOTPMismatch
	}
	return s.issue(email)
}

func (s *service) Login(_ context.Context, email, password string) (*domain.Session, error) {
	email, err := s.authorize(email)
	if err != nil {
		return nil, err
	}
	if len(s.passwordHash) == 0 {
		return nil, fmt.Errorf("password login disabled: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, domain.ErrInvalidPassword
	}
	return s.issue(email)
}

func (s *service) issue(email string) (*domain.Session, error) {
	token, exp, err := s.tokens.Sign(email)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &domain.Session{Token: token, Email: email, ExpiresAt: exp}, nil
}

// generateCode returns a uniform six-digit code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+otpMin), nil
}
