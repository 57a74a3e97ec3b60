// Package app wires configuration into the services shared by the API server
// and the operator CLI.
package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/policy-letter-api/internal/application/auth"
	"github.com/policy-letter-api/internal/application/letter"
	"github.com/policy-letter-api/internal/application/notification"
	"github.com/policy-letter-api/internal/application/qr"
	"github.com/policy-letter-api/internal/config"
	"github.com/policy-letter-api/internal/domain"
	"github.com/policy-letter-api/internal/infrastructure/assets"
	"github.com/policy-letter-api/internal/infrastructure/brevo"
	"github.com/policy-letter-api/internal/infrastructure/chrome"
	"github.com/policy-letter-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/policy-letter-api/internal/infrastructure/jwt"
	"github.com/policy-letter-api/internal/infrastructure/mail"
	"github.com/policy-letter-api/internal/infrastructure/memory"
	"github.com/policy-letter-api/internal/infrastructure/pdf"
	"github.com/policy-letter-api/internal/infrastructure/qrimage"
	s3infra "github.com/policy-letter-api/internal/infrastructure/s3"
	"github.com/policy-letter-api/internal/infrastructure/smtp"
	"github.com/policy-letter-api/internal/infrastructure/sns"
	"github.com/policy-letter-api/internal/infrastructure/zwennpay"
	"golang.org/x/crypto/bcrypt"
)

// Server is everything the HTTP router needs.
type Server struct {
	Roster  *auth.StaticRoster
	Tokens  *jwtinfra.Provider
	Auth    auth.Service
	Letters letter.Service
}

// NewServer builds the full service graph. Background work (the memory OTP
// janitor) stops when ctx is cancelled.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Server, error) {
	users, err := config.LoadRoster(cfg)
	if err != nil {
		return nil, err
	}
	roster := auth.NewStaticRoster(users)
	log.Info("roster loaded", "users", roster.Len())

	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		log.Warn("JWT_SECRET not set, using a random secret; sessions will not survive a restart")
		if secret, err = randomSecret(); err != nil {
			return nil, err
		}
	}
	tokens, err := jwtinfra.NewProvider(secret, cfg.JWTExpiry)
	if err != nil {
		return nil, err
	}

	hash, err := PasswordHash(cfg)
	if err != nil {
		return nil, err
	}
	if len(hash) == 0 {
		log.Info("password login disabled")
	}

	store, err := NewOTPStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	notifier, err := NewNotifier(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	letters, err := NewLetterService(ctx, cfg, roster, notifier, true)
	if err != nil {
		return nil, err
	}

	authSvc := auth.NewService(auth.ServiceDeps{
		Roster:       roster,
		OTPStore:     store,
		Mailer:       notifier,
		Tokens:       tokens,
		PasswordHash: hash,
		OTPTTL:       cfg.OTPTTL,
	})
	return &Server{Roster: roster, Tokens: tokens, Auth: authSvc, Letters: letters}, nil
}

// PasswordHash returns AUTH_PASSWORD_HASH, or a bcrypt hash of AUTH_PASSWORD,
// or nil when neither is set.
func PasswordHash(cfg *config.Config) ([]byte, error) {
	if cfg.PasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
			return nil, fmt.Errorf("AUTH_PASSWORD_HASH: %w", err)
		}
		return []byte(cfg.PasswordHash), nil
	}
	if cfg.Password == "" {
		return nil, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash AUTH_PASSWORD: %w", err)
	}
	return hash, nil
}

func randomSecret() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate jwt secret: %w", err)
	}
	return b, nil
}

func awsConfig(ctx context.Context, cfg *config.Config, region string) (aws.Config, error) {
	return dynamo.LoadAWSConfig(ctx, cfg, region)
}

// NewOTPStore selects the OTP backend named by OTP_STORE.
func NewOTPStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (auth.OTPStore, error) {
	switch cfg.OTPStore {
	case "", "memory":
		store := memory.NewOTPStore()
		go store.Janitor(ctx, cfg.OTPSweepInterval)
		return store, nil
	case "dynamo":
		awsCfg, err := awsConfig(ctx, cfg, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		client := dynamo.NewClient(awsCfg, cfg)
		dynamo.Bootstrap(ctx, client, cfg.DynamoOTPTable)
		log.Info("otp store", "backend", "dynamo", "table", cfg.DynamoOTPTable)
		return dynamo.NewOTPRepo(client, cfg.DynamoOTPTable), nil
	default:
		return nil, fmt.Errorf("unknown OTP_STORE %q", cfg.OTPStore)
	}
}

// NewMailer selects the transport named by MAIL_MODE.
func NewMailer(cfg *config.Config, log *slog.Logger) (notification.Mailer, error) {
	switch cfg.MailMode {
	case "", "brevo":
		if cfg.BrevoAPIKey == "" {
			return nil, fmt.Errorf("MAIL_MODE=brevo requires BREVO_API_KEY")
		}
		return brevo.NewMailer(cfg.BrevoAPIURL, cfg.BrevoAPIKey), nil
	case "smtp":
		return smtp.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword), nil
	case "log":
		return mail.NewLogMailer(log), nil
	default:
		return nil, fmt.Errorf("unknown MAIL_MODE %q", cfg.MailMode)
	}
}

// NewPublisher returns nil when no dispatch topic is configured.
func NewPublisher(ctx context.Context, cfg *config.Config) (notification.DispatchPublisher, error) {
	if cfg.SNSDispatchTopicARN == "" {
		return nil, nil
	}
	awsCfg, err := awsConfig(ctx, cfg, cfg.SNSRegion)
	if err != nil {
		return nil, err
	}
	return sns.NewDispatchPublisher(sns.NewClient(awsCfg, cfg), cfg.SNSDispatchTopicARN), nil
}

func NewNotifier(ctx context.Context, cfg *config.Config, log *slog.Logger) (notification.Service, error) {
	mailer, err := NewMailer(cfg, log)
	if err != nil {
		return nil, err
	}
	publisher, err := NewPublisher(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return notification.NewService(notification.ServiceDeps{
		Mailer:           mailer,
		Publisher:        publisher,
		OTPSender:        domain.Address{Email: cfg.OTPSenderEmail, Name: cfg.OTPSenderName},
		LetterSender:     domain.Address{Email: cfg.LetterSenderEmail, Name: cfg.LetterSenderName},
		AttachmentPrefix: cfg.AttachmentPrefix,
		CompanyName:      cfg.CompanyName,
	}), nil
}

// NewAssetSource selects the image store named by ASSET_SOURCE.
func NewAssetSource(ctx context.Context, cfg *config.Config) (letter.AssetSource, error) {
	switch cfg.AssetSource {
	case "", "dir":
		return assets.NewDirSource(cfg.AssetDir), nil
	case "s3":
		if cfg.S3AssetBucket == "" {
			return nil, fmt.Errorf("ASSET_SOURCE=s3 requires S3_ASSET_BUCKET")
		}
		awsCfg, err := awsConfig(ctx, cfg, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		return s3infra.NewAssetSource(s3infra.NewClient(awsCfg, cfg), cfg.S3AssetBucket, cfg.S3AssetPrefix), nil
	default:
		return nil, fmt.Errorf("unknown ASSET_SOURCE %q", cfg.AssetSource)
	}
}

// NewQRService returns the merchant QR pipeline.
func NewQRService(cfg *config.Config) qr.Service {
	return qr.NewService(
		zwennpay.NewClient(cfg.ZwennPayURL, cfg.ZwennPayMerchantID, cfg.ZwennPayTimeout),
		qrimage.NewWriter(cfg.QRTempDir),
	)
}

// NewLetterService builds the render pipeline. notifier may be nil when only
// Generate is used. The shared browser exits when ctx is done.
func NewLetterService(ctx context.Context, cfg *config.Config, profiles letter.Profiles, notifier letter.Notifier, withQR bool) (letter.Service, error) {
	src, err := NewAssetSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var qrSvc qr.Service
	if withQR {
		qrSvc = NewQRService(cfg)
	}
	return letter.NewService(letter.ServiceDeps{
		QR:          qrSvc,
		Assets:      src,
		PDF:         chrome.NewRenderer(ctx, cfg.ChromePath),
		Finalizer:   pdf.NewFinalizer(),
		Notifier:    notifier,
		Profiles:    profiles,
		CompanyName: cfg.CompanyName,
	}), nil
}
