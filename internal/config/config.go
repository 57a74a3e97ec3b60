package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	AllowedOrigins []string // CORS allowed origins
	TrustedProxies []string // IPs or CIDRs allowed to set X-Forwarded-For

	JWTSecret string
	JWTExpiry time.Duration

	RosterFile    string
	AllowedEmails []string
	PasswordHash  string
	Password      string

	OTPTTL           time.Duration
	OTPStore         string // "memory" | "dynamo"
	OTPSweepInterval time.Duration

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoOTPTable string

	AssetSource   string // "dir" | "s3"
	AssetDir      string
	S3AssetBucket string
	S3AssetPrefix string

	MailMode     string // "brevo" | "smtp" | "log"
	BrevoAPIURL  string
	BrevoAPIKey  string
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string

	OTPSenderName       string
	OTPSenderEmail      string
	LetterSenderName    string
	LetterSenderEmail   string
	AttachmentPrefix    string
	CompanyName         string
	SNSDispatchTopicARN string
	SNSRegion           string

	ZwennPayURL        string
	ZwennPayMerchantID int
	ZwennPayTimeout    time.Duration
	QRTempDir          string

	ChromePath string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "5000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", "http://localhost:5173"),
		TrustedProxies: getEnvList("TRUSTED_PROXIES", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,

		RosterFile:    getEnv("AUTH_ROSTER_FILE", ""),
		AllowedEmails: getEnvList("AUTH_ALLOWED_EMAILS", ""),
		PasswordHash:  getEnv("AUTH_PASSWORD_HASH", ""),
		Password:      getEnv("AUTH_PASSWORD", ""),

		OTPTTL:           time.Duration(getEnvInt("OTP_TTL_MINUTES", 10)) * time.Minute,
		OTPStore:         strings.ToLower(getEnv("OTP_STORE", "memory")),
		OTPSweepInterval: time.Duration(getEnvInt("OTP_SWEEP_INTERVAL_SECONDS", 60)) * time.Second,

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoOTPTable: getEnv("DYNAMO_TABLE_OTPS", "otp_codes"),

		AssetSource:   strings.ToLower(getEnv("ASSET_SOURCE", "dir")),
		AssetDir:      getEnv("ASSET_DIR", "./assets"),
		S3AssetBucket: getEnv("S3_ASSET_BUCKET", ""),
		S3AssetPrefix: getEnv("S3_ASSET_PREFIX", ""),

		MailMode:     strings.ToLower(getEnv("MAIL_MODE", "brevo")),
		BrevoAPIURL:  getEnv("BREVO_API_URL", "https://api.brevo.com/v3/smtp/email"),
		BrevoAPIKey:  getEnv("BREVO_API_KEY", ""),
		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		OTPSenderName:       getEnv("MAIL_OTP_SENDER_NAME", "NICL Letter Generator"),
		OTPSenderEmail:      getEnv("MAIL_OTP_SENDER_EMAIL", "noreply@niclmauritius.site"),
		LetterSenderName:    getEnv("MAIL_LETTER_SENDER_NAME", "NIC Life Insurance"),
		LetterSenderEmail:   getEnv("MAIL_LETTER_SENDER_EMAIL", "NewPolicy@niclmauritius.site"),
		AttachmentPrefix:    getEnv("LETTER_ATTACHMENT_PREFIX", "NICL_Policy"),
		CompanyName:         getEnv("COMPANY_NAME", "National Insurance Company Ltd"),
		SNSDispatchTopicARN: getEnv("SNS_DISPATCH_TOPIC_ARN", ""),
		SNSRegion:           getEnv("SNS_REGION", getEnv("AWS_REGION", "us-east-1")),

		ZwennPayURL:        getEnv("ZWENNPAY_API_URL", "https://api.zwennpay.com:9425/api/v1.0/Common/GetMerchantQR"),
		ZwennPayMerchantID: getEnvInt("ZWENNPAY_MERCHANT_ID", 151),
		ZwennPayTimeout:    time.Duration(getEnvInt("ZWENNPAY_TIMEOUT_SECONDS", 20)) * time.Second,
		QRTempDir:          getEnv("QR_TEMP_DIR", os.TempDir()),

		ChromePath: getEnv("CHROME_PATH", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping blank entries.
func getEnvList(key, fallback string) []string {
	var out []string
	for _, s := range strings.Split(getEnv(key, fallback), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
