package domain

import "time"

// OTPRecord is the single active one-time passcode for an authorized email.
// ExpiresAtMs is the authoritative expiry. ExpiresAt is the same instant in
// Unix seconds, rounded up, and is only used as the DynamoDB TTL attribute.
type OTPRecord struct {
	Email       string `json:"email" dynamodbav:"email"`
	Code        string `json:"-" dynamodbav:"code"`
	ExpiresAt   int64  `json:"expires_at" dynamodbav:"expires_at"`
	ExpiresAtMs int64  `json:"expires_at_ms" dynamodbav:"expires_at_ms"`
}

// NewOTPRecord builds a record that expires at expires.
func NewOTPRecord(email, code string, expires time.Time) *OTPRecord {
	ms := expires.UnixMilli()
	return &OTPRecord{
		Email:       email,
		Code:        code,
		ExpiresAt:   (ms + 999) / 1000,
		ExpiresAtMs: ms,
	}
}

// Expired reports whether now is past the expiry instant.
func (r *OTPRecord) Expired(now time.Time) bool {
	return now.UnixMilli() > r.ExpiresAtMs
}
