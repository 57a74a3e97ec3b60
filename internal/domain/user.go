package domain

import "strings"

// AuthorizedUser is one entry of the staff roster allowed to sign in.
// The signer fields pre-fill the signature block of letters the user generates.
type AuthorizedUser struct {
	Email         string `json:"email" yaml:"email"`
	SignerName    string `json:"signer_name,omitempty" yaml:"signer_name"`
	SignerTitle   string `json:"signer_title,omitempty" yaml:"signer_title"`
	SignatureFile string `json:"signature_file,omitempty" yaml:"signature_file"`
}

// NormalizeEmail is the canonical form used for roster lookups and OTP keys.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
