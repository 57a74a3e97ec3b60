package domain

import "time"

// Address is an email recipient with an optional display name.
type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Attachment is a file carried by an Email; Content holds the raw bytes.
type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
}

// Email is a transport-neutral outbound message.
type Email struct {
	From        Address
	To          []Address
	CC          []Address
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Recipients is the send-email response summary.
type Recipients struct {
	Customer *string `json:"customer"`
	Advisor  string  `json:"advisor"`
}

// DispatchEvent is the audit record published after a letter email is sent.
type DispatchEvent struct {
	PolicyNo      string    `json:"policy_no"`
	LetterType    string    `json:"letter_type"`
	LayoutVersion string    `json:"layout_version"`
	To            []string  `json:"to"`
	CC            []string  `json:"cc"`
	SentBy        string    `json:"sent_by,omitempty"`
	SentAt        time.Time `json:"sent_at"`
}
