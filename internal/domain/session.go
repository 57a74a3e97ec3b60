package domain

import "time"

// Session is the result of a successful login: a signed bearer token bound to an email.
type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}
