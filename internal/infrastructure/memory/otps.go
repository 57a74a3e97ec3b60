// Package memory holds process-local stores.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/policy-letter-api/internal/domain"
)

// OTPStore keeps at most one OTP per email in memory. Reads return expired
// records as-is; Janitor drops them in the background.
type OTPStore struct {
	mu   sync.Mutex
	byID map[string]domain.OTPRecord
	now  func() time.Time
}

func NewOTPStore() *OTPStore {
	return &OTPStore{byID: make(map[string]domain.OTPRecord), now: time.Now}
}

func (s *OTPStore) Put(_ context.Context, rec *domain.OTPRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[rec.Email] = *rec
	return nil
}

func (s *OTPStore) Get(_ context.Context, email string) (*domain.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[email]
	if !ok {
		return nil, fmt.Errorf("otp for %s: %w", email, domain.ErrNotFound)
	}
	return &rec, nil
}

// DeleteIfMatch removes the record only when it still holds code.
func (s *OTPStore) DeleteIfMatch(_ context.Context, email, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[email]
	if !ok || rec.Code != code {
		return false, nil
	}
	delete(s.byID, email)
	return true, nil
}

// Sweep drops every expired record and returns how many were removed.
func (s *OTPStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for email, rec := range s.byID {
		if rec.Expired(now) {
			delete(s.byID, email)
			n++
		}
	}
	return n
}

// Janitor sweeps every interval until ctx is done.
func (s *OTPStore) Janitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				slog.Debug("swept expired otps", "count", n)
			}
		}
	}
}

// Len is the number of stored records, expired or not.
func (s *OTPStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
