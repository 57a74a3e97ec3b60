package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOTPRecord_ExpiresAtExactInstant(t *testing.T) {
	issued := time.Date(2024, 3, 1, 9, 0, 0, 400*int(time.Millisecond), time.UTC)
	rec := NewOTPRecord("a@x.com", "123456", issued.Add(10*time.Minute))

	assert.False(t, rec.Expired(issued.Add(10*time.Minute)))
	assert.True(t, rec.Expired(issued.Add(10*time.Minute+time.Millisecond)))
	assert.True(t, rec.Expired(issued.Add(10*time.Minute+500*time.Millisecond)))
}

func TestNewOTPRecord_TTLSecondsRoundUp(t *testing.T) {
	exp := time.Unix(1_000, 250*int64(time.Millisecond))
	rec := NewOTPRecord("a@x.com", "1", exp)
	assert.Equal(t, int64(1_000_250), rec.ExpiresAtMs)
	assert.Equal(t, int64(1_001), rec.ExpiresAt)

	rec = NewOTPRecord("a@x.com", "1", time.Unix(1_000, 0))
	assert.Equal(t, int64(1_000), rec.ExpiresAt)
}
