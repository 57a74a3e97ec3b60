package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func mustTrusted(t *testing.T, list ...string) []netip.Prefix {
	t.Helper()
	p, err := ParseTrustedProxies(list)
	require.NoError(t, err)
	return p
}

func TestClientIP_UntrustedPeerIgnoresForwardingHeaders(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1)
	defer rl.Stop()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:4000"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	req.Header.Set("X-Real-Ip", "9.10.11.12")
	assert.Equal(t, "203.0.113.7", rl.clientIP(req))
}

func TestClientIP_TrustedProxyUsesRightmostUntrustedHop(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1, mustTrusted(t, "10.0.0.0/8")...)
	defer rl.Stop()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:4000"
	req.Header.Set("X-Forwarded-For", "6.6.6.6, 198.51.100.2, 10.1.2.3")
	assert.Equal(t, "198.51.100.2", rl.clientIP(req))
}

func TestClientIP_TrustedProxyFallsBackToXRealIP(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1, mustTrusted(t, "127.0.0.1")...)
	defer rl.Stop()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:4000"
	req.Header.Set("X-Real-Ip", "9.10.11.12")
	assert.Equal(t, "9.10.11.12", rl.clientIP(req))
}

func TestClientIP_RemoteAddrWithoutPort(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1)
	defer rl.Stop()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1"
	assert.Equal(t, "192.168.1.1", rl.clientIP(req))
}

func TestParseTrustedProxies(t *testing.T) {
	p, err := ParseTrustedProxies([]string{" 10.0.0.0/8 ", "", "::1", "192.168.1.7"})
	require.NoError(t, err)
	require.Len(t, p, 3)
	assert.Equal(t, "10.0.0.0/8", p[0].String())
	assert.Equal(t, "::1/128", p[1].String())
	assert.Equal(t, "192.168.1.7/32", p[2].String())

	_, err = ParseTrustedProxies([]string{"not-an-ip"})
	assert.Error(t, err)
}

func TestLimit_SpoofedForwardedForSharesPeerBucket(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(0.001), 10)
	defer rl.Stop()
	h := rl.Limit(http.HandlerFunc(okHandler))

	ok, limited := 0, 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/verify-otp", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		switch rr.Code {
		case http.StatusOK:
			ok++
		case http.StatusTooManyRequests:
			limited++
		}
	}
	assert.Equal(t, 10, ok)
	assert.Equal(t, 40, limited)
}

func TestLimit_RejectsAfterBurst(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(0.001), 2)
	defer rl.Stop()
	h := rl.Limit(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/request-otp", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/auth/request-otp", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestEvict_DropsStaleEntries(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1)
	defer rl.Stop()
	rl.get("1.1.1.1")
	rl.mu.Lock()
	rl.limiters["1.1.1.1"].lastSeen = time.Now().Add(-time.Hour)
	rl.mu.Unlock()
	rl.get("2.2.2.2")

	rl.evict(10 * time.Minute)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.limiters, "1.1.1.1")
	assert.Contains(t, rl.limiters, "2.2.2.2")
}
