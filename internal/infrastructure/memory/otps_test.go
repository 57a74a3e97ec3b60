package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/policy-letter-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPStore_PutReplaces(t *testing.T) {
	ctx := context.Background()
	s := NewOTPStore()
	require.NoError(t, s.Put(ctx, domain.NewOTPRecord("a@x.com", "111111", time.Unix(10, 0))))
	require.NoError(t, s.Put(ctx, domain.NewOTPRecord("a@x.com", "222222", time.Unix(20, 0))))

	rec, err := s.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", rec.Code)
	assert.Equal(t, 1, s.Len())
}

func TestOTPStore_GetMissing(t *testing.T) {
	_, err := NewOTPStore().Get(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOTPStore_DeleteIfMatch(t *testing.T) {
	ctx := context.Background()
	s := NewOTPStore()
	require.NoError(t, s.Put(ctx, &domain.OTPRecord{Email: "a@x.com", Code: "111111"}))

	ok, err := s.DeleteIfMatch(ctx, "a@x.com", "999999")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())

	ok, err = s.DeleteIfMatch(ctx, "a@x.com", "111111")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestOTPStore_DeleteIfMatch_SingleWinner(t *testing.T) {
	ctx := context.Background()
	s := NewOTPStore()
	require.NoError(t, s.Put(ctx, &domain.OTPRecord{Email: "a@x.com", Code: "111111"}))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := s.DeleteIfMatch(ctx, "a@x.com", "111111"); ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestOTPStore_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_000, 0)
	s := NewOTPStore()
	s.now = func() time.Time { return now }
	require.NoError(t, s.Put(ctx, domain.NewOTPRecord("old@x.com", "1", time.Unix(999, 0))))
	require.NoError(t, s.Put(ctx, domain.NewOTPRecord("new@x.com", "2", time.Unix(2_000, 0))))

	assert.Equal(t, 1, s.Sweep())
	_, err := s.Get(ctx, "old@x.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Get(ctx, "new@x.com")
	assert.NoError(t, err)
}

func TestOTPStore_JanitorStopsOnCancel(t *testing.T) {
	s := NewOTPStore()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Janitor(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
