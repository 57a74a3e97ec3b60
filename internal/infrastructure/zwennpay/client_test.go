package zwennpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/policy-letter-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPayload_SendsMerchantRequest(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/plain", r.Header.Get("accept"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("  00020101021126...6304ABCD \n"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 151, time.Second)
	payload, err := c.FetchPayload(context.Background(), "00423.003456", "J Smith")
	require.NoError(t, err)
	assert.Equal(t, "00020101021126...6304ABCD", payload)

	assert.EqualValues(t, 151, got["MerchantId"])
	assert.Equal(t, "00423.003456", got["AdditionalBillNumber"])
	assert.Equal(t, "J Smith", got["AdditionalCustomerLabel"])
	assert.Equal(t, "Life Insurance", got["AdditionalPurposeTransaction"])
	assert.Equal(t, false, got["SetTransactionAmount"])
	assert.Equal(t, true, got["SetAdditionalBillNumber"])
}

func TestFetchPayload_EmptyLikeBodies(t *testing.T) {
	for _, body := range []string{"", "null", "NONE", "   "} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		payload, err := NewClient(srv.URL, 151, time.Second).FetchPayload(context.Background(), "1", "J S")
		srv.Close()
		require.NoError(t, err, body)
		assert.Empty(t, payload, body)
	}
}

func TestFetchPayload_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 151, time.Second).FetchPayload(context.Background(), "1", "J S")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestFetchPayload_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 151, 20*time.Millisecond).FetchPayload(context.Background(), "1", "J S")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
