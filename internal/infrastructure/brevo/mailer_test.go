package brevo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/policy-letter-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailer_Send(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-123", r.Header.Get("api-key"))
		assert.Equal(t, "application/json", r.Header.Get("accept"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<1@brevo>"}`))
	}))
	defer srv.Close()

	err := NewMailer(srv.URL, "key-123").Send(context.Background(), domain.Email{
		From:    domain.Address{Email: "from@x.com", Name: "From"},
		To:      []domain.Address{{Email: "c@x.com", Name: "Mr John Smith"}},
		CC:      []domain.Address{{Email: "a@x.com", Name: "Advisor"}},
		Subject: "Hello",
		HTML:    "<p>hi</p>",
		Attachments: []domain.Attachment{
			{Name: "NICL_Policy_1_2.pdf", ContentType: "application/pdf", Content: []byte("%PDF")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "from@x.com", got.Sender.Email)
	assert.Equal(t, []address{{Email: "c@x.com", Name: "Mr John Smith"}}, got.To)
	assert.Equal(t, []address{{Email: "a@x.com", Name: "Advisor"}}, got.CC)
	require.Len(t, got.Attachment, 1)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF")), got.Attachment[0].Content)
}

func TestMailer_OmitsEmptyCC(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
	}))
	defer srv.Close()

	err := NewMailer(srv.URL, "k").Send(context.Background(), domain.Email{
		To: []domain.Address{{Email: "a@x.com"}},
	})
	require.NoError(t, err)
	_, hasCC := raw["cc"]
	assert.False(t, hasCC)
	_, hasAttachment := raw["attachment"]
	assert.False(t, hasAttachment)
}

func TestMailer_Non2xxIsDeliveryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"code":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewMailer(srv.URL, "bad").Send(context.Background(), domain.Email{To: []domain.Address{{Email: "a@x.com"}}})
	assert.ErrorIs(t, err, domain.ErrDelivery)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
