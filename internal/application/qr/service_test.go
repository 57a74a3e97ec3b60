package qr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFetcher struct{ mock.Mock }

func (m *mockFetcher) FetchPayload(ctx context.Context, bill, label string) (string, error) {
	args := m.Called(ctx, bill, label)
	return args.String(0), args.Error(1)
}

type mockWriter struct{ mock.Mock }

func (m *mockWriter) Write(payload, policyNo string) (string, error) {
	args := m.Called(payload, policyNo)
	return args.String(0), args.Error(1)
}

func TestFormatPolicyNumber(t *testing.T) {
	assert.Equal(t, "00423.003456", FormatPolicyNumber("00423/003456"))
	assert.Equal(t, "1.2.3", FormatPolicyNumber("1/2/3"))
	assert.Equal(t, "", FormatPolicyNumber(""))
}

func TestFormatCustomerLabel(t *testing.T) {
	assert.Equal(t, "J Smith", FormatCustomerLabel("John", "Smith"))
	assert.Equal(t, "J Smith", FormatCustomerLabel("john", "Smith"))
	assert.Equal(t, "", FormatCustomerLabel("", "Smith"))
	assert.Equal(t, "", FormatCustomerLabel("John", ""))

	long := FormatCustomerLabel("Bartholomew", "Ramgoolam-Seewoosagur-Navin")
	assert.Len(t, []rune(long), 24)
	assert.Equal(t, "B Ramgoolam-Seewoosagur-", long)

	assert.Equal(t, "É Lafleur", FormatCustomerLabel("émile", "Lafleur"))
}

func TestProvision_Success(t *testing.T) {
	f := &mockFetcher{}
	w := &mockWriter{}
	f.On("FetchPayload", mock.Anything, "00423.003456", "J Smith").Return("PAYLOAD", nil)
	w.On("Write", "PAYLOAD", "00423/003456").Return("/tmp/qr.png", nil)

	tok := NewService(f, w).Provision(context.Background(), "00423/003456", "John", "Smith")
	require.NotNil(t, tok)
	assert.Equal(t, "00423.003456", tok.PolicyNo)
	assert.Equal(t, "J Smith", tok.CustomerLabel)
	assert.Equal(t, "PAYLOAD", tok.Payload)
	assert.Equal(t, "/tmp/qr.png", tok.ImagePath)
}

func TestProvision_FetchErrorIsNil(t *testing.T) {
	f := &mockFetcher{}
	f.On("FetchPayload", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("timeout"))
	w := &mockWriter{}

	assert.Nil(t, NewService(f, w).Provision(context.Background(), "1", "J", "S"))
	w.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
}

func TestProvision_EmptyPayloadIsNil(t *testing.T) {
	f := &mockFetcher{}
	f.On("FetchPayload", mock.Anything, mock.Anything, mock.Anything).Return("", nil)
	w := &mockWriter{}

	assert.Nil(t, NewService(f, w).Provision(context.Background(), "1", "J", "S"))
	w.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
}

func TestProvision_WriteErrorIsNil(t *testing.T) {
	f := &mockFetcher{}
	f.On("FetchPayload", mock.Anything, mock.Anything, mock.Anything).Return("P", nil)
	w := &mockWriter{}
	w.On("Write", "P", "1").Return("", errors.New("disk full"))

	assert.Nil(t, NewService(f, w).Provision(context.Background(), "1", "J", "S"))
}

func TestToken_Release(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qr.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o600))

	tok := &Token{ImagePath: path}
	tok.Release()
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	tok.Release()
}

func TestToken_ReleaseNilAndMissing(t *testing.T) {
	var tok *Token
	assert.NotPanics(t, tok.Release)

	missing := &Token{ImagePath: filepath.Join(t.TempDir(), "gone.png")}
	assert.NotPanics(t, missing.Release)
}
