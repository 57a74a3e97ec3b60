// Package zwennpay calls the ZwennPay merchant-QR API.
package zwennpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/policy-letter-api/internal/domain"
)

const purposeTransaction = "Life Insurance"

// merchantQRRequest is the GetMerchantQR body. Only the bill number, customer
// label and purpose are switched on.
type merchantQRRequest struct {
	MerchantID                           int     `json:"MerchantId"`
	SetTransactionAmount                 bool    `json:"SetTransactionAmount"`
	TransactionAmount                    float64 `json:"TransactionAmount"`
	SetConvenienceIndicatorTip           bool    `json:"SetConvenienceIndicatorTip"`
	ConvenienceIndicatorTip              float64 `json:"ConvenienceIndicatorTip"`
	SetConvenienceFeeFixed               bool    `json:"SetConvenienceFeeFixed"`
	ConvenienceFeeFixed                  float64 `json:"ConvenienceFeeFixed"`
	SetConvenienceFeePercentage          bool    `json:"SetConvenienceFeePercentage"`
	ConvenienceFeePercentage             float64 `json:"ConvenienceFeePercentage"`
	SetAdditionalBillNumber              bool    `json:"SetAdditionalBillNumber"`
	AdditionalRequiredBillNumber         bool    `json:"AdditionalRequiredBillNumber"`
	AdditionalBillNumber                 string  `json:"AdditionalBillNumber"`
	SetAdditionalMobileNo                bool    `json:"SetAdditionalMobileNo"`
	AdditionalRequiredMobileNo           bool    `json:"AdditionalRequiredMobileNo"`
	AdditionalMobileNo                   string  `json:"AdditionalMobileNo"`
	SetAdditionalStoreLabel              bool    `json:"SetAdditionalStoreLabel"`
	AdditionalRequiredStoreLabel         bool    `json:"AdditionalRequiredStoreLabel"`
	AdditionalStoreLabel                 string  `json:"AdditionalStoreLabel"`
	SetAdditionalLoyaltyNumber           bool    `json:"SetAdditionalLoyaltyNumber"`
	AdditionalRequiredLoyaltyNumber      bool    `json:"AdditionalRequiredLoyaltyNumber"`
	AdditionalLoyaltyNumber              string  `json:"AdditionalLoyaltyNumber"`
	SetAdditionalReferenceLabel          bool    `json:"SetAdditionalReferenceLabel"`
	AdditionalRequiredReferenceLabel     bool    `json:"AdditionalRequiredReferenceLabel"`
	AdditionalReferenceLabel             string  `json:"AdditionalReferenceLabel"`
	SetAdditionalCustomerLabel           bool    `json:"SetAdditionalCustomerLabel"`
	AdditionalRequiredCustomerLabel      bool    `json:"AdditionalRequiredCustomerLabel"`
	AdditionalCustomerLabel              string  `json:"AdditionalCustomerLabel"`
	SetAdditionalTerminalLabel           bool    `json:"SetAdditionalTerminalLabel"`
	AdditionalRequiredTerminalLabel      bool    `json:"AdditionalRequiredTerminalLabel"`
	AdditionalTerminalLabel              string  `json:"AdditionalTerminalLabel"`
	SetAdditionalPurposeTransaction      bool    `json:"SetAdditionalPurposeTransaction"`
	AdditionalRequiredPurposeTransaction bool    `json:"AdditionalRequiredPurposeTransaction"`
	AdditionalPurposeTransaction         string  `json:"AdditionalPurposeTransaction"`
}

// Client fetches merchant QR payloads.
type Client struct {
	url        string
	merchantID int
	http       *http.Client
}

func NewClient(url string, merchantID int, timeout time.Duration) *Client {
	return &Client{url: url, merchantID: merchantID, http: &http.Client{Timeout: timeout}}
}

// FetchPayload returns the QR payload for a bill number and customer label.
// An empty payload with a nil error means the provider had nothing to give.
func (c *Client) FetchPayload(ctx context.Context, billNumber, customerLabel string) (string, error) {
	body, err := json.Marshal(merchantQRRequest{
		MerchantID:                      c.merchantID,
		SetAdditionalBillNumber:         true,
		AdditionalBillNumber:            billNumber,
		SetAdditionalCustomerLabel:      true,
		AdditionalCustomerLabel:         customerLabel,
		SetAdditionalPurposeTransaction: true,
		AdditionalPurposeTransaction:    purposeTransaction,
	})
	if err != nil {
		return "", fmt.Errorf("marshal merchant qr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build merchant qr request: %w", err)
	}
	req.Header.Set("accept", "text/plain")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("merchant qr call: %w: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("read merchant qr response: %w: %w", domain.ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		slog.Warn("merchant qr non-200", "status", resp.StatusCode, "body", string(raw))
		return "", fmt.Errorf("merchant qr status %d: %w", resp.StatusCode, domain.ErrUpstream)
	}

	payload := strings.TrimSpace(string(raw))
	switch strings.ToLower(payload) {
	case "", "null", "none":
		return "", nil
	}
	return payload, nil
}
