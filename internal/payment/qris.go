package payment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrNotConfigured = errors.New("qris gateway is not configured")
	ErrGateway       = errors.New("qris gateway rejected the charge")
)

// Charge is the gateway's answer to a charge request: the QR payload the POS
// renders plus the reference the payment callback will carry.
type Charge struct {
	Ref       string    `json:"ref"`
	QrString  string    `json:"qr_string"`
	ExpiresAt time.Time `json:"expires_at"`
}

// QRISClient talks to the hosted QRIS payment gateway.
type QRISClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewQRISClient(baseURL, apiKey string) *QRISClient {
	return &QRISClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *QRISClient) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

type chargeRequest struct {
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

// CreateCharge registers a pending payment with the gateway and returns the
// QR payload for the given order.
func (c *QRISClient) CreateCharge(orderCode string, amount int64) (*Charge, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(chargeRequest{
		Reference: orderCode,
		Amount:    amount,
		Currency:  "IDR",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/v1/qris/charges", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrGateway, resp.StatusCode)
	}

	var charge Charge
	if err := json.NewDecoder(resp.Body).Decode(&charge); err != nil {
		return nil, err
	}
	if charge.QrString == "" || charge.Ref == "" {
		return nil, ErrGateway
	}

	return &charge, nil
}
