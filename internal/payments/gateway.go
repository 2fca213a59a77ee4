package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrGatewayTimeout  = errors.New("payment gateway timed out")
	ErrGatewayDeclined = errors.New("payment initiation failed")
)

// GatewayOrder is the order-create request sent to the provider. Field names
// follow the provider's API.
type GatewayOrder struct {
	OrderID       string `json:"orderId"`
	OrderAmount   string `json:"orderAmount"`
	OrderCurrency string `json:"orderCurrency"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
}

// GatewayResult carries the provider-assigned payment id plus the raw
// response body, which is passed through to the initiating client untouched.
type GatewayResult struct {
	PaymentID string
	Raw       []byte
}

type GatewayClient struct {
	URL          string
	ClientID     string
	ClientSecret string
	HTTP         *http.Client
}

func NewGatewayClient(url, clientID, clientSecret string, timeout time.Duration) *GatewayClient {
	return &GatewayClient{
		URL:          url,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		HTTP:         &http.Client{Timeout: timeout},
	}
}

func (c *GatewayClient) CreateOrder(ctx context.Context, o GatewayOrder) (*GatewayResult, error) {
	body, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", c.ClientID)
	req.Header.Set("x-client-secret", c.ClientSecret)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrGatewayTimeout
		}
		return nil, fmt.Errorf("gateway call: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gateway response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrGatewayDeclined, resp.StatusCode)
	}

	var parsed struct {
		PaymentID string `json:"payment_id"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.PaymentID == "" {
		return nil, fmt.Errorf("%w: missing payment_id", ErrGatewayDeclined)
	}
	return &GatewayResult{PaymentID: parsed.PaymentID, Raw: raw}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
