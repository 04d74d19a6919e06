package client

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"zawawiya-store/internal/config"

	"github.com/shopspring/decimal"
)

type MidtransClient interface {
	CreateSession(ctx context.Context, req *SessionRequest) (*SessionResponse, error)
	VerifySignature(orderID, statusCode, grossAmount, signature string) bool
}

type SessionItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

type SessionAddress struct {
	FirstName   string `json:"first_name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"`
}

type SessionCustomer struct {
	FirstName       string          `json:"first_name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	ShippingAddress *SessionAddress `json:"shipping_address,omitempty"`
}

type SessionRequest struct {
	ExternalID  string
	GrossAmount int64
	Items       []SessionItem
	Customer    SessionCustomer
}

type SessionResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

type midtransClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	serverKey  string
	finishURL  string
}

func NewMidtransClient(cfg *config.Midtrans) MidtransClient {
	return &midtransClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: strings.TrimRight(cfg.BaseApiURL, "/"),
		serverKey:  cfg.ServerKey,
		finishURL:  cfg.FinishURL,
	}
}

func (c *midtransClientImpl) CreateSession(ctx context.Context, sr *SessionRequest) (*SessionResponse, error) {
	payload := map[string]interface{}{
		"transaction_details": map[string]interface{}{
			"order_id":     sr.ExternalID,
			"gross_amount": sr.GrossAmount,
		},
		"item_details":     sr.Items,
		"customer_details": sr.Customer,
	}
	if c.finishURL != "" {
		payload["callbacks"] = map[string]string{"finish": c.finishURL}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/snap/v1/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	auth := base64.StdEncoding.EncodeToString([]byte(c.serverKey + ":"))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("midtrans create transaction failed: %s", string(b))
	}

	var res SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode midtrans response: %w", err)
	}
	if res.Token == "" {
		return nil, fmt.Errorf("midtrans returned an empty token")
	}

	return &res, nil
}

func (c *midtransClientImpl) VerifySignature(orderID, statusCode, grossAmount, signature string) bool {
	if c.serverKey == "" || signature == "" {
		return false
	}
	expected := NotificationSignature(c.serverKey, orderID, statusCode, grossAmount)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// NotificationSignature is the hex HMAC-SHA512 of
// order_id+status_code+gross_amount keyed by the server key.
func NotificationSignature(serverKey, orderID, statusCode, grossAmount string) string {
	mac := hmac.New(sha512.New, []byte(serverKey))
	mac.Write([]byte(orderID + statusCode + grossAmount))
	return hex.EncodeToString(mac.Sum(nil))
}

// GrossAmount renders an amount the way the gateway echoes it back in
// notifications, e.g. 35000 -> "35000.00".
func GrossAmount(amount int64) string {
	return decimal.NewFromInt(amount).StringFixed(2)
}
