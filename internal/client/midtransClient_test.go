package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"zawawiya-store/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrossAmount(t *testing.T) {
	assert.Equal(t, "35000.00", GrossAmount(35000))
	assert.Equal(t, "0.00", GrossAmount(0))
}

func TestVerifySignature(t *testing.T) {
	c := NewMidtransClient(&config.Midtrans{ServerKey: "SB-Mid-server-abc"})
	sig := NotificationSignature("SB-Mid-server-abc", "ORDER-12-1700000000000", "200", "35000.00")

	assert.Len(t, sig, 128)
	assert.True(t, c.VerifySignature("ORDER-12-1700000000000", "200", "35000.00", sig))
	assert.True(t, c.VerifySignature("ORDER-12-1700000000000", "200", "35000.00", strings.ToUpper(sig)))
	assert.False(t, c.VerifySignature("ORDER-12-1700000000000", "200", "36000.00", sig))
	assert.False(t, c.VerifySignature("ORDER-12-1700000000000", "200", "35000.00", ""))

	noKey := NewMidtransClient(&config.Midtrans{})
	assert.False(t, noKey.VerifySignature("ORDER-12-1700000000000", "200", "35000.00",
		NotificationSignature("", "ORDER-12-1700000000000", "200", "35000.00")))
}

func TestCreateSession(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/snap/v1/transactions", r.URL.Path)
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("SB-Mid-server-abc:"))
		assert.Equal(t, want, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"snap-1","redirect_url":"https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-1"}`))
	}))
	defer srv.Close()

	c := NewMidtransClient(&config.Midtrans{
		BaseApiURL: srv.URL + "/",
		ServerKey:  "SB-Mid-server-abc",
		FinishURL:  "https://zawawiya.test/orders",
	})

	res, err := c.CreateSession(context.Background(), &SessionRequest{
		ExternalID:  "ORDER-12-1700000000000",
		GrossAmount: 320000,
		Items:       []SessionItem{{ID: "3", Name: "Gamis Syari Zahra", Price: 150000, Quantity: 2}},
		Customer:    SessionCustomer{FirstName: "Siti", Email: "siti@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "snap-1", res.Token)
	assert.Contains(t, res.RedirectURL, "snap-1")

	details := got["transaction_details"].(map[string]interface{})
	assert.Equal(t, "ORDER-12-1700000000000", details["order_id"])
	assert.Equal(t, float64(320000), details["gross_amount"])
	assert.Equal(t, map[string]interface{}{"finish": "https://zawawiya.test/orders"}, got["callbacks"])
	assert.Len(t, got["item_details"], 1)
}

func TestCreateSession_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		errMsg string
	}{
		{"gateway rejects", http.StatusUnauthorized, `{"error_messages":["Access denied"]}`, "Access denied"},
		{"empty token", http.StatusCreated, `{"token":""}`, "empty token"},
		{"garbage body", http.StatusCreated, `<html>`, "decode midtrans response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewMidtransClient(&config.Midtrans{BaseApiURL: srv.URL, ServerKey: "k"})
			res, err := c.CreateSession(context.Background(), &SessionRequest{ExternalID: "ORDER-1-1", GrossAmount: 1000})
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
