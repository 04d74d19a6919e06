package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"zawawiya-store/internal/apperror"
	"zawawiya-store/internal/clock"
	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/handler"
	"zawawiya-store/internal/model"
	"zawawiya-store/internal/token"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakePayments struct {
	err error
	got *dto.PaymentNotification
}

func (f *fakePayments) CreateSession(context.Context, uint, uint) (*dto.PaySessionResponse, error) {
	return nil, errors.New("not used")
}

func (f *fakePayments) HandleNotification(_ context.Context, n *dto.PaymentNotification) error {
	f.got = n
	return f.err
}

func newTestServer(t *testing.T, payments *fakePayments) (*Server, *token.Issuer) {
	t.Helper()
	issuer := token.NewIssuer("secret", time.Hour, clock.Real{})
	srv := NewServer(Handlers{Payment: handler.NewPaymentHandler(payments)}, issuer, zaptest.NewLogger(t), Options{})
	return srv, issuer
}

func do(srv *Server, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

const notification = `{
	"order_id": "ORDER-12-1700000000000",
	"status_code": "200",
	"gross_amount": "320000.00",
	"transaction_status": "settlement",
	"fraud_status": "accept",
	"payment_type": "bank_transfer",
	"signature_key": "abc"
}`

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &fakePayments{})

	rec := do(srv, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestNotification(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantError  string
	}{
		{"accepted", notification, nil, http.StatusOK, ""},
		{"bad signature", notification, apperror.Forbidden("invalid signature"), http.StatusForbidden, "Forbidden"},
		{"unknown order", notification, apperror.NotFound("order not found"), http.StatusNotFound, "NotFound"},
		{"database down", notification, errors.New("connection refused"), http.StatusInternalServerError, "Internal"},
		{"missing signature", `{"order_id":"ORDER-1-1","status_code":"200","gross_amount":"1.00","transaction_status":"settlement"}`, nil, http.StatusBadRequest, "InvalidRequest"},
		{"not json", `settlement`, nil, http.StatusBadRequest, "InvalidRequest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payments := &fakePayments{err: tt.serviceErr}
			srv, _ := newTestServer(t, payments)

			rec := do(srv, http.MethodPost, "/api/payments/notification", tt.body, nil)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantError == "" {
				assert.JSONEq(t, `{"message":"ok"}`, rec.Body.String())
				require.NotNil(t, payments.got)
				assert.Equal(t, "ORDER-12-1700000000000", payments.got.OrderID)
				assert.Equal(t, "bank_transfer", payments.got.PaymentType)
				return
			}
			body := decodeError(t, rec)
			assert.Equal(t, tt.wantError, body.Error)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", body.Message)
			}
		})
	}
}

func TestAuthGuards(t *testing.T) {
	srv, issuer := newTestServer(t, &fakePayments{})

	userToken, err := issuer.Sign(&model.User{ID: 3, Email: "siti@example.com", Role: model.RoleUser})
	require.NoError(t, err)
	bearer := func(raw string) http.Header {
		return http.Header{echo.HeaderAuthorization: []string{"Bearer " + raw}}
	}

	tests := []struct {
		name       string
		path       string
		header     http.Header
		wantStatus int
		wantError  string
	}{
		{"buyer route without token", "/api/orders", nil, http.StatusUnauthorized, "Unauthorized"},
		{"buyer route with garbage token", "/api/orders", bearer("garbage"), http.StatusUnauthorized, "Unauthorized"},
		{"admin route without token", "/api/admin/orders", nil, http.StatusUnauthorized, "Unauthorized"},
		{"admin route as buyer", "/api/admin/orders", bearer(userToken), http.StatusForbidden, "Forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(srv, http.MethodGet, tt.path, "", tt.header)
			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, decodeError(t, rec).Error)
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t, &fakePayments{})

	rec := do(srv, http.MethodGet, "/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decodeError(t, rec).Error)
}

func TestRenderError(t *testing.T) {
	status, body := renderError(apperror.Upstream("region service unavailable", errors.New("timeout")))
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, errorResponse{Error: "Upstream", Message: "region service unavailable"}, body)

	status, body = renderError(echo.NewHTTPError(http.StatusMethodNotAllowed))
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, "Method Not Allowed", body.Error)
}

func TestStrictJSONSerializer(t *testing.T) {
	type body struct {
		Quantity int64 `json:"quantity"`
	}
	decode := func(raw string) (body, error) {
		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw)), httptest.NewRecorder())
		var b body
		err := strictJSONSerializer{}.Deserialize(c, &b)
		return b, err
	}

	b, err := decode(`{"quantity":3}`)
	require.NoError(t, err)
	assert.Equal(t, int64(3), b.Quantity)

	var he *echo.HTTPError
	_, err = decode(`{"quantity":3,"price":1}`)
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Contains(t, he.Message, "unknown field")

	_, err = decode(`{"quantity":"three"}`)
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "field quantity must be int64", he.Message)

	_, err = decode(`{"quantity":`)
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}
