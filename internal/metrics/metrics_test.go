package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCheckout(t *testing.T) {
	before := testutil.ToFloat64(CheckoutsTotal.WithLabelValues("VA"))
	RecordCheckout("VA")
	RecordCheckout("VA")
	assert.Equal(t, before+2, testutil.ToFloat64(CheckoutsTotal.WithLabelValues("VA")))
}

func TestRecordPaymentTransition(t *testing.T) {
	before := testutil.ToFloat64(PaymentTransitions.WithLabelValues("webhook", "BERHASIL"))
	RecordPaymentTransition("webhook", "BERHASIL")
	assert.Equal(t, before+1, testutil.ToFloat64(PaymentTransitions.WithLabelValues("webhook", "BERHASIL")))
}

func TestMiddleware_CountsByRoute(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/api/orders/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/api/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadGateway, "upstream")
	})
	e.GET("/metrics", Handler())

	ok := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/orders/:id", "204"))
	bad := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/boom", "502"))

	for _, path := range []string{"/api/orders/1", "/api/orders/2", "/api/boom"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, ok+2, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/orders/:id", "204")))
	assert.Equal(t, bad+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/boom", "502")))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "http_requests_total"))
}
