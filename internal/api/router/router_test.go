package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angyaliszalon/salon-api/internal/admin"
	"github.com/angyaliszalon/salon-api/internal/booking"
	"github.com/angyaliszalon/salon-api/internal/sheets"
	"github.com/angyaliszalon/salon-api/pkg/logging"
)

type stubGateway struct {
	dashboard *sheets.DashboardData
}

func (s *stubGateway) CreateCheckout(context.Context, sheets.CheckoutRequest) (*sheets.CheckoutResult, error) {
	return &sheets.CheckoutResult{}, nil
}

func (s *stubGateway) Dashboard(context.Context) (*sheets.DashboardData, error) {
	return s.dashboard, nil
}

func (s *stubGateway) Customer(context.Context, string) (*sheets.CustomerProfile, error) {
	return &sheets.CustomerProfile{}, nil
}

func (s *stubGateway) PnL(context.Context, int, int) (*sheets.PnLReport, error) {
	return &sheets.PnLReport{}, nil
}

func (s *stubGateway) PurchasePackage(context.Context, sheets.PackageRequest) error { return nil }

func (s *stubGateway) NotifyCancellation(context.Context, sheets.CancellationNotice) error {
	return nil
}

func (s *stubGateway) NotifyChange(context.Context, sheets.ChangeNotice) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	gateway := &stubGateway{dashboard: &sheets.DashboardData{CustomerCount: 7}}
	logger := logging.Default()
	return New(&Config{
		Logger:             logger,
		BookingHandler:     booking.NewHandler(gateway, "https://www.dunakeszimasszazs.hu", logger),
		AdminHandler:       admin.NewHandler(gateway, "jelszo", "router-secret", time.Hour, logger),
		AdminJWTSecret:     "router-secret",
		CORSAllowedOrigins: []string{"https://www.dunakeszimasszazs.hu"},
	})
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestCatalogIsPublic(t *testing.T) {
	r := newTestRouter(t)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{
		"/admin/dashboard",
		"/admin/customers",
		"/admin/pnl",
		"/admin/packages/defaults",
	} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestLoginThenDashboard(t *testing.T) {
	r := newTestRouter(t)

	body, _ := json.Marshal(map[string]string{"password": "jelszo"})
	loginRec := httptest.NewRecorder()
	r.ServeHTTP(loginRec, httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, loginRec.Code)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(loginRec.Body).Decode(&login))
	require.NotEmpty(t, login.Token)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var data sheets.DashboardData
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&data))
	assert.Equal(t, 7, data.CustomerCount)
}

func TestQuoteEndpoint(t *testing.T) {
	r := newTestRouter(t)

	body, _ := json.Marshal(map[string]any{
		"service":        "Frissítő masszázs",
		"recurring":      true,
		"recurringCount": 4,
	})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/booking/quote", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rr.Code)
	var breakdown struct {
		DiscountPercent int `json:"discountPercent"`
		Deposit         int `json:"deposit"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&breakdown))
	assert.Equal(t, 10, breakdown.DiscountPercent)
	assert.Equal(t, 10800, breakdown.Deposit)
}

func TestCheckoutRateLimited(t *testing.T) {
	gateway := &stubGateway{}
	logger := logging.Default()
	r := New(&Config{
		Logger:             logger,
		BookingHandler:     booking.NewHandler(gateway, "https://www.dunakeszimasszazs.hu", logger),
		CheckoutRatePerSec: 0.001,
		CheckoutBurst:      1,
	})

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/booking/checkout", bytes.NewReader(nil)))
	// Empty body fails validation, but it consumed the one token.
	require.NotEqual(t, http.StatusTooManyRequests, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/booking/checkout", bytes.NewReader(nil)))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestCORSHeadersOnAllowedOrigin(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	req.Header.Set("Origin", "https://www.dunakeszimasszazs.hu")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, "https://www.dunakeszimasszazs.hu", rr.Header().Get("Access-Control-Allow-Origin"))
}
