package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angyaliszalon/salon-api/pkg/logging"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, logging.Default())
}

func TestCreateCheckoutFormEncoding(t *testing.T) {
	var form map[string][]string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Location", "https://checkout.example/session/abc")
		w.WriteHeader(http.StatusFound)
	})

	result, err := client.CreateCheckout(context.Background(), CheckoutRequest{
		Name:           "Kiss Anna",
		Email:          "anna@example.com",
		Phone:          "+36301234567",
		Service:        "Frissítő masszázs",
		Date:           "2025-02-10",
		Time:           "09:45",
		Notes:          "első alkalom",
		Recurring:      true,
		RecurringType:  "weekly",
		RecurringCount: 4,
		Amount:         10800,
		SuccessURL:     "https://site.example/#booking-success",
		CancelURL:      "https://site.example/#booking-cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/session/abc", result.RedirectURL)

	assert.Equal(t, "createStripeCheckout", form["action"][0])
	assert.Equal(t, "yes", form["recurring"][0])
	assert.Equal(t, "weekly", form["recurringType"][0])
	assert.Equal(t, "4", form["recurringCount"][0])
	assert.Equal(t, "10800", form["amount"][0])
	assert.Equal(t, "https://site.example/#booking-success", form["successUrl"][0])
}

func TestCreateCheckoutNonRecurring(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "no", r.PostForm.Get("recurring"))
		json.NewEncoder(w).Encode(map[string]string{"url": "https://checkout.example/one"})
	})

	result, err := client.CreateCheckout(context.Background(), CheckoutRequest{
		Service: "Nepáli masszázs",
		Amount:  3000,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/one", result.RedirectURL)
}

func TestCreateCheckoutErrorStatus(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "script exploded", http.StatusInternalServerError)
	})

	_, err := client.CreateCheckout(context.Background(), CheckoutRequest{Service: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestDashboard(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "dashboard", r.URL.Query().Get("action"))
		io.WriteString(w, `{"success":true,"data":{
			"customerCount":42,
			"activePackages":7,
			"totalSessionsRemaining":31,
			"monthlyPnL":{"totalIncome":450000},
			"todaysBookings":[{"customer":"Kiss Anna","service":"Aromamasszázs","time":"11:00"}]
		}}`)
	})

	data, err := client.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, data.CustomerCount)
	assert.Equal(t, 7, data.ActivePackages)
	assert.Equal(t, 450000, data.MonthlyPnL.TotalIncome)
	require.Len(t, data.TodaysBookings, 1)
	assert.Equal(t, "11:00", data.TodaysBookings[0].Time)
}

func TestCustomerNotFound(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "customer", r.URL.Query().Get("action"))
		require.Equal(t, "nincs@example.com", r.URL.Query().Get("email"))
		io.WriteString(w, `{"success":false,"message":"customer not found"}`)
	})

	_, err := client.Customer(context.Background(), "nincs@example.com")
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "customer not found", rejected.Message)
}

func TestPnLQuery(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "pnl", q.Get("action"))
		require.Equal(t, "3", q.Get("month"))
		require.Equal(t, "2025", q.Get("year"))
		io.WriteString(w, `{"success":true,"data":{
			"totalIncome":300000,"totalDeposits":60000,"outstanding":240000,
			"sessionsCompleted":18,
			"transactions":[{"date":"2025-03-02","type":"Deposit","customer":"Kiss Anna","description":"Foglaló","amount":10800}]
		}}`)
	})

	report, err := client.PnL(context.Background(), 3, 2025)
	require.NoError(t, err)
	assert.Equal(t, 300000, report.TotalIncome)
	assert.Equal(t, 240000, report.Outstanding)
	require.Len(t, report.Transactions, 1)
	assert.Equal(t, "Deposit", report.Transactions[0].Type)
}

func TestPurchasePackageSetsAction(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "purchasePackage", payload["action"])
		assert.Equal(t, "anna@example.com", payload["email"])
		assert.Equal(t, float64(12), payload["sessions"])
		io.WriteString(w, `{"success":true}`)
	})

	err := client.PurchasePackage(context.Background(), PackageRequest{
		Email:         "anna@example.com",
		Name:          "Kiss Anna",
		Service:       "Frissítő masszázs",
		Sessions:      12,
		OriginalPrice: 180000,
		DepositPaid:   36000,
	})
	require.NoError(t, err)
}

func TestPurchasePackageRejected(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false,"message":"duplicate package"}`)
	})

	err := client.PurchasePackage(context.Background(), PackageRequest{Email: "a@b.c"})
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "duplicate package", rejected.Message)
}

func TestNotifyCancellationIgnoresFreeFormBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "cancel", payload["action"])
		io.WriteString(w, "notification queued")
	})

	err := client.NotifyCancellation(context.Background(), CancellationNotice{
		ClientName:      "Kiss Anna",
		ClientEmail:     "anna@example.com",
		AppointmentDate: "2025-02-10",
		AppointmentTime: "09:45",
		Service:         "Frissítő masszázs",
		Reason:          "betegség",
	})
	require.NoError(t, err)
}

func TestNotifyChangeSetsNewSchedule(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "change", payload["action"])
		assert.Equal(t, "2025-02-17", payload["newDate"])
		assert.Equal(t, "11:00", payload["newTime"])
		w.WriteHeader(http.StatusOK)
	})

	err := client.NotifyChange(context.Background(), ChangeNotice{
		ClientName:      "Kiss Anna",
		AppointmentDate: "2025-02-10",
		AppointmentTime: "09:45",
		NewDate:         "2025-02-17",
		NewTime:         "11:00",
	})
	require.NoError(t, err)
}

func TestGatewayUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	client := NewClient(srv.URL, logging.Default())

	_, err := client.Dashboard(context.Background())
	require.Error(t, err)
	if errors.As(err, new(*RejectedError)) {
		t.Fatalf("transport failure must not look like a business rejection")
	}
}
