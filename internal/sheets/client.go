// Package sheets is the submission gateway to the external spreadsheet-backed
// automation endpoint (a Google Apps Script web app). The endpoint performs
// all real persistence, checkout-session creation and email dispatch; this
// client only shapes requests and reports dispatch outcomes. There is no
// retry and no queuing: failed calls are surfaced to the user as retryable.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/angyaliszalon/salon-api/internal/observability/metrics"
	"github.com/angyaliszalon/salon-api/pkg/logging"
)

var tracer = otel.Tracer("salon.internal.sheets")

// Logical operations understood by the automation endpoint.
const (
	actionCheckout        = "createStripeCheckout"
	actionDashboard       = "dashboard"
	actionCustomer        = "customer"
	actionPnL             = "pnl"
	actionPurchasePackage = "purchasePackage"
	actionCancel          = "cancel"
	actionChange          = "change"
)

// Client talks to the automation endpoint. The script URL is injected from
// configuration, never compiled in.
type Client struct {
	scriptURL  string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.GatewayMetrics
}

// NewClient creates a gateway client for the given script URL.
func NewClient(scriptURL string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		scriptURL: strings.TrimRight(scriptURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			// Checkout creation answers with a redirect to the payment page.
			// Capture it instead of following into the provider's HTML.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}
}

// WithHTTPClient overrides the HTTP client (for testing).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithTimeout overrides the per-request timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.httpClient.Timeout = d
	}
	return c
}

// WithMetrics attaches gateway metrics.
func (c *Client) WithMetrics(m *metrics.GatewayMetrics) *Client {
	c.metrics = m
	return c
}

// CreateCheckout dispatches a booking plus deposit as a classic url-encoded
// form post, the calling convention the endpoint requires for the
// checkout-session call. The response body is not interpreted beyond pulling
// out the payment redirect target; dispatch success means the request reached
// the endpoint with a non-error status.
func (c *Client) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	ctx, span := tracer.Start(ctx, "sheets.create_checkout", trace.WithAttributes(
		attribute.String("salon.service", req.Service),
		attribute.Int("salon.deposit_huf", req.Amount),
		attribute.Bool("salon.recurring", req.Recurring),
	))
	defer span.End()

	recurring := "no"
	if req.Recurring {
		recurring = "yes"
	}
	form := url.Values{}
	form.Set("action", actionCheckout)
	form.Set("name", req.Name)
	form.Set("email", req.Email)
	form.Set("phone", req.Phone)
	form.Set("service", req.Service)
	form.Set("date", req.Date)
	form.Set("time", req.Time)
	form.Set("notes", req.Notes)
	form.Set("recurring", recurring)
	form.Set("recurringType", req.RecurringType)
	form.Set("recurringCount", strconv.Itoa(req.RecurringCount))
	form.Set("amount", strconv.Itoa(req.Amount))
	form.Set("successUrl", req.SuccessURL)
	form.Set("cancelUrl", req.CancelURL)

	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.scriptURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("sheets: checkout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(actionCheckout, "error", start)
		span.RecordError(err)
		return nil, fmt.Errorf("sheets: checkout dispatch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		c.observe(actionCheckout, "error", start)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("sheets: checkout status %d: %s", resp.StatusCode, string(body))
	}

	result := &CheckoutResult{}
	if loc := resp.Header.Get("Location"); loc != "" {
		result.RedirectURL = loc
	} else {
		// Some deployments answer 200 with a tiny JSON {"url": ...} body.
		var parsed struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err == nil {
			result.RedirectURL = parsed.URL
		}
	}

	c.observe(actionCheckout, "ok", start)
	c.logger.Info("checkout dispatched",
		"service", req.Service,
		"deposit_huf", req.Amount,
		"recurring", req.Recurring,
		"status", resp.StatusCode,
	)
	return result, nil
}

// Dashboard fetches the admin dashboard summary.
func (c *Client) Dashboard(ctx context.Context) (*DashboardData, error) {
	var data DashboardData
	if err := c.doGet(ctx, actionDashboard, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Customer looks up a customer profile by exact email match. A missing
// customer comes back as a RejectedError, not a transport failure.
func (c *Client) Customer(ctx context.Context, email string) (*CustomerProfile, error) {
	q := url.Values{}
	q.Set("email", email)
	var profile CustomerProfile
	if err := c.doGet(ctx, actionCustomer, q, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// PnL fetches the profit-and-loss report for a month.
func (c *Client) PnL(ctx context.Context, month, year int) (*PnLReport, error) {
	q := url.Values{}
	q.Set("month", strconv.Itoa(month))
	q.Set("year", strconv.Itoa(year))
	var report PnLReport
	if err := c.doGet(ctx, actionPnL, q, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// PurchasePackage records an admin-created session package.
func (c *Client) PurchasePackage(ctx context.Context, req PackageRequest) error {
	req.Action = actionPurchasePackage
	return c.doPost(ctx, actionPurchasePackage, req)
}

// NotifyCancellation sends a cancellation notification request.
func (c *Client) NotifyCancellation(ctx context.Context, notice CancellationNotice) error {
	notice.Action = actionCancel
	return c.doPost(ctx, actionCancel, notice)
}

// NotifyChange sends a reschedule notification request.
func (c *Client) NotifyChange(ctx context.Context, notice ChangeNotice) error {
	notice.Action = actionChange
	return c.doPost(ctx, actionChange, notice)
}

func (c *Client) doGet(ctx context.Context, action string, query url.Values, out any) error {
	ctx, span := tracer.Start(ctx, "sheets."+action)
	defer span.End()

	if query == nil {
		query = url.Values{}
	}
	query.Set("action", action)

	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.scriptURL+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("sheets: %s request: %w", action, err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(action, "error", start)
		span.RecordError(err)
		return fmt.Errorf("sheets: %s: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.observe(action, "error", start)
		return fmt.Errorf("sheets: %s status %d", action, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.observe(action, "error", start)
		return fmt.Errorf("sheets: %s decode: %w", action, err)
	}
	if !env.Success {
		c.observe(action, "rejected", start)
		return &RejectedError{Action: action, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			c.observe(action, "error", start)
			return fmt.Errorf("sheets: %s data: %w", action, err)
		}
	}
	c.observe(action, "ok", start)
	return nil
}

func (c *Client) doPost(ctx context.Context, action string, payload any) error {
	ctx, span := tracer.Start(ctx, "sheets."+action)
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("sheets: %s encode: %w", action, err)
	}

	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.scriptURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sheets: %s request: %w", action, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(action, "error", start)
		span.RecordError(err)
		return fmt.Errorf("sheets: %s: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		c.observe(action, "error", start)
		return fmt.Errorf("sheets: %s status %d", action, resp.StatusCode)
	}

	// Notification calls answer with an empty or free-form body; only a
	// well-formed envelope with success=false counts as a rejection.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.observe(action, "error", start)
		return fmt.Errorf("sheets: %s read: %w", action, err)
	}
	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 && json.Unmarshal(raw, &env) == nil {
		if !env.Success && (env.Message != "" || bytes.Contains(raw, []byte("\"success\""))) {
			c.observe(action, "rejected", start)
			return &RejectedError{Action: action, Message: env.Message}
		}
	}
	c.observe(action, "ok", start)
	return nil
}

func (c *Client) observe(action, status string, start time.Time) {
	c.metrics.ObserveRequest(action, status, time.Since(start).Seconds())
}
