package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/angyaliszalon/salon-api/internal/catalog"
	"github.com/angyaliszalon/salon-api/internal/observability/metrics"
	"github.com/angyaliszalon/salon-api/internal/sheets"
	"github.com/angyaliszalon/salon-api/pkg/logging"
)

// Handler exposes the public booking API.
type Handler struct {
	gateway       CheckoutDispatcher
	logger        *logging.Logger
	metrics       *metrics.BookingMetrics
	publicBaseURL string
	now           func() time.Time
}

// NewHandler creates the public booking handler.
func NewHandler(gateway CheckoutDispatcher, publicBaseURL string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		gateway:       gateway,
		logger:        logger,
		publicBaseURL: publicBaseURL,
		now:           time.Now,
	}
}

// WithMetrics attaches booking metrics.
func (h *Handler) WithMetrics(m *metrics.BookingMetrics) *Handler {
	h.metrics = m
	return h
}

// WithClock overrides the clock used for date validation (tests).
func (h *Handler) WithClock(now func() time.Time) *Handler {
	if now != nil {
		h.now = now
	}
	return h
}

type quoteRequest struct {
	Service        string `json:"service"`
	Recurring      bool   `json:"recurring"`
	RecurringCount int    `json:"recurringCount"`
}

type checkoutPayload struct {
	Request
	AcceptedTerms bool   `json:"acceptedTerms"`
	SuccessURL    string `json:"successUrl,omitempty"`
	CancelURL     string `json:"cancelUrl,omitempty"`
}

type checkoutResponse struct {
	CheckoutURL string  `json:"checkoutUrl,omitempty"`
	Summary     Summary `json:"summary"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Catalog serves the static booking options: services, time slots,
// recurrence choices and the current booking date window.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	min, max := catalog.DateWindow(h.now())
	respondJSON(w, http.StatusOK, map[string]any{
		"services":         catalog.Services(),
		"timeSlots":        catalog.TimeSlots(),
		"recurrenceCounts": catalog.RecurrenceCounts(),
		"cadences":         []string{catalog.CadenceWeekly, catalog.CadenceBiweekly, catalog.CadenceMonthly},
		"dateWindow": map[string]string{
			"min": min.Format(catalog.DateLayout),
			"max": max.Format(catalog.DateLayout),
		},
	})
}

// Quote computes the price breakdown for the current form values. Nothing is
// persisted; the client calls this on every form change.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload"})
		return
	}
	h.metrics.ObserveQuote()
	respondJSON(w, http.StatusOK, req.toRequest().Breakdown())
}

func (q quoteRequest) toRequest() Request {
	req := NewRequest()
	req.Service = q.Service
	req.Recurring = q.Recurring
	if q.RecurringCount > 0 {
		req.RecurringCount = q.RecurringCount
	}
	return req
}

// Checkout runs the whole booking flow for a submitted form: validate,
// freeze, dispatch the deposit checkout. Validation failures are rejected
// before anything reaches the network.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var payload checkoutPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload"})
		return
	}

	flow := NewFlow().WithClock(h.now)
	req := NewRequest()
	req.Name = payload.Name
	req.Phone = payload.Phone
	req.Email = payload.Email
	req.Service = payload.Service
	req.Date = payload.Date
	req.Time = payload.Time
	req.Notes = payload.Notes
	req.Recurring = payload.Recurring
	if payload.RecurringType != "" {
		req.RecurringType = payload.RecurringType
	}
	if payload.RecurringCount != 0 {
		req.RecurringCount = payload.RecurringCount
	}
	flow.Update(req)
	flow.AcceptTerms(payload.AcceptedTerms)

	if err := flow.ContinueToPayment(); err != nil {
		h.metrics.ObserveCheckout("invalid")
		var verr *ValidationError
		if errors.As(err, &verr) {
			respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Message, Field: verr.Field})
			return
		}
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "please accept the terms and conditions"})
		return
	}

	successURL := payload.SuccessURL
	if successURL == "" && h.publicBaseURL != "" {
		successURL = h.publicBaseURL + "/#booking-success"
	}
	cancelURL := payload.CancelURL
	if cancelURL == "" && h.publicBaseURL != "" {
		cancelURL = h.publicBaseURL + "/#booking-cancel"
	}

	result, err := flow.SubmitDeposit(r.Context(), h.gateway, successURL, cancelURL)
	if err != nil {
		h.metrics.ObserveCheckout("error")
		h.logger.Error("checkout dispatch failed", "error", err, "service", req.Service)
		var rejected *sheets.RejectedError
		if errors.As(err, &rejected) {
			respondJSON(w, http.StatusBadGateway, errorResponse{Error: rejected.Message})
			return
		}
		respondJSON(w, http.StatusBadGateway, errorResponse{Error: "could not reach the booking system, please try again"})
		return
	}

	h.metrics.ObserveCheckout("dispatched")
	summary, _ := flow.Summary()
	respondJSON(w, http.StatusOK, checkoutResponse{
		CheckoutURL: result.RedirectURL,
		Summary:     summary,
	})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
