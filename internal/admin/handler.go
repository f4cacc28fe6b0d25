// Package admin is the password-gated console: dashboard, customer lookup,
// package creation, P&L and appointment notifications. Every view is a thin
// read or write against the external automation endpoint; the only local
// computation is the shared pricing module.
package admin

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/angyaliszalon/salon-api/internal/pricing"
	"github.com/angyaliszalon/salon-api/internal/sheets"
	"github.com/angyaliszalon/salon-api/pkg/logging"
)

// Gateway is the slice of the automation client the console needs.
// *sheets.Client satisfies it.
type Gateway interface {
	Dashboard(ctx context.Context) (*sheets.DashboardData, error)
	Customer(ctx context.Context, email string) (*sheets.CustomerProfile, error)
	PnL(ctx context.Context, month, year int) (*sheets.PnLReport, error)
	PurchasePackage(ctx context.Context, req sheets.PackageRequest) error
	NotifyCancellation(ctx context.Context, notice sheets.CancellationNotice) error
	NotifyChange(ctx context.Context, notice sheets.ChangeNotice) error
}

// Handler serves the admin console endpoints.
type Handler struct {
	gateway   Gateway
	password  string
	jwtSecret string
	tokenTTL  time.Duration
	logger    *logging.Logger
	now       func() time.Time
}

// NewHandler creates the admin handler. The password and signing secret come
// from configuration; an empty password disables the console.
func NewHandler(gateway Gateway, password, jwtSecret string, tokenTTL time.Duration, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &Handler{
		gateway:   gateway,
		password:  password,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the clock (tests).
func (h *Handler) WithClock(now func() time.Time) *Handler {
	if now != nil {
		h.now = now
	}
	return h
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Login checks the shared console password and issues a bearer token.
// Repeated wrong guesses are not locked out; the gate is a UI convenience,
// not a security boundary.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.password == "" || h.jwtSecret == "" {
		respondJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "admin console disabled"})
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) != 1 {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid password"})
		return
	}

	now := h.now()
	expires := now.Add(h.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	signed, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		h.logger.Error("token signing failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not create session"})
		return
	}
	respondJSON(w, http.StatusOK, loginResponse{
		Token:     signed,
		ExpiresAt: expires.UTC().Format(time.RFC3339),
	})
}

// Dashboard proxies the summary view.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.gateway.Dashboard(r.Context())
	if err != nil {
		h.respondGatewayError(w, "dashboard", err)
		return
	}
	respondJSON(w, http.StatusOK, data)
}

// Customer looks up a customer profile by exact email match.
func (h *Handler) Customer(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "email is required"})
		return
	}
	profile, err := h.gateway.Customer(r.Context(), email)
	if err != nil {
		var rejected *sheets.RejectedError
		if errors.As(err, &rejected) {
			// Not found is a reported condition, not a failure.
			msg := rejected.Message
			if msg == "" {
				msg = "customer not found"
			}
			respondJSON(w, http.StatusNotFound, errorResponse{Error: msg})
			return
		}
		h.respondGatewayError(w, "customer", err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// PnL proxies the monthly profit-and-loss report. Month and year default to
// the current calendar month.
func (h *Handler) PnL(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	month := int(now.Month())
	year := now.Year()
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "month must be 1-12"})
			return
		}
		month = m
	}
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 2020 || y > 2100 {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid year"})
			return
		}
		year = y
	}

	report, err := h.gateway.PnL(r.Context(), month, year)
	if err != nil {
		h.respondGatewayError(w, "pnl", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

type createPackageRequest struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Service       string `json:"service"`
	Sessions      int    `json:"sessions"`
	OriginalPrice int    `json:"originalPrice"`
	DepositPaid   int    `json:"depositPaid"`
	Notes         string `json:"notes"`
}

type createPackageResponse struct {
	DiscountPercent int `json:"discountPercent"`
	FinalPrice      int `json:"finalPrice"`
	Outstanding     int `json:"outstanding"`
}

// PackageDefaults returns the console's prefill values for the package form.
func (h *Handler) PackageDefaults(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, createPackageRequest{
		Sessions:      12,
		OriginalPrice: 180000,
		DepositPaid:   36000,
	})
}

// CreatePackage records a pre-paid session package. The discount comes from
// the same pricing module the public booking widget uses.
func (h *Handler) CreatePackage(w http.ResponseWriter, r *http.Request) {
	var req createPackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload"})
		return
	}
	if req.Email == "" || req.Name == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "name and email are required"})
		return
	}
	if req.Sessions <= 0 || req.OriginalPrice <= 0 {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "sessions and originalPrice must be positive"})
		return
	}

	err := h.gateway.PurchasePackage(r.Context(), sheets.PackageRequest{
		Email:         req.Email,
		Name:          req.Name,
		Phone:         req.Phone,
		Service:       req.Service,
		Sessions:      req.Sessions,
		OriginalPrice: req.OriginalPrice,
		DepositPaid:   req.DepositPaid,
		Notes:         req.Notes,
	})
	if err != nil {
		h.respondGatewayError(w, "purchasePackage", err)
		return
	}

	percent := pricing.PackageDiscountPercent(req.Sessions)
	final := pricing.PackageFinalPrice(req.OriginalPrice, req.Sessions)
	h.logger.Info("package created",
		"email", req.Email,
		"sessions", req.Sessions,
		"discount_percent", percent,
		"final_price", final,
	)
	respondJSON(w, http.StatusOK, createPackageResponse{
		DiscountPercent: percent,
		FinalPrice:      final,
		Outstanding:     final - req.DepositPaid,
	})
}

type cancelRequest struct {
	ClientName      string `json:"clientName"`
	ClientEmail     string `json:"clientEmail"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	Service         string `json:"service"`
	Reason          string `json:"reason"`
}

// Cancel asks the automation system to send a cancellation notification.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload"})
		return
	}
	if req.ClientName == "" || req.ClientEmail == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "client name and email are required"})
		return
	}
	err := h.gateway.NotifyCancellation(r.Context(), sheets.CancellationNotice{
		ClientName:      req.ClientName,
		ClientEmail:     req.ClientEmail,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		Service:         req.Service,
		Reason:          req.Reason,
	})
	if err != nil {
		h.respondGatewayError(w, "cancel", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

type changeRequest struct {
	ClientName      string `json:"clientName"`
	ClientEmail     string `json:"clientEmail"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	Service         string `json:"service"`
	NewDate         string `json:"newDate"`
	NewTime         string `json:"newTime"`
}

// Change asks the automation system to send a reschedule notification.
func (h *Handler) Change(w http.ResponseWriter, r *http.Request) {
	var req changeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload"})
		return
	}
	if req.ClientName == "" || req.ClientEmail == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "client name and email are required"})
		return
	}
	if req.NewDate == "" || req.NewTime == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "new date and time are required"})
		return
	}
	err := h.gateway.NotifyChange(r.Context(), sheets.ChangeNotice{
		ClientName:      req.ClientName,
		ClientEmail:     req.ClientEmail,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		Service:         req.Service,
		NewDate:         req.NewDate,
		NewTime:         req.NewTime,
	})
	if err != nil {
		h.respondGatewayError(w, "change", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// respondGatewayError maps gateway failures onto the console contract:
// business rejections are surfaced verbatim, transport failures get a
// generic retryable message.
func (h *Handler) respondGatewayError(w http.ResponseWriter, action string, err error) {
	h.logger.Error("gateway call failed", "action", action, "error", err)
	var rejected *sheets.RejectedError
	if errors.As(err, &rejected) && rejected.Message != "" {
		respondJSON(w, http.StatusBadGateway, errorResponse{Error: rejected.Message})
		return
	}
	respondJSON(w, http.StatusBadGateway, errorResponse{Error: "booking system unavailable, please try again"})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
