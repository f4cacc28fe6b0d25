package sheets

import "encoding/json"

// envelope is the JSON response wrapper used by the automation endpoint for
// every read/write call except checkout creation.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// RejectedError is a business-logic rejection reported by the automation
// endpoint (success=false). The message is surfaced to the caller verbatim.
type RejectedError struct {
	Action  string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "sheets: " + e.Action + " rejected"
	}
	return "sheets: " + e.Action + " rejected: " + e.Message
}

// CheckoutRequest carries a finalized booking plus the computed deposit to
// the checkout-session creation call.
type CheckoutRequest struct {
	Name           string
	Email          string
	Phone          string
	Service        string
	Date           string
	Time           string
	Notes          string
	Recurring      bool
	RecurringType  string
	RecurringCount int
	Amount         int // deposit, whole forints
	SuccessURL     string
	CancelURL      string
}

// CheckoutResult reports a dispatched checkout request. RedirectURL is the
// payment page the visitor should be sent to, when the endpoint provides one.
type CheckoutResult struct {
	RedirectURL string
}

// DashboardData is the admin dashboard summary.
type DashboardData struct {
	CustomerCount          int            `json:"customerCount"`
	ActivePackages         int            `json:"activePackages"`
	TotalSessionsRemaining int            `json:"totalSessionsRemaining"`
	MonthlyPnL             MonthlyPnL     `json:"monthlyPnL"`
	TodaysBookings         []BookingEntry `json:"todaysBookings"`
}

// MonthlyPnL is the rolled-up income figure shown on the dashboard.
type MonthlyPnL struct {
	TotalIncome int `json:"totalIncome"`
}

// BookingEntry is one booking row on the dashboard.
type BookingEntry struct {
	Customer string `json:"customer"`
	Service  string `json:"service"`
	Time     string `json:"time"`
}

// Customer is the spreadsheet's view of a customer.
type Customer struct {
	Name                   string `json:"name"`
	Email                  string `json:"email"`
	Phone                  string `json:"phone"`
	TotalSessionsPurchased int    `json:"totalSessionsPurchased"`
	TotalSessionsUsed      int    `json:"totalSessionsUsed"`
	TotalSessionsRemaining int    `json:"totalSessionsRemaining"`
}

// Package is an admin-created bundle of pre-paid sessions.
type Package struct {
	ServiceType       string `json:"serviceType"`
	PurchaseDate      string `json:"purchaseDate"`
	SessionsPurchased int    `json:"sessionsPurchased"`
	SessionsRemaining int    `json:"sessionsRemaining"`
	DiscountPercent   int    `json:"discountPercent"`
}

// HistoryEntry is one past booking in a customer profile.
type HistoryEntry struct {
	Service string `json:"service"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Status  string `json:"status"`
}

// CustomerProfile is the exact-match customer lookup result.
type CustomerProfile struct {
	Customer       Customer       `json:"customer"`
	ActivePackages []Package      `json:"activePackages"`
	RecentBookings []HistoryEntry `json:"recentBookings"`
}

// Transaction is one ledger row in a P&L report.
type Transaction struct {
	Date        string `json:"date"`
	Type        string `json:"type"`
	Customer    string `json:"customer"`
	Description string `json:"description"`
	Amount      int    `json:"amount"`
}

// PnLReport is the externally computed profit-and-loss aggregate for a month.
type PnLReport struct {
	TotalIncome       int           `json:"totalIncome"`
	TotalDeposits     int           `json:"totalDeposits"`
	Outstanding       int           `json:"outstanding"`
	SessionsCompleted int           `json:"sessionsCompleted"`
	Transactions      []Transaction `json:"transactions"`
}

// PackageRequest creates a pre-paid session package for a customer.
type PackageRequest struct {
	Action        string `json:"action"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Service       string `json:"service"`
	Sessions      int    `json:"sessions"`
	OriginalPrice int    `json:"originalPrice"`
	DepositPaid   int    `json:"depositPaid"`
	Notes         string `json:"notes"`
}

// CancellationNotice asks the automation system to email a cancellation.
type CancellationNotice struct {
	Action          string `json:"action"`
	ClientName      string `json:"clientName"`
	ClientEmail     string `json:"clientEmail"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	Service         string `json:"service"`
	Reason          string `json:"reason"`
}

// ChangeNotice asks the automation system to email a reschedule notification.
type ChangeNotice struct {
	Action          string `json:"action"`
	ClientName      string `json:"clientName"`
	ClientEmail     string `json:"clientEmail"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	Service         string `json:"service"`
	NewDate         string `json:"newDate"`
	NewTime         string `json:"newTime"`
}
