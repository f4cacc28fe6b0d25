// Package pricing computes multi-session discounts, totals and deposit
// amounts for bookings and admin-created packages. Both the public booking
// flow and the admin console go through this package so the discount tiers
// live in exactly one place.
package pricing

import (
	"math"

	"github.com/angyaliszalon/salon-api/internal/catalog"
)

// DepositRate is the share of the discounted total required to confirm a
// booking.
const DepositRate = 0.20

// Breakdown is the derived price of a booking. It is recomputed from form
// state on every request and never persisted.
type Breakdown struct {
	UnitPrice       int `json:"unitPrice"`
	SessionCount    int `json:"sessionCount"`
	GrossTotal      int `json:"grossTotal"`
	DiscountPercent int `json:"discountPercent"`
	DiscountAmount  int `json:"discountAmount"`
	NetTotal        int `json:"netTotal"`
	Deposit         int `json:"deposit"`
}

// DiscountPercent returns the multi-session discount tier. Thresholds are
// inclusive lower bounds evaluated highest-first; a non-recurring booking
// never gets a discount.
func DiscountPercent(recurring bool, count int) int {
	if !recurring {
		return 0
	}
	switch {
	case count >= 6:
		return 15
	case count >= 4:
		return 10
	case count >= 2:
		return 5
	}
	return 0
}

// DiscountAmount returns the forint value of the discount, rounded half away
// from zero.
func DiscountAmount(unitPrice, count, percent int) int {
	return round(float64(unitPrice*count) * float64(percent) / 100)
}

// NetTotal is the gross total minus the discount.
func NetTotal(unitPrice, count, discountAmount int) int {
	return unitPrice*count - discountAmount
}

// Deposit is 20% of the discount-adjusted total, rounded half away from zero.
func Deposit(netTotal int) int {
	return round(float64(netTotal) * DepositRate)
}

// Quote composes the full breakdown for a booking. A non-recurring booking is
// a single session regardless of count. Unknown services price at zero, which
// callers treat as an incomplete form.
func Quote(serviceName string, recurring bool, count int) Breakdown {
	unit := catalog.UnitPrice(serviceName)
	sessions := 1
	if recurring {
		sessions = count
	}
	percent := DiscountPercent(recurring, count)
	discount := DiscountAmount(unit, sessions, percent)
	net := NetTotal(unit, sessions, discount)
	return Breakdown{
		UnitPrice:       unit,
		SessionCount:    sessions,
		GrossTotal:      unit * sessions,
		DiscountPercent: percent,
		DiscountAmount:  discount,
		NetTotal:        net,
		Deposit:         Deposit(net),
	}
}

// PackageDiscountPercent returns the discount tier for an admin-created
// session package. Packages always use the recurring tier table.
func PackageDiscountPercent(sessions int) int {
	return DiscountPercent(true, sessions)
}

// PackageFinalPrice applies the package discount to an arbitrary original
// price, rounded half away from zero.
func PackageFinalPrice(originalPrice, sessions int) int {
	percent := PackageDiscountPercent(sessions)
	return round(float64(originalPrice) * (1 - float64(percent)/100))
}

// round matches the arithmetic rounding of the original pricing rules:
// half away from zero. All inputs in this domain are non-negative.
func round(v float64) int {
	return int(math.Round(v))
}
