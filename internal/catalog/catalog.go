// Package catalog holds the static service list and scheduling constants for
// the salon. The catalog is immutable at runtime; the external booking system
// never changes it mid-deploy.
package catalog

import "time"

// Service is a bookable treatment. Prices are whole forints.
type Service struct {
	Name     string `json:"name"`
	Duration string `json:"duration"`
	Price    int    `json:"price"`
}

// Recurrence cadences offered on the booking form.
const (
	CadenceWeekly   = "weekly"
	CadenceBiweekly = "biweekly"
	CadenceMonthly  = "monthly"
)

// DateLayout is the calendar-date wire format used by the booking form and
// the automation endpoint.
const DateLayout = "2006-01-02"

var services = []Service{
	{Name: "Frissítő masszázs", Duration: "kb. 60 perc", Price: 15000},
	{Name: "Nepáli masszázs", Duration: "kb. 60 perc", Price: 15000},
	{Name: "Nyirokmasszázs", Duration: "60 perc", Price: 15000},
	{Name: "Aromamasszázs", Duration: "60 perc", Price: 15000},
	{Name: "Indiai fejmasszázs", Duration: "kb. 30-40 perc", Price: 15000},
	{Name: "Nehézfém-kivezetés", Duration: "kb. 60 perc", Price: 15000},
	{Name: "Kineziológia", Duration: "60-75 perc", Price: 15000},
	{Name: "Arany kollagén arckezelés", Duration: "kb. 60-90 perc", Price: 30000},
	{Name: "Ultrahangos zsírbontás", Duration: "kb. 45-60 perc", Price: 15000},
	{Name: "Metamorf masszázs", Duration: "kb. 60 perc", Price: 15000},
}

// Slots are 75 minutes apart: a 60 minute session plus a 15 minute break.
// The last one finishes by 19:30.
var timeSlots = []string{
	"08:30", "09:45", "11:00", "12:15", "13:30", "14:45", "16:00", "17:15", "18:30",
}

// Session counts selectable for a recurring booking.
var recurrenceCounts = []int{2, 3, 4, 5, 6, 8, 10, 12}

// Services returns a copy of the service catalog.
func Services() []Service {
	out := make([]Service, len(services))
	copy(out, services)
	return out
}

// UnitPrice returns the per-session price of a service, or 0 when the name is
// unset or unknown. Callers treat 0 as "incomplete", not as an error.
func UnitPrice(name string) int {
	for _, s := range services {
		if s.Name == name {
			return s.Price
		}
	}
	return 0
}

// TimeSlots returns a copy of the fixed daily slot list.
func TimeSlots() []string {
	out := make([]string, len(timeSlots))
	copy(out, timeSlots)
	return out
}

// ValidSlot reports whether t is one of the fixed time slots.
func ValidSlot(t string) bool {
	for _, slot := range timeSlots {
		if slot == t {
			return true
		}
	}
	return false
}

// RecurrenceCounts returns a copy of the selectable session counts.
func RecurrenceCounts() []int {
	out := make([]int, len(recurrenceCounts))
	copy(out, recurrenceCounts)
	return out
}

// ValidRecurrenceCount reports whether n is a selectable session count.
func ValidRecurrenceCount(n int) bool {
	for _, c := range recurrenceCounts {
		if c == n {
			return true
		}
	}
	return false
}

// ValidCadence reports whether c is one of the offered recurrence cadences.
func ValidCadence(c string) bool {
	switch c {
	case CadenceWeekly, CadenceBiweekly, CadenceMonthly:
		return true
	}
	return false
}

// DateWindow returns the inclusive booking window relative to now: from
// tomorrow up to three months ahead.
func DateWindow(now time.Time) (min, max time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return day.AddDate(0, 0, 1), day.AddDate(0, 3, 0)
}

// ValidDate reports whether raw parses as a calendar date inside the booking
// window.
func ValidDate(raw string, now time.Time) bool {
	d, err := time.ParseInLocation(DateLayout, raw, now.Location())
	if err != nil {
		return false
	}
	min, max := DateWindow(now)
	return !d.Before(min) && !d.After(max)
}
