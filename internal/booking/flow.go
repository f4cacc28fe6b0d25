// Package booking drives the two-step booking flow: a form step collecting
// the request, and a payment step that dispatches the deposit checkout to the
// external automation endpoint.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/angyaliszalon/salon-api/internal/catalog"
	"github.com/angyaliszalon/salon-api/internal/pricing"
	"github.com/angyaliszalon/salon-api/internal/sheets"
)

var flowTracer = otel.Tracer("salon.internal.booking")

// Step is the state of a booking flow.
type Step string

const (
	StepForm    Step = "form"
	StepPayment Step = "payment"
)

// ErrTermsNotAccepted blocks the form→payment transition until the visitor
// accepts the terms. Nothing is sent to the network while it holds.
var ErrTermsNotAccepted = errors.New("booking: terms must be accepted")

// ValidationError reports a field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "booking: " + e.Field + ": " + e.Message
}

// Request is the booking form state. It is created with defaults, mutated
// field by field, frozen on entering the payment step and submitted once.
type Request struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Service        string `json:"service"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Notes          string `json:"notes"`
	Recurring      bool   `json:"recurring"`
	RecurringType  string `json:"recurringType"`
	RecurringCount int    `json:"recurringCount"`
}

// NewRequest returns an empty form with the default recurrence settings.
func NewRequest() Request {
	return Request{
		RecurringType:  catalog.CadenceWeekly,
		RecurringCount: 4,
	}
}

// Breakdown returns the derived price of the request as currently filled in.
func (r Request) Breakdown() pricing.Breakdown {
	return pricing.Quote(r.Service, r.Recurring, r.RecurringCount)
}

// Summary is the frozen view of a request shown on the payment step.
type Summary struct {
	Request   Request           `json:"request"`
	Breakdown pricing.Breakdown `json:"breakdown"`
}

// CheckoutDispatcher sends a finalized booking to the external automation
// endpoint. *sheets.Client satisfies it.
type CheckoutDispatcher interface {
	CreateCheckout(ctx context.Context, req sheets.CheckoutRequest) (*sheets.CheckoutResult, error)
}

// Flow is the two-state booking controller. A flow is exclusively owned by
// the handler invocation that created it; it is not safe for concurrent use
// and holds no shared state.
type Flow struct {
	step          Step
	req           Request
	acceptedTerms bool
	frozen        *Summary
	now           func() time.Time
}

// NewFlow starts a flow at the form step with default field values.
func NewFlow() *Flow {
	return &Flow{
		step: StepForm,
		req:  NewRequest(),
		now:  time.Now,
	}
}

// WithClock overrides the clock used for date-window validation (tests).
func (f *Flow) WithClock(now func() time.Time) *Flow {
	if now != nil {
		f.now = now
	}
	return f
}

// Step returns the current state.
func (f *Flow) Step() Step { return f.step }

// Request returns the current form values.
func (f *Flow) Request() Request { return f.req }

// Update replaces the form values. Edits are only possible on the form step;
// the payment step works from the frozen summary.
func (f *Flow) Update(req Request) {
	if f.step != StepForm {
		return
	}
	f.req = req
}

// AcceptTerms records whether the visitor accepted the terms.
func (f *Flow) AcceptTerms(accepted bool) {
	f.acceptedTerms = accepted
}

// ContinueToPayment transitions form→payment. The transition is guarded by
// terms acceptance and field validation; on rejection the flow stays on the
// form step with all values intact.
func (f *Flow) ContinueToPayment() error {
	if f.step != StepForm {
		return fmt.Errorf("booking: already on %s step", f.step)
	}
	if !f.acceptedTerms {
		return ErrTermsNotAccepted
	}
	if err := f.validate(); err != nil {
		return err
	}
	f.frozen = &Summary{Request: f.req, Breakdown: f.req.Breakdown()}
	f.step = StepPayment
	return nil
}

// Back returns unconditionally to the form step. All field values survive.
func (f *Flow) Back() {
	f.step = StepForm
	f.frozen = nil
}

// Summary returns the frozen payment-step summary.
func (f *Flow) Summary() (Summary, bool) {
	if f.frozen == nil {
		return Summary{}, false
	}
	return *f.frozen, true
}

// SubmitDeposit dispatches the frozen booking and its deposit through the
// gateway. Success means dispatch succeeded, not that payment completed: the
// visitor finishes payment on the external page and no confirmation flows
// back here. On failure the flow stays on the payment step so the visitor
// can retry.
func (f *Flow) SubmitDeposit(ctx context.Context, gateway CheckoutDispatcher, successURL, cancelURL string) (*sheets.CheckoutResult, error) {
	ctx, span := flowTracer.Start(ctx, "booking.submit_deposit")
	defer span.End()

	if f.step != StepPayment || f.frozen == nil {
		return nil, fmt.Errorf("booking: submit requires the payment step")
	}

	frozen := f.frozen
	result, err := gateway.CreateCheckout(ctx, sheets.CheckoutRequest{
		Name:           frozen.Request.Name,
		Email:          frozen.Request.Email,
		Phone:          frozen.Request.Phone,
		Service:        frozen.Request.Service,
		Date:           frozen.Request.Date,
		Time:           frozen.Request.Time,
		Notes:          frozen.Request.Notes,
		Recurring:      frozen.Request.Recurring,
		RecurringType:  frozen.Request.RecurringType,
		RecurringCount: frozen.Request.RecurringCount,
		Amount:         frozen.Breakdown.Deposit,
		SuccessURL:     successURL,
		CancelURL:      cancelURL,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return result, nil
}

func (f *Flow) validate() error {
	if f.req.Name == "" {
		return &ValidationError{Field: "name", Message: "required"}
	}
	if f.req.Email == "" {
		return &ValidationError{Field: "email", Message: "required"}
	}
	if f.req.Service == "" {
		return &ValidationError{Field: "service", Message: "required"}
	}
	if catalog.UnitPrice(f.req.Service) == 0 {
		return &ValidationError{Field: "service", Message: "unknown service"}
	}
	if f.req.Date == "" {
		return &ValidationError{Field: "date", Message: "required"}
	}
	if !catalog.ValidDate(f.req.Date, f.now()) {
		return &ValidationError{Field: "date", Message: "must be between tomorrow and three months ahead"}
	}
	if f.req.Time == "" {
		return &ValidationError{Field: "time", Message: "required"}
	}
	if !catalog.ValidSlot(f.req.Time) {
		return &ValidationError{Field: "time", Message: "not an offered time slot"}
	}
	if f.req.Recurring {
		if !catalog.ValidCadence(f.req.RecurringType) {
			return &ValidationError{Field: "recurringType", Message: "unknown cadence"}
		}
		if !catalog.ValidRecurrenceCount(f.req.RecurringCount) {
			return &ValidationError{Field: "recurringCount", Message: "not a selectable session count"}
		}
	}
	return nil
}
