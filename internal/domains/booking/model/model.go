package model

import (
	"lodging/shared/model"
	"math"
	"lodging/shared/timezone"
	"time"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID                    = "id"
	FieldListingID             = "listing_id"
	FieldGuestID               = "guest_id"
	FieldHostID                = "host_id"
	FieldCheckIn               = "check_in"
	FieldCheckOut              = "check_out"
	FieldPricePerNight         = "price_per_night"
	FieldTotalAmount           = "total_amount"
	FieldCurrency              = "currency"
	FieldStatus                = "status"
	FieldPaymentConfirmedAt    = "payment_confirmed_at"
	FieldPaymentReference      = "payment_reference"
	FieldCancelledAt           = "cancelled_at"
	FieldCancelledBy           = "cancelled_by"
	FieldCancellationReason    = "cancellation_reason"
	FieldCancellationFeeLiable = "cancellation_fee_liable"
	FieldCompletedAt           = "completed_at"
	FieldCreatedAt             = "created_at"
	FieldModifiedAt            = "modified_at"
	FieldModifiedBy            = "modified_by"
)

const ReasonPaymentHoldExpired = "payment hold expired"

type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusConfirmed      Status = "CONFIRMED"
	StatusCancelled      Status = "CANCELLED"
	StatusCompleted      Status = "COMPLETED"
)

// Statuses lists every lifecycle status, in graph order.
var Statuses = []Status{StatusPendingPayment, StatusConfirmed, StatusCancelled, StatusCompleted}

// OccupyingStatuses hold a listing's dates exclusively.
var OccupyingStatuses = []Status{StatusConfirmed, StatusCompleted}

// CalendarStatuses are shown on a host calendar.
var CalendarStatuses = []Status{StatusPendingPayment, StatusConfirmed, StatusCompleted}

var transitions = map[Status][]Status{
	StatusPendingPayment: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether the lifecycle graph has an edge from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

func (s Status) Occupies() bool {
	return s == StatusConfirmed || s == StatusCompleted
}

type Actor string

const (
	ActorGuest  Actor = "guest"
	ActorHost   Actor = "host"
	ActorSystem Actor = "system"
)

type Booking struct {
	ID                    string     `db:"id"`
	ListingID             string     `db:"listing_id"`
	GuestID               string     `db:"guest_id"`
	HostID                string     `db:"host_id"`
	CheckIn               time.Time  `db:"check_in"`
	CheckOut              time.Time  `db:"check_out"`
	PricePerNight         int64      `db:"price_per_night"`
	TotalAmount           int64      `db:"total_amount"`
	Currency              string     `db:"currency"`
	Status                Status     `db:"status"`
	PaymentConfirmedAt    *time.Time `db:"payment_confirmed_at"`
	PaymentReference      *string    `db:"payment_reference"`
	CancelledAt           *time.Time `db:"cancelled_at"`
	CancelledBy           *string    `db:"cancelled_by"`
	CancellationReason    *string    `db:"cancellation_reason"`
	CancellationFeeLiable bool       `db:"cancellation_fee_liable"`
	CompletedAt           *time.Time `db:"completed_at"`
	model.Metadata
}

// Nights is the number of nights between check-in and check-out.
func (b Booking) Nights() int {
	return timezone.DaysBetween(b.CheckIn, b.CheckOut)
}

// Total is PricePerNight times Nights, or ErrAmountOutOfRange when that overflows int64.
func (b Booking) Total() (int64, error) {
	nights := int64(b.Nights())
	if nights > 0 && b.PricePerNight > math.MaxInt64/nights {
		return 0, ErrAmountOutOfRange
	}

	return b.PricePerNight * nights, nil
}

// Overlaps uses half-open ranges: [a,b) and [c,d) overlap iff a < d and c < b.
func (b Booking) Overlaps(from, to time.Time) bool {
	return b.CheckIn.Before(to) && from.Before(b.CheckOut)
}

// Transition describes the columns one lifecycle step writes.
type Transition struct {
	To                 Status
	At                 time.Time
	By                 string
	PaymentReference   string
	CancelledBy        Actor
	CancellationReason string
	FeeLiable          bool
}

// Fields returns the column changes of the transition.
func (t Transition) Fields() map[string]any {
	fields := map[string]any{
		FieldStatus:     string(t.To),
		FieldModifiedAt: t.At,
		FieldModifiedBy: t.By,
	}

	switch t.To {
	case StatusConfirmed:
		fields[FieldPaymentConfirmedAt] = t.At
		fields[FieldPaymentReference] = t.PaymentReference
	case StatusCancelled:
		fields[FieldCancelledAt] = t.At
		fields[FieldCancelledBy] = string(t.CancelledBy)
		fields[FieldCancellationReason] = t.CancellationReason
		fields[FieldCancellationFeeLiable] = t.FeeLiable
	case StatusCompleted:
		fields[FieldCompletedAt] = t.At
	}

	return fields
}

// Apply writes the transition onto b.
func (t Transition) Apply(b *Booking) {
	at := t.At

	b.Status = t.To
	b.ModifiedAt = at
	b.ModifiedBy = t.By

	switch t.To {
	case StatusConfirmed:
		ref := t.PaymentReference
		b.PaymentConfirmedAt = &at
		b.PaymentReference = &ref
	case StatusCancelled:
		by := string(t.CancelledBy)
		reason := t.CancellationReason
		b.CancelledAt = &at
		b.CancelledBy = &by
		b.CancellationReason = &reason
		b.CancellationFeeLiable = t.FeeLiable
	case StatusCompleted:
		b.CompletedAt = &at
	}
}

// ExpiryTransition is the change the expiry sweep writes on unpaid bookings.
func ExpiryTransition(now time.Time) Transition {
	return Transition{
		To:                 StatusCancelled,
		At:                 now,
		By:                 string(ActorSystem),
		CancelledBy:        ActorSystem,
		CancellationReason: ReasonPaymentHoldExpired,
	}
}

// ListFilter narrows booking scans. Zero fields do not filter.
type ListFilter struct {
	Statuses           []Status
	HostID             string
	ListingID          string
	CheckOutOnOrBefore time.Time
}

// CancellationResult is the outcome of a cancellation.
type CancellationResult struct {
	Booking                  Booking
	FeeLiable                bool
	FreeCancellationDeadline time.Time
}
