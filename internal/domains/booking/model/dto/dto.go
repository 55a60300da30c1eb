package dto

import (
	"lodging/internal/domains/booking/model"
	gDto "lodging/shared/dto"
	"lodging/shared/timezone"
	"time"
)

type CreateBookingRequest struct {
	ListingID     string `json:"listing_id"      validate:"required"`
	GuestID       string `json:"-"`
	CheckIn       string `json:"check_in"        validate:"required,date"`
	CheckOut      string `json:"check_out"       validate:"required,date"`
	PricePerNight int64  `json:"price_per_night" validate:"required,gt=0"`
}

// Dates parses the stay window.
func (c *CreateBookingRequest) Dates() (checkIn, checkOut time.Time, err error) {
	checkIn, err = timezone.ParseDate(c.CheckIn)
	if err != nil {
		return checkIn, checkOut, err //nolint:wrapcheck
	}

	checkOut, err = timezone.ParseDate(c.CheckOut)

	return checkIn, checkOut, err //nolint:wrapcheck
}

type ConfirmPaymentRequest struct {
	PaymentReference string `json:"payment_reference" validate:"required,max=128"`
}

type CancelBookingRequest struct {
	Actor  model.Actor `json:"-"`
	Reason string      `json:"reason" validate:"omitempty,max=500"`
}

type BookingResponse struct {
	ID                    string  `json:"id"`
	ListingID             string  `json:"listing_id"`
	GuestID               string  `json:"guest_id"`
	HostID                string  `json:"host_id"`
	CheckIn               string  `json:"check_in"`
	CheckOut              string  `json:"check_out"`
	Nights                int     `json:"nights"`
	PricePerNight         int64   `json:"price_per_night"`
	TotalAmount           int64   `json:"total_amount"`
	Currency              string  `json:"currency"`
	Status                string  `json:"status"`
	PaymentConfirmedAt    *string `json:"payment_confirmed_at,omitempty"`
	PaymentReference      *string `json:"payment_reference,omitempty"`
	CancelledAt           *string `json:"cancelled_at,omitempty"`
	CancelledBy           *string `json:"cancelled_by,omitempty"`
	CancellationReason    *string `json:"cancellation_reason,omitempty"`
	CancellationFeeLiable bool    `json:"cancellation_fee_liable"`
	CompletedAt           *string `json:"completed_at,omitempty"`
	gDto.Metadata
}

func formatInstant(t *time.Time) *string {
	if t == nil {
		return nil
	}

	formatted := t.UTC().Format(time.RFC3339)

	return &formatted
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.ListingID = model.ListingID
	r.GuestID = model.GuestID
	r.HostID = model.HostID
	r.CheckIn = timezone.FormatDate(model.CheckIn)
	r.CheckOut = timezone.FormatDate(model.CheckOut)
	r.Nights = model.Nights()
	r.PricePerNight = model.PricePerNight
	r.TotalAmount = model.TotalAmount
	r.Currency = model.Currency
	r.Status = string(model.Status)
	r.PaymentConfirmedAt = formatInstant(model.PaymentConfirmedAt)
	r.PaymentReference = model.PaymentReference
	r.CancelledAt = formatInstant(model.CancelledAt)
	r.CancelledBy = model.CancelledBy
	r.CancellationReason = model.CancellationReason
	r.CancellationFeeLiable = model.CancellationFeeLiable
	r.CompletedAt = formatInstant(model.CompletedAt)
	r.Metadata.FromModel(model.Metadata)
}

type CancellationResponse struct {
	Booking                  BookingResponse `json:"booking"`
	FeeLiable                bool            `json:"fee_liable"`
	FreeCancellationDeadline string          `json:"free_cancellation_deadline"`
}

func (r *CancellationResponse) FromModel(result model.CancellationResult) {
	r.Booking.FromModel(result.Booking)
	r.FeeLiable = result.FeeLiable
	r.FreeCancellationDeadline = result.FreeCancellationDeadline.UTC().Format(time.RFC3339)
}

// Event is published to the booking events topic after every lifecycle change.
type Event struct {
	Type       string `json:"type"`
	BookingID  string `json:"booking_id"`
	ListingID  string `json:"listing_id"`
	GuestID    string `json:"guest_id"`
	HostID     string `json:"host_id"`
	Status     string `json:"status"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	OccurredAt string `json:"occurred_at"`
}

const (
	EventCreated   = "booking.created"
	EventConfirmed = "booking.confirmed"
	EventCancelled = "booking.cancelled"
	EventExpired   = "booking.expired"
	EventCompleted = "booking.completed"
)

func NewEvent(eventType string, booking model.Booking, at time.Time) Event {
	return Event{
		Type:       eventType,
		BookingID:  booking.ID,
		ListingID:  booking.ListingID,
		GuestID:    booking.GuestID,
		HostID:     booking.HostID,
		Status:     string(booking.Status),
		CheckIn:    timezone.FormatDate(booking.CheckIn),
		CheckOut:   timezone.FormatDate(booking.CheckOut),
		OccurredAt: at.UTC().Format(time.RFC3339),
	}
}

// PaymentConfirmed is the payload consumed from the payment topic.
type PaymentConfirmed struct {
	BookingID        string `json:"booking_id"        validate:"required"`
	PaymentReference string `json:"payment_reference" validate:"required"`
}
