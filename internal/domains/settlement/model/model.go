package model

import (
	bookingModel "lodging/internal/domains/booking/model"
	"time"
)

const (
	PayoutTableName  = "settlement_payouts"
	PayoutEntityName = "settlement_payout"

	FieldBookingID       = "booking_id"
	FieldPayoutReference = "payout_reference"
	FieldPaidAt          = "paid_at"
)

const basisPointsDenominator = 10000

type Status string

const (
	StatusPending Status = "PENDING"
	StatusReady   Status = "READY"
	StatusPaid    Status = "PAID"
)

// FeePolicy returns the platform fee for a gross amount in minor units.
type FeePolicy func(amount int64, currency string) int64

// NewPercentageFeePolicy charges basisPoints of the amount, rounded half up, plus a fixed fee.
func NewPercentageFeePolicy(basisPoints, fixedMinor int64) FeePolicy {
	return func(amount int64, _ string) int64 {
		return (amount*basisPoints+basisPointsDenominator/2)/basisPointsDenominator + fixedMinor
	}
}

// Payout is written by the payout service once money has left for the host.
type Payout struct {
	BookingID       string    `db:"booking_id"`
	PayoutReference string    `db:"payout_reference"`
	PaidAt          time.Time `db:"paid_at"`
}

// Row is the settlement view of one confirmed or completed booking.
type Row struct {
	BookingID          string
	HostID             string
	ListingID          string
	GuestID            string
	CheckIn            time.Time
	CheckOut           time.Time
	Nights             int
	BookingStatus      bookingModel.Status
	PaymentConfirmedAt *time.Time
	PaymentReference   *string
	GrossAmount        int64
	FeeAmount          int64
	AmountPayable      int64
	Currency           string
	ReadyAt            time.Time
	Status             Status
	PaidAt             *time.Time
	PayoutReference    *string
}

// NewRow projects a booking into its settlement row as of the given instant.
func NewRow(booking bookingModel.Booking, readyAt time.Time, fee int64, payout *Payout, asOf time.Time) Row {
	fee = max(min(fee, booking.TotalAmount), 0)

	row := Row{
		BookingID:          booking.ID,
		HostID:             booking.HostID,
		ListingID:          booking.ListingID,
		GuestID:            booking.GuestID,
		CheckIn:            booking.CheckIn,
		CheckOut:           booking.CheckOut,
		Nights:             booking.Nights(),
		BookingStatus:      booking.Status,
		PaymentConfirmedAt: booking.PaymentConfirmedAt,
		PaymentReference:   booking.PaymentReference,
		GrossAmount:        booking.TotalAmount,
		FeeAmount:          fee,
		AmountPayable:      booking.TotalAmount - fee,
		Currency:           booking.Currency,
		ReadyAt:            readyAt.UTC(),
		Status:             StatusPending,
	}

	switch {
	case payout != nil:
		paidAt := payout.PaidAt.UTC()
		ref := payout.PayoutReference
		row.Status = StatusPaid
		row.PaidAt = &paidAt
		row.PayoutReference = &ref
	case !asOf.Before(row.ReadyAt):
		row.Status = StatusReady
	}

	return row
}

// CurrencyTotals sums a host's payable amounts in one currency.
type CurrencyTotals struct {
	Currency      string
	Gross         int64
	Fee           int64
	PendingAmount int64
	ReadyAmount   int64
	PaidAmount    int64
	PendingCount  int
	ReadyCount    int
	PaidCount     int
}

// Add folds a row into the totals.
func (c *CurrencyTotals) Add(row Row) {
	c.Gross += row.GrossAmount
	c.Fee += row.FeeAmount

	switch row.Status {
	case StatusPending:
		c.PendingAmount += row.AmountPayable
		c.PendingCount++
	case StatusReady:
		c.ReadyAmount += row.AmountPayable
		c.ReadyCount++
	case StatusPaid:
		c.PaidAmount += row.AmountPayable
		c.PaidCount++
	}
}

type HostSummary struct {
	HostID     string
	AsOf       time.Time
	Currencies []CurrencyTotals
}
