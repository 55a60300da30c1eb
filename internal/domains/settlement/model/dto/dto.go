package dto

import (
	"lodging/internal/domains/settlement/model"
	"lodging/shared/timezone"
	"time"
)

type RowResponse struct {
	BookingID          string  `json:"booking_id"`
	HostID             string  `json:"host_id"`
	ListingID          string  `json:"listing_id"`
	GuestID            string  `json:"guest_id"`
	CheckIn            string  `json:"check_in"`
	CheckOut           string  `json:"check_out"`
	Nights             int     `json:"nights"`
	BookingStatus      string  `json:"booking_status"`
	PaymentConfirmedAt *string `json:"payment_confirmed_at,omitempty"`
	PaymentReference   *string `json:"payment_reference,omitempty"`
	GrossAmount        int64   `json:"gross_amount"`
	FeeAmount          int64   `json:"fee_amount"`
	AmountPayable      int64   `json:"amount_payable"`
	Currency           string  `json:"currency"`
	ReadyAt            string  `json:"ready_at"`
	Status             string  `json:"status"`
	PaidAt             *string `json:"paid_at,omitempty"`
	PayoutReference    *string `json:"payout_reference,omitempty"`
}

func formatInstant(t *time.Time) *string {
	if t == nil {
		return nil
	}

	formatted := t.UTC().Format(time.RFC3339)

	return &formatted
}

func (r *RowResponse) FromModel(row model.Row) {
	r.BookingID = row.BookingID
	r.HostID = row.HostID
	r.ListingID = row.ListingID
	r.GuestID = row.GuestID
	r.CheckIn = timezone.FormatDate(row.CheckIn)
	r.CheckOut = timezone.FormatDate(row.CheckOut)
	r.Nights = row.Nights
	r.BookingStatus = string(row.BookingStatus)
	r.PaymentConfirmedAt = formatInstant(row.PaymentConfirmedAt)
	r.PaymentReference = row.PaymentReference
	r.GrossAmount = row.GrossAmount
	r.FeeAmount = row.FeeAmount
	r.AmountPayable = row.AmountPayable
	r.Currency = row.Currency
	r.ReadyAt = row.ReadyAt.UTC().Format(time.RFC3339)
	r.Status = string(row.Status)
	r.PaidAt = formatInstant(row.PaidAt)
	r.PayoutReference = row.PayoutReference
}

type CurrencyTotalsResponse struct {
	Currency      string `json:"currency"`
	Gross         int64  `json:"gross"`
	Fee           int64  `json:"fee"`
	PendingAmount int64  `json:"pending_amount"`
	ReadyAmount   int64  `json:"ready_amount"`
	PaidAmount    int64  `json:"paid_amount"`
	PendingCount  int    `json:"pending_count"`
	ReadyCount    int    `json:"ready_count"`
	PaidCount     int    `json:"paid_count"`
}

type HostSummaryResponse struct {
	HostID     string                   `json:"host_id"`
	AsOf       string                   `json:"as_of"`
	Currencies []CurrencyTotalsResponse `json:"currencies"`
}

func (r *HostSummaryResponse) FromModel(summary model.HostSummary) {
	r.HostID = summary.HostID
	r.AsOf = summary.AsOf.UTC().Format(time.RFC3339)
	r.Currencies = make([]CurrencyTotalsResponse, len(summary.Currencies))

	for i, totals := range summary.Currencies {
		r.Currencies[i] = CurrencyTotalsResponse(totals)
	}
}
