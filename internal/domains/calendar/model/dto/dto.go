package dto

import (
	bookingDto "lodging/internal/domains/booking/model/dto"
	"lodging/internal/domains/calendar/model"
	"lodging/shared/timezone"
)

const DayStatusAvailable = "AVAILABLE"

type DayResponse struct {
	Date      string `json:"date"`
	BookingID string `json:"booking_id,omitempty"`
	Status    string `json:"status"`
}

type MonthResponse struct {
	ListingID string                       `json:"listing_id"`
	HostID    string                       `json:"host_id"`
	Year      int                          `json:"year"`
	Month     int                          `json:"month"`
	Start     string                       `json:"start"`
	End       string                       `json:"end"`
	Bookings  []bookingDto.BookingResponse `json:"bookings"`
	Days      []DayResponse                `json:"days"`
}

func (r *MonthResponse) FromModel(month model.Month) {
	r.ListingID = month.ListingID
	r.HostID = month.HostID
	r.Year = month.Year
	r.Month = int(month.Month)
	r.Start = timezone.FormatDate(month.Start)
	r.End = timezone.FormatDate(month.End)

	r.Bookings = make([]bookingDto.BookingResponse, len(month.Bookings))
	for i, booking := range month.Bookings {
		r.Bookings[i].FromModel(booking)
	}

	r.Days = make([]DayResponse, len(month.Days))
	for i, day := range month.Days {
		r.Days[i] = DayResponse{Date: timezone.FormatDate(day.Date), BookingID: day.BookingID, Status: DayStatusAvailable}

		if day.BookingID != "" {
			r.Days[i].Status = string(day.Status)
		}
	}
}
