package model

import (
	"cmp"
	"fmt"
	"lodging/internal/domains/booking/model"
	"lodging/shared"
	"lodging/shared/timezone"
	"slices"
	"time"
)

const (
	EntityName  = "calendar"
	cachePrefix = "calendar"
)

// CachePrefix covers every cached month of a listing.
func CachePrefix(listingID string) string {
	return shared.BuildCacheKey(cachePrefix, listingID)
}

func CacheKey(listingID string, year int, month time.Month) string {
	return shared.BuildCacheKey(cachePrefix, listingID, fmt.Sprintf("%04d-%02d", year, int(month)))
}

// Day is one night of the month and the booking holding it, if any.
type Day struct {
	Date      time.Time
	BookingID string
	Status    model.Status
}

// Month is the occupancy of one listing over [Start, End).
type Month struct {
	ListingID string
	HostID    string
	Year      int
	Month     time.Month
	Start     time.Time
	End       time.Time
	Bookings  []model.Booking
	Days      []Day
}

// NewMonth builds the month view from bookings overlapping it. Each night goes to an
// occupying booking when there is one, otherwise to the earliest pending hold.
func NewMonth(listingID, hostID string, year int, month time.Month, bookings []model.Booking) Month {
	start, end := timezone.MonthRange(year, month)

	sorted := slices.Clone(bookings)
	slices.SortFunc(sorted, func(a, b model.Booking) int {
		return cmp.Or(a.CheckIn.Compare(b.CheckIn), cmp.Compare(a.ID, b.ID))
	})

	m := Month{
		ListingID: listingID,
		HostID:    hostID,
		Year:      year,
		Month:     month,
		Start:     start,
		End:       end,
		Bookings:  sorted,
		Days:      make([]Day, 0, timezone.DaysBetween(start, end)),
	}

	for date := start; date.Before(end); date = timezone.AddDays(date, 1) {
		day := Day{Date: date}

		for _, booking := range sorted {
			if !booking.Overlaps(date, timezone.AddDays(date, 1)) {
				continue
			}

			if day.BookingID == "" || (booking.Status.Occupies() && !day.Status.Occupies()) {
				day.BookingID = booking.ID
				day.Status = booking.Status
			}
		}

		m.Days = append(m.Days, day)
	}

	return m
}
