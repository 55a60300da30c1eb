// Package timezone separates calendar dates from instants.
//
// A calendar date (check-in, check-out) is a time.Time at 00:00 UTC with no other meaning.
// It becomes an instant only through a Zone:
//
//	checkIn := timezone.Date(2026, time.January, 10)
//	nights := timezone.DaysBetween(checkIn, checkOut)
//	deadline := zone.MidnightUTC(timezone.AddDays(checkIn, -3))
//	today := zone.DateOf(now)
//
// The application zone is read from APP_TIMEZONE when the package is loaded; use IANA
// names such as "UTC", "Asia/Jakarta" or "America/New_York".
package timezone
