package timezone

import (
	"fmt"
	"lodging/config"
	"time"
	_ "time/tzdata" // zone database for minimal images

	"github.com/rs/zerolog/log"
)

const (
	DateLayout = "2006-01-02"
	hoursInDay = 24
)

var (
	appZone *Zone
)

func init() {
	cfg := config.Get()

	if cfg.App.Timezone == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")
		cfg.App.Timezone = "UTC"
	}

	zone, err := NewZone(cfg.App.Timezone)
	if err != nil {
		log.Error().
			Err(err).
			Str("timezone", cfg.App.Timezone).
			Msg("Failed to load timezone, falling back to UTC. Please use standard timezone names like 'Asia/Jakarta', 'UTC', 'America/New_York'")
		appZone = &Zone{loc: time.UTC}

		return
	}

	appZone = zone
	log.Info().
		Str("timezone", cfg.App.Timezone).
		Str("location", zone.loc.String()).
		Msg("Application timezone initialized")
}

// Zone is the canonical local calendar used to turn calendar dates into instants.
// Booking deadlines and settlement readiness are anchored here, never in the requester's zone.
type Zone struct {
	loc *time.Location
}

// NewZone loads an IANA zone by name.
func NewZone(name string) (*Zone, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load location %q: %w", name, err)
	}

	return &Zone{loc: loc}, nil
}

// Location returns the zone's location.
func (z *Zone) Location() *time.Location {
	return z.loc
}

// MidnightUTC returns 00:00 local time of the given calendar date, as a UTC instant.
// On days where local midnight does not exist the instant is normalized forward.
func (z *Zone) MidnightUTC(date time.Time) time.Time {
	y, m, d := date.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, z.loc).UTC()
}

// DateOf returns the local calendar date the instant falls on.
func (z *Zone) DateOf(instant time.Time) time.Time {
	y, m, d := instant.In(z.loc).Date()

	return Date(y, m, d)
}

// Date builds a calendar date value. Dates are carried as 00:00 UTC with no zone meaning.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ToDate drops the time component of t, keeping its own year, month and day.
func ToDate(t time.Time) time.Time {
	y, m, d := t.Date()

	return Date(y, m, d)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}

	return t, nil
}

// FormatDate formats a calendar date as YYYY-MM-DD.
func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

// AddDays moves a calendar date by n days.
func AddDays(date time.Time, n int) time.Time {
	return ToDate(date).AddDate(0, 0, n)
}

// DaysBetween returns the whole number of calendar days from one date to another.
func DaysBetween(from, to time.Time) int {
	return int(ToDate(to).Sub(ToDate(from)).Hours() / hoursInDay)
}

// MonthRange returns the half-open date range [first of month, first of next month).
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := Date(year, month, 1)

	return start, start.AddDate(0, 1, 0)
}

// Default returns the application zone.
func Default() *Zone {
	if appZone == nil {
		log.Warn().Msg("Timezone not initialized, using UTC")

		return &Zone{loc: time.UTC}
	}

	return appZone
}
