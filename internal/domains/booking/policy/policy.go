// Package policy holds the free-cancellation rule. Deadlines are anchored on the
// canonical zone's calendar, not on the zone of whoever is asking.
package policy

import (
	"lodging/config"
	"lodging/shared/timezone"
	"time"
)

type Cancellation struct {
	zone       *timezone.Zone
	offsetDays int
}

func NewCancellation(zone *timezone.Zone, offsetDays int) Cancellation {
	return Cancellation{zone: zone, offsetDays: offsetDays}
}

// New reads the offset from configuration.
func New(cfg *config.Config, zone *timezone.Zone) Cancellation {
	return NewCancellation(zone, cfg.Booking.Policy.CancellationOffsetDays)
}

// FreeCancellationDeadline is 00:00 local of checkIn minus the offset, in UTC. Bookings
// made after that instant get no free window: the deadline is their creation instant.
func (p Cancellation) FreeCancellationDeadline(checkIn, createdAt time.Time) time.Time {
	deadline := p.zone.MidnightUTC(timezone.AddDays(checkIn, -p.offsetDays))

	if createdAt = createdAt.UTC(); deadline.Before(createdAt) {
		return createdAt
	}

	return deadline
}

// IsWithinFreeCancellation reports whether now is strictly before the deadline.
func (p Cancellation) IsWithinFreeCancellation(now, checkIn, createdAt time.Time) bool {
	return now.Before(p.FreeCancellationDeadline(checkIn, createdAt))
}

func (p Cancellation) OffsetDays() int {
	return p.offsetDays
}
