package policy_test

import (
	"lodging/config"
	"lodging/internal/domains/booking/policy"
	"lodging/shared/timezone"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustZone(t *testing.T, name string) *timezone.Zone {
	t.Helper()

	zone, err := timezone.NewZone(name)
	require.NoError(t, err)

	return zone
}

func TestNew(t *testing.T) {
	cfg := &config.Config{}
	cfg.Booking.Policy.CancellationOffsetDays = 5

	cancellation := policy.New(cfg, mustZone(t, "UTC"))

	assert.Equal(t, 5, cancellation.OffsetDays())
	assert.Equal(t,
		time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		cancellation.FreeCancellationDeadline(timezone.Date(2026, 1, 10), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	)
}

func TestFreeCancellationDeadline(t *testing.T) {
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		zone      string
		checkIn   time.Time
		createdAt time.Time
		want      time.Time
	}{
		{
			name:      "utc zone",
			zone:      "UTC",
			checkIn:   timezone.Date(2026, 1, 10),
			createdAt: createdAt,
			want:      time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "east of utc lands on the previous utc day",
			zone:      "Asia/Jakarta",
			checkIn:   timezone.Date(2026, 1, 10),
			createdAt: createdAt,
			want:      time.Date(2026, 1, 6, 17, 0, 0, 0, time.UTC),
		},
		{
			name:      "west of utc across a dst change",
			zone:      "America/New_York",
			checkIn:   timezone.Date(2026, 3, 11),
			createdAt: createdAt,
			want:      time.Date(2026, 3, 8, 5, 0, 0, 0, time.UTC),
		},
		{
			name:      "last minute booking uses creation instant",
			zone:      "UTC",
			checkIn:   timezone.Date(2026, 1, 2),
			createdAt: time.Date(2026, 1, 1, 15, 30, 0, 0, time.UTC),
			want:      time.Date(2026, 1, 1, 15, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := policy.NewCancellation(mustZone(t, tt.zone), 3)

			assert.Equal(t, tt.want, p.FreeCancellationDeadline(tt.checkIn, tt.createdAt))
		})
	}
}

func TestIsWithinFreeCancellation(t *testing.T) {
	p := policy.NewCancellation(mustZone(t, "UTC"), 3)
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	checkIn := timezone.Date(2026, 1, 10)
	deadline := time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)

	assert.True(t, p.IsWithinFreeCancellation(time.Date(2026, 1, 6, 12, 0, 0, 0, time.UTC), checkIn, createdAt))
	assert.True(t, p.IsWithinFreeCancellation(deadline.Add(-time.Nanosecond), checkIn, createdAt))
	assert.False(t, p.IsWithinFreeCancellation(deadline, checkIn, createdAt))
	assert.False(t, p.IsWithinFreeCancellation(time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC), checkIn, createdAt))

	lastMinute := time.Date(2026, 1, 9, 8, 0, 0, 0, time.UTC)
	assert.False(t, p.IsWithinFreeCancellation(lastMinute, checkIn, lastMinute))
}

func TestFreeCancellationDeadline_Monotonic(t *testing.T) {
	for _, name := range []string{"UTC", "Asia/Jakarta", "America/New_York", "Europe/London", "Pacific/Auckland"} {
		t.Run(name, func(t *testing.T) {
			p := policy.NewCancellation(mustZone(t, name), 3)
			createdAt := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)

			previous := time.Time{}
			for checkIn := timezone.Date(2026, 2, 1); checkIn.Before(timezone.Date(2027, 1, 1)); checkIn = checkIn.AddDate(0, 0, 1) {
				deadline := p.FreeCancellationDeadline(checkIn, createdAt)

				assert.False(t, deadline.Before(previous), "deadline for %s went backwards", timezone.FormatDate(checkIn))
				assert.False(t, deadline.Before(createdAt))

				previous = deadline
			}
		})
	}
}
