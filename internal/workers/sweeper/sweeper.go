package sweeper

import (
	"context"
	"lodging/config"
	"lodging/shared/constant"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultInterval = 5 * time.Minute

// Sweeps is the part of the booking service the sweeper drives.
type Sweeps interface {
	RunExpirySweep(ctx context.Context, holdHours int) (int, error)
	RunCompletionSweep(ctx context.Context) (int, error)
}

type Sweeper struct {
	bookings  Sweeps
	interval  time.Duration
	holdHours int
	enabled   bool
}

func New(bookings Sweeps, cfg *config.Config) *Sweeper {
	interval := time.Duration(cfg.Booking.Sweep.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = defaultInterval
	}

	return &Sweeper{
		bookings:  bookings,
		interval:  interval,
		holdHours: cfg.Booking.Policy.HoldHours,
		enabled:   cfg.Booking.Sweep.Enable,
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	if !s.enabled {
		log.Info().Msg("booking sweeper disabled")

		return nil
	}

	log.Info().Dur("interval", s.interval).Int("hold_hours", s.holdHours).Msg("booking sweeper started")

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("booking sweeper stopped")

			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep bounds one run by the interval so a slow store cannot stack runs.
// Failures are logged and retried on the next tick.
func (s *Sweeper) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	ctx = context.WithValue(ctx, constant.ContextKeyUserID, constant.SystemUser)

	if expired, err := s.bookings.RunExpirySweep(ctx, s.holdHours); err != nil {
		log.Error().Err(err).Msg("expiry sweep failed")
	} else if expired > 0 {
		log.Info().Int("expired", expired).Msg("expired unpaid bookings")
	}

	if completed, err := s.bookings.RunCompletionSweep(ctx); err != nil {
		log.Error().Err(err).Msg("completion sweep failed")
	} else if completed > 0 {
		log.Info().Int("completed", completed).Msg("completed finished stays")
	}
}
