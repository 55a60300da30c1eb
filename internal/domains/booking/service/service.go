package service

import (
	"context"
	"errors"
	"fmt"
	"lodging/config"
	"lodging/infras/kafka"
	"lodging/infras/otel"
	"lodging/internal/domains/booking/model"
	"lodging/internal/domains/booking/model/dto"
	"lodging/internal/domains/booking/policy"
	"lodging/internal/domains/booking/repository"
	calendarModel "lodging/internal/domains/calendar/model"
	listingRepo "lodging/internal/domains/listing/repository"
	"lodging/shared"
	"lodging/shared/cache"
	"lodging/shared/clock"
	"lodging/shared/constant"
	"lodging/shared/failure"
	gModel "lodging/shared/model"
	"lodging/shared/timezone"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking = "booking:get"

	// A lost compare-and-swap is retried once with a fresh read.
	maxTransitionAttempts = 2
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	ConfirmPayment(ctx context.Context, id, paymentRef string) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string, req dto.CancelBookingRequest) (dto.CancellationResponse, error)
	MarkCompleted(ctx context.Context, id string) (dto.BookingResponse, error)
	RunExpirySweep(ctx context.Context, holdHours int) (int, error)
	RunCompletionSweep(ctx context.Context) (int, error)
}

type serviceImpl struct {
	repo         repository.Booking
	listingRepo  listingRepo.Listing
	cancellation policy.Cancellation
	zone         *timezone.Zone
	clock        clock.Clock
	kafka        kafka.Client
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
}

func New(
	repo repository.Booking,
	listingRepo listingRepo.Listing,
	cancellation policy.Cancellation,
	zone *timezone.Zone,
	clk clock.Clock,
	kafka kafka.Client,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:         repo,
		listingRepo:  listingRepo,
		cancellation: cancellation,
		zone:         zone,
		clock:        clk,
		kafka:        kafka,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
	}
}

// now is truncated to the store's timestamp precision so reads compare equal to writes.
func (s *serviceImpl) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Microsecond)
}

func userFrom(ctx context.Context) string {
	if user, _ := ctx.Value(constant.ContextKeyUserID).(string); user != "" {
		return user
	}

	return constant.SystemUser
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	checkIn, checkOut, err := req.Dates()
	if err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	if !checkOut.After(checkIn) {
		return res, model.ErrInvalidDateRange
	}

	if req.PricePerNight <= 0 {
		return res, failure.BadRequestFromString("price per night must be positive") // nolint:wrapcheck
	}

	listing, err := s.listingRepo.FindByID(ctx, req.ListingID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get listing")

		return res, fmt.Errorf("failed to get listing: %w", err)
	}

	if !listing.Bookable() {
		return res, model.ErrNotFound.WithMessage("listing not found") // nolint:wrapcheck
	}

	taken, err := s.repo.FindOverlapping(ctx, listing.ID, checkIn, checkOut, model.OccupyingStatuses...)
	if err != nil {
		log.Error().Err(err).Msg("failed to check listing availability")

		return res, fmt.Errorf("failed to check listing availability: %w", err)
	}

	if len(taken) > 0 {
		return res, model.ErrListingUnavailable
	}

	now := s.now()
	user := userFrom(ctx)

	guestID := req.GuestID
	if guestID == "" {
		guestID = user
	}

	booking := model.Booking{
		ID:            uuid.NewString(),
		ListingID:     listing.ID,
		GuestID:       guestID,
		HostID:        listing.HostID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		PricePerNight: req.PricePerNight,
		Currency:      listing.Currency,
		Status:        model.StatusPendingPayment,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}

	if booking.TotalAmount, err = booking.Total(); err != nil {
		return res, err
	}

	if err = s.repo.Insert(ctx, booking); err != nil {
		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	s.afterChange(ctx, dto.EventCreated, booking)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, model.ErrNotFound
	}

	res.FromModel(booking)

	// Saved inline; afterChange drops the entry inline too.
	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save booking to cache")
	}

	return res, nil
}

func (s *serviceImpl) ConfirmPayment(ctx context.Context, id, paymentRef string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ConfirmPayment")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	by := userFrom(ctx)

	booking, changed, err := s.transition(ctx, id, func(current model.Booking, now time.Time) (*model.Transition, error) {
		switch current.Status {
		case model.StatusConfirmed:
			return nil, nil
		case model.StatusPendingPayment:
			return &model.Transition{To: model.StatusConfirmed, At: now, By: by, PaymentReference: paymentRef}, nil
		default:
			return nil, model.ErrInvalidTransition.WithMessage(fmt.Sprintf("cannot confirm payment of a %s booking", current.Status)) // nolint:wrapcheck
		}
	})
	if err != nil {
		return res, err
	}

	if changed {
		s.afterChange(ctx, dto.EventConfirmed, booking)
	} else {
		log.Info().Str("booking_id", id).Msg("payment already confirmed, ignoring duplicate")
	}

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) Cancel(ctx context.Context, id string, req dto.CancelBookingRequest) (res dto.CancellationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	by := userFrom(ctx)

	reason := req.Reason
	if reason == "" {
		reason = fmt.Sprintf("cancelled by %s", req.Actor)
	}

	booking, _, err := s.transition(ctx, id, func(current model.Booking, now time.Time) (*model.Transition, error) {
		if !s.mayAct(req.Actor, by, current) {
			return nil, model.ErrNotFound
		}

		change := &model.Transition{To: model.StatusCancelled, At: now, By: by, CancelledBy: req.Actor, CancellationReason: reason}

		switch current.Status {
		case model.StatusPendingPayment:
			return change, nil
		case model.StatusConfirmed:
			if !s.zone.DateOf(now).Before(current.CheckOut) {
				return nil, model.ErrInvalidTransition.WithMessage("booking cannot be cancelled after check-out") // nolint:wrapcheck
			}

			change.FeeLiable = !s.cancellation.IsWithinFreeCancellation(now, current.CheckIn, current.CreatedAt)

			return change, nil
		default:
			return nil, model.ErrInvalidTransition.WithMessage(fmt.Sprintf("cannot cancel a %s booking", current.Status)) // nolint:wrapcheck
		}
	})
	if err != nil {
		return res, err
	}

	s.afterChange(ctx, dto.EventCancelled, booking)

	res.FromModel(model.CancellationResult{
		Booking:                  booking,
		FeeLiable:                booking.CancellationFeeLiable,
		FreeCancellationDeadline: s.cancellation.FreeCancellationDeadline(booking.CheckIn, booking.CreatedAt),
	})

	return res, nil
}

// mayAct limits guests and hosts to their own bookings.
func (s *serviceImpl) mayAct(actor model.Actor, user string, booking model.Booking) bool {
	switch actor {
	case model.ActorGuest:
		return booking.GuestID == user
	case model.ActorHost:
		return booking.HostID == user
	case model.ActorSystem:
		return true
	default:
		return false
	}
}

func (s *serviceImpl) MarkCompleted(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".MarkCompleted")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	by := userFrom(ctx)

	booking, _, err := s.transition(ctx, id, func(current model.Booking, now time.Time) (*model.Transition, error) {
		if current.Status != model.StatusConfirmed {
			return nil, model.ErrInvalidTransition.WithMessage(fmt.Sprintf("cannot complete a %s booking", current.Status)) // nolint:wrapcheck
		}

		if s.zone.DateOf(now).Before(current.CheckOut) {
			return nil, model.ErrInvalidTransition.WithMessage("booking cannot be completed before check-out") // nolint:wrapcheck
		}

		return &model.Transition{To: model.StatusCompleted, At: now, By: by}, nil
	})
	if err != nil {
		return res, err
	}

	s.afterChange(ctx, dto.EventCompleted, booking)

	res.FromModel(booking)

	return res, nil
}

// RunExpirySweep cancels unpaid bookings older than holdHours in one guarded statement.
// A booking confirmed concurrently no longer matches the guard and is left alone.
func (s *serviceImpl) RunExpirySweep(ctx context.Context, holdHours int) (count int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RunExpirySweep")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if holdHours <= 0 {
		return 0, failure.BadRequestFromString("hold hours must be positive") // nolint:wrapcheck
	}

	now := s.now()
	cutoff := now.Add(-time.Duration(holdHours) * time.Hour)

	expired, err := s.repo.ExpirePending(ctx, cutoff, model.ExpiryTransition(now))
	if err != nil {
		log.Error().Err(err).Time("cutoff", cutoff).Msg("failed to expire pending bookings")

		return 0, fmt.Errorf("failed to expire pending bookings: %w", err)
	}

	for _, booking := range expired {
		s.afterChange(ctx, dto.EventExpired, booking)
	}

	scope.SetAttribute("booking.expired", len(expired))
	log.Info().Int("count", len(expired)).Time("cutoff", cutoff).Msg("expiry sweep finished")

	return len(expired), nil
}

// RunCompletionSweep completes every confirmed booking whose check-out date has arrived.
// Bookings that change underneath it are skipped; store failures stop the run.
func (s *serviceImpl) RunCompletionSweep(ctx context.Context) (count int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RunCompletionSweep")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	today := s.zone.DateOf(s.now())

	due, err := s.repo.List(ctx, model.ListFilter{Statuses: []model.Status{model.StatusConfirmed}, CheckOutOnOrBefore: today})
	if err != nil {
		log.Error().Err(err).Msg("failed to list bookings due for completion")

		return 0, fmt.Errorf("failed to list bookings due for completion: %w", err)
	}

	for _, booking := range due {
		if _, err = s.MarkCompleted(ctx, booking.ID); err != nil {
			if errors.Is(err, model.ErrInvalidTransition) || errors.Is(err, model.ErrStaleWrite) || errors.Is(err, model.ErrNotFound) {
				log.Warn().Err(err).Str("booking_id", booking.ID).Msg("skipping booking in completion sweep")

				continue
			}

			return count, err
		}

		count++
	}

	log.Info().Int("count", count).Msg("completion sweep finished")

	return count, nil
}

type decideFunc func(current model.Booking, now time.Time) (*model.Transition, error)

// transition runs the read, decide and compare-and-swap cycle. A nil change from decide
// is a no-op success. It reports whether a write happened.
func (s *serviceImpl) transition(ctx context.Context, id string, decide decideFunc) (model.Booking, bool, error) {
	for attempt := 1; ; attempt++ {
		current, err := s.repo.FindLatest(ctx, id)
		if err != nil {
			log.Error().Err(err).Str("booking_id", id).Msg("failed to get booking")

			return model.Booking{}, false, fmt.Errorf("failed to get booking: %w", err)
		}

		if current.ID == constant.Empty {
			return model.Booking{}, false, model.ErrNotFound
		}

		change, err := decide(current, s.now())
		if err != nil || change == nil {
			return current, false, err
		}

		updated, ok, err := s.repo.Transition(ctx, id, current.Status, *change)
		if err != nil {
			if errors.Is(err, model.ErrListingUnavailable) {
				return current, false, err
			}

			log.Error().Err(err).Str("booking_id", id).Msg("failed to update booking status")

			return current, false, fmt.Errorf("failed to update booking status: %w", err)
		}

		if ok {
			return updated, true, nil
		}

		log.Warn().Str("booking_id", id).Int("attempt", attempt).Str("expected", string(current.Status)).Msg("booking changed concurrently")

		if attempt >= maxTransitionAttempts {
			return current, false, model.ErrStaleWrite
		}
	}
}

// afterChange drops cached views of the booking before returning, then publishes the
// lifecycle event in the background.
func (s *serviceImpl) afterChange(ctx context.Context, eventType string, booking model.Booking) {
	occurredAt := booking.ModifiedAt
	c := context.WithoutCancel(ctx)

	if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, booking.ID)); err != nil {
		log.Error().Err(err).Msg("failed to delete booking from cache")
	}

	shared.InvalidateCaches(c, s.cache, calendarModel.CachePrefix(booking.ListingID))

	go func() {
		event := kafka.Message{Key: booking.ID, Value: dto.NewEvent(eventType, booking, occurredAt)}
		if err := s.kafka.SendMessages(c, s.cfg.Kafka.Topics.BookingEvents, event); err != nil {
			log.Error().Err(err).Str("booking_id", booking.ID).Str("event", eventType).Msg("failed to publish booking event")
		}
	}()
}
