package service

import (
	"context"
	"fmt"
	"lodging/config"
	"lodging/infras/otel"
	bookingModel "lodging/internal/domains/booking/model"
	bookingRepository "lodging/internal/domains/booking/repository"
	"lodging/internal/domains/calendar/model"
	"lodging/internal/domains/calendar/model/dto"
	listingRepository "lodging/internal/domains/listing/repository"
	"lodging/shared/cache"
	"lodging/shared/constant"
	"lodging/shared/failure"
	"lodging/shared/timezone"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	minYear = 1
	maxYear = 9999
)

type Calendar interface {
	GetHostCalendar(ctx context.Context, hostID, listingID string, year int, month time.Month) (dto.MonthResponse, error)
}

type serviceImpl struct {
	bookingRepo bookingRepository.Booking
	listingRepo listingRepository.Listing
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
}

func New(
	bookingRepo bookingRepository.Booking,
	listingRepo listingRepository.Listing,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Calendar {
	return &serviceImpl{
		bookingRepo: bookingRepo,
		listingRepo: listingRepo,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
	}
}

// GetHostCalendar returns the month view of a listing owned by hostID.
func (s *serviceImpl) GetHostCalendar(ctx context.Context, hostID, listingID string, year int, month time.Month) (res dto.MonthResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetHostCalendar")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if year < minYear || year > maxYear || month < time.January || month > time.December {
		return res, failure.BadRequestFromString("invalid calendar month") // nolint:wrapcheck
	}

	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get listing")

		return res, fmt.Errorf("failed to get listing: %w", err)
	}

	if listing.ID == constant.Empty || listing.HostID != hostID {
		return res, bookingModel.ErrNotFound.WithMessage("listing not found") // nolint:wrapcheck
	}

	cacheKey := model.CacheKey(listingID, year, month)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for calendar")

		return res, nil
	}

	start, end := timezone.MonthRange(year, month)

	bookings, err := s.bookingRepo.FindOverlapping(ctx, listingID, start, end, bookingModel.CalendarStatuses...)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings for calendar")

		return res, fmt.Errorf("failed to get bookings for calendar: %w", err)
	}

	res.FromModel(model.NewMonth(listing.ID, listing.HostID, year, month, bookings))

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save calendar to cache")
	}

	return res, nil
}
