package service

import (
	"cmp"
	"context"
	"fmt"
	"lodging/config"
	"lodging/infras/otel"
	bookingModel "lodging/internal/domains/booking/model"
	bookingRepository "lodging/internal/domains/booking/repository"
	"lodging/internal/domains/settlement/model"
	"lodging/internal/domains/settlement/model/dto"
	"lodging/internal/domains/settlement/repository"
	"lodging/shared/constant"
	"lodging/shared/timezone"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
)

type Settlement interface {
	ComputeSettlementRows(ctx context.Context, asOf time.Time) ([]dto.RowResponse, error)
	HostSummary(ctx context.Context, hostID string, asOf time.Time) (dto.HostSummaryResponse, error)
}

type serviceImpl struct {
	bookingRepo bookingRepository.Booking
	payoutRepo  repository.Payout
	fee         model.FeePolicy
	zone        *timezone.Zone
	holdHours   int
	otel        otel.Otel
}

// NewFeePolicy builds the configured platform fee.
func NewFeePolicy(cfg *config.Config) model.FeePolicy {
	return model.NewPercentageFeePolicy(cfg.Settlement.FeeBasisPoints, cfg.Settlement.FeeFixedMinor)
}

func New(
	bookingRepo bookingRepository.Booking,
	payoutRepo repository.Payout,
	fee model.FeePolicy,
	zone *timezone.Zone,
	cfg *config.Config,
	otel otel.Otel,
) Settlement {
	return &serviceImpl{
		bookingRepo: bookingRepo,
		payoutRepo:  payoutRepo,
		fee:         fee,
		zone:        zone,
		holdHours:   cfg.Settlement.HoldHours,
		otel:        otel,
	}
}

// ComputeSettlementRows projects every confirmed or completed booking, earliest payout first.
func (s *serviceImpl) ComputeSettlementRows(ctx context.Context, asOf time.Time) (res []dto.RowResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ComputeSettlementRows")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	rows, err := s.rows(ctx, constant.Empty, asOf)
	if err != nil {
		return nil, err
	}

	res = make([]dto.RowResponse, len(rows))
	for i, row := range rows {
		res[i].FromModel(row)
	}

	return res, nil
}

func (s *serviceImpl) HostSummary(ctx context.Context, hostID string, asOf time.Time) (res dto.HostSummaryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".HostSummary")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	rows, err := s.rows(ctx, hostID, asOf)
	if err != nil {
		return res, err
	}

	byCurrency := map[string]*model.CurrencyTotals{}

	for _, row := range rows {
		totals, ok := byCurrency[row.Currency]
		if !ok {
			totals = &model.CurrencyTotals{Currency: row.Currency}
			byCurrency[row.Currency] = totals
		}

		totals.Add(row)
	}

	summary := model.HostSummary{HostID: hostID, AsOf: asOf, Currencies: make([]model.CurrencyTotals, 0, len(byCurrency))}
	for _, totals := range byCurrency {
		summary.Currencies = append(summary.Currencies, *totals)
	}

	slices.SortFunc(summary.Currencies, func(a, b model.CurrencyTotals) int {
		return cmp.Compare(a.Currency, b.Currency)
	})

	res.FromModel(summary)

	return res, nil
}

// readyAt is local midnight of the check-out date plus the settlement hold.
func (s *serviceImpl) readyAt(checkOut time.Time) time.Time {
	return s.zone.MidnightUTC(checkOut).Add(time.Duration(s.holdHours) * time.Hour)
}

func (s *serviceImpl) rows(ctx context.Context, hostID string, asOf time.Time) ([]model.Row, error) {
	bookings, err := s.bookingRepo.List(ctx, bookingModel.ListFilter{Statuses: bookingModel.OccupyingStatuses, HostID: hostID})
	if err != nil {
		log.Error().Err(err).Msg("failed to list settled bookings")

		return nil, fmt.Errorf("failed to list settled bookings: %w", err)
	}

	ids := make([]string, len(bookings))
	for i, booking := range bookings {
		ids[i] = booking.ID
	}

	payouts, err := s.payoutRepo.FindByBookingIDs(ctx, ids)
	if err != nil {
		log.Error().Err(err).Msg("failed to get payouts")

		return nil, fmt.Errorf("failed to get payouts: %w", err)
	}

	paid := make(map[string]*model.Payout, len(payouts))
	for i := range payouts {
		paid[payouts[i].BookingID] = &payouts[i]
	}

	asOf = asOf.UTC()
	rows := make([]model.Row, len(bookings))

	for i, booking := range bookings {
		rows[i] = model.NewRow(booking, s.readyAt(booking.CheckOut), s.fee(booking.TotalAmount, booking.Currency), paid[booking.ID], asOf)
	}

	slices.SortFunc(rows, func(a, b model.Row) int {
		if c := a.ReadyAt.Compare(b.ReadyAt); c != 0 {
			return c
		}

		return cmp.Compare(a.BookingID, b.BookingID)
	})

	return rows, nil
}
