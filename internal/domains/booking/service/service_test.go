package service_test

import (
	"context"
	"errors"
	"lodging/config"
	"lodging/infras/kafka"
	kafkaMocks "lodging/infras/kafka/mocks"
	"lodging/infras/otel/mocks"
	bookingMocks "lodging/internal/domains/booking/mocks"
	"lodging/internal/domains/booking/model"
	"lodging/internal/domains/booking/model/dto"
	"lodging/internal/domains/booking/policy"
	"lodging/internal/domains/booking/repository"
	"lodging/internal/domains/booking/service"
	listingModel "lodging/internal/domains/listing/model"
	listingRepo "lodging/internal/domains/listing/repository"
	"lodging/shared/cache"
	cacheMocks "lodging/shared/cache/mocks"
	"lodging/shared/clock"
	"lodging/shared/constant"
	"lodging/shared/failure"
	gModel "lodging/shared/model"
	"lodging/shared/timezone"
	"math"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	hostID    = "host-1"
	guestID   = "guest-1"
	listingID = "listing-1"
	eventsTop = "booking.events"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Cache.TTL = 60
	cfg.Kafka.Topics.BookingEvents = eventsTop

	return cfg
}

func utcZone(t *testing.T) *timezone.Zone {
	t.Helper()

	zone, err := timezone.NewZone("UTC")
	require.NoError(t, err)

	return zone
}

func listings() *listingRepo.Memory {
	return listingRepo.NewMemory(
		listingModel.Listing{ID: listingID, HostID: hostID, Currency: "IDR", Status: listingModel.StatusApproved, Active: true},
		listingModel.Listing{ID: "listing-draft", HostID: hostID, Currency: "IDR", Status: listingModel.StatusDraft, Active: true},
		listingModel.Listing{ID: "listing-inactive", HostID: hostID, Currency: "IDR", Status: listingModel.StatusApproved},
	)
}

// quietSideEffects lets the asynchronous cache and event calls through.
func quietSideEffects(ctrl *gomock.Controller) (*cacheMocks.MockRedisCache, *kafkaMocks.MockClient) {
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil).AnyTimes()
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	mockKafka := kafkaMocks.NewMockClient(ctrl)
	mockKafka.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return mockCache, mockKafka
}

func newService(t *testing.T, repo repository.Booking, clk clock.Clock) service.Booking {
	t.Helper()

	svc, _ := newTracedService(t, repo, clk)

	return svc
}

// newTracedService also returns the recorder the service opens its spans on.
func newTracedService(t *testing.T, repo repository.Booking, clk clock.Clock) (service.Booking, *mocks.Otel) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockCache, mockKafka := quietSideEffects(ctrl)
	zone := utcZone(t)
	ot := mocks.NewOtel()

	return service.New(repo, listings(), policy.NewCancellation(zone, 3), zone, clk, mockKafka, testConfig(), mockCache, ot), ot
}

func asUser(user string) context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, user)
}

func seed(id string, status model.Status, checkIn, checkOut time.Time, createdAt time.Time) model.Booking {
	return model.Booking{
		ID:            id,
		ListingID:     listingID,
		GuestID:       guestID,
		HostID:        hostID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		PricePerNight: 500000,
		TotalAmount:   500000 * int64(timezone.DaysBetween(checkIn, checkOut)),
		Currency:      "IDR",
		Status:        status,
		Metadata:      gModel.Metadata{CreatedAt: createdAt, ModifiedAt: createdAt},
	}
}

func TestBookingService_Create(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	jan10, jan12, jan13 := timezone.Date(2026, 1, 10), timezone.Date(2026, 1, 12), timezone.Date(2026, 1, 13)

	tests := []struct {
		name     string
		existing []model.Booking
		req      dto.CreateBookingRequest
		wantErr  error
		wantCode int
	}{
		{
			name: "success",
			req:  dto.CreateBookingRequest{ListingID: listingID, CheckIn: "2026-01-10", CheckOut: "2026-01-12", PricePerNight: 500000},
		},
		{
			name:     "check-out equal to check-in",
			req:      dto.CreateBookingRequest{ListingID: listingID, CheckIn: "2026-01-10", CheckOut: "2026-01-10", PricePerNight: 500000},
			wantErr:  model.ErrInvalidDateRange,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "check-out before check-in",
			req:      dto.CreateBookingRequest{ListingID: listingID, CheckIn: "2026-01-12", CheckOut: "2026-01-10", PricePerNight: 500000},
			wantErr:  model.ErrInvalidDateRange,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed date",
			req:      dto.CreateBookingRequest{ListingID: listingID, CheckIn: "10-01-2026", CheckOut: "2026-01-12", PricePerNight: 500000},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "non-positive price",
			req:      dto.CreateBookingRequest{ListingID: listingID, CheckIn: "2026-01-10", CheckOut: "2026-01-12"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "total overflows",
			req:      dto.CreateBookingRequest{ListingID: listingID, CheckIn: "2026-01-10", CheckOut: "2026-01-12", PricePerNight: math.MaxInt64/2 + 1},
			wantErr:  model.ErrAmountOutOfRange,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown listing",
			req:      dto.CreateBookingRequest{ListingID: "missing", CheckIn: "2026-01-10", CheckOut: "2026-01-12", PricePerNight: 500000},
			wantErr:  model.ErrNotFound,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "draft listing",
			req:      dto.CreateBookingRequest{ListingID: "listing-draft", CheckIn: "2026-01-10", CheckOut: "2026-01-12", PricePerNight: 500000},
			wantErr:  model.ErrNotFound,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "inactive listing",
			req:      dto.CreateBookingRequest{ListingID: "listing-inactive", CheckIn: "2026-01-10", CheckOut: "2026-01-12", PricePerNight: 500000},
			wantErr:  model.ErrNotFound,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "overlaps a confirmed booking",
			existing: []model.Booking{seed("b-0", model.StatusConfirmed, jan10, jan12, now)},
			req:      dto.CreateBookingRequest{ListingID: listingID, CheckIn: "2026-01-11", CheckOut: "2026-01-13", PricePerNight: 500000},
			wantErr:  model.ErrListingUnavailable,
			wantCode: http.StatusConflict,
		},
		{
			name:     "overlaps only a pending booking",
			existing: []model.Booking{seed("b-0", model.StatusPendingPayment, jan10, jan12, now)},
			req:      dto.CreateBookingRequest{ListingID: listingID, CheckIn: "2026-01-11", CheckOut: "2026-01-13", PricePerNight: 500000},
		},
		{
			name:     "back to back with a confirmed booking",
			existing: []model.Booking{seed("b-0", model.StatusConfirmed, jan10, jan12, now)},
			req:      dto.CreateBookingRequest{ListingID: listingID, CheckIn: "2026-01-12", CheckOut: "2026-01-13", PricePerNight: 500000},
		},
		{
			name:     "overlaps a cancelled booking",
			existing: []model.Booking{seed("b-0", model.StatusCancelled, jan10, jan13, now)},
			req:      dto.CreateBookingRequest{ListingID: listingID, CheckIn: "2026-01-10", CheckOut: "2026-01-12", PricePerNight: 500000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := repository.NewMemory(tt.existing...)
			svc, ot := newTracedService(t, store, clock.NewFake(now))

			res, err := svc.Create(asUser(guestID), tt.req)

			scopes := ot.Scopes("service.Create")
			require.Len(t, scopes, 1)
			assert.True(t, scopes[0].Ended())

			if tt.wantCode != 0 {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}

				traced := scopes[0].Errors()
				require.Len(t, traced, 1)
				assert.Equal(t, err, traced[0])

				return
			}

			assert.NoError(t, err)
			assert.Empty(t, scopes[0].Errors())
			assert.NotEmpty(t, res.ID)
			assert.Equal(t, string(model.StatusPendingPayment), res.Status)
			assert.Equal(t, guestID, res.GuestID)
			assert.Equal(t, hostID, res.HostID)
			assert.Equal(t, "IDR", res.Currency)
			assert.Equal(t, tt.req.PricePerNight*int64(res.Nights), res.TotalAmount)

			stored, err := store.FindByID(context.Background(), res.ID)
			require.NoError(t, err)
			assert.Equal(t, now, stored.CreatedAt)
		})
	}
}

func TestBookingService_ConfirmPayment(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	jan10, jan12 := timezone.Date(2026, 1, 10), timezone.Date(2026, 1, 12)

	t.Run("confirms a pending booking", func(t *testing.T) {
		store := repository.NewMemory(seed("b-1", model.StatusPendingPayment, jan10, jan12, now))
		svc := newService(t, store, clock.NewFake(now.Add(time.Hour)))

		res, err := svc.ConfirmPayment(context.Background(), "b-1", "pay-1")

		require.NoError(t, err)
		assert.Equal(t, string(model.StatusConfirmed), res.Status)
		require.NotNil(t, res.PaymentReference)
		assert.Equal(t, "pay-1", *res.PaymentReference)
		require.NotNil(t, res.PaymentConfirmedAt)
		assert.Equal(t, "2026-01-01T10:00:00Z", *res.PaymentConfirmedAt)
	})

	t.Run("duplicate confirmation is a no-op", func(t *testing.T) {
		store := repository.NewMemory(seed("b-1", model.StatusPendingPayment, jan10, jan12, now))
		clk := clock.NewFake(now.Add(time.Hour))
		svc := newService(t, store, clk)

		first, err := svc.ConfirmPayment(context.Background(), "b-1", "pay-1")
		require.NoError(t, err)

		clk.Advance(time.Hour)

		second, err := svc.ConfirmPayment(context.Background(), "b-1", "pay-2")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, "pay-1", *second.PaymentReference)
	})

	t.Run("cancelled booking cannot be confirmed", func(t *testing.T) {
		store := repository.NewMemory(seed("b-1", model.StatusCancelled, jan10, jan12, now))
		svc := newService(t, store, clock.NewFake(now))

		_, err := svc.ConfirmPayment(context.Background(), "b-1", "pay-1")

		assert.ErrorIs(t, err, model.ErrInvalidTransition)
	})

	t.Run("unknown booking", func(t *testing.T) {
		svc := newService(t, repository.NewMemory(), clock.NewFake(now))

		_, err := svc.ConfirmPayment(context.Background(), "missing", "pay-1")

		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("dates taken since the booking was created", func(t *testing.T) {
		store := repository.NewMemory(
			seed("b-1", model.StatusPendingPayment, jan10, jan12, now),
			seed("b-2", model.StatusConfirmed, timezone.Date(2026, 1, 11), timezone.Date(2026, 1, 14), now),
		)
		svc := newService(t, store, clock.NewFake(now))

		_, err := svc.ConfirmPayment(context.Background(), "b-1", "pay-1")

		assert.ErrorIs(t, err, model.ErrListingUnavailable)

		stored, _ := store.FindByID(context.Background(), "b-1")
		assert.Equal(t, model.StatusPendingPayment, stored.Status)
	})
}

func TestBookingService_ConfirmPayment_ConcurrentOverlapping(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	pending := []model.Booking{}
	for _, id := range []string{"b-1", "b-2", "b-3", "b-4", "b-5"} {
		pending = append(pending, seed(id, model.StatusPendingPayment, timezone.Date(2026, 1, 10), timezone.Date(2026, 1, 12), now))
	}

	store := repository.NewMemory(pending...)
	svc := newService(t, store, clock.NewFake(now))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		confirmed int
	)

	for _, booking := range pending {
		wg.Add(1)

		go func(id string) {
			defer wg.Done()

			_, err := svc.ConfirmPayment(context.Background(), id, "pay-"+id)
			if err == nil {
				mu.Lock()
				confirmed++
				mu.Unlock()

				return
			}

			assert.ErrorIs(t, err, model.ErrListingUnavailable)
		}(booking.ID)
	}

	wg.Wait()

	assert.Equal(t, 1, confirmed)

	occupied, err := store.FindOverlapping(context.Background(), listingID, timezone.Date(2026, 1, 10), timezone.Date(2026, 1, 12), model.OccupyingStatuses...)
	require.NoError(t, err)
	assert.Len(t, occupied, 1)
}

// racingStore runs a competing write right before the first compare-and-swap.
type racingStore struct {
	*repository.Memory
	once    sync.Once
	compete func(store *repository.Memory)
}

func (r *racingStore) Transition(ctx context.Context, id string, from model.Status, change model.Transition) (model.Booking, bool, error) {
	r.once.Do(func() { r.compete(r.Memory) })

	return r.Memory.Transition(ctx, id, from, change)
}

func TestBookingService_ConfirmPayment_LosesToExpiry(t *testing.T) {
	created := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	now := created.Add(25 * time.Hour)

	store := &racingStore{
		Memory: repository.NewMemory(seed("b-1", model.StatusPendingPayment, timezone.Date(2026, 1, 10), timezone.Date(2026, 1, 12), created)),
		compete: func(store *repository.Memory) {
			_, _ = store.ExpirePending(context.Background(), now.Add(-24*time.Hour), model.ExpiryTransition(now))
		},
	}
	svc := newService(t, store, clock.NewFake(now))

	_, err := svc.ConfirmPayment(context.Background(), "b-1", "pay-1")

	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	stored, _ := store.FindByID(context.Background(), "b-1")
	assert.Equal(t, model.StatusCancelled, stored.Status)
	assert.Nil(t, stored.PaymentReference)
}

func TestBookingService_RunExpirySweep(t *testing.T) {
	created := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	store := repository.NewMemory(
		seed("b-1", model.StatusPendingPayment, timezone.Date(2026, 1, 10), timezone.Date(2026, 1, 12), created),
		seed("b-2", model.StatusConfirmed, timezone.Date(2026, 1, 12), timezone.Date(2026, 1, 14), created),
	)
	clk := clock.NewFake(created.Add(23 * time.Hour))
	svc := newService(t, store, clk)

	count, err := svc.RunExpirySweep(context.Background(), 24)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	clk.Set(created.Add(24 * time.Hour))

	count, err = svc.RunExpirySweep(context.Background(), 24)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "a booking exactly at the hold boundary is kept")

	clk.Set(created.Add(25 * time.Hour))

	count, err = svc.RunExpirySweep(context.Background(), 24)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	expired, _ := store.FindByID(context.Background(), "b-1")
	assert.Equal(t, model.StatusCancelled, expired.Status)
	require.NotNil(t, expired.CancellationReason)
	assert.Equal(t, model.ReasonPaymentHoldExpired, *expired.CancellationReason)
	require.NotNil(t, expired.CancelledBy)
	assert.Equal(t, string(model.ActorSystem), *expired.CancelledBy)
	assert.False(t, expired.CancellationFeeLiable)

	confirmed, _ := store.FindByID(context.Background(), "b-2")
	assert.Equal(t, model.StatusConfirmed, confirmed.Status)

	count, err = svc.RunExpirySweep(context.Background(), 24)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = svc.RunExpirySweep(context.Background(), 0)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestBookingService_Cancel(t *testing.T) {
	created := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	jan10, jan12 := timezone.Date(2026, 1, 10), timezone.Date(2026, 1, 12)

	tests := []struct {
		name          string
		status        model.Status
		now           time.Time
		user          string
		actor         model.Actor
		wantErr       error
		wantFeeLiable bool
	}{
		{
			name:   "pending booking is never fee liable",
			status: model.StatusPendingPayment,
			now:    time.Date(2026, 1, 9, 9, 0, 0, 0, time.UTC),
			user:   guestID,
			actor:  model.ActorGuest,
		},
		{
			name:   "confirmed booking before the deadline",
			status: model.StatusConfirmed,
			now:    time.Date(2026, 1, 6, 12, 0, 0, 0, time.UTC),
			user:   guestID,
			actor:  model.ActorGuest,
		},
		{
			name:          "confirmed booking at the deadline",
			status:        model.StatusConfirmed,
			now:           time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC),
			user:          guestID,
			actor:         model.ActorGuest,
			wantFeeLiable: true,
		},
		{
			name:          "confirmed booking after the deadline",
			status:        model.StatusConfirmed,
			now:           time.Date(2026, 1, 8, 9, 0, 0, 0, time.UTC),
			user:          guestID,
			actor:         model.ActorGuest,
			wantFeeLiable: true,
		},
		{
			name:          "host cancels during the stay",
			status:        model.StatusConfirmed,
			now:           time.Date(2026, 1, 11, 9, 0, 0, 0, time.UTC),
			user:          hostID,
			actor:         model.ActorHost,
			wantFeeLiable: true,
		},
		{
			name:    "confirmed booking on the check-out date",
			status:  model.StatusConfirmed,
			now:     time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC),
			user:    guestID,
			actor:   model.ActorGuest,
			wantErr: model.ErrInvalidTransition,
		},
		{
			name:    "already cancelled",
			status:  model.StatusCancelled,
			now:     time.Date(2026, 1, 6, 12, 0, 0, 0, time.UTC),
			user:    guestID,
			actor:   model.ActorGuest,
			wantErr: model.ErrInvalidTransition,
		},
		{
			name:    "completed booking",
			status:  model.StatusCompleted,
			now:     time.Date(2026, 1, 13, 12, 0, 0, 0, time.UTC),
			user:    guestID,
			actor:   model.ActorGuest,
			wantErr: model.ErrInvalidTransition,
		},
		{
			name:    "someone else's booking",
			status:  model.StatusConfirmed,
			now:     time.Date(2026, 1, 6, 12, 0, 0, 0, time.UTC),
			user:    "guest-2",
			actor:   model.ActorGuest,
			wantErr: model.ErrNotFound,
		},
		{
			name:    "guest acting as host",
			status:  model.StatusConfirmed,
			now:     time.Date(2026, 1, 6, 12, 0, 0, 0, time.UTC),
			user:    guestID,
			actor:   model.ActorHost,
			wantErr: model.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := repository.NewMemory(seed("b-1", tt.status, jan10, jan12, created))
			svc := newService(t, store, clock.NewFake(tt.now))

			res, err := svc.Cancel(asUser(tt.user), "b-1", dto.CancelBookingRequest{Actor: tt.actor})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				stored, _ := store.FindByID(context.Background(), "b-1")
				assert.Equal(t, tt.status, stored.Status)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantFeeLiable, res.FeeLiable)
			assert.Equal(t, tt.wantFeeLiable, res.Booking.CancellationFeeLiable)
			assert.Equal(t, string(model.StatusCancelled), res.Booking.Status)
			assert.Equal(t, "2026-01-07T00:00:00Z", res.FreeCancellationDeadline)
			require.NotNil(t, res.Booking.CancelledBy)
			assert.Equal(t, string(tt.actor), *res.Booking.CancelledBy)
			assert.Equal(t, "cancelled by "+string(tt.actor), *res.Booking.CancellationReason)
		})
	}
}

func TestBookingService_Cancel_LastMinuteBooking(t *testing.T) {
	created := time.Date(2026, 1, 9, 15, 0, 0, 0, time.UTC)
	store := repository.NewMemory(seed("b-1", model.StatusConfirmed, timezone.Date(2026, 1, 10), timezone.Date(2026, 1, 12), created))
	svc := newService(t, store, clock.NewFake(created.Add(time.Hour)))

	res, err := svc.Cancel(asUser(guestID), "b-1", dto.CancelBookingRequest{Actor: model.ActorGuest, Reason: "change of plans"})

	require.NoError(t, err)
	assert.True(t, res.FeeLiable)
	assert.Equal(t, "2026-01-09T15:00:00Z", res.FreeCancellationDeadline)
	assert.Equal(t, "change of plans", *res.Booking.CancellationReason)
}

func TestBookingService_MarkCompleted(t *testing.T) {
	created := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	jan10, jan12 := timezone.Date(2026, 1, 10), timezone.Date(2026, 1, 12)

	store := repository.NewMemory(
		seed("b-1", model.StatusConfirmed, jan10, jan12, created),
		seed("b-2", model.StatusPendingPayment, jan10, jan12, created),
	)
	clk := clock.NewFake(time.Date(2026, 1, 11, 23, 59, 0, 0, time.UTC))
	svc := newService(t, store, clk)

	_, err := svc.MarkCompleted(context.Background(), "b-1")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	clk.Set(time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC))

	res, err := svc.MarkCompleted(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, string(model.StatusCompleted), res.Status)
	require.NotNil(t, res.CompletedAt)

	_, err = svc.MarkCompleted(context.Background(), "b-1")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = svc.MarkCompleted(context.Background(), "b-2")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestBookingService_RunCompletionSweep(t *testing.T) {
	created := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	store := repository.NewMemory(
		seed("b-1", model.StatusConfirmed, timezone.Date(2026, 1, 10), timezone.Date(2026, 1, 12), created),
		seed("b-2", model.StatusConfirmed, timezone.Date(2026, 1, 20), timezone.Date(2026, 1, 22), created),
		seed("b-3", model.StatusPendingPayment, timezone.Date(2026, 1, 5), timezone.Date(2026, 1, 7), created),
	)
	svc := newService(t, store, clock.NewFake(time.Date(2026, 1, 13, 1, 0, 0, 0, time.UTC)))

	count, err := svc.RunCompletionSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	completed, _ := store.FindByID(context.Background(), "b-1")
	assert.Equal(t, model.StatusCompleted, completed.Status)

	future, _ := store.FindByID(context.Background(), "b-2")
	assert.Equal(t, model.StatusConfirmed, future.Status)

	count, err = svc.RunCompletionSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestBookingService_TransitionErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	pending := seed("b-1", model.StatusPendingPayment, timezone.Date(2026, 1, 10), timezone.Date(2026, 1, 12), now)

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockCache, mockKafka := quietSideEffects(ctrl)
	zone := utcZone(t)
	svc := service.New(mockRepo, listings(), policy.NewCancellation(zone, 3), zone, clock.NewFake(now), mockKafka, testConfig(), mockCache, mocks.NewOtel())

	tests := []struct {
		name      string
		setupMock func()
		wantErr   error
		wantOK    bool
	}{
		{
			name: "lost the race twice",
			setupMock: func() {
				mockRepo.EXPECT().FindLatest(gomock.Any(), "b-1").Return(pending, nil).Times(2)
				mockRepo.EXPECT().
					Transition(gomock.Any(), "b-1", model.StatusPendingPayment, gomock.Any()).
					Return(model.Booking{}, false, nil).
					Times(2)
			},
			wantErr: model.ErrStaleWrite,
		},
		{
			name: "lost the race once",
			setupMock: func() {
				confirmed := pending
				confirmed.Status = model.StatusConfirmed

				gomock.InOrder(
					mockRepo.EXPECT().FindLatest(gomock.Any(), "b-1").Return(pending, nil),
					mockRepo.EXPECT().Transition(gomock.Any(), "b-1", model.StatusPendingPayment, gomock.Any()).Return(model.Booking{}, false, nil),
					mockRepo.EXPECT().FindLatest(gomock.Any(), "b-1").Return(pending, nil),
					mockRepo.EXPECT().Transition(gomock.Any(), "b-1", model.StatusPendingPayment, gomock.Any()).Return(confirmed, true, nil),
				)
			},
			wantOK: true,
		},
		{
			name: "read fails",
			setupMock: func() {
				mockRepo.EXPECT().FindLatest(gomock.Any(), "b-1").Return(model.Booking{}, errors.New("database error"))
			},
		},
		{
			name: "write fails",
			setupMock: func() {
				mockRepo.EXPECT().FindLatest(gomock.Any(), "b-1").Return(pending, nil)
				mockRepo.EXPECT().
					Transition(gomock.Any(), "b-1", model.StatusPendingPayment, gomock.Any()).
					Return(model.Booking{}, false, errors.New("database error"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			_, err := svc.ConfirmPayment(context.Background(), "b-1", "pay-1")

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantOK:
				assert.NoError(t, err)
			default:
				assert.Error(t, err)
				assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
			}
		})
	}
}

func TestBookingService_PublishesEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	store := repository.NewMemory(seed("b-1", model.StatusPendingPayment, timezone.Date(2026, 1, 10), timezone.Date(2026, 1, 12), now))

	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockCache.EXPECT().Delete(gomock.Any(), "booking:get:b-1").Return(nil).AnyTimes()
	mockCache.EXPECT().Clear(gomock.Any(), "calendar:listing-1*").Return(nil).AnyTimes()

	published := make(chan kafka.Message, 1)

	mockKafka := kafkaMocks.NewMockClient(ctrl)
	mockKafka.EXPECT().
		SendMessages(gomock.Any(), eventsTop, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
			published <- messages[0]

			return nil
		})

	zone := utcZone(t)
	svc := service.New(store, listings(), policy.NewCancellation(zone, 3), zone, clock.NewFake(now), mockKafka, testConfig(), mockCache, mocks.NewOtel())

	_, err := svc.ConfirmPayment(context.Background(), "b-1", "pay-1")
	require.NoError(t, err)

	select {
	case msg := <-published:
		event, ok := msg.Value.(dto.Event)
		require.True(t, ok)

		assert.Equal(t, "b-1", msg.Key)
		assert.Equal(t, dto.EventConfirmed, event.Type)
		assert.Equal(t, string(model.StatusConfirmed), event.Status)
		assert.Equal(t, "2026-01-10", event.CheckIn)
	case <-time.After(time.Second):
		t.Fatal("expected a booking event to be published")
	}
}

func TestBookingService_Get(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	store := repository.NewMemory(seed("b-1", model.StatusPendingPayment, timezone.Date(2026, 1, 10), timezone.Date(2026, 1, 12), now))
	svc, ot := newTracedService(t, store, clock.NewFake(now))

	res, err := svc.Get(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, "b-1", res.ID)
	assert.Equal(t, 2, res.Nights)
	assert.Equal(t, int64(1000000), res.TotalAmount)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	scopes := ot.Scopes("service.Get")
	require.Len(t, scopes, 2)
	assert.Empty(t, scopes[0].Errors())
	assert.Equal(t, []error{model.ErrNotFound}, scopes[1].Errors())
}

func TestBookingService_Get_SavesCacheBeforeReturning(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	store := repository.NewMemory(seed("b-1", model.StatusConfirmed, timezone.Date(2026, 1, 10), timezone.Date(2026, 1, 12), now))

	saved := false

	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockCache.EXPECT().Get(gomock.Any(), "booking:get:b-1", gomock.Any()).Return(cache.Nil)
	mockCache.EXPECT().
		Save(gomock.Any(), "booking:get:b-1", gomock.Any(), 60).
		DoAndReturn(func(_ context.Context, _ string, value any, _ int) error {
			saved = true

			res, ok := value.(dto.BookingResponse)
			require.True(t, ok)
			assert.Equal(t, string(model.StatusConfirmed), res.Status)

			return nil
		})

	zone := utcZone(t)
	svc := service.New(store, listings(), policy.NewCancellation(zone, 3), zone, clock.NewFake(now), kafkaMocks.NewMockClient(ctrl), testConfig(), mockCache, mocks.NewOtel())

	_, err := svc.Get(context.Background(), "b-1")
	require.NoError(t, err)
	assert.True(t, saved, "cache entry must be written before Get returns")
}

func TestBookingService_Cancel_DropsCacheBeforeReturning(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	store := repository.NewMemory(seed("b-1", model.StatusPendingPayment, timezone.Date(2026, 1, 10), timezone.Date(2026, 1, 12), now))

	var mu sync.Mutex
	dropped := []string{}

	drop := func(key string) {
		mu.Lock()
		defer mu.Unlock()

		dropped = append(dropped, key)
	}

	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockCache.EXPECT().
		Delete(gomock.Any(), "booking:get:b-1").
		DoAndReturn(func(_ context.Context, key string) error {
			drop(key)

			return nil
		})
	mockCache.EXPECT().
		Clear(gomock.Any(), "calendar:listing-1*").
		DoAndReturn(func(_ context.Context, prefix string) error {
			drop(prefix)

			return nil
		})

	mockKafka := kafkaMocks.NewMockClient(ctrl)
	mockKafka.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	zone := utcZone(t)
	svc := service.New(store, listings(), policy.NewCancellation(zone, 3), zone, clock.NewFake(now), mockKafka, testConfig(), mockCache, mocks.NewOtel())

	_, err := svc.Cancel(asUser(guestID), "b-1", dto.CancelBookingRequest{Actor: model.ActorGuest})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []string{"booking:get:b-1", "calendar:listing-1*"}, dropped)
}

func TestBookingService_TracesTransitionErrors(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	store := repository.NewMemory(seed("b-1", model.StatusCancelled, timezone.Date(2026, 1, 10), timezone.Date(2026, 1, 12), now))
	svc, ot := newTracedService(t, store, clock.NewFake(now))

	_, err := svc.ConfirmPayment(context.Background(), "b-1", "pay-1")
	require.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = svc.MarkCompleted(context.Background(), "missing")
	require.ErrorIs(t, err, model.ErrNotFound)

	confirm := ot.Scopes("service.ConfirmPayment")
	require.Len(t, confirm, 1)
	require.Len(t, confirm[0].Errors(), 1)
	assert.ErrorIs(t, confirm[0].Errors()[0], model.ErrInvalidTransition)

	complete := ot.Scopes("service.MarkCompleted")
	require.Len(t, complete, 1)
	require.Len(t, complete[0].Errors(), 1)
	assert.ErrorIs(t, complete[0].Errors()[0], model.ErrNotFound)
}
