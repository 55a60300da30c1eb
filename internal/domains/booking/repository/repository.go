package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"lodging/infras/otel"
	"lodging/infras/postgres"
	"lodging/internal/domains/booking/model"
	"lodging/shared"
	"lodging/shared/constant"
	gDto "lodging/shared/dto"
	gRepo "lodging/shared/repository"
	"lodging/shared/timezone"
	"time"
)

// Booking is the durable booking store. Every status change goes through Transition or
// ExpirePending, both of which are guarded single-statement writes.
type Booking interface {
	Insert(ctx context.Context, booking model.Booking) error
	// FindByID returns a zero Booking when the id is unknown.
	FindByID(ctx context.Context, id string) (model.Booking, error)
	// FindLatest is FindByID read from the primary, for read-then-write cycles.
	FindLatest(ctx context.Context, id string) (model.Booking, error)
	// FindOverlapping returns bookings of the listing whose stay intersects [from, to), by check-in.
	FindOverlapping(ctx context.Context, listingID string, from, to time.Time, statuses ...model.Status) ([]model.Booking, error)
	List(ctx context.Context, filter model.ListFilter) ([]model.Booking, error)
	// Transition applies change only if the booking is still in status from. It reports false
	// when the guard did not hold.
	Transition(ctx context.Context, id string, from model.Status, change model.Transition) (model.Booking, bool, error)
	// ExpirePending cancels every PENDING_PAYMENT booking created before cutoff.
	ExpirePending(ctx context.Context, cutoff time.Time, change model.Transition) ([]model.Booking, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, db, otel),
		db:         db,
		otel:       otel,
	}
}

func statusValues(statuses []model.Status) []string {
	values := make([]string, len(statuses))
	for i, status := range statuses {
		values[i] = string(status)
	}

	return values
}

// normalize drops whatever location the driver attached to DATE columns.
func normalize(bookings ...model.Booking) []model.Booking {
	for i := range bookings {
		bookings[i].CheckIn = timezone.ToDate(bookings[i].CheckIn)
		bookings[i].CheckOut = timezone.ToDate(bookings[i].CheckOut)
	}

	return bookings
}

func (r *repositoryImpl) FindByID(ctx context.Context, id string) (model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.FindByID")
	defer scope.End()

	booking, err := r.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		return booking, err //nolint:wrapcheck
	}

	return normalize(booking)[0], nil
}

func (r *repositoryImpl) FindLatest(ctx context.Context, id string) (model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.FindLatest")
	defer scope.End()

	booking, err := r.GetPrimary(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		return booking, err //nolint:wrapcheck
	}

	return normalize(booking)[0], nil
}

func (r *repositoryImpl) FindOverlapping(ctx context.Context, listingID string, from, to time.Time, statuses ...model.Status) ([]model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.FindOverlapping")
	defer scope.End()

	filters := []any{
		gDto.Filter{Field: model.FieldListingID, Value: listingID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		gDto.Filter{ArgName: "range_end", Field: model.FieldCheckIn, Value: timezone.FormatDate(to), Operator: gDto.FilterOperatorLess, Table: model.TableName},
		gDto.Filter{ArgName: "range_start", Field: model.FieldCheckOut, Value: timezone.FormatDate(from), Operator: gDto.FilterOperatorGreater, Table: model.TableName},
	}

	if len(statuses) > 0 {
		filters = append(filters, gDto.Filter{ArgName: "statuses", Field: model.FieldStatus, Value: statusValues(statuses), Operator: gDto.FilterOperatorIn, Table: model.TableName})
	}

	params := gDto.QueryParams{SortBy: model.TableName + "." + model.FieldCheckIn, SortDir: gDto.SortDirAsc}

	bookings, err := r.GetAll(ctx, params, gDto.And(filters...))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return normalize(bookings...), nil
}

func (r *repositoryImpl) List(ctx context.Context, filter model.ListFilter) ([]model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.List")
	defer scope.End()

	filters := []any{}

	if len(filter.Statuses) > 0 {
		filters = append(filters, gDto.Filter{ArgName: "statuses", Field: model.FieldStatus, Value: statusValues(filter.Statuses), Operator: gDto.FilterOperatorIn, Table: model.TableName})
	}

	if filter.HostID != "" {
		filters = append(filters, gDto.Filter{Field: model.FieldHostID, Value: filter.HostID, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if filter.ListingID != "" {
		filters = append(filters, gDto.Filter{Field: model.FieldListingID, Value: filter.ListingID, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if !filter.CheckOutOnOrBefore.IsZero() {
		filters = append(filters, gDto.Filter{ArgName: "check_out_until", Field: model.FieldCheckOut, Value: timezone.FormatDate(filter.CheckOutOnOrBefore), Operator: gDto.FilterOperatorLessEq, Table: model.TableName})
	}

	params := gDto.QueryParams{SortBy: model.TableName + "." + model.FieldCreatedAt, SortDir: gDto.SortDirAsc}

	bookings, err := r.GetAll(ctx, params, gDto.And(filters...))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return normalize(bookings...), nil
}

func (r *repositoryImpl) Transition(ctx context.Context, id string, from model.Status, change model.Transition) (model.Booking, bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.Transition")
	defer scope.End()

	scope.SetAttributes(map[string]any{"booking.id": id, "booking.from": string(from), "booking.to": string(change.To)})

	filter := gDto.And(
		gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		gDto.Filter{ArgName: "expected_status", Field: model.FieldStatus, Value: string(from), Operator: gDto.FilterOperatorEq, Table: model.TableName},
	)

	updated, err := r.UpdateReturning(ctx, change.Fields(), filter)
	if err != nil {
		if postgres.ErrorCode(err) == constant.PqErrorCodeExclusionViolation {
			return model.Booking{}, false, model.ErrListingUnavailable
		}

		return model.Booking{}, false, err //nolint:wrapcheck
	}

	if len(updated) == 0 {
		return model.Booking{}, false, nil
	}

	return normalize(updated[0])[0], true, nil
}

func (r *repositoryImpl) ExpirePending(ctx context.Context, cutoff time.Time, change model.Transition) ([]model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ExpirePending")
	defer scope.End()

	if change.To != model.StatusCancelled {
		return nil, errors.New("expiry must cancel bookings")
	}

	filter := gDto.And(
		gDto.Filter{ArgName: "expected_status", Field: model.FieldStatus, Value: string(model.StatusPendingPayment), Operator: gDto.FilterOperatorEq, Table: model.TableName},
		gDto.Filter{ArgName: "cutoff", Field: model.FieldCreatedAt, Value: cutoff.UTC(), Operator: gDto.FilterOperatorLess, Table: model.TableName},
	)

	expired, err := r.UpdateReturning(ctx, change.Fields(), filter)
	if err != nil {
		return nil, fmt.Errorf("failed to expire pending bookings: %w", err)
	}

	return normalize(expired...), nil
}
