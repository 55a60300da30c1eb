package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"lodging/infras/otel"
	"lodging/infras/postgres"
	"lodging/internal/domains/settlement/model"
	"lodging/shared/constant"
	gDto "lodging/shared/dto"
	gRepo "lodging/shared/repository"
	"slices"
)

// Keeps each IN list well below the Postgres bind parameter limit.
const lookupChunkSize = 1000

// Payout reads payouts recorded by the payout service. Nothing here writes them.
type Payout interface {
	FindByBookingIDs(ctx context.Context, bookingIDs []string) ([]model.Payout, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Payout]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Payout {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Payout](model.PayoutEntityName, model.PayoutTableName, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) FindByBookingIDs(ctx context.Context, bookingIDs []string) ([]model.Payout, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".settlement.FindByBookingIDs")
	defer scope.End()

	payouts := []model.Payout{}

	for chunk := range slices.Chunk(bookingIDs, lookupChunkSize) {
		filter := gDto.And(gDto.Filter{
			ArgName:  "booking_ids",
			Field:    model.FieldBookingID,
			Value:    chunk,
			Operator: gDto.FilterOperatorIn,
			Table:    model.PayoutTableName,
		})

		found, err := r.GetAll(ctx, gDto.QueryParams{}, filter)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		payouts = append(payouts, found...)
	}

	return payouts, nil
}
