package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"lodging/infras/otel"
	"lodging/infras/postgres"
	"lodging/internal/domains/listing/model"
	"lodging/shared"
	"lodging/shared/constant"
	gDto "lodging/shared/dto"
	gRepo "lodging/shared/repository"
)

// Listing reads the listing catalog owned by the catalog service.
type Listing interface {
	// FindByID returns a zero Listing when the id is unknown.
	FindByID(ctx context.Context, id string) (model.Listing, error)
	ListStatusesByHost(ctx context.Context, hostID string) ([]model.Status, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Listing]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Listing {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Listing](model.EntityName, model.TableName, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) FindByID(ctx context.Context, id string) (model.Listing, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".listing.FindByID")
	defer scope.End()

	return r.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName)) //nolint:wrapcheck
}

func (r *repositoryImpl) ListStatusesByHost(ctx context.Context, hostID string) ([]model.Status, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".listing.ListStatusesByHost")
	defer scope.End()

	filter := gDto.And(gDto.Filter{Field: model.FieldHostID, Value: hostID, Operator: gDto.FilterOperatorEq, Table: model.TableName})

	listings, err := r.GetAll(ctx, gDto.QueryParams{}, filter, model.FieldID, model.FieldStatus)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	statuses := make([]model.Status, len(listings))
	for i, listing := range listings {
		statuses[i] = listing.Status
	}

	return statuses, nil
}
