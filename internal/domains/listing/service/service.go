package service

import (
	"context"
	"fmt"
	"lodging/infras/otel"
	"lodging/internal/domains/listing/model/dto"
	"lodging/internal/domains/listing/repository"
	"lodging/shared/constant"

	"github.com/rs/zerolog/log"
)

type Listing interface {
	HostFlowStatus(ctx context.Context, hostID string) (dto.HostFlowStatusResponse, error)
}

type serviceImpl struct {
	repo repository.Listing
	otel otel.Otel
}

func New(repo repository.Listing, otel otel.Otel) Listing {
	return &serviceImpl{
		repo: repo,
		otel: otel,
	}
}

// HostFlowStatus recomputes the host's onboarding status from their listings on every call.
func (s *serviceImpl) HostFlowStatus(ctx context.Context, hostID string) (res dto.HostFlowStatusResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".HostFlowStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	statuses, err := s.repo.ListStatusesByHost(ctx, hostID)
	if err != nil {
		log.Error().Err(err).Str("host_id", hostID).Msg("failed to list listing statuses")

		return res, fmt.Errorf("failed to list listing statuses: %w", err)
	}

	res.FromStatuses(hostID, statuses)

	return res, nil
}
