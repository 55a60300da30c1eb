package settlement

import (
	"lodging/infras/otel"
	"lodging/internal/domains/settlement/service"
	"lodging/shared/clock"
	"lodging/shared/constant"
	"lodging/shared/failure"
	"lodging/transport/http/response"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Settlement
	clock   clock.Clock
	otel    otel.Otel
}

func New(service service.Settlement, clk clock.Clock, otel otel.Otel) Handler {
	return Handler{
		service: service,
		clock:   clk,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/settlements", handler.ListSettlementRows)
	router.Get("/hosts/me/settlements/summary", handler.GetHostSummary)
}

func (handler *Handler) asOf(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get(constant.RequestParamAsOf)
	if raw == "" {
		return handler.clock.Now(), nil
	}

	asOf, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, failure.BadRequestFromString("as_of must be an RFC3339 timestamp")
	}

	return asOf, nil
}

// ListSettlementRows projects payouts for every confirmed or completed booking.
// @Summary List settlement rows
// @Description Payout projection as of the given instant, earliest payout first.
// @Tags Settlement
// @Produce json
// @Param as_of query string false "RFC3339 instant, defaults to now"
// @Success 200 {object} response.Data[[]dto.RowResponse] "Settlement rows"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/settlements [get]
// @Security BearerAuth
func (handler *Handler) ListSettlementRows(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ListSettlementRows")
	defer scope.End()

	asOf, err := handler.asOf(r)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	rows, err := handler.service.ComputeSettlementRows(ctx, asOf)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to compute settlement rows")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, rows)
}

// GetHostSummary totals the caller's payouts per currency.
// @Summary Get host settlement summary
// @Tags Settlement
// @Produce json
// @Param as_of query string false "RFC3339 instant, defaults to now"
// @Success 200 {object} response.Data[dto.HostSummaryResponse] "Host summary"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/hosts/me/settlements/summary [get]
// @Security BearerAuth
func (handler *Handler) GetHostSummary(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetHostSummary")
	defer scope.End()

	asOf, err := handler.asOf(r)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	hostID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	summary, err := handler.service.HostSummary(ctx, hostID, asOf)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("host_id", hostID).Msg("failed to compute host summary")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, summary)
}
