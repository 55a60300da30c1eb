package listing

import (
	"lodging/infras/otel"
	"lodging/internal/domains/listing/service"
	"lodging/shared/constant"
	"lodging/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Listing
	otel    otel.Otel
}

func New(service service.Listing, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/hosts/me/flow-status", handler.GetHostFlowStatus)
}

// GetHostFlowStatus reports where the caller stands in host onboarding.
// @Summary Get host onboarding status
// @Description Derived from the caller's listings on every request.
// @Tags Listing
// @Produce json
// @Success 200 {object} response.Data[dto.HostFlowStatusResponse] "Host flow status"
// @Failure 500 {object} response.Error
// @Router /v1/hosts/me/flow-status [get]
// @Security BearerAuth
func (handler *Handler) GetHostFlowStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetHostFlowStatus")
	defer scope.End()

	hostID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	status, err := handler.service.HostFlowStatus(ctx, hostID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("host_id", hostID).Msg("failed to get host flow status")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, status)
}
