package calendar

import (
	"lodging/infras/otel"
	"lodging/internal/domains/calendar/service"
	"lodging/shared/clock"
	"lodging/shared/constant"
	"lodging/shared/failure"
	"lodging/shared/timezone"
	"lodging/transport/http/response"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Calendar
	zone    *timezone.Zone
	clock   clock.Clock
	otel    otel.Otel
}

func New(service service.Calendar, zone *timezone.Zone, clk clock.Clock, otel otel.Otel) Handler {
	return Handler{
		service: service,
		zone:    zone,
		clock:   clk,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/listings/{id}/calendar", handler.GetHostCalendar)
}

// monthOf reads year and month from the query, defaulting to the current month of the zone.
func (handler *Handler) monthOf(r *http.Request) (int, time.Month, error) {
	today := handler.zone.DateOf(handler.clock.Now())
	year, month := today.Year(), today.Month()

	if raw := r.URL.Query().Get(constant.RequestParamYear); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, failure.BadRequestFromString("year must be a number")
		}

		year = parsed
	}

	if raw := r.URL.Query().Get(constant.RequestParamMonth); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, failure.BadRequestFromString("month must be a number")
		}

		month = time.Month(parsed)
	}

	return year, month, nil
}

// GetHostCalendar returns the month calendar of a listing owned by the caller.
// @Summary Get a listing calendar
// @Description Bookings and per-night occupancy of a listing for one month.
// @Tags Calendar
// @Produce json
// @Param id path string true "Listing ID"
// @Param year query int false "Year, defaults to the current year"
// @Param month query int false "Month 1-12, defaults to the current month"
// @Success 200 {object} response.Data[dto.MonthResponse] "Month calendar"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/listings/{id}/calendar [get]
// @Security BearerAuth
func (handler *Handler) GetHostCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetHostCalendar")
	defer scope.End()

	year, month, err := handler.monthOf(r)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	listingID := chi.URLParam(r, constant.RequestParamID)
	hostID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	calendar, err := handler.service.GetHostCalendar(ctx, hostID, listingID, year, month)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("listing_id", listingID).Msg("failed to get host calendar")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, calendar)
}
