package router

import (
	"lodging/internal/handlers/booking"
	"lodging/internal/handlers/calendar"
	"lodging/internal/handlers/listing"
	"lodging/internal/handlers/settlement"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Booking    booking.Handler
	Calendar   calendar.Handler
	Listing    listing.Handler
	Settlement settlement.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Calendar.Router(routerGroup)
		r.DomainHandlers.Listing.Router(routerGroup)
		r.DomainHandlers.Settlement.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
