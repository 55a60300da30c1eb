//go:build wireinject
// +build wireinject

package di

import (
	"lodging/config"
	"lodging/infras/jwt"
	"lodging/infras/kafka"
	"lodging/infras/otel"
	"lodging/infras/postgres"
	"lodging/infras/redis"
	"lodging/permissions"
	"lodging/shared/cache"
	"lodging/shared/clock"
	"lodging/shared/timezone"
	"lodging/transport/http"
	"lodging/transport/http/middleware"
	"lodging/transport/http/router"

	bookingPolicy "lodging/internal/domains/booking/policy"
	bookingRepository "lodging/internal/domains/booking/repository"
	bookingService "lodging/internal/domains/booking/service"
	calendarService "lodging/internal/domains/calendar/service"
	listingRepository "lodging/internal/domains/listing/repository"
	listingService "lodging/internal/domains/listing/service"
	settlementRepository "lodging/internal/domains/settlement/repository"
	settlementService "lodging/internal/domains/settlement/service"

	bookingHandler "lodging/internal/handlers/booking"
	calendarHandler "lodging/internal/handlers/calendar"
	listingHandler "lodging/internal/handlers/listing"
	settlementHandler "lodging/internal/handlers/settlement"

	"lodging/internal/workers/payment"
	"lodging/internal/workers/sweeper"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	permissions.Get,
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	clock.New,
	timezone.Default,
)

var listingDomain = wire.NewSet(
	listingRepository.New,
	listingService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingPolicy.New,
	bookingService.New,
)

var calendarDomain = wire.NewSet(
	calendarService.New,
)

var settlementDomain = wire.NewSet(
	settlementRepository.New,
	settlementService.NewFeePolicy,
	settlementService.New,
)

var domains = wire.NewSet(
	listingDomain,
	bookingDomain,
	calendarDomain,
	settlementDomain,
)

var workers = wire.NewSet(
	wire.Bind(new(sweeper.Sweeps), new(bookingService.Booking)),
	wire.Bind(new(payment.Confirmer), new(bookingService.Booking)),
	sweeper.New,
	payment.New,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	bookingHandler.New,
	calendarHandler.New,
	listingHandler.New,
	settlementHandler.New,
	router.New,
)

func InitializeApp() *App {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		workers,
		routing,
		http.New,
		wire.Struct(new(App), "*"),
	)

	return &App{}
}
