package di

import (
	"lodging/config"
	"lodging/infras/otel"
	"lodging/internal/workers/payment"
	"lodging/internal/workers/sweeper"
	"lodging/transport/http"
)

// App bundles the long-running processes started by cmd/app.
type App struct {
	Config  *config.Config
	HTTP    *http.HTTP
	Sweeper *sweeper.Sweeper
	Payment *payment.Consumer
	Otel    otel.Otel
}
