package payment

import (
	"context"
	"errors"
	"lodging/config"
	"lodging/infras/kafka"
	"lodging/infras/otel"
	"lodging/internal/domains/booking/model"
	"lodging/internal/domains/booking/model/dto"
	"lodging/shared/constant"
	"lodging/shared/validator"
	"time"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

const (
	maxAttempts  = 3
	retryBackoff = time.Second
)

// Confirmer is the part of the booking service payment notifications drive.
type Confirmer interface {
	ConfirmPayment(ctx context.Context, id, paymentRef string) (dto.BookingResponse, error)
}

// Consumer turns payment.confirmed messages into booking confirmations.
type Consumer struct {
	kafka     kafka.Client
	confirmer Confirmer
	group     string
	topic     string
	backoff   time.Duration
	otel      otel.Otel
}

func New(kafka kafka.Client, confirmer Confirmer, cfg *config.Config, otel otel.Otel) *Consumer {
	return &Consumer{
		kafka:     kafka,
		confirmer: confirmer,
		group:     cfg.Kafka.ConsumerGroup,
		topic:     cfg.Kafka.Topics.PaymentConfirmed,
		backoff:   retryBackoff,
		otel:      otel,
	}
}

// WithBackoff overrides the wait between retries of a failed confirmation.
func (c *Consumer) WithBackoff(backoff time.Duration) *Consumer {
	c.backoff = backoff

	return c
}

func (c *Consumer) Run(ctx context.Context) error {
	log.Info().Str("topic", c.topic).Str("group", c.group).Msg("payment consumer started")

	return c.kafka.Consume(ctx, c.group, c.topic, c.Handle) //nolint:wrapcheck
}

// Handle confirms the booking named by the message. Malformed messages and confirmations
// the booking can no longer take are acknowledged and logged; store failures are retried
// and then returned so the message stays uncommitted.
func (c *Consumer) Handle(ctx context.Context, msg kafkaGo.Message) (err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".PaymentConfirmed")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	payload, err := kafka.Decode[dto.PaymentConfirmed](msg)
	if err != nil {
		log.Error().Err(err).Str("key", string(msg.Key)).Msg("dropping malformed payment message")

		return nil
	}

	if err = validator.ValidateStruct(&payload); err != nil {
		log.Error().Err(err).Str("key", string(msg.Key)).Msg("dropping invalid payment message")

		return nil
	}

	ctx = context.WithValue(ctx, constant.ContextKeyUserID, constant.SystemUser)

	for attempt := 1; ; attempt++ {
		_, err = c.confirmer.ConfirmPayment(ctx, payload.BookingID, payload.PaymentReference)

		switch {
		case err == nil:
			log.Info().Str("booking_id", payload.BookingID).Str("payment_reference", payload.PaymentReference).Msg("payment confirmed")

			return nil
		case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrInvalidTransition), errors.Is(err, model.ErrListingUnavailable):
			// Money was taken for a booking that cannot be confirmed; refunds are handled by the payment service.
			log.Error().Err(err).Str("booking_id", payload.BookingID).Str("payment_reference", payload.PaymentReference).Msg("payment cannot be applied to booking")

			return nil
		}

		if attempt >= maxAttempts {
			return err
		}

		log.Warn().Err(err).Str("booking_id", payload.BookingID).Int("attempt", attempt).Msg("retrying payment confirmation")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoff * time.Duration(attempt)):
		}
	}
}
