package events

import (
	"context"

	"elc/config"
	"elc/infras/kafka"
	"elc/infras/otel"
	"elc/shared/constant"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

type Consumer struct {
	cfg      *config.Config
	client   kafka.Client
	otel     otel.Otel
	handlers []BookingHandler
}

func NewConsumer(cfg *config.Config, client kafka.Client, otel otel.Otel, handlers ...BookingHandler) *Consumer {
	return &Consumer{
		cfg:      cfg,
		client:   client,
		otel:     otel,
		handlers: handlers,
	}
}

// Run blocks consuming the booking topic until ctx is done. It returns
// immediately when Kafka is disabled.
func (c *Consumer) Run(ctx context.Context) {
	if !c.cfg.Kafka.Enable {
		return
	}

	log.Info().Str("topic", c.cfg.Kafka.Topic.Booking).Msg("Starting booking event consumer")

	c.client.Consume(ctx, c.cfg.Kafka.ConsumerGroup, c.cfg.Kafka.Topic.Booking, func(ctx context.Context, message kafkaGo.Message) error {
		c.Dispatch(context.WithoutCancel(ctx), message)

		return nil
	})
}

// Dispatch decodes message and hands the event to every handler. Handler
// errors are logged and do not stop the remaining handlers.
func (c *Consumer) Dispatch(ctx context.Context, message kafkaGo.Message) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelKafkaScopeName, constant.OtelKafkaScopeName+".Dispatch")
	defer scope.End()

	event, err := kafka.Decode[BookingEvent](message)
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Str("key", string(message.Key)).Msg("dropping undecodable booking event")

		return
	}

	if event.BookingID == constant.Empty {
		log.Warn().Str("key", string(message.Key)).Msg("ignoring booking event without booking id")

		return
	}

	if header := kafka.Header(message, HeaderEventType); header != constant.Empty && header != event.Type {
		log.Warn().Str("header", header).Str("type", event.Type).Msg("booking event type header disagrees with payload")
	}

	scope.SetAttributes(map[string]any{
		"event.type":       event.Type,
		"event.booking_id": event.BookingID,
	})

	for _, handler := range c.handlers {
		if err := handler.HandleBookingEvent(ctx, event); err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Str("type", event.Type).Str("booking_id", event.BookingID).Msg("failed to handle booking event")
		}
	}
}
