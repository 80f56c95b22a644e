// Package events carries booking lifecycle notifications over Kafka.
package events

//go:generate go run go.uber.org/mock/mockgen -source=./events.go -destination=./mocks/events_mock.go -package=mocks

import (
	"context"
	"time"

	"elc/config"
	"elc/infras/kafka"

	"github.com/rs/zerolog/log"
)

const (
	BookingCreated   = "booking.created"
	BookingApproved  = "booking.approved"
	BookingRejected  = "booking.rejected"
	BookingCancelled = "booking.cancelled"
	BookingCompleted = "booking.completed"
	BookingDeleted   = "booking.deleted"
)

// HeaderEventType repeats the event type outside the payload.
const HeaderEventType = "event-type"

type BookingEvent struct {
	Type      string    `json:"type"`
	BookingID string    `json:"booking_id"`
	UserID    string    `json:"user_id"`
	RoomID    string    `json:"room_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Status    string    `json:"status"`
	At        time.Time `json:"at"`
}

type Publisher interface {
	PublishBooking(ctx context.Context, batch ...BookingEvent) error
}

// BookingHandler reacts to a single booking event.
type BookingHandler interface {
	HandleBookingEvent(ctx context.Context, event BookingEvent) error
}

type kafkaPublisher struct {
	client kafka.Client
	topic  string
}

type noopPublisher struct{}

// NewPublisher returns a Kafka backed publisher when Kafka is enabled and a
// publisher that drops every event otherwise.
func NewPublisher(cfg *config.Config, client kafka.Client) Publisher {
	if !cfg.Kafka.Enable {
		log.Info().Msg("Kafka disabled, booking events will not be published")

		return noopPublisher{}
	}

	return &kafkaPublisher{
		client: client,
		topic:  cfg.Kafka.Topic.Booking,
	}
}

func (p *kafkaPublisher) PublishBooking(ctx context.Context, batch ...BookingEvent) error {
	if len(batch) == 0 {
		return nil
	}

	messages := make([]kafka.Message, len(batch))
	for i, event := range batch {
		messages[i] = kafka.Message{
			Key:     event.BookingID,
			Headers: map[string]string{HeaderEventType: event.Type},
			Value:   event,
		}
	}

	return p.client.SendMessages(ctx, p.topic, messages...) //nolint:wrapcheck
}

func (noopPublisher) PublishBooking(_ context.Context, _ ...BookingEvent) error {
	return nil
}
