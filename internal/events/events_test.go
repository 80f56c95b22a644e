package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"elc/config"
	"elc/infras/kafka"
	kafkaMocks "elc/infras/kafka/mocks"
	"elc/infras/otel/mocks"
	"elc/internal/events"
	eventMocks "elc/internal/events/mocks"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func enabledConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Kafka.Enable = true
	cfg.Kafka.Topic.Booking = "elc.booking.events"
	cfg.Kafka.ConsumerGroup = "elc"

	return cfg
}

func TestPublisher_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	publisher := events.NewPublisher(&config.Config{}, kafkaMocks.NewMockClient(ctrl))

	err := publisher.PublishBooking(context.Background(), events.BookingEvent{Type: events.BookingCreated, BookingID: "b1"})
	assert.NoError(t, err)
}

func TestPublisher_Kafka(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := kafkaMocks.NewMockClient(ctrl)
	publisher := events.NewPublisher(enabledConfig(), client)

	first := events.BookingEvent{Type: events.BookingCompleted, BookingID: "b1"}
	second := events.BookingEvent{Type: events.BookingCompleted, BookingID: "b2"}

	client.EXPECT().
		SendMessages(gomock.Any(), "elc.booking.events", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
			require.Len(t, messages, 2)
			assert.Equal(t, "b1", messages[0].Key)
			assert.Equal(t, events.BookingCompleted, messages[0].Headers[events.HeaderEventType])
			assert.Equal(t, second, messages[1].Value)

			return nil
		})

	require.NoError(t, publisher.PublishBooking(context.Background(), first, second))
	assert.NoError(t, publisher.PublishBooking(context.Background()), "empty batch is not sent")

	client.EXPECT().
		SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("broker down"))

	assert.Error(t, publisher.PublishBooking(context.Background(), first))
}

func TestConsumer_Dispatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	first := eventMocks.NewMockBookingHandler(ctrl)
	second := eventMocks.NewMockBookingHandler(ctrl)

	consumer := events.NewConsumer(enabledConfig(), kafkaMocks.NewMockClient(ctrl), mocks.NewOtel(), first, second)

	event := events.BookingEvent{
		Type:      events.BookingApproved,
		BookingID: "b1",
		Date:      "2025-03-10",
		At:        time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	first.EXPECT().HandleBookingEvent(gomock.Any(), event).Return(errors.New("boom"))
	second.EXPECT().HandleBookingEvent(gomock.Any(), event).Return(nil)

	consumer.Dispatch(context.Background(), kafkaGo.Message{Key: []byte("b1"), Value: payload})

	// malformed and id-less messages never reach the handlers
	consumer.Dispatch(context.Background(), kafkaGo.Message{Value: []byte("{")})
	consumer.Dispatch(context.Background(), kafkaGo.Message{Value: []byte(`{"type":"booking.approved"}`)})
}

func TestConsumer_RunDisabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	consumer := events.NewConsumer(&config.Config{}, kafkaMocks.NewMockClient(ctrl), mocks.NewOtel())

	consumer.Run(context.Background())
}

func TestConsumer_RunEnabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := kafkaMocks.NewMockClient(ctrl)
	handler := eventMocks.NewMockBookingHandler(ctrl)
	consumer := events.NewConsumer(enabledConfig(), client, mocks.NewOtel(), handler)

	payload, err := json.Marshal(events.BookingEvent{Type: events.BookingCancelled, BookingID: "b9"})
	require.NoError(t, err)

	handler.EXPECT().HandleBookingEvent(gomock.Any(), gomock.Any()).Return(nil)
	client.EXPECT().
		Consume(gomock.Any(), "elc", "elc.booking.events", gomock.Any()).
		Do(func(ctx context.Context, _, _ string, fn kafka.Handler) {
			assert.NoError(t, fn(ctx, kafkaGo.Message{Value: payload}))
		})

	consumer.Run(context.Background())
}
