package otel_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"elc/infras/otel/mocks"
	"elc/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func TestScope_TraceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status codes.Code
		events int
	}{
		{name: "nil", err: nil, status: codes.Unset, events: 0},
		{name: "rejected request", err: failure.Conflict("slot taken"), status: codes.Unset, events: 1},
		{name: "internal failure", err: errors.New("connection reset"), status: codes.Error, events: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := mocks.NewRecorder()

			_, scope := recorder.NewScope(context.Background(), "test", "op")
			scope.TraceIfError(tt.err)
			scope.End()

			spans := recorder.Spans()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.status, spans[0].Status.Code)
			assert.Len(t, spans[0].Events, tt.events)
		})
	}
}

func TestScope_SetAttributes(t *testing.T) {
	recorder := mocks.NewRecorder()

	_, scope := recorder.NewScope(context.Background(), "test", "op")
	scope.SetAttributes(map[string]any{
		"room.capacity": 40,
		"room.active":   true,
		"room.tags":     []string{"projector"},
		"booking.day":   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		"slot.length":   90 * time.Minute,
	})
	scope.End()

	spans := recorder.Spans()
	require.Len(t, spans, 1)

	got := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes {
		got[kv.Key] = kv.Value
	}

	assert.Equal(t, int64(40), got["room.capacity"].AsInt64())
	assert.True(t, got["room.active"].AsBool())
	assert.Equal(t, []string{"projector"}, got["room.tags"].AsStringSlice())
	assert.Equal(t, "2025-03-10T00:00:00Z", got["booking.day"].AsString())
	assert.Equal(t, "1h30m0s", got["slot.length"].AsString())
}
