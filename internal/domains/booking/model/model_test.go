package model_test

import (
	"testing"

	"elc/internal/domains/booking/model"
	"elc/shared/failure"
	"elc/shared/timeslot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func booking(id, start, end, status string) model.Booking {
	return model.Booking{ID: id, StartTime: start, EndTime: end, Status: status}
}

func TestDetectConflict(t *testing.T) {
	existing := []model.Booking{
		booking("b1", "9:00 AM", "10:00 AM", model.StatusPending),
		booking("b2", "1:00 PM", "3:00 PM", model.StatusConfirmed),
		booking("b3", "10:00 AM", "1:00 PM", model.StatusCancelled),
		booking("b4", "10:00 AM", "1:00 PM", model.StatusRejected),
		booking("b5", "10:00 AM", "1:00 PM", model.StatusCompleted),
	}

	tests := []struct {
		name      string
		start     string
		end       string
		wantClash bool
	}{
		{name: "starts when a booking ends", start: "10:00 AM", end: "11:00 AM"},
		{name: "ends when a booking starts", start: "11:00 AM", end: "1:00 PM"},
		{name: "overlaps a pending booking", start: "9:30 AM", end: "10:30 AM", wantClash: true},
		{name: "inside a confirmed booking", start: "1:30 PM", end: "2:00 PM", wantClash: true},
		{name: "covers a confirmed booking", start: "12:00 PM", end: "4:00 PM", wantClash: true},
		{name: "identical to a pending booking", start: "9:00 AM", end: "10:00 AM", wantClash: true},
		{name: "free evening", start: "6:00 PM", end: "8:00 PM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requested, err := timeslot.NewInterval(tt.start, tt.end)
			require.NoError(t, err)

			err = model.DetectConflict(requested, existing)
			if !tt.wantClash {
				assert.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, model.ErrSlotConflict)
			assert.Equal(t, 409, failure.GetCode(err))
		})
	}
}

func TestDetectConflict_MalformedStoredTime(t *testing.T) {
	stored := model.Booking{
		ID:          "legacy",
		StartTime:   "09:00",
		EndTime:     "10:00",
		StartMinute: 540,
		EndMinute:   600,
		Status:      model.StatusConfirmed,
	}

	requested := timeslot.Interval{Start: 570, End: 630}
	assert.ErrorIs(t, model.DetectConflict(requested, []model.Booking{stored}), model.ErrSlotConflict)

	// no usable minutes either: the row cannot be placed and is skipped
	stored.StartMinute, stored.EndMinute = 0, 0
	assert.NoError(t, model.DetectConflict(requested, []model.Booking{stored}))
}

func TestBooking_CanTransition(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{model.StatusPending, model.StatusConfirmed, true},
		{model.StatusPending, model.StatusRejected, true},
		{model.StatusPending, model.StatusCancelled, true},
		{model.StatusPending, model.StatusCompleted, false},
		{model.StatusConfirmed, model.StatusCancelled, true},
		{model.StatusConfirmed, model.StatusCompleted, true},
		{model.StatusConfirmed, model.StatusRejected, false},
		{model.StatusRejected, model.StatusConfirmed, false},
		{model.StatusCancelled, model.StatusPending, false},
		{model.StatusCompleted, model.StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, model.Booking{Status: tt.from}.CanTransition(tt.to))
		})
	}
}

func TestBooking_Blocking(t *testing.T) {
	assert.True(t, model.Booking{Status: model.StatusPending}.Blocking())
	assert.True(t, model.Booking{Status: model.StatusConfirmed}.Blocking())
	assert.False(t, model.Booking{Status: model.StatusCancelled}.Blocking())
	assert.False(t, model.Booking{Status: model.StatusRejected}.Blocking())
	assert.False(t, model.Booking{Status: model.StatusCompleted}.Blocking())
	assert.ElementsMatch(t, []string{model.StatusPending, model.StatusConfirmed}, model.BlockingStatuses)
}
