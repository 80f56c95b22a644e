package model

import (
	"net/http"
	"time"

	"elc/shared/failure"
	"elc/shared/model"
	"elc/shared/timeslot"

	"github.com/lib/pq"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID          = "id"
	FieldUserID      = "user_id"
	FieldRoomID      = "room_id"
	FieldBookingDate = "booking_date"
	FieldStartTime   = "start_time"
	FieldEndTime     = "end_time"
	FieldStartMinute = "start_minute"
	FieldEndMinute   = "end_minute"
	FieldPurpose     = "purpose"
	FieldAttendees   = "attendees"
	FieldEquipment   = "equipment"
	FieldStatus      = "status"
	FieldApprovedBy  = "approved_by"
	FieldStatusNote  = "status_note"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

var (
	ErrInvalidTimeRange        = &failure.Failure{Code: http.StatusBadRequest, Message: "invalid time range"}
	ErrSlotConflict            = &failure.Failure{Code: http.StatusConflict, Message: "time slot conflicts with an existing booking"}
	ErrInvalidStatusTransition = &failure.Failure{Code: http.StatusBadRequest, Message: "invalid status transition"}
	ErrStatusChanged           = &failure.Failure{Code: http.StatusConflict, Message: "booking status changed by another request"}
)

// BlockingStatuses hold a room's time slot.
var BlockingStatuses = []string{StatusPending, StatusConfirmed}

var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
}

type Booking struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	RoomID      string         `db:"room_id"`
	BookingDate time.Time      `db:"booking_date"`
	StartTime   string         `db:"start_time"`
	EndTime     string         `db:"end_time"`
	StartMinute int            `db:"start_minute"`
	EndMinute   int            `db:"end_minute"`
	Purpose     string         `db:"purpose"`
	Attendees   int            `db:"attendees"`
	Equipment   pq.StringArray `db:"equipment"`
	Status      string         `db:"status"`
	ApprovedBy  string         `db:"approved_by"`
	StatusNote  string         `db:"status_note"`
	model.Metadata
}

// Interval returns the booked minutes, parsed from the stored clock text.
func (b Booking) Interval() (timeslot.Interval, error) {
	return timeslot.NewInterval(b.StartTime, b.EndTime)
}

// Blocking reports whether the booking holds its slot.
func (b Booking) Blocking() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanTransition reports whether status may move from the booking's current
// status to next.
func (b Booking) CanTransition(next string) bool {
	for _, allowed := range transitions[b.Status] {
		if allowed == next {
			return true
		}
	}

	return false
}
