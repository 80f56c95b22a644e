package model

import (
	"net/http"
	"time"

	"elc/shared/failure"
	"elc/shared/model"
)

const (
	TableName  = "attendances"
	EntityName = "attendance"

	FieldID             = "id"
	FieldUserID         = "user_id"
	FieldRoomID         = "room_id"
	FieldBookingID      = "booking_id"
	FieldAttendanceDate = "attendance_date"
	FieldQRCode         = "qr_code"
	FieldQRCodeData     = "qr_code_data"
	FieldStatus         = "status"
	FieldCheckInTime    = "check_in_time"
	FieldCheckOutTime   = "check_out_time"
)

const (
	StatusAbsent         = "absent"
	StatusPresent        = "present"
	StatusLate           = "late"
	StatusEarlyDeparture = "early_departure"
)

var ErrQRExpiredOrInvalid = &failure.Failure{Code: http.StatusBadRequest, Message: "qr code is expired or invalid"}

type Attendance struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	RoomID         string    `db:"room_id"`
	BookingID      string    `db:"booking_id"`
	AttendanceDate time.Time `db:"attendance_date"`
	QRCode         string    `db:"qr_code"`
	QRCodeData     string    `db:"qr_code_data"`
	Status         string    `db:"status"`
	CheckInTime    *string   `db:"check_in_time"`
	CheckOutTime   *string   `db:"check_out_time"`
	model.Metadata
}

// CheckedIn reports whether a scan has already been recorded.
func (a Attendance) CheckedIn() bool {
	return a.Status == StatusPresent || a.Status == StatusLate || a.Status == StatusEarlyDeparture
}
