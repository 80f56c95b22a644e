package dto

import (
	"time"

	"elc/internal/domains/attendance/model"
	"elc/shared"
	"elc/shared/constant"
	gDto "elc/shared/dto"
	gModel "elc/shared/model"

	"github.com/google/uuid"
)

type ScanRequest struct {
	QRData string `json:"qr_data" validate:"required"`
}

// NewAttendance is the absent record issued for a confirmed booking.
type NewAttendance struct {
	UserID    string
	RoomID    string
	BookingID string
	Date      time.Time
	QRCode    string
	QRData    string
}

func (n NewAttendance) ToModel(user string, now time.Time) model.Attendance {
	return model.Attendance{
		ID:             uuid.NewString(),
		UserID:         n.UserID,
		RoomID:         n.RoomID,
		BookingID:      n.BookingID,
		AttendanceDate: n.Date,
		QRCode:         n.QRCode,
		QRCodeData:     n.QRData,
		Status:         model.StatusAbsent,
		Metadata: gModel.NewMetadata(user, now),
	}
}

type AttendanceResponse struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	RoomID         string `json:"room_id"`
	BookingID      string `json:"booking_id"`
	AttendanceDate string `json:"attendance_date"`
	QRCode         string `json:"qr_code"`
	QRCodeData     string `json:"qr_code_data"`
	Status         string `json:"status"`
	CheckInTime    string `json:"check_in_time,omitempty"`
	CheckOutTime   string `json:"check_out_time,omitempty"`
	gDto.Metadata
}

func (r *AttendanceResponse) FromModel(model model.Attendance) {
	r.ID = model.ID
	r.UserID = model.UserID
	r.RoomID = model.RoomID
	r.BookingID = model.BookingID
	r.AttendanceDate = model.AttendanceDate.Format(constant.DayFormat)
	r.QRCode = model.QRCode
	r.QRCodeData = model.QRCodeData
	r.Status = model.Status
	r.CheckInTime = deref(model.CheckInTime)
	r.CheckOutTime = deref(model.CheckOutTime)
	r.Metadata.FromModel(model.Metadata)
}

type GetAttendancesResponse struct {
	Attendances []AttendanceResponse `json:"attendances"`
	TotalPage   int                  `json:"total_page"`
	TotalData   int                  `json:"total_data"`
}

func (r *GetAttendancesResponse) FromModels(models []model.Attendance, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Attendances = make([]AttendanceResponse, len(models))
	for i, mod := range models {
		r.Attendances[i].FromModel(mod)
	}
}

type ScanResponse struct {
	AttendanceID string `json:"attendance_id"`
	BookingID    string `json:"booking_id"`
	Status       string `json:"status"`
	CheckInTime  string `json:"check_in_time"`
	// AlreadyCheckedIn is set when the scan did not change the record.
	AlreadyCheckedIn bool `json:"already_checked_in"`
}

func (r *ScanResponse) FromModel(model model.Attendance, already bool) {
	r.AttendanceID = model.ID
	r.BookingID = model.BookingID
	r.Status = model.Status
	r.CheckInTime = deref(model.CheckInTime)
	r.AlreadyCheckedIn = already
}

func deref(value *string) string {
	if value == nil {
		return constant.Empty
	}

	return *value
}
