package dto

import (
	"time"

	"elc/internal/domains/booking/model"
	"elc/shared"
	"elc/shared/constant"
	gDto "elc/shared/dto"
	gModel "elc/shared/model"
	"elc/shared/timeslot"
	"elc/shared/timezone"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type CreateBookingRequest struct {
	RoomID      string   `json:"room_id"      validate:"required"`
	BookingDate string   `json:"booking_date" validate:"required,isodate"`
	StartTime   string   `json:"start_time"   validate:"required,clock12h"`
	EndTime     string   `json:"end_time"     validate:"required,clock12h"`
	Purpose     string   `json:"purpose"      validate:"required,max=500"`
	Attendees   int      `json:"attendees"    validate:"omitempty,min=0"`
	Equipment   []string `json:"equipment"    validate:"omitempty,dive,max=50"`
}

// Date returns the booking day at midnight in the application timezone.
func (c *CreateBookingRequest) Date() (time.Time, error) {
	return timezone.ParseDay(c.BookingDate)
}

// ToModel builds a pending booking for user covering interval.
func (c *CreateBookingRequest) ToModel(user string, date time.Time, interval timeslot.Interval) model.Booking {
	now := timezone.Now()

	return model.Booking{
		ID:          uuid.NewString(),
		UserID:      user,
		RoomID:      c.RoomID,
		BookingDate: date,
		StartTime:   timeslot.FormatClock(interval.Start),
		EndTime:     timeslot.FormatClock(interval.End),
		StartMinute: interval.Start,
		EndMinute:   interval.End,
		Purpose:     c.Purpose,
		Attendees:   c.Attendees,
		Equipment:   pq.StringArray(dedupe(c.Equipment)),
		Status:      model.StatusPending,
		Metadata: gModel.NewMetadata(user, now),
	}
}

// StatusRequest carries the optional reason given when an approver or owner
// changes a booking's status.
type StatusRequest struct {
	Note string `json:"note" validate:"omitempty,max=500"`
}

type AvailabilityRequest struct {
	RoomID string `json:"room_id" validate:"required"`
	Date   string `json:"date"    validate:"required,isodate"`
}

type BookingResponse struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	RoomID      string   `json:"room_id"`
	BookingDate string   `json:"booking_date"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Purpose     string   `json:"purpose"`
	Attendees   int      `json:"attendees"`
	Equipment   []string `json:"equipment"`
	Status      string   `json:"status"`
	ApprovedBy  string   `json:"approved_by,omitempty"`
	StatusNote  string   `json:"status_note,omitempty"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.UserID = model.UserID
	r.RoomID = model.RoomID
	r.BookingDate = model.BookingDate.Format(constant.DayFormat)
	r.StartTime = model.StartTime
	r.EndTime = model.EndTime
	r.Purpose = model.Purpose
	r.Attendees = model.Attendees
	r.Equipment = []string(model.Equipment)
	r.Status = model.Status
	r.ApprovedBy = model.ApprovedBy
	r.StatusNote = model.StatusNote
	r.Metadata.FromModel(model.Metadata)

	if r.Equipment == nil {
		r.Equipment = []string{}
	}
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

// Slot is a blocked range of a room's day.
type Slot struct {
	BookingID string `json:"booking_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
}

type AvailabilityResponse struct {
	RoomID string `json:"room_id"`
	Date   string `json:"date"`
	Booked []Slot `json:"booked"`
}

func (r *AvailabilityResponse) FromModels(roomID, date string, models []model.Booking) {
	r.RoomID = roomID
	r.Date = date
	r.Booked = make([]Slot, 0, len(models))

	for _, mod := range models {
		if !mod.Blocking() {
			continue
		}

		r.Booked = append(r.Booked, Slot{
			BookingID: mod.ID,
			StartTime: mod.StartTime,
			EndTime:   mod.EndTime,
			Status:    mod.Status,
		})
	}
}

type SweepResponse struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	res := make([]string, 0, len(values))

	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}
		res = append(res, v)
	}

	return res
}
