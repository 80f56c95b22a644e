package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"elc/config"
	"elc/infras/otel/mocks"
	attendanceMocks "elc/internal/domains/attendance/mocks"
	"elc/internal/domains/attendance/model"
	"elc/internal/domains/attendance/qr"
	"elc/internal/domains/attendance/service"
	bookingMocks "elc/internal/domains/booking/mocks"
	bookingModel "elc/internal/domains/booking/model"
	"elc/internal/events"
	cacheMocks "elc/shared/cache/mocks"
	"elc/shared/clock"
	"elc/shared/constant"
	gDto "elc/shared/dto"
	"elc/shared/failure"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	repo     *attendanceMocks.MockAttendance
	bookings *bookingMocks.MockBooking
	cache    *cacheMocks.MockRedisCache
	policy   qr.Policy
	codec    qr.Codec
	svc      service.Attendance
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	policy := qr.NewPolicy(&config.Config{})
	policy.Location = time.UTC
	policy.ImageSize = 64

	f := fixture{
		repo:     attendanceMocks.NewMockAttendance(ctrl),
		bookings: bookingMocks.NewMockBooking(ctrl),
		cache:    cacheMocks.NewMockRedisCache(ctrl),
		policy:   policy,
		codec:    qr.NewCodec(),
	}
	f.svc = service.New(f.repo, f.bookings, &config.Config{}, f.cache, mocks.NewOtel(),
		clock.NewManual(at(8, 0)), f.policy, f.codec)

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return f
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, 0, 0, time.UTC)
}

func asUser(id, role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, id)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

// issued returns the absent record of a 10:00 to 11:00 AM booking and the
// data its QR code carries.
func (f fixture) issued(t *testing.T) (model.Attendance, string) {
	t.Helper()

	payload, err := f.policy.NewPayload("b1", "owner", "room-1", at(0, 0), "10:00 AM", "11:00 AM")
	require.NoError(t, err)

	data, err := f.codec.Encode(payload)
	require.NoError(t, err)

	return model.Attendance{
		ID:             "att-1",
		UserID:         "owner",
		RoomID:         "room-1",
		BookingID:      "b1",
		AttendanceDate: at(0, 0),
		QRCodeData:     data,
		Status:         model.StatusAbsent,
	}, data
}

// booked expects the scan to look up booking b1 and find it in status.
func (f fixture) booked(status string) {
	f.bookings.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(bookingModel.Booking{ID: "b1", UserID: "owner", RoomID: "room-1", Status: status}, nil)
}

func TestAttendanceService_Scan(t *testing.T) {
	tests := []struct {
		name       string
		now        time.Time
		wantStatus string
		wantCheck  string
		wantCode   int
	}{
		{name: "early arrival is present", now: at(9, 56), wantStatus: model.StatusPresent, wantCheck: "9:56 AM"},
		{name: "within grace is present", now: at(10, 5), wantStatus: model.StatusPresent, wantCheck: "10:05 AM"},
		{name: "after grace is late", now: at(10, 7), wantStatus: model.StatusLate, wantCheck: "10:07 AM"},
		{name: "before window", now: at(9, 54), wantCode: http.StatusBadRequest},
		{name: "after booking end", now: at(11, 6), wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			record, data := f.issued(t)

			if tt.wantCode == 0 {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(record, nil)
				f.booked(bookingModel.StatusConfirmed)
				f.repo.EXPECT().
					UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, filter gDto.FilterGroup) (int64, error) {
						_, args := filter.GetWhereClause()
						assert.Equal(t, model.StatusAbsent, args["current_status"])
						assert.Equal(t, tt.wantStatus, fields[model.FieldStatus])
						assert.Equal(t, tt.wantCheck, fields[model.FieldCheckInTime])

						return 1, nil
					})
			}

			res, err := f.svc.Scan(asUser("owner", constant.RoleStudent), data, tt.now)

			time.Sleep(10 * time.Millisecond)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrQRExpiredOrInvalid)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantCheck, res.CheckInTime)
			assert.False(t, res.AlreadyCheckedIn)
		})
	}
}

func TestAttendanceService_ScanTwiceKeepsCheckInTime(t *testing.T) {
	f := newFixture(t)
	record, data := f.issued(t)

	checkIn := "9:58 AM"
	record.Status = model.StatusPresent
	record.CheckInTime = &checkIn

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(record, nil)
	f.booked(bookingModel.StatusConfirmed)

	res, err := f.svc.Scan(asUser("owner", constant.RoleStudent), data, at(10, 20))
	require.NoError(t, err)
	assert.True(t, res.AlreadyCheckedIn)
	assert.Equal(t, model.StatusPresent, res.Status)
	assert.Equal(t, "9:58 AM", res.CheckInTime)
}

func TestAttendanceService_ScanLosingRaceReturnsStoredRecord(t *testing.T) {
	f := newFixture(t)
	record, data := f.issued(t)

	winner := record
	checkIn := "9:57 AM"
	winner.Status = model.StatusPresent
	winner.CheckInTime = &checkIn

	gomock.InOrder(
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(record, nil),
		f.repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil),
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(winner, nil),
	)
	f.booked(bookingModel.StatusConfirmed)

	res, err := f.svc.Scan(asUser("owner", constant.RoleStudent), data, at(10, 7))
	require.NoError(t, err)
	assert.True(t, res.AlreadyCheckedIn)
	assert.Equal(t, model.StatusPresent, res.Status)
	assert.Equal(t, "9:57 AM", res.CheckInTime)
}

func TestAttendanceService_ScanChecksBooking(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		wantCode int
	}{
		{name: "confirmed", status: bookingModel.StatusConfirmed},
		{name: "completed inside the window", status: bookingModel.StatusCompleted},
		{name: "rejected", status: bookingModel.StatusRejected, wantCode: http.StatusBadRequest},
		{name: "back to pending", status: bookingModel.StatusPending, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			record, data := f.issued(t)

			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(record, nil)
			f.booked(tt.status)

			if tt.wantCode == 0 {
				f.repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
			}

			res, err := f.svc.Scan(asUser("owner", constant.RoleStudent), data, at(10, 0))

			time.Sleep(10 * time.Millisecond)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrQRExpiredOrInvalid)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, model.StatusPresent, res.Status)
		})
	}
}

func TestAttendanceService_ScanRejects(t *testing.T) {
	t.Run("malformed data", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Scan(asUser("owner", constant.RoleStudent), "{not json", at(10, 0))
		assert.ErrorIs(t, err, model.ErrQRExpiredOrInvalid)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newFixture(t)
		_, data := f.issued(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Attendance{}, nil)

		_, err := f.svc.Scan(asUser("owner", constant.RoleStudent), data, at(10, 0))
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("data differs from the issued code", func(t *testing.T) {
		f := newFixture(t)
		record, _ := f.issued(t)

		forged, err := f.policy.NewPayload("b1", "owner", "room-1", at(0, 0), "10:00 AM", "6:00 PM")
		require.NoError(t, err)

		data, err := f.codec.Encode(forged)
		require.NoError(t, err)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(record, nil)

		_, err = f.svc.Scan(asUser("owner", constant.RoleStudent), data, at(10, 0))
		assert.ErrorIs(t, err, model.ErrQRExpiredOrInvalid)
	})

	t.Run("someone else's code", func(t *testing.T) {
		f := newFixture(t)
		record, data := f.issued(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(record, nil)

		_, err := f.svc.Scan(asUser("intruder", constant.RoleStudent), data, at(10, 0))
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("booking deleted after issue", func(t *testing.T) {
		f := newFixture(t)
		record, data := f.issued(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(record, nil)
		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingModel.Booking{}, nil)

		_, err := f.svc.Scan(asUser("owner", constant.RoleStudent), data, at(10, 0))
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("cancelled booking", func(t *testing.T) {
		f := newFixture(t)
		record, data := f.issued(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(record, nil)
		f.booked(bookingModel.StatusCancelled)

		_, err := f.svc.Scan(asUser("owner", constant.RoleStudent), data, at(10, 0))
		assert.ErrorIs(t, err, model.ErrQRExpiredOrInvalid)
	})

	t.Run("staff scans for the attendee", func(t *testing.T) {
		f := newFixture(t)
		record, data := f.issued(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(record, nil)
		f.booked(bookingModel.StatusConfirmed)
		f.repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)

		res, err := f.svc.Scan(asUser("admin-1", constant.RoleAdmin), data, at(10, 0))

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, model.StatusPresent, res.Status)
	})
}

func TestAttendanceService_GenerateQR(t *testing.T) {
	confirmed := bookingModel.Booking{
		ID:          "b1",
		UserID:      "owner",
		RoomID:      "room-1",
		BookingDate: at(0, 0),
		StartTime:   "10:00 AM",
		EndTime:     "11:00 AM",
		Status:      bookingModel.StatusConfirmed,
	}

	t.Run("issues a new record", func(t *testing.T) {
		f := newFixture(t)

		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed, nil)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Attendance{}, nil)
		f.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, attendance model.Attendance) error {
				assert.Equal(t, model.StatusAbsent, attendance.Status)
				assert.Equal(t, "b1", attendance.BookingID)
				assert.Contains(t, attendance.QRCode, "data:image/png;base64,")

				payload, err := qr.NewCodec().Decode(attendance.QRCodeData)
				require.NoError(t, err)
				assert.Equal(t, at(11, 0), payload.ExpiresAt)

				return nil
			})

		res, err := f.svc.GenerateQR(asUser("owner", constant.RoleStudent), "b1")

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, model.StatusAbsent, res.Status)
		assert.Equal(t, "2025-03-10", res.AttendanceDate)
	})

	t.Run("returns the existing record", func(t *testing.T) {
		f := newFixture(t)
		record, _ := f.issued(t)

		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed, nil)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(record, nil)

		res, err := f.svc.GenerateQR(asUser("owner", constant.RoleStudent), "b1")
		require.NoError(t, err)
		assert.Equal(t, "att-1", res.ID)
	})

	t.Run("concurrent issue reads the stored record", func(t *testing.T) {
		f := newFixture(t)
		record, _ := f.issued(t)

		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed, nil)

		gomock.InOrder(
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Attendance{}, nil),
			f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
				Return(fmt.Errorf("failed to insert data (attendance): %w", &pq.Error{Code: constant.PqErrorCodeUniqueViolation})),
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(record, nil),
		)

		res, err := f.svc.GenerateQR(asUser("owner", constant.RoleStudent), "b1")
		require.NoError(t, err)
		assert.Equal(t, "att-1", res.ID)
	})

	t.Run("pending booking", func(t *testing.T) {
		f := newFixture(t)

		pending := confirmed
		pending.Status = bookingModel.StatusPending

		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pending, nil)

		_, err := f.svc.GenerateQR(asUser("owner", constant.RoleStudent), "b1")
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("another user's booking", func(t *testing.T) {
		f := newFixture(t)

		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed, nil)

		_, err := f.svc.GenerateQR(asUser("intruder", constant.RoleStudent), "b1")
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("missing booking", func(t *testing.T) {
		f := newFixture(t)

		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingModel.Booking{}, nil)

		_, err := f.svc.GenerateQR(asUser("owner", constant.RoleStudent), "b1")
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestAttendanceService_CheckOut(t *testing.T) {
	checkedIn := func(t *testing.T, f fixture) model.Attendance {
		record, _ := f.issued(t)
		checkIn := "9:58 AM"
		record.Status = model.StatusPresent
		record.CheckInTime = &checkIn

		return record
	}

	t.Run("leaving early", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(checkedIn(t, f), nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, model.StatusEarlyDeparture, fields[model.FieldStatus])
				assert.Equal(t, "10:30 AM", fields[model.FieldCheckOutTime])

				return nil
			})

		res, err := f.svc.CheckOut(asUser("owner", constant.RoleStudent), "att-1", at(10, 30))

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, model.StatusEarlyDeparture, res.Status)
		assert.Equal(t, "10:30 AM", res.CheckOutTime)
	})

	t.Run("leaving at the end", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(checkedIn(t, f), nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.NotContains(t, fields, model.FieldStatus)

				return nil
			})

		res, err := f.svc.CheckOut(asUser("owner", constant.RoleStudent), "att-1", at(11, 0))

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, model.StatusPresent, res.Status)
	})

	t.Run("not checked in", func(t *testing.T) {
		f := newFixture(t)
		record, _ := f.issued(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(record, nil)

		_, err := f.svc.CheckOut(asUser("owner", constant.RoleStudent), "att-1", at(10, 30))
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("already checked out", func(t *testing.T) {
		f := newFixture(t)
		record := checkedIn(t, f)
		checkOut := "10:45 AM"
		record.CheckOutTime = &checkOut

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(record, nil)

		res, err := f.svc.CheckOut(asUser("owner", constant.RoleStudent), "att-1", at(10, 50))
		require.NoError(t, err)
		assert.Equal(t, "10:45 AM", res.CheckOutTime)
	})
}

func TestAttendanceService_HandleBookingEvent(t *testing.T) {
	approved := events.BookingEvent{
		Type:      events.BookingApproved,
		BookingID: "b1",
		UserID:    "owner",
		RoomID:    "room-1",
		Date:      "2025-03-10",
		StartTime: "10:00 AM",
		EndTime:   "11:00 AM",
		Status:    bookingModel.StatusConfirmed,
	}

	t.Run("approval issues the record", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Attendance{}, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		err := f.svc.HandleBookingEvent(context.Background(), approved)

		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
	})

	t.Run("approval with a malformed date is skipped", func(t *testing.T) {
		f := newFixture(t)

		event := approved
		event.Date = "tomorrow"

		assert.NoError(t, f.svc.HandleBookingEvent(context.Background(), event))
	})

	t.Run("cancellation drops unscanned records", func(t *testing.T) {
		f := newFixture(t)

		event := approved
		event.Type = events.BookingCancelled

		f.repo.EXPECT().
			Delete(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) error {
				_, args := filter.GetWhereClause()
				assert.Equal(t, "b1", args[model.FieldBookingID])
				assert.Equal(t, model.StatusAbsent, args["current_status"])

				return nil
			})

		err := f.svc.HandleBookingEvent(context.Background(), event)

		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
	})

	t.Run("created events are ignored", func(t *testing.T) {
		f := newFixture(t)

		event := approved
		event.Type = events.BookingCreated

		assert.NoError(t, f.svc.HandleBookingEvent(context.Background(), event))
	})

	t.Run("storage failure surfaces", func(t *testing.T) {
		f := newFixture(t)

		event := approved
		event.Type = events.BookingRejected

		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

		assert.Error(t, f.svc.HandleBookingEvent(context.Background(), event))
	})
}

func TestAttendanceService_Get(t *testing.T) {
	f := newFixture(t)
	record, _ := f.issued(t)

	f.cache.EXPECT().Get(gomock.Any(), "attendance:get:att-1", gomock.Any()).Return(errors.New("cache miss")).Times(2)
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(record, nil).Times(2)

	res, err := f.svc.Get(asUser("owner", constant.RoleStudent), "att-1")

	time.Sleep(10 * time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, "b1", res.BookingID)

	_, err = f.svc.Get(asUser("intruder", constant.RoleStudent), "att-1")
	assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
}

func TestAttendanceService_Delete(t *testing.T) {
	f := newFixture(t)
	record, _ := f.issued(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(record, nil)
	f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

	err := f.svc.Delete(asUser("admin-1", constant.RoleAdmin), "att-1")

	time.Sleep(10 * time.Millisecond)

	assert.NoError(t, err)
}
