package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"elc/config"
	"elc/infras/otel/mocks"
	bookingMocks "elc/internal/domains/booking/mocks"
	"elc/internal/domains/booking/model"
	"elc/internal/domains/booking/model/dto"
	"elc/internal/domains/booking/repository"
	"elc/internal/domains/booking/service"
	roomMocks "elc/internal/domains/room/mocks"
	roomModel "elc/internal/domains/room/model"
	"elc/internal/events"
	eventMocks "elc/internal/events/mocks"
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
	repo      *bookingMocks.MockBooking
	rooms     *roomMocks.MockRoom
	cache     *cacheMocks.MockRedisCache
	publisher *eventMocks.MockPublisher
	clock     *clock.Manual
	svc       service.Booking
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	f := fixture{
		repo:      bookingMocks.NewMockBooking(ctrl),
		rooms:     roomMocks.NewMockRoom(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
		publisher: eventMocks.NewMockPublisher(ctrl),
		clock:     clock.NewManual(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)),
	}
	f.svc = service.New(f.repo, f.rooms, cfg, f.cache, mocks.NewOtel(), f.clock, f.publisher)

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.publisher.EXPECT().PublishBooking(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return f
}

func asUser(id, role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, id)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

func activeRoom() roomModel.Room {
	return roomModel.Room{ID: "room-1", Name: "Hall A", Capacity: 30, Active: true}
}

// guardWith runs the guard handed to CreateIfFree against existing, the way
// the repository does inside its transaction.
func guardWith(existing ...model.Booking) func(context.Context, model.Booking, repository.Guard) error {
	return func(_ context.Context, _ model.Booking, guard repository.Guard) error {
		return guard(existing)
	}
}

func TestBookingService_Create(t *testing.T) {
	existing := []model.Booking{
		{ID: "b1", RoomID: "room-1", StartTime: "9:00 AM", EndTime: "10:00 AM", Status: model.StatusPending},
		{ID: "b2", RoomID: "room-1", StartTime: "2:00 PM", EndTime: "3:00 PM", Status: model.StatusConfirmed},
	}

	request := func(start, end string) dto.CreateBookingRequest {
		return dto.CreateBookingRequest{
			RoomID:      "room-1",
			BookingDate: "2025-03-10",
			StartTime:   start,
			EndTime:     end,
			Purpose:     "Study group",
			Attendees:   10,
		}
	}

	tests := []struct {
		name     string
		req      dto.CreateBookingRequest
		setup    func(f fixture)
		wantCode int
	}{
		{
			name: "back to back with a pending booking",
			req:  request("10:00 AM", "11:00 AM"),
			setup: func(f fixture) {
				f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeRoom(), nil)
				f.repo.EXPECT().CreateIfFree(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(guardWith(existing...))
			},
		},
		{
			name: "overlaps a pending booking",
			req:  request("9:30 AM", "10:30 AM"),
			setup: func(f fixture) {
				f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeRoom(), nil)
				f.repo.EXPECT().CreateIfFree(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(guardWith(existing...))
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "overlaps a confirmed booking",
			req:  request("1:30 PM", "2:30 PM"),
			setup: func(f fixture) {
				f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeRoom(), nil)
				f.repo.EXPECT().CreateIfFree(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(guardWith(existing...))
			},
			wantCode: http.StatusConflict,
		},
		{
			name:     "end before start",
			req:      request("11:00 AM", "10:00 AM"),
			setup:    func(fixture) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "end equals start",
			req:      request("11:00 AM", "11:00 AM"),
			setup:    func(fixture) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed clock",
			req:      request("25:00 PM", "11:00 AM"),
			setup:    func(fixture) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "slot already started",
			req:      request("7:00 AM", "9:00 AM"),
			setup:    func(fixture) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "earlier day",
			req: func() dto.CreateBookingRequest {
				req := request("10:00 AM", "11:00 AM")
				req.BookingDate = "2025-03-09"

				return req
			}(),
			setup:    func(fixture) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "later the same morning",
			req:  request("8:00 AM", "9:00 AM"),
			setup: func(f fixture) {
				f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeRoom(), nil)
				f.repo.EXPECT().CreateIfFree(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(guardWith())
			},
		},
		{
			name: "inactive room",
			req:  request("10:00 AM", "11:00 AM"),
			setup: func(f fixture) {
				room := activeRoom()
				room.Active = false
				f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "over capacity",
			req: func() dto.CreateBookingRequest {
				req := request("10:00 AM", "11:00 AM")
				req.Attendees = 31

				return req
			}(),
			setup: func(f fixture) {
				f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeRoom(), nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "storage failure",
			req:  request("10:00 AM", "11:00 AM"),
			setup: func(f fixture) {
				f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeRoom(), nil)
				f.repo.EXPECT().CreateIfFree(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))
			},
			wantCode: http.StatusInternalServerError,
		},
		{
			name: "room deleted before insert",
			req:  request("10:00 AM", "11:00 AM"),
			setup: func(f fixture) {
				f.rooms.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeRoom(), nil)
				f.repo.EXPECT().CreateIfFree(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(&pq.Error{Code: constant.PqErrorCodeFkViolation})
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			res, err := f.svc.Create(asUser("user-1", constant.RoleStudent), tt.req)

			time.Sleep(10 * time.Millisecond)

			if tt.wantCode == 0 {
				require.NoError(t, err)
				assert.Equal(t, model.StatusPending, res.Status)
				assert.Equal(t, "user-1", res.UserID)
				assert.Equal(t, "2025-03-10", res.BookingDate)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestBookingService_CreateErrorsAreTyped(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(asUser("user-1", constant.RoleStudent), dto.CreateBookingRequest{
		RoomID: "room-1", BookingDate: "2025-03-10", StartTime: "3:00 PM", EndTime: "1:00 PM",
	})

	assert.ErrorIs(t, err, model.ErrInvalidTimeRange)
}

func TestBookingService_Transitions(t *testing.T) {
	pending := model.Booking{ID: "b1", UserID: "owner", Status: model.StatusPending, BookingDate: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)}
	confirmed := pending
	confirmed.Status = model.StatusConfirmed
	rejected := pending
	rejected.Status = model.StatusRejected

	tests := []struct {
		name     string
		ctx      context.Context
		current  model.Booking
		call     func(svc service.Booking, ctx context.Context) error
		wantCode int
		check    func(t *testing.T, fields map[string]any)
	}{
		{
			name:    "admin approves pending",
			ctx:     asUser("admin-1", constant.RoleAdmin),
			current: pending,
			call: func(svc service.Booking, ctx context.Context) error {
				return svc.Approve(ctx, "b1", dto.StatusRequest{Note: "ok"})
			},
			check: func(t *testing.T, fields map[string]any) {
				assert.Equal(t, model.StatusConfirmed, fields[model.FieldStatus])
				assert.Equal(t, "admin-1", fields[model.FieldApprovedBy])
				assert.Equal(t, "ok", fields[model.FieldStatusNote])
			},
		},
		{
			name:    "admin rejects pending",
			ctx:     asUser("admin-1", constant.RoleAdmin),
			current: pending,
			call: func(svc service.Booking, ctx context.Context) error {
				return svc.Reject(ctx, "b1", dto.StatusRequest{})
			},
			check: func(t *testing.T, fields map[string]any) {
				assert.Equal(t, model.StatusRejected, fields[model.FieldStatus])
				assert.NotContains(t, fields, model.FieldStatusNote)
			},
		},
		{
			name:    "student cannot approve",
			ctx:     asUser("owner", constant.RoleStudent),
			current: pending,
			call: func(svc service.Booking, ctx context.Context) error {
				return svc.Approve(ctx, "b1", dto.StatusRequest{})
			},
			wantCode: http.StatusForbidden,
		},
		{
			name:    "rejected booking cannot be approved",
			ctx:     asUser("admin-1", constant.RoleAdmin),
			current: rejected,
			call: func(svc service.Booking, ctx context.Context) error {
				return svc.Approve(ctx, "b1", dto.StatusRequest{})
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:    "owner cancels confirmed",
			ctx:     asUser("owner", constant.RoleStudent),
			current: confirmed,
			call: func(svc service.Booking, ctx context.Context) error {
				return svc.Cancel(ctx, "b1", dto.StatusRequest{Note: "plans changed"})
			},
			check: func(t *testing.T, fields map[string]any) {
				assert.Equal(t, model.StatusCancelled, fields[model.FieldStatus])
				assert.NotContains(t, fields, model.FieldApprovedBy)
			},
		},
		{
			name:    "another student cannot cancel",
			ctx:     asUser("intruder", constant.RoleStudent),
			current: confirmed,
			call: func(svc service.Booking, ctx context.Context) error {
				return svc.Cancel(ctx, "b1", dto.StatusRequest{})
			},
			wantCode: http.StatusForbidden,
		},
		{
			name:    "admin cancels someone else's booking",
			ctx:     asUser("admin-1", constant.RoleAdmin),
			current: pending,
			call: func(svc service.Booking, ctx context.Context) error {
				return svc.Cancel(ctx, "b1", dto.StatusRequest{})
			},
			check: func(t *testing.T, fields map[string]any) {
				assert.Equal(t, "admin-1", fields[constant.FieldModifiedBy])
			},
		},
		{
			name:    "cancelled booking cannot be cancelled again",
			ctx:     asUser("owner", constant.RoleStudent),
			current: model.Booking{ID: "b1", UserID: "owner", Status: model.StatusCancelled},
			call: func(svc service.Booking, ctx context.Context) error {
				return svc.Cancel(ctx, "b1", dto.StatusRequest{})
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:    "missing booking",
			ctx:     asUser("admin-1", constant.RoleAdmin),
			current: model.Booking{},
			call: func(svc service.Booking, ctx context.Context) error {
				return svc.Approve(ctx, "b1", dto.StatusRequest{})
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.current, nil)

			if tt.wantCode == 0 {
				f.repo.EXPECT().
					UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, filter gDto.FilterGroup) (int64, error) {
						where, args := filter.GetWhereClause()
						assert.Contains(t, where, ":current_status")
						assert.Equal(t, tt.current.Status, args["current_status"])

						tt.check(t, fields)

						return 1, nil
					})
			}

			err := tt.call(f.svc, tt.ctx)

			time.Sleep(10 * time.Millisecond)

			if tt.wantCode == 0 {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestBookingService_TransitionPublishesEvent(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := bookingMocks.NewMockBooking(ctrl)
	redis := cacheMocks.NewMockRedisCache(ctrl)
	publisher := eventMocks.NewMockPublisher(ctrl)
	svc := service.New(repo, roomMocks.NewMockRoom(ctrl), &config.Config{}, redis, mocks.NewOtel(),
		clock.NewManual(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)), publisher)

	redis.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	redis.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: "b1", UserID: "owner", RoomID: "room-1", Status: model.StatusPending}, nil)
	repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)

	published := make(chan events.BookingEvent, 1)
	publisher.EXPECT().
		PublishBooking(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, batch ...events.BookingEvent) error {
			published <- batch[0]

			return nil
		})

	require.NoError(t, svc.Approve(asUser("admin-1", constant.RoleAdmin), "b1", dto.StatusRequest{}))

	select {
	case event := <-published:
		assert.Equal(t, events.BookingApproved, event.Type)
		assert.Equal(t, "b1", event.BookingID)
		assert.Equal(t, model.StatusConfirmed, event.Status)
	case <-time.After(time.Second):
		t.Fatal("booking event was not published")
	}
}

func TestBookingService_TransitionLosesRace(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := bookingMocks.NewMockBooking(ctrl)
	redis := cacheMocks.NewMockRedisCache(ctrl)
	publisher := eventMocks.NewMockPublisher(ctrl) // no publish expected
	svc := service.New(repo, roomMocks.NewMockRoom(ctrl), &config.Config{}, redis, mocks.NewOtel(),
		clock.NewManual(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)), publisher)

	redis.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	// loaded as pending, cancelled by someone else before the approval is written
	repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: "b1", UserID: "owner", RoomID: "room-1", Status: model.StatusPending}, nil)
	repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)

	err := svc.Approve(asUser("admin-1", constant.RoleAdmin), "b1", dto.StatusRequest{})

	time.Sleep(10 * time.Millisecond)

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrStatusChanged)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestBookingService_Get(t *testing.T) {
	t.Run("owner reads own booking", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), "booking:get:b1", gomock.Any()).Return(errors.New("cache miss"))
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: "b1", UserID: "owner"}, nil)

		res, err := f.svc.Get(asUser("owner", constant.RoleStudent), "b1")

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, "b1", res.ID)
	})

	t.Run("cached booking of another user is restricted", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().
			Get(gomock.Any(), "booking:get:b1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, dest any) error {
				dest.(*dto.BookingResponse).UserID = "owner"

				return nil
			})

		_, err := f.svc.Get(asUser("intruder", constant.RoleStudent), "b1")
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("approver reads any booking", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: "b1", UserID: "owner"}, nil)

		_, err := f.svc.Get(asUser("admin-1", constant.RoleAdmin), "b1")

		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
	})
}

func TestBookingService_SweepCompleted(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	confirmed := []model.Booking{
		{ID: "ends-at-ten", BookingDate: day, StartTime: "9:00 AM", EndTime: "10:00 AM", Status: model.StatusConfirmed},
		{ID: "ends-later", BookingDate: day, StartTime: "9:30 AM", EndTime: "10:30 AM", Status: model.StatusConfirmed},
		{ID: "ended-early", BookingDate: day, StartTime: "7:00 AM", EndTime: "8:00 AM", Status: model.StatusConfirmed},
		{ID: "legacy-text", BookingDate: day, StartTime: "0800", EndTime: "0900", EndMinute: 540, Status: model.StatusConfirmed},
	}

	f := newFixture(t)
	asOf := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	f.repo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
			_, args := filter.GetWhereClause()
			assert.Equal(t, "2025-03-10", args[model.FieldBookingDate])
			assert.Equal(t, model.StatusConfirmed, args[model.FieldStatus])

			return confirmed, nil
		})

	var completed []string

	f.repo.EXPECT().
		UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fields map[string]any, filter gDto.FilterGroup) (int64, error) {
			_, args := filter.GetWhereClause()
			assert.Equal(t, model.StatusCompleted, fields[model.FieldStatus])
			assert.Equal(t, model.StatusConfirmed, args["current_status"])

			completed = append(completed, args[model.FieldID].(string))

			return 1, nil
		}).
		Times(3)

	count, err := f.svc.SweepCompleted(context.Background(), asOf)

	time.Sleep(10 * time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.ElementsMatch(t, []string{"ends-at-ten", "ended-early", "legacy-text"}, completed)
}

// bookingTable backs the repository mock with rows whose status changes
// the way guarded updates change them in the database.
type bookingTable struct {
	rows    []*model.Booking
	updates int
}

func (b *bookingTable) serve(repo *bookingMocks.MockBooking) {
	repo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
			_, args := filter.GetWhereClause()

			var matched []model.Booking

			for _, row := range b.rows {
				if row.Status == args[model.FieldStatus] {
					matched = append(matched, *row)
				}
			}

			return matched, nil
		}).
		AnyTimes()

	repo.EXPECT().
		UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fields map[string]any, filter gDto.FilterGroup) (int64, error) {
			_, args := filter.GetWhereClause()
			b.updates++

			for _, row := range b.rows {
				if row.ID == args[model.FieldID] && row.Status == args["current_status"] {
					row.Status = fields[model.FieldStatus].(string)

					return 1, nil
				}
			}

			return 0, nil
		}).
		AnyTimes()
}

func TestBookingService_SweepCompletedIsIdempotent(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	table := &bookingTable{rows: []*model.Booking{
		{ID: "morning", BookingDate: day, StartTime: "9:00 AM", EndTime: "10:00 AM", Status: model.StatusConfirmed},
		{ID: "noon", BookingDate: day, StartTime: "11:00 AM", EndTime: "12:00 PM", Status: model.StatusConfirmed},
		{ID: "evening", BookingDate: day, StartTime: "5:00 PM", EndTime: "6:00 PM", Status: model.StatusConfirmed},
	}}

	f := newFixture(t)
	table.serve(f.repo)

	asOf := time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)

	first, err := f.svc.SweepCompleted(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, 2, first)
	assert.Equal(t, 2, table.updates)

	second, err := f.svc.SweepCompleted(context.Background(), asOf)
	require.NoError(t, err)
	assert.Zero(t, second)
	assert.Equal(t, 2, table.updates, "second sweep must not write")

	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, model.StatusCompleted, table.rows[0].Status)
	assert.Equal(t, model.StatusCompleted, table.rows[1].Status)
	assert.Equal(t, model.StatusConfirmed, table.rows[2].Status)
}

func TestBookingService_SweepCompletedAtTheEndMinute(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	table := &bookingTable{rows: []*model.Booking{
		{ID: "b1", BookingDate: day, StartTime: "12:00 PM", EndTime: "1:00 PM", Status: model.StatusConfirmed},
	}}

	f := newFixture(t)
	table.serve(f.repo)

	count, err := f.svc.SweepCompleted(context.Background(), time.Date(2025, 3, 10, 12, 59, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, model.StatusConfirmed, table.rows[0].Status)

	count, err = f.svc.SweepCompleted(context.Background(), time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, model.StatusCompleted, table.rows[0].Status)

	time.Sleep(10 * time.Millisecond)
}

func TestBookingService_SweepSkipsRowsTakenMeanwhile(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	f.repo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Booking{{ID: "b1", BookingDate: day, EndTime: "9:00 AM", Status: model.StatusConfirmed}}, nil)
	f.repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)

	count, err := f.svc.SweepCompleted(context.Background(), time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBookingService_Availability(t *testing.T) {
	t.Run("today sweeps before listing", func(t *testing.T) {
		f := newFixture(t)

		f.rooms.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		gomock.InOrder(
			f.repo.EXPECT().
				GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
				Return([]model.Booking{{ID: "done", EndTime: "7:30 AM", Status: model.StatusConfirmed}}, nil),
			f.repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil),
			f.repo.EXPECT().
				GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
					assert.Equal(t, model.FieldStartMinute, params.SortBy)

					return []model.Booking{{ID: "b1", StartTime: "9:00 AM", EndTime: "10:00 AM", Status: model.StatusPending}}, nil
				}),
		)

		res, err := f.svc.Availability(asUser("user-1", constant.RoleStudent), dto.AvailabilityRequest{RoomID: "room-1", Date: "2025-03-10"})

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		require.Len(t, res.Booked, 1)
		assert.Equal(t, "9:00 AM", res.Booked[0].StartTime)
	})

	t.Run("another day does not sweep", func(t *testing.T) {
		f := newFixture(t)

		f.rooms.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

		res, err := f.svc.Availability(asUser("user-1", constant.RoleStudent), dto.AvailabilityRequest{RoomID: "room-1", Date: "2025-03-11"})
		require.NoError(t, err)
		assert.Empty(t, res.Booked)
	})

	t.Run("unknown room", func(t *testing.T) {
		f := newFixture(t)

		f.rooms.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		_, err := f.svc.Availability(asUser("user-1", constant.RoleStudent), dto.AvailabilityRequest{RoomID: "nope", Date: "2025-03-11"})
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestBookingService_Delete(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{ID: "b1"}, nil)
	f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

	err := f.svc.Delete(asUser("admin-1", constant.RoleAdmin), "b1")

	time.Sleep(10 * time.Millisecond)

	assert.NoError(t, err)
}

func TestBookingService_GetAll(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Booking{{ID: "b1"}}, nil)

	res, err := f.svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})

	time.Sleep(10 * time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalData)
}
