package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"elc/config"
	"elc/infras/otel"
	"elc/internal/domains/booking/model"
	"elc/internal/domains/booking/model/dto"
	"elc/internal/domains/booking/repository"
	roomModel "elc/internal/domains/room/model"
	roomRepo "elc/internal/domains/room/repository"
	"elc/internal/events"
	"elc/permissions"
	"elc/shared"
	"elc/shared/cache"
	"elc/shared/clock"
	"elc/shared/constant"
	gDto "elc/shared/dto"
	"elc/shared/failure"
	gRepo "elc/shared/repository"
	"elc/shared/timeslot"
	"elc/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	Approve(ctx context.Context, id string, req dto.StatusRequest) error
	Reject(ctx context.Context, id string, req dto.StatusRequest) error
	Cancel(ctx context.Context, id string, req dto.StatusRequest) error
	Delete(ctx context.Context, id string) error
	Availability(ctx context.Context, req dto.AvailabilityRequest) (dto.AvailabilityResponse, error)
	SweepCompleted(ctx context.Context, asOf time.Time) (int, error)
}

type serviceImpl struct {
	repo      repository.Booking
	roomRepo  roomRepo.Room
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
	clock     clock.Clock
	publisher events.Publisher
}

func New(repo repository.Booking, roomRepo roomRepo.Room, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, clk clock.Clock, publisher events.Publisher) Booking {
	return &serviceImpl{
		repo:      repo,
		roomRepo:  roomRepo,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
		clock:     clk,
		publisher: publisher,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	date, err := req.Date()
	if err != nil {
		return res, failure.BadRequestFromString("booking_date must be a date in YYYY-MM-DD format") // nolint:wrapcheck
	}

	interval, err := timeslot.NewInterval(req.StartTime, req.EndTime)
	if err != nil {
		return res, fmt.Errorf("%w: %w", model.ErrInvalidTimeRange, err)
	}

	if err = s.checkNotPast(date, interval); err != nil {
		return res, err
	}

	room, err := s.roomRepo.Get(ctx, shared.FilterByID(req.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if !room.Bookable() {
		return res, failure.NotFound("room not found") // nolint:wrapcheck
	}

	if room.Capacity > 0 && req.Attendees > room.Capacity {
		return res, failure.BadRequestFromString(fmt.Sprintf("attendees exceed room capacity of %d", room.Capacity)) // nolint:wrapcheck
	}

	booking := req.ToModel(user, date, interval)

	err = s.repo.CreateIfFree(ctx, booking, func(existing []model.Booking) error {
		return model.DetectConflict(interval, existing)
	})
	if errors.Is(err, model.ErrSlotConflict) {
		log.Info().Str("room_id", booking.RoomID).Str("slot", interval.String()).Msg("booking rejected by conflict guard")

		return res, err
	}

	if gRepo.IsForeignKeyViolation(err) {
		return res, failure.NotFound("room not found") // nolint:wrapcheck
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	res.FromModel(booking)

	s.afterWrite(ctx, booking.ID, newEvent(events.BookingCreated, booking, s.clock.Now()))

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	if cacheErr := s.cache.Get(ctx, cacheKey, &res); cacheErr == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter)

	if cacheErr := s.cache.Get(ctx, cacheKey, &res); cacheErr == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	principal := permissions.FromContext(ctx)
	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	if cacheErr := s.cache.Get(ctx, cacheKey, &res); cacheErr == nil {
		if !canView(principal, res.UserID) {
			return dto.BookingResponse{}, failure.ResourceRestrictedError
		}

		return res, nil
	}

	booking, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if !canView(principal, booking.UserID) {
		return res, failure.ResourceRestrictedError
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Approve(ctx context.Context, id string, req dto.StatusRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Approve")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.transition(ctx, id, model.StatusConfirmed, events.BookingApproved, req.Note, requireCapability(permissions.BookingApprove))
}

func (s *serviceImpl) Reject(ctx context.Context, id string, req dto.StatusRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Reject")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.transition(ctx, id, model.StatusRejected, events.BookingRejected, req.Note, requireCapability(permissions.BookingApprove))
}

func (s *serviceImpl) Cancel(ctx context.Context, id string, req dto.StatusRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.transition(ctx, id, model.StatusCancelled, events.BookingCancelled, req.Note, func(principal permissions.Principal, booking model.Booking) error {
		if principal.Owns(booking.UserID) || principal.Allows(permissions.BookingManage) {
			return nil
		}

		return failure.ResourceRestrictedError
	})
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete booking")

		return fmt.Errorf("failed to delete booking: %w", err)
	}

	s.afterWrite(ctx, id, newEvent(events.BookingDeleted, booking, s.clock.Now()))

	return nil
}

// Availability lists the blocked slots of a room on a date. Asking about
// today first completes the bookings whose end time has passed.
func (s *serviceImpl) Availability(ctx context.Context, req dto.AvailabilityRequest) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Availability")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	date, err := timezone.ParseDay(req.Date)
	if err != nil {
		return res, failure.BadRequestFromString("date must be a date in YYYY-MM-DD format") // nolint:wrapcheck
	}

	exist, err := s.roomRepo.Exist(ctx, shared.FilterByID(req.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if room exists")

		return res, fmt.Errorf("failed to check if room exists: %w", err)
	}

	if !exist {
		return res, failure.NotFound("room not found") // nolint:wrapcheck
	}

	now := s.now()
	if now.Format(constant.DayFormat) == req.Date {
		if _, err = s.SweepCompleted(ctx, now); err != nil {
			log.Warn().Err(err).Msg("failed to sweep completed bookings before availability")
		}
	}

	params := gDto.QueryParams{SortBy: model.FieldStartMinute, SortDir: gDto.SortDirAsc}

	models, err := s.repo.GetAll(ctx, params, repository.SameSlotFilter(req.RoomID, date))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room bookings")

		return res, fmt.Errorf("failed to get room bookings: %w", err)
	}

	res.FromModels(req.RoomID, req.Date, models)

	return res, nil
}

// SweepCompleted moves the confirmed bookings of asOf's day whose end time
// has passed to completed. Running it again is a no-op.
func (s *serviceImpl) SweepCompleted(ctx context.Context, asOf time.Time) (completed int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SweepCompleted")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	asOf = asOf.In(timezone.GetLocation())
	day := asOf.Format(constant.DayFormat)
	minute := timeslot.MinuteOfDay(asOf)

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldBookingDate, Operator: gDto.FilterOperatorEq, Value: day, Table: model.TableName},
			gDto.Filter{Field: model.FieldStatus, Operator: gDto.FilterOperatorEq, Value: model.StatusConfirmed, Table: model.TableName},
		},
	}

	confirmed, err := s.repo.GetAll(ctx, gDto.QueryParams{}, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get confirmed bookings")

		return 0, fmt.Errorf("failed to get confirmed bookings: %w", err)
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	done := make([]events.BookingEvent, 0, len(confirmed))

	for _, booking := range confirmed {
		end, parseErr := timeslot.ParseClock(booking.EndTime)
		if parseErr != nil {
			log.Warn().Err(parseErr).Str("booking_id", booking.ID).Msg("stored end time is malformed, using derived minute")

			end = booking.EndMinute
		}

		if minute < end {
			continue
		}

		fields := map[string]any{
			model.FieldStatus:        model.StatusCompleted,
			constant.FieldModifiedAt: asOf,
			constant.FieldModifiedBy: user,
		}

		updated, updateErr := s.repo.UpdateAffected(ctx, fields, statusFilter(booking.ID, model.StatusConfirmed))
		if updateErr != nil {
			log.Error().Err(updateErr).Str("booking_id", booking.ID).Msg("failed to complete booking")

			return completed, fmt.Errorf("failed to complete booking: %w", updateErr)
		}

		if updated == 0 {
			// completed by a concurrent sweep or cancelled meanwhile
			continue
		}

		booking.Status = model.StatusCompleted
		done = append(done, newEvent(events.BookingCompleted, booking, asOf))
		completed++
	}

	if completed > 0 {
		log.Info().Int("completed", completed).Str("date", day).Msg("swept completed bookings")

		ids := make([]string, len(done))
		for i, event := range done {
			ids[i] = event.BookingID
		}

		s.afterWrite(ctx, constant.Empty, done...)
		s.forget(ctx, ids...)
	}

	return completed, nil
}

type authorizer func(principal permissions.Principal, booking model.Booking) error

func requireCapability(capability permissions.Capability) authorizer {
	return func(principal permissions.Principal, _ model.Booking) error {
		if principal.Allows(capability) {
			return nil
		}

		return failure.ForbiddenError
	}
}

func (s *serviceImpl) transition(ctx context.Context, id, next, eventType, note string, authorize authorizer) error {
	principal := permissions.FromContext(ctx)

	booking, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err = authorize(principal, booking); err != nil {
		return err
	}

	if !booking.CanTransition(next) {
		return fmt.Errorf("%w: %s booking cannot become %s", model.ErrInvalidStatusTransition, booking.Status, next)
	}

	fields := map[string]any{
		model.FieldStatus:        next,
		constant.FieldModifiedAt: s.now(),
		constant.FieldModifiedBy: principal.UserID,
	}

	if note != constant.Empty {
		fields[model.FieldStatusNote] = note
	}

	if next == model.StatusConfirmed || next == model.StatusRejected {
		fields[model.FieldApprovedBy] = principal.UserID
	}

	updated, err := s.repo.UpdateAffected(ctx, fields, statusFilter(id, booking.Status))
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to update booking status")

		return fmt.Errorf("failed to update booking status: %w", err)
	}

	if updated == 0 {
		log.Info().Str("booking_id", id).Str("expected", booking.Status).Str("next", next).Msg("booking changed before its transition was written")
		s.forget(ctx, id)

		return fmt.Errorf("%w: booking is no longer %s", model.ErrStatusChanged, booking.Status)
	}

	booking.Status = next
	s.afterWrite(ctx, id, newEvent(eventType, booking, s.now()))

	return nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	return booking, nil
}

// checkNotPast rejects slots that start before the current minute.
func (s *serviceImpl) checkNotPast(date time.Time, interval timeslot.Interval) error {
	now := s.now()
	today := now.Format(constant.DayFormat)
	day := date.Format(constant.DayFormat)

	if day < today || (day == today && interval.Start < timeslot.MinuteOfDay(now)) {
		return failure.BadRequestFromString("cannot book a slot in the past") // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) now() time.Time {
	return s.clock.Now().In(timezone.GetLocation())
}

// afterWrite drops the cached views touched by a write and publishes the
// resulting events. Both run detached from the request.
func (s *serviceImpl) afterWrite(ctx context.Context, id string, batch ...events.BookingEvent) {
	if id != constant.Empty {
		s.forget(ctx, id)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)

		if err := s.publisher.PublishBooking(c, batch...); err != nil {
			log.Error().Err(err).Int("events", len(batch)).Msg("failed to publish booking events")
		}
	}()
}

func (s *serviceImpl) forget(ctx context.Context, ids ...string) {
	go func() {
		c := context.WithoutCancel(ctx)

		for _, id := range ids {
			if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
				log.Error().Err(err).Msg("failed to delete booking from cache")
			}
		}
	}()
}

func canView(principal permissions.Principal, owner string) bool {
	return principal.Owns(owner) ||
		principal.Allows(permissions.BookingManage) ||
		principal.Allows(permissions.BookingApprove)
}

// statusFilter matches the booking only while it still has status, so a
// concurrent transition is not overwritten. The status argument is renamed
// to keep it apart from the status being written.
func statusFilter(id, status string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Operator: gDto.FilterOperatorEq, Value: id, Table: model.TableName},
			gDto.Filter{
				ArgName:  "current_" + model.FieldStatus,
				Field:    model.FieldStatus,
				Operator: gDto.FilterOperatorEq,
				Value:    status,
				Table:    model.TableName,
			},
		},
	}
}

func newEvent(eventType string, booking model.Booking, at time.Time) events.BookingEvent {
	return events.BookingEvent{
		Type:      eventType,
		BookingID: booking.ID,
		UserID:    booking.UserID,
		RoomID:    booking.RoomID,
		Date:      booking.BookingDate.Format(constant.DayFormat),
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
		Status:    booking.Status,
		At:        at,
	}
}
