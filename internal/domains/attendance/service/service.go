package service

import (
	"context"
	"fmt"
	"time"

	"elc/config"
	"elc/infras/otel"
	"elc/internal/domains/attendance/model"
	"elc/internal/domains/attendance/model/dto"
	"elc/internal/domains/attendance/qr"
	"elc/internal/domains/attendance/repository"
	bookingModel "elc/internal/domains/booking/model"
	bookingRepo "elc/internal/domains/booking/repository"
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
	cacheGetAttendance    = "attendance:get"
	cacheGetAllAttendance = "attendance:gets"
	cacheCountAttendance  = "attendance:count"
)

type Attendance interface {
	GenerateQR(ctx context.Context, bookingID string) (dto.AttendanceResponse, error)
	Scan(ctx context.Context, qrData string, now time.Time) (dto.ScanResponse, error)
	CheckOut(ctx context.Context, id string, now time.Time) (dto.AttendanceResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetAttendancesResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.AttendanceResponse, error)
	Delete(ctx context.Context, id string) error
	HandleBookingEvent(ctx context.Context, event events.BookingEvent) error
}

type serviceImpl struct {
	repo        repository.Attendance
	bookingRepo bookingRepo.Booking
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
	clock       clock.Clock
	policy      qr.Policy
	codec       qr.Codec
}

func New(repo repository.Attendance, bookingRepo bookingRepo.Booking, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, clk clock.Clock, policy qr.Policy, codec qr.Codec) Attendance {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
		clock:       clk,
		policy:      policy,
		codec:       codec,
	}
}

// GenerateQR returns the attendance record of a confirmed booking, issuing
// it on first request.
func (s *serviceImpl) GenerateQR(ctx context.Context, bookingID string) (res dto.AttendanceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GenerateQR")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	principal := permissions.FromContext(ctx)

	booking, err := s.bookingRepo.Get(ctx, shared.FilterByID(bookingID, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	if !principal.Owns(booking.UserID) && !principal.Allows(permissions.AttendanceManage) {
		return res, failure.ResourceRestrictedError
	}

	if booking.Status != bookingModel.StatusConfirmed {
		return res, failure.BadRequestFromString("attendance qr codes are issued for confirmed bookings only") // nolint:wrapcheck
	}

	attendance, err := s.issue(ctx, principal.UserID, slotOf(booking))
	if err != nil {
		return res, err
	}

	res.FromModel(attendance)

	return res, nil
}

// Scan checks the caller in with the data read from a QR code. The booking
// must still be confirmed (or completed within the window). Scanning a record
// that is already checked in changes nothing.
func (s *serviceImpl) Scan(ctx context.Context, qrData string, now time.Time) (res dto.ScanResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Scan")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	payload, err := s.codec.Decode(qrData)
	if err != nil {
		return res, fmt.Errorf("%w: %w", model.ErrQRExpiredOrInvalid, err)
	}

	window, err := s.policy.Check(payload, now)
	if err != nil {
		log.Info().Str("booking_id", payload.BookingID).Time("now", now).Msg("qr scanned outside its window")

		return res, fmt.Errorf("%w: %w", model.ErrQRExpiredOrInvalid, err)
	}

	attendance, err := s.findBy(ctx, repository.ByBookingFilter(payload.BookingID))
	if err != nil {
		return res, err
	}

	if attendance.QRCodeData != qrData {
		return res, fmt.Errorf("%w: qr data does not match the issued code", model.ErrQRExpiredOrInvalid)
	}

	principal := permissions.FromContext(ctx)
	if !principal.Owns(attendance.UserID) && !principal.Allows(permissions.AttendanceManage) {
		return res, failure.ResourceRestrictedError
	}

	if err = s.checkBookingOpen(ctx, attendance.BookingID); err != nil {
		return res, err
	}

	if attendance.CheckedIn() {
		res.FromModel(attendance, true)

		return res, nil
	}

	status := model.StatusPresent
	if window.IsLate(now) {
		status = model.StatusLate
	}

	checkIn := timeslot.FormatTime(now.In(s.policy.Location))

	fields := map[string]any{
		model.FieldStatus:        status,
		model.FieldCheckInTime:   checkIn,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: principal.UserID,
	}

	updated, err := s.repo.UpdateAffected(ctx, fields, repository.UncheckedFilter(payload.BookingID))
	if err != nil {
		log.Error().Err(err).Msg("failed to record check in")

		return res, fmt.Errorf("failed to record check in: %w", err)
	}

	if updated == 0 {
		// another scan checked in first; its values stand
		stored, findErr := s.findBy(ctx, repository.ByBookingFilter(payload.BookingID))
		if findErr != nil {
			return res, findErr
		}

		if !stored.CheckedIn() {
			return res, fmt.Errorf("%w: attendance record changed during check in", model.ErrQRExpiredOrInvalid)
		}

		res.FromModel(stored, true)

		return res, nil
	}

	attendance.Status = status
	attendance.CheckInTime = &checkIn

	s.invalidate(ctx, attendance.ID)

	res.FromModel(attendance, false)

	return res, nil
}

// checkBookingOpen fails unless the booking behind a record still admits
// check in. Completed bookings are accepted since the scan window has
// already been checked against the booking's end.
func (s *serviceImpl) checkBookingOpen(ctx context.Context, bookingID string) error {
	booking, err := s.bookingRepo.Get(ctx, shared.FilterByID(bookingID, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return failure.NotFound("booking not found") // nolint:wrapcheck
	}

	switch booking.Status {
	case bookingModel.StatusConfirmed, bookingModel.StatusCompleted:
		return nil
	default:
		log.Info().Str("booking_id", bookingID).Str("status", booking.Status).Msg("qr scanned for a booking that is no longer confirmed")

		return fmt.Errorf("%w: booking is %s", model.ErrQRExpiredOrInvalid, booking.Status)
	}
}

// CheckOut records when the attendee left. Leaving before the booking ends
// marks the record as an early departure.
func (s *serviceImpl) CheckOut(ctx context.Context, id string, now time.Time) (res dto.AttendanceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CheckOut")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	attendance, err := s.findBy(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		return res, err
	}

	principal := permissions.FromContext(ctx)
	if !principal.Owns(attendance.UserID) && !principal.Allows(permissions.AttendanceManage) {
		return res, failure.ResourceRestrictedError
	}

	if attendance.CheckOutTime != nil {
		res.FromModel(attendance)

		return res, nil
	}

	if !attendance.CheckedIn() {
		return res, failure.BadRequestFromString("cannot check out before checking in") // nolint:wrapcheck
	}

	checkOut := timeslot.FormatTime(now.In(s.policy.Location))
	fields := map[string]any{
		model.FieldCheckOutTime:  checkOut,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: principal.UserID,
	}

	if s.leftEarly(attendance, now) {
		fields[model.FieldStatus] = model.StatusEarlyDeparture
		attendance.Status = model.StatusEarlyDeparture
	}

	if err = s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to record check out")

		return res, fmt.Errorf("failed to record check out: %w", err)
	}

	attendance.CheckOutTime = &checkOut

	s.invalidate(ctx, id)

	res.FromModel(attendance)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetAttendancesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllAttendance, req, filter)

	if cacheErr := s.cache.Get(ctx, cacheKey, &res); cacheErr == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for attendances")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get attendances")

		return res, fmt.Errorf("failed to get attendances: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save attendances to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountAttendance, req, filter)

	if cacheErr := s.cache.Get(ctx, cacheKey, &res); cacheErr == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count attendances")

		return res, fmt.Errorf("failed to count attendances: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save attendance count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.AttendanceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	principal := permissions.FromContext(ctx)
	cacheKey := shared.BuildCacheKey(cacheGetAttendance, id)

	if cacheErr := s.cache.Get(ctx, cacheKey, &res); cacheErr == nil {
		if !principal.Owns(res.UserID) && !principal.Allows(permissions.AttendanceManage) {
			return dto.AttendanceResponse{}, failure.ResourceRestrictedError
		}

		return res, nil
	}

	attendance, err := s.findBy(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		return res, err
	}

	if !principal.Owns(attendance.UserID) && !principal.Allows(permissions.AttendanceManage) {
		return res, failure.ResourceRestrictedError
	}

	res.FromModel(attendance)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save attendance to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, err = s.findBy(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete attendance")

		return fmt.Errorf("failed to delete attendance: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

// HandleBookingEvent keeps attendance records in step with bookings: an
// approval issues the record, and a booking that stops being confirmed
// loses any record nobody has scanned yet.
func (s *serviceImpl) HandleBookingEvent(ctx context.Context, event events.BookingEvent) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".HandleBookingEvent")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	switch event.Type {
	case events.BookingApproved:
		date, parseErr := timezone.ParseDay(event.Date)
		if parseErr != nil {
			log.Warn().Err(parseErr).Str("booking_id", event.BookingID).Msg("booking event carries a malformed date")

			return nil
		}

		_, err = s.issue(ctx, event.UserID, slot{
			bookingID: event.BookingID,
			userID:    event.UserID,
			roomID:    event.RoomID,
			date:      date,
			startTime: event.StartTime,
			endTime:   event.EndTime,
		})

		return err
	case events.BookingCancelled, events.BookingRejected, events.BookingDeleted:
		if err = s.repo.Delete(ctx, repository.UncheckedFilter(event.BookingID)); err != nil {
			log.Error().Err(err).Str("booking_id", event.BookingID).Msg("failed to drop attendance of booking")

			return fmt.Errorf("failed to drop attendance of booking: %w", err)
		}

		s.invalidate(ctx, constant.Empty)
	}

	return nil
}

type slot struct {
	bookingID string
	userID    string
	roomID    string
	date      time.Time
	startTime string
	endTime   string
}

func slotOf(booking bookingModel.Booking) slot {
	return slot{
		bookingID: booking.ID,
		userID:    booking.UserID,
		roomID:    booking.RoomID,
		date:      booking.BookingDate,
		startTime: booking.StartTime,
		endTime:   booking.EndTime,
	}
}

// issue returns the booking's attendance record, creating the absent record
// with its QR code when there is none.
func (s *serviceImpl) issue(ctx context.Context, user string, booked slot) (model.Attendance, error) {
	existing, err := s.repo.Get(ctx, repository.ByBookingFilter(booked.bookingID))
	if err != nil {
		log.Error().Err(err).Msg("failed to get attendance")

		return existing, fmt.Errorf("failed to get attendance: %w", err)
	}

	if existing.ID != constant.Empty {
		return existing, nil
	}

	payload, err := s.policy.NewPayload(booked.bookingID, booked.userID, booked.roomID, booked.date, booked.startTime, booked.endTime)
	if err != nil {
		log.Error().Err(err).Str("booking_id", booked.bookingID).Msg("booking slot cannot be encoded")

		return existing, fmt.Errorf("failed to build qr payload: %w", err)
	}

	data, err := s.codec.Encode(payload)
	if err != nil {
		return existing, err
	}

	image, err := qr.Render(data, s.policy.ImageSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to render qr code")

		return existing, err
	}

	attendance := dto.NewAttendance{
		UserID:    booked.userID,
		RoomID:    booked.roomID,
		BookingID: booked.bookingID,
		Date:      booked.date,
		QRCode:    image,
		QRData:    data,
	}.ToModel(user, s.clock.Now())

	err = s.repo.Insert(ctx, attendance)
	if gRepo.IsUniqueViolation(err) {
		// issued concurrently; the stored record wins
		return s.findBy(ctx, repository.ByBookingFilter(booked.bookingID))
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to create attendance")

		return attendance, fmt.Errorf("failed to create attendance: %w", err)
	}

	s.invalidate(ctx, constant.Empty)

	return attendance, nil
}

func (s *serviceImpl) findBy(ctx context.Context, filter gDto.FilterGroup) (model.Attendance, error) {
	attendance, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get attendance")

		return attendance, fmt.Errorf("failed to get attendance: %w", err)
	}

	if attendance.ID == constant.Empty {
		return attendance, failure.NotFound("attendance not found") // nolint:wrapcheck
	}

	return attendance, nil
}

func (s *serviceImpl) leftEarly(attendance model.Attendance, now time.Time) bool {
	payload, err := s.codec.Decode(attendance.QRCodeData)
	if err != nil {
		log.Warn().Err(err).Str("attendance_id", attendance.ID).Msg("stored qr data is unreadable")

		return false
	}

	window, err := s.policy.Window(payload)
	if err != nil {
		log.Warn().Err(err).Str("attendance_id", attendance.ID).Msg("stored qr data has no usable window")

		return false
	}

	return now.Before(window.End)
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if id != constant.Empty {
			if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetAttendance, id)); err != nil {
				log.Error().Err(err).Msg("failed to delete attendance from cache")
			}
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllAttendance)
		shared.InvalidateCaches(c, s.cache, cacheCountAttendance)
	}()
}
