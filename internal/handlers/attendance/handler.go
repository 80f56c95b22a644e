package attendance

import (
	"net/http"

	"elc/infras/otel"
	"elc/internal/domains/attendance/model"
	"elc/internal/domains/attendance/model/dto"
	"elc/internal/domains/attendance/service"
	"elc/shared/clock"
	"elc/shared/constant"
	gDto "elc/shared/dto"
	"elc/shared/validator"
	"elc/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const queryParamDate = "date"

type Handler struct {
	service service.Attendance
	otel    otel.Otel
	clock   clock.Clock
}

func New(service service.Attendance, otel otel.Otel, clk clock.Clock) Handler {
	return Handler{
		service: service,
		otel:    otel,
		clock:   clk,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/attendance", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetAttendances)
		routerGroup.Get("/qr/{bookingId}", handler.GenerateQR)
		routerGroup.Post("/scan", handler.Scan)
		routerGroup.Get("/{id}", handler.GetAttendanceByID)
		routerGroup.Patch("/{id}/checkout", handler.CheckOut)
		routerGroup.Delete("/{id}", handler.DeleteAttendance)
	})
}

// GenerateQR returns the attendance QR code of a confirmed booking.
// @Summary Get the attendance QR code of a booking
// @Description Returns the stored record, issuing it on first request. The QR image is a PNG data URL.
// @Tags Attendance
// @Produce json
// @Param bookingId path string true "Booking ID"
// @Success 200 {object} response.Data[dto.AttendanceResponse] "Attendance record with QR code"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/attendance/qr/{bookingId} [get]
// @Security BearerAuth
func (handler *Handler) GenerateQR(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GenerateQR")
	defer scope.End()

	bookingID := chi.URLParam(r, constant.RequestParamBookingID)

	attendance, err := handler.service.GenerateQR(ctx, bookingID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to generate QR code")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, attendance)
}

// Scan checks the caller in with the scanned QR payload.
// @Summary Scan an attendance QR code
// @Description Accepted from 5 minutes before the booking starts until it ends. Scans more than 5 minutes after the start are marked late.
// @Description Scanning again after a successful check-in changes nothing.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param request body dto.ScanRequest true "Scanned QR payload"
// @Success 200 {object} response.Data[dto.ScanResponse] "Check-in result"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/attendance/scan [post]
// @Security BearerAuth
func (handler *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Scan")
	defer scope.End()

	req := dto.ScanRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Scan(ctx, req.QRData, handler.clock.Now())
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to scan QR code")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Attendance recorded for user " + user)

	response.WithJSON(w, http.StatusOK, res)
}

// CheckOut records when the attendee left.
// @Summary Check out of a booking
// @Description Leaving before the booking ends marks the record as early_departure.
// @Tags Attendance
// @Produce json
// @Param id path string true "Attendance ID"
// @Success 200 {object} response.Data[dto.AttendanceResponse] "Updated attendance"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/attendance/{id}/checkout [patch]
// @Security BearerAuth
func (handler *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CheckOut")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	attendance, err := handler.service.CheckOut(ctx, id, handler.clock.Now())
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to check out")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, attendance)
}

// GetAttendances lists attendance records.
// @Summary Get all attendance records
// @Tags Attendance
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param booking_id query string false "Filter by booking ID"
// @Param user_id query string false "Filter by user ID"
// @Param room_id query string false "Filter by room ID"
// @Param date query string false "Filter by day (YYYY-MM-DD)"
// @Param status query string false "Filter by status (absent, present, late, early_departure)"
// @Success 200 {object} response.Data[dto.GetAttendancesResponse] "List of attendance records"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/attendance [get]
// @Security BearerAuth
func (handler *Handler) GetAttendances(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAttendances")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	query := r.URL.Query()

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}
	filterGroup.AddIfPresent(model.TableName, model.FieldBookingID, query.Get(model.FieldBookingID))
	filterGroup.AddIfPresent(model.TableName, model.FieldUserID, query.Get(model.FieldUserID))
	filterGroup.AddIfPresent(model.TableName, model.FieldRoomID, query.Get(model.FieldRoomID))
	filterGroup.AddIfPresent(model.TableName, model.FieldAttendanceDate, query.Get(queryParamDate))
	filterGroup.AddIfPresent(model.TableName, model.FieldStatus, query.Get(model.FieldStatus))

	attendances, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get attendance records")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, attendances)
}

// GetAttendanceByID retrieves an attendance record.
// @Summary Get an attendance record by ID
// @Tags Attendance
// @Produce json
// @Param id path string true "Attendance ID"
// @Success 200 {object} response.Data[dto.AttendanceResponse] "Attendance record"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/attendance/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetAttendanceByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAttendanceByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	attendance, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get attendance by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, attendance)
}

// DeleteAttendance deletes an attendance record.
// @Summary Delete an attendance record
// @Tags Attendance
// @Produce json
// @Param id path string true "Attendance ID"
// @Success 200 {object} response.Message "Attendance deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/attendance/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteAttendance(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteAttendance")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete attendance")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Attendance deleted successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Attendance deleted successfully")
}
