package room

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"elc/infras/otel"
	"elc/internal/domains/room/model"
	"elc/internal/domains/room/model/dto"
	"elc/internal/domains/room/service"
	"elc/shared"
	"elc/shared/constant"
	gDto "elc/shared/dto"
	"elc/shared/failure"
	"elc/shared/validator"
	"elc/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Room
	otel    otel.Otel
}

func New(service service.Room, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/rooms", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateRoom)
		routerGroup.Get("/", handler.GetRooms)
		routerGroup.Get("/{id}", handler.GetRoomByID)
		routerGroup.Patch("/{id}", handler.UpdateRoom)
		routerGroup.Delete("/{id}", handler.DeleteRoom)
	})
}

// roomForm is the multipart body shared by create and update.
type roomForm struct {
	name      string
	building  string
	floor     string
	capacity  *int
	equipment []string
	active    *bool
	image     *multipart.FileHeader
	file      multipart.File
}

func readRoomForm(r *http.Request) (roomForm, error) {
	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		return roomForm{}, failure.BadRequest(err) //nolint:wrapcheck
	}

	form := roomForm{
		name:      strings.TrimSpace(r.FormValue(model.FieldName)),
		building:  strings.TrimSpace(r.FormValue(model.FieldBuilding)),
		floor:     strings.TrimSpace(r.FormValue(model.FieldFloor)),
		equipment: r.Form[model.FieldEquipment],
	}

	if raw := strings.TrimSpace(r.FormValue(model.FieldCapacity)); raw != "" {
		capacity, err := strconv.Atoi(raw)
		if err != nil {
			return roomForm{}, failure.BadRequestFromString("capacity must be a whole number") //nolint:wrapcheck
		}

		form.capacity = &capacity
	}

	if raw := r.FormValue(model.FieldActive); raw != "" {
		if form.active = shared.ParseBool(raw); form.active == nil {
			return roomForm{}, failure.BadRequestFromString("active must be true or false") //nolint:wrapcheck
		}
	}

	file, header, err := r.FormFile(model.FieldImage)

	switch {
	case err == nil:
		form.image, form.file = header, file
	case !errors.Is(err, http.ErrMissingFile):
		return roomForm{}, failure.BadRequest(err) //nolint:wrapcheck
	}

	return form, nil
}

func (f roomForm) close() {
	if f.file != nil {
		_ = f.file.Close()
	}
}

func abort(w http.ResponseWriter, scope otel.Scope, err error, msg string) {
	scope.TraceError(err)
	log.Error().Err(err).Msg(msg)
	response.WithError(w, err)
}

// CreateRoom registers a room from a multipart form.
// @Summary Create a new room
// @Description Create a new room with the provided details.
// @Tags Room
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Room name"
// @Param building formData string false "Building"
// @Param floor formData string false "Floor"
// @Param capacity formData integer false "Room capacity"
// @Param equipment formData []string false "Equipment, one value per entry" collectionFormat(multi)
// @Param active formData boolean false "Room active status"
// @Param image formData file false "Room image"
// @Success 201 {object} response.Message "Room created successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms [post]
// @Security BearerAuth
func (handler *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateRoom")
	defer scope.End()

	form, err := readRoomForm(r)
	if err != nil {
		abort(w, scope, err, "failed to read room form")

		return
	}
	defer form.close()

	req := dto.CreateRoomRequest{
		Name:      form.name,
		Building:  form.building,
		Floor:     form.floor,
		Equipment: form.equipment,
		Active:    form.active,
		Image:     form.image,
		ImageFile: form.file,
	}

	if form.capacity != nil {
		req.Capacity = *form.capacity
	}

	if err := validator.ValidateStruct(&req); err != nil {
		abort(w, scope, err, "failed to validate request")

		return
	}

	if err := handler.service.Create(ctx, req); err != nil {
		abort(w, scope, err, "failed to create room")

		return
	}

	scope.AddEvent("room created")

	response.WithMessage(w, http.StatusCreated, "Room created successfully")
}

// GetRooms lists rooms, filtered by name, building, floor and status.
// @Summary Get all rooms
// @Description Retrieve all rooms with optional filtering and pagination.
// @Tags Room
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Param building query string false "Filter by building"
// @Param floor query string false "Filter by floor"
// @Param active query boolean false "Filter by active status"
// @Success 200 {object} response.Data[dto.GetRoomsResponse] "List of rooms"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms [get]
func (handler *Handler) GetRooms(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRooms")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	query := r.URL.Query()

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}
	filterGroup.AddIfPresent(model.TableName, model.FieldBuilding, query.Get(model.FieldBuilding))
	filterGroup.AddIfPresent(model.TableName, model.FieldFloor, query.Get(model.FieldFloor))

	if name := strings.TrimSpace(query.Get(model.FieldName)); name != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldName,
			Operator: gDto.FilterOperatorLike,
			Value:    name,
			Table:    model.TableName,
		})
	}

	if active := shared.ParseBool(query.Get(model.FieldActive)); active != nil {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldActive,
			Operator: gDto.FilterOperatorEq,
			Value:    *active,
			Table:    model.TableName,
		})
	}

	rooms, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		abort(w, scope, err, "failed to list rooms")

		return
	}

	response.WithJSON(w, http.StatusOK, rooms)
}

// GetRoomByID retrieves a room by its ID.
// @Summary Get a room by ID
// @Description Retrieve a room by its unique identifier.
// @Tags Room
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Data[dto.RoomResponse] "Room details"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [get]
func (handler *Handler) GetRoomByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoomByID")
	defer scope.End()

	room, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		abort(w, scope, err, "failed to get room")

		return
	}

	response.WithJSON(w, http.StatusOK, room)
}

// UpdateRoom applies the fields present in the form. An uploaded image
// replaces the stored one.
// @Summary Update a room by ID
// @Description Update the details of an existing room.
// @Tags Room
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Room ID"
// @Param name formData string false "Room name"
// @Param building formData string false "Building"
// @Param floor formData string false "Floor"
// @Param capacity formData integer false "Room capacity"
// @Param equipment formData []string false "Equipment, replaces the current list" collectionFormat(multi)
// @Param active formData boolean false "Room active status"
// @Param image formData file false "Room image"
// @Success 200 {object} response.Message "Room updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateRoom")
	defer scope.End()

	form, err := readRoomForm(r)
	if err != nil {
		abort(w, scope, err, "failed to read room form")

		return
	}
	defer form.close()

	req := dto.UpdateRoomRequest{
		Name:      form.name,
		Building:  form.building,
		Floor:     form.floor,
		Capacity:  form.capacity,
		Equipment: form.equipment,
		Active:    form.active,
		Image:     form.image,
		ImageFile: form.file,
	}

	if err := validator.ValidateStruct(&req); err != nil {
		abort(w, scope, err, "failed to validate request")

		return
	}

	if err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID)); err != nil {
		abort(w, scope, err, "failed to update room")

		return
	}

	scope.AddEvent("room updated")

	response.WithMessage(w, http.StatusOK, "Room updated successfully")
}

// DeleteRoom deletes a room by its ID.
// @Summary Delete a room by ID
// @Description Delete a room using its unique identifier.
// @Tags Room
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Message "Room deleted successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteRoom")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		abort(w, scope, err, "failed to delete room")

		return
	}

	scope.AddEvent("room deleted")

	response.WithMessage(w, http.StatusOK, "Room deleted successfully")
}
