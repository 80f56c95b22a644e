package user

import (
	"net/http"
	"net/url"
	"strings"

	"elc/infras/otel"
	"elc/internal/domains/user/model"
	"elc/internal/domains/user/model/dto"
	"elc/internal/domains/user/service"
	"elc/permissions"
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
	service service.User
	otel    otel.Otel
}

func New(service service.User, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

const paramSearch = "search"

// respond records err on the span and writes it as the response.
func respond(w http.ResponseWriter, scope otel.Scope, err error, action string) {
	scope.TraceError(err)
	log.Error().Err(err).Msgf("failed to %s", action)
	response.WithError(w, err)
}

// userFilters builds the listing filter. search matches name or email,
// role must name a known role.
func userFilters(query url.Values) (gDto.FilterGroup, error) {
	group := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if role := query.Get(model.FieldRole); role != "" && !permissions.ValidRole(role) {
		return group, failure.BadRequestFromString("unknown role " + role) //nolint:wrapcheck
	}

	group.AddIfPresent(model.TableName, model.FieldEmail, strings.ToLower(query.Get(model.FieldEmail)))
	group.AddIfPresent(model.TableName, model.FieldRole, query.Get(model.FieldRole))
	group.AddIfPresent(model.TableName, model.FieldDepartment, query.Get(model.FieldDepartment))

	if search := strings.TrimSpace(query.Get(paramSearch)); search != "" {
		group.Filters = append(group.Filters, gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorOr,
			Filters: []any{
				gDto.Filter{ArgName: "search_name", Field: model.FieldFullName, Operator: gDto.FilterOperatorLike, Value: search, Table: model.TableName},
				gDto.Filter{ArgName: "search_email", Field: model.FieldEmail, Operator: gDto.FilterOperatorLike, Value: search, Table: model.TableName},
			},
		})
	}

	if active := shared.ParseBool(query.Get(model.FieldActive)); active != nil {
		group.Filters = append(group.Filters, gDto.Filter{
			Field:    model.FieldActive,
			Operator: gDto.FilterOperatorEq,
			Value:    *active,
			Table:    model.TableName,
		})
	}

	return group, nil
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/users", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateUser)
		routerGroup.Get("/", handler.GetUsers)
		routerGroup.Get("/{id}", handler.GetUserByID)
		routerGroup.Patch("/{id}", handler.UpdateUser)
		routerGroup.Delete("/{id}", handler.DeleteUser)
	})
}

// CreateUser provisions an account on behalf of an administrator.
// @Summary Create a new user
// @Description Create a new user with the provided details.
// @Tags User
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "Create User Request"
// @Success 201 {object} response.Data[dto.UserResponse] "User created successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/users [post]
// @Security BearerAuth
func (handler *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateUser")
	defer scope.End()

	var req dto.CreateUserRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		respond(w, scope, err, "validate request body")

		return
	}

	user, err := handler.service.Create(ctx, req)
	if err != nil {
		respond(w, scope, err, "create user")

		return
	}

	response.WithJSON(w, http.StatusCreated, user)
}

// GetUsers lists accounts.
// @Summary Get all users
// @Description Retrieve all users with optional filtering and pagination.
// @Tags User
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param email query string false "Filter by email"
// @Param role query string false "Filter by role (student, faculty, admin, superadmin)"
// @Param department query string false "Filter by department"
// @Param search query string false "Match full name or email"
// @Param active query boolean false "Filter by account status"
// @Success 200 {object} response.Data[dto.GetUsersResponse] "List of users"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/users [get]
// @Security BearerAuth
func (handler *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetUsers")
	defer scope.End()

	var queryParams gDto.QueryParams
	queryParams.FromRequest(r, true)

	filterGroup, err := userFilters(r.URL.Query())
	if err != nil {
		respond(w, scope, err, "read user filters")

		return
	}

	users, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		respond(w, scope, err, "list users")

		return
	}

	response.WithJSON(w, http.StatusOK, users)
}

// @Summary Get a user by ID
// @Description Retrieve a user by their unique identifier.
// @Tags User
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Data[dto.UserResponse] "User details"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/users/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetUserByID")
	defer scope.End()

	user, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		respond(w, scope, err, "get user")

		return
	}

	response.WithJSON(w, http.StatusOK, user)
}

// UpdateUser updates an existing user by their ID.
// @Summary Update a user by ID
// @Description Update an existing user. Setting elevated_role with elevated_until grants a temporary role; revoke_elevation clears it.
// @Tags User
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body dto.UpdateUserRequest true "Update User Request"
// @Success 200 {object} response.Message "User updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/users/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateUser")
	defer scope.End()

	var req dto.UpdateUserRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		respond(w, scope, err, "validate request body")

		return
	}

	if err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID)); err != nil {
		respond(w, scope, err, "update user")

		return
	}

	scope.AddEvent("user updated")

	response.WithMessage(w, http.StatusOK, "User updated successfully")
}

// @Summary Delete a user by ID
// @Description Delete a user using their unique identifier.
// @Tags User
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Message "User deleted successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/users/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteUser")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		respond(w, scope, err, "delete user")

		return
	}

	scope.AddEvent("user deleted")

	response.WithMessage(w, http.StatusOK, "User deleted successfully")
}
