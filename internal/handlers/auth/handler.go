package auth

import (
	"context"
	"net/http"

	"elc/infras/otel"
	"elc/internal/domains/auth/model/dto"
	"elc/internal/domains/auth/service"
	"elc/shared/constant"
	"elc/shared/validator"
	"elc/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Auth
	otel    otel.Otel
}

func New(service service.Auth, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

// serve decodes and validates a T body, runs the action and writes its result.
// A nil result is answered with message instead of a JSON body.
func serve[T any](
	w http.ResponseWriter,
	r *http.Request,
	scope otel.Scope,
	status int,
	message string,
	action func(ctx context.Context, req T) (any, error),
) {
	var req T
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Debug().Err(err).Msg("rejected auth request body")
		response.WithError(w, err)

		return
	}

	res, err := action(r.Context(), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg(message + " failed")
		response.WithError(w, err)

		return
	}

	scope.AddEvent(message)

	if res == nil {
		response.WithMessage(w, status, message)

		return
	}

	response.WithJSON(w, status, res)
}

func (handler *Handler) Router(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", handler.Register)
		r.Post("/login", handler.Login)
		r.Post("/refresh-token", handler.RefreshToken)
		r.Post("/change-password", handler.ChangePassword)
	})
}

// Register creates a student or faculty account.
// @Summary Register a new user
// @Description Register a student or faculty account. Faculty must provide an employee_id.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Register Request"
// @Success 201 {object} response.Message "User registered successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auth/register [post]
func (handler *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Register")
	defer scope.End()

	serve(w, r.WithContext(ctx), scope, http.StatusCreated, "User registered successfully",
		func(ctx context.Context, req dto.RegisterRequest) (any, error) {
			return nil, handler.service.Register(ctx, req)
		})
}

// Login exchanges credentials for a token pair.
// @Summary Login a user
// @Description Login a user with the provided credentials.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} dto.LoginResponse "User logged in successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auth/login [post]
func (handler *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Login")
	defer scope.End()

	serve(w, r.WithContext(ctx), scope, http.StatusOK, "User logged in",
		func(ctx context.Context, req dto.LoginRequest) (any, error) {
			return handler.service.Login(ctx, req)
		})
}

// RefreshToken issues a new pair carrying the current effective role.
// @Summary Refresh user token
// @Description Refresh user token using the provided refresh token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token Request"
// @Success 200 {object} dto.RefreshTokenResponse "Token refreshed successfully"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auth/refresh-token [post]
func (handler *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RefreshToken")
	defer scope.End()

	serve(w, r.WithContext(ctx), scope, http.StatusOK, "Token refreshed",
		func(ctx context.Context, req dto.RefreshTokenRequest) (any, error) {
			return handler.service.RefreshToken(ctx, req)
		})
}

// ChangePassword changes the password of the signed-in user.
// @Summary Change password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Change Password Request"
// @Success 200 {object} response.Message "Password changed successfully"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auth/change-password [post]
// @Security BearerAuth
func (handler *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ChangePassword")
	defer scope.End()

	serve(w, r.WithContext(ctx), scope, http.StatusOK, "Password changed successfully",
		func(ctx context.Context, req dto.ChangePasswordRequest) (any, error) {
			return nil, handler.service.ChangePassword(ctx, req)
		})
}
