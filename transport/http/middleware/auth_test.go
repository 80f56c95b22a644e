package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"elc/config"
	"elc/infras/jwt"
	jwtMocks "elc/infras/jwt/mocks"
	otelMocks "elc/infras/otel/mocks"
	"elc/permissions"
	"elc/shared/constant"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newTestRouter(t *testing.T, tokens *jwtMocks.MockJWT) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.APIKey = "internal-key"

	perms := &permissions.PermissionData{Endpoints: []permissions.Permission{
		{Path: "/v1/auth/login", Method: http.MethodPost, Skip: true},
		{Path: "/v1/rooms/{id}", Method: http.MethodDelete, Capabilities: []permissions.Capability{permissions.RoomManage}},
	}}

	mw := NewAuthRoleMiddleware(tokens, otelMocks.NewOtel(), perms, cfg)

	router := chi.NewRouter()
	router.Use(mw.APIKey, mw.Auth, mw.RBAC)

	echo := func(w http.ResponseWriter, r *http.Request) {
		user, _ := r.Context().Value(constant.ContextKeyUserID).(string)
		w.Header().Set("X-User", user)
		w.WriteHeader(http.StatusNoContent)
	}

	router.Post("/v1/auth/login", echo)
	router.Get("/v1/rooms/{id}", echo)
	router.Delete("/v1/rooms/{id}", echo)

	return router
}

func TestAuthRole(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		path    string
		headers map[string]string
		setup   func(tokens *jwtMocks.MockJWT)
		status  int
		user    string
	}{
		{
			name:   "public route needs no token",
			method: http.MethodPost,
			path:   "/v1/auth/login",
			status: http.StatusNoContent,
		},
		{
			name:   "missing token",
			method: http.MethodGet,
			path:   "/v1/rooms/r1",
			status: http.StatusUnauthorized,
		},
		{
			name:    "wrong scheme",
			method:  http.MethodGet,
			path:    "/v1/rooms/r1",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Basic abc"},
			status:  http.StatusUnauthorized,
		},
		{
			name:    "expired token",
			method:  http.MethodGet,
			path:    "/v1/rooms/r1",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Bearer old"},
			setup: func(tokens *jwtMocks.MockJWT) {
				tokens.EXPECT().ValidateToken(gomock.Any(), "old", jwt.AccessToken).Return(nil, jwt.ErrExpiredToken)
			},
			status: http.StatusUnauthorized,
		},
		{
			name:    "any signed in user may read",
			method:  http.MethodGet,
			path:    "/v1/rooms/r1",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Bearer good"},
			setup: func(tokens *jwtMocks.MockJWT) {
				tokens.EXPECT().ValidateToken(gomock.Any(), "good", jwt.AccessToken).
					Return(&jwt.Claims{UserID: "u1", Email: "u1@campus.edu", Role: constant.RoleStudent}, nil)
			},
			status: http.StatusNoContent,
			user:   "u1",
		},
		{
			name:    "student cannot delete rooms",
			method:  http.MethodDelete,
			path:    "/v1/rooms/r1",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Bearer good"},
			setup: func(tokens *jwtMocks.MockJWT) {
				tokens.EXPECT().ValidateToken(gomock.Any(), "good", jwt.AccessToken).
					Return(&jwt.Claims{UserID: "u1", Email: "u1@campus.edu", Role: constant.RoleStudent}, nil)
			},
			status: http.StatusForbidden,
		},
		{
			name:    "admin deletes rooms",
			method:  http.MethodDelete,
			path:    "/v1/rooms/r1",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Bearer admin"},
			setup: func(tokens *jwtMocks.MockJWT) {
				tokens.EXPECT().ValidateToken(gomock.Any(), "admin", jwt.AccessToken).
					Return(&jwt.Claims{UserID: "a1", Email: "a1@campus.edu", Role: constant.RoleAdmin}, nil)
			},
			status: http.StatusNoContent,
			user:   "a1",
		},
		{
			name:    "internal key bypasses token checks",
			method:  http.MethodDelete,
			path:    "/v1/rooms/r1",
			headers: map[string]string{constant.RequestHeaderAPIKey: "internal-key"},
			status:  http.StatusNoContent,
		},
		{
			name:    "wrong internal key",
			method:  http.MethodGet,
			path:    "/v1/rooms/r1",
			headers: map[string]string{constant.RequestHeaderAPIKey: "guess"},
			status:  http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			tokens := jwtMocks.NewMockJWT(ctrl)

			if tt.setup != nil {
				tt.setup(tokens)
			}

			req := httptest.NewRequest(tt.method, tt.path, nil)
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}

			rec := httptest.NewRecorder()
			newTestRouter(t, tokens).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.user, rec.Header().Get("X-User"))
		})
	}
}

func TestTokenFailure(t *testing.T) {
	assert.EqualError(t, tokenFailure(jwt.ErrExpiredToken), "Token has expired")
	assert.EqualError(t, tokenFailure(jwt.ErrInvalidClaim), "Invalid token claims")
	assert.EqualError(t, tokenFailure(assert.AnError), "Token validation failed")
}
