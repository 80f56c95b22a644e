package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	otelMocks "elc/infras/otel/mocks"
	"elc/internal/domains/auth/model/dto"
	"elc/internal/domains/auth/service/mocks"
	"elc/internal/handlers/auth"
	"elc/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newRouter(t *testing.T) (http.Handler, *mocks.MockAuth) {
	t.Helper()

	svc := mocks.NewMockAuth(gomock.NewController(t))
	handler := auth.New(svc, otelMocks.NewOtel())

	router := chi.NewRouter()
	handler.Router(router)

	return router, svc
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))

	return rec
}

func TestHandler_Login(t *testing.T) {
	t.Run("returns the token pair", func(t *testing.T) {
		router, svc := newRouter(t)

		svc.EXPECT().
			Login(gomock.Any(), dto.LoginRequest{Email: "ana@campus.edu", Password: "secret"}).
			Return(dto.LoginResponse{AccessToken: "access", Role: "student"}, nil)

		rec := post(router, "/auth/login", `{"email":"ana@campus.edu","password":"secret"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data dto.LoginResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "student", body.Data.Role)
		assert.Contains(t, rec.Body.String(), `"access_token":"access"`)
	})

	t.Run("invalid body never reaches the service", func(t *testing.T) {
		router, _ := newRouter(t)

		rec := post(router, "/auth/login", `{"email":"not-an-email","password":"secret"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "email must be a valid email address")
	})

	t.Run("wrong credentials", func(t *testing.T) {
		router, svc := newRouter(t)

		svc.EXPECT().Login(gomock.Any(), gomock.Any()).
			Return(dto.LoginResponse{}, failure.BadRequestFromString("invalid email or password"))

		rec := post(router, "/auth/login", `{"email":"ana@campus.edu","password":"nope"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid email or password")
	})
}

func TestHandler_Register(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil)

	rec := post(router, "/auth/register",
		`{"email":"ben@campus.edu","password":"password123","full_name":"Ben Cruz","role":"student"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "User registered successfully")
}

func TestHandler_EmptyBody(t *testing.T) {
	router, _ := newRouter(t)

	rec := post(router, "/auth/refresh-token", ``)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "request body is required")
}
