package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"elc/config"
	otelMocks "elc/infras/otel/mocks"
	"elc/shared/constant"
	limitMocks "elc/shared/ratelimit/mocks"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func limiterConfig(enable bool) *config.Config {
	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = enable
	cfg.App.RateLimiter.MaxRequests = 2
	cfg.App.RateLimiter.WindowSeconds = 60

	return cfg
}

func serveLimited(mw AppMiddleware) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/rooms", nil)
	req.RemoteAddr = "10.0.0.7:51234"
	req.Header.Set(constant.RequestHeaderUserAgent, "curl")

	rec := httptest.NewRecorder()
	mw.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)

	return rec
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		err       error
		status    int
		remaining string
	}{
		{name: "under the limit", count: 1, status: http.StatusOK, remaining: "1"},
		{name: "at the limit", count: 2, status: http.StatusOK, remaining: "0"},
		{name: "over the limit", count: 3, status: http.StatusTooManyRequests, remaining: "0"},
		{name: "store down", err: errors.New("redis down"), status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := limitMocks.NewMockStore(ctrl)
			store.EXPECT().Incr(gomock.Any(), "limiter:10.0.0.7:curl", time.Minute).Return(tt.count, tt.err)

			rec := serveLimited(NewAppMiddleware(otelMocks.NewOtel(), limiterConfig(true), store))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.remaining, rec.Header().Get(constant.RequestHeaderRateLimitRemaining))
		})
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := limitMocks.NewMockStore(ctrl)

	rec := serveLimited(NewAppMiddleware(otelMocks.NewOtel(), limiterConfig(false), store))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(constant.RequestHeaderRateLimit))
}

func TestGetClientIP(t *testing.T) {
	mw := &appMiddleware{}

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded chain", headers: map[string]string{constant.RequestHeaderForwardedFor: "203.0.113.9, 10.0.0.1"}, want: "203.0.113.9"},
		{name: "real ip", headers: map[string]string{constant.RequestHeaderRealIP: " 198.51.100.4 "}, want: "198.51.100.4"},
		{name: "peer address", remote: "192.0.2.1:4444", want: "192.0.2.1"},
		{name: "peer without port", remote: "pipe", want: "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote

			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}

			assert.Equal(t, tt.want, mw.getClientIP(req))
		})
	}
}
