package middleware_test

import (
	"errors"
	"lodging/config"
	"lodging/infras/jwt"
	"lodging/infras/otel/mocks"
	"lodging/permissions"
	cacheMocks "lodging/shared/cache/mocks"
	"lodging/shared/constant"
	"lodging/transport/http/middleware"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func rateLimitedConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "lodging"
	cfg.App.RateLimiter.Enable = true
	cfg.App.RateLimiter.MaxRequests = 2
	cfg.App.RateLimiter.WindowSeconds = 60

	return cfg
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusTeapot)
})

func TestAppMiddleware_RateLimit(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(mock *cacheMocks.MockRedisCache)
		wantCode      int
		wantRemaining string
		wantRetry     string
	}{
		{
			name: "under the limit",
			setupMock: func(mock *cacheMocks.MockRedisCache) {
				mock.EXPECT().Increment(gomock.Any(), "limiter:10.0.0.1:curl", 60).Return(int64(1), nil)
			},
			wantCode:      http.StatusTeapot,
			wantRemaining: "1",
		},
		{
			name: "limit reached",
			setupMock: func(mock *cacheMocks.MockRedisCache) {
				mock.EXPECT().Increment(gomock.Any(), gomock.Any(), 60).Return(int64(3), nil)
			},
			wantCode:      http.StatusTooManyRequests,
			wantRemaining: "0",
			wantRetry:     "60",
		},
		{
			name: "counter store down",
			setupMock: func(mock *cacheMocks.MockRedisCache) {
				mock.EXPECT().Increment(gomock.Any(), gomock.Any(), 60).Return(int64(0), errors.New("redis down"))
			},
			wantCode: http.StatusTeapot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockCache := cacheMocks.NewMockRedisCache(ctrl)
			tt.setupMock(mockCache)

			app := middleware.NewAppMiddleware(mocks.NewOtel(), rateLimitedConfig(), mockCache)

			req := httptest.NewRequest(http.MethodGet, "/v1/bookings/b-1", nil)
			req.RemoteAddr = "10.0.0.1:52311"
			req.Header.Set(constant.RequestHeaderUserAgent, "curl")

			rec := httptest.NewRecorder()
			app.RateLimit()(ok).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantRemaining, rec.Header().Get(constant.RequestHeaderRateLimitRemaining))
			assert.Equal(t, tt.wantRetry, rec.Header().Get(constant.RequestHeaderRetryAfter))
		})
	}
}

func TestAppMiddleware_RateLimitDisabled(t *testing.T) {
	ctrl := gomock.NewController(t)

	app := middleware.NewAppMiddleware(mocks.NewOtel(), &config.Config{}, cacheMocks.NewMockRedisCache(ctrl))

	rec := httptest.NewRecorder()
	app.RateLimit()(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestAppMiddleware_Tracing(t *testing.T) {
	ctrl := gomock.NewController(t)
	ot := mocks.NewOtel()

	app := middleware.NewAppMiddleware(ot, rateLimitedConfig(), cacheMocks.NewMockRedisCache(ctrl))

	req := httptest.NewRequest(http.MethodGet, "/v1/settlements", nil)
	req.Header.Set(constant.RequestHeaderForwardedFor, "203.0.113.9, 10.0.0.1")

	rec := httptest.NewRecorder()
	app.RequestID(app.Tracing(ok)).ServeHTTP(rec, req)

	scopes := ot.Scopes("GET /v1/settlements")
	require.Len(t, scopes, 1)

	assert.True(t, scopes[0].Ended())
	assert.Empty(t, scopes[0].Errors())
	assert.Equal(t, http.StatusTeapot, scopes[0].Attribute("http.status_code"))
	assert.Equal(t, "203.0.113.9", scopes[0].Attribute("http.source"))
	assert.Equal(t, rec.Header().Get(constant.RequestHeaderRequestID), scopes[0].Attribute("http.request_id"))
}

func TestAuthRole_APIKey(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.APIKey = "internal-key"

	tests := []struct {
		name     string
		key      string
		wantCode int
		wantUser string
	}{
		{name: "no key falls through to token auth", key: "", wantCode: http.StatusUnauthorized},
		{name: "valid key acts as the system", key: "internal-key", wantCode: http.StatusTeapot, wantUser: constant.SystemUser},
		{name: "wrong key", key: "guess", wantCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authRole := middleware.NewAuthRoleMiddleware(jwt.New(cfg), mocks.NewOtel(), permissions.Get(), cfg)

			var gotUser string

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, _ = r.Context().Value(constant.ContextKeyUserID).(string)
				w.WriteHeader(http.StatusTeapot)
			})

			req := httptest.NewRequest(http.MethodPost, "/v1/bookings/b-1/confirm", nil)
			if tt.key != "" {
				req.Header.Set(constant.RequestHeaderAPIKey, tt.key)
			}

			rec := httptest.NewRecorder()
			authRole.APIKey(authRole.Auth(authRole.RBAC(next))).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantUser, gotUser)
		})
	}
}

func TestAuthRole_APIKeyUnset(t *testing.T) {
	cfg := &config.Config{}
	authRole := middleware.NewAuthRoleMiddleware(jwt.New(cfg), mocks.NewOtel(), permissions.Get(), cfg)

	req := httptest.NewRequest(http.MethodPost, "/v1/bookings/b-1/confirm", nil)
	req.Header.Set(constant.RequestHeaderAPIKey, "anything")

	rec := httptest.NewRecorder()
	authRole.APIKey(ok).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
