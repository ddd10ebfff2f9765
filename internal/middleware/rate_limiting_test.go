package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2beens/gymquest/internal/auth"
	"github.com/2beens/gymquest/internal/middleware"
	"github.com/2beens/gymquest/internal/telemetry/metrics"

	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestRateLimit(t *testing.T) {
	testCases := []struct {
		name               string
		userID             string
		expectedKey        string
		result             *redis_rate.Result
		err                error
		expectedStatusCode int
		expectedLimited    float64
	}{
		{
			name:               "AllowedPerUser",
			userID:             "user-1",
			expectedKey:        "submit-activity||user-1",
			result:             &redis_rate.Result{Allowed: 1},
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "AllowedAnonymous",
			expectedKey:        "submit-activity",
			result:             &redis_rate.Result{Allowed: 1},
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "Limited",
			userID:             "user-1",
			expectedKey:        "submit-activity||user-1",
			result:             &redis_rate.Result{Allowed: 0, RetryAfter: 2 * time.Second},
			expectedStatusCode: http.StatusTooManyRequests,
			expectedLimited:    1,
		},
		{
			name:               "LimiterError",
			userID:             "user-1",
			expectedKey:        "submit-activity||user-1",
			err:                errors.New("redis down"),
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			limiter := NewMockRequestRateLimiter(ctrl)
			metricsManager := metrics.NewTestManager()

			limiter.EXPECT().
				Allow(gomock.Any(), tc.expectedKey, redis_rate.PerMinute(10)).
				Return(tc.result, tc.err)

			req := httptest.NewRequest(http.MethodPost, "/progress/activities", nil)
			if tc.userID != "" {
				req = req.WithContext(auth.WithUserID(req.Context(), tc.userID))
			}

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})

			rr := httptest.NewRecorder()
			middleware.RateLimit(limiter, metricsManager, "submit-activity", 10)(next).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			assert.Equal(t, tc.expectedStatusCode == http.StatusOK, called)
			assert.Equal(t, tc.expectedLimited, testutil.ToFloat64(metricsManager.CounterRateLimitedRequests))
		})
	}
}
