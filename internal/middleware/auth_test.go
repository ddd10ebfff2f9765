package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2beens/gymquest/internal/auth"
	"github.com/2beens/gymquest/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestAuthMiddlewareHandler_AuthCheck(t *testing.T) {
	adminHash, err := bcrypt.GenerateFromPassword([]byte("admin-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	authMiddleware := middleware.NewAuthMiddlewareHandler(
		auth.NewTokenChecker("app-secret", string(adminHash)),
	)

	testCases := []struct {
		name               string
		path               string
		method             string
		appToken           string
		userID             string
		adminToken         string
		expectedStatusCode int
		expectedUserID     string
	}{
		{
			name:               "AllowedPathWithoutToken",
			path:               "/health",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "ProgressWithoutToken",
			path:               "/progress",
			method:             "GET",
			userID:             "user-1",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "ProgressInvalidToken",
			path:               "/progress",
			method:             "GET",
			appToken:           "wrong",
			userID:             "user-1",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "ProgressMissingUser",
			path:               "/progress",
			method:             "GET",
			appToken:           "app-secret",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "ProgressValid",
			path:               "/progress",
			method:             "GET",
			appToken:           "app-secret",
			userID:             "user-1",
			expectedStatusCode: http.StatusOK,
			expectedUserID:     "user-1",
		},
		{
			name:               "AdminWithAppToken",
			path:               "/admin/reconcile",
			method:             "POST",
			appToken:           "app-secret",
			userID:             "user-1",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "AdminInvalidToken",
			path:               "/admin/decay/sweep",
			method:             "POST",
			adminToken:         "app-secret",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "AdminValidToken",
			path:               "/admin/decay/sweep",
			method:             "POST",
			adminToken:         "admin-secret",
			expectedStatusCode: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, tc.path, nil)
			require.NoError(t, err)
			if tc.appToken != "" {
				req.Header.Add(middleware.HeaderAppToken, tc.appToken)
			}
			if tc.userID != "" {
				req.Header.Add(middleware.HeaderUserID, tc.userID)
			}
			if tc.adminToken != "" {
				req.Header.Add(middleware.HeaderAdminToken, tc.adminToken)
			}

			var gotUserID string
			rr := httptest.NewRecorder()
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID, _ = auth.UserID(r.Context())
			})
			authMiddleware.AuthCheck()(handler).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			assert.Equal(t, tc.expectedUserID, gotUserID)
		})
	}
}
