//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/2beens/gymquest/internal/middleware"
	"github.com/2beens/gymquest/internal/progression"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) doRequest(
	ctx context.Context,
	method, path, body string,
	headers map[string]string,
	expectedStatus int,
	out any,
) {
	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, strings.NewReader(body))
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	require.Equal(s.T(), expectedStatus, resp.StatusCode, string(respBytes))

	if out != nil {
		require.NoError(s.T(), json.Unmarshal(respBytes, out))
	}
}

func userHeaders(userID string) map[string]string {
	return map[string]string{
		middleware.HeaderAppToken: testAppToken,
		middleware.HeaderUserID:   userID,
	}
}

func adminHeaders() map[string]string {
	return map[string]string{
		middleware.HeaderAdminToken: testAdminToken,
	}
}

func (s *IntegrationTestSuite) factCount(ctx context.Context, userID, status string) int {
	var count int
	err := s.DB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM progression_fact WHERE user_id = $1 AND status = $2`,
		userID, status,
	).Scan(&count)
	require.NoError(s.T(), err)
	return count
}

func (s *IntegrationTestSuite) TestProgression_SubmitDeleteAndGet() {
	ctx := context.Background()
	userID := "user-" + uuid.NewString()

	s.doRequest(ctx, http.MethodGet, "/progress", "", nil, http.StatusUnauthorized, nil)

	var submitted []progression.SubmitResult
	for _, body := range []string{
		`{"category":"running","durationMin":30,"intensity":"medium","weight":80}`,
		`{"category":"cycling","durationMin":60,"intensity":"high","weight":79.5,"hasEvidence":true,"evidenceUrl":"https://example.com/ride.fit"}`,
	} {
		var result progression.SubmitResult
		s.doRequest(ctx, http.MethodPost, "/progress/activities", body, userHeaders(userID), http.StatusCreated, &result)
		assert.Equal(s.T(), progression.StatusApplied, result.Status)
		submitted = append(submitted, result)
	}

	var invalid progression.ErrorResponse
	s.doRequest(ctx, http.MethodPost, "/progress/activities", `{"category":"running","durationMin":0,"intensity":"medium","weight":80}`, userHeaders(userID), http.StatusBadRequest, &invalid)
	assert.Equal(s.T(), "durationMin", invalid.Field)

	var view progression.ProgressView
	s.doRequest(ctx, http.MethodGet, "/progress", "", userHeaders(userID), http.StatusOK, &view)
	assert.InDelta(s.T(), submitted[0].ExpDelta+submitted[1].ExpDelta, view.Exp, 0.0001)
	assert.Equal(s.T(), 2, view.ActivityCount)
	assert.Equal(s.T(), 1, view.Streak)
	assert.Equal(s.T(), 2, s.factCount(ctx, userID, "applied"))

	var deleted progression.DeleteResult
	s.doRequest(ctx, http.MethodDelete, "/progress/activities/"+submitted[0].ActivityID, "", userHeaders(userID), http.StatusOK, &deleted)
	assert.Equal(s.T(), progression.StatusApplied, deleted.Status)
	s.doRequest(ctx, http.MethodDelete, "/progress/activities/"+submitted[0].ActivityID, "", userHeaders(userID), http.StatusNotFound, nil)

	s.doRequest(ctx, http.MethodGet, "/progress", "", userHeaders(userID), http.StatusOK, &view)
	assert.InDelta(s.T(), submitted[1].ExpDelta, view.Exp, 0.0001)
	assert.Equal(s.T(), 1, view.ActivityCount)
	assert.Equal(s.T(), 3, s.factCount(ctx, userID, "applied"))
	assert.Equal(s.T(), 0, s.factCount(ctx, userID, "logged"))

	var history progression.ActivityHistory
	s.doRequest(ctx, http.MethodGet, "/progress/activities", "", userHeaders(userID), http.StatusOK, &history)
	require.Len(s.T(), history.Activities, 1)
	assert.Equal(s.T(), submitted[1].ActivityID, history.Activities[0].ID)
	assert.InDelta(s.T(), submitted[1].ExpDelta, history.TotalExp, 0.0001)
	assert.Nil(s.T(), history.NextBefore)
}

func (s *IntegrationTestSuite) TestProgression_AdminRoutes() {
	ctx := context.Background()

	s.doRequest(ctx, http.MethodPost, "/admin/reconcile", "", map[string]string{middleware.HeaderAdminToken: "nope"}, http.StatusUnauthorized, nil)

	var reconcile progression.ReconcileResult
	s.doRequest(ctx, http.MethodPost, "/admin/reconcile", "", adminHeaders(), http.StatusOK, &reconcile)
	assert.Zero(s.T(), reconcile.UsersFailed)

	// nobody was active before the cutoff in the far past
	var sweep progression.SweepResponse
	s.doRequest(ctx, http.MethodPost, "/admin/decay/sweep?date=2000-01-01", "", adminHeaders(), http.StatusOK, &sweep)
	assert.Zero(s.T(), sweep.UsersScanned)
	assert.Empty(s.T(), sweep.Errors)

	s.doRequest(ctx, http.MethodPost, "/admin/decay/sweep?date=yesterday", "", adminHeaders(), http.StatusBadRequest, nil)
}

func (s *IntegrationTestSuite) TestProgression_DecaySweepPenalizesIdleUser() {
	ctx := context.Background()
	userID := "user-" + uuid.NewString()

	var result progression.SubmitResult
	s.doRequest(ctx, http.MethodPost, "/progress/activities", `{"category":"strength","durationMin":45,"intensity":"high","weight":90}`, userHeaders(userID), http.StatusCreated, &result)

	// move the user's last activity five days back
	_, err := s.DB.ExecContext(ctx, `UPDATE user_progress SET last_active_date = last_active_date - 5 WHERE user_id = $1`, userID)
	require.NoError(s.T(), err)
	_, err = s.DB.ExecContext(ctx, `UPDATE activity SET created_at = created_at - interval '5 days' WHERE user_id = $1`, userID)
	require.NoError(s.T(), err)

	var sweep progression.SweepResponse
	s.doRequest(ctx, http.MethodPost, "/admin/decay/sweep", "", adminHeaders(), http.StatusOK, &sweep)
	assert.GreaterOrEqual(s.T(), sweep.UsersPenalized, 1)
	assert.Empty(s.T(), sweep.Errors)

	var penalties int
	require.NoError(s.T(), s.DB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM progression_fact WHERE user_id = $1 AND kind = 'penalty' AND status = 'applied'`,
		userID,
	).Scan(&penalties))
	assert.Equal(s.T(), 4, penalties, fmt.Sprintf("sweep result: %+v", sweep))

	var view progression.ProgressView
	s.doRequest(ctx, http.MethodGet, "/progress", "", userHeaders(userID), http.StatusOK, &view)
	assert.Less(s.T(), view.Exp, result.NewExp)
	assert.Positive(s.T(), view.PenaltyTotal)

	// a second sweep on the same day is a no-op
	s.doRequest(ctx, http.MethodPost, "/admin/decay/sweep", "", adminHeaders(), http.StatusOK, &sweep)
	require.NoError(s.T(), s.DB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM progression_fact WHERE user_id = $1 AND kind = 'penalty'`,
		userID,
	).Scan(&penalties))
	assert.Equal(s.T(), 4, penalties)
}
