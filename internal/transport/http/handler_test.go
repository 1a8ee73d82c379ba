package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"econquest-progress-service/internal/domain"
	"econquest-progress-service/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMux(m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	service, modules := newTestServices()
	NewHandler(service, modules, nil, m).Register(mux)
	return mux
}

func do(mux http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestSubmitThenConsumeResult(t *testing.T) {
	mux := newTestMux(nil)

	rec := do(mux, http.MethodPost, "/activities/1/attempts", "7", `{"answers":{"0":"a"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	var result domain.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 10, result.Score)
	assert.Equal(t, 15, result.DeltaCredit)
	assert.Equal(t, domain.DefaultXPReward, result.XP)
	require.NotNil(t, result.AttemptsLeft)
	assert.Equal(t, 2, *result.AttemptsLeft)

	rec = do(mux, http.MethodGet, "/activities/1/result", "7", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(mux, http.MethodGet, "/activities/1/result", "7", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, FallbackPath, rec.Header().Get("Location"))

	rec = do(mux, http.MethodGet, "/profile", "7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var profile domain.StudentProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	require.NotNil(t, profile.CreditScore)
	assert.Equal(t, 665, *profile.CreditScore)
	assert.Equal(t, 25, profile.XP)
}

func TestResultForOtherActivityRedirects(t *testing.T) {
	mux := newTestMux(nil)

	rec := do(mux, http.MethodPost, "/activities/1/attempts", "7", `{"answers":{"0":"b"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(mux, http.MethodGet, "/activities/2/result", "7", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	// the mismatched read still cleared the slot
	rec = do(mux, http.MethodGet, "/activities/1/result", "7", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestSubmitPastLimitConflicts(t *testing.T) {
	m := metrics.New()
	mux := newTestMux(m)

	rec := do(mux, http.MethodPost, "/activities/2/attempts", "7", `{"answers":{"0":"a"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(mux, http.MethodPost, "/activities/2/attempts", "7", `{"answers":{"0":"a"}}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"attempt limit reached"}`, rec.Body.String())

	rec = do(mux, http.MethodGet, "/activities/2", "7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view domain.AttemptView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.Blocked)
	assert.Equal(t, 1, view.AttemptsUsed)

	assert.Equal(t, 3, mustGatherCount(t, m, "http_request_duration_seconds"))
}

func TestRequestValidation(t *testing.T) {
	mux := newTestMux(nil)

	cases := []struct {
		name   string
		method string
		path   string
		user   string
		body   string
		want   int
	}{
		{"missing user", http.MethodGet, "/activities/1", "", "", http.StatusUnauthorized},
		{"bad user", http.MethodGet, "/profile", "abc", "", http.StatusUnauthorized},
		{"bad activity id", http.MethodGet, "/activities/x", "7", "", http.StatusBadRequest},
		{"unknown activity", http.MethodGet, "/activities/99", "7", "", http.StatusNotFound},
		{"bad body", http.MethodPost, "/activities/1/attempts", "7", "{", http.StatusBadRequest},
		{"unknown activity submit", http.MethodPost, "/activities/99/attempts", "7", `{"answers":{}}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(mux, tc.method, tc.path, tc.user, tc.body)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d (%s)", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func mustGatherCount(t *testing.T, m *metrics.Metrics, name string) int {
	t.Helper()
	n, err := testutil.GatherAndCount(m.Registry(), name)
	require.NoError(t, err)
	return n
}

func TestSubmitWithEmptyBodyRecordsNoAnswers(t *testing.T) {
	mux := newTestMux(nil)

	rec := do(mux, http.MethodPost, "/activities/1/attempts", "7", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result domain.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 0, result.DeltaCredit)
}

func TestListModulesReportsProgress(t *testing.T) {
	mux := newTestMux(nil)

	rec := do(mux, http.MethodGet, "/modules", "7", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var modules []domain.ModuleProgress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &modules))
	require.Len(t, modules, 2)
	assert.Equal(t, int64(1), modules[0].Module.ID)
	assert.Equal(t, 2, modules[0].ActivityCount)
	assert.Equal(t, 0, modules[0].Percent)
	assert.Equal(t, int64(2), modules[1].Module.ID)
	assert.Equal(t, 0, modules[1].ActivityCount)
	assert.Equal(t, 0, modules[1].Percent)

	rec = do(mux, http.MethodPost, "/activities/1/attempts", "7", `{"answers":{"0":"a"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(mux, http.MethodGet, "/modules", "7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &modules))
	assert.Equal(t, 1, modules[0].AttemptCount)
	assert.Equal(t, 50, modules[0].Percent)
	assert.Equal(t, 0, modules[1].Percent)

	// progress is per user
	rec = do(mux, http.MethodGet, "/modules", "8", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &modules))
	assert.Equal(t, 0, modules[0].Percent)

	rec = do(mux, http.MethodGet, "/modules", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetModuleListsActivities(t *testing.T) {
	mux := newTestMux(nil)

	rec := do(mux, http.MethodGet, "/modules/1", "7", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var detail domain.ModuleDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "Fixed expenses", detail.Module.Title)
	require.Len(t, detail.Activities, 2)
	assert.Equal(t, int64(1), detail.Activities[0].ID)
	assert.Equal(t, int64(2), detail.Activities[1].ID)

	rec = do(mux, http.MethodGet, "/modules/2", "7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"activities":[]`)

	rec = do(mux, http.MethodGet, "/modules/99", "7", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "module not found")

	rec = do(mux, http.MethodGet, "/modules/abc", "7", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
