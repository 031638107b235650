package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/daily-diet-api/internal/config"
	httpapi "github.com/redmonkez12/daily-diet-api/internal/http"
	"github.com/redmonkez12/daily-diet-api/internal/httputil"
	"github.com/redmonkez12/daily-diet-api/internal/logging"
	"github.com/redmonkez12/daily-diet-api/internal/meal"
	"github.com/redmonkez12/daily-diet-api/internal/mockstore"
	"github.com/redmonkez12/daily-diet-api/internal/ratelimit"
	"github.com/redmonkez12/daily-diet-api/internal/user"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func newRouter(cfg *config.Config, limiter ratelimit.Limiter, db httpapi.Pinger) *chi.Mux {
	logger := logging.NewNopLogger()
	_, users, meals := mockstore.New()

	return httpapi.NewRouter(cfg, httpapi.Handlers{
		Users: user.NewHandler(user.NewService(users, logger)),
		Meals: meal.NewHandler(meal.NewService(meals, users, logger)),
	}, limiter, db, logger)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Env:            "prod",
			RequestTimeout: 5 * time.Second,
		},
	}
}

func newTestRouter(t *testing.T, limiter ratelimit.Limiter, db httpapi.Pinger) *chi.Mux {
	t.Helper()
	return newRouter(testConfig(), limiter, db)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func count(t *testing.T, router http.Handler, path string) int {
	t.Helper()
	rec := do(t, router, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[meal.CountResponse](t, rec).Meals.Count
}

func TestRouter_MealLifecycle(t *testing.T) {
	router := newTestRouter(t, ratelimit.NewMemoryLimiter(100, time.Minute), pinger{})

	rec := do(t, router, http.MethodPost, "/users", map[string]string{"name": "Ann", "email": "a@x.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	uid := decode[user.Response](t, rec).User.ID

	rec = do(t, router, http.MethodPost, "/meals", map[string]any{
		"title":       "Lunch",
		"description": "rice and beans",
		"date":        "2024-10-01",
		"hour":        "12:00:00",
		"is_diet":     true,
		"user_id":     uid,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[meal.Response](t, rec).Meal
	assert.Equal(t, uid, created.UserID)

	assert.Equal(t, 1, count(t, router, "/meals/"+uid.String()+"/registered"))
	assert.Equal(t, 1, count(t, router, "/meals/"+uid.String()+"/in-diet"))
	assert.Equal(t, 0, count(t, router, "/meals/"+uid.String()+"/out-diet"))
	assert.Equal(t, 1, count(t, router, "/meals/"+uid.String()+"/sequence-in-diet"))

	mealPath := "/meals/" + created.ID.String() + "/" + uid.String()

	rec = do(t, router, http.MethodGet, mealPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lunch", decode[meal.Response](t, rec).Meal.Title)

	rec = do(t, router, http.MethodPut, mealPath, map[string]any{"is_diet": "false"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	updated := decode[meal.Response](t, rec).Meal
	assert.False(t, updated.IsDiet)
	assert.Equal(t, "Lunch", updated.Title)
	assert.Equal(t, 1, count(t, router, "/meals/"+uid.String()+"/out-diet"))

	rec = do(t, router, http.MethodGet, "/meals/"+uid.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[meal.ListResponse](t, rec).Meals, 1)

	rec = do(t, router, http.MethodDelete, mealPath, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, mealPath, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, httputil.CodeMealNotFound, decode[httputil.ErrorResponse](t, rec).Code)

	rec = do(t, router, http.MethodGet, "/meals/"+uid.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[meal.ListResponse](t, rec).Meals)
}

func TestRouter_UserLifecycleCascadesMeals(t *testing.T) {
	router := newTestRouter(t, ratelimit.NewMemoryLimiter(100, time.Minute), pinger{})

	rec := do(t, router, http.MethodPost, "/users", map[string]string{"name": "Ann", "email": "a@x.com"})
	require.Equal(t, http.StatusCreated, rec.Code)
	uid := decode[user.Response](t, rec).User.ID
	userPath := "/users/" + uid.String()

	rec = do(t, router, http.MethodPut, userPath, map[string]string{"name": "Anne", "email": "anne@x.com"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Anne", decode[user.Response](t, rec).User.Name)

	rec = do(t, router, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[user.ListResponse](t, rec).Users, 1)

	rec = do(t, router, http.MethodPost, "/meals", map[string]any{
		"title": "Lunch", "date": "2024-10-01", "hour": "12:00", "is_diet": 1, "user_id": uid,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodDelete, userPath, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, userPath, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/meals/"+uid.String()+"/registered", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, httputil.CodeUserNotFound, decode[httputil.ErrorResponse](t, rec).Code)
}

func TestRouter_ErrorResponses(t *testing.T) {
	router := newTestRouter(t, ratelimit.NewMemoryLimiter(100, time.Minute), pinger{})
	missing := uuid.NewString()

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown user", http.MethodGet, "/users/" + missing, nil, http.StatusNotFound, httputil.CodeUserNotFound},
		{"malformed user id", http.MethodGet, "/users/42", nil, http.StatusBadRequest, httputil.CodeInvalidID},
		{"update unknown user", http.MethodPut, "/users/" + missing, map[string]string{"name": "A", "email": "a@x.com"}, http.StatusNotFound, httputil.CodeUserNotFound},
		{"delete unknown user", http.MethodDelete, "/users/" + missing, nil, http.StatusNotFound, httputil.CodeUserNotFound},
		{"invalid json", http.MethodPost, "/users", `{"name":`, http.StatusBadRequest, httputil.CodeInvalidRequestBody},
		{"empty body", http.MethodPost, "/users", nil, http.StatusBadRequest, httputil.CodeInvalidRequestBody},
		{"blank name", http.MethodPost, "/users", map[string]string{"name": " ", "email": "a@x.com"}, http.StatusBadRequest, httputil.CodeValidationFailed},
		{"meal for unknown user", http.MethodPost, "/meals", map[string]any{"user_id": missing}, http.StatusNotFound, httputil.CodeUserNotFound},
		{"meal with bad user id", http.MethodPost, "/meals", map[string]any{"user_id": "nope"}, http.StatusBadRequest, httputil.CodeValidationFailed},
		{"meals of unknown user", http.MethodGet, "/meals/" + missing, nil, http.StatusNotFound, httputil.CodeUserNotFound},
		{"in-diet of malformed id", http.MethodGet, "/meals/abc/in-diet", nil, http.StatusBadRequest, httputil.CodeInvalidID},
		{"meal of unknown user", http.MethodGet, "/meals/" + uuid.NewString() + "/" + missing, nil, http.StatusNotFound, httputil.CodeUserNotFound},
		{"update unknown meal", http.MethodPut, "/meals/" + uuid.NewString() + "/" + missing, map[string]any{}, http.StatusNotFound, httputil.CodeMealNotFound},
		{"meal with bad flag for unknown user", http.MethodPost, "/meals", map[string]any{"user_id": missing, "is_diet": "yes"}, http.StatusNotFound, httputil.CodeUserNotFound},
		{"meal with numeric title for unknown user", http.MethodPost, "/meals", map[string]any{"title": 5, "user_id": missing}, http.StatusNotFound, httputil.CodeUserNotFound},
		{"update unknown meal with bad flag", http.MethodPut, "/meals/" + uuid.NewString() + "/" + missing, map[string]any{"is_diet": "maybe"}, http.StatusNotFound, httputil.CodeMealNotFound},
		{"update unknown user with numeric name", http.MethodPut, "/users/" + missing, map[string]any{"name": 5}, http.StatusNotFound, httputil.CodeUserNotFound},
		{"numeric name", http.MethodPost, "/users", map[string]any{"name": 5, "email": "a@x.com"}, http.StatusBadRequest, httputil.CodeValidationFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, router, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.code, decode[httputil.ErrorResponse](t, rec).Code)
		})
	}
}

func TestRouter_ValidationListsFields(t *testing.T) {
	router := newTestRouter(t, ratelimit.NewMemoryLimiter(100, time.Minute), pinger{})

	rec := do(t, router, http.MethodPost, "/users", map[string]string{"name": "Ann", "email": "a@x.com"})
	require.Equal(t, http.StatusCreated, rec.Code)
	uid := decode[user.Response](t, rec).User.ID

	rec = do(t, router, http.MethodPost, "/meals", map[string]any{
		"title": "Lunch", "date": "01/10/2024", "hour": "12:00", "user_id": uid,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[httputil.ErrorResponse](t, rec)
	assert.Equal(t, httputil.CodeValidationFailed, resp.Code)
	assert.Contains(t, resp.Fields, "date")
	assert.Contains(t, resp.Fields, "is_diet")
	assert.NotContains(t, resp.Fields, "title")

	rec = do(t, router, http.MethodPost, "/meals", map[string]any{
		"title": 5, "date": "2024-10-01", "hour": "12:00", "is_diet": "yes", "user_id": uid,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp = decode[httputil.ErrorResponse](t, rec)
	assert.Equal(t, "must be a JSON string", resp.Fields["title"])
	assert.Equal(t, "must be true, false, 1 or 0", resp.Fields["is_diet"])
}

func TestRouter_RateLimitsMutatingRoutes(t *testing.T) {
	router := newTestRouter(t, ratelimit.NewMemoryLimiter(1, time.Hour), pinger{})

	rec := do(t, router, http.MethodPost, "/users", map[string]string{"name": "Ann", "email": "a@x.com"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPost, "/users", map[string]string{"name": "Bob", "email": "b@x.com"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, httputil.CodeTooManyRequests, decode[httputil.ErrorResponse](t, rec).Code)

	rec = do(t, router, http.MethodGet, "/users", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "reads are not limited")
}

func TestRouter_ForwardedForIgnoredUnlessProxyTrusted(t *testing.T) {
	post := func(router http.Handler, i int) int {
		body := strings.NewReader(`{"name":"Ann","email":"a@x.com"}`)
		req := httptest.NewRequest(http.MethodPost, "/users", body)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	limiter := ratelimit.NewMemoryLimiter(2, time.Hour)
	router := newRouter(testConfig(), limiter, pinger{})

	created := 0
	for i := 0; i < 10; i++ {
		if post(router, i) == http.StatusCreated {
			created++
		}
	}
	assert.Equal(t, 2, created)
	assert.Equal(t, 1, limiter.Len())

	cfg := testConfig()
	cfg.Server.TrustProxy = true
	limiter = ratelimit.NewMemoryLimiter(2, time.Hour)
	router = newRouter(cfg, limiter, pinger{})

	assert.Equal(t, http.StatusCreated, post(router, 1))
	assert.Equal(t, http.StatusCreated, post(router, 2))
	assert.Equal(t, 2, limiter.Len(), "behind a trusted proxy each forwarded client has its own bucket")
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, ratelimit.NewMemoryLimiter(1, time.Hour), pinger{})
	rec := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	router = newTestRouter(t, ratelimit.NewMemoryLimiter(1, time.Hour), pinger{err: errors.New("connection refused")})
	rec = do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, httputil.CodeDatabaseUnhealthy, decode[httputil.ErrorResponse](t, rec).Code)
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestRouter(t, ratelimit.NewMemoryLimiter(1, time.Hour), pinger{})
	do(t, router, http.MethodGet, "/users", nil)

	rec := do(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `diet_api_http_requests_total{method="GET",route="/users`)
}

func TestRequestTimeout_SetsDeadline(t *testing.T) {
	var deadline time.Time
	var ok bool
	h := httpapi.RequestTimeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
}
