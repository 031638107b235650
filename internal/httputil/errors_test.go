package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/daily-diet-api/internal/logging"
	"github.com/redmonkez12/daily-diet-api/internal/validation"
)

func TestRespondFailure(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid id", fmt.Errorf("parse: %w", validation.ErrInvalidID), http.StatusBadRequest, CodeInvalidID},
		{"validation", validation.FieldError("title", "is required"), http.StatusBadRequest, CodeValidationFailed},
		{"deadline", fmt.Errorf("failed to list meals: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, CodeTimeout},
		{"internal", errors.New("pq: relation does not exist"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondFailure(rec, logging.NewNopLogger(), tc.err, "test")

			assert.Equal(t, tc.status, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.code, resp.Code)
			assert.NotContains(t, resp.Error, "pq:", "internal details stay in the logs")
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	cases := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"valid", `{"name":"Ann"}`, false},
		{"unknown fields ignored", `{"name":"Ann","age":3}`, false},
		{"empty", ``, true},
		{"malformed", `{"name":`, true},
		{"two documents", `{"name":"a"}{"name":"b"}`, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.payload))
			var dst body
			err := DecodeJSON(httptest.NewRecorder(), req, &dst)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Ann", dst.Name)
		})
	}
}

type deferringBody struct {
	validation.Deferred

	Title string `json:"title"`
	Owner string `json:"user_id"`
}

func TestDecodeJSON_DefersTypeMismatch(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":5,"user_id":"abc"}`))

	var dst deferringBody
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &dst))
	assert.Equal(t, "abc", dst.Owner, "fields after the mismatch are still decoded")

	var verr *validation.Error
	require.ErrorAs(t, validation.Struct(dst), &verr)
	assert.Equal(t, "must be a JSON string", verr.Fields["title"])
}

func TestDecodeJSON_SyntaxErrorStillFails(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))

	var dst deferringBody
	assert.Error(t, DecodeJSON(httptest.NewRecorder(), req, &dst))
}
