package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/timeclock/pkg/errorbank"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), rec
}

func TestBuilder_Success(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, New(c).WithStatus(http.StatusCreated).WithData(map[string]int{"a": 1}).WithMeta("count", 1).Build())

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"count": float64(1)}, body["meta"])
}

func TestBuilder_NoContent(t *testing.T) {
	c, rec := newContext()
	require.NoError(t, New(c).WithStatus(http.StatusNoContent).Build())
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{name: "not found", err: errorbank.NotFound("customer not found"), status: http.StatusNotFound, kind: "not_found"},
		{name: "stale", err: errorbank.PreconditionFailed("stale version"), status: http.StatusPreconditionFailed, kind: "precondition_failed"},
		{name: "plain error", err: errors.New("boom"), status: http.StatusInternalServerError, kind: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext()
			require.NoError(t, New(c).WithError(tt.err).Build())

			assert.Equal(t, tt.status, rec.Code)
			var body struct {
				Success bool `json:"success"`
				Error   struct {
					Kind string `json:"kind"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.kind, body.Error.Kind)
		})
	}
}

func TestBuilder_RequestID(t *testing.T) {
	c, rec := newContext()
	c.Response().Header().Set(echo.HeaderXRequestID, "req-1")

	require.NoError(t, New(c).WithError(errorbank.BadRequest("bad input")).Build())

	var body struct {
		Data any            `json:"data"`
		Meta map[string]any `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Nil(t, body.Data)
	assert.Equal(t, "req-1", body.Meta["request_id"])
}
