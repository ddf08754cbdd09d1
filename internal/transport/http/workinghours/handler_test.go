package workinghours

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/audit"
	"github.com/Additional-Code/timeclock/internal/database/dbtest"
	"github.com/Additional-Code/timeclock/internal/dto"
	"github.com/Additional-Code/timeclock/internal/entity"
	"github.com/Additional-Code/timeclock/internal/timeclock"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  map[string]any  `json:"meta"`
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func post(t *testing.T, e *echo.Echo, path string) (int, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func TestHandler_ClockInOut(t *testing.T) {
	factory := timeclock.NewFactory(dbtest.Open(t), audit.New(), nil, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		_, err := svc.Developers.Save(ctx, entity.NewDeveloperBuilder().DeveloperID(100).Forename("Megan").Build())
		return err
	}))

	now := time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC)
	h := NewHandler(factory)
	h.now = func() time.Time { return now }
	e := echo.New()
	Register(e, h)

	code, env := post(t, e, "/developers/100/clock-out")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "conflict", env.Error.Kind)

	code, env = post(t, e, "/developers/100/clock-in")
	require.Equal(t, http.StatusCreated, code)
	var opened dto.WorkingHoursResponse
	require.NoError(t, json.Unmarshal(env.Data, &opened))
	assert.Equal(t, "2024-03-04", opened.Day)
	assert.Nil(t, opened.WorkEnd)

	code, _ = post(t, e, "/developers/100/clock-in")
	assert.Equal(t, http.StatusConflict, code, "already clocked in")

	now = now.Add(8*time.Hour + 15*time.Minute)
	code, env = post(t, e, "/developers/100/clock-out")
	require.Equal(t, http.StatusOK, code)
	var closed dto.WorkingHoursResponse
	require.NoError(t, json.Unmarshal(env.Data, &closed))
	require.NotNil(t, closed.WorkEnd)
	assert.Equal(t, int64(495), closed.Minutes)
	assert.Equal(t, 1, closed.Version)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/developers/100/working-hours", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, float64(495), env.Meta["total_minutes"])
}

func TestHandler_ClockInUnknownDeveloper(t *testing.T) {
	factory := timeclock.NewFactory(dbtest.Open(t), audit.New(), nil, zap.NewNop())
	e := echo.New()
	Register(e, NewHandler(factory))

	code, env := post(t, e, "/developers/9/clock-in")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", env.Error.Kind)
}
