package customer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/audit"
	"github.com/Additional-Code/timeclock/internal/cache"
	"github.com/Additional-Code/timeclock/internal/config"
	"github.com/Additional-Code/timeclock/internal/database/dbtest"
	"github.com/Additional-Code/timeclock/internal/dto"
	"github.com/Additional-Code/timeclock/internal/entity"
	"github.com/Additional-Code/timeclock/internal/timeclock"
)

func call(t *testing.T, e *echo.Echo, method, path, body string) (int, json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env.Data
}

func TestHandler_ContactAndCascade(t *testing.T) {
	factory := timeclock.NewFactory(dbtest.Open(t), audit.New(audit.WithActor(func() string { return "clerk" })), nil, zap.NewNop())
	store := cache.NewMemoryStore(time.Minute)
	e := echo.New()
	Register(e, NewHandler(factory, store, config.Config{}, nil))

	code, _ := call(t, e, http.MethodPost, "/customers", `{"customer_id":150,"name":"Company150","contact":"Secretary"}`)
	require.Equal(t, http.StatusCreated, code)

	ctx := context.Background()
	require.NoError(t, factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		if _, err := svc.Developers.Save(ctx, entity.NewDeveloperBuilder().DeveloperID(7).Forename("Megan").Build()); err != nil {
			return err
		}
		if _, err := svc.Jobs.Save(ctx, entity.NewJobBuilder().OrderNumber(1).ProjectName("P").Status(entity.JobStatusOpen).CustomerID(150).DeveloperID(7).Build()); err != nil {
			return err
		}
		_, err := svc.Pays.Save(ctx, entity.NewPayBuilder().PayID(entity.FormatPayID(150, 1, 1)).OrderNumber(1).Payable(true).Build())
		return err
	}))

	code, data := call(t, e, http.MethodGet, "/customers/150", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, store.Len())

	code, data = call(t, e, http.MethodPatch, "/customers/150/contact", `{"contact":"CEO"}`)
	require.Equal(t, http.StatusOK, code)
	var updated dto.CustomerResponse
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.Equal(t, "CEO", updated.Contact)
	assert.Equal(t, "clerk", updated.Audit.UpdatedBy)
	require.NotNil(t, updated.Audit.UpdatedAt)
	assert.Zero(t, store.Len())

	code, _ = call(t, e, http.MethodDelete, "/customers/150", "")
	require.Equal(t, http.StatusNoContent, code)

	require.NoError(t, factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		exists, err := svc.Jobs.IsExistWithOrderNumber(ctx, 1)
		require.NoError(t, err)
		assert.False(t, exists)
		exists, err = svc.Pays.IsExistWithPayID(ctx, entity.FormatPayID(150, 1, 1))
		require.NoError(t, err)
		assert.False(t, exists)
		return nil
	}))

	code, _ = call(t, e, http.MethodGet, "/customers/150", "")
	assert.Equal(t, http.StatusNotFound, code)
}
