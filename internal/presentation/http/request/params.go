// Package request parses path and query values into typed arguments.
package request

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/timeclock/pkg/errorbank"
)

// Int64Param reads a numeric path parameter.
func Int64Param(c echo.Context, name string) (int64, error) {
	raw := c.Param(name)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errorbank.BadRequest("invalid "+name, errorbank.WithCause(err), errorbank.WithDetail(name, raw))
	}
	return v, nil
}

// OptionalBoolQuery reads a boolean query parameter; ok is false when absent.
func OptionalBoolQuery(c echo.Context, name string) (v bool, ok bool, err error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return false, false, nil
	}
	v, err = strconv.ParseBool(raw)
	if err != nil {
		return false, false, errorbank.BadRequest("invalid "+name, errorbank.WithCause(err), errorbank.WithDetail(name, raw))
	}
	return v, true, nil
}

// Bind decodes the request body into dst.
func Bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errorbank.BadRequest("invalid payload", errorbank.WithCause(err))
	}
	return nil
}

// Int64Query reads a numeric query parameter.
func Int64Query(c echo.Context, name string) (int64, error) {
	raw := c.QueryParam(name)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errorbank.BadRequest("invalid "+name, errorbank.WithCause(err), errorbank.WithDetail(name, raw))
	}
	return v, nil
}
