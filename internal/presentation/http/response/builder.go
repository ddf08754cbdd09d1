// Package response renders the JSON envelope shared by every HTTP route.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/timeclock/pkg/errorbank"
)

type envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *errorBody     `json:"error,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

type errorBody struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Builder accumulates a response and writes it once with Build.
type Builder struct {
	ctx    echo.Context
	status int
	data   any
	err    error
	meta   map[string]any
}

// New starts a 200 response for c.
func New(c echo.Context) *Builder {
	return &Builder{ctx: c, status: http.StatusOK}
}

// WithStatus sets the status code. Non-positive values are ignored.
func (b *Builder) WithStatus(status int) *Builder {
	if status > 0 {
		b.status = status
	}
	return b
}

func (b *Builder) WithData(data any) *Builder {
	b.data = data
	return b
}

// WithError switches the response to the error envelope.
func (b *Builder) WithError(err error) *Builder {
	b.err = err
	return b
}

func (b *Builder) WithMeta(key string, value any) *Builder {
	if key == "" {
		return b
	}
	if b.meta == nil {
		b.meta = map[string]any{}
	}
	b.meta[key] = value
	return b
}

// Build writes the response. A 204 carries no body.
func (b *Builder) Build() error {
	if id := b.ctx.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		b.WithMeta("request_id", id)
	}

	if b.err == nil {
		if b.status == http.StatusNoContent {
			return b.ctx.NoContent(http.StatusNoContent)
		}
		return b.ctx.JSON(b.status, envelope{Success: true, Data: b.data, Meta: b.meta})
	}

	appErr := errorbank.From(b.err)
	status := b.status
	if status < http.StatusBadRequest {
		status = appErr.StatusCode()
	}
	body := &errorBody{Kind: string(appErr.Kind()), Message: appErr.Message(), Details: appErr.Details()}
	if status >= http.StatusInternalServerError {
		// the cause may carry SQL or driver text
		body.Details = nil
		b.ctx.Logger().Errorf("request failed: %v", b.err)
	}
	return b.ctx.JSON(status, envelope{Error: body, Meta: b.meta})
}
