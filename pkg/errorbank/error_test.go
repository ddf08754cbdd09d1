package errorbank_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Additional-Code/timeclock/pkg/errorbank"
)

func TestAppError_Codes(t *testing.T) {
	tests := []struct {
		err  *errorbank.AppError
		http int
		grpc codes.Code
	}{
		{errorbank.BadRequest("bad"), http.StatusBadRequest, codes.InvalidArgument},
		{errorbank.Conflict("dup"), http.StatusConflict, codes.AlreadyExists},
		{errorbank.NotFound("gone"), http.StatusNotFound, codes.NotFound},
		{errorbank.PreconditionFailed("stale"), http.StatusPreconditionFailed, codes.Aborted},
		{errorbank.Unprocessable("nope"), http.StatusUnprocessableEntity, codes.FailedPrecondition},
		{errorbank.Unavailable("closed"), http.StatusServiceUnavailable, codes.Unavailable},
		{errorbank.Internal("boom"), http.StatusInternalServerError, codes.Internal},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Kind()), func(t *testing.T) {
			assert.Equal(t, tt.http, tt.err.StatusCode())
			assert.Equal(t, tt.grpc, tt.err.GRPCCode())
			assert.Equal(t, tt.grpc, status.Code(tt.err))
		})
	}
}

func TestAppError_CauseChain(t *testing.T) {
	cause := errors.New("version mismatch")
	err := fmt.Errorf("update: %w", errorbank.PreconditionFailed("stale customer", errorbank.WithCause(cause)))

	assert.ErrorIs(t, err, cause)
	assert.True(t, errorbank.IsKind(err, errorbank.KindPreconditionFailed))
	assert.Equal(t, errorbank.KindPreconditionFailed, errorbank.KindOf(err))
	assert.Equal(t, errorbank.KindInternal, errorbank.KindOf(cause))
	assert.Equal(t, "stale customer: version mismatch", errorbank.From(err).Error())
}

func TestFrom_WrapsPlainErrors(t *testing.T) {
	assert.Nil(t, errorbank.From(nil))

	appErr := errorbank.From(errors.New("disk full"))
	assert.Equal(t, errorbank.KindInternal, appErr.Kind())
	assert.Equal(t, "internal error", appErr.Message())
}

func TestWithDetails(t *testing.T) {
	err := errorbank.NotFound("", errorbank.WithDetail("customer_id", 9999), errorbank.WithDetails(map[string]any{"entity": "Customer"}))

	assert.Equal(t, "not_found", err.Message())
	assert.Equal(t, map[string]any{"customer_id": 9999, "entity": "Customer"}, err.Details())
}

func TestUnknownKindMapsToInternal(t *testing.T) {
	err := errorbank.New(errorbank.Kind("teapot"), "short and stout")

	assert.Equal(t, http.StatusInternalServerError, err.StatusCode())
	assert.Equal(t, codes.Internal, err.GRPCCode())

	var nilErr *errorbank.AppError
	assert.Equal(t, http.StatusInternalServerError, nilErr.StatusCode())
}
