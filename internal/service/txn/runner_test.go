package txn_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/timeclock/internal/audit"
	"github.com/Additional-Code/timeclock/internal/database/dbtest"
	"github.com/Additional-Code/timeclock/internal/persistence"
	"github.com/Additional-Code/timeclock/internal/service/txn"
	"github.com/Additional-Code/timeclock/pkg/errorbank"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		err  error
		kind errorbank.Kind
	}{
		{persistence.ErrEmptyResult, errorbank.KindNotFound},
		{persistence.ErrNonUniqueResult, errorbank.KindConflict},
		{persistence.ErrOptimisticLock, errorbank.KindPreconditionFailed},
		{fmt.Errorf("%w: %w", persistence.ErrNotPersisted, persistence.ErrConstraintViolation), errorbank.KindConflict},
		{persistence.ErrNotPersisted, errorbank.KindUnprocessableEntity},
		{persistence.ErrClosed, errorbank.KindUnavailable},
		{errors.New("disk full"), errorbank.KindInternal},
		{errorbank.BadRequest("bad input"), errorbank.KindBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got := txn.Translate("CustomerService.Get", fmt.Errorf("wrapped: %w", tt.err))
			assert.Equal(t, tt.kind, got.Kind())
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestRunner_Do(t *testing.T) {
	session := persistence.NewSession(dbtest.Open(t), audit.New(), nil)
	runner := txn.NewRunner(session, nil)
	ctx := context.Background()

	require.NoError(t, runner.Do(ctx, "noop", func(ctx context.Context) error {
		assert.True(t, session.InTransaction())
		return nil
	}))

	err := runner.Do(ctx, "stale", func(context.Context) error {
		return persistence.ErrOptimisticLock
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrOptimisticLock)
	assert.True(t, errorbank.IsKind(err, errorbank.KindPreconditionFailed))

	n, err := txn.Call(ctx, runner, "answer", func(context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	require.NoError(t, session.Close())
	_, err = txn.Call(ctx, runner, "closed", func(context.Context) (int, error) { return 1, nil })
	assert.ErrorIs(t, err, persistence.ErrClosed)
	assert.True(t, errorbank.IsKind(err, errorbank.KindUnavailable))
}
