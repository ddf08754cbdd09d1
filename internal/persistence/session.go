package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/audit"
)

// Session is a unit of work over one database handle. It tracks the
// entities it has loaded or written in an identity map so that repeated
// lookups of the same row yield the same instance.
//
// A Session is not safe for concurrent use; open one per logical operation.
type Session struct {
	db      *bun.DB
	tx      *bun.Tx
	stamper audit.Stamper
	logger  *zap.Logger

	managed     map[string]map[any]any
	afterCommit []func()
	closed      bool
}

// NewSession opens a unit of work. A nil stamper falls back to the default
// audit interceptor; a nil logger disables logging.
func NewSession(db *bun.DB, stamper audit.Stamper, logger *zap.Logger) *Session {
	if stamper == nil {
		stamper = audit.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		db:      db,
		stamper: stamper,
		logger:  logger,
		managed: make(map[string]map[any]any),
	}
}

// InTx runs fn inside a transaction. A nil result commits; an error or a
// panic rolls back and clears the identity map, since instances it holds may
// no longer match the database. Nested calls join the running transaction.
func (s *Session) InTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if s.tx != nil {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.tx = &tx
	defer func() {
		s.tx = nil
		if p := recover(); p != nil {
			s.rollback(tx)
			panic(p)
		}
	}()

	if err := fn(ctx); err != nil {
		s.rollback(tx)
		return err
	}
	if err := tx.Commit(); err != nil {
		s.afterCommit = nil
		s.Clear()
		return fmt.Errorf("commit transaction: %w", err)
	}
	callbacks := s.afterCommit
	s.afterCommit = nil
	for _, cb := range callbacks {
		cb()
	}
	return nil
}

// AfterCommit defers fn until the running transaction commits; it is
// dropped on rollback. Outside a transaction fn runs immediately.
func (s *Session) AfterCommit(fn func()) {
	if s.tx == nil {
		fn()
		return
	}
	s.afterCommit = append(s.afterCommit, fn)
}

// InTransaction reports whether a transaction is currently open.
func (s *Session) InTransaction() bool {
	return s.tx != nil
}

func (s *Session) rollback(tx bun.Tx) {
	s.afterCommit = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		s.logger.Warn("rollback failed", zap.Error(err))
	}
	s.Clear()
}

// Contains reports whether the entity with the given key is managed.
func (s *Session) Contains(table string, key any) bool {
	_, ok := s.lookup(table, key)
	return ok
}

// Evict detaches a single managed entity.
func (s *Session) Evict(table string, key any) {
	if entries, ok := s.managed[table]; ok {
		delete(entries, key)
	}
}

// Clear detaches every managed entity.
func (s *Session) Clear() {
	clear(s.managed)
}

// Close releases the session. An open transaction is rolled back. Closing
// twice is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	if s.tx != nil {
		s.rollback(*s.tx)
		s.tx = nil
	}
	s.Clear()
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	return s.closed
}

func (s *Session) ensureOpen() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

// conn returns the running transaction or the plain database handle.
func (s *Session) conn() bun.IDB {
	if s.tx != nil {
		return *s.tx
	}
	return s.db
}

func (s *Session) lookup(table string, key any) (any, bool) {
	entries, ok := s.managed[table]
	if !ok {
		return nil, false
	}
	v, ok := entries[key]
	return v, ok
}

func (s *Session) register(table string, key any, entity any) {
	entries, ok := s.managed[table]
	if !ok {
		entries = make(map[any]any)
		s.managed[table] = entries
	}
	entries[key] = entity
}
