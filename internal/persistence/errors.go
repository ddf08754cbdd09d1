package persistence

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/driver/pgdriver"
)

var (
	// ErrEmptyResult is returned by single-result queries that match nothing.
	ErrEmptyResult = errors.New("persistence: query returned no result")
	// ErrNonUniqueResult is returned by single-result queries that match several rows.
	ErrNonUniqueResult = errors.New("persistence: query returned more than one result")
	// ErrOptimisticLock signals a stale version or a row that vanished concurrently.
	ErrOptimisticLock = errors.New("persistence: entity was modified or removed concurrently")
	// ErrConstraintViolation signals a unique, not-null or foreign key violation.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrNotPersisted wraps every failed insert.
	ErrNotPersisted = errors.New("persistence: entity not persisted")
	// ErrClosed is returned by any call on a closed session.
	ErrClosed = errors.New("persistence: session is closed")
)

// mysql error numbers reported for integrity violations.
var mysqlConstraintCodes = map[uint16]struct{}{
	1048: {}, // column cannot be null
	1062: {}, // duplicate entry
	1216: {},
	1217: {},
	1451: {}, // row is referenced
	1452: {}, // referenced row missing
}

// classify maps driver errors onto the package sentinels, keeping the
// original error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isConstraintViolation(err) {
		return fmt.Errorf("%w: %w", ErrConstraintViolation, err)
	}
	return err
}

func isConstraintViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrConstraint
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.IntegrityViolation()
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		_, ok := mysqlConstraintCodes[myErr.Number]
		return ok
	}
	return false
}
