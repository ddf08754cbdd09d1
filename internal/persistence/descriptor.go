package persistence

import (
	"github.com/uptrace/bun"

	"github.com/Additional-Code/timeclock/internal/entity"
)

// Model constrains gateway type parameters to pointers of mapped entities.
type Model[T any] interface {
	*T
	entity.Record
}

// Descriptor describes how a gateway maps one entity type. It stands in for
// runtime type discovery: everything the gateway needs to know about T is
// declared here.
type Descriptor[T any, K comparable] struct {
	// Name is used in errors, logs and span names.
	Name string
	// Table namespaces the identity map.
	Table string
	// KeyColumn is the primary key column.
	KeyColumn string
	// Immutable columns are never written by an update.
	Immutable []string
	// Relations are loaded together with the entity.
	Relations []string
	// Key returns the primary key of an instance.
	Key func(*T) K
}

// columns excluded from every update, on top of the entity's own immutable
// columns.
var auditCreatedColumns = []string{"created_at", "created_by"}

func (d Descriptor[T, K]) excludedOnUpdate() []string {
	cols := make([]string, 0, len(d.Immutable)+len(auditCreatedColumns))
	cols = append(cols, d.Immutable...)
	return append(cols, auditCreatedColumns...)
}

func (d Descriptor[T, K]) withRelations(q *bun.SelectQuery) *bun.SelectQuery {
	for _, rel := range d.Relations {
		q = q.Relation(rel)
	}
	return q
}

// Filter narrows a select query built by FindOne or FindAll. Columns must be
// qualified with ?TableAlias because eager relations are joined.
type Filter func(*bun.SelectQuery) *bun.SelectQuery
