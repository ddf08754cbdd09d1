package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var gatewayTracer = otel.Tracer("github.com/Additional-Code/timeclock/persistence")

// Gateway provides create, read, update and delete access for one entity
// type on top of a Session.
type Gateway[T any, PT Model[T], K comparable] struct {
	session *Session
	desc    Descriptor[T, K]
}

// NewGateway binds a descriptor to a session.
func NewGateway[T any, PT Model[T], K comparable](session *Session, desc Descriptor[T, K]) *Gateway[T, PT, K] {
	if desc.KeyColumn == "" {
		desc.KeyColumn = "id"
	}
	return &Gateway[T, PT, K]{session: session, desc: desc}
}

// Session exposes the unit of work the gateway runs on.
func (g *Gateway[T, PT, K]) Session() *Session {
	return g.session
}

// Descriptor returns the mapping the gateway was built with.
func (g *Gateway[T, PT, K]) Descriptor() Descriptor[T, K] {
	return g.desc
}

// Save stamps creation provenance, resets the version and inserts the
// entity, which becomes managed.
func (g *Gateway[T, PT, K]) Save(ctx context.Context, e *T) (*T, error) {
	if err := g.session.ensureOpen(); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("%w: nil %s", ErrNotPersisted, g.desc.Name)
	}
	ctx, span := g.start(ctx, "Save")
	defer span.End()

	rec := PT(e)
	g.session.stamper.StampCreated(rec)
	*rec.VersionRef() = 0

	if _, err := g.session.conn().NewInsert().Model(e).Exec(ctx); err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrNotPersisted, g.desc.Name, classify(err))
		g.fail(span, err, "insert failed")
		return nil, err
	}

	key := g.desc.Key(e)
	g.session.register(g.desc.Table, key, e)
	span.SetAttributes(attribute.String("entity.key", fmt.Sprint(key)))
	return e, nil
}

// Get returns the entity with the given primary key. A managed instance is
// returned without touching the database. A miss yields nil and no error.
func (g *Gateway[T, PT, K]) Get(ctx context.Context, key K) (*T, error) {
	if err := g.session.ensureOpen(); err != nil {
		return nil, err
	}
	if v, ok := g.session.lookup(g.desc.Table, key); ok {
		return v.(*T), nil
	}
	ctx, span := g.start(ctx, "Get", attribute.String("entity.key", fmt.Sprint(key)))
	defer span.End()

	e, err := g.load(ctx, key)
	if errors.Is(err, ErrEmptyResult) {
		return nil, nil
	}
	if err != nil {
		g.fail(span, err, "select failed")
		return nil, fmt.Errorf("get %s: %w", g.desc.Name, err)
	}
	return g.adopt(e), nil
}

// GetAll returns every stored entity in no particular order.
func (g *Gateway[T, PT, K]) GetAll(ctx context.Context) ([]*T, error) {
	return g.FindAll(ctx, nil)
}

// Update writes the state of e as a new version. Natural keys, immutable
// columns and creation provenance keep their stored values, in the database
// and in the returned instance. If the stored version differs from the
// one carried by e, ErrOptimisticLock is returned and nothing is written.
// The returned instance is the managed one; e itself is only changed when
// it is that instance.
func (g *Gateway[T, PT, K]) Update(ctx context.Context, e *T) (*T, error) {
	if err := g.session.ensureOpen(); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("update %s: nil entity", g.desc.Name)
	}
	key := g.desc.Key(e)
	ctx, span := g.start(ctx, "Update", attribute.String("entity.key", fmt.Sprint(key)))
	defer span.End()

	next := *e
	rec := PT(&next)
	g.session.stamper.StampUpdated(rec)
	version := *rec.VersionRef()
	*rec.VersionRef() = version + 1

	res, err := g.session.conn().NewUpdate().
		Model(&next).
		ExcludeColumn(g.desc.excludedOnUpdate()...).
		WherePK().
		Where("version = ?", version).
		Exec(ctx)
	if err != nil {
		err = fmt.Errorf("update %s: %w", g.desc.Name, classify(err))
		g.fail(span, err, "update failed")
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		err := fmt.Errorf("update %s %v at version %d: %w", g.desc.Name, key, version, ErrOptimisticLock)
		g.fail(span, err, "stale version")
		return nil, err
	}

	if v, ok := g.session.lookup(g.desc.Table, key); ok {
		managed := v.(*T)
		g.keepExcluded(&next, managed)
		*managed = next
		return managed, nil
	}

	// Not managed: the stored row is the only source for the columns the
	// update skipped.
	stored, err := g.load(ctx, key)
	if err != nil {
		g.fail(span, err, "reload failed")
		return nil, fmt.Errorf("update %s: %w", g.desc.Name, err)
	}
	g.keepExcluded(&next, stored)
	*stored = next
	g.session.register(g.desc.Table, key, stored)
	return stored, nil
}

// keepExcluded copies the columns an update never writes from src into dst.
func (g *Gateway[T, PT, K]) keepExcluded(dst, src *T) {
	table := g.session.db.Table(reflect.TypeFor[T]())
	to, from := reflect.ValueOf(dst).Elem(), reflect.ValueOf(src).Elem()
	for _, col := range g.desc.excludedOnUpdate() {
		field, ok := table.FieldMap[col]
		if !ok {
			continue
		}
		field.Value(to).Set(field.Value(from))
	}
}

func (g *Gateway[T, PT, K]) load(ctx context.Context, key K) (*T, error) {
	e := new(T)
	err := g.desc.withRelations(g.session.conn().NewSelect().Model(e)).
		Where("?TableAlias.? = ?", bun.Ident(g.desc.KeyColumn), key).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmptyResult
	}
	return e, err
}

// Remove deletes the row of e if its version is still current and detaches
// the entity. Rows still referenced by other rows fail with
// ErrConstraintViolation.
func (g *Gateway[T, PT, K]) Remove(ctx context.Context, e *T) error {
	if err := g.session.ensureOpen(); err != nil {
		return err
	}
	if e == nil {
		return fmt.Errorf("remove %s: nil entity", g.desc.Name)
	}
	key := g.desc.Key(e)
	ctx, span := g.start(ctx, "Remove", attribute.String("entity.key", fmt.Sprint(key)))
	defer span.End()

	version := *PT(e).VersionRef()
	res, err := g.session.conn().NewDelete().
		Model(e).
		WherePK().
		Where("version = ?", version).
		Exec(ctx)
	if err != nil {
		err = fmt.Errorf("remove %s: %w", g.desc.Name, classify(err))
		g.fail(span, err, "delete failed")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		err := fmt.Errorf("remove %s %v at version %d: %w", g.desc.Name, key, version, ErrOptimisticLock)
		g.fail(span, err, "stale version")
		return err
	}
	g.session.Evict(g.desc.Table, key)
	return nil
}

// IsExist reports whether a row with the given primary key is stored.
func (g *Gateway[T, PT, K]) IsExist(ctx context.Context, key K) (bool, error) {
	if err := g.session.ensureOpen(); err != nil {
		return false, err
	}
	if g.session.Contains(g.desc.Table, key) {
		return true, nil
	}
	ctx, span := g.start(ctx, "IsExist", attribute.String("entity.key", fmt.Sprint(key)))
	defer span.End()

	ok, err := g.session.conn().NewSelect().
		Model((*T)(nil)).
		Where("?TableAlias.? = ?", bun.Ident(g.desc.KeyColumn), key).
		Exists(ctx)
	if err != nil {
		g.fail(span, err, "exists failed")
		return false, fmt.Errorf("exists %s: %w", g.desc.Name, err)
	}
	return ok, nil
}

// IsManaged reports whether e is the very instance tracked by the session.
func (g *Gateway[T, PT, K]) IsManaged(e *T) (bool, error) {
	if err := g.session.ensureOpen(); err != nil {
		return false, err
	}
	if e == nil {
		return false, nil
	}
	v, ok := g.session.lookup(g.desc.Table, g.desc.Key(e))
	return ok && v.(*T) == e, nil
}

// Clear detaches every entity managed by the underlying session.
func (g *Gateway[T, PT, K]) Clear() {
	g.session.Clear()
}

// Close closes the underlying session.
func (g *Gateway[T, PT, K]) Close() error {
	return g.session.Close()
}

// FindOne runs a single-result query. No match yields ErrEmptyResult and
// several matches yield ErrNonUniqueResult.
func (g *Gateway[T, PT, K]) FindOne(ctx context.Context, filter Filter) (*T, error) {
	if err := g.session.ensureOpen(); err != nil {
		return nil, err
	}
	ctx, span := g.start(ctx, "FindOne")
	defer span.End()

	var rows []*T
	q := g.desc.withRelations(g.session.conn().NewSelect().Model(&rows))
	if filter != nil {
		q = filter(q)
	}
	if err := q.Limit(2).Scan(ctx); err != nil {
		g.fail(span, err, "select failed")
		return nil, fmt.Errorf("find %s: %w", g.desc.Name, err)
	}
	switch len(rows) {
	case 0:
		return nil, fmt.Errorf("find %s: %w", g.desc.Name, ErrEmptyResult)
	case 1:
		return g.adopt(rows[0]), nil
	default:
		return nil, fmt.Errorf("find %s: %w", g.desc.Name, ErrNonUniqueResult)
	}
}

// FindAll runs a list query; a nil filter selects every row.
func (g *Gateway[T, PT, K]) FindAll(ctx context.Context, filter Filter) ([]*T, error) {
	if err := g.session.ensureOpen(); err != nil {
		return nil, err
	}
	ctx, span := g.start(ctx, "FindAll")
	defer span.End()

	var rows []*T
	q := g.desc.withRelations(g.session.conn().NewSelect().Model(&rows))
	if filter != nil {
		q = filter(q)
	}
	if err := q.Scan(ctx); err != nil {
		g.fail(span, err, "select failed")
		return nil, fmt.Errorf("find %s: %w", g.desc.Name, err)
	}
	for i, row := range rows {
		rows[i] = g.adopt(row)
	}
	span.SetAttributes(attribute.Int("result.count", len(rows)))
	return rows, nil
}

// adopt swaps a freshly loaded row for the managed instance with the same
// key, or starts managing it.
func (g *Gateway[T, PT, K]) adopt(e *T) *T {
	key := g.desc.Key(e)
	if v, ok := g.session.lookup(g.desc.Table, key); ok {
		return v.(*T)
	}
	g.session.register(g.desc.Table, key, e)
	return e
}

func (g *Gateway[T, PT, K]) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("entity.name", g.desc.Name))
	return gatewayTracer.Start(ctx, g.desc.Name+"Gateway."+op, trace.WithAttributes(attrs...))
}

func (g *Gateway[T, PT, K]) fail(span trace.Span, err error, msg string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	g.session.logger.Debug(msg, zap.String("entity", g.desc.Name), zap.Error(err))
}
