// Package crud holds the create, read, update and delete operations every
// entity service shares.
package crud

import (
	"context"
	"fmt"

	"github.com/Additional-Code/timeclock/internal/events"
	"github.com/Additional-Code/timeclock/internal/persistence"
	"github.com/Additional-Code/timeclock/internal/service/txn"
)

// Service forwards to one gateway, one transaction per call, and publishes
// a change after every committed write.
type Service[T any, PT persistence.Model[T]] struct {
	runner    *txn.Runner
	gateway   *persistence.Gateway[T, PT, int64]
	publisher events.Publisher
	name      string
	key       func(*T) string
}

// New builds the shared operations. key renders the natural key put on
// published changes.
func New[T any, PT persistence.Model[T]](runner *txn.Runner, gateway *persistence.Gateway[T, PT, int64], publisher events.Publisher, key func(*T) string) Service[T, PT] {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return Service[T, PT]{
		runner:    runner,
		gateway:   gateway,
		publisher: publisher,
		name:      gateway.Descriptor().Name,
		key:       key,
	}
}

// Runner exposes the transaction runner to embedding services.
func (s *Service[T, PT]) Runner() *txn.Runner {
	return s.runner
}

// Op names an operation for spans, logs and error messages.
func (s *Service[T, PT]) Op(method string) string {
	return s.name + "Service." + method
}

// Save stores a new entity.
func (s *Service[T, PT]) Save(ctx context.Context, e *T) (*T, error) {
	return txn.Call(ctx, s.runner, s.Op("Save"), func(ctx context.Context) (*T, error) {
		saved, err := s.gateway.Save(ctx, e)
		if err != nil {
			return nil, err
		}
		s.Changed(ctx, saved, events.ActionCreated)
		return saved, nil
	})
}

// Get returns nil and no error when nothing has the surrogate id.
func (s *Service[T, PT]) Get(ctx context.Context, id int64) (*T, error) {
	return txn.Call(ctx, s.runner, s.Op("Get"), func(ctx context.Context) (*T, error) {
		return s.gateway.Get(ctx, id)
	})
}

// GetAll lists every stored entity in no particular order.
func (s *Service[T, PT]) GetAll(ctx context.Context) ([]*T, error) {
	return txn.Call(ctx, s.runner, s.Op("GetAll"), s.gateway.GetAll)
}

// Update merges e into the stored entity.
func (s *Service[T, PT]) Update(ctx context.Context, e *T) (*T, error) {
	return txn.Call(ctx, s.runner, s.Op("Update"), func(ctx context.Context) (*T, error) {
		return s.UpdateWith(ctx, func(ctx context.Context) (*T, error) {
			return s.gateway.Update(ctx, e)
		})
	})
}

// UpdateWith runs a narrow update inside the caller's transaction and
// publishes its result.
func (s *Service[T, PT]) UpdateWith(ctx context.Context, update func(context.Context) (*T, error)) (*T, error) {
	updated, err := update(ctx)
	if err != nil {
		return nil, err
	}
	s.Changed(ctx, updated, events.ActionUpdated)
	return updated, nil
}

// Remove deletes e.
func (s *Service[T, PT]) Remove(ctx context.Context, e *T) error {
	return s.runner.Do(ctx, s.Op("Remove"), func(ctx context.Context) error {
		return s.RemoveEntity(ctx, e)
	})
}

// RemoveEntity deletes e inside the caller's transaction.
func (s *Service[T, PT]) RemoveEntity(ctx context.Context, e *T) error {
	if err := s.gateway.Remove(ctx, e); err != nil {
		return err
	}
	s.Changed(ctx, e, events.ActionRemoved)
	return nil
}

// RemoveAll deletes every stored entity in one transaction, using remove
// for each of them.
func (s *Service[T, PT]) RemoveAll(ctx context.Context, remove func(context.Context, *T) error) error {
	if remove == nil {
		remove = s.RemoveEntity
	}
	return s.runner.Do(ctx, s.Op("RemoveAll"), func(ctx context.Context) error {
		all, err := s.gateway.GetAll(ctx)
		if err != nil {
			return err
		}
		for _, e := range all {
			if err := remove(ctx, e); err != nil {
				return fmt.Errorf("remove %s %s: %w", s.name, s.key(e), err)
			}
		}
		return nil
	})
}

// IsExist reports whether something has the surrogate id.
func (s *Service[T, PT]) IsExist(ctx context.Context, id int64) (bool, error) {
	return txn.Call(ctx, s.runner, s.Op("IsExist"), func(ctx context.Context) (bool, error) {
		return s.gateway.IsExist(ctx, id)
	})
}

// IsManaged reports whether e is the very instance tracked by the session.
func (s *Service[T, PT]) IsManaged(e *T) (bool, error) {
	return s.gateway.IsManaged(e)
}

// Clear detaches every tracked entity of the session.
func (s *Service[T, PT]) Clear() {
	s.gateway.Clear()
}

// Changed queues a change event until the transaction commits.
func (s *Service[T, PT]) Changed(ctx context.Context, e *T, action string) {
	rec := PT(e)
	change := events.Change{
		Entity:  s.name,
		Action:  action,
		Key:     s.key(e),
		Version: *rec.VersionRef(),
		Actor:   rec.AuditRecord().LastModifiedBy(),
	}
	s.runner.Session().AfterCommit(func() {
		s.publisher.Publish(context.WithoutCancel(ctx), change)
	})
}
