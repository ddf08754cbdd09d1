package customer

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/Additional-Code/timeclock/internal/entity"
	"github.com/Additional-Code/timeclock/internal/persistence"
)

// Descriptor maps customers for the generic gateway.
var Descriptor = persistence.Descriptor[entity.Customer, int64]{
	Name:      "Customer",
	Table:     "customers",
	KeyColumn: "id",
	Immutable: []string{"customer_id"},
	Key:       func(c *entity.Customer) int64 { return c.ID },
}

// Gateway is the generic CRUD gateway instantiated for customers.
type Gateway = persistence.Gateway[entity.Customer, *entity.Customer, int64]

// Repository adds customer finders and narrow updates to the gateway.
type Repository struct {
	*Gateway
}

// NewRepository binds a customer repository to a session.
func NewRepository(session *persistence.Session) *Repository {
	return &Repository{Gateway: persistence.NewGateway[entity.Customer, *entity.Customer](session, Descriptor)}
}

func byCustomerID(customerID int64) persistence.Filter {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.customer_id = ?", customerID)
	}
}

// GetByCustomerID fails with persistence.ErrEmptyResult when no customer
// carries the id.
func (r *Repository) GetByCustomerID(ctx context.Context, customerID int64) (*entity.Customer, error) {
	return r.FindOne(ctx, byCustomerID(customerID))
}

// GetByName looks a customer up by its exact name.
func (r *Repository) GetByName(ctx context.Context, name string) (*entity.Customer, error) {
	return r.FindOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.name = ?", name)
	})
}

// UpdateContactByCustomerID replaces the contact of a customer.
func (r *Repository) UpdateContactByCustomerID(ctx context.Context, customerID int64, contact string) (*entity.Customer, error) {
	c, err := r.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return r.Update(ctx, entity.CustomerBuilderFrom(c).Contact(contact).Build())
}

// RemoveByCustomerID deletes a customer. Jobs referencing it must be gone.
func (r *Repository) RemoveByCustomerID(ctx context.Context, customerID int64) error {
	c, err := r.GetByCustomerID(ctx, customerID)
	if err != nil {
		return err
	}
	return r.Remove(ctx, c)
}

// IsExistWithCustomerID reports whether a customer carries the id.
func (r *Repository) IsExistWithCustomerID(ctx context.Context, customerID int64) (bool, error) {
	_, err := r.GetByCustomerID(ctx, customerID)
	return exists(err)
}

func exists(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, persistence.ErrEmptyResult):
		return false, nil
	default:
		return false, fmt.Errorf("customer lookup: %w", err)
	}
}
