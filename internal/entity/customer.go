package entity

import "github.com/uptrace/bun"

// Customer places jobs and is identified by its business CustomerID.
type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:c"`

	ID         int64   `bun:"id,pk,autoincrement" json:"id"`
	CustomerID int64   `bun:"customer_id,notnull,unique" json:"customer_id"`
	Name       string  `bun:"name,notnull" json:"name"`
	Contact    string  `bun:"contact,nullzero" json:"contact,omitempty"`
	Address    Address `bun:"embed:address_" json:"address"`
	Jobs       []*Job  `bun:"rel:has-many,join:customer_id=customer_id" json:"jobs,omitempty"`

	Audit
	Version int `bun:"version,notnull" json:"version"`
}

// VersionRef exposes the optimistic-lock counter.
func (c *Customer) VersionRef() *int { return &c.Version }

// CustomerBuilder accumulates customer fields.
type CustomerBuilder struct {
	customer Customer
}

// NewCustomerBuilder starts a brand-new customer.
func NewCustomerBuilder() *CustomerBuilder {
	return &CustomerBuilder{}
}

// CustomerBuilderFrom seeds a builder with a copy of an existing customer,
// keeping its identity, audit and version for merge-style updates.
func CustomerBuilderFrom(c *Customer) *CustomerBuilder {
	b := &CustomerBuilder{}
	if c != nil {
		b.customer = *c
		b.customer.Jobs = append([]*Job(nil), c.Jobs...)
	}
	return b
}

func (b *CustomerBuilder) CustomerID(v int64) *CustomerBuilder { b.customer.CustomerID = v; return b }
func (b *CustomerBuilder) Name(v string) *CustomerBuilder { b.customer.Name = v; return b }
func (b *CustomerBuilder) Contact(v string) *CustomerBuilder { b.customer.Contact = v; return b }
func (b *CustomerBuilder) Address(v Address) *CustomerBuilder { b.customer.Address = v; return b }

// Jobs replaces the owned job collection.
func (b *CustomerBuilder) Jobs(jobs ...*Job) *CustomerBuilder {
	b.customer.Jobs = append([]*Job(nil), jobs...)
	return b
}

// Build returns a snapshot; later builder calls do not affect it.
func (b *CustomerBuilder) Build() *Customer {
	c := b.customer
	c.Jobs = append([]*Job(nil), b.customer.Jobs...)
	return &c
}
