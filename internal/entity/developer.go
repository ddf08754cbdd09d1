package entity

import "github.com/uptrace/bun"

// Developer logs working hours and is assigned jobs.
type Developer struct {
	bun.BaseModel `bun:"table:developers,alias:d"`

	ID           int64           `bun:"id,pk,autoincrement" json:"id"`
	DeveloperID  int64           `bun:"developer_id,notnull,unique" json:"developer_id"`
	Forename     string          `bun:"forename,notnull" json:"forename"`
	LastName     string          `bun:"last_name,nullzero" json:"last_name,omitempty"`
	Address      Address         `bun:"embed:address_" json:"address"`
	Jobs         []*Job          `bun:"rel:has-many,join:developer_id=developer_id" json:"jobs,omitempty"`
	WorkingHours []*WorkingHours `bun:"rel:has-many,join:developer_id=developer_id" json:"working_hours,omitempty"`

	Audit
	Version int `bun:"version,notnull" json:"version"`
}

// VersionRef exposes the optimistic-lock counter.
func (d *Developer) VersionRef() *int { return &d.Version }

// DeveloperBuilder accumulates developer fields.
type DeveloperBuilder struct {
	developer Developer
}

// NewDeveloperBuilder starts a brand-new developer.
func NewDeveloperBuilder() *DeveloperBuilder {
	return &DeveloperBuilder{}
}

// DeveloperBuilderFrom seeds a builder with a copy of an existing developer.
func DeveloperBuilderFrom(d *Developer) *DeveloperBuilder {
	b := &DeveloperBuilder{}
	if d != nil {
		b.developer = *d
		b.developer.Jobs = append([]*Job(nil), d.Jobs...)
		b.developer.WorkingHours = append([]*WorkingHours(nil), d.WorkingHours...)
	}
	return b
}

func (b *DeveloperBuilder) DeveloperID(v int64) *DeveloperBuilder { b.developer.DeveloperID = v; return b }
func (b *DeveloperBuilder) Forename(v string) *DeveloperBuilder { b.developer.Forename = v; return b }
func (b *DeveloperBuilder) LastName(v string) *DeveloperBuilder { b.developer.LastName = v; return b }
func (b *DeveloperBuilder) Address(v Address) *DeveloperBuilder { b.developer.Address = v; return b }

// Jobs replaces the assigned job collection.
func (b *DeveloperBuilder) Jobs(jobs ...*Job) *DeveloperBuilder {
	b.developer.Jobs = append([]*Job(nil), jobs...)
	return b
}

// WorkingHours replaces the logged working hours collection.
func (b *DeveloperBuilder) WorkingHours(hours ...*WorkingHours) *DeveloperBuilder {
	b.developer.WorkingHours = append([]*WorkingHours(nil), hours...)
	return b
}

// Build returns a snapshot; later builder calls do not affect it.
func (b *DeveloperBuilder) Build() *Developer {
	d := b.developer
	d.Jobs = append([]*Job(nil), b.developer.Jobs...)
	d.WorkingHours = append([]*WorkingHours(nil), b.developer.WorkingHours...)
	return &d
}
