package entity

import "time"

// Audit carries provenance columns shared by every stored entity. The
// values are written by the audit interceptor only.
type Audit struct {
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	CreatedBy string    `bun:"created_by,notnull" json:"created_by"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
	UpdatedBy string    `bun:"updated_by,nullzero" json:"updated_by,omitempty"`
}

// AuditRecord exposes the embedded audit value to the interceptor.
func (a *Audit) AuditRecord() *Audit {
	return a
}

// Updated reports whether the entity has been updated at least once.
func (a *Audit) Updated() bool {
	return !a.UpdatedAt.IsZero()
}

// Auditable is implemented by entities that embed Audit.
type Auditable interface {
	AuditRecord() *Audit
}

// Record is the capability set the persistence gateway needs from an entity.
type Record interface {
	Auditable
	VersionRef() *int
}

// LastModifiedBy returns the most recent actor that wrote the entity.
func (a *Audit) LastModifiedBy() string {
	if a.UpdatedBy != "" {
		return a.UpdatedBy
	}
	return a.CreatedBy
}
