package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// WorkingHours is one logged work session of a developer. WorkEnd stays zero
// (NULL) until the session is closed.
type WorkingHours struct {
	bun.BaseModel `bun:"table:working_hours,alias:wh"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Day       time.Time `bun:"work_day,notnull" json:"day"`
	WorkStart time.Time `bun:"work_start,notnull" json:"work_start"`
	WorkEnd   time.Time `bun:"work_end,nullzero" json:"work_end,omitempty"`

	DeveloperID int64      `bun:"developer_id,notnull" json:"developer_id"`
	Developer   *Developer `bun:"rel:belongs-to,join:developer_id=developer_id" json:"developer,omitempty"`

	Audit
	Version int `bun:"version,notnull" json:"version"`
}

// VersionRef exposes the optimistic-lock counter.
func (w *WorkingHours) VersionRef() *int { return &w.Version }

// Ended reports whether the session has been closed.
func (w *WorkingHours) Ended() bool { return !w.WorkEnd.IsZero() }

// Duration is the closed session length, zero while still open.
func (w *WorkingHours) Duration() time.Duration {
	if !w.Ended() {
		return 0
	}
	return w.WorkEnd.Sub(w.WorkStart)
}

// WorkingHoursBuilder accumulates working hours fields.
type WorkingHoursBuilder struct {
	hours WorkingHours
}

// NewWorkingHoursBuilder starts a brand-new session.
func NewWorkingHoursBuilder() *WorkingHoursBuilder {
	return &WorkingHoursBuilder{}
}

// WorkingHoursBuilderFrom seeds a builder with a copy of an existing session.
func WorkingHoursBuilderFrom(w *WorkingHours) *WorkingHoursBuilder {
	b := &WorkingHoursBuilder{}
	if w != nil {
		b.hours = *w
	}
	return b
}

func (b *WorkingHoursBuilder) Day(v time.Time) *WorkingHoursBuilder { b.hours.Day = v; return b }
func (b *WorkingHoursBuilder) WorkStart(v time.Time) *WorkingHoursBuilder { b.hours.WorkStart = v; return b }
func (b *WorkingHoursBuilder) WorkEnd(v time.Time) *WorkingHoursBuilder { b.hours.WorkEnd = v; return b }
func (b *WorkingHoursBuilder) DeveloperID(v int64) *WorkingHoursBuilder { b.hours.DeveloperID = v; return b }

// Developer links the session to its developer through the natural key.
func (b *WorkingHoursBuilder) Developer(d *Developer) *WorkingHoursBuilder {
	b.hours.Developer = d
	if d != nil {
		b.hours.DeveloperID = d.DeveloperID
	}
	return b
}

// Build returns a snapshot; later builder calls do not affect it.
func (b *WorkingHoursBuilder) Build() *WorkingHours {
	w := b.hours
	return &w
}
