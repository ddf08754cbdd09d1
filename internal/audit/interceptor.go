package audit

import (
	"os"
	"os/user"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/config"
	"github.com/Additional-Code/timeclock/internal/entity"
)

// Stamper is invoked by the persistence gateway right before a write.
type Stamper interface {
	StampCreated(entity.Auditable)
	StampUpdated(entity.Auditable)
}

// Clock returns the current time.
type Clock func() time.Time

// ActorFunc resolves the acting user name at the moment a hook fires.
type ActorFunc func() string

// Interceptor stamps creation and update provenance on auditable entities.
type Interceptor struct {
	now   Clock
	actor ActorFunc
}

var _ Stamper = (*Interceptor)(nil)

// Module provides the interceptor to Fx.
var Module = fx.Provide(NewFromConfig)

// Option customises an Interceptor.
type Option func(*Interceptor)

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(i *Interceptor) {
		if c != nil {
			i.now = c
		}
	}
}

// WithActor overrides the actor resolution.
func WithActor(a ActorFunc) Option {
	return func(i *Interceptor) {
		if a != nil {
			i.actor = a
		}
	}
}

// New builds an interceptor stamping UTC wall-clock time and the OS user.
func New(opts ...Option) *Interceptor {
	i := &Interceptor{
		now:   func() time.Time { return time.Now().UTC() },
		actor: SystemActor,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// NewFromConfig builds the interceptor used by the application graph. A
// configured AUDIT_ACTOR replaces the OS user.
func NewFromConfig(cfg config.Config, logger *zap.Logger) *Interceptor {
	if name := cfg.Audit.Actor; name != "" {
		logger.Info("audit actor pinned by configuration", zap.String("actor", name))
		return New(WithActor(func() string { return name }))
	}
	return New()
}

// StampCreated moves a new entity into the created state.
func (i *Interceptor) StampCreated(a entity.Auditable) {
	if a == nil {
		return
	}
	rec := a.AuditRecord()
	rec.CreatedAt = i.now()
	rec.CreatedBy = i.actor()
	rec.UpdatedAt = time.Time{}
	rec.UpdatedBy = ""
}

// StampUpdated overwrites the update provenance; creation values are kept.
func (i *Interceptor) StampUpdated(a entity.Auditable) {
	if a == nil {
		return
	}
	rec := a.AuditRecord()
	rec.UpdatedAt = i.now()
	rec.UpdatedBy = i.actor()
}

// SystemActor returns the name of the OS user running the process.
func SystemActor() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	for _, key := range []string{"USER", "USERNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "unknown"
}
