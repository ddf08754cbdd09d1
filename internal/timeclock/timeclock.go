// Package timeclock assembles the entity services over one unit of work.
package timeclock

import (
	"context"

	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/audit"
	"github.com/Additional-Code/timeclock/internal/database"
	"github.com/Additional-Code/timeclock/internal/events"
	"github.com/Additional-Code/timeclock/internal/persistence"
	customerrepo "github.com/Additional-Code/timeclock/internal/repository/customer"
	developerrepo "github.com/Additional-Code/timeclock/internal/repository/developer"
	jobrepo "github.com/Additional-Code/timeclock/internal/repository/job"
	payrepo "github.com/Additional-Code/timeclock/internal/repository/pay"
	hoursrepo "github.com/Additional-Code/timeclock/internal/repository/workinghours"
	"github.com/Additional-Code/timeclock/internal/service/customer"
	"github.com/Additional-Code/timeclock/internal/service/developer"
	"github.com/Additional-Code/timeclock/internal/service/job"
	"github.com/Additional-Code/timeclock/internal/service/pay"
	"github.com/Additional-Code/timeclock/internal/service/txn"
	"github.com/Additional-Code/timeclock/internal/service/workinghours"
)

// Module provides the services factory to Fx.
var Module = fx.Provide(newFactory)

// Factory opens Services bundles. It is safe for concurrent use; the
// bundles it opens are not.
type Factory struct {
	db        *bun.DB
	stamper   audit.Stamper
	publisher events.Publisher
	logger    *zap.Logger
}

// NewFactory builds a factory over a database handle.
func NewFactory(db *bun.DB, stamper audit.Stamper, publisher events.Publisher, logger *zap.Logger) *Factory {
	if publisher == nil {
		publisher = events.Discard{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{db: db, stamper: stamper, publisher: publisher, logger: logger}
}

type factoryParams struct {
	fx.In

	Connections *database.Connections
	Interceptor *audit.Interceptor
	Publisher   events.Publisher
	Logger      *zap.Logger
}

func newFactory(p factoryParams) *Factory {
	return NewFactory(p.Connections.Writer, p.Interceptor, p.Publisher, p.Logger)
}

// Services are the five entity services sharing one session.
type Services struct {
	session *persistence.Session
	runner  *txn.Runner

	Customers    *customer.Service
	Developers   *developer.Service
	Jobs         *job.Service
	Pays         *pay.Service
	WorkingHours *workinghours.Service
}

// Open starts a unit of work. Close it when the logical operation ends.
func (f *Factory) Open() *Services {
	session := persistence.NewSession(f.db, f.stamper, f.logger)
	runner := txn.NewRunner(session, f.logger)

	customers := customerrepo.NewRepository(session)
	developers := developerrepo.NewRepository(session)
	jobs := jobrepo.NewRepository(session)
	pays := payrepo.NewRepository(session)
	hours := hoursrepo.NewRepository(session)

	paySvc := pay.NewService(runner, pays, f.publisher)
	jobSvc := job.NewService(runner, jobs, paySvc, f.publisher)

	return &Services{
		session:      session,
		runner:       runner,
		Customers:    customer.NewService(runner, customers, jobSvc, f.publisher),
		Developers:   developer.NewService(runner, developers, f.publisher),
		Jobs:         jobSvc,
		Pays:         paySvc,
		WorkingHours: workinghours.NewService(runner, hours, f.publisher),
	}
}

// Do runs fn with a fresh bundle and closes it afterwards.
func (f *Factory) Do(ctx context.Context, fn func(context.Context, *Services) error) error {
	s := f.Open()
	defer s.Close()
	return fn(ctx, s)
}

// InTx runs several service calls as one transaction. The calls join it
// instead of committing on their own.
func (s *Services) InTx(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return s.runner.Do(ctx, op, fn)
}

// Clear detaches every tracked entity.
func (s *Services) Clear() {
	s.session.Clear()
}

// Close ends the unit of work; the services cannot be used afterwards.
func (s *Services) Close() error {
	return s.session.Close()
}
