package seeder

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/entity"
	"github.com/Additional-Code/timeclock/internal/timeclock"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// First and last natural key of the demo records.
const (
	firstKey int64 = 100
	lastKey  int64 = 101
)

// Seeder loads the demo data set for local/dev setups.
type Seeder struct {
	factory *timeclock.Factory
	logger  *zap.Logger
	now     func() time.Time
}

// New constructs a Seeder writing through the service layer.
func New(factory *timeclock.Factory, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{factory: factory, logger: logger, now: time.Now}
}

// Demo seeds customers, developers, their working hours, jobs and pays.
// Records whose natural key already exists are left alone.
func (s *Seeder) Demo(ctx context.Context) (int, error) {
	created := 0
	err := s.factory.Do(ctx, func(ctx context.Context, svc *timeclock.Services) error {
		return svc.InTx(ctx, "Seeder.Demo", func(ctx context.Context) error {
			for key := firstKey; key <= lastKey; key++ {
				n, err := s.seedOne(ctx, svc, key)
				if err != nil {
					return err
				}
				created += n
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("seeded demo data", zap.Int("created", created))
	return created, nil
}

func (s *Seeder) seedOne(ctx context.Context, svc *timeclock.Services, key int64) (int, error) {
	created := 0
	address := entity.NewAddressBuilder().
		Country("Hungary").
		City("Budapest").
		Street("Fő utca 1.").
		Zip("1011").
		Build()

	exists, err := svc.Customers.IsExistWithCustomerID(ctx, key)
	if err != nil {
		return 0, err
	}
	if !exists {
		customer := entity.NewCustomerBuilder().
			CustomerID(key).
			Name("Company" + strconv.FormatInt(key, 10)).
			Contact("Secretary").
			Address(address).
			Build()
		if _, err := svc.Customers.Save(ctx, customer); err != nil {
			return 0, err
		}
		created++
	}

	exists, err = svc.Developers.IsExistWithDeveloperID(ctx, key)
	if err != nil {
		return 0, err
	}
	if !exists {
		developer := entity.NewDeveloperBuilder().
			DeveloperID(key).
			Forename("Megan").
			LastName("Fox").
			Address(address).
			Build()
		if _, err := svc.Developers.Save(ctx, developer); err != nil {
			return 0, err
		}
		created++

		day := s.now().UTC().Truncate(24 * time.Hour)
		for i := 0; i < 3; i++ {
			start := day.AddDate(0, 0, -i).Add(8 * time.Hour)
			hours := entity.NewWorkingHoursBuilder().
				DeveloperID(key).
				Day(start.Truncate(24 * time.Hour)).
				WorkStart(start).
				WorkEnd(start.Add(8 * time.Hour)).
				Build()
			if _, err := svc.WorkingHours.Save(ctx, hours); err != nil {
				return 0, err
			}
			created++
		}
	}

	exists, err = svc.Jobs.IsExistWithOrderNumber(ctx, key)
	if err != nil {
		return 0, err
	}
	if !exists {
		job := entity.NewJobBuilder().
			OrderNumber(key).
			ProjectName("Project").
			BranchName("master").
			PackageName("hu.timeclock").
			ClassName("TimeClock").
			Status(entity.JobStatusInProgress).
			CustomerID(key).
			DeveloperID(key).
			Build()
		if _, err := svc.Jobs.Save(ctx, job); err != nil {
			return 0, err
		}
		created++
	}

	payID := entity.FormatPayID(key, key, 1)
	exists, err = svc.Pays.IsExistWithPayID(ctx, payID)
	if err != nil {
		return 0, err
	}
	if !exists {
		pay := entity.NewPayBuilder().
			PayID(payID).
			OrderNumber(key).
			Payment(decimal.NewFromInt(1500)).
			Currency("EUR").
			PaymentTime(s.now().UTC()).
			Payable(true).
			Paid(false).
			Build()
		if _, err := svc.Pays.Save(ctx, pay); err != nil {
			return 0, err
		}
		created++
	}

	return created, nil
}

