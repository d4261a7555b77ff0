package simulation

import (
	"context"
	"fmt"
	"time"

	"greencart-ops-api/internal/apperr"
	"greencart-ops-api/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RunLockKey serializes "read pending orders, run, persist" across requests.
const RunLockKey = "greencart:simulation:run"

// Store is the persistence boundary of a run.
type Store interface {
	// FirstDrivers returns up to n drivers in the store's natural order.
	FirstDrivers(ctx context.Context, n int) ([]models.Driver, error)
	// PendingOrders returns undelivered orders with their routes resolved.
	PendingOrders(ctx context.Context) ([]models.PendingOrder, error)
	// ApplySimulation persists every side effect of one run and returns the
	// stored run record.
	ApplySimulation(ctx context.Context, c Commit) (*models.Simulation, error)
}

// Locker provides mutual exclusion across concurrent runs.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Notifier is told about every persisted run. Failures are logged only.
type Notifier interface {
	SimulationCompleted(ctx context.Context, sim *models.Simulation) error
}

// OrderDelivery is the persisted delivery state of one committed order.
type OrderDelivery struct {
	OrderID     primitive.ObjectID
	DeliveredAt time.Time
	OnTime      bool
}

// Commit is everything a run writes.
type Commit struct {
	Deliveries []OrderDelivery
	Drivers    []models.Driver
	Simulation models.Simulation
}

type Service struct {
	store     Store
	locker    Locker
	notifiers []Notifier
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used for delivery and run timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithNotifiers registers post-commit listeners.
func WithNotifiers(n ...Notifier) Option {
	return func(s *Service) { s.notifiers = append(s.notifiers, n...) }
}

func NewService(store Store, locker Locker, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		locker: locker,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one simulation and returns the persisted run record.
// Precondition failures are apperr.Validation and leave the store untouched;
// failures after the engine has run are internal.
func (s *Service) Run(ctx context.Context, p Params) (sim *models.Simulation, err error) {
	start := time.Now()
	defer func() { observeRun(start, err) }()

	if err := p.Validate(); err != nil {
		return nil, err
	}

	sim, res, err := s.runLocked(ctx, p)
	if err != nil {
		return nil, err
	}
	observeOrders(res)

	s.logger.Info("simulation completed",
		zap.String("simulation_id", sim.ID.Hex()),
		zap.Int("drivers", p.NumDrivers),
		zap.Int("orders_considered", res.Considered),
		zap.Int("on_time", res.OnTimeDeliveries),
		zap.Int("late", res.LateDeliveries),
		zap.Int("skipped", len(res.Skipped)),
		zap.Float64("total_profit", res.TotalProfit),
		zap.Float64("fuel_cost", res.FuelCostBreakdown.Total()),
		zap.String("start_time", p.StartTime),
	)

	// Notifiers run after the lock is released so a slow client or upload
	// never holds up the next run.
	for _, n := range s.notifiers {
		if nerr := n.SimulationCompleted(ctx, sim); nerr != nil {
			s.logger.Warn("simulation notifier failed",
				zap.String("simulation_id", sim.ID.Hex()),
				zap.Error(nerr),
			)
		}
	}

	return sim, nil
}

// runLocked holds the run lock from reading the pending orders until the
// commit has been written.
func (s *Service) runLocked(ctx context.Context, p Params) (*models.Simulation, Result, error) {
	release, err := s.locker.Acquire(ctx, RunLockKey)
	if err != nil {
		return nil, Result{}, fmt.Errorf("run simulation: %w", err)
	}
	defer release()

	drivers, err := s.store.FirstDrivers(ctx, p.NumDrivers)
	if err != nil {
		return nil, Result{}, apperr.Wrap(apperr.Internal, err, "run simulation: load drivers")
	}
	if len(drivers) < p.NumDrivers {
		return nil, Result{}, errInsufficientDrivers(p.NumDrivers, len(drivers))
	}
	pool := drivers[:p.NumDrivers]

	orders, err := s.store.PendingOrders(ctx)
	if err != nil {
		return nil, Result{}, apperr.Wrap(apperr.Internal, err, "run simulation: load pending orders")
	}
	if len(orders) == 0 {
		return nil, Result{}, errNoPendingOrders()
	}

	res := Run(pool, orders, p.MaxHours)
	sim, err := s.store.ApplySimulation(ctx, buildCommit(pool, res, s.now()))
	if err != nil {
		return nil, Result{}, apperr.Wrap(apperr.Internal, err, "run simulation: persist results")
	}
	return sim, res, nil
}

// buildCommit turns an engine result into store writes. Every pool driver
// closes a shift, including drivers who received no order.
func buildCommit(pool []models.Driver, res Result, now time.Time) Commit {
	c := Commit{
		Deliveries: make([]OrderDelivery, 0, len(res.Outcomes)),
		Drivers:    make([]models.Driver, 0, len(pool)),
	}

	for _, o := range res.Outcomes {
		c.Deliveries = append(c.Deliveries, OrderDelivery{
			OrderID:     o.OrderID,
			DeliveredAt: now,
			OnTime:      !o.Late,
		})
	}

	hours := make(map[primitive.ObjectID]float64, len(res.Shifts))
	for _, sh := range res.Shifts {
		hours[sh.DriverID] = sh.Hours
	}
	for _, d := range pool {
		d.CloseShift(hours[d.ID])
		c.Drivers = append(c.Drivers, d)
	}

	c.Simulation = models.Simulation{
		Timestamp:         now,
		TotalProfit:       res.TotalProfit,
		EfficiencyScore:   res.EfficiencyScore,
		OnTimeDeliveries:  res.OnTimeDeliveries,
		LateDeliveries:    res.LateDeliveries,
		FuelCostBreakdown: res.FuelCostBreakdown,
		Tags:              []string{},
	}
	return c
}
