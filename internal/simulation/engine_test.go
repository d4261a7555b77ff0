package simulation

import (
	"testing"

	"greencart-ops-api/internal/models"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newDrivers(n int, fatigued bool) []models.Driver {
	out := make([]models.Driver, n)
	for i := range out {
		out[i] = models.NewDriver("driver")
		out[i].ID = primitive.NewObjectID()
		out[i].IsFatigued = fatigued
	}
	return out
}

func pendingOrder(value float64, route *models.Route) models.PendingOrder {
	o := models.Order{ID: primitive.NewObjectID(), OrderID: "O", ValueRs: value}
	if route != nil {
		o.AssignedRoute = route.ID
	}
	return models.PendingOrder{Order: o, Route: route}
}

func newRoute(baseTime, distance float64, level models.TrafficLevel) *models.Route {
	return &models.Route{ID: primitive.NewObjectID(), RouteID: "R", BaseTime: baseTime, Distance: distance, TrafficLevel: level}
}

func TestRunSingleOnTimeHighValueOrder(t *testing.T) {
	pool := newDrivers(2, false)
	orders := []models.PendingOrder{pendingOrder(1500, newRoute(30, 10, models.TrafficMedium))}

	res := Run(pool, orders, 8)

	require.Len(t, res.Outcomes, 1)
	out := res.Outcomes[0]
	require.Equal(t, 30.0, out.DeliveryMinutes)
	require.False(t, out.Late)
	require.InDelta(t, 150, out.Bonus, 1e-9)
	require.Zero(t, out.Penalty)
	require.InDelta(t, 50, out.FuelCost, 1e-9)
	require.InDelta(t, 1600, res.TotalProfit, 1e-9)
	require.Equal(t, 1, res.OnTimeDeliveries)
	require.Zero(t, res.LateDeliveries)
	require.InDelta(t, 100, res.EfficiencyScore, 1e-9)
	require.InDelta(t, 50, res.FuelCostBreakdown.Medium, 1e-9)
	require.Equal(t, pool[0].ID, out.DriverID)
}

func TestRunFatiguedDriverShortRouteIsNotLate(t *testing.T) {
	pool := newDrivers(1, true)
	orders := []models.PendingOrder{pendingOrder(500, newRoute(20, 5, models.TrafficHigh))}

	res := Run(pool, orders, 8)

	require.Len(t, res.Outcomes, 1)
	out := res.Outcomes[0]
	require.InDelta(t, 26, out.DeliveryMinutes, 1e-9)
	require.False(t, out.Late, "26 minutes is within 20+10")
	require.Zero(t, out.Bonus)
	require.Zero(t, out.Penalty)
	require.InDelta(t, 35, out.FuelCost, 1e-9)
	require.InDelta(t, 465, res.TotalProfit, 1e-9)
	require.InDelta(t, 35, res.FuelCostBreakdown.High, 1e-9)
}

func TestRunFatiguedDriverLongRouteIsLate(t *testing.T) {
	pool := newDrivers(1, true)
	orders := []models.PendingOrder{pendingOrder(2000, newRoute(60, 10, models.TrafficLow))}

	res := Run(pool, orders, 8)

	out := res.Outcomes[0]
	require.InDelta(t, 78, out.DeliveryMinutes, 1e-9)
	require.True(t, out.Late)
	require.Equal(t, LatePenalty, out.Penalty)
	require.Zero(t, out.Bonus, "late orders earn no bonus")
	require.InDelta(t, 2000-50-50, out.Profit, 1e-9)
	require.Equal(t, 1, res.LateDeliveries)
	require.Zero(t, res.EfficiencyScore)
}

func TestRunBonusRequiresValueStrictlyAboveThreshold(t *testing.T) {
	pool := newDrivers(1, false)
	route := newRoute(10, 1, models.TrafficLow)
	orders := []models.PendingOrder{pendingOrder(1000, route), pendingOrder(1000.5, route)}

	res := Run(pool, orders, 8)

	require.Zero(t, res.Outcomes[0].Bonus)
	require.InDelta(t, 100.05, res.Outcomes[1].Bonus, 1e-9)
}

func TestRunRoundRobinAssignment(t *testing.T) {
	pool := newDrivers(3, false)
	var orders []models.PendingOrder
	for i := 0; i < 7; i++ {
		orders = append(orders, pendingOrder(float64(100*(i+1)), newRoute(float64(5+i), float64(i+1), models.TrafficLow)))
	}

	res := Run(pool, orders, 8)

	require.Len(t, res.Outcomes, 7)
	for i, out := range res.Outcomes {
		require.Equal(t, orders[i].Order.ID, out.OrderID)
		require.Equal(t, pool[i%3].ID, out.DriverID, "order %d", i)
	}
}

func TestRunFatigueIsFixedForTheWholeRun(t *testing.T) {
	pool := newDrivers(2, false)
	pool[0].IsFatigued = true
	route := newRoute(50, 1, models.TrafficLow)
	orders := []models.PendingOrder{
		pendingOrder(100, route), pendingOrder(100, route),
		pendingOrder(100, route), pendingOrder(100, route),
	}

	res := Run(pool, orders, 24)

	for i, out := range res.Outcomes {
		if out.DriverID == pool[0].ID {
			require.InDelta(t, 65, out.DeliveryMinutes, 1e-9, "order %d", i)
		} else {
			require.Equal(t, 50.0, out.DeliveryMinutes, "order %d", i)
		}
	}
}

func TestRunSkipsOrderOverBudgetWithoutReassigning(t *testing.T) {
	pool := newDrivers(1, false)
	orders := []models.PendingOrder{
		pendingOrder(100, newRoute(54, 1, models.TrafficLow)), // 0.9h
		pendingOrder(100, newRoute(12, 1, models.TrafficLow)), // 0.2h, over the cap
		pendingOrder(100, newRoute(6, 1, models.TrafficLow)),  // 0.1h, still fits
	}

	res := Run(pool, orders, 1.05)

	require.Len(t, res.Outcomes, 2)
	require.Equal(t, orders[0].Order.ID, res.Outcomes[0].OrderID)
	require.Equal(t, orders[2].Order.ID, res.Outcomes[1].OrderID)
	require.Len(t, res.Skipped, 1)
	require.Equal(t, Skip{OrderID: orders[1].Order.ID, DriverID: pool[0].ID, Reason: SkipOverBudget}, res.Skipped[0])
	require.InDelta(t, 1.0, res.Shifts[0].Hours, 1e-9)
}

func TestRunBudgetExceededLeavesAccumulatorUnchanged(t *testing.T) {
	pool := newDrivers(1, false)
	orders := []models.PendingOrder{
		pendingOrder(100, newRoute(54, 1, models.TrafficLow)),
		pendingOrder(100, newRoute(12, 1, models.TrafficLow)),
	}

	res := Run(pool, orders, 1)

	require.InDelta(t, 0.9, res.Shifts[0].Hours, 1e-9)
	require.Equal(t, 1, res.OnTimeDeliveries)
	require.InDelta(t, 50, res.EfficiencyScore, 1e-9, "skipped orders stay in the denominator")
}

func TestRunNeverExceedsMaxHours(t *testing.T) {
	pool := newDrivers(3, false)
	pool[1].IsFatigued = true
	var orders []models.PendingOrder
	for i := 0; i < 60; i++ {
		orders = append(orders, pendingOrder(900, newRoute(float64(15+(i*7)%50), 3, models.TrafficMedium)))
	}

	res := Run(pool, orders, 2.5)

	for _, sh := range res.Shifts {
		require.LessOrEqual(t, sh.Hours, 2.5)
	}
	require.Equal(t, res.Considered, res.OnTimeDeliveries+res.LateDeliveries+len(res.Skipped))
	require.Less(t, res.OnTimeDeliveries+res.LateDeliveries, res.Considered)
}

func TestRunMissingRouteIsSkipped(t *testing.T) {
	pool := newDrivers(2, false)
	orders := []models.PendingOrder{
		pendingOrder(700, nil),
		pendingOrder(700, newRoute(30, 2, models.TrafficLow)),
	}

	res := Run(pool, orders, 8)

	require.Len(t, res.Outcomes, 1)
	require.Equal(t, pool[1].ID, res.Outcomes[0].DriverID, "round robin position is kept for skipped orders")
	require.Len(t, res.Skipped, 1)
	require.Equal(t, SkipRouteMissing, res.Skipped[0].Reason)
	require.InDelta(t, 50, res.EfficiencyScore, 1e-9)
	require.Zero(t, res.Shifts[0].Hours)
}

func TestRunConservationWithoutSkips(t *testing.T) {
	pool := newDrivers(2, false)
	orders := []models.PendingOrder{
		pendingOrder(100, newRoute(10, 1, models.TrafficLow)),
		pendingOrder(100, newRoute(10, 1, models.TrafficHigh)),
		pendingOrder(100, newRoute(10, 1, models.TrafficMedium)),
	}

	res := Run(pool, orders, 8)

	require.Empty(t, res.Skipped)
	require.Equal(t, 3, res.OnTimeDeliveries+res.LateDeliveries)
	require.InDelta(t, 5, res.FuelCostBreakdown.Low, 1e-9)
	require.InDelta(t, 5, res.FuelCostBreakdown.Medium, 1e-9)
	require.InDelta(t, 7, res.FuelCostBreakdown.High, 1e-9)
}

func TestRunReportsEveryPoolDriverShift(t *testing.T) {
	pool := newDrivers(3, false)
	orders := []models.PendingOrder{pendingOrder(100, newRoute(90, 1, models.TrafficLow))}

	res := Run(pool, orders, 8)

	require.Len(t, res.Shifts, 3)
	require.InDelta(t, 1.5, res.Shifts[0].Hours, 1e-9)
	require.Zero(t, res.Shifts[1].Hours)
	require.Zero(t, res.Shifts[2].Hours)
}
