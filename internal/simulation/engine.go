// Package simulation assigns pending orders to drivers, scores each delivery,
// and turns one run into persisted order, driver and run-record updates.
package simulation

import (
	"greencart-ops-api/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Business rules of the scoring model.
const (
	FatigueMultiplier         = 1.30
	LateGraceMinutes          = 10.0
	LatePenalty               = 50.0
	HighValueThreshold        = 1000.0
	HighValueBonusRate        = 0.10
	FuelCostPerKm             = 5.0
	HighTrafficSurchargePerKm = 2.0
)

type SkipReason string

const (
	SkipRouteMissing SkipReason = "route_missing"
	SkipOverBudget   SkipReason = "over_budget"
)

// Outcome is one order committed as delivered in this run.
type Outcome struct {
	OrderID         primitive.ObjectID
	DriverID        primitive.ObjectID
	TrafficLevel    models.TrafficLevel
	DeliveryMinutes float64
	Late            bool
	Bonus           float64
	Penalty         float64
	FuelCost        float64
	Profit          float64
}

// Skip is an order left pending by this run.
type Skip struct {
	OrderID  primitive.ObjectID
	DriverID primitive.ObjectID
	Reason   SkipReason
}

// DriverShift is the hours a pool driver accumulated in this run.
type DriverShift struct {
	DriverID primitive.ObjectID
	Hours    float64
}

type Result struct {
	TotalProfit       float64
	EfficiencyScore   float64
	OnTimeDeliveries  int
	LateDeliveries    int
	FuelCostBreakdown models.FuelCostBreakdown
	// Considered is every pending order fed into the run; it is the
	// efficiency denominator even for orders that were skipped.
	Considered int
	Outcomes   []Outcome
	Skipped    []Skip
	Shifts     []DriverShift // pool order
}

// Run folds the pending orders over the driver pool. Order i goes to
// pool[i mod len(pool)]; an order that would push its driver past maxHours is
// skipped, never reassigned. Fatigue is read from the drivers as given and is
// not updated mid-run.
func Run(pool []models.Driver, orders []models.PendingOrder, maxHours float64) Result {
	res := Result{Considered: len(orders)}
	if len(pool) == 0 {
		return res
	}

	worked := make(map[primitive.ObjectID]float64, len(pool))
	for _, d := range pool {
		worked[d.ID] = 0
	}

	for i, po := range orders {
		driver := pool[i%len(pool)]
		route := po.Route
		if route == nil {
			res.Skipped = append(res.Skipped, Skip{OrderID: po.Order.ID, DriverID: driver.ID, Reason: SkipRouteMissing})
			continue
		}

		minutes := route.BaseTime
		if driver.IsFatigued {
			minutes *= FatigueMultiplier
		}
		hours := minutes / 60

		if worked[driver.ID]+hours > maxHours {
			res.Skipped = append(res.Skipped, Skip{OrderID: po.Order.ID, DriverID: driver.ID, Reason: SkipOverBudget})
			continue
		}
		worked[driver.ID] += hours

		out := score(po.Order, *route, minutes)
		out.DriverID = driver.ID

		if out.Late {
			res.LateDeliveries++
		} else {
			res.OnTimeDeliveries++
		}
		res.FuelCostBreakdown.Add(route.TrafficLevel, out.FuelCost)
		res.TotalProfit += out.Profit
		res.Outcomes = append(res.Outcomes, out)
	}

	if res.Considered > 0 {
		res.EfficiencyScore = float64(res.OnTimeDeliveries) / float64(res.Considered) * 100
	}

	res.Shifts = make([]DriverShift, 0, len(pool))
	for _, d := range pool {
		res.Shifts = append(res.Shifts, DriverShift{DriverID: d.ID, Hours: worked[d.ID]})
	}
	return res
}

// score applies the per-order profit rules for a delivery taking minutes.
func score(order models.Order, route models.Route, minutes float64) Outcome {
	late := minutes > route.BaseTime+LateGraceMinutes

	var penalty, bonus float64
	if late {
		penalty = LatePenalty
	}
	if order.ValueRs > HighValueThreshold && !late {
		bonus = order.ValueRs * HighValueBonusRate
	}

	fuel := route.Distance * FuelCostPerKm
	if route.TrafficLevel == models.TrafficHigh {
		fuel += route.Distance * HighTrafficSurchargePerKm
	}

	return Outcome{
		OrderID:         order.ID,
		TrafficLevel:    route.TrafficLevel,
		DeliveryMinutes: minutes,
		Late:            late,
		Bonus:           bonus,
		Penalty:         penalty,
		FuelCost:        fuel,
		Profit:          order.ValueRs + bonus - penalty - fuel,
	}
}
