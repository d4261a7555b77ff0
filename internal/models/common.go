package models

import (
	"fmt"
	"slices"
)

// TrafficLevel is the congestion tier of a route. The three values are a wire
// contract shared with the front end.
type TrafficLevel string

const (
	TrafficLow    TrafficLevel = "Low"
	TrafficMedium TrafficLevel = "Medium"
	TrafficHigh   TrafficLevel = "High"
)

// TrafficLevels lists every accepted tier in display order.
var TrafficLevels = []TrafficLevel{TrafficLow, TrafficMedium, TrafficHigh}

func (t TrafficLevel) Valid() bool {
	return slices.Contains(TrafficLevels, t)
}

func ParseTrafficLevel(s string) (TrafficLevel, error) {
	t := TrafficLevel(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid traffic level %q: must be one of Low, Medium, High", s)
	}
	return t, nil
}

// FuelCostBreakdown is the fuel spend of one run per traffic tier.
// All three keys are always persisted, matching {Low, Medium, High}.
type FuelCostBreakdown struct {
	Low    float64 `bson:"Low" json:"Low"`
	Medium float64 `bson:"Medium" json:"Medium"`
	High   float64 `bson:"High" json:"High"`
}

// Add accrues cost to the given tier. Unknown tiers are ignored; routes are
// validated on write so this only guards against hand-edited documents.
func (b *FuelCostBreakdown) Add(level TrafficLevel, cost float64) {
	switch level {
	case TrafficLow:
		b.Low += cost
	case TrafficMedium:
		b.Medium += cost
	case TrafficHigh:
		b.High += cost
	}
}

func (b FuelCostBreakdown) Total() float64 {
	return b.Low + b.Medium + b.High
}

// DashboardStats backs the summary tiles of the dashboard screen.
type DashboardStats struct {
	TotalDrivers  int64   `json:"totalDrivers"`
	TotalOrders   int64   `json:"totalOrders"`
	PendingOrders int64   `json:"pendingOrders"`
	TotalProfit   float64 `json:"totalProfit"`
}
