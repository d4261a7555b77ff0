package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Simulation struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Timestamp         time.Time          `bson:"timestamp" json:"timestamp"`
	TotalProfit       float64            `bson:"totalProfit" json:"totalProfit"`
	EfficiencyScore   float64            `bson:"efficiencyScore" json:"efficiencyScore"`
	OnTimeDeliveries  int                `bson:"onTimeDeliveries" json:"onTimeDeliveries"`
	LateDeliveries    int                `bson:"lateDeliveries" json:"lateDeliveries"`
	FuelCostBreakdown FuelCostBreakdown  `bson:"fuelCostBreakdown" json:"fuelCostBreakdown"`
	AISummary         string             `bson:"aiSummary,omitempty" json:"aiSummary,omitempty"`
	Tags              []string           `bson:"tags,omitempty" json:"tags"`
}

// SummaryState is whether the external summary has been backfilled.
type SummaryState interface {
	isSummaryState()
}

type Unsummarized struct{}

type Summarized struct {
	Text string
	Tags []string
}

func (Unsummarized) isSummaryState() {}
func (Summarized) isSummaryState()   {}

// Summary reports Summarized only when both the text and at least one tag
// are present; a half-written record is treated as not yet summarized.
func (s Simulation) Summary() SummaryState {
	if strings.TrimSpace(s.AISummary) == "" || len(s.Tags) == 0 {
		return Unsummarized{}
	}
	return Summarized{Text: s.AISummary, Tags: s.Tags}
}
