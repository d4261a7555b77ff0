package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	// WorkWindowDays is the length of the rolling work-hour history.
	WorkWindowDays = 7
	// FatigueThresholdHours marks a driver fatigued for the next run when a
	// single run works them strictly longer than this.
	FatigueThresholdHours = 8.0
)

type Driver struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name              string             `bson:"name" json:"name"`
	CurrentShiftHours float64            `bson:"currentShiftHours" json:"currentShiftHours"` // informational only
	Past7DayWorkHours []float64          `bson:"past7DayWorkHours" json:"past7DayWorkHours"` // oldest first
	IsFatigued        bool               `bson:"isFatigued" json:"isFatigued"`
}

// NewDriver returns a driver with an empty work window.
func NewDriver(name string) Driver {
	return Driver{
		Name:              name,
		Past7DayWorkHours: make([]float64, WorkWindowDays),
	}
}

// CloseShift records the hours worked in one simulation run: the oldest day
// drops out of the window, hours is appended, and the fatigue flag is
// recomputed for the next run.
func (d *Driver) CloseShift(hours float64) {
	d.IsFatigued = hours > FatigueThresholdHours
	d.Past7DayWorkHours = slideWindow(d.Past7DayWorkHours, hours)
}

func slideWindow(window []float64, hours float64) []float64 {
	return NormalizeWindow(append(append([]float64(nil), window...), hours))
}

// NormalizeWindow returns a fresh slice of exactly WorkWindowDays entries:
// the newest values of window, padded with leading zeros when short.
func NormalizeWindow(window []float64) []float64 {
	out := make([]float64, WorkWindowDays)
	src := window
	if len(src) > WorkWindowDays {
		src = src[len(src)-WorkWindowDays:]
	}
	copy(out[WorkWindowDays-len(src):], src)
	return out
}

