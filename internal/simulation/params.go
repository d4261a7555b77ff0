package simulation

import (
	"regexp"

	"greencart-ops-api/internal/apperr"
)

// startTimePattern accepts 24-hour times; a single-digit hour ("9:30") is allowed.
var startTimePattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// Params are the caller-supplied knobs of one run.
type Params struct {
	NumDrivers int     `json:"numDrivers"`
	MaxHours   float64 `json:"maxHours"`
	// StartTime is validated and recorded but does not enter the arithmetic.
	StartTime string `json:"startTime"`
}

// Validate checks the preconditions that need no store access.
func (p Params) Validate() error {
	if p.NumDrivers <= 0 || p.MaxHours <= 0 || p.StartTime == "" {
		return apperr.Validationf("Number of drivers, max hours, and start time are required and must be positive.")
	}
	if !startTimePattern.MatchString(p.StartTime) {
		return apperr.Validationf("Invalid start time format. Please use HH:MM.")
	}
	return nil
}

func errInsufficientDrivers(requested, available int) error {
	return apperr.Validationf("Simulation requires %d drivers, but only %d are in the database.", requested, available)
}

func errNoPendingOrders() error {
	return apperr.Validationf("No pending orders to simulate.")
}
