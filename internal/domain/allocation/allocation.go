// Package allocation turns an employee's available hours into a concrete
// assignment.
package allocation

import (
	"math"
	"strings"

	"github.com/okian/staffwise/internal/domain/model"
)

// Hour thresholds of the business rules.
const (
	StandardWeek      = 40
	FullTimeThreshold = 35

	partTimeHigh = 20
	partTimeMid  = 15
	partTimeLow  = 5
)

// Compute returns the assignment for a preferred type and the employee's
// available hours. Any preferred type other than "part-time" (ignoring case)
// is treated as full-time. Negative hours are clamped to zero.
func Compute(preferred string, available int) model.Assignment {
	if available < 0 {
		available = 0
	}

	var (
		hours   int
		percent float64
	)
	if strings.EqualFold(strings.TrimSpace(preferred), model.PartTime) {
		switch {
		case available >= partTimeHigh:
			hours, percent = partTimeHigh, 50.0
		case available >= partTimeMid:
			hours, percent = partTimeMid, 37.5
		case available >= partTimeLow:
			hours, percent = partTimeLow, 12.5
		default:
			hours, percent = available, Percent(available)
		}
	} else {
		hours = min(available, StandardWeek)
		if hours == StandardWeek {
			percent = 100.0
		} else {
			percent = Percent(hours)
		}
	}

	return model.Assignment{
		AssignedHours:     hours,
		AllocationPercent: percent,
		Type:              ResultingType(hours),
	}
}

// ResultingType classifies assigned hours, regardless of what was preferred.
func ResultingType(hours int) string {
	if hours >= FullTimeThreshold {
		return model.FullTime
	}
	return model.PartTime
}

// Percent is hours as a share of the standard week, rounded to two decimals.
func Percent(hours int) float64 {
	return math.Round(float64(hours)/StandardWeek*100*100) / 100
}
