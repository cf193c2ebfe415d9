package entity

import (
	"fmt"
	"time"
)

// TrainingPoint is one observation fed to the forecast engine.
type TrainingPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ForecastPoint is the model output for one calendar day.
// Lower <= Estimate <= Upper always holds.
type ForecastPoint struct {
	Date     time.Time `json:"date"`
	Estimate float64   `json:"estimate"`
	Lower    float64   `json:"lower"`
	Upper    float64   `json:"upper"`
	Trend    float64   `json:"trend"`
	Yearly   float64   `json:"yearly"`
	Weekly   float64   `json:"weekly"`
	Holidays float64   `json:"holidays"`
	// Future is true for dates after the last training date.
	Future bool `json:"future"`
}

// Width returns Upper - Lower.
func (p ForecastPoint) Width() float64 { return p.Upper - p.Lower }

// ForecastHorizon is the number of days to forecast past the last training date.
type ForecastHorizon int

const (
	MinHorizonYears = 1
	MaxHorizonYears = 4
	daysPerYear     = 365
)

// NewForecastHorizon converts a year count in [MinHorizonYears, MaxHorizonYears] to days.
func NewForecastHorizon(years int) (ForecastHorizon, error) {
	if years < MinHorizonYears || years > MaxHorizonYears {
		return 0, NewPipelineError(ErrInvalidHorizon, StageFitting,
			fmt.Errorf("years must be between %d and %d, got %d", MinHorizonYears, MaxHorizonYears, years))
	}
	return ForecastHorizon(years * daysPerYear), nil
}

func (h ForecastHorizon) Days() int { return int(h) }

// Years returns the horizon in whole 365-day years.
func (h ForecastHorizon) Years() int { return int(h) / daysPerYear }
