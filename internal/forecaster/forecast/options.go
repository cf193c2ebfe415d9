package forecast

import (
	"fmt"
	"time"

	"golang-stock-forecaster/internal/forecaster/config"
	"golang-stock-forecaster/pkg/utils"
)

// SeasonalityMode controls whether a seasonal component is fitted.
type SeasonalityMode int

const (
	// SeasonalityAuto enables the component when the history is long and dense enough.
	SeasonalityAuto SeasonalityMode = iota
	SeasonalityOn
	SeasonalityOff
)

// Holiday gives a set of dates, plus a window of days around each, its own additive effect.
type Holiday struct {
	Name        string
	Dates       []time.Time
	LowerWindow int
	UpperWindow int
}

// Options configures the additive model. The zero value is not usable; start from DefaultOptions.
type Options struct {
	NChangepoints         int
	ChangepointRange      float64
	ChangepointPriorScale float64
	SeasonalityPriorScale float64
	HolidaysPriorScale    float64
	YearlySeasonality     SeasonalityMode
	WeeklySeasonality     SeasonalityMode
	YearlyOrder           int
	WeeklyOrder           int
	IntervalWidth         float64
	UncertaintySamples    int
	MaxIterations         int
	Seed                  uint64
	Holidays              []Holiday
}

// DefaultOptions mirrors the defaults of the common additive forecasting libraries:
// 25 changepoints in the first 80% of history, 80% intervals from 1000 samples.
func DefaultOptions() Options {
	return Options{
		NChangepoints:         25,
		ChangepointRange:      0.8,
		ChangepointPriorScale: 0.05,
		SeasonalityPriorScale: 10,
		HolidaysPriorScale:    10,
		YearlySeasonality:     SeasonalityAuto,
		WeeklySeasonality:     SeasonalityAuto,
		YearlyOrder:           10,
		WeeklyOrder:           3,
		IntervalWidth:         0.8,
		UncertaintySamples:    1000,
		MaxIterations:         10000,
		Seed:                  42,
	}
}

// OptionsFromConfig overlays the configured values on DefaultOptions.
func OptionsFromConfig(cfg config.Forecast) (Options, error) {
	opts := DefaultOptions()
	if cfg.NChangepoints > 0 {
		opts.NChangepoints = cfg.NChangepoints
	}
	if cfg.ChangepointRange > 0 {
		opts.ChangepointRange = cfg.ChangepointRange
	}
	if cfg.ChangepointPriorScale > 0 {
		opts.ChangepointPriorScale = cfg.ChangepointPriorScale
	}
	if cfg.SeasonalityPriorScale > 0 {
		opts.SeasonalityPriorScale = cfg.SeasonalityPriorScale
	}
	if cfg.HolidaysPriorScale > 0 {
		opts.HolidaysPriorScale = cfg.HolidaysPriorScale
	}
	if cfg.IntervalWidth > 0 {
		opts.IntervalWidth = cfg.IntervalWidth
	}
	if cfg.UncertaintySamples >= 0 {
		opts.UncertaintySamples = cfg.UncertaintySamples
	}
	if cfg.MaxIterations > 0 {
		opts.MaxIterations = cfg.MaxIterations
	}
	if cfg.Seed != 0 {
		opts.Seed = cfg.Seed
	}

	for _, h := range cfg.Holidays {
		holiday := Holiday{Name: h.Name, LowerWindow: h.LowerWindow, UpperWindow: h.UpperWindow}
		for _, d := range h.Dates {
			parsed, err := utils.ParseDate(d)
			if err != nil {
				return Options{}, fmt.Errorf("holiday %s: invalid date %q: %w", h.Name, d, err)
			}
			holiday.Dates = append(holiday.Dates, parsed)
		}
		opts.Holidays = append(opts.Holidays, holiday)
	}

	return opts, opts.validate()
}

func (o Options) validate() error {
	switch {
	case o.NChangepoints < 0:
		return fmt.Errorf("n_changepoints must not be negative")
	case o.ChangepointRange <= 0 || o.ChangepointRange > 1:
		return fmt.Errorf("changepoint_range must be in (0, 1], got %v", o.ChangepointRange)
	case o.ChangepointPriorScale <= 0 || o.SeasonalityPriorScale <= 0 || o.HolidaysPriorScale <= 0:
		return fmt.Errorf("prior scales must be positive")
	case o.IntervalWidth <= 0 || o.IntervalWidth >= 1:
		return fmt.Errorf("interval_width must be in (0, 1), got %v", o.IntervalWidth)
	case o.UncertaintySamples < 0:
		return fmt.Errorf("uncertainty_samples must not be negative")
	}
	for _, h := range o.Holidays {
		if h.Name == "" {
			return fmt.Errorf("holiday without a name")
		}
	}
	return nil
}
