package forecast

import (
	"fmt"
	"math"
	"time"
)

const (
	yearlyPeriod = 365.25
	weeklyPeriod = 7.0
	secondsInDay = 86400.0
)

type seasonality struct {
	name       string
	period     float64
	order      int
	priorScale float64
}

// holidayColumn is the indicator of one holiday at one day offset.
type holidayColumn struct {
	name   string
	offset int
	days   map[int64]struct{}
}

// featureSet lays out the seasonal and holiday regressors of one model.
type featureSet struct {
	seasonalities []seasonality
	holidays      []holidayColumn
	priorScales   []float64
}

// epochDays is the fractional number of days since the unix epoch.
func epochDays(t time.Time) float64 {
	return float64(t.Unix()) / secondsInDay
}

func dayKey(t time.Time) int64 {
	return int64(math.Floor(epochDays(t)))
}

func newFeatureSet(seasonalities []seasonality, holidays []Holiday, holidayPriorScale float64) featureSet {
	fs := featureSet{seasonalities: seasonalities}
	for _, s := range seasonalities {
		for i := 0; i < 2*s.order; i++ {
			fs.priorScales = append(fs.priorScales, s.priorScale)
		}
	}

	for _, h := range holidays {
		lower, upper := -abs(h.LowerWindow), abs(h.UpperWindow)
		for offset := lower; offset <= upper; offset++ {
			col := holidayColumn{
				name:   fmt.Sprintf("%s_%+d", h.Name, offset),
				offset: offset,
				days:   make(map[int64]struct{}, len(h.Dates)),
			}
			for _, d := range h.Dates {
				col.days[dayKey(d.AddDate(0, 0, offset))] = struct{}{}
			}
			fs.holidays = append(fs.holidays, col)
			fs.priorScales = append(fs.priorScales, holidayPriorScale)
		}
	}
	return fs
}

func (fs featureSet) width() int { return len(fs.priorScales) }

// row writes the regressors of date into dst, which must have fs.width() elements.
func (fs featureSet) row(date time.Time, dst []float64) {
	t := epochDays(date)
	col := 0
	for _, s := range fs.seasonalities {
		for i := 1; i <= s.order; i++ {
			x := 2 * math.Pi * float64(i) * t / s.period
			dst[col] = math.Sin(x)
			dst[col+1] = math.Cos(x)
			col += 2
		}
	}
	key := dayKey(date)
	for _, h := range fs.holidays {
		if _, ok := h.days[key]; ok {
			dst[col] = 1
		} else {
			dst[col] = 0
		}
		col++
	}
}

// components splits the regression term of one row into yearly, weekly and holiday parts.
func (fs featureSet) components(row, beta []float64) (yearly, weekly, holidays float64) {
	col := 0
	for _, s := range fs.seasonalities {
		var v float64
		for i := 0; i < 2*s.order; i++ {
			v += row[col] * beta[col]
			col++
		}
		switch s.name {
		case "yearly":
			yearly += v
		case "weekly":
			weekly += v
		}
	}
	for range fs.holidays {
		holidays += row[col] * beta[col]
		col++
	}
	return yearly, weekly, holidays
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
