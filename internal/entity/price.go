package entity

import "time"

// PriceBar is one daily OHLC bar. Date is a UTC calendar date.
type PriceBar struct {
	Date     time.Time `json:"date" msgpack:"date"`
	Open     float64   `json:"open" msgpack:"open"`
	High     float64   `json:"high" msgpack:"high"`
	Low      float64   `json:"low" msgpack:"low"`
	Close    float64   `json:"close" msgpack:"close"`
	AdjClose float64   `json:"adj_close" msgpack:"adj_close"`
	Volume   int64     `json:"volume" msgpack:"volume"`
}

// PriceSeries holds the bars of one symbol over [Start, End], ascending by date.
// Only trading days are present.
type PriceSeries struct {
	Symbol TickerSymbol `json:"symbol" msgpack:"symbol"`
	Start  time.Time    `json:"start" msgpack:"start"`
	End    time.Time    `json:"end" msgpack:"end"`
	Bars   []PriceBar   `json:"bars" msgpack:"bars"`
}

func (s PriceSeries) Len() int { return len(s.Bars) }

// FirstDate returns the date of the earliest bar, or the zero time for an empty series.
func (s PriceSeries) FirstDate() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[0].Date
}

// LastDate returns the date of the latest bar, or the zero time for an empty series.
func (s PriceSeries) LastDate() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[len(s.Bars)-1].Date
}

// Tail returns up to n of the latest bars.
func (s PriceSeries) Tail(n int) []PriceBar {
	if n <= 0 || n >= len(s.Bars) {
		return s.Bars
	}
	return s.Bars[len(s.Bars)-n:]
}

// TrainingPoints projects the series onto (date, close).
func (s PriceSeries) TrainingPoints() []TrainingPoint {
	points := make([]TrainingPoint, len(s.Bars))
	for i, b := range s.Bars {
		points[i] = TrainingPoint{Date: b.Date, Value: b.Close}
	}
	return points
}

// IsStrictlyAscending reports whether every bar is dated after the one before it.
func (s PriceSeries) IsStrictlyAscending() bool {
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Date.After(s.Bars[i-1].Date) {
			return false
		}
	}
	return true
}
