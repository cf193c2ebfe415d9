package render

import (
	"bytes"
	"fmt"
	"time"

	"golang-stock-forecaster/internal/entity"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth  = 1100
	chartHeight = 450
)

var (
	historyColor = drawing.ColorFromHex("111827") // gray-900
	openColor    = drawing.ColorFromHex("f59e0b") // amber-500
	closeColor   = drawing.ColorFromHex("2563eb") // blue-600
	boundColor   = drawing.ColorFromHex("93c5fd") // blue-300
	yearlyColor  = drawing.ColorFromHex("16a34a") // green-600
	weeklyColor  = drawing.ColorFromHex("dc2626") // red-600
	holidayColor = drawing.ColorFromHex("7c3aed") // violet-600
)

// RawSeriesChart renders the open and close prices of a series as a PNG.
func RawSeriesChart(series entity.PriceSeries) ([]byte, error) {
	if series.Len() < 2 {
		return nil, fmt.Errorf("need at least 2 bars, got %d", series.Len())
	}

	xValues := make([]time.Time, series.Len())
	openY := make([]float64, series.Len())
	closeY := make([]float64, series.Len())
	for i, b := range series.Bars {
		xValues[i] = b.Date
		openY[i] = b.Open
		closeY[i] = b.Close
	}

	graph := newGraph(fmt.Sprintf("%s price history", series.Symbol), []chart.Series{
		chart.TimeSeries{
			Name:    "Open",
			Style:   chart.Style{StrokeColor: openColor, StrokeWidth: 1.2},
			XValues: xValues,
			YValues: openY,
		},
		chart.TimeSeries{
			Name:    "Close",
			Style:   chart.Style{StrokeColor: closeColor, StrokeWidth: 1.2},
			XValues: xValues,
			YValues: closeY,
		},
	})
	return renderPNG(graph)
}

// ForecastChart renders the closing history with the forecast estimate and its bounds.
func ForecastChart(series entity.PriceSeries, points []entity.ForecastPoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 forecast points, got %d", len(points))
	}

	xValues := make([]time.Time, len(points))
	estimate := make([]float64, len(points))
	lower := make([]float64, len(points))
	upper := make([]float64, len(points))
	for i, p := range points {
		xValues[i] = p.Date
		estimate[i] = p.Estimate
		lower[i] = p.Lower
		upper[i] = p.Upper
	}

	boundStyle := chart.Style{StrokeColor: boundColor, StrokeWidth: 1, StrokeDashArray: []float64{4.0, 2.0}}
	plotted := []chart.Series{
		chart.TimeSeries{Name: "Upper", Style: boundStyle, XValues: xValues, YValues: upper},
		chart.TimeSeries{Name: "Lower", Style: boundStyle, XValues: xValues, YValues: lower},
		chart.TimeSeries{
			Name:    "Forecast",
			Style:   chart.Style{StrokeColor: closeColor, StrokeWidth: 2},
			XValues: xValues,
			YValues: estimate,
		},
	}

	if series.Len() >= 2 {
		histX := make([]time.Time, series.Len())
		histY := make([]float64, series.Len())
		for i, b := range series.Bars {
			histX[i] = b.Date
			histY[i] = b.Close
		}
		plotted = append(plotted, chart.TimeSeries{
			Name:    "Close",
			Style:   chart.Style{StrokeColor: historyColor, StrokeWidth: 1},
			XValues: histX,
			YValues: histY,
		})
	}

	return renderPNG(newGraph(fmt.Sprintf("%s forecast", series.Symbol), plotted))
}

// ComponentsChart renders the trend on the left axis and the seasonal and
// holiday terms on the right axis.
func ComponentsChart(symbol entity.TickerSymbol, points []entity.ForecastPoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 forecast points, got %d", len(points))
	}

	graph := newGraph(fmt.Sprintf("%s forecast components", symbol), componentSeries(points))
	graph.YAxisSecondary = chart.YAxis{ValueFormatter: priceFormatter}
	return renderPNG(graph)
}

// componentSeries plots the trend on the primary axis and the seasonal
// terms on the secondary one. Holidays are only drawn when the model
// produced a non-zero holiday effect somewhere.
func componentSeries(points []entity.ForecastPoint) []chart.Series {
	xValues := make([]time.Time, len(points))
	trend := make([]float64, len(points))
	yearly := make([]float64, len(points))
	weekly := make([]float64, len(points))
	holidays := make([]float64, len(points))
	hasHolidays := false
	for i, p := range points {
		xValues[i] = p.Date
		trend[i] = p.Trend
		yearly[i] = p.Yearly
		weekly[i] = p.Weekly
		holidays[i] = p.Holidays
		if p.Holidays != 0 {
			hasHolidays = true
		}
	}

	series := []chart.Series{
		chart.TimeSeries{
			Name:    "Trend",
			Style:   chart.Style{StrokeColor: closeColor, StrokeWidth: 2},
			XValues: xValues,
			YValues: trend,
		},
		chart.TimeSeries{
			Name:    "Yearly",
			Style:   chart.Style{StrokeColor: yearlyColor, StrokeWidth: 1},
			YAxis:   chart.YAxisSecondary,
			XValues: xValues,
			YValues: yearly,
		},
		chart.TimeSeries{
			Name:    "Weekly",
			Style:   chart.Style{StrokeColor: weeklyColor, StrokeWidth: 1},
			YAxis:   chart.YAxisSecondary,
			XValues: xValues,
			YValues: weekly,
		},
	}
	if hasHolidays {
		series = append(series, chart.TimeSeries{
			Name:    "Holidays",
			Style:   chart.Style{StrokeColor: holidayColor, StrokeWidth: 1},
			YAxis:   chart.YAxisSecondary,
			XValues: xValues,
			YValues: holidays,
		})
	}
	return series
}

func newGraph(title string, series []chart.Series) *chart.Chart {
	graph := &chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis:  chart.YAxis{ValueFormatter: priceFormatter},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(graph)}
	return graph
}

func priceFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.2f", f)
	}
	return ""
}

func renderPNG(graph *chart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
