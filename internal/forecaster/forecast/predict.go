package forecast

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"golang-stock-forecaster/internal/entity"
	"golang-stock-forecaster/pkg/logger"
	"golang-stock-forecaster/pkg/utils"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Forecast fits the model on the series closes and extends it by the horizon.
func (e *Engine) Forecast(ctx context.Context, series entity.PriceSeries, horizon entity.ForecastHorizon) ([]entity.ForecastPoint, error) {
	if horizon.Days() <= 0 {
		return nil, entity.NewPipelineError(entity.ErrInvalidHorizon, entity.StageFitting,
			fmt.Errorf("horizon must be positive, got %d days", horizon.Days()))
	}

	started := time.Now()
	model, err := e.Fit(ctx, series.TrainingPoints())
	if err != nil {
		return nil, err
	}

	points, err := model.Extend(ctx, horizon.Days())
	if err != nil {
		return nil, err
	}

	e.log.InfoContext(ctx, "Forecast generated",
		logger.StringField("symbol", series.Symbol.String()),
		logger.IntField("history", model.Observations()),
		logger.IntField("horizon_days", horizon.Days()),
		logger.IntField("points", len(points)),
		logger.DurationField("duration", time.Since(started)),
	)
	return points, nil
}

// Extend predicts one point per calendar day from the first training date through
// horizonDays after the last one.
func (m *Model) Extend(ctx context.Context, horizonDays int) ([]entity.ForecastPoint, error) {
	if horizonDays < 0 {
		return nil, fmt.Errorf("horizon must not be negative, got %d", horizonDays)
	}

	last := m.end.AddDate(0, 0, horizonDays)
	days := utils.DaysBetween(m.start, last) + 1
	points := make([]entity.ForecastPoint, 0, days)

	sampler := m.newSampler(last)
	row := make([]float64, m.features.width())
	samples := make([]float64, sampler.size())

	for i := 0; i < days; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		date := m.start.AddDate(0, 0, i)
		t := m.scaledTime(date)
		if len(row) > 0 {
			m.features.row(date, row)
		}

		trend := m.trend(t)
		yearly, weekly, holidays := m.features.components(row, m.beta)
		estimate := trend + yearly + weekly + holidays

		point := entity.ForecastPoint{
			Date:     date,
			Estimate: estimate * m.yScale,
			Trend:    trend * m.yScale,
			Yearly:   yearly * m.yScale,
			Weekly:   weekly * m.yScale,
			Holidays: holidays * m.yScale,
			Future:   date.After(m.end),
			Lower:    estimate * m.yScale,
			Upper:    estimate * m.yScale,
		}

		if sampler.size() > 0 {
			sampler.draw(t, estimate, samples)
			lower, upper := m.interval(samples)
			point.Lower = math.Min(lower, point.Estimate)
			point.Upper = math.Max(upper, point.Estimate)
		}
		points = append(points, point)
	}
	return points, nil
}

// trend evaluates the piecewise linear trend at scaled time t.
func (m *Model) trend(t float64) float64 {
	v := m.k*t + m.m
	for j, c := range m.cps {
		if t > c {
			v += m.delta[j] * (t - c)
		}
	}
	return v
}

// interval returns the scaled quantiles of the sampled values; samples is sorted in place.
func (m *Model) interval(samples []float64) (lower, upper float64) {
	sort.Float64s(samples)
	w := m.opts.IntervalWidth
	lower = stat.Quantile((1-w)/2, stat.LinInterp, samples, nil)
	upper = stat.Quantile((1+w)/2, stat.LinInterp, samples, nil)
	return lower * m.yScale, upper * m.yScale
}

// trendPath holds the extra changepoints of one simulated future trend.
type trendPath struct {
	cps    []float64
	deltas []float64
}

// sampler draws simulated values around the point estimate. Future trend changes follow
// the frequency and magnitude of the fitted changepoints; observation noise uses sigma.
type sampler struct {
	rng   *rand.Rand
	paths []trendPath
	sigma float64
}

func (m *Model) newSampler(last time.Time) *sampler {
	n := m.opts.UncertaintySamples
	rng := rand.New(rand.NewPCG(m.opts.Seed, m.opts.Seed))
	s := &sampler{rng: rng, paths: make([]trendPath, n), sigma: m.sigma}
	if n == 0 {
		return s
	}

	tEnd := m.scaledTime(last)
	rate := float64(len(m.cps)) * (tEnd - 1)
	if tEnd <= 1 || rate <= 0 {
		return s
	}

	meanDelta := 0.0
	if len(m.delta) > 0 {
		magnitudes := make([]float64, len(m.delta))
		for i, d := range m.delta {
			magnitudes[i] = math.Abs(d)
		}
		meanDelta = floats.Sum(magnitudes) / float64(len(magnitudes))
	}

	count := distuv.Poisson{Lambda: rate, Src: rng}
	position := distuv.Uniform{Min: 1, Max: tEnd, Src: rng}
	magnitude := distuv.Laplace{Mu: 0, Scale: meanDelta + 1e-8, Src: rng}
	for i := range s.paths {
		k := int(count.Rand())
		if k == 0 {
			continue
		}
		path := trendPath{cps: make([]float64, k), deltas: make([]float64, k)}
		for j := 0; j < k; j++ {
			path.cps[j] = position.Rand()
		}
		sort.Float64s(path.cps)
		for j := 0; j < k; j++ {
			path.deltas[j] = magnitude.Rand()
		}
		s.paths[i] = path
	}
	return s
}

func (s *sampler) size() int { return len(s.paths) }

// draw fills out with one simulated value per path for scaled time t.
func (s *sampler) draw(t, estimate float64, out []float64) {
	for i, path := range s.paths {
		v := estimate
		for j, c := range path.cps {
			if t > c {
				v += path.deltas[j] * (t - c)
			}
		}
		out[i] = v + s.sigma*s.rng.NormFloat64()
	}
}

