package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"golang-stock-forecaster/internal/entity"
	"golang-stock-forecaster/pkg/logger"
	"golang-stock-forecaster/pkg/utils"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

const (
	// minTrainingPoints is the fewest observations a trend can be fitted to.
	// Shorter but valid histories fit with seasonality switched off and wide bounds.
	minTrainingPoints = 2

	trendPriorScale = 5.0
	sigmaPriorScale = 0.5
	absSmoothing    = 1e-10
)

// Engine fits additive trend + seasonality models.
type Engine struct {
	opts Options
	log  *logger.Logger
}

// New creates an Engine. Invalid options are reported by Fit.
func New(opts Options, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{opts: opts, log: log}
}

// Options returns the engine configuration.
func (e *Engine) Options() Options { return e.opts }

// Model is a fitted additive model. It is immutable and safe for concurrent Extend calls.
type Model struct {
	opts     Options
	start    time.Time
	end      time.Time
	tScale   float64
	yScale   float64
	nObs     int
	cps      []float64
	features featureSet

	k, m  float64
	delta []float64
	beta  []float64
	sigma float64
}

// Start returns the first training date.
func (m *Model) Start() time.Time { return m.start }

// End returns the last training date.
func (m *Model) End() time.Time { return m.end }

// Observations returns the number of training points used.
func (m *Model) Observations() int { return m.nObs }

// Sigma returns the fitted observation noise in price units.
func (m *Model) Sigma() float64 { return m.sigma * m.yScale }

// Changepoints returns the dates at which the trend slope was allowed to change.
func (m *Model) Changepoints() []time.Time {
	out := make([]time.Time, len(m.cps))
	for i, c := range m.cps {
		out[i] = m.dateAt(c)
	}
	return out
}

// Seasonalities returns the names of the fitted seasonal components.
func (m *Model) Seasonalities() []string {
	out := make([]string, len(m.features.seasonalities))
	for i, s := range m.features.seasonalities {
		out[i] = s.name
	}
	return out
}

func (m *Model) scaledTime(date time.Time) float64 {
	return date.Sub(m.start).Hours() / 24 / m.tScale
}

func (m *Model) dateAt(t float64) time.Time {
	days := math.Round(t * m.tScale)
	return m.start.AddDate(0, 0, int(days))
}

// Fit estimates the model from the training points by maximum a posteriori.
// Points with non-finite values are ignored and repeated dates keep the last value.
func (e *Engine) Fit(ctx context.Context, points []entity.TrainingPoint) (*Model, error) {
	if err := e.opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid model options: %w", err)
	}

	history := prepareHistory(points)
	if len(history) < minTrainingPoints {
		return nil, entity.NewPipelineError(entity.ErrInsufficientData, entity.StageFitting,
			fmt.Errorf("need at least %d observations, got %d", minTrainingPoints, len(history)))
	}

	n := len(history)
	model := &Model{
		opts:   e.opts,
		start:  history[0].Date,
		end:    history[n-1].Date,
		tScale: history[n-1].Date.Sub(history[0].Date).Hours() / 24,
		nObs:   n,
	}

	y := make([]float64, n)
	for i, p := range history {
		y[i] = math.Abs(p.Value)
	}
	model.yScale = floats.Max(y)
	if model.yScale == 0 {
		model.yScale = 1
	}
	t := make([]float64, n)
	for i, p := range history {
		t[i] = model.scaledTime(p.Date)
		y[i] = p.Value / model.yScale
	}

	model.cps = placeChangepoints(t, e.opts.NChangepoints, e.opts.ChangepointRange)
	model.features = newFeatureSet(e.selectSeasonalities(history), e.opts.Holidays, e.opts.HolidaysPriorScale)

	design := buildDesign(model, history, t)
	params, status, err := e.optimize(ctx, model, design, t, y)
	if err != nil {
		return nil, err
	}

	s := len(model.cps)
	model.k, model.m = params[0], params[1]
	model.delta = append([]float64(nil), params[2:2+s]...)
	model.beta = append([]float64(nil), params[2+s:len(params)-1]...)
	model.sigma = math.Exp(params[len(params)-1])

	e.log.DebugContext(ctx, "Fitted forecast model",
		logger.IntField("observations", n),
		logger.IntField("changepoints", s),
		logger.Field("seasonalities", model.Seasonalities()),
		logger.StringField("status", status.String()),
		logger.Float64Field("sigma", model.Sigma()),
	)
	return model, nil
}

// prepareHistory drops non-finite points, truncates dates to days and sorts ascending.
func prepareHistory(points []entity.TrainingPoint) []entity.TrainingPoint {
	out := make([]entity.TrainingPoint, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) || p.Date.IsZero() {
			continue
		}
		out = append(out, entity.TrainingPoint{Date: utils.TruncateDay(p.Date), Value: p.Value})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	deduped := out[:0]
	for _, p := range out {
		if n := len(deduped); n > 0 && deduped[n-1].Date.Equal(p.Date) {
			deduped[n-1] = p
			continue
		}
		deduped = append(deduped, p)
	}
	return deduped
}

// placeChangepoints spreads n potential changepoints evenly over the rows of the first
// changepointRange share of the history.
func placeChangepoints(t []float64, n int, changepointRange float64) []float64 {
	histSize := int(math.Floor(float64(len(t)) * changepointRange))
	if n+1 > histSize {
		n = histSize - 1
	}
	if n <= 0 {
		return nil
	}
	cps := make([]float64, 0, n)
	step := float64(histSize-1) / float64(n)
	for i := 1; i <= n; i++ {
		idx := int(math.Round(float64(i) * step))
		cps = append(cps, t[idx])
	}
	return cps
}

func (e *Engine) selectSeasonalities(history []entity.TrainingPoint) []seasonality {
	span := history[len(history)-1].Date.Sub(history[0].Date)
	minGap := time.Duration(math.MaxInt64)
	for i := 1; i < len(history); i++ {
		if gap := history[i].Date.Sub(history[i-1].Date); gap > 0 && gap < minGap {
			minGap = gap
		}
	}

	var out []seasonality
	yearly := e.opts.YearlySeasonality == SeasonalityOn ||
		(e.opts.YearlySeasonality == SeasonalityAuto && span >= 730*24*time.Hour)
	if yearly && e.opts.YearlyOrder > 0 {
		out = append(out, seasonality{name: "yearly", period: yearlyPeriod, order: e.opts.YearlyOrder, priorScale: e.opts.SeasonalityPriorScale})
	}
	weekly := e.opts.WeeklySeasonality == SeasonalityOn ||
		(e.opts.WeeklySeasonality == SeasonalityAuto && span >= 14*24*time.Hour && minGap < 7*24*time.Hour)
	if weekly && e.opts.WeeklyOrder > 0 {
		out = append(out, seasonality{name: "weekly", period: weeklyPeriod, order: e.opts.WeeklyOrder, priorScale: e.opts.SeasonalityPriorScale})
	}
	return out
}

// buildDesign returns the n x p matrix of [t, 1, (t - c)+..., regressors...].
func buildDesign(model *Model, history []entity.TrainingPoint, t []float64) *mat.Dense {
	s := len(model.cps)
	f := model.features.width()
	p := 2 + s + f
	design := mat.NewDense(len(history), p, nil)
	row := make([]float64, f)
	for i, point := range history {
		design.Set(i, 0, t[i])
		design.Set(i, 1, 1)
		for j, c := range model.cps {
			if t[i] > c {
				design.Set(i, 2+j, t[i]-c)
			}
		}
		if f > 0 {
			model.features.row(point.Date, row)
			for j, v := range row {
				design.Set(i, 2+s+j, v)
			}
		}
	}
	return design
}

// optimize minimises the negative log posterior over (k, m, delta, beta, log sigma).
//
//	k, m  ~ Normal(0, 5)
//	delta ~ Laplace(0, changepoint prior scale)
//	beta  ~ Normal(0, seasonality / holiday prior scale)
//	sigma ~ HalfNormal(0.5)
//	y     ~ Normal(design * w, sigma)
func (e *Engine) optimize(ctx context.Context, model *Model, design *mat.Dense, t, y []float64) ([]float64, optimize.Status, error) {
	n, p := design.Dims()
	s := len(model.cps)
	tau := e.opts.ChangepointPriorScale
	priorScales := model.features.priorScales

	var (
		mu   = mat.NewVecDense(n, nil)
		res  = mat.NewVecDense(n, nil)
		grad = mat.NewVecDense(p, nil)
		yVec = mat.NewVecDense(n, y)
	)

	residuals := func(x []float64) float64 {
		mu.MulVec(design, mat.NewVecDense(p, x[:p]))
		res.SubVec(yVec, mu)
		return mat.Dot(res, res)
	}

	prior := func(x []float64, g []float64) float64 {
		k, m := x[0], x[1]
		v := (k*k + m*m) / (2 * trendPriorScale * trendPriorScale)
		if g != nil {
			g[0] += k / (trendPriorScale * trendPriorScale)
			g[1] += m / (trendPriorScale * trendPriorScale)
		}
		for j := 0; j < s; j++ {
			d := x[2+j]
			a := math.Sqrt(d*d + absSmoothing)
			v += a / tau
			if g != nil {
				g[2+j] += d / a / tau
			}
		}
		for j, scale := range priorScales {
			b := x[2+s+j]
			v += b * b / (2 * scale * scale)
			if g != nil {
				g[2+s+j] += b / (scale * scale)
			}
		}
		return v
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			sse := residuals(x)
			logSigma := x[p]
			sigma2 := math.Exp(2 * logSigma)
			return sse/(2*sigma2) + float64(n)*logSigma + sigma2/(2*sigmaPriorScale*sigmaPriorScale) + prior(x, nil)
		},
		Grad: func(g, x []float64) {
			sse := residuals(x)
			logSigma := x[p]
			sigma2 := math.Exp(2 * logSigma)
			grad.MulVec(design.T(), res)
			for j := 0; j < p; j++ {
				g[j] = -grad.AtVec(j) / sigma2
			}
			g[p] = -sse/sigma2 + float64(n) + sigma2/(sigmaPriorScale*sigmaPriorScale)
			prior(x, g)
		},
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}

	initial := make([]float64, p+1)
	first, last := 0, n-1
	if dt := t[last] - t[first]; dt > 0 {
		initial[0] = (y[last] - y[first]) / dt
	}
	initial[1] = y[first] - initial[0]*t[first]

	settings := &optimize.Settings{
		MajorIterations: e.opts.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-10,
			Relative:   1e-12,
			Iterations: 50,
		},
	}

	result, err := optimize.Minimize(problem, initial, settings, &optimize.LBFGS{Store: 15})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, optimize.Failure, ctxErr
	}
	if result == nil || math.IsNaN(result.F) || math.IsInf(result.F, 0) || !allFinite(result.X) {
		// A degenerate fit keeps the initial trend rather than failing the run.
		e.log.WarnContext(ctx, "Model optimisation did not converge, using initial trend", logger.ErrorField(errOrUnknown(err)))
		return initial, optimize.Failure, nil
	}
	if err != nil {
		e.log.DebugContext(ctx, "Model optimisation stopped early", logger.ErrorField(err), logger.StringField("status", result.Status.String()))
	}
	return result.X, result.Status, nil
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func errOrUnknown(err error) error {
	if err == nil {
		return errors.New("optimiser returned no usable result")
	}
	return err
}
