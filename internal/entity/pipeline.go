package entity

import (
	"fmt"
	"time"
)

// PipelineState is a step of one end-to-end forecast run.
type PipelineState string

const (
	StateIdle           PipelineState = "idle"
	StateCatalogLoading PipelineState = "catalog_loading"
	StateCatalogReady   PipelineState = "catalog_ready"
	StateSeriesLoading  PipelineState = "series_loading"
	StateSeriesReady    PipelineState = "series_ready"
	StateFitting        PipelineState = "fitting"
	StateForecastReady  PipelineState = "forecast_ready"
	StateFailed         PipelineState = "failed"

	// Stage aliases used when tagging errors.
	StageCatalog = StateCatalogLoading
	StageSeries  = StateSeriesLoading
	StageFitting = StateFitting
)

var transitions = map[PipelineState][]PipelineState{
	StateIdle:           {StateCatalogLoading},
	StateCatalogLoading: {StateCatalogReady},
	StateCatalogReady:   {StateSeriesLoading},
	StateSeriesLoading:  {StateSeriesReady},
	StateSeriesReady:    {StateFitting},
	StateFitting:        {StateForecastReady},
}

// IsTerminal reports whether no further transition is possible from s.
func (s PipelineState) IsTerminal() bool {
	return s == StateForecastReady || s == StateFailed
}

// CanTransition reports whether the pipeline may move from s to next.
// Any non-terminal state may move to StateFailed.
func (s PipelineState) CanTransition(next PipelineState) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// StateChange records when a run entered a state.
type StateChange struct {
	State PipelineState `json:"state"`
	At    time.Time     `json:"at"`
}

// PipelineRun is the record of one forecast request.
type PipelineRun struct {
	Symbol    TickerSymbol    `json:"symbol"`
	Horizon   ForecastHorizon `json:"horizon_days"`
	State     PipelineState   `json:"state"`
	History   []StateChange   `json:"history"`
	Series    PriceSeries     `json:"-"`
	Forecast  []ForecastPoint `json:"-"`
	Err       error           `json:"-"`
	FailedIn  PipelineState   `json:"failed_in,omitempty"`
	ErrorKind string          `json:"error_kind,omitempty"`
}

// NewPipelineRun starts a run in StateIdle.
func NewPipelineRun(symbol TickerSymbol, horizon ForecastHorizon, now time.Time) *PipelineRun {
	return &PipelineRun{
		Symbol:  symbol,
		Horizon: horizon,
		State:   StateIdle,
		History: []StateChange{{State: StateIdle, At: now}},
	}
}

// Advance moves the run to next, rejecting transitions the state machine does not allow.
func (r *PipelineRun) Advance(next PipelineState, now time.Time) error {
	if !r.State.CanTransition(next) {
		return fmt.Errorf("illegal pipeline transition %s -> %s", r.State, next)
	}
	r.State = next
	r.History = append(r.History, StateChange{State: next, At: now})
	return nil
}

// Fail moves the run to StateFailed, remembering the stage and kind of err.
func (r *PipelineRun) Fail(err error, now time.Time) {
	if r.State.IsTerminal() {
		return
	}
	r.FailedIn = r.State
	r.Err = err
	r.ErrorKind = KindName(err)
	r.State = StateFailed
	r.History = append(r.History, StateChange{State: StateFailed, At: now})
}
