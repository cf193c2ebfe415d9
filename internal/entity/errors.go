package entity

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the pipeline. Match them with errors.Is.
var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrParseFailure      = errors.New("parse failure")
	ErrSymbolNotFound    = errors.New("symbol not found")
	ErrInvalidRange      = errors.New("invalid range")
	ErrInsufficientData  = errors.New("insufficient data")
	ErrInvalidSymbol     = errors.New("invalid symbol")
	ErrInvalidHorizon    = errors.New("invalid horizon")
)

// kinds is ordered: when an error wraps several kinds without a
// PipelineError, the first match wins.
var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidSymbol, "InvalidSymbol"},
	{ErrInvalidRange, "InvalidRange"},
	{ErrInvalidHorizon, "InvalidHorizon"},
	{ErrSymbolNotFound, "SymbolNotFound"},
	{ErrInsufficientData, "InsufficientData"},
	{ErrParseFailure, "ParseFailure"},
	{ErrSourceUnavailable, "SourceUnavailable"},
}

// PipelineError carries the kind of a failure and the stage it happened in.
type PipelineError struct {
	Kind  error
	Stage PipelineState
	Err   error
}

// NewPipelineError wraps err with a kind and stage.
func NewPipelineError(kind error, stage PipelineState, err error) *PipelineError {
	return &PipelineError{Kind: kind, Stage: stage, Err: err}
}

func (e *PipelineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the kind sentinel of err, or nil if err carries none.
// The Kind of the outermost PipelineError takes precedence over kinds
// wrapped deeper in the chain.
func KindOf(err error) error {
	var pe *PipelineError
	if errors.As(err, &pe) && pe.Kind != nil {
		return pe.Kind
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.err
		}
	}
	return nil
}

// KindName returns the name of err's kind, e.g. "SymbolNotFound", or "Unknown".
func KindName(err error) string {
	kind := KindOf(err)
	for _, k := range kinds {
		if kind == k.err {
			return k.name
		}
	}
	return "Unknown"
}

// StageOf returns the stage recorded on err, or StateIdle if none.
func StageOf(err error) PipelineState {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Stage
	}
	return StateIdle
}
