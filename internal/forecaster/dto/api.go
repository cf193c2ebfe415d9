package dto

import (
	"time"

	"golang-stock-forecaster/internal/entity"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Stage string `json:"stage,omitempty"`
}

// CatalogResponse lists the symbol catalog, placeholder first.
type CatalogResponse struct {
	Placeholder string   `json:"placeholder"`
	Symbols     []string `json:"symbols"`
	Count       int      `json:"count"`
}

// SeriesResponse is a price series, optionally cut to its latest bars.
type SeriesResponse struct {
	Symbol string            `json:"symbol"`
	Start  string            `json:"start"`
	End    string            `json:"end"`
	Count  int               `json:"count"`
	Bars   []entity.PriceBar `json:"bars"`
}

// ForecastResponse is the result of one pipeline run.
type ForecastResponse struct {
	Symbol      string                 `json:"symbol"`
	Years       int                    `json:"years"`
	HorizonDays int                    `json:"horizon_days"`
	State       string                 `json:"state"`
	History     []entity.StateChange   `json:"history"`
	LastClose   float64                `json:"last_close"`
	LastDate    time.Time              `json:"last_date"`
	Count       int                    `json:"count"`
	Points      []entity.ForecastPoint `json:"points"`
}

// NewsResponse lists the latest headlines.
type NewsResponse struct {
	Source    string            `json:"source"`
	Headlines []entity.Headline `json:"headlines"`
}

// ForecastQuery binds the query string of forecast endpoints.
type ForecastQuery struct {
	Years int `query:"years"`
	Tail  int `query:"tail"`
}

// SeriesQuery binds the query string of series endpoints.
type SeriesQuery struct {
	Start string `query:"start"`
	End   string `query:"end"`
	Tail  int    `query:"tail"`
}
