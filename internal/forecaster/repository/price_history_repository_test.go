package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"golang-stock-forecaster/internal/entity"
	"golang-stock-forecaster/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chartPayload builds a chart response with one bar per timestamp; nil closes become null bars.
func chartPayload(timestamps []int64, closes []*float64) map[string]interface{} {
	open := make([]*float64, len(closes))
	volume := make([]*int64, len(closes))
	for i, c := range closes {
		if c != nil {
			v := *c - 1
			open[i] = &v
			vol := int64(1000 + i)
			volume[i] = &vol
		}
	}
	return map[string]interface{}{
		"chart": map[string]interface{}{
			"result": []interface{}{
				map[string]interface{}{
					"meta": map[string]interface{}{
						"symbol":               "AAPL",
						"exchangeTimezoneName": "America/New_York",
						"gmtoffset":            -18000,
					},
					"timestamp": timestamps,
					"indicators": map[string]interface{}{
						"quote": []interface{}{
							map[string]interface{}{
								"open":   open,
								"high":   closes,
								"low":    open,
								"close":  closes,
								"volume": volume,
							},
						},
						"adjclose": []interface{}{
							map[string]interface{}{"adjclose": closes},
						},
					},
				},
			},
			"error": nil,
		},
	}
}

func f(v float64) *float64 { return &v }

// sessionOpen returns 09:30 New York time on the given date as a unix timestamp.
func sessionOpen(t *testing.T, d time.Time) int64 {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return time.Date(d.Year(), d.Month(), d.Day(), 9, 30, 0, 0, loc).Unix()
}

func TestYahooFinanceRepository_Load(t *testing.T) {
	// out of order, a duplicate, a null bar and one bar past the end bound
	timestamps := []int64{
		sessionOpen(t, date(2024, 1, 3)),
		sessionOpen(t, date(2024, 1, 2)),
		sessionOpen(t, date(2024, 1, 4)),
		sessionOpen(t, date(2024, 1, 4)),
		sessionOpen(t, date(2024, 1, 5)),
		sessionOpen(t, date(2024, 1, 8)),
	}
	closes := []*float64{f(101), f(100), f(102), f(102.5), nil, f(110)}

	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(chartPayload(timestamps, closes))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.YahooFinance.BaseURL = srv.URL
	repo := NewYahooFinanceRepository(cfg, logger.NewNop())

	series, err := repo.Load(context.Background(), "brk.b", date(2024, 1, 1), date(2024, 1, 5))
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/BRK-B", gotPath)
	assert.Equal(t, "1d", gotQuery["interval"][0])
	assert.Equal(t, strconv.FormatInt(date(2024, 1, 1).Unix(), 10), gotQuery["period1"][0])
	assert.Equal(t, strconv.FormatInt(date(2024, 1, 6).Unix(), 10), gotQuery["period2"][0])

	require.Equal(t, 3, series.Len())
	assert.True(t, series.IsStrictlyAscending())
	assert.Equal(t, date(2024, 1, 2), series.FirstDate())
	assert.Equal(t, date(2024, 1, 4), series.LastDate())
	assert.Equal(t, 102.5, series.Bars[2].Close)
	assert.Equal(t, 99.0, series.Bars[0].Open)
	assert.Equal(t, entity.TickerSymbol("brk.b"), series.Symbol)
}

func TestYahooFinanceRepository_LoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		symbol   entity.TickerSymbol
		start    time.Time
		end      time.Time
		handler  http.HandlerFunc
		wantKind error
	}{
		{
			name:     "placeholder symbol",
			symbol:   entity.UnselectedSymbol,
			start:    date(2012, 1, 1),
			end:      date(2024, 1, 1),
			wantKind: entity.ErrInvalidSymbol,
		},
		{
			name:     "start after end",
			symbol:   "AAPL",
			start:    date(2024, 1, 2),
			end:      date(2024, 1, 1),
			wantKind: entity.ErrInvalidRange,
		},
		{
			name:   "unknown symbol",
			symbol: "ZZZZ-INVALID",
			start:  date(2012, 1, 1),
			end:    date(2024, 1, 1),
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
			},
			wantKind: entity.ErrSymbolNotFound,
		},
		{
			name:   "empty result",
			symbol: "AAPL",
			start:  date(2012, 1, 1),
			end:    date(2024, 1, 1),
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{},"timestamp":[],"indicators":{"quote":[{}]}}],"error":null}}`))
			},
			wantKind: entity.ErrSymbolNotFound,
		},
		{
			name:   "server error",
			symbol: "AAPL",
			start:  date(2012, 1, 1),
			end:    date(2024, 1, 1),
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantKind: entity.ErrSourceUnavailable,
		},
		{
			name:   "garbage body",
			symbol: "AAPL",
			start:  date(2012, 1, 1),
			end:    date(2024, 1, 1),
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>rate limited</html>`))
			},
			wantKind: entity.ErrParseFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				if tt.handler != nil {
					tt.handler(w, r)
				}
			}))
			defer srv.Close()

			cfg := testConfig()
			cfg.YahooFinance.BaseURL = srv.URL
			repo := NewYahooFinanceRepository(cfg, logger.NewNop())

			series, err := repo.Load(context.Background(), tt.symbol, tt.start, tt.end)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, 0, series.Len())
			if tt.handler == nil {
				assert.Zero(t, calls, "invalid input must not reach the network")
			} else {
				assert.Equal(t, 1, calls, "no retries")
			}
		})
	}
}

func TestNormalizeBars(t *testing.T) {
	bars := []entity.PriceBar{
		{Date: date(2024, 1, 5), Close: 5},
		{Date: date(2023, 12, 29), Close: 0},
		{Date: date(2024, 1, 2), Close: 2},
		{Date: date(2024, 1, 2), Close: 3},
	}
	out := normalizeBars(bars, date(2024, 1, 1), date(2024, 1, 5))
	require.Len(t, out, 2)
	assert.Equal(t, 3.0, out[0].Close)
	assert.Equal(t, date(2024, 1, 5), out[1].Date)
}
