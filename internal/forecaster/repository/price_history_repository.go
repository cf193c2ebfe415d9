package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"golang-stock-forecaster/internal/entity"
	"golang-stock-forecaster/internal/forecaster/config"
	"golang-stock-forecaster/internal/forecaster/dto"
	"golang-stock-forecaster/pkg/logger"
	"golang-stock-forecaster/pkg/utils"

	"golang.org/x/time/rate"
)

// PriceHistoryRepository loads daily OHLC bars for a symbol.
type PriceHistoryRepository interface {
	Load(ctx context.Context, symbol entity.TickerSymbol, start, end time.Time) (entity.PriceSeries, error)
}

type yahooFinanceRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

// NewYahooFinanceRepository creates a PriceHistoryRepository backed by the Yahoo chart API.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) PriceHistoryRepository {
	limit := rate.Inf
	if cfg.YahooFinance.MaxRequestPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.YahooFinance.MaxRequestPerMinute))
	}
	return &yahooFinanceRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: cfg.YahooFinance.Timeout,
		},
		requestLimiter: rate.NewLimiter(limit, 1),
	}
}

// Load fetches the bars of symbol between start and end, both inclusive.
// There is no retry: any transport failure is returned to the caller as is.
func (r *yahooFinanceRepository) Load(ctx context.Context, symbol entity.TickerSymbol, start, end time.Time) (entity.PriceSeries, error) {
	start, end = utils.TruncateDay(start), utils.TruncateDay(end)
	if !symbol.IsSelectable() {
		return entity.PriceSeries{}, entity.NewPipelineError(entity.ErrInvalidSymbol, entity.StageSeries,
			fmt.Errorf("%q is not a selectable symbol", symbol))
	}
	if start.After(end) {
		return entity.PriceSeries{}, entity.NewPipelineError(entity.ErrInvalidRange, entity.StageSeries,
			fmt.Errorf("start %s is after end %s", utils.FormatDate(start), utils.FormatDate(end)))
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		r.log.ErrorContext(ctx, "Failed to wait for request limit", logger.ErrorField(err), logger.StringField("symbol", symbol.String()))
		return entity.PriceSeries{}, entity.NewPipelineError(entity.ErrSourceUnavailable, entity.StageSeries, err)
	}

	chartURL := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=history&includeAdjustedClose=true",
		strings.TrimRight(r.cfg.YahooFinance.BaseURL, "/"),
		url.PathEscape(yahooSymbol(symbol)),
		start.Unix(),
		end.AddDate(0, 0, 1).Unix(), // period2 is exclusive; end is not
	)

	body, err := getBody(ctx, r.httpClient, r.log, chartURL, "application/json, text/plain, */*")
	if err != nil {
		var statusErr *httpStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return entity.PriceSeries{}, entity.NewPipelineError(entity.ErrSymbolNotFound, entity.StageSeries,
				fmt.Errorf("no price data for %s", symbol))
		}
		return entity.PriceSeries{}, entity.NewPipelineError(entity.ErrSourceUnavailable, entity.StageSeries,
			fmt.Errorf("failed to fetch price history for %s: %w", symbol, err))
	}

	var response dto.YahooChartResponse
	if err := json.Unmarshal(body, &response); err != nil {
		r.log.ErrorContext(ctx, "Failed to decode chart response", logger.ErrorField(err), logger.StringField("symbol", symbol.String()))
		return entity.PriceSeries{}, entity.NewPipelineError(entity.ErrParseFailure, entity.StageSeries, err)
	}

	bars, err := barsFromChart(response.Chart)
	if err != nil {
		return entity.PriceSeries{}, entity.NewPipelineError(entity.ErrSymbolNotFound, entity.StageSeries,
			fmt.Errorf("%s: %w", symbol, err))
	}

	bars = normalizeBars(bars, start, end)
	if len(bars) == 0 {
		return entity.PriceSeries{}, entity.NewPipelineError(entity.ErrSymbolNotFound, entity.StageSeries,
			fmt.Errorf("no price data for %s between %s and %s", symbol, utils.FormatDate(start), utils.FormatDate(end)))
	}

	r.log.DebugContext(ctx, "Loaded price history",
		logger.StringField("symbol", symbol.String()),
		logger.IntField("bars", len(bars)),
		logger.StringField("first", utils.FormatDate(bars[0].Date)),
		logger.StringField("last", utils.FormatDate(bars[len(bars)-1].Date)),
	)

	return entity.PriceSeries{
		Symbol: symbol,
		Start:  start,
		End:    end,
		Bars:   bars,
	}, nil
}

// yahooSymbol maps class-share tickers such as BRK.B to Yahoo's BRK-B form.
func yahooSymbol(symbol entity.TickerSymbol) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(symbol.String())), ".", "-")
}

// barsFromChart turns the columnar chart payload into bars, skipping null bars.
func barsFromChart(chart dto.YahooChart) ([]entity.PriceBar, error) {
	if chart.Error != nil {
		return nil, fmt.Errorf("%s: %s", chart.Error.Code, chart.Error.Description)
	}
	if len(chart.Result) == 0 || len(chart.Result[0].Timestamp) == 0 || len(chart.Result[0].Indicators.Quote) == 0 {
		return nil, errors.New("no data returned")
	}

	result := chart.Result[0]
	quote := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}
	loc := exchangeLocation(result.Meta)

	bars := make([]entity.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		closePrice := valueAt(quote.Close, i)
		if closePrice == nil {
			continue
		}
		bar := entity.PriceBar{
			Date:  utils.TruncateDay(time.Unix(ts, 0).In(loc)),
			Close: *closePrice,
		}
		if v := valueAt(quote.Open, i); v != nil {
			bar.Open = *v
		}
		if v := valueAt(quote.High, i); v != nil {
			bar.High = *v
		}
		if v := valueAt(quote.Low, i); v != nil {
			bar.Low = *v
		}
		if v := valueAt(adj, i); v != nil {
			bar.AdjClose = *v
		} else {
			bar.AdjClose = bar.Close
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// normalizeBars sorts bars ascending, keeps the last bar of any repeated date and
// drops bars outside [start, end].
func normalizeBars(bars []entity.PriceBar, start, end time.Time) []entity.PriceBar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	out := make([]entity.PriceBar, 0, len(bars))
	for _, b := range bars {
		if b.Date.Before(start) || b.Date.After(end) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func valueAt(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

func exchangeLocation(meta dto.YahooChartMeta) *time.Location {
	if meta.ExchangeTimezoneName != "" {
		if loc, err := time.LoadLocation(meta.ExchangeTimezoneName); err == nil {
			return loc
		}
	}
	return time.FixedZone("exchange", meta.GMTOffset)
}
