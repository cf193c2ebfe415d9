package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang-stock-forecaster/internal/entity"
	"golang-stock-forecaster/internal/forecaster/config"
	"golang-stock-forecaster/internal/forecaster/repository"
	"golang-stock-forecaster/pkg/common"
	"golang-stock-forecaster/pkg/logger"
	"golang-stock-forecaster/pkg/utils"
)

// Forecaster fits a model on a price series and extends it by a horizon.
type Forecaster interface {
	Forecast(ctx context.Context, series entity.PriceSeries, horizon entity.ForecastHorizon) ([]entity.ForecastPoint, error)
}

// RunRequest describes one end-to-end forecast. Zero Start and End default to the
// configured start date and today.
type RunRequest struct {
	Symbol string
	Years  int
	Start  time.Time
	End    time.Time
}

// ForecastService drives the catalog -> series -> forecast pipeline.
type ForecastService interface {
	ResolveCatalog(ctx context.Context) (entity.SymbolCatalog, error)
	RefreshCatalog(ctx context.Context) error
	LoadSeries(ctx context.Context, symbol entity.TickerSymbol, start, end time.Time) (entity.PriceSeries, error)
	Forecast(ctx context.Context, series entity.PriceSeries, horizon entity.ForecastHorizon) ([]entity.ForecastPoint, error)
	Run(ctx context.Context, req RunRequest) (*entity.PipelineRun, error)
	LatestNews(ctx context.Context) []entity.Headline
	DefaultRange() (start, end time.Time)
}

// NewForecastService creates a new forecast service.
func NewForecastService(
	catalogRepo repository.CatalogRepository,
	priceRepo repository.PriceHistoryRepository,
	newsRepo repository.NewsRepository,
	cache repository.CacheStore,
	engine Forecaster,
	cfg *config.Config,
	log *logger.Logger,
) ForecastService {
	return &forecastService{
		catalogRepo: catalogRepo,
		priceRepo:   priceRepo,
		newsRepo:    newsRepo,
		cache:       cache,
		engine:      engine,
		cfg:         cfg,
		logger:      log,
		now:         time.Now,
	}
}

type forecastService struct {
	catalogRepo repository.CatalogRepository
	priceRepo   repository.PriceHistoryRepository
	newsRepo    repository.NewsRepository
	cache       repository.CacheStore
	engine      Forecaster
	cfg         *config.Config
	logger      *logger.Logger
	now         func() time.Time
}

// ResolveCatalog returns the cached catalog, fetching it on a miss.
func (s *forecastService) ResolveCatalog(ctx context.Context) (entity.SymbolCatalog, error) {
	catalog, ok, err := s.cache.GetCatalog(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to read catalog from cache", logger.ErrorField(err))
	}
	if ok {
		return catalog, nil
	}

	catalog, err = s.catalogRepo.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetCatalog(ctx, catalog); err != nil {
		s.logger.WarnContext(ctx, "Failed to store catalog in cache", logger.ErrorField(err))
	}
	return catalog, nil
}

// RefreshCatalog fetches the catalog from source and replaces the cached one.
// On failure the cached catalog is left untouched.
func (s *forecastService) RefreshCatalog(ctx context.Context) error {
	catalog, err := s.catalogRepo.Resolve(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to refresh symbol catalog, keeping previous",
			logger.ErrorField(err), logger.StringField("kind", entity.KindName(err)))
		return err
	}
	if err := s.cache.SetCatalog(ctx, catalog); err != nil {
		s.logger.ErrorContext(ctx, "Failed to store refreshed catalog", logger.ErrorField(err))
		return err
	}
	s.logger.InfoContext(ctx, "Symbol catalog refreshed", logger.IntField("symbols", len(catalog)-1))
	return nil
}

// LoadSeries returns the cached series for (symbol, start, end), loading it on a miss.
func (s *forecastService) LoadSeries(ctx context.Context, symbol entity.TickerSymbol, start, end time.Time) (entity.PriceSeries, error) {
	key := repository.SeriesKey{Symbol: symbol, Start: start, End: end}
	series, ok, err := s.cache.GetSeries(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to read series from cache", logger.ErrorField(err), logger.StringField("key", key.String()))
	}
	if ok {
		return series, nil
	}

	series, err = s.priceRepo.Load(ctx, symbol, start, end)
	if err != nil {
		return entity.PriceSeries{}, err
	}
	if err := s.cache.SetSeries(ctx, key, series); err != nil {
		s.logger.WarnContext(ctx, "Failed to store series in cache", logger.ErrorField(err), logger.StringField("key", key.String()))
	}
	return series, nil
}

// Forecast fits and extends the series by the horizon.
func (s *forecastService) Forecast(ctx context.Context, series entity.PriceSeries, horizon entity.ForecastHorizon) ([]entity.ForecastPoint, error) {
	return s.engine.Forecast(ctx, series, horizon)
}

// DefaultRange returns the configured start date through today.
func (s *forecastService) DefaultRange() (time.Time, time.Time) {
	start, err := utils.ParseDate(s.cfg.Forecast.StartDate)
	if err != nil {
		start, _ = utils.ParseDate(common.DefaultStartDate)
	}
	return start, utils.TruncateDay(s.now())
}

// Run executes one forecast request through every pipeline state. The returned run is
// always terminal; when it failed, the error is also returned.
func (s *forecastService) Run(ctx context.Context, req RunRequest) (*entity.PipelineRun, error) {
	symbol, symbolErr := NormalizeSymbol(req.Symbol)
	horizon, horizonErr := entity.NewForecastHorizon(req.Years)
	run := entity.NewPipelineRun(symbol, horizon, s.now())

	fail := func(err error) (*entity.PipelineRun, error) {
		run.Fail(err, s.now())
		s.logger.WarnContext(ctx, "Forecast run failed",
			logger.StringField("symbol", symbol.String()),
			logger.StringField("stage", string(run.FailedIn)),
			logger.StringField("kind", run.ErrorKind),
			logger.ErrorField(err),
		)
		return run, err
	}
	advance := func(next entity.PipelineState) error {
		return run.Advance(next, s.now())
	}

	if horizonErr != nil {
		return fail(horizonErr)
	}

	if err := advance(entity.StateCatalogLoading); err != nil {
		return fail(err)
	}
	catalog, err := s.ResolveCatalog(ctx)
	if err != nil {
		return fail(err)
	}
	if err := advance(entity.StateCatalogReady); err != nil {
		return fail(err)
	}

	if err := advance(entity.StateSeriesLoading); err != nil {
		return fail(err)
	}
	if symbolErr != nil {
		return fail(symbolErr)
	}
	if !catalog.Contains(symbol) {
		return fail(entity.NewPipelineError(entity.ErrSymbolNotFound, entity.StageSeries,
			fmt.Errorf("%s is not in the symbol catalog", symbol)))
	}

	start, end := s.DefaultRange()
	if !req.Start.IsZero() {
		start = utils.TruncateDay(req.Start)
	}
	if !req.End.IsZero() {
		end = utils.TruncateDay(req.End)
	}
	series, err := s.LoadSeries(ctx, symbol, start, end)
	if err != nil {
		return fail(err)
	}
	run.Series = series
	if err := advance(entity.StateSeriesReady); err != nil {
		return fail(err)
	}

	if err := advance(entity.StateFitting); err != nil {
		return fail(err)
	}
	points, err := s.Forecast(ctx, series, horizon)
	if err != nil {
		return fail(err)
	}
	run.Forecast = points
	if err := advance(entity.StateForecastReady); err != nil {
		return fail(err)
	}

	s.logger.InfoContext(ctx, "Forecast run completed",
		logger.StringField("symbol", symbol.String()),
		logger.IntField("years", horizon.Years()),
		logger.IntField("bars", series.Len()),
		logger.IntField("points", len(points)),
	)
	return run, nil
}

// LatestNews returns the latest headlines, or an empty list when the feed cannot be read.
func (s *forecastService) LatestNews(ctx context.Context) []entity.Headline {
	headlines, err := s.newsRepo.FetchLatestHeadlines(ctx, s.cfg.News.FeedURL)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to fetch latest news", logger.ErrorField(err), logger.StringField("source", s.cfg.News.FeedURL))
		return []entity.Headline{}
	}
	if headlines == nil {
		headlines = []entity.Headline{}
	}
	return headlines
}

// NormalizeSymbol trims and upper-cases user input. The placeholder and blank input
// are rejected with ErrInvalidSymbol.
func NormalizeSymbol(raw string) (entity.TickerSymbol, error) {
	trimmed := strings.TrimSpace(raw)
	if !entity.TickerSymbol(trimmed).IsSelectable() {
		return entity.TickerSymbol(trimmed), entity.NewPipelineError(entity.ErrInvalidSymbol, entity.StageSeries,
			fmt.Errorf("%q is not a selectable symbol", raw))
	}
	return entity.TickerSymbol(strings.ToUpper(trimmed)), nil
}
