package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang-stock-forecaster/internal/entity"
	_ "golang-stock-forecaster/internal/forecaster/docs"
	"golang-stock-forecaster/internal/forecaster/dto"
	"golang-stock-forecaster/internal/forecaster/service"
	"golang-stock-forecaster/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	swagger "github.com/swaggo/echo-swagger"
)

type MockForecastService struct {
	mock.Mock
}

func (m *MockForecastService) ResolveCatalog(ctx context.Context) (entity.SymbolCatalog, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entity.SymbolCatalog), args.Error(1)
}

func (m *MockForecastService) RefreshCatalog(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockForecastService) LoadSeries(ctx context.Context, symbol entity.TickerSymbol, start, end time.Time) (entity.PriceSeries, error) {
	args := m.Called(ctx, symbol, start, end)
	return args.Get(0).(entity.PriceSeries), args.Error(1)
}

func (m *MockForecastService) Forecast(ctx context.Context, series entity.PriceSeries, horizon entity.ForecastHorizon) ([]entity.ForecastPoint, error) {
	args := m.Called(ctx, series, horizon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ForecastPoint), args.Error(1)
}

func (m *MockForecastService) Run(ctx context.Context, req service.RunRequest) (*entity.PipelineRun, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PipelineRun), args.Error(1)
}

func (m *MockForecastService) LatestNews(ctx context.Context) []entity.Headline {
	return m.Called(ctx).Get(0).([]entity.Headline)
}

func (m *MockForecastService) DefaultRange() (time.Time, time.Time) {
	args := m.Called()
	return args.Get(0).(time.Time), args.Get(1).(time.Time)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newServer(svc *MockForecastService) *echo.Echo {
	e := echo.New()
	log := logger.NewNop()
	apiV1 := e.Group("/api/v1")
	NewMarketHandler(svc, "https://finance.yahoo.com/rss/", log).RegisterRoutes(apiV1)
	NewForecastHandler(svc, 1, log).RegisterRoutes(apiV1.Group("/forecast"))
	return e
}

func do(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func testSeries() entity.PriceSeries {
	var bars []entity.PriceBar
	for i := 0; i < 5; i++ {
		v := 100 + float64(i)
		bars = append(bars, entity.PriceBar{Date: day(2023, 12, 25+i), Open: v - 1, Close: v})
	}
	return entity.PriceSeries{Symbol: "AAPL", Start: day(2012, 1, 1), End: day(2024, 1, 1), Bars: bars}
}

func readyRun(years int) *entity.PipelineRun {
	horizon, _ := entity.NewForecastHorizon(years)
	run := entity.NewPipelineRun("AAPL", horizon, day(2024, 1, 1))
	run.Series = testSeries()
	for i := 0; i < 10; i++ {
		v := 100 + float64(i)
		run.Forecast = append(run.Forecast, entity.ForecastPoint{
			Date: day(2023, 12, 25).AddDate(0, 0, i), Estimate: v, Lower: v - 2, Upper: v + 2, Trend: v, Yearly: float64(i%3) - 1,
		})
	}
	run.State = entity.StateForecastReady
	return run
}

func TestMarketHandler_GetSymbols(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := new(MockForecastService)
		svc.On("ResolveCatalog", mock.Anything).Return(entity.NewSymbolCatalog([]entity.TickerSymbol{"AAPL", "MSFT"}), nil)

		rec := do(newServer(svc), "/api/v1/symbols")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp dto.CatalogResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Choose an option", resp.Placeholder)
		assert.Equal(t, []string{"Choose an option", "AAPL", "MSFT"}, resp.Symbols)
		assert.Equal(t, 2, resp.Count)
	})

	t.Run("source down", func(t *testing.T) {
		svc := new(MockForecastService)
		svc.On("ResolveCatalog", mock.Anything).Return(nil,
			entity.NewPipelineError(entity.ErrSourceUnavailable, entity.StageCatalog, errors.New("dial tcp: timeout")))

		rec := do(newServer(svc), "/api/v1/symbols")
		require.Equal(t, http.StatusBadGateway, rec.Code)

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "SourceUnavailable", resp.Kind)
		assert.Equal(t, string(entity.StageCatalog), resp.Stage)
	})
}

func TestMarketHandler_GetSeries(t *testing.T) {
	catalog := entity.NewSymbolCatalog([]entity.TickerSymbol{"AAPL"})

	tests := []struct {
		name       string
		target     string
		setup      func(svc *MockForecastService)
		wantStatus int
		wantKind   string
		wantCount  int
	}{
		{
			name:   "default range with tail",
			target: "/api/v1/series/aapl?tail=2",
			setup: func(svc *MockForecastService) {
				svc.On("LoadSeries", mock.Anything, entity.TickerSymbol("AAPL"), day(2012, 1, 1), day(2024, 1, 1)).Return(testSeries(), nil)
			},
			wantStatus: http.StatusOK,
			wantCount:  2,
		},
		{
			name:   "explicit range",
			target: "/api/v1/series/AAPL?start=2023-12-01&end=2023-12-31",
			setup: func(svc *MockForecastService) {
				svc.On("LoadSeries", mock.Anything, entity.TickerSymbol("AAPL"), day(2023, 12, 1), day(2023, 12, 31)).Return(testSeries(), nil)
			},
			wantStatus: http.StatusOK,
			wantCount:  5,
		},
		{
			name:       "malformed date",
			target:     "/api/v1/series/AAPL?start=12/01/2023",
			setup:      func(svc *MockForecastService) {},
			wantStatus: http.StatusBadRequest,
			wantKind:   "InvalidRange",
		},
		{
			name:       "not in catalog",
			target:     "/api/v1/series/ZZZZ",
			setup:      func(svc *MockForecastService) {},
			wantStatus: http.StatusNotFound,
			wantKind:   "SymbolNotFound",
		},
		{
			name:   "start after end",
			target: "/api/v1/series/AAPL?start=2024-01-01&end=2023-01-01",
			setup: func(svc *MockForecastService) {
				svc.On("LoadSeries", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(entity.PriceSeries{},
					entity.NewPipelineError(entity.ErrInvalidRange, entity.StageSeries, errors.New("start after end")))
			},
			wantStatus: http.StatusBadRequest,
			wantKind:   "InvalidRange",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockForecastService)
			svc.On("DefaultRange").Return(day(2012, 1, 1), day(2024, 1, 1))
			svc.On("ResolveCatalog", mock.Anything).Return(catalog, nil)
			tt.setup(svc)

			rec := do(newServer(svc), tt.target)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantKind != "" {
				var resp dto.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantKind, resp.Kind)
				return
			}
			var resp dto.SeriesResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "AAPL", resp.Symbol)
			assert.Equal(t, tt.wantCount, resp.Count)
			assert.Len(t, resp.Bars, tt.wantCount)
			svc.AssertExpectations(t)
		})
	}
}

func TestMarketHandler_GetSeriesChart(t *testing.T) {
	svc := new(MockForecastService)
	svc.On("DefaultRange").Return(day(2012, 1, 1), day(2024, 1, 1))
	svc.On("ResolveCatalog", mock.Anything).Return(entity.NewSymbolCatalog([]entity.TickerSymbol{"AAPL"}), nil)
	svc.On("LoadSeries", mock.Anything, entity.TickerSymbol("AAPL"), mock.Anything, mock.Anything).Return(testSeries(), nil)

	rec := do(newServer(svc), "/api/v1/series/AAPL/chart.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestMarketHandler_GetNews(t *testing.T) {
	svc := new(MockForecastService)
	svc.On("LatestNews", mock.Anything).Return([]entity.Headline{})

	rec := do(newServer(svc), "/api/v1/news")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.NewsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://finance.yahoo.com/rss/", resp.Source)
	assert.NotNil(t, resp.Headlines)
	assert.Empty(t, resp.Headlines)
}

func TestMarketHandler_Health(t *testing.T) {
	rec := do(newServer(new(MockForecastService)), "/api/v1/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestForecastHandler_GetForecast(t *testing.T) {
	svc := new(MockForecastService)
	svc.On("Run", mock.Anything, service.RunRequest{Symbol: "aapl", Years: 2}).Return(readyRun(2), nil)

	rec := do(newServer(svc), "/api/v1/forecast/aapl?years=2&tail=3")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ForecastResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "AAPL", resp.Symbol)
	assert.Equal(t, 2, resp.Years)
	assert.Equal(t, 730, resp.HorizonDays)
	assert.Equal(t, "forecast_ready", resp.State)
	assert.Equal(t, 104.0, resp.LastClose)
	assert.Equal(t, day(2023, 12, 29), resp.LastDate)
	assert.Equal(t, 3, resp.Count)
	require.Len(t, resp.Points, 3)
	assert.Equal(t, day(2024, 1, 3), resp.Points[2].Date)
	svc.AssertExpectations(t)
}

func TestForecastHandler_DefaultYears(t *testing.T) {
	svc := new(MockForecastService)
	svc.On("Run", mock.Anything, service.RunRequest{Symbol: "MSFT", Years: 1}).Return(readyRun(1), nil)

	rec := do(newServer(svc), "/api/v1/forecast/MSFT")
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestForecastHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "invalid horizon", err: entity.NewPipelineError(entity.ErrInvalidHorizon, entity.StageFitting, errors.New("years")), wantStatus: http.StatusBadRequest},
		{name: "invalid symbol", err: entity.NewPipelineError(entity.ErrInvalidSymbol, entity.StageSeries, errors.New("placeholder")), wantStatus: http.StatusBadRequest},
		{name: "unknown symbol", err: entity.NewPipelineError(entity.ErrSymbolNotFound, entity.StageSeries, errors.New("unknown")), wantStatus: http.StatusNotFound},
		{name: "too little data", err: entity.NewPipelineError(entity.ErrInsufficientData, entity.StageFitting, errors.New("1 point")), wantStatus: http.StatusUnprocessableEntity},
		{name: "bad upstream page", err: entity.NewPipelineError(entity.ErrParseFailure, entity.StageCatalog, errors.New("no table")), wantStatus: http.StatusBadGateway},
		{name: "upstream down", err: entity.NewPipelineError(entity.ErrSourceUnavailable, entity.StageSeries, errors.New("503")), wantStatus: http.StatusBadGateway},
		{name: "unexpected", err: context.DeadlineExceeded, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockForecastService)
			run := entity.NewPipelineRun("AAPL", 365, day(2024, 1, 1))
			run.Fail(tt.err, day(2024, 1, 1))
			svc.On("Run", mock.Anything, mock.Anything).Return(run, tt.err)

			rec := do(newServer(svc), "/api/v1/forecast/AAPL?years=1")
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			if tt.wantStatus != http.StatusInternalServerError {
				assert.Equal(t, entity.KindName(tt.err), resp.Kind)
			}
		})
	}
}

func TestForecastHandler_BadYears(t *testing.T) {
	svc := new(MockForecastService)
	rec := do(newServer(svc), "/api/v1/forecast/AAPL?years=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestForecastHandler_Charts(t *testing.T) {
	for _, target := range []string{"/api/v1/forecast/AAPL/chart.png", "/api/v1/forecast/AAPL/components.png"} {
		t.Run(target, func(t *testing.T) {
			svc := new(MockForecastService)
			svc.On("Run", mock.Anything, mock.Anything).Return(readyRun(1), nil)

			rec := do(newServer(svc), target)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
			assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
		})
	}
}

func TestSwaggerDoc(t *testing.T) {
	e := newServer(new(MockForecastService))
	e.GET("/swagger/*", swagger.WrapHandler)

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "/api/v1", doc.BasePath)
	for _, path := range []string{
		"/symbols", "/series/{symbol}", "/series/{symbol}/chart.png", "/news", "/healthz",
		"/forecast/{symbol}", "/forecast/{symbol}/chart.png", "/forecast/{symbol}/components.png",
	} {
		assert.Contains(t, doc.Paths, path)
	}
}
