package service

import (
	"context"
	"time"

	"golang-stock-forecaster/internal/entity"

	"github.com/stretchr/testify/mock"
)

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) Resolve(ctx context.Context) (entity.SymbolCatalog, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entity.SymbolCatalog), args.Error(1)
}

type MockPriceHistoryRepository struct {
	mock.Mock
}

func (m *MockPriceHistoryRepository) Load(ctx context.Context, symbol entity.TickerSymbol, start, end time.Time) (entity.PriceSeries, error) {
	args := m.Called(ctx, symbol, start, end)
	return args.Get(0).(entity.PriceSeries), args.Error(1)
}

type MockNewsRepository struct {
	mock.Mock
}

func (m *MockNewsRepository) FetchLatestHeadlines(ctx context.Context, source string) ([]entity.Headline, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Headline), args.Error(1)
}

type MockForecaster struct {
	mock.Mock
}

func (m *MockForecaster) Forecast(ctx context.Context, series entity.PriceSeries, horizon entity.ForecastHorizon) ([]entity.ForecastPoint, error) {
	args := m.Called(ctx, series, horizon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ForecastPoint), args.Error(1)
}
