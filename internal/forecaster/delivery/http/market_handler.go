package http

import (
	"fmt"
	"net/http"
	"time"

	"golang-stock-forecaster/internal/entity"
	"golang-stock-forecaster/internal/forecaster/dto"
	"golang-stock-forecaster/internal/forecaster/render"
	"golang-stock-forecaster/internal/forecaster/service"
	"golang-stock-forecaster/pkg/logger"
	"golang-stock-forecaster/pkg/utils"

	"github.com/labstack/echo/v4"
)

// MarketHandler serves the symbol catalog, price series and news endpoints.
type MarketHandler struct {
	svc    service.ForecastService
	source string
	logger *logger.Logger
}

// NewMarketHandler creates a new MarketHandler. source is reported as the news feed.
func NewMarketHandler(svc service.ForecastService, source string, logger *logger.Logger) *MarketHandler {
	return &MarketHandler{svc: svc, source: source, logger: logger}
}

// RegisterRoutes registers the market routes to the Echo group.
func (h *MarketHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/symbols", h.GetSymbols)
	g.GET("/series/:symbol", h.GetSeries)
	g.GET("/series/:symbol/chart.png", h.GetSeriesChart)
	g.GET("/news", h.GetNews)
	g.GET("/healthz", h.Health)
}

// Health godoc
// @Summary Liveness probe
// @Tags market
// @Produce  json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *MarketHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GetSymbols godoc
// @Summary List symbols
// @Description List the symbol catalog, placeholder first
// @Tags market
// @Produce  json
// @Success 200 {object} dto.CatalogResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /symbols [get]
func (h *MarketHandler) GetSymbols(c echo.Context) error {
	catalog, err := h.svc.ResolveCatalog(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to resolve symbol catalog", logger.ErrorField(err))
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, dto.CatalogResponse{
		Placeholder: string(entity.UnselectedSymbol),
		Symbols:     catalog.Strings(),
		Count:       len(catalog.Symbols()),
	})
}

// GetSeries godoc
// @Summary Get price history
// @Description Daily bars of a symbol between start and end (inclusive)
// @Tags market
// @Produce  json
// @Param   symbol path  string true  "Ticker symbol"
// @Param   start  query string false "First date, YYYY-MM-DD"
// @Param   end    query string false "Last date, YYYY-MM-DD"
// @Param   tail   query int    false "Only the latest N bars"
// @Success 200 {object} dto.SeriesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /series/{symbol} [get]
func (h *MarketHandler) GetSeries(c echo.Context) error {
	var q dto.SeriesQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return badRequest(c, "Invalid query parameters")
	}

	series, err := h.loadSeries(c, q)
	if err != nil {
		return errorJSON(c, err)
	}

	bars := series.Tail(q.Tail)
	return c.JSON(http.StatusOK, dto.SeriesResponse{
		Symbol: series.Symbol.String(),
		Start:  utils.FormatDate(series.Start),
		End:    utils.FormatDate(series.End),
		Count:  len(bars),
		Bars:   bars,
	})
}

// GetSeriesChart godoc
// @Summary Price history chart
// @Description PNG of the open and close prices
// @Tags market
// @Produce  png
// @Param   symbol path  string true  "Ticker symbol"
// @Param   start  query string false "First date, YYYY-MM-DD"
// @Param   end    query string false "Last date, YYYY-MM-DD"
// @Success 200 {file} binary
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /series/{symbol}/chart.png [get]
func (h *MarketHandler) GetSeriesChart(c echo.Context) error {
	var q dto.SeriesQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return badRequest(c, "Invalid query parameters")
	}

	series, err := h.loadSeries(c, q)
	if err != nil {
		return errorJSON(c, err)
	}

	png, err := render.RawSeriesChart(series)
	if err != nil {
		h.logger.Error("Failed to render series chart", logger.ErrorField(err), logger.StringField("symbol", series.Symbol.String()))
		return c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// GetNews godoc
// @Summary Latest headlines
// @Description Latest market headlines. Always succeeds, possibly with no items.
// @Tags market
// @Produce  json
// @Success 200 {object} dto.NewsResponse
// @Router /news [get]
func (h *MarketHandler) GetNews(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.NewsResponse{
		Source:    h.source,
		Headlines: h.svc.LatestNews(c.Request().Context()),
	})
}

func (h *MarketHandler) loadSeries(c echo.Context, q dto.SeriesQuery) (entity.PriceSeries, error) {
	ctx := c.Request().Context()
	symbol, err := service.NormalizeSymbol(c.Param("symbol"))
	if err != nil {
		return entity.PriceSeries{}, err
	}

	start, end := h.svc.DefaultRange()
	if start, err = parseDateParam(q.Start, start); err != nil {
		return entity.PriceSeries{}, err
	}
	if end, err = parseDateParam(q.End, end); err != nil {
		return entity.PriceSeries{}, err
	}

	catalog, err := h.svc.ResolveCatalog(ctx)
	if err != nil {
		return entity.PriceSeries{}, err
	}
	if !catalog.Contains(symbol) {
		return entity.PriceSeries{}, entity.NewPipelineError(entity.ErrSymbolNotFound, entity.StageSeries,
			fmt.Errorf("%s is not in the symbol catalog", symbol))
	}
	return h.svc.LoadSeries(ctx, symbol, start, end)
}

func parseDateParam(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	t, err := utils.ParseDate(value)
	if err != nil {
		return time.Time{}, entity.NewPipelineError(entity.ErrInvalidRange, entity.StageSeries,
			fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value))
	}
	return t, nil
}
