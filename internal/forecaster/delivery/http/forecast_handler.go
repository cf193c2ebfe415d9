package http

import (
	"net/http"

	"golang-stock-forecaster/internal/entity"
	"golang-stock-forecaster/internal/forecaster/dto"
	"golang-stock-forecaster/internal/forecaster/render"
	"golang-stock-forecaster/internal/forecaster/service"
	"golang-stock-forecaster/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ForecastHandler runs the forecast pipeline over HTTP.
type ForecastHandler struct {
	svc          service.ForecastService
	defaultYears int
	logger       *logger.Logger
}

// NewForecastHandler creates a new ForecastHandler. defaultYears is used when the
// request has no years parameter.
func NewForecastHandler(svc service.ForecastService, defaultYears int, logger *logger.Logger) *ForecastHandler {
	if defaultYears <= 0 {
		defaultYears = entity.MinHorizonYears
	}
	return &ForecastHandler{svc: svc, defaultYears: defaultYears, logger: logger}
}

// RegisterRoutes registers the forecast routes to the Echo group.
func (h *ForecastHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/:symbol", h.GetForecast)
	g.GET("/:symbol/chart.png", h.GetForecastChart)
	g.GET("/:symbol/components.png", h.GetComponentsChart)
}

// GetForecast godoc
// @Summary Forecast a symbol
// @Description Fit the model on the price history and extend it by 1 to 4 years
// @Tags forecast
// @Produce  json
// @Param   symbol path  string true  "Ticker symbol"
// @Param   years  query int    false "Horizon in years (1-4)"
// @Param   tail   query int    false "Only the latest N points"
// @Success 200 {object} dto.ForecastResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /forecast/{symbol} [get]
func (h *ForecastHandler) GetForecast(c echo.Context) error {
	run, q, err := h.run(c)
	if err != nil {
		return errorJSON(c, err)
	}

	points := run.Forecast
	if q.Tail > 0 && q.Tail < len(points) {
		points = points[len(points)-q.Tail:]
	}

	resp := dto.ForecastResponse{
		Symbol:      run.Symbol.String(),
		Years:       run.Horizon.Years(),
		HorizonDays: run.Horizon.Days(),
		State:       string(run.State),
		History:     run.History,
		LastDate:    run.Series.LastDate(),
		Count:       len(points),
		Points:      points,
	}
	if n := run.Series.Len(); n > 0 {
		resp.LastClose = run.Series.Bars[n-1].Close
	}
	return c.JSON(http.StatusOK, resp)
}

// GetForecastChart godoc
// @Summary Forecast chart
// @Description PNG of the closing history, forecast estimate and bounds
// @Tags forecast
// @Produce  png
// @Param   symbol path  string true  "Ticker symbol"
// @Param   years  query int    false "Horizon in years (1-4)"
// @Success 200 {file} binary
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /forecast/{symbol}/chart.png [get]
func (h *ForecastHandler) GetForecastChart(c echo.Context) error {
	run, _, err := h.run(c)
	if err != nil {
		return errorJSON(c, err)
	}
	data, err := render.ForecastChart(run.Series, run.Forecast)
	return h.png(c, run, data, err)
}

// GetComponentsChart godoc
// @Summary Forecast components chart
// @Description PNG of the trend and seasonal components
// @Tags forecast
// @Produce  png
// @Param   symbol path  string true  "Ticker symbol"
// @Param   years  query int    false "Horizon in years (1-4)"
// @Success 200 {file} binary
// @Failure 400 {object} dto.ErrorResponse
// @Router /forecast/{symbol}/components.png [get]
func (h *ForecastHandler) GetComponentsChart(c echo.Context) error {
	run, _, err := h.run(c)
	if err != nil {
		return errorJSON(c, err)
	}
	data, err := render.ComponentsChart(run.Symbol, run.Forecast)
	return h.png(c, run, data, err)
}

func (h *ForecastHandler) run(c echo.Context) (*entity.PipelineRun, dto.ForecastQuery, error) {
	q := dto.ForecastQuery{Years: h.defaultYears}
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return nil, q, entity.NewPipelineError(entity.ErrInvalidHorizon, entity.StageFitting, err)
	}

	run, err := h.svc.Run(c.Request().Context(), service.RunRequest{
		Symbol: c.Param("symbol"),
		Years:  q.Years,
	})
	return run, q, err
}

func (h *ForecastHandler) png(c echo.Context, run *entity.PipelineRun, data []byte, err error) error {
	if err != nil {
		h.logger.Error("Failed to render forecast chart", logger.ErrorField(err), logger.StringField("symbol", run.Symbol.String()))
		return c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
	}
	return c.Blob(http.StatusOK, "image/png", data)
}
