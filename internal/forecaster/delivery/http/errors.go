package http

import (
	"errors"
	"net/http"

	"golang-stock-forecaster/internal/entity"
	"golang-stock-forecaster/internal/forecaster/dto"

	"github.com/labstack/echo/v4"
)

// statusFor maps a pipeline error kind to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidRange),
		errors.Is(err, entity.ErrInvalidSymbol),
		errors.Is(err, entity.ErrInvalidHorizon):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrSymbolNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entity.ErrParseFailure),
		errors.Is(err, entity.ErrSourceUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorJSON(c echo.Context, err error) error {
	resp := dto.ErrorResponse{Error: err.Error()}
	if kind := entity.KindOf(err); kind != nil {
		resp.Kind = entity.KindName(err)
		resp.Stage = string(entity.StageOf(err))
	}
	return c.JSON(statusFor(err), resp)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msg})
}
