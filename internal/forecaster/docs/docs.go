// Package docs holds the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/forecast-service/main.go -o internal/forecaster/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/forecast/{symbol}": {
            "get": {
                "description": "Fit the model on the price history and extend it by 1 to 4 years",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "forecast"
                ],
                "summary": "Forecast a symbol",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Ticker symbol",
                        "name": "symbol",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "Horizon in years (1-4)",
                        "name": "years",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Only the latest N points",
                        "name": "tail",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.ForecastResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "502": {
                        "description": "Bad Gateway",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/forecast/{symbol}/chart.png": {
            "get": {
                "description": "PNG of the closing history, forecast estimate and bounds",
                "produces": [
                    "image/png"
                ],
                "tags": [
                    "forecast"
                ],
                "summary": "Forecast chart",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Ticker symbol",
                        "name": "symbol",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "Horizon in years (1-4)",
                        "name": "years",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/forecast/{symbol}/components.png": {
            "get": {
                "description": "PNG of the trend and seasonal components",
                "produces": [
                    "image/png"
                ],
                "tags": [
                    "forecast"
                ],
                "summary": "Forecast components chart",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Ticker symbol",
                        "name": "symbol",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "Horizon in years (1-4)",
                        "name": "years",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "market"
                ],
                "summary": "Liveness probe",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/news": {
            "get": {
                "description": "Latest market headlines. Always succeeds, possibly with no items.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "market"
                ],
                "summary": "Latest headlines",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.NewsResponse"
                        }
                    }
                }
            }
        },
        "/series/{symbol}": {
            "get": {
                "description": "Daily bars of a symbol between start and end (inclusive)",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "market"
                ],
                "summary": "Get price history",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Ticker symbol",
                        "name": "symbol",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "First date, YYYY-MM-DD",
                        "name": "start",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Last date, YYYY-MM-DD",
                        "name": "end",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Only the latest N bars",
                        "name": "tail",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.SeriesResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "502": {
                        "description": "Bad Gateway",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/series/{symbol}/chart.png": {
            "get": {
                "description": "PNG of the open and close prices",
                "produces": [
                    "image/png"
                ],
                "tags": [
                    "market"
                ],
                "summary": "Price history chart",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Ticker symbol",
                        "name": "symbol",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "First date, YYYY-MM-DD",
                        "name": "start",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Last date, YYYY-MM-DD",
                        "name": "end",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/symbols": {
            "get": {
                "description": "List the symbol catalog, placeholder first",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "market"
                ],
                "summary": "List symbols",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.CatalogResponse"
                        }
                    },
                    "502": {
                        "description": "Bad Gateway",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "dto.CatalogResponse": {
            "type": "object",
            "properties": {
                "count": {
                    "type": "integer"
                },
                "placeholder": {
                    "type": "string"
                },
                "symbols": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                },
                "kind": {
                    "type": "string"
                },
                "stage": {
                    "type": "string"
                }
            }
        },
        "dto.ForecastResponse": {
            "type": "object",
            "properties": {
                "count": {
                    "type": "integer"
                },
                "history": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/entity.StateChange"
                    }
                },
                "horizon_days": {
                    "type": "integer"
                },
                "last_close": {
                    "type": "number"
                },
                "last_date": {
                    "type": "string"
                },
                "points": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/entity.ForecastPoint"
                    }
                },
                "state": {
                    "type": "string"
                },
                "symbol": {
                    "type": "string"
                },
                "years": {
                    "type": "integer"
                }
            }
        },
        "dto.NewsResponse": {
            "type": "object",
            "properties": {
                "headlines": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/entity.Headline"
                    }
                },
                "source": {
                    "type": "string"
                }
            }
        },
        "dto.SeriesResponse": {
            "type": "object",
            "properties": {
                "bars": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/entity.PriceBar"
                    }
                },
                "count": {
                    "type": "integer"
                },
                "end": {
                    "type": "string"
                },
                "start": {
                    "type": "string"
                },
                "symbol": {
                    "type": "string"
                }
            }
        },
        "entity.ForecastPoint": {
            "type": "object",
            "properties": {
                "date": {
                    "type": "string"
                },
                "estimate": {
                    "type": "number"
                },
                "future": {
                    "description": "Future is true for dates after the last training date.",
                    "type": "boolean"
                },
                "holidays": {
                    "type": "number"
                },
                "lower": {
                    "type": "number"
                },
                "trend": {
                    "type": "number"
                },
                "upper": {
                    "type": "number"
                },
                "weekly": {
                    "type": "number"
                },
                "yearly": {
                    "type": "number"
                }
            }
        },
        "entity.Headline": {
            "type": "object",
            "properties": {
                "description": {
                    "type": "string"
                },
                "image_url": {
                    "type": "string"
                },
                "link": {
                    "type": "string"
                },
                "published_at": {
                    "type": "string"
                },
                "source": {
                    "type": "string"
                },
                "title": {
                    "type": "string"
                }
            }
        },
        "entity.PipelineState": {
            "type": "string",
            "enum": [
                "idle",
                "catalog_loading",
                "catalog_ready",
                "series_loading",
                "series_ready",
                "fitting",
                "forecast_ready",
                "failed"
            ]
        },
        "entity.PriceBar": {
            "type": "object",
            "properties": {
                "adj_close": {
                    "type": "number"
                },
                "close": {
                    "type": "number"
                },
                "date": {
                    "type": "string"
                },
                "high": {
                    "type": "number"
                },
                "low": {
                    "type": "number"
                },
                "open": {
                    "type": "number"
                },
                "volume": {
                    "type": "integer"
                }
            }
        },
        "entity.StateChange": {
            "type": "object",
            "properties": {
                "at": {
                    "type": "string"
                },
                "state": {
                    "$ref": "#/definitions/entity.PipelineState"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Stock Forecast API",
	Description:      "Symbol catalog, price history and trend + seasonality forecasts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
