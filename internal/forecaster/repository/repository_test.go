package repository

import (
	"time"

	"golang-stock-forecaster/internal/forecaster/config"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Catalog.Timeout = 2 * time.Second
	cfg.YahooFinance.Timeout = 2 * time.Second
	cfg.YahooFinance.MaxRequestPerMinute = 0
	cfg.News.Timeout = 2 * time.Second
	return &cfg
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
