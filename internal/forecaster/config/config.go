package config

import (
	"time"

	"golang-stock-forecaster/pkg/common"
	"golang-stock-forecaster/pkg/config"
)

// Catalog holds the symbol reference page configuration.
type Catalog struct {
	URL          string        `mapstructure:"url"`
	SymbolColumn string        `mapstructure:"symbol_column"`
	Timeout      time.Duration `mapstructure:"timeout"`
	// RefreshCron re-resolves the catalog on a cron schedule while serving. Empty disables it.
	RefreshCron string `mapstructure:"refresh_cron"`
}

// YahooFinance holds the configuration for the Yahoo Finance chart API.
type YahooFinance struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

// Holiday is a named set of dates given their own additive effect.
type Holiday struct {
	Name        string   `mapstructure:"name"`
	Dates       []string `mapstructure:"dates"`
	LowerWindow int      `mapstructure:"lower_window"`
	UpperWindow int      `mapstructure:"upper_window"`
}

// Forecast holds the model settings.
type Forecast struct {
	StartDate             string    `mapstructure:"start_date"`
	DefaultYears          int       `mapstructure:"default_years"`
	UncertaintySamples    int       `mapstructure:"uncertainty_samples"`
	IntervalWidth         float64   `mapstructure:"interval_width"`
	NChangepoints         int       `mapstructure:"n_changepoints"`
	ChangepointRange      float64   `mapstructure:"changepoint_range"`
	ChangepointPriorScale float64   `mapstructure:"changepoint_prior_scale"`
	SeasonalityPriorScale float64   `mapstructure:"seasonality_prior_scale"`
	HolidaysPriorScale    float64   `mapstructure:"holidays_prior_scale"`
	MaxIterations         int       `mapstructure:"max_iterations"`
	Seed                  uint64    `mapstructure:"seed"`
	Holidays              []Holiday `mapstructure:"holidays"`
}

// News holds the sidebar feed configuration.
type News struct {
	FeedURL             string        `mapstructure:"feed_url"`
	MaxItems            int           `mapstructure:"max_items"`
	PlaceholderImage    string        `mapstructure:"placeholder_image"`
	FetchArticleDetails bool          `mapstructure:"fetch_article_details"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// Cache selects where catalog and series are memoized.
type Cache struct {
	Backend string `mapstructure:"backend"` // "memory" or "redis"
	// TTL of zero keeps entries for the life of the process (or redis key).
	TTL time.Duration `mapstructure:"ttl"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the forecast service.
type Config struct {
	App          config.App    `mapstructure:"app"`
	Logger       config.Logger `mapstructure:"logger"`
	API          config.API    `mapstructure:"api"`
	Redis        config.Redis  `mapstructure:"redis"`
	Catalog      Catalog       `mapstructure:"catalog"`
	YahooFinance YahooFinance  `mapstructure:"yahoo_finance"`
	Forecast     Forecast      `mapstructure:"forecast"`
	News         News          `mapstructure:"news"`
	Cache        Cache         `mapstructure:"cache"`
	Telegram     Telegram      `mapstructure:"telegram"`
}

// Default returns a configuration that works without any config file.
func Default() Config {
	return Config{
		App:    config.App{Name: "stock-forecaster", Env: "development", Version: "dev"},
		Logger: config.Logger{Level: "info", Encoding: "console"},
		API:    config.API{Host: "0.0.0.0", Port: 8080},
		Redis:  config.Redis{Host: "localhost", Port: 6379, PoolSize: 10},
		Catalog: Catalog{
			URL:          common.DefaultCatalogURL,
			SymbolColumn: common.DefaultSymbolColumn,
			Timeout:      15 * time.Second,
		},
		YahooFinance: YahooFinance{
			BaseURL:             common.DefaultYahooBaseURL,
			Timeout:             30 * time.Second,
			MaxRequestPerMinute: 60,
		},
		Forecast: Forecast{
			StartDate:             common.DefaultStartDate,
			DefaultYears:          1,
			UncertaintySamples:    1000,
			IntervalWidth:         0.8,
			NChangepoints:         25,
			ChangepointRange:      0.8,
			ChangepointPriorScale: 0.05,
			SeasonalityPriorScale: 10,
			HolidaysPriorScale:    10,
			MaxIterations:         10000,
			Seed:                  42,
		},
		News: News{
			FeedURL:          common.DefaultNewsFeedURL,
			MaxItems:         5,
			PlaceholderImage: common.PlaceholderImageURL,
			Timeout:          10 * time.Second,
		},
		Cache: Cache{Backend: "memory"},
	}
}

// Load loads the forecast service configuration from the given path on top of Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
