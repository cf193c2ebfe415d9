package main

import (
	"fmt"
	"log"

	"golang-stock-forecaster/internal/forecaster/config"
	"golang-stock-forecaster/internal/forecaster/forecast"
	"golang-stock-forecaster/internal/forecaster/repository"
	"golang-stock-forecaster/internal/forecaster/service"
	"golang-stock-forecaster/pkg/logger"
	"golang-stock-forecaster/pkg/redis"
	"golang-stock-forecaster/pkg/telegram"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg      *config.Config
	logger   *logger.Logger
	svc      service.ForecastService
	notifier telegram.Notifier
	closers  []func() error
}

func newApp(path string) *app {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	a := &app{cfg: cfg, logger: appLogger}

	cache, err := a.newCacheStore()
	if err != nil {
		appLogger.Fatal("Failed to initialize cache", logger.ErrorField(err), logger.StringField("backend", cfg.Cache.Backend))
	}

	opts, err := forecast.OptionsFromConfig(cfg.Forecast)
	if err != nil {
		appLogger.Fatal("Invalid forecast configuration", logger.ErrorField(err))
	}
	engine := forecast.New(opts, appLogger)

	a.svc = service.NewForecastService(
		repository.NewCatalogRepository(cfg, appLogger),
		repository.NewYahooFinanceRepository(cfg, appLogger),
		repository.NewNewsRepository(cfg, appLogger),
		cache,
		engine,
		cfg,
		appLogger,
	)

	if cfg.Telegram.Enabled {
		notifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Error("Failed to initialize Telegram notifier, notifications disabled", logger.ErrorField(err))
		} else {
			a.notifier = notifier
		}
	}
	return a
}

func (a *app) newCacheStore() (repository.CacheStore, error) {
	switch a.cfg.Cache.Backend {
	case "", "memory":
		return repository.NewMemoryCacheStore(a.cfg.Cache.TTL), nil
	case "redis":
		redisClient, err := redis.NewClient(redis.Config{
			Host:     a.cfg.Redis.Host,
			Port:     a.cfg.Redis.Port,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
			PoolSize: a.cfg.Redis.PoolSize,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, redisClient.Close)
		return repository.NewRedisCacheStore(redisClient.Client, a.logger, a.cfg.App.Name, a.cfg.Cache.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", a.cfg.Cache.Backend)
	}
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("Failed to close resource", logger.ErrorField(err))
		}
	}
	_ = a.logger.Sync()
}
