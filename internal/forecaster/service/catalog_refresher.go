package service

import (
	"context"
	"fmt"
	"time"

	"golang-stock-forecaster/pkg/logger"
	"golang-stock-forecaster/pkg/utils"

	"github.com/robfig/cron/v3"
)

// CatalogRefresher re-resolves the symbol catalog on a cron schedule.
type CatalogRefresher struct {
	svc     ForecastService
	cron    *cron.Cron
	spec    string
	timeout time.Duration
	logger  *logger.Logger
}

// NewCatalogRefresher validates the schedule (standard five-field cron or a descriptor such as @daily).
func NewCatalogRefresher(svc ForecastService, spec string, timeout time.Duration, log *logger.Logger) (*CatalogRefresher, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(spec); err != nil {
		return nil, fmt.Errorf("invalid catalog refresh schedule %q: %w", spec, err)
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &CatalogRefresher{
		svc:     svc,
		cron:    cron.New(cron.WithParser(parser)),
		spec:    spec,
		timeout: timeout,
		logger:  log,
	}, nil
}

// Start schedules the refresh and stops the scheduler when ctx is done.
func (r *CatalogRefresher) Start(ctx context.Context) error {
	if _, err := r.cron.AddFunc(r.spec, func() { r.refresh(ctx) }); err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Info("Catalog refresher started", logger.StringField("schedule", r.spec))

	utils.GoSafe(func() {
		<-ctx.Done()
		r.Stop()
	})
	return nil
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (r *CatalogRefresher) Stop() {
	<-r.cron.Stop().Done()
}

func (r *CatalogRefresher) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	started := time.Now()
	if err := r.svc.RefreshCatalog(ctx); err != nil {
		// RefreshCatalog already logged the failure.
		return
	}
	r.logger.Debug("Catalog refresh finished", logger.DurationField("duration", time.Since(started)))
}
