package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/gymadmin/pkg/logger"
	"github.com/charlesng35/gymadmin/pkg/metrics"
)

const (
	defaultCacheSpec = "@hourly"
	defaultMenuSpec  = "@every 1m"
)

// CachePurger removes expired cache entries.
type CachePurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// MenuReloader picks up menu revisions written by other instances.
type MenuReloader interface {
	Reload(ctx context.Context) (bool, error)
}

// Cleaner coordinates background maintenance: purging expired cache rows and
// refreshing the permission table from the latest stored menu revision.
type Cleaner struct {
	cache  CachePurger
	menus  MenuReloader
	cron   *cron.Cron
	log    *zap.Logger
	parser cron.Parser

	cacheSchedule string
	menuSchedule  string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithCacheSchedule overrides the cron specification for cache cleanup.
func WithCacheSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cacheSchedule = spec
		}
	}
}

// WithMenuSchedule overrides the cron specification for menu reloads.
func WithMenuSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.menuSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. A nil dependency disables its job; pass a
// nil purger when the cache lives in Redis, which expires keys itself.
func NewCleaner(purger CachePurger, menus MenuReloader, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		cache:         purger,
		menus:         menus,
		cacheSchedule: defaultCacheSpec,
		menuSchedule:  defaultMenuSpec,
		log:           logger.WithModule("maintenance"),
		parser:        cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithParser(cleaner.parser), cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Enabled reports whether at least one job would be scheduled.
func (c *Cleaner) Enabled() bool {
	return c.cache != nil || c.menus != nil
}

// Validate checks the configured schedules without starting anything.
func (c *Cleaner) Validate() error {
	var errs error
	if _, err := c.parser.Parse(c.cacheSchedule); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := c.parser.Parse(c.menuSchedule); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// Start registers cleanup jobs with the cron scheduler and launches it if at least one job is enabled.
func (c *Cleaner) Start() error {
	if !c.Enabled() {
		return nil
	}

	if c.cache != nil {
		if _, err := c.cron.AddFunc(c.cacheSchedule, func() {
			if _, err := c.purgeCache(context.Background()); err != nil {
				c.log.Warn("cache cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.menus != nil {
		if _, err := c.cron.AddFunc(c.menuSchedule, func() {
			if err := c.reloadMenus(context.Background()); err != nil {
				c.log.Warn("menu reload failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured jobs sequentially.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if c.cache != nil {
		if _, err := c.purgeCache(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if c.menus != nil {
		if err := c.reloadMenus(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (c *Cleaner) purgeCache(ctx context.Context) (int64, error) {
	started := time.Now()
	removed, err := c.cache.PurgeExpired(ctx)
	recordRun(jobCachePurge, err)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		c.log.Info("purged expired cache entries",
			zap.Int64("removed", removed),
			zap.Duration("elapsed", time.Since(started)),
		)
	}
	return removed, nil
}

func (c *Cleaner) reloadMenus(ctx context.Context) error {
	loaded, err := c.menus.Reload(ctx)
	recordRun(jobMenuReload, err)
	if err != nil {
		return err
	}
	if loaded {
		c.log.Debug("menu revision reloaded")
	}
	return nil
}

const (
	jobCachePurge = "cache_purge"
	jobMenuReload = "menu_reload"
)

func recordRun(job string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	metrics.MaintenanceRuns.WithLabelValues(job, result).Inc()
}
