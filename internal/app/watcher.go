package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/dirble-go/internal/config"
	"github.com/samvad-hq/dirble-go/internal/logger"
	"github.com/samvad-hq/dirble-go/internal/metrics"
	"github.com/samvad-hq/dirble-go/internal/storage"
	"github.com/samvad-hq/dirble-go/internal/watcher"
	"github.com/samvad-hq/dirble-go/pkg/feeds"
	"github.com/samvad-hq/dirble-go/pkg/publishers"
)

// Watcher is the station watcher runtime. It owns the poll loop and the
// resources behind it: publishers, the seen-station store and the metrics
// endpoint.
type Watcher struct {
	cfg          *config.Config
	feedReg      *feeds.Registry
	fanout       *publishers.Fanout
	service      *watcher.Service
	pollInterval time.Duration
	log          logger.Logger
	store        storage.Store
	metrics      *metrics.Metrics
}

// NewWatcher builds a watcher runtime from config files.
func NewWatcher(ctx context.Context, cfg *config.Config, log logger.Logger) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := NewDirbleClient(cfg, log)
	if err != nil {
		return nil, err
	}

	feedReg, err := feeds.LoadRegistry(cfg.FeedsFile)
	if err != nil {
		return nil, fmt.Errorf("load feeds registry: %w", err)
	}
	feedList := feedReg.All()
	feedIDs := make([]string, 0, len(feedList))
	for _, f := range feedList {
		feedIDs = append(feedIDs, f.ID)
	}
	log.InfoObj("feeds registry loaded", "feeds_meta", map[string]any{
		"count": len(feedIDs),
		"ids":   feedIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	storeOpts := storage.Options{
		StationTTL:      cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"station_ttl_seconds":      int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	m := metrics.New()
	opts := []watcher.Option{watcher.WithMetrics(m)}
	if cfg.ScrapeStationPages {
		opts = append(opts, watcher.WithScraper(watcher.NewScraper(nil, log)))
	}
	service := watcher.NewService(feeds.DefaultFetcherRegistry(client), fanout, log, store, opts...)

	return &Watcher{
		cfg:          cfg,
		feedReg:      feedReg,
		fanout:       fanout,
		service:      service,
		pollInterval: cfg.PollInterval,
		log:          log,
		store:        store,
		metrics:      m,
	}, nil
}

// Run polls immediately and then on every poll interval until the context
// is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.service == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	defer w.close()

	if w.cfg.MetricsAddr != "" {
		go w.serveMetrics(ctx)
	}

	list := w.feedReg.All()
	w.log.InfoObj("watcher loop starting", "watcher_state", map[string]any{
		"feeds_count":      len(list),
		"publishers_count": w.fanout.Size(),
		"poll_interval":    w.pollInterval.String(),
	})

	if err := w.runOnce(ctx, list); err != nil {
		w.log.ErrorObj("initial poll failed", "error", err.Error())
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.InfoObj("watcher loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if err := w.runOnce(ctx, list); err != nil {
				w.log.ErrorObj("scheduled poll failed", "error", err.Error())
			}
		}
	}
}

// Once performs a single poll pass and releases all resources.
func (w *Watcher) Once(ctx context.Context) error {
	if w == nil || w.service == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	defer w.close()
	return w.runOnce(ctx, w.feedReg.All())
}

func (w *Watcher) runOnce(ctx context.Context, list []feeds.Feed) error {
	start := time.Now()
	w.log.InfoObj("poll started", "poll_meta", map[string]any{
		"feeds_count": len(list),
		"started_at":  start.UTC(),
	})
	if err := w.service.Run(ctx, list); err != nil {
		return err
	}
	w.log.InfoObj("poll completed", "poll_meta", map[string]any{
		"feeds_count": len(list),
		"elapsed_ms":  time.Since(start).Milliseconds(),
	})
	return nil
}

func (w *Watcher) serveMetrics(ctx context.Context) {
	w.log.InfoObj("metrics endpoint listening", "metrics_addr", w.cfg.MetricsAddr)
	if err := w.metrics.Serve(ctx, w.cfg.MetricsAddr); err != nil {
		w.log.ErrorObj("metrics endpoint failed", "error", err.Error())
	}
}

// close releases publishers and the storage backend, logging any errors.
func (w *Watcher) close() {
	err := errors.Join(w.fanout.Close(), w.store.Close())
	if err != nil {
		w.log.ErrorObj("watcher shutdown failed", "error", err.Error())
	}
}
