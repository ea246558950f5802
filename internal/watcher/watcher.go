// Package watcher runs poll passes over configured feeds and publishes
// stations that have not been seen before.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/dirble-go/internal/logger"
	"github.com/samvad-hq/dirble-go/internal/metrics"
	"github.com/samvad-hq/dirble-go/pkg/feeds"
)

// Service coordinates a poll pass across multiple feeds.
type Service struct {
	processor *FeedProcessor
	metrics   metrics.Recorder
	log       logger.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithScraper enables homepage enrichment.
func WithScraper(s PageScraper) Option {
	return func(svc *Service) { svc.processor.scraper = s }
}

// WithMetrics reports pass and feed outcomes to r.
func WithMetrics(r metrics.Recorder) Option {
	return func(svc *Service) {
		if r != nil {
			svc.metrics = r
			svc.processor.metrics = r
		}
	}
}

// NewService wires a watcher with the feed fetcher registry, the publisher
// fanout and the seen-station store.
func NewService(reg feeds.FetcherRegistry, pub EventPublisher, log logger.Logger, store Deduper, opts ...Option) *Service {
	if log == nil {
		log = &logger.NopLogger{}
	}
	svc := &Service{
		processor: NewFeedProcessor(reg, nil, pub, log, store),
		metrics:   metrics.Nop{},
		log:       log,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Run executes a poll pass for all given feeds. Feed failures are logged and
// joined; a cancelled context ends the pass early without an error.
func (s *Service) Run(ctx context.Context, list []feeds.Feed) error {
	if s == nil || s.processor == nil || s.processor.registry == nil {
		return fmt.Errorf("watcher service is not initialized")
	}
	if len(list) == 0 {
		return fmt.Errorf("no feeds configured for polling")
	}

	start := time.Now()
	err := errors.Join(s.runAll(ctx, list)...)
	s.metrics.PollCompleted(time.Since(start), err)
	return err
}

func (s *Service) runAll(ctx context.Context, list []feeds.Feed) []error {
	errs := make([]error, 0, len(list))

	for i, f := range list {
		if ctx.Err() != nil {
			s.log.InfoObj("poll pass cancelled", "poll_state", map[string]any{
				"feeds_done":  i,
				"feeds_total": len(list),
			})
			return errs
		}

		if err := s.processor.Process(ctx, f); err != nil {
			if ctx.Err() != nil {
				return errs
			}
			errs = append(errs, err)
			s.metrics.FeedFailed(f.ID)
			s.log.ErrorObj("feed poll failed", "feed_error", map[string]any{
				"feed_id": f.ID,
				"error":   err.Error(),
			})
		}
	}

	return errs
}
