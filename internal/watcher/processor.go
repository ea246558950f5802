package watcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/dirble-go/internal/domain"
	"github.com/samvad-hq/dirble-go/internal/logger"
	"github.com/samvad-hq/dirble-go/internal/metrics"
	"github.com/samvad-hq/dirble-go/pkg/dirble"
	"github.com/samvad-hq/dirble-go/pkg/feeds"
	"github.com/samvad-hq/dirble-go/pkg/publishers"
)

// FeedProcessor handles one feed: fetch, dedupe, enrich, publish, mark.
type FeedProcessor struct {
	registry feeds.FetcherRegistry
	scraper  PageScraper
	pub      EventPublisher
	store    Deduper
	metrics  metrics.Recorder
	log      logger.Logger
}

// NewFeedProcessor builds a processor. scraper, pub and store may be nil.
func NewFeedProcessor(reg feeds.FetcherRegistry, scraper PageScraper, pub EventPublisher, log logger.Logger, store Deduper) *FeedProcessor {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &FeedProcessor{
		registry: reg,
		scraper:  scraper,
		pub:      pub,
		store:    store,
		metrics:  metrics.Nop{},
		log:      log,
	}
}

// Process polls a single feed and publishes its unseen stations.
func (p *FeedProcessor) Process(ctx context.Context, f feeds.Feed) error {
	fetcher, err := p.registry.FetcherFor(f)
	if err != nil {
		return fmt.Errorf("resolve fetcher for feed %s: %w", f.ID, err)
	}

	stations, err := fetcher.Fetch(ctx, f)
	if err != nil {
		return fmt.Errorf("fetch feed %s: %w", f.ID, err)
	}
	p.metrics.StationsFetched(f.ID, len(stations))

	fresh := p.filterNewStations(f, stations)

	var pages map[int64]domain.PageMeta
	if p.scraper != nil && len(fresh) > 0 {
		pages = p.scraper.Enrich(ctx, f, fresh)
	}

	published, err := p.publish(ctx, f, fresh, pages)

	p.log.InfoObj("feed poll completed", "feed_result", map[string]any{
		"feed_id":            f.ID,
		"stations_fetched":   len(stations),
		"stations_new":       len(fresh),
		"stations_published": published,
	})
	return err
}

// filterNewStations drops stations the store has seen and repeats within the
// batch. A store lookup failure keeps the station so it is not lost.
func (p *FeedProcessor) filterNewStations(f feeds.Feed, stations []dirble.Station) []dirble.Station {
	out := make([]dirble.Station, 0, len(stations))
	batch := make(map[int64]struct{}, len(stations))

	for _, st := range stations {
		if _, dup := batch[st.ID]; dup {
			continue
		}
		batch[st.ID] = struct{}{}

		if p.store != nil {
			seen, err := p.store.SeenStation(st.ID)
			if err != nil {
				p.log.WarnObj("station dedupe lookup failed", "dedupe_error", map[string]any{
					"feed_id":    f.ID,
					"station_id": st.ID,
					"error":      err.Error(),
				})
			} else if seen {
				continue
			}
		}
		out = append(out, st)
	}
	return out
}

func (p *FeedProcessor) publish(ctx context.Context, f feeds.Feed, stations []dirble.Station, pages map[int64]domain.PageMeta) (int, error) {
	if p.pub == nil {
		return 0, nil
	}

	var errs []error
	published := 0
	for _, st := range stations {
		if ctx.Err() != nil {
			break
		}

		evt := publishers.NewEvent(f.ID, f.Name, st, pages[st.ID])
		delivered, err := p.pub.Publish(ctx, evt)
		if delivered == 0 {
			p.metrics.PublishFailed(f.ID)
			if err == nil {
				err = errors.New("no publisher accepted the event")
			}
			errs = append(errs, fmt.Errorf("publish station %d: %w", st.ID, err))
			continue
		}
		if err != nil {
			p.log.WarnObj("station partially published", "publish_error", map[string]any{
				"feed_id":    f.ID,
				"station_id": st.ID,
				"delivered":  delivered,
				"error":      err.Error(),
			})
		}

		published++
		p.metrics.StationPublished(f.ID)
		if p.store != nil {
			if err := p.store.MarkStation(st.ID); err != nil {
				errs = append(errs, fmt.Errorf("mark station %d: %w", st.ID, err))
			}
		}
	}
	return published, errors.Join(errs...)
}
