package watcher

import (
	"context"

	"github.com/samvad-hq/dirble-go/internal/domain"
	"github.com/samvad-hq/dirble-go/pkg/dirble"
	"github.com/samvad-hq/dirble-go/pkg/feeds"
	"github.com/samvad-hq/dirble-go/pkg/publishers"
)

// PageScraper looks up homepage metadata for stations, keyed by station id.
type PageScraper interface {
	Enrich(ctx context.Context, f feeds.Feed, stations []dirble.Station) map[int64]domain.PageMeta
}

// EventPublisher publishes station events downstream and reports how many
// sinks accepted the event.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Deduper remembers stations that were already published.
type Deduper interface {
	SeenStation(id int64) (bool, error)
	MarkStation(id int64) error
}
