package feeds

import (
	"context"

	"github.com/samvad-hq/dirble-go/pkg/dirble"
)

// Fetcher retrieves the current stations of a feed.
type Fetcher interface {
	Type() string
	Fetch(ctx context.Context, f Feed) ([]dirble.Station, error)
}

// FetcherRegistry resolves the fetcher for a feed.
type FetcherRegistry interface {
	FetcherFor(f Feed) (Fetcher, error)
}

// StationSource is the part of *dirble.Client the fetchers use.
type StationSource interface {
	Stations(ctx context.Context, page dirble.Page) ([]dirble.Station, error)
	RecentStations(ctx context.Context, page dirble.Page) ([]dirble.Station, error)
	PopularStations(ctx context.Context, page dirble.Page) ([]dirble.Station, error)
	StationsInCategory(ctx context.Context, id int64, page dirble.Page) ([]dirble.Station, error)
	StationsInCountry(ctx context.Context, countryCode string, page dirble.Page) ([]dirble.Station, error)
	Search(ctx context.Context, query string) ([]dirble.Station, error)
}

var _ StationSource = (*dirble.Client)(nil)
