package feeds

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/dirble-go/pkg/dirble"
)

// fetcherRegistry implements FetcherRegistry keyed by feed type.
type fetcherRegistry struct {
	mu     sync.RWMutex
	byType map[string]Fetcher
}

// NewFetcherRegistry builds a registry from fetchers keyed by their Type.
func NewFetcherRegistry(fetchers ...Fetcher) FetcherRegistry {
	reg := &fetcherRegistry{byType: make(map[string]Fetcher)}
	for _, f := range fetchers {
		reg.register(f)
	}
	return reg
}

func (r *fetcherRegistry) register(f Fetcher) {
	if f == nil {
		return
	}
	key := strings.ToLower(strings.TrimSpace(f.Type()))
	if key == "" {
		return
	}
	r.mu.Lock()
	r.byType[key] = f
	r.mu.Unlock()
}

// FetcherFor selects the fetcher for the feed's type.
func (r *fetcherRegistry) FetcherFor(f Feed) (Fetcher, error) {
	if r == nil {
		return nil, fmt.Errorf("fetcher registry is nil")
	}
	if strings.TrimSpace(f.ID) == "" {
		return nil, fmt.Errorf("feed id is empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if fetcher, ok := r.byType[strings.ToLower(strings.TrimSpace(f.Type))]; ok {
		return fetcher, nil
	}
	return nil, fmt.Errorf("no fetcher registered for feed %q (type %q)", f.ID, f.Type)
}

// DefaultFetcherRegistry wires a fetcher for every supported feed type.
func DefaultFetcherRegistry(src StationSource) FetcherRegistry {
	return NewFetcherRegistry(
		newPagedFetcher(src, TypeRecent, func(ctx context.Context, _ Feed, p dirble.Page) ([]dirble.Station, error) {
			return src.RecentStations(ctx, p)
		}),
		newPagedFetcher(src, TypePopular, func(ctx context.Context, _ Feed, p dirble.Page) ([]dirble.Station, error) {
			return src.PopularStations(ctx, p)
		}),
		newPagedFetcher(src, TypeAll, func(ctx context.Context, _ Feed, p dirble.Page) ([]dirble.Station, error) {
			return src.Stations(ctx, p)
		}),
		newPagedFetcher(src, TypeCategory, func(ctx context.Context, f Feed, p dirble.Page) ([]dirble.Station, error) {
			return src.StationsInCategory(ctx, f.CategoryID, p)
		}),
		newPagedFetcher(src, TypeCountry, func(ctx context.Context, f Feed, p dirble.Page) ([]dirble.Station, error) {
			return src.StationsInCountry(ctx, f.CountryCode, p)
		}),
		&searchFetcher{src: src},
	)
}

type listFn func(ctx context.Context, f Feed, p dirble.Page) ([]dirble.Station, error)

// pagedFetcher walks up to Feed.Pages pages, stopping at the first short page.
type pagedFetcher struct {
	typ  string
	src  StationSource
	list listFn
}

func newPagedFetcher(src StationSource, typ string, list listFn) Fetcher {
	return &pagedFetcher{typ: typ, src: src, list: list}
}

func (p *pagedFetcher) Type() string { return p.typ }

func (p *pagedFetcher) Fetch(ctx context.Context, f Feed) ([]dirble.Station, error) {
	if p.src == nil {
		return nil, fmt.Errorf("feed %q: station source is nil", f.ID)
	}
	if !strings.EqualFold(f.Type, p.typ) {
		return nil, fmt.Errorf("%s fetcher received incompatible feed type %q", p.typ, f.Type)
	}

	pages := f.Pages
	if pages <= 0 {
		pages = defaultPages
	}
	perPage := f.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	var out []dirble.Station
	page := dirble.Page{PerPage: perPage}
	for i := 0; i < pages; i++ {
		if i > 0 {
			if err := sleepCtx(ctx, f.RequestDelay()); err != nil {
				return out, err
			}
		}

		stations, err := p.list(ctx, f, page)
		if err != nil {
			return out, fmt.Errorf("feed %q page %d: %w", f.ID, page.Page, err)
		}
		out = append(out, stations...)
		if len(stations) < perPage {
			break
		}
		page = page.Next()
	}
	return out, nil
}

type searchFetcher struct {
	src StationSource
}

func (s *searchFetcher) Type() string { return TypeSearch }

func (s *searchFetcher) Fetch(ctx context.Context, f Feed) ([]dirble.Station, error) {
	if s.src == nil {
		return nil, fmt.Errorf("feed %q: station source is nil", f.ID)
	}
	if !strings.EqualFold(f.Type, TypeSearch) {
		return nil, fmt.Errorf("search fetcher received incompatible feed type %q", f.Type)
	}
	stations, err := s.src.Search(ctx, f.Query)
	if err != nil {
		return nil, fmt.Errorf("feed %q search: %w", f.ID, err)
	}
	return stations, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
