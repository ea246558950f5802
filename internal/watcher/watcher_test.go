package watcher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/dirble-go/internal/domain"
	"github.com/samvad-hq/dirble-go/pkg/dirble"
	"github.com/samvad-hq/dirble-go/pkg/feeds"
	"github.com/samvad-hq/dirble-go/pkg/publishers"
)

// fakeFetcher returns preset stations or an error.
type fakeFetcher struct {
	stations []dirble.Station
	err      error
	calls    int
}

func (f *fakeFetcher) Type() string { return feeds.TypeRecent }
func (f *fakeFetcher) Fetch(_ context.Context, _ feeds.Feed) ([]dirble.Station, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.stations, nil
}

// fakeRegistry maps every feed to a single fetcher.
type fakeRegistry struct {
	fetcher feeds.Fetcher
}

func (f *fakeRegistry) FetcherFor(_ feeds.Feed) (feeds.Fetcher, error) {
	if f.fetcher == nil {
		return nil, errors.New("missing fetcher")
	}
	return f.fetcher, nil
}

// fakeScraper returns a title for every station.
type fakeScraper struct {
	prefix string
}

func (f fakeScraper) Enrich(_ context.Context, _ feeds.Feed, stations []dirble.Station) map[int64]domain.PageMeta {
	out := make(map[int64]domain.PageMeta, len(stations))
	for _, st := range stations {
		out[st.ID] = domain.PageMeta{Title: f.prefix + st.Name}
	}
	return out
}

// fakePublisher records published events and can reject one station.
type fakePublisher struct {
	mu       sync.Mutex
	events   []publishers.Event
	failOnID int64
}

func (f *fakePublisher) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	if evt.Station.ID == f.failOnID {
		return 0, errors.New("boom")
	}
	return 1, nil
}

// fakeDeduper tracks seen ids.
type fakeDeduper struct {
	mu      sync.Mutex
	seen    map[int64]bool
	failID  int64
	failErr error
}

func (f *fakeDeduper) SeenStation(id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == f.failID && f.failErr != nil {
		return false, f.failErr
	}
	return f.seen[id], nil
}

func (f *fakeDeduper) MarkStation(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = make(map[int64]bool)
	}
	f.seen[id] = true
	return nil
}

// fakeRecorder counts metric calls.
type fakeRecorder struct {
	polls, pollErrs, fetched, published, pubFailed, feedFailed int
}

func (r *fakeRecorder) PollCompleted(_ time.Duration, err error) {
	r.polls++
	if err != nil {
		r.pollErrs++
	}
}
func (r *fakeRecorder) StationsFetched(_ string, n int) { r.fetched += n }
func (r *fakeRecorder) StationPublished(string)         { r.published++ }
func (r *fakeRecorder) PublishFailed(string)            { r.pubFailed++ }
func (r *fakeRecorder) FeedFailed(string)               { r.feedFailed++ }

func TestFeedProcessorPublishesFreshStationsOnly(t *testing.T) {
	feed := feeds.Feed{ID: "recent", Name: "Recent", Type: feeds.TypeRecent}
	stations := []dirble.Station{
		{ID: 1, Name: "old"},
		{ID: 2, Name: "new"},
		{ID: 2, Name: "new"},
	}

	deduper := &fakeDeduper{seen: map[int64]bool{1: true}}
	pub := &fakePublisher{}

	processor := NewFeedProcessor(&fakeRegistry{
		fetcher: &fakeFetcher{stations: stations},
	}, fakeScraper{prefix: "site-"}, pub, nil, deduper)

	if err := processor.Process(context.Background(), feed); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(pub.events))
	}
	evt := pub.events[0]
	if evt.Station.ID != 2 || evt.FeedID != "recent" || evt.FeedName != "Recent" {
		t.Fatalf("unexpected event %+v", evt)
	}
	if evt.Homepage == nil || evt.Homepage.Title != "site-new" {
		t.Fatalf("homepage metadata not attached: %+v", evt.Homepage)
	}
	if !deduper.seen[2] {
		t.Fatalf("MarkStation not called for new station")
	}
}

func TestFeedProcessorAggregatesPublishErrors(t *testing.T) {
	pub := &fakePublisher{failOnID: 13}
	deduper := &fakeDeduper{}
	processor := NewFeedProcessor(&fakeRegistry{
		fetcher: &fakeFetcher{stations: []dirble.Station{{ID: 13}, {ID: 14}}},
	}, nil, pub, nil, deduper)

	err := processor.Process(context.Background(), feeds.Feed{ID: "f"})
	if err == nil || !strings.Contains(err.Error(), "station 13") {
		t.Fatalf("expected error mentioning station 13, got %v", err)
	}
	if deduper.seen[13] {
		t.Fatalf("failed station must not be marked as seen")
	}
	if !deduper.seen[14] {
		t.Fatalf("successful station should be marked as seen")
	}
}

func TestFilterNewStationsHandlesDeduperErrors(t *testing.T) {
	deduper := &fakeDeduper{
		seen:    map[int64]bool{20: true},
		failID:  30,
		failErr: errors.New("lookup failed"),
	}
	processor := NewFeedProcessor(&fakeRegistry{}, nil, nil, nil, deduper)

	filtered := processor.filterNewStations(feeds.Feed{ID: "f"}, []dirble.Station{{ID: 10}, {ID: 20}, {ID: 30}})
	if len(filtered) != 2 {
		t.Fatalf("expected 2 stations after filter, got %d", len(filtered))
	}
	if filtered[0].ID != 10 || filtered[1].ID != 30 {
		t.Fatalf("unexpected filter result %#v", filtered)
	}
}

func TestServiceRunJoinsFeedErrors(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewService(&fakeRegistry{fetcher: &fakeFetcher{err: errors.New("api down")}}, &fakePublisher{}, nil, nil, WithMetrics(rec))

	err := svc.Run(context.Background(), []feeds.Feed{{ID: "a"}, {ID: "b"}})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	for _, id := range []string{"fetch feed a", "fetch feed b"} {
		if !strings.Contains(err.Error(), id) {
			t.Fatalf("error %q missing %q", err, id)
		}
	}
	if rec.polls != 1 || rec.pollErrs != 1 || rec.feedFailed != 2 {
		t.Fatalf("unexpected metrics %+v", rec)
	}
}

func TestServiceRunRecordsMetrics(t *testing.T) {
	rec := &fakeRecorder{}
	fetcher := &fakeFetcher{stations: []dirble.Station{{ID: 1}, {ID: 2}}}
	svc := NewService(&fakeRegistry{fetcher: fetcher}, &fakePublisher{}, nil, &fakeDeduper{},
		WithMetrics(rec), WithScraper(fakeScraper{}))

	if err := svc.Run(context.Background(), []feeds.Feed{{ID: "a"}}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.fetched != 2 || rec.published != 2 || rec.polls != 1 || rec.pollErrs != 0 {
		t.Fatalf("unexpected metrics %+v", rec)
	}

	// Second pass sees nothing new.
	if err := svc.Run(context.Background(), []feeds.Feed{{ID: "a"}}); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if rec.published != 2 {
		t.Fatalf("stations republished: %+v", rec)
	}
}

func TestServiceRunCancelsEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &fakeFetcher{}
	svc := NewService(&fakeRegistry{fetcher: fetcher}, nil, nil, nil)
	if err := svc.Run(ctx, []feeds.Feed{{ID: "p"}}); err != nil {
		t.Fatalf("expected no error on cancelled context, got %v", err)
	}
	if fetcher.calls != 0 {
		t.Fatalf("no feed should be fetched after cancellation")
	}
}

func TestServiceRunRejectsEmptyFeeds(t *testing.T) {
	svc := NewService(&fakeRegistry{}, nil, nil, nil)
	if err := svc.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error when feeds list empty")
	}

	var nilSvc *Service
	if err := nilSvc.Run(context.Background(), []feeds.Feed{{ID: "x"}}); err == nil {
		t.Fatalf("expected error for nil service")
	}
}
