package publishers

import (
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/dirble-go/internal/domain"
	"github.com/samvad-hq/dirble-go/pkg/dirble"
)

// Event represents the payload published downstream for a newly seen station.
type Event struct {
	ID          string           `json:"id"`
	FeedID      string           `json:"feed_id"`
	FeedName    string           `json:"feed_name"`
	Station     dirble.Station   `json:"station"`
	Homepage    *domain.PageMeta `json:"homepage,omitempty"`
	CollectedAt time.Time        `json:"collected_at"`
}

// NewEvent constructs an Event for the given feed + station.
func NewEvent(feedID, feedName string, station dirble.Station, homepage domain.PageMeta) Event {
	evt := Event{
		ID:          uuid.NewString(),
		FeedID:      feedID,
		FeedName:    feedName,
		Station:     station,
		CollectedAt: time.Now().UTC(),
	}
	if !homepage.IsZero() {
		hp := homepage
		evt.Homepage = &hp
	}
	return evt
}
