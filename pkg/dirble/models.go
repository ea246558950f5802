package dirble

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Station is a radio station as listed by the directory.
type Station struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Country        string     `json:"country"`
	Slug           string     `json:"slug"`
	Website        string     `json:"website"`
	Twitter        string     `json:"twitter"`
	Facebook       string     `json:"facebook"`
	TotalListeners int        `json:"total_listeners"`
	Image          Image      `json:"image"`
	Categories     []Category `json:"categories"`
	Streams        []Stream   `json:"streams"`
	CreatedAt      Timestamp  `json:"created_at"`
	UpdatedAt      Timestamp  `json:"updated_at"`
}

// Image holds a station logo and its thumbnail.
type Image struct {
	URL   string `json:"url"`
	Thumb struct {
		URL string `json:"url"`
	} `json:"thumb"`
}

// Stream is one playable endpoint of a station.
type Stream struct {
	URL         string `json:"stream"`
	Bitrate     int    `json:"bitrate"`
	ContentType string `json:"content_type"`
	Status      int    `json:"status"`
	Listeners   int    `json:"listeners"`
}

// Online reports whether the directory last saw the stream working.
func (s Stream) Online() bool { return s.Status == 1 }

// Category is a station genre.
type Category struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	Ancestry    string    `json:"ancestry"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

// CategoryNode is a category plus its sub-categories, as returned by the tree endpoint.
type CategoryNode struct {
	Category
	Children []CategoryNode `json:"children"`
}

// Walk visits the node and all descendants depth first.
func (n CategoryNode) Walk(fn func(node CategoryNode, depth int)) {
	n.walk(fn, 0)
}

func (n CategoryNode) walk(fn func(CategoryNode, int), depth int) {
	fn(n, depth)
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

// Country is a country as listed by the directory, keyed by ISO code.
type Country struct {
	Code      string `json:"country_code"`
	Name      string `json:"name"`
	Region    string `json:"region"`
	Subregion string `json:"subregion"`
}

// Continent groups countries.
type Continent struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Song is a play recorded by a station.
type Song struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Week      int       `json:"week"`
	Year      int       `json:"year"`
	StationID int64     `json:"station_id"`
	Date      Timestamp `json:"date"`
}

// Timestamp decodes the API's RFC 3339 timestamps and tolerates null or empty values.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", raw)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}
