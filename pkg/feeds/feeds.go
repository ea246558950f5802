// Package feeds describes the station listings the watcher polls and loads
// them from YAML or JSON registry files.
package feeds

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported feed types.
const (
	TypeRecent   = "recent"
	TypePopular  = "popular"
	TypeAll      = "all"
	TypeCategory = "category"
	TypeCountry  = "country"
	TypeSearch   = "search"
)

const (
	defaultRequestDelayMs = 500
	defaultPerPage        = 20
	defaultPages          = 1
	maxPages              = 50
)

// Feed is one configured station listing.
type Feed struct {
	ID             string         `json:"id" yaml:"id"`
	Name           string         `json:"name" yaml:"name"`
	Type           string         `json:"type" yaml:"type"`
	PerPage        int            `json:"per_page" yaml:"per_page"`
	Pages          int            `json:"pages" yaml:"pages"`
	CategoryID     int64          `json:"category_id" yaml:"category_id"`
	CountryCode    string         `json:"country_code" yaml:"country_code"`
	Query          string         `json:"query" yaml:"query"`
	RequestDelayMs int            `json:"request_delay_ms" yaml:"request_delay_ms"`
	Config         map[string]any `json:"config" yaml:"config"`
}

// RequestDelay returns the pause between consecutive requests made for the feed.
func (f Feed) RequestDelay() time.Duration {
	if f.RequestDelayMs <= 0 {
		return time.Duration(defaultRequestDelayMs) * time.Millisecond
	}
	return time.Duration(f.RequestDelayMs) * time.Millisecond
}

type registryFile struct {
	Feeds []Feed `json:"feeds" yaml:"feeds"`
}

// Registry holds the feeds loaded from a registry file.
type Registry struct {
	mu    sync.RWMutex
	feeds []Feed
	idx   map[string]Feed
}

// NewRegistry validates feeds and indexes them by id.
func NewRegistry(list []Feed) (*Registry, error) {
	reg := &Registry{
		feeds: make([]Feed, len(list)),
		idx:   make(map[string]Feed, len(list)),
	}
	for i := range list {
		f := sanitizeFeed(list[i])
		if err := validateFeed(f); err != nil {
			return nil, fmt.Errorf("feeds[%d]: %w", i, err)
		}
		if _, exists := reg.idx[f.ID]; exists {
			return nil, fmt.Errorf("duplicate feed id %q", f.ID)
		}
		reg.feeds[i] = f
		reg.idx[f.ID] = f
	}
	return reg, nil
}

// LoadRegistry loads feeds from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("feeds file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feeds file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read feeds file: %w", err)
	}

	parsed, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Feeds) == 0 {
		return nil, errors.New("feeds file contains no feeds entries")
	}
	return NewRegistry(parsed.Feeds)
}

// All returns a copy of the loaded feeds in file order.
func (r *Registry) All() []Feed {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Feed, len(r.feeds))
	copy(out, r.feeds)
	return out
}

func (r *Registry) ByID(id string) (Feed, bool) {
	if r == nil {
		return Feed{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Feed{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.idx[id]
	return f, ok
}

type unmarshalFn func([]byte, any) error

func parseRegistry(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg registryFile
		if err := d.fn(data, &reg); err == nil {
			return reg, nil
		}
	}

	return registryFile{}, errors.New("feeds file format not recognized (expected YAML or JSON)")
}

func sanitizeFeed(f Feed) Feed {
	f.ID = strings.TrimSpace(f.ID)
	f.Name = strings.TrimSpace(f.Name)
	f.Type = strings.ToLower(strings.TrimSpace(f.Type))
	f.CountryCode = strings.ToUpper(strings.TrimSpace(f.CountryCode))
	f.Query = strings.TrimSpace(f.Query)

	if f.Name == "" {
		f.Name = f.ID
	}
	if f.Config == nil {
		f.Config = map[string]any{}
	}
	if f.PerPage <= 0 {
		f.PerPage = defaultPerPage
	}
	if f.Pages <= 0 {
		f.Pages = defaultPages
	}
	if f.Pages > maxPages {
		f.Pages = maxPages
	}
	if f.RequestDelayMs <= 0 {
		f.RequestDelayMs = defaultRequestDelayMs
	}
	return f
}

func validateFeed(f Feed) error {
	if f.ID == "" {
		return errors.New("id is required")
	}
	switch f.Type {
	case TypeRecent, TypePopular, TypeAll:
	case TypeCategory:
		if f.CategoryID <= 0 {
			return fmt.Errorf("category_id is required for feed %q", f.ID)
		}
	case TypeCountry:
		if f.CountryCode == "" {
			return fmt.Errorf("country_code is required for feed %q", f.ID)
		}
	case TypeSearch:
		if f.Query == "" {
			return fmt.Errorf("query is required for feed %q", f.ID)
		}
	case "":
		return fmt.Errorf("type is required for feed %q", f.ID)
	default:
		return fmt.Errorf("unsupported type %q for feed %q", f.Type, f.ID)
	}
	return nil
}
