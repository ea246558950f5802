// Package storage remembers which stations have already been published.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Store tracks published station IDs.
type Store interface {
	Close() error
	SeenStation(id int64) (bool, error)
	MarkStation(id int64) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	StationTTL      time.Duration
	CleanupInterval time.Duration
}

const (
	defaultStationTTL      = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour

	TypeNone  = "none"
	TypeBBolt = "bbolt"
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", TypeNone, "disabled":
		return noopStore{}, nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.StationTTL <= 0 {
		opts.StationTTL = defaultStationTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                    { return nil }
func (noopStore) SeenStation(int64) (bool, error) { return false, nil }
func (noopStore) MarkStation(int64) error         { return nil }
