package dirble

import (
	"context"
	"fmt"
)

// Stations lists all stations.
func (c *Client) Stations(ctx context.Context, page Page) ([]Station, error) {
	return c.stationList(ctx, "/stations", page)
}

// RecentStations lists the most recently added stations.
func (c *Client) RecentStations(ctx context.Context, page Page) ([]Station, error) {
	return c.stationList(ctx, "/stations/recent", page)
}

// PopularStations lists stations ordered by popularity.
func (c *Client) PopularStations(ctx context.Context, page Page) ([]Station, error) {
	return c.stationList(ctx, "/stations/popular", page)
}

// Station returns a single station.
func (c *Client) Station(ctx context.Context, id int64) (*Station, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	var out Station
	if err := c.Get(ctx, fmt.Sprintf("/station/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SimilarStations lists stations similar to the given one.
func (c *Client) SimilarStations(ctx context.Context, id int64) ([]Station, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	var out []Station
	if err := c.Get(ctx, fmt.Sprintf("/station/%d/similar", id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StationSongHistory lists songs recently played by a station.
func (c *Client) StationSongHistory(ctx context.Context, id int64) ([]Song, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	var out []Song
	if err := c.Get(ctx, fmt.Sprintf("/station/%d/song_history", id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecentSongs lists songs recently played across all stations.
func (c *Client) RecentSongs(ctx context.Context) ([]Song, error) {
	var out []Song
	if err := c.Get(ctx, "/songs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) stationList(ctx context.Context, path string, page Page) ([]Station, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	var out []Station
	if err := c.Get(ctx, path, page.Values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}
