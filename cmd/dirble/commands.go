package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/samvad-hq/dirble-go/pkg/dirble"
)

type runFn func(ctx context.Context, c *dirble.Client, page dirble.Page, args []string) (any, error)

type command struct {
	name  string
	usage string
	paged bool
	nargs int // required positional args; -1 means one or more
	run   runFn
}

var commands = []command{
	{name: "stations", usage: "list all stations", paged: true, run: func(ctx context.Context, c *dirble.Client, p dirble.Page, _ []string) (any, error) {
		return c.Stations(ctx, p)
	}},
	{name: "recent", usage: "list recently added stations", paged: true, run: func(ctx context.Context, c *dirble.Client, p dirble.Page, _ []string) (any, error) {
		return c.RecentStations(ctx, p)
	}},
	{name: "popular", usage: "list popular stations", paged: true, run: func(ctx context.Context, c *dirble.Client, p dirble.Page, _ []string) (any, error) {
		return c.PopularStations(ctx, p)
	}},
	{name: "station", usage: "<id> show one station", nargs: 1, run: withID(func(ctx context.Context, c *dirble.Client, id int64) (any, error) {
		return c.Station(ctx, id)
	})},
	{name: "similar", usage: "<id> list stations similar to a station", nargs: 1, run: withID(func(ctx context.Context, c *dirble.Client, id int64) (any, error) {
		return c.SimilarStations(ctx, id)
	})},
	{name: "song-history", usage: "<id> list songs a station played", nargs: 1, run: withID(func(ctx context.Context, c *dirble.Client, id int64) (any, error) {
		return c.StationSongHistory(ctx, id)
	})},
	{name: "songs", usage: "list recently played songs", run: func(ctx context.Context, c *dirble.Client, _ dirble.Page, _ []string) (any, error) {
		return c.RecentSongs(ctx)
	}},
	{name: "categories", usage: "list all categories", run: func(ctx context.Context, c *dirble.Client, _ dirble.Page, _ []string) (any, error) {
		return c.Categories(ctx)
	}},
	{name: "primary-categories", usage: "list top-level categories", run: func(ctx context.Context, c *dirble.Client, _ dirble.Page, _ []string) (any, error) {
		return c.PrimaryCategories(ctx)
	}},
	{name: "child-categories", usage: "<id> list sub-categories", paged: true, nargs: 1, run: func(ctx context.Context, c *dirble.Client, p dirble.Page, args []string) (any, error) {
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}
		return c.ChildCategories(ctx, id, p)
	}},
	{name: "category-tree", usage: "show the category tree", run: func(ctx context.Context, c *dirble.Client, _ dirble.Page, _ []string) (any, error) {
		return c.CategoryTree(ctx)
	}},
	{name: "category-stations", usage: "<id> list stations in a category", paged: true, nargs: 1, run: func(ctx context.Context, c *dirble.Client, p dirble.Page, args []string) (any, error) {
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}
		return c.StationsInCategory(ctx, id, p)
	}},
	{name: "search", usage: "<query> search stations", nargs: -1, run: func(ctx context.Context, c *dirble.Client, _ dirble.Page, args []string) (any, error) {
		return c.Search(ctx, strings.Join(args, " "))
	}},
	{name: "countries", usage: "list countries", run: func(ctx context.Context, c *dirble.Client, _ dirble.Page, _ []string) (any, error) {
		return c.Countries(ctx)
	}},
	{name: "continents", usage: "list continents", run: func(ctx context.Context, c *dirble.Client, _ dirble.Page, _ []string) (any, error) {
		return c.Continents(ctx)
	}},
	{name: "continent-countries", usage: "<id> list countries of a continent", nargs: 1, run: withID(func(ctx context.Context, c *dirble.Client, id int64) (any, error) {
		return c.CountriesInContinent(ctx, id)
	})},
	{name: "country-stations", usage: "<code> list stations of a country", paged: true, nargs: 1, run: func(ctx context.Context, c *dirble.Client, p dirble.Page, args []string) (any, error) {
		return c.StationsInCountry(ctx, args[0], p)
	}},
	{name: "raw", usage: "<path> GET any API path and print the body", paged: true, nargs: 1, run: func(ctx context.Context, c *dirble.Client, p dirble.Page, args []string) (any, error) {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		var raw json.RawMessage
		if err := c.Get(ctx, args[0], p.Values(), &raw); err != nil {
			return nil, err
		}
		return raw, nil
	}},
}

func lookup(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func withID(fn func(ctx context.Context, c *dirble.Client, id int64) (any, error)) runFn {
	return func(ctx context.Context, c *dirble.Client, _ dirble.Page, args []string) (any, error) {
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}
		return fn(ctx, c, id)
	}
}

// parseID accepts any integer; the client rejects non-positive ids itself.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return id, nil
}
