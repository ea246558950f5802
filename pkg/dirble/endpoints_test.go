package dirble

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stationJSON = `{
  "id": 11498,
  "name": "Radio Paradise",
  "country": "US",
  "slug": "radio-paradise",
  "website": "https://radioparadise.com",
  "total_listeners": 12,
  "image": {"url": "https://cdn.example/rp.png", "thumb": {"url": "https://cdn.example/rp_t.png"}},
  "categories": [{"id": 5, "title": "Rock", "slug": "rock", "ancestry": null}],
  "streams": [{"stream": "http://stream.example/rp.mp3", "bitrate": 128, "content_type": "audio/mpeg", "status": 1, "listeners": 3}],
  "created_at": "2015-04-04T15:33:31+02:00",
  "updated_at": ""
}`

func TestStationListEndpoints(t *testing.T) {
	cases := []struct {
		name string
		call func(*Client) ([]Station, error)
		path string
	}{
		{"stations", func(c *Client) ([]Station, error) {
			return c.Stations(context.Background(), Page{Page: 1, PerPage: 5, Offset: 2})
		}, "/v2/stations"},
		{"recent", func(c *Client) ([]Station, error) {
			return c.RecentStations(context.Background(), Page{Page: 1, PerPage: 5, Offset: 2})
		}, "/v2/stations/recent"},
		{"popular", func(c *Client) ([]Station, error) {
			return c.PopularStations(context.Background(), Page{Page: 1, PerPage: 5, Offset: 2})
		}, "/v2/stations/popular"},
		{"category", func(c *Client) ([]Station, error) {
			return c.StationsInCategory(context.Background(), 9, Page{Page: 1, PerPage: 5, Offset: 2})
		}, "/v2/category/9/stations"},
		{"country", func(c *Client) ([]Station, error) {
			return c.StationsInCountry(context.Background(), " se ", Page{Page: 1, PerPage: 5, Offset: 2})
		}, "/v2/countries/SE/stations"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rs := newRecordingServer(t, jsonHandler(http.StatusOK, "["+stationJSON+"]"))
			c := newTestClient(t, rs)

			stations, err := tc.call(c)
			require.NoError(t, err)
			require.Len(t, stations, 1)
			assert.Equal(t, int64(11498), stations[0].ID)

			got := rs.last(t)
			assert.Equal(t, tc.path, got.Path)
			q := got.Query()
			assert.Equal(t, "1", q.Get("page"))
			assert.Equal(t, "5", q.Get("per_page"))
			assert.Equal(t, "2", q.Get("offset"))
			assert.Equal(t, testKey, q.Get("token"))
		})
	}
}

func TestZeroPageOmitsParams(t *testing.T) {
	rs := newRecordingServer(t, jsonHandler(http.StatusOK, `[]`))
	c := newTestClient(t, rs)

	_, err := c.Stations(context.Background(), Page{})
	require.NoError(t, err)

	q := rs.last(t).Query()
	assert.False(t, q.Has("page"))
	assert.False(t, q.Has("per_page"))
	assert.False(t, q.Has("offset"))
	assert.Equal(t, testKey, q.Get("token"))
}

func TestStationDecodesModel(t *testing.T) {
	rs := newRecordingServer(t, jsonHandler(http.StatusOK, stationJSON))
	c := newTestClient(t, rs)

	st, err := c.Station(context.Background(), 11498)
	require.NoError(t, err)
	assert.Equal(t, "/v2/station/11498", rs.last(t).Path)

	assert.Equal(t, "Radio Paradise", st.Name)
	assert.Equal(t, "https://cdn.example/rp_t.png", st.Image.Thumb.URL)
	require.Len(t, st.Streams, 1)
	assert.True(t, st.Streams[0].Online())
	assert.Equal(t, 128, st.Streams[0].Bitrate)
	require.Len(t, st.Categories, 1)
	assert.Equal(t, "", st.Categories[0].Ancestry)
	assert.Equal(t, 2015, st.CreatedAt.Year())
	assert.True(t, st.UpdatedAt.IsZero())
}

func TestIDEndpointsHitExpectedPaths(t *testing.T) {
	cases := []struct {
		name string
		call func(*Client) error
		path string
	}{
		{"similar", func(c *Client) error { _, err := c.SimilarStations(context.Background(), 3); return err }, "/v2/station/3/similar"},
		{"song history", func(c *Client) error { _, err := c.StationSongHistory(context.Background(), 3); return err }, "/v2/station/3/song_history"},
		{"recent songs", func(c *Client) error { _, err := c.RecentSongs(context.Background()); return err }, "/v2/songs"},
		{"categories", func(c *Client) error { _, err := c.Categories(context.Background()); return err }, "/v2/categories"},
		{"primary", func(c *Client) error { _, err := c.PrimaryCategories(context.Background()); return err }, "/v2/categories/primary"},
		{"childs", func(c *Client) error { _, err := c.ChildCategories(context.Background(), 4, Page{}); return err }, "/v2/category/4/childs"},
		{"tree", func(c *Client) error { _, err := c.CategoryTree(context.Background()); return err }, "/v2/categories/tree"},
		{"countries", func(c *Client) error { _, err := c.Countries(context.Background()); return err }, "/v2/countries"},
		{"continents", func(c *Client) error { _, err := c.Continents(context.Background()); return err }, "/v2/continents"},
		{"continent countries", func(c *Client) error { _, err := c.CountriesInContinent(context.Background(), 2); return err }, "/v2/continents/2/countries"},
		{"search", func(c *Client) error { _, err := c.Search(context.Background(), "jazz fm"); return err }, "/v2/search/jazz fm"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rs := newRecordingServer(t, jsonHandler(http.StatusOK, `[]`))
			c := newTestClient(t, rs)

			require.NoError(t, tc.call(c))
			got := rs.last(t)
			assert.Equal(t, tc.path, got.Path)
			assert.Equal(t, testKey, got.Query().Get("token"))
		})
	}
}

func TestSearchEscapesQuery(t *testing.T) {
	rs := newRecordingServer(t, jsonHandler(http.StatusOK, `[]`))
	c := newTestClient(t, rs)

	_, err := c.Search(context.Background(), "rock/pop?")
	require.NoError(t, err)
	assert.Equal(t, "/v2/search/rock%2Fpop%3F", rs.last(t).EscapedPath())
}

func TestValidationFailsBeforeRequest(t *testing.T) {
	rs := newRecordingServer(t, jsonHandler(http.StatusOK, `[]`))
	c := newTestClient(t, rs)
	ctx := context.Background()

	_, err := c.Station(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = c.SimilarStations(ctx, -1)
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = c.StationSongHistory(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = c.ChildCategories(ctx, 0, Page{})
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = c.StationsInCategory(ctx, -4, Page{})
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = c.CountriesInContinent(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = c.Search(ctx, "  ")
	assert.ErrorIs(t, err, ErrInvalidQuery)
	_, err = c.StationsInCountry(ctx, "", Page{})
	assert.ErrorIs(t, err, ErrInvalidCountryCode)
	_, err = c.Stations(ctx, Page{PerPage: -1})
	assert.ErrorIs(t, err, ErrInvalidPage)

	assert.Zero(t, rs.count(), "invalid input must not reach the API")
}

func TestCategoryTreeWalk(t *testing.T) {
	body := `[{"id":1,"title":"Rock","children":[{"id":2,"title":"Indie","children":[{"id":3,"title":"Shoegaze"}]}]}]`
	rs := newRecordingServer(t, jsonHandler(http.StatusOK, body))
	c := newTestClient(t, rs)

	tree, err := c.CategoryTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 1)

	var titles []string
	var depths []int
	tree[0].Walk(func(n CategoryNode, depth int) {
		titles = append(titles, n.Title)
		depths = append(depths, depth)
	})
	assert.Equal(t, []string{"Rock", "Indie", "Shoegaze"}, titles)
	assert.Equal(t, []int{0, 1, 2}, depths)
}

func TestPageNext(t *testing.T) {
	assert.Equal(t, Page{Page: 3, PerPage: 10}, Page{Page: 2, PerPage: 10}.Next())
}
