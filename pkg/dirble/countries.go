package dirble

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Countries lists the countries that have stations.
func (c *Client) Countries(ctx context.Context) ([]Country, error) {
	var out []Country
	if err := c.Get(ctx, "/countries", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Continents lists the continents.
func (c *Client) Continents(ctx context.Context) ([]Continent, error) {
	var out []Continent
	if err := c.Get(ctx, "/continents", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountriesInContinent lists the countries of a continent.
func (c *Client) CountriesInContinent(ctx context.Context, id int64) ([]Country, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	var out []Country
	if err := c.Get(ctx, fmt.Sprintf("/continents/%d/countries", id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StationsInCountry lists stations for an ISO 3166 country code such as "US".
func (c *Client) StationsInCountry(ctx context.Context, countryCode string, page Page) ([]Station, error) {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	if code == "" {
		return nil, ErrInvalidCountryCode
	}
	return c.stationList(ctx, "/countries/"+url.PathEscape(code)+"/stations", page)
}
