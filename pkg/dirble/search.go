package dirble

import (
	"context"
	"net/url"
	"strings"
)

// Search lists stations matching a free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]Station, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidQuery
	}
	var out []Station
	if err := c.Get(ctx, "/search/"+url.PathEscape(query), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
