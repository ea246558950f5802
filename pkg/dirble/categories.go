package dirble

import (
	"context"
	"fmt"
)

// Categories lists every station category.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.Get(ctx, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PrimaryCategories lists the top-level categories.
func (c *Client) PrimaryCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.Get(ctx, "/categories/primary", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChildCategories lists the direct children of a category.
// The API currently ignores the paging parameters on this endpoint; they are
// still sent so callers keep working if that changes.
func (c *Client) ChildCategories(ctx context.Context, id int64, page Page) ([]Category, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	var out []Category
	if err := c.Get(ctx, fmt.Sprintf("/category/%d/childs", id), page.Values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CategoryTree returns every category nested under its parent.
func (c *Client) CategoryTree(ctx context.Context) ([]CategoryNode, error) {
	var out []CategoryNode
	if err := c.Get(ctx, "/categories/tree", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StationsInCategory lists the stations filed under a category.
func (c *Client) StationsInCategory(ctx context.Context, id int64, page Page) ([]Station, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	return c.stationList(ctx, fmt.Sprintf("/category/%d/stations", id), page)
}
