package dirble

import (
	"net/url"
	"strconv"
)

// Page selects a slice of a station listing. Zero values fall back to the
// API defaults (page 0, 20 per page, offset 0).
type Page struct {
	Page    int
	PerPage int
	Offset  int
}

// Validate rejects negative fields with ErrInvalidPage.
func (p Page) Validate() error {
	if p.Page < 0 || p.PerPage < 0 || p.Offset < 0 {
		return ErrInvalidPage
	}
	return nil
}

// Values encodes the non-zero fields as query parameters.
func (p Page) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(p.PerPage))
	}
	if p.Offset > 0 {
		v.Set("offset", strconv.Itoa(p.Offset))
	}
	return v
}

// Next returns the following page with the same size.
func (p Page) Next() Page {
	p.Page++
	return p
}
