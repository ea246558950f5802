package domain

import "strings"

// PageMeta is what a station's homepage says about itself (OpenGraph first,
// falling back to <title> and the description meta tag).
type PageMeta struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// IsZero reports whether no metadata was found.
func (m PageMeta) IsZero() bool {
	return strings.TrimSpace(m.Title) == "" &&
		strings.TrimSpace(m.Description) == "" &&
		strings.TrimSpace(m.ImageURL) == ""
}
