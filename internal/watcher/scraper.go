package watcher

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/dirble-go/internal/domain"
	"github.com/samvad-hq/dirble-go/internal/logger"
	"github.com/samvad-hq/dirble-go/pkg/dirble"
	"github.com/samvad-hq/dirble-go/pkg/feeds"
	"github.com/samvad-hq/dirble-go/pkg/httpclient"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
	maxErrorSnippet  = 1024
)

// Scraper visits station homepages and extracts OpenGraph metadata.
type Scraper struct {
	client httpclient.Client
	log    logger.Logger
}

// NewScraper constructs a scraper with the provided HTTP client (or default).
func NewScraper(client httpclient.Client, log logger.Logger) *Scraper {
	if client == nil {
		client = httpclient.NewRestyClient(httpclient.DefaultTimeout)
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Scraper{client: client, log: log}
}

// Enrich fetches the homepage of every station that lists one, waiting the
// feed's request delay between visits. Stations whose page cannot be fetched
// or carries no metadata are absent from the result.
func (s *Scraper) Enrich(ctx context.Context, f feeds.Feed, stations []dirble.Station) map[int64]domain.PageMeta {
	out := make(map[int64]domain.PageMeta)
	delay := f.RequestDelay()
	visited := 0

	for _, st := range stations {
		site := strings.TrimSpace(st.Website)
		if site == "" {
			continue
		}
		if visited > 0 && delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return out
			case <-timer.C:
			}
		}
		if ctx.Err() != nil {
			return out
		}
		visited++

		meta, err := s.fetchAndParse(ctx, f, site)
		if err != nil {
			s.log.WarnObj("station homepage scrape failed", "metadata_error", map[string]any{
				"feed_id":    f.ID,
				"station_id": st.ID,
				"url":        site,
				"error":      err.Error(),
			})
			continue
		}
		if !meta.IsZero() {
			out[st.ID] = meta
		}
	}

	return out
}

func (s *Scraper) fetchAndParse(ctx context.Context, f feeds.Feed, pageURL string) (domain.PageMeta, error) {
	resp, err := s.client.Get(ctx, pageURL, feeds.Headers(f))
	if err != nil {
		return domain.PageMeta{}, fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > maxErrorSnippet {
			snippet = snippet[:maxErrorSnippet]
		}
		return domain.PageMeta{}, fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parseMeta(body)
	if err != nil {
		return domain.PageMeta{}, err
	}
	meta.ImageURL = resolveURL(meta.ImageURL, pageURL)
	return meta, nil
}

func parseMeta(body []byte) (domain.PageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.PageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return domain.PageMeta{
		Title: firstNonEmpty(
			extract(`meta[property="og:title"]`),
			strings.TrimSpace(doc.Find("title").First().Text()),
		),
		Description: firstNonEmpty(
			extract(`meta[property="og:description"]`),
			extract(`meta[name="description"]`),
		),
		ImageURL: firstNonEmpty(
			extract(`meta[property="og:image"]`),
			extract(`meta[name="twitter:image"]`),
		),
	}, nil
}

// resolveURL makes ref absolute against base. Unparseable input is returned as is.
func resolveURL(ref, base string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil || r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
