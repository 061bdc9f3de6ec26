// Package newsfeed extracts agricultural news headlines from a configured
// HTML page. The feed is read-only and never persisted; a fetch failure only
// degrades the /news endpoint.
package newsfeed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// A Headline is one extracted news entry.
type Headline struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// A Fetcher scrapes headlines from one source page. Selector addresses the
// anchor elements holding the headlines, e.g. "article h2 a".
type Fetcher struct {
	sourceURL string
	selector  string
	client    *http.Client
	logger    zerolog.Logger
}

func New(sourceURL string, selector string, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		sourceURL: sourceURL,
		selector:  selector,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}
}

// Fetch downloads the source page and extracts its headlines. Relative links
// are resolved against the source URL.
func (f *Fetcher) Fetch(ctx context.Context) ([]Headline, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.sourceURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news source returned %v", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(f.sourceURL)
	if err != nil {
		return nil, err
	}

	headlines := []Headline{}
	doc.Find(f.selector).Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Text())
		href := sel.AttrOr("href", "")
		if title == "" || href == "" {
			f.logger.Debug().Str("selector", f.selector).Msg("Skipping headline with empty title or link")
			return
		}

		link, err := base.Parse(href)
		if err != nil {
			f.logger.Debug().Err(err).Str("href", href).Msg("Skipping headline with unparsable link")
			return
		}

		headlines = append(headlines, Headline{Title: title, URL: link.String()})
	})

	return headlines, nil
}
