// Package scraper provides implementations for fetching RSS/Atom feeds.
// It uses the gofeed library to parse feed content.
package scraper

import (
	"context"
	"net/http"

	"daily-digest/internal/domain/entity"
	"daily-digest/internal/pkg/timestamp"
	"daily-digest/internal/usecase/digest"

	"github.com/mmcdole/gofeed"
)

const fallbackTitle = "(no title)"

// RSSFetcher implements digest.FeedFetcher using the gofeed library.
type RSSFetcher struct {
	client *http.Client
}

// NewRSSFetcher creates a new RSSFetcher with the given HTTP client.
// The client's timeout bounds each fetch alongside the caller's context.
func NewRSSFetcher(client *http.Client) *RSSFetcher {
	return &RSSFetcher{client: client}
}

// Fetch retrieves and parses an RSS/Atom feed for the given source.
//
// The result's Title is the configured source name when present, else the
// feed's self-declared title, else the URL. On any fetch or parse failure the
// result carries the best-effort title and an empty item slice; the error is
// returned for logging but the caller must not treat it as fatal.
//
// Items keep the order the feed provides. For each entry the first date
// candidate the timestamp normalizer accepts (published, then updated, then
// Dublin Core date) becomes PublishedRaw; entries with no parseable candidate
// get an empty PublishedRaw.
func (f *RSSFetcher) Fetch(ctx context.Context, src entity.Source) (digest.FeedResult, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = "DailyDigestBot"
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return digest.FeedResult{Title: resolveTitle(src, "")}, err
	}

	items := make([]digest.RawItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		title := it.Title
		if title == "" {
			title = fallbackTitle
		}

		items = append(items, digest.RawItem{
			Title:        title,
			Summary:      it.Description,
			Link:         resolveLink(it),
			PublishedRaw: selectDateField(it),
		})
	}

	return digest.FeedResult{Title: resolveTitle(src, feed.Title), Items: items}, nil
}

// resolveTitle picks the source label: configured name, feed title, then URL.
func resolveTitle(src entity.Source, feedTitle string) string {
	if src.Name != "" {
		return src.Name
	}
	if feedTitle != "" {
		return feedTitle
	}
	return src.URL
}

// resolveLink uses the entry's canonical link if present, else its GUID.
func resolveLink(it *gofeed.Item) string {
	if it.Link != "" {
		return it.Link
	}
	return it.GUID
}

// selectDateField walks the provider date candidates in priority order and
// returns the first one the normalizer can parse. A candidate that is
// populated but unparseable does not stop the walk.
func selectDateField(it *gofeed.Item) string {
	candidates := []string{it.Published, it.Updated}
	if it.DublinCoreExt != nil {
		candidates = append(candidates, it.DublinCoreExt.Date...)
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if timestamp.Normalize(candidate) != nil {
			return candidate
		}
	}
	return ""
}
