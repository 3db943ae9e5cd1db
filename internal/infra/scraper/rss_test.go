package scraper_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"daily-digest/internal/domain/entity"
	"daily-digest/internal/infra/scraper"
)

func serveFeed(t *testing.T, contentType, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		if _, err := w.Write([]byte(body)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
}

func TestRSSFetcher_Fetch_Success(t *testing.T) {
	rss := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <item>
      <title>Article 1</title>
      <link>https://example.com/article1</link>
      <description>Description 1</description>
      <pubDate>Mon, 01 Jan 2024 00:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Article 2</title>
      <link>https://example.com/article2</link>
      <description>Description 2</description>
      <pubDate>Tue, 02 Jan 2024 00:00:00 +0000</pubDate>
    </item>
  </channel>
</rss>`
	server := serveFeed(t, "application/rss+xml", rss)
	defer server.Close()

	client := &http.Client{Timeout: 10 * time.Second}
	fetcher := scraper.NewRSSFetcher(client)

	result, err := fetcher.Fetch(context.Background(), entity.Source{Name: "My Feed", URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if result.Title != "My Feed" {
		t.Errorf("result.Title = %q, want %q (configured name wins)", result.Title, "My Feed")
	}
	if len(result.Items) != 2 {
		t.Fatalf("items length = %d, want 2", len(result.Items))
	}

	if result.Items[0].Title != "Article 1" {
		t.Errorf("items[0].Title = %q, want %q", result.Items[0].Title, "Article 1")
	}
	if result.Items[0].Link != "https://example.com/article1" {
		t.Errorf("items[0].Link = %q, want %q", result.Items[0].Link, "https://example.com/article1")
	}
	if result.Items[0].Summary != "Description 1" {
		t.Errorf("items[0].Summary = %q, want %q", result.Items[0].Summary, "Description 1")
	}
	if result.Items[0].PublishedRaw != "Mon, 01 Jan 2024 00:00:00 +0000" {
		t.Errorf("items[0].PublishedRaw = %q, want the raw pubDate", result.Items[0].PublishedRaw)
	}
}

func TestRSSFetcher_Fetch_FeedTitleWhenNameEmpty(t *testing.T) {
	rss := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Self-Declared Title</title>
    <link>https://example.com</link>
  </channel>
</rss>`
	server := serveFeed(t, "application/rss+xml", rss)
	defer server.Close()

	fetcher := scraper.NewRSSFetcher(&http.Client{Timeout: 10 * time.Second})

	result, err := fetcher.Fetch(context.Background(), entity.Source{URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if result.Title != "Self-Declared Title" {
		t.Errorf("result.Title = %q, want feed's own title", result.Title)
	}
	if len(result.Items) != 0 {
		t.Fatalf("items length = %d, want 0", len(result.Items))
	}
}

func TestRSSFetcher_Fetch_AtomUpdatedFallback(t *testing.T) {
	// Atomフィード: published無し、updatedが日付候補になる
	atom := `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <link href="https://example.com"/>
  <updated>2024-01-01T00:00:00Z</updated>
  <entry>
    <title>Atom Article 1</title>
    <link href="https://example.com/atom1"/>
    <id>atom1</id>
    <updated>2024-01-03T00:00:00Z</updated>
    <summary>Atom Summary 1</summary>
  </entry>
</feed>`
	server := serveFeed(t, "application/atom+xml", atom)
	defer server.Close()

	fetcher := scraper.NewRSSFetcher(&http.Client{Timeout: 10 * time.Second})

	result, err := fetcher.Fetch(context.Background(), entity.Source{Name: "Atom", URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("items length = %d, want 1", len(result.Items))
	}
	if result.Items[0].PublishedRaw != "2024-01-03T00:00:00Z" {
		t.Errorf("items[0].PublishedRaw = %q, want the updated field", result.Items[0].PublishedRaw)
	}
}

func TestRSSFetcher_Fetch_GUIDLinkFallback(t *testing.T) {
	rss := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Feed</title>
    <link>https://example.com</link>
    <item>
      <title>No link article</title>
      <guid>https://example.com/guid-only</guid>
    </item>
  </channel>
</rss>`
	server := serveFeed(t, "application/rss+xml", rss)
	defer server.Close()

	fetcher := scraper.NewRSSFetcher(&http.Client{Timeout: 10 * time.Second})

	result, err := fetcher.Fetch(context.Background(), entity.Source{Name: "Feed", URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("items length = %d, want 1", len(result.Items))
	}
	if result.Items[0].Link != "https://example.com/guid-only" {
		t.Errorf("items[0].Link = %q, want GUID fallback", result.Items[0].Link)
	}
	if result.Items[0].PublishedRaw != "" {
		t.Errorf("items[0].PublishedRaw = %q, want empty for dateless entry", result.Items[0].PublishedRaw)
	}
}

func TestRSSFetcher_Fetch_UnparseableDateSkipped(t *testing.T) {
	rss := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Feed</title>
    <link>https://example.com</link>
    <item>
      <title>Bad date</title>
      <link>https://example.com/bad-date</link>
      <pubDate>sometime last week</pubDate>
    </item>
  </channel>
</rss>`
	server := serveFeed(t, "application/rss+xml", rss)
	defer server.Close()

	fetcher := scraper.NewRSSFetcher(&http.Client{Timeout: 10 * time.Second})

	result, err := fetcher.Fetch(context.Background(), entity.Source{Name: "Feed", URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("items length = %d, want 1", len(result.Items))
	}
	if result.Items[0].PublishedRaw != "" {
		t.Errorf("items[0].PublishedRaw = %q, want empty for unparseable date", result.Items[0].PublishedRaw)
	}
}

func TestRSSFetcher_Fetch_MalformedBody(t *testing.T) {
	server := serveFeed(t, "text/html", "<html><body>not a feed</body></html>")
	defer server.Close()

	fetcher := scraper.NewRSSFetcher(&http.Client{Timeout: 10 * time.Second})

	result, err := fetcher.Fetch(context.Background(), entity.Source{Name: "Broken", URL: server.URL})
	if err == nil {
		t.Fatal("Fetch() error = nil, want parse error")
	}
	if result.Title != "Broken" {
		t.Errorf("result.Title = %q, want best-effort source name", result.Title)
	}
	if len(result.Items) != 0 {
		t.Errorf("items length = %d, want 0 on failure", len(result.Items))
	}
}

func TestRSSFetcher_Fetch_UnreachableHost(t *testing.T) {
	fetcher := scraper.NewRSSFetcher(&http.Client{Timeout: time.Second})

	src := entity.Source{URL: "http://127.0.0.1:1/feed.xml"}
	result, err := fetcher.Fetch(context.Background(), src)
	if err == nil {
		t.Fatal("Fetch() error = nil, want network error")
	}
	if result.Title != src.URL {
		t.Errorf("result.Title = %q, want URL placeholder when name is empty", result.Title)
	}
	if len(result.Items) != 0 {
		t.Errorf("items length = %d, want 0 on failure", len(result.Items))
	}
}
