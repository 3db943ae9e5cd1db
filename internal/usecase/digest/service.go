// Package digest assembles the ordered item list that makes up one digest.
// It orchestrates per-source fetching, timestamp normalization, recency
// filtering, cross-source de-duplication, and per-source/global truncation.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"daily-digest/internal/domain/entity"
	"daily-digest/internal/observability/logging"
	"daily-digest/internal/observability/metrics"
	"daily-digest/internal/pkg/timestamp"

	"golang.org/x/sync/errgroup"
)

// FeedFetcher retrieves and parses one feed into raw items.
// Implementations must degrade on failure: an unreachable host or malformed
// body yields an empty item slice plus a best-effort title, with the error
// returned for logging only.
type FeedFetcher interface {
	Fetch(ctx context.Context, src entity.Source) (FeedResult, error)
}

// RawItem is a single feed entry before normalization.
// PublishedRaw holds the first provider date field the timestamp normalizer
// accepted, or "" when the entry carried no parseable date.
type RawItem struct {
	Title        string
	Summary      string
	Link         string
	PublishedRaw string
}

// FeedResult is the outcome of fetching one source.
// Title is the resolved source label: the configured name when present,
// else the feed's self-declared title, else the URL. Items preserve feed
// order; no sorting happens at the fetch layer.
type FeedResult struct {
	Title string
	Items []RawItem
}

// Params are the caller-supplied aggregation knobs. All values must be
// non-negative; zero limits are valid and yield an empty digest.
type Params struct {
	PerSourceLimit int // max accepted items per source
	SinceHours     int // recency window, hours back from now
	TotalLimit     int // max accepted items across all sources
}

// Validate rejects negative parameters. Degenerate zero values pass; the
// aggregation simply returns short or empty results for them.
func (p Params) Validate() error {
	if p.PerSourceLimit < 0 {
		return fmt.Errorf("%w: per-source limit must be non-negative", entity.ErrInvalidInput)
	}
	if p.SinceHours < 0 {
		return fmt.Errorf("%w: since-hours must be non-negative", entity.ErrInvalidInput)
	}
	if p.TotalLimit < 0 {
		return fmt.Errorf("%w: total limit must be non-negative", entity.ErrInvalidInput)
	}
	return nil
}

// Config controls fetch behavior during a build.
type Config struct {
	FetchTimeout time.Duration // per-source fetch deadline
	Parallelism  int           // max concurrent fetches
}

// DefaultConfig returns production defaults: a 15 second per-fetch deadline
// and up to 8 concurrent fetches.
func DefaultConfig() Config {
	return Config{
		FetchTimeout: 15 * time.Second,
		Parallelism:  8,
	}
}

// BuildStats contains statistics about one digest build.
type BuildStats struct {
	Sources     int
	FetchErrors int
	FeedItems   int
	Accepted    int
	Duplicated  int
	Expired     int
	Duration    time.Duration
}

// Service builds digests from configured sources.
type Service struct {
	fetcher FeedFetcher
	config  Config
	now     func() time.Time
}

// NewService creates a digest Service using the given fetcher and config.
// Zero config fields fall back to DefaultConfig values.
func NewService(fetcher FeedFetcher, config Config) *Service {
	defaults := DefaultConfig()
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = defaults.FetchTimeout
	}
	if config.Parallelism <= 0 {
		config.Parallelism = defaults.Parallelism
	}
	return &Service{
		fetcher: fetcher,
		config:  config,
		now:     time.Now,
	}
}

// fetchOutcome is one slot of the fan-out result set, indexed by source
// position so the filtering pass can replay results in source-list order.
type fetchOutcome struct {
	result FeedResult
	err    error
}

// Build fetches every source and assembles the final ordered item list.
//
// Fetches run concurrently, but filtering consumes results strictly in
// source-list order so per-source truncation, first-seen de-duplication, and
// the global short-circuit stay deterministic. The pass is two-phase by
// design: collect everything, filter in order, then one final stable sort.
//
// Ordering treats an unknown publish time as "now", so undated items sort as
// most recent. The recency filter never rejects undated items. Both behaviors
// are load-bearing; see the package tests.
//
// Build returns an error only for invalid params. Per-source failures are
// logged, counted in the stats, and never abort the run.
func (s *Service) Build(ctx context.Context, sources []entity.Source, params Params) ([]entity.Item, *BuildStats, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}

	logger := logging.FromContext(ctx)
	start := time.Now()
	now := s.now().UTC()
	cutoff := now.Add(-time.Duration(params.SinceHours) * time.Hour)

	stats := &BuildStats{Sources: len(sources)}

	outcomes := s.fetchAll(ctx, sources)

	seen := make(map[string]struct{})
	accepted := make([]entity.Item, 0, params.TotalLimit)

	for i, src := range sources {
		// Global cap reached: stop consuming further sources entirely.
		// All fetches already happened above, so no network call is skipped.
		if len(accepted) >= params.TotalLimit {
			break
		}

		out := outcomes[i]
		if out.err != nil {
			logger.Warn("failed to fetch feed",
				slog.String("source", out.result.Title),
				slog.String("url", src.URL),
				slog.Any("error", out.err))
			metrics.RecordFeedFetchError(out.result.Title, "fetch_failed")
			stats.FetchErrors++
			continue
		}

		items := normalizeItems(out.result)
		stats.FeedItems += len(items)

		sortByPublishedDesc(items, now)

		count := 0
		for _, it := range items {
			if count >= params.PerSourceLimit || len(accepted) >= params.TotalLimit {
				break
			}

			// Recency: a dated item older than the cutoff is dropped without
			// consuming the per-source budget. Undated items always pass.
			if it.Published != nil && it.Published.Before(cutoff) {
				stats.Expired++
				continue
			}

			// De-duplication: first accepted link wins across all sources.
			// Empty links are never duplicates of each other.
			if it.Link != "" {
				if _, dup := seen[it.Link]; dup {
					stats.Duplicated++
					continue
				}
				seen[it.Link] = struct{}{}
			}

			accepted = append(accepted, it)
			count++
		}
	}

	// The per-source passes and the short-circuit leave the merged slice in
	// a non-trivial order, so one final stable sort settles the digest.
	sortByPublishedDesc(accepted, now)

	stats.Accepted = len(accepted)
	stats.Duration = time.Since(start)
	metrics.RecordDigestBuild(stats.Duration, stats.Accepted, stats.Duplicated, stats.Expired)

	logger.Info("digest build completed",
		slog.Int("sources", stats.Sources),
		slog.Int("fetch_errors", stats.FetchErrors),
		slog.Int("feed_items", stats.FeedItems),
		slog.Int("accepted", stats.Accepted),
		slog.Int("duplicated", stats.Duplicated),
		slog.Int("expired", stats.Expired),
		slog.Duration("duration", stats.Duration),
	)

	return accepted, stats, nil
}

// fetchAll fans out one fetch per source and collects the outcomes into a
// slice indexed by source position. Each fetch is bounded by the configured
// timeout so a hanging source cannot block the whole build.
func (s *Service) fetchAll(ctx context.Context, sources []entity.Source) []fetchOutcome {
	outcomes := make([]fetchOutcome, len(sources))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.config.Parallelism)

	for i, src := range sources {
		i, src := i, src
		eg.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(egCtx, s.config.FetchTimeout)
			defer cancel()

			fetchStart := time.Now()
			result, err := s.fetcher.Fetch(fetchCtx, src)
			if err == nil {
				metrics.RecordFeedFetched(result.Title, len(result.Items), time.Since(fetchStart))
			}

			outcomes[i] = fetchOutcome{result: result, err: err}
			return nil
		})
	}

	// Goroutines recover all failures into their slot, so Wait never errors.
	_ = eg.Wait()

	return outcomes
}

// normalizeItems converts raw feed entries into canonical items, applying the
// timestamp normalizer's UTC coercion policy.
func normalizeItems(result FeedResult) []entity.Item {
	items := make([]entity.Item, 0, len(result.Items))
	for _, raw := range result.Items {
		items = append(items, entity.Item{
			Source:    result.Title,
			Title:     raw.Title,
			Summary:   raw.Summary,
			Link:      raw.Link,
			Published: timestamp.Normalize(raw.PublishedRaw),
		})
	}
	return items
}

// sortByPublishedDesc sorts items newest-first, treating a missing publish
// time as equal to now. The sort is stable so ties keep their relative order.
func sortByPublishedDesc(items []entity.Item, now time.Time) {
	key := func(it entity.Item) time.Time {
		if it.Published != nil {
			return *it.Published
		}
		return now
	}
	sort.SliceStable(items, func(a, b int) bool {
		return key(items[a]).After(key(items[b]))
	})
}
