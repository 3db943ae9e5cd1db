package metrics

import "time"

// Item outcomes recorded during aggregation.
const (
	OutcomeAccepted   = "accepted"
	OutcomeDuplicated = "duplicated"
	OutcomeExpired    = "expired"
)

// RecordFeedFetched records the number of raw items retrieved from a source
// and the time the retrieval took.
func RecordFeedFetched(source string, count int, duration time.Duration) {
	FeedItemsFetchedTotal.WithLabelValues(source).Add(float64(count))
	FeedFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordFeedFetchError records a fetch or parse failure for a source.
// Reason should be a short stable identifier such as "fetch_failed" or "timeout".
func RecordFeedFetchError(source, reason string) {
	FeedFetchErrorsTotal.WithLabelValues(source, reason).Inc()
}

// RecordDigestBuild records the outcome counts of one aggregation pass.
func RecordDigestBuild(duration time.Duration, accepted, duplicated, expired int) {
	DigestBuildDuration.Observe(duration.Seconds())
	DigestItemsTotal.WithLabelValues(OutcomeAccepted).Add(float64(accepted))
	DigestItemsTotal.WithLabelValues(OutcomeDuplicated).Add(float64(duplicated))
	DigestItemsTotal.WithLabelValues(OutcomeExpired).Add(float64(expired))
}

// RecordDigestSent records the result of a digest delivery attempt.
// Status should be either "success" or "failure".
func RecordDigestSent(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	DigestsSentTotal.WithLabelValues(status).Inc()
}
