// Package timestamp normalizes the loosely specified date strings found in
// syndication feeds into comparable instants.
package timestamp

import (
	"errors"
	"time"

	"github.com/araddon/dateparse"
)

var errUnparseable = errors.New("unparseable timestamp")

// Normalize parses a feed-provided date string into a single comparable
// instant. It accepts RFC 2822 style, ISO 8601 style, and most other formats
// feed providers emit.
//
// Strings with no UTC offset are interpreted as UTC wall-clock time. This is
// a deliberate simplification, not a guess at the true source time zone.
//
// Returns nil when no recognizable date can be parsed. The caller must treat
// nil as "publish time unknown", not as an error. Normalize never panics.
func Normalize(raw string) *time.Time {
	if raw == "" {
		return nil
	}

	parsed, err := parse(raw)
	if err != nil {
		return nil
	}
	return &parsed
}

// parse isolates the third-party parser behind a recover so that a malformed
// input can never take down a feed run.
func parse(raw string) (t time.Time, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errUnparseable
		}
	}()
	return dateparse.ParseIn(raw, time.UTC)
}
