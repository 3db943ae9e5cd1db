// Package entity defines the core domain entities and validation logic for the
// application. It contains the fundamental business objects such as Item and
// Source, along with their validation rules and domain-specific errors.
package entity

import "time"

// Item is a single digest entry after normalization.
// Source is the display name of the feed the item came from; it is a plain
// label, not a reference with identity guarantees.
// Published is nil when the feed gave no parseable publish time. A non-nil
// Published always carries an explicit UTC offset.
type Item struct {
	Source    string
	Title     string
	Summary   string
	Link      string
	Published *time.Time
}
