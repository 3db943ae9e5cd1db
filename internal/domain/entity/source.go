package entity

// Source is a configured feed to pull items from.
// Name may be empty, in which case the feed's self-declared title is used
// as the item source label.
type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Validate checks that the source points at a fetchable feed URL.
// Name is optional by design.
func (s *Source) Validate() error {
	return ValidateURL(s.URL)
}
