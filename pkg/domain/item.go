package domain

import "time"

// KeySeparator joins source and link in a dedup key
const KeySeparator = ":"

// Tier is the priority class of a matched item
type Tier int

// tiers, elevated items are dispatched first with a distinguished header
const (
	TierNormal Tier = iota
	TierElevated
)

// String returns the tier name used in logs and the journal
func (t Tier) String() string {
	if t == TierElevated {
		return "elevated"
	}
	return "normal"
}

// Entry is a raw feed entry as returned by a feed source
type Entry struct {
	Title     string
	Link      string
	Author    string
	Published *time.Time // nil if the feed has no publish time
	Updated   *time.Time // nil if the feed has no update time
}

// Item is a feed entry which matched the keywords and was classified
type Item struct {
	Title       string
	Link        string
	PublishedAt time.Time
	Source      string
	Tier        Tier
}

// Key returns the dedup key of the item. Two items with the same source and link
// are the same notification no matter how their titles drift.
func (i Item) Key() string {
	return Key(i.Source, i.Link)
}

// Key builds a dedup key from source name and link
func Key(source, link string) string {
	return source + KeySeparator + link
}
