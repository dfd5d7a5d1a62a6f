// Package classify decides which feed entries are interesting and how urgent they are.
package classify

import (
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/umputun/feedwatch/pkg/domain"
)

// Config holds the interest list and the elevated-tier rule
type Config struct {
	Keywords       []string // case-insensitive title substrings
	PrimarySource  string   // the only source which may produce elevated items
	OfficialAuthor string   // author of elevated items on the primary source
}

// Classifier matches entries against keywords and assigns tiers
type Classifier struct {
	keywords       []string // lowercased, no empty values
	primarySource  string
	officialAuthor string
	policy         *bluemonday.Policy
	now            func() time.Time
}

// Option configures Classifier
type Option func(*Classifier)

// WithClock sets the time source used when an entry has no publish or update time
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) {
		if now != nil {
			c.now = now
		}
	}
}

// New makes a Classifier. Blank keywords are ignored.
func New(cfg Config, opts ...Option) *Classifier {
	res := &Classifier{
		primarySource:  cfg.PrimarySource,
		officialAuthor: strings.TrimSpace(cfg.OfficialAuthor),
		policy:         bluemonday.StrictPolicy(),
		now:            time.Now,
	}
	for _, kw := range cfg.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		res.keywords = append(res.keywords, kw)
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Classify returns the item made from entry and true if the entry title contains any keyword.
// Entries without a match return false.
func (c *Classifier) Classify(entry domain.Entry, source string) (domain.Item, bool) {
	title := c.cleanTitle(entry.Title)
	if !c.Matches(title) {
		return domain.Item{}, false
	}

	item := domain.Item{
		Title:       title,
		Link:        strings.TrimSpace(entry.Link),
		PublishedAt: c.publishedAt(entry),
		Source:      source,
		Tier:        domain.TierNormal,
	}
	if c.isOfficial(entry, source) {
		item.Tier = domain.TierElevated
	}
	return item, true
}

// Matches reports whether title contains any of the keywords, ignoring case
func (c *Classifier) Matches(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range c.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Keywords returns the normalized keyword list
func (c *Classifier) Keywords() []string {
	res := make([]string, len(c.keywords))
	copy(res, c.keywords)
	return res
}

func (c *Classifier) isOfficial(entry domain.Entry, source string) bool {
	if c.officialAuthor == "" || source != c.primarySource {
		return false
	}
	return strings.TrimSpace(entry.Author) == c.officialAuthor
}

// publishedAt picks the publish time, then the update time, then the current time
func (c *Classifier) publishedAt(entry domain.Entry) time.Time {
	switch {
	case entry.Published != nil && !entry.Published.IsZero():
		return *entry.Published
	case entry.Updated != nil && !entry.Updated.IsZero():
		return *entry.Updated
	default:
		return c.now()
	}
}

// cleanTitle strips markup some feeds embed into titles and trims whitespace
func (c *Classifier) cleanTitle(title string) string {
	if strings.ContainsAny(title, "<&") {
		title = html.UnescapeString(c.policy.Sanitize(title))
	}
	return strings.TrimSpace(title)
}
