package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/umputun/feedwatch/pkg/domain"
)

const defaultBadge = "📢"

// DefaultElevatedHeader is the header of elevated messages unless configured otherwise
const DefaultElevatedHeader = "Official notice"

// Format renders an item as Telegram HTML. Elevated items get a bold header with the source badge.
func Format(item domain.Item, badge, elevatedHeader string) string {
	if badge == "" {
		badge = defaultBadge
	}
	if elevatedHeader == "" {
		elevatedHeader = DefaultElevatedHeader
	}

	title := item.Title
	if title == "" {
		title = item.Link
	}
	linked := link(title, item.Link)
	source := html.EscapeString(item.Source)

	if item.Tier == domain.TierElevated {
		return fmt.Sprintf("🚨 <b>%s %s</b>\n\n🔔 Source: %s\n📎 Title: %s",
			html.EscapeString(elevatedHeader), badge, source, linked)
	}
	return fmt.Sprintf("🔔 Source: %s\n💬 Title: %s", source, linked)
}

// StartText is the reply to /start
func StartText(sources []domain.Source) string {
	var b strings.Builder
	b.WriteString("🤖 Feed watcher is running!\n\n📡 Watching these feeds:\n")
	for _, s := range sources {
		fmt.Fprintf(&b, "%s %s\n", badgeOf(s), s.Name)
	}
	return b.String()
}

// StatusText is the reply to /status
func StatusText(st domain.Status) string {
	var b strings.Builder
	b.WriteString("🤖 Feed watcher status:\n\n")
	for _, s := range st.Sources {
		fmt.Fprintf(&b, "%s %s: %s\n", badgeOf(s), s.Name, s.URL)
	}
	fmt.Fprintf(&b, "\n⏱️ Check interval: %s\n", st.Interval)
	fmt.Fprintf(&b, "📦 Cache: %d/%d\n", st.CacheSize, st.CacheCap)
	fmt.Fprintf(&b, "📨 Sent: %d, failed: %d, cycles: %d\n", st.Sent, st.Failed, st.Cycles)
	if !st.LastCycle.IsZero() {
		fmt.Fprintf(&b, "🕒 Last cycle: %s\n", st.LastCycle.Format("2006-01-02 15:04:05"))
	}
	return b.String()
}

func badgeOf(s domain.Source) string {
	if s.Badge == "" {
		return defaultBadge
	}
	return s.Badge
}

// link builds an HTML link, text and url are escaped
func link(text, url string) string {
	return fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(url), html.EscapeString(text))
}
