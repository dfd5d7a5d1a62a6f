package notify

import (
	"context"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedwatch/pkg/domain"
)

// Log writes formatted items to the log instead of sending them, used for dry runs
type Log struct {
	lgr            lgr.L
	badges         map[string]string
	elevatedHeader string
}

// NewLog makes a Log notifier writing to l, lgr.Default() if nil
func NewLog(l lgr.L, sources []domain.Source, elevatedHeader string) *Log {
	if l == nil {
		l = lgr.Default()
	}
	res := &Log{lgr: l, badges: make(map[string]string, len(sources)), elevatedHeader: elevatedHeader}
	for _, s := range sources {
		res.badges[s.Name] = s.Badge
	}
	return res
}

// Notify logs the message which would be sent for the item
func (l *Log) Notify(ctx context.Context, item domain.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.lgr.Logf("[INFO] dry run, %s item from %s:\n%s", item.Tier, item.Source, Format(item, l.badges[item.Source], l.elevatedHeader))
	return nil
}
