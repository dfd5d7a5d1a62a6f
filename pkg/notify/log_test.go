package notify_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-pkgz/lgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedwatch/pkg/domain"
	"github.com/umputun/feedwatch/pkg/notify"
)

func TestLog_Notify(t *testing.T) {
	buf := &bytes.Buffer{}
	l := notify.NewLog(lgr.New(lgr.Out(buf)), []domain.Source{{Name: "official", Badge: "🛰️"}}, "Official update")

	err := l.Notify(context.Background(), domain.Item{
		Title: "foo released", Link: "https://example.com/1", Source: "official", Tier: domain.TierElevated,
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "dry run, elevated item from official")
	assert.Contains(t, out, "<b>Official update 🛰️</b>")
	assert.Contains(t, out, `<a href="https://example.com/1">foo released</a>`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	buf.Reset()
	assert.ErrorIs(t, l.Notify(ctx, domain.Item{Title: "x"}), context.Canceled)
	assert.Empty(t, buf.String())
}
