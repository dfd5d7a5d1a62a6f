package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedwatch/pkg/domain"
	"github.com/umputun/feedwatch/pkg/notify"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		path := writeConfig(t, `
telegram:
  token: "123:abc"
  chat_id: "@news"
  commands: true
  elevated_header: "Official update"
watch:
  keywords: ["foo", "bar baz"]
  primary_source: official
  official_author: OFFICIAL
feeds:
  - name: official
    url: https://example.com/official.rss
    badge: "📢"
  - name: community
    url: https://example.com/community.rss
schedule:
  check_interval: 1m
  send_pacing: 2s
  fetch_timeout: 15s
  user_agent: test-agent
cache:
  ttl: 12h
  max_size: 50
server:
  listen: ":8080"
  timeout: 10s
journal:
  path: /tmp/feedwatch.db
  retention: 24h
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "123:abc", cfg.Telegram.Token)
		assert.Equal(t, "@news", cfg.Telegram.ChatID)
		assert.True(t, cfg.Telegram.Commands)
		assert.Equal(t, "Official update", cfg.Telegram.ElevatedHeader)
		assert.Equal(t, []string{"foo", "bar baz"}, cfg.Watch.Keywords)
		assert.Equal(t, "official", cfg.Watch.PrimarySource)
		assert.Equal(t, "OFFICIAL", cfg.Watch.OfficialAuthor)
		assert.Equal(t, time.Minute, cfg.Schedule.CheckInterval)
		assert.Equal(t, 2*time.Second, cfg.Schedule.SendPacing)
		assert.Equal(t, 15*time.Second, cfg.Schedule.FetchTimeout)
		assert.Equal(t, "test-agent", cfg.Schedule.UserAgent)
		assert.Equal(t, 12*time.Hour, cfg.Cache.TTL)
		assert.Equal(t, 50, cfg.Cache.MaxSize)
		assert.Equal(t, "/tmp/feedwatch.db", cfg.Journal.Path)
		assert.Equal(t, 24*time.Hour, cfg.Journal.Retention)

		listen, timeout := cfg.GetServerConfig()
		assert.Equal(t, ":8080", listen)
		assert.Equal(t, 10*time.Second, timeout)

		assert.Equal(t, []domain.Source{
			{Name: "official", URL: "https://example.com/official.rss", Badge: "📢"},
			{Name: "community", URL: "https://example.com/community.rss"},
		}, cfg.Sources())
	})

	t.Run("defaults", func(t *testing.T) {
		path := writeConfig(t, `
telegram:
  chat_id: "-100123"
watch:
  keywords: [foo]
feeds:
  - url: https://example.com/rss
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 10*time.Second, cfg.Telegram.Timeout)
		assert.Equal(t, notify.DefaultElevatedHeader, cfg.Telegram.ElevatedHeader)
		assert.False(t, cfg.Telegram.Commands)
		assert.Equal(t, "https://example.com/rss", cfg.Feeds[0].Name, "name defaults to url")
		assert.Equal(t, 30*time.Second, cfg.Schedule.CheckInterval)
		assert.Equal(t, 3*time.Second, cfg.Schedule.SendPacing)
		assert.Equal(t, 30*time.Second, cfg.Schedule.FetchTimeout)
		assert.Equal(t, "feedwatch/1.0", cfg.Schedule.UserAgent)
		assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
		assert.Equal(t, 1000, cfg.Cache.MaxSize)
		assert.Empty(t, cfg.Server.Listen)
		assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
		assert.Empty(t, cfg.Journal.Path)
		assert.Equal(t, 168*time.Hour, cfg.Journal.Retention)
	})

	t.Run("environment expansion", func(t *testing.T) {
		t.Setenv("FEEDWATCH_TEST_TOKEN", "env-token")
		path := writeConfig(t, `
telegram:
  token: ${FEEDWATCH_TEST_TOKEN}
  chat_id: "@news"
watch:
  keywords: [foo]
feeds:
  - url: https://example.com/rss
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "env-token", cfg.Telegram.Token)
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := Load("/nonexistent/config.yml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeConfig(t, "telegram: [broken")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name   string
		config string
		errMsg string
	}{
		{
			name:   "missing chat id",
			config: "watch: {keywords: [foo]}\nfeeds: [{url: 'https://a'}]",
			errMsg: "telegram.chat_id is required",
		},
		{
			name:   "no feeds",
			config: "telegram: {chat_id: '1'}\nwatch: {keywords: [foo]}",
			errMsg: "at least one feed is required",
		},
		{
			name:   "feed without url",
			config: "telegram: {chat_id: '1'}\nwatch: {keywords: [foo]}\nfeeds: [{name: a}]",
			errMsg: "feeds[0].url is required",
		},
		{
			name:   "duplicate feed names",
			config: "telegram: {chat_id: '1'}\nwatch: {keywords: [foo]}\nfeeds: [{name: a, url: 'https://a'}, {name: a, url: 'https://b'}]",
			errMsg: `duplicate feed name "a"`,
		},
		{
			name:   "no keywords",
			config: "telegram: {chat_id: '1'}\nwatch: {keywords: ['  ']}\nfeeds: [{url: 'https://a'}]",
			errMsg: "watch.keywords must have at least one non-empty keyword",
		},
		{
			name:   "unknown primary source",
			config: "telegram: {chat_id: '1'}\nwatch: {keywords: [foo], primary_source: x}\nfeeds: [{name: a, url: 'https://a'}]",
			errMsg: `watch.primary_source "x" is not a configured feed`,
		},
		{
			name:   "check interval too short",
			config: "telegram: {chat_id: '1'}\nwatch: {keywords: [foo]}\nfeeds: [{url: 'https://a'}]\nschedule: {check_interval: 100ms}",
			errMsg: "schedule.check_interval must be at least 1 second",
		},
		{
			name:   "negative pacing",
			config: "telegram: {chat_id: '1'}\nwatch: {keywords: [foo]}\nfeeds: [{url: 'https://a'}]\nschedule: {send_pacing: -1s}",
			errMsg: "schedule.send_pacing must be non-negative",
		},
		{
			name:   "negative cache size",
			config: "telegram: {chat_id: '1'}\nwatch: {keywords: [foo]}\nfeeds: [{url: 'https://a'}]\ncache: {max_size: -5}",
			errMsg: "cache.max_size must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.config))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
