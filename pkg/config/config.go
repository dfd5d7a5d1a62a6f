package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/umputun/feedwatch/pkg/domain"
	"github.com/umputun/feedwatch/pkg/notify"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Telegram TelegramConfig `yaml:"telegram" json:"telegram" jsonschema:"description=Telegram destination and bot settings"`
	Watch    WatchConfig    `yaml:"watch" json:"watch" jsonschema:"description=Keyword matching and tier rules"`
	Feeds    []Feed         `yaml:"feeds" json:"feeds" jsonschema:"minItems=1,description=Feeds to poll in this order"`
	Schedule ScheduleConfig `yaml:"schedule" json:"schedule" jsonschema:"description=Polling and sending pace"`
	Cache    CacheConfig    `yaml:"cache" json:"cache" jsonschema:"description=Dedup cache limits"`
	Server   ServerConfig   `yaml:"server" json:"server" jsonschema:"description=Status HTTP server"`
	Journal  JournalConfig  `yaml:"journal" json:"journal" jsonschema:"description=Delivery journal"`
}

// TelegramConfig holds the destination chat and bot settings
type TelegramConfig struct {
	Token          string        `yaml:"token" json:"token" jsonschema:"description=Bot token (can use environment variable)"`
	ChatID         string        `yaml:"chat_id" json:"chat_id" jsonschema:"required,description=Destination chat id or @channel"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=10s,description=Bot API poll timeout"`
	Commands       bool          `yaml:"commands" json:"commands" jsonschema:"default=false,description=Answer /start and /status commands"`
	ElevatedHeader string        `yaml:"elevated_header" json:"elevated_header" jsonschema:"default=Official notice,description=Header of elevated messages"`
}

// WatchConfig holds the interest list and the elevated tier rule
type WatchConfig struct {
	Keywords       []string `yaml:"keywords" json:"keywords" jsonschema:"minItems=1,description=Case-insensitive title keywords"`
	PrimarySource  string   `yaml:"primary_source" json:"primary_source" jsonschema:"description=Feed name whose official posts are elevated"`
	OfficialAuthor string   `yaml:"official_author" json:"official_author" jsonschema:"description=Author of elevated posts on the primary source"`
}

// Feed represents a feed to poll
type Feed struct {
	Name  string `yaml:"name" json:"name" jsonschema:"description=Feed name, defaults to URL"`
	URL   string `yaml:"url" json:"url" jsonschema:"required,description=Feed URL"`
	Badge string `yaml:"badge" json:"badge" jsonschema:"description=Emoji shown next to the feed name"`
}

// ScheduleConfig holds polling and sending pace
type ScheduleConfig struct {
	CheckInterval time.Duration `yaml:"check_interval" json:"check_interval" jsonschema:"default=30s,description=Pause between the end of one cycle and the next"`
	SendPacing    time.Duration `yaml:"send_pacing" json:"send_pacing" jsonschema:"default=3s,description=Pause after every send attempt"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout" json:"fetch_timeout" jsonschema:"default=30s,description=Feed request timeout"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=feedwatch/1.0,description=User agent for feed requests"`
}

// CacheConfig holds dedup cache limits
type CacheConfig struct {
	TTL     time.Duration `yaml:"ttl" json:"ttl" jsonschema:"default=24h,description=How long a notified item is remembered"`
	MaxSize int           `yaml:"max_size" json:"max_size" jsonschema:"default=1000,minimum=1,description=Maximum remembered items"`
}

// ServerConfig holds status server settings
type ServerConfig struct {
	Listen  string        `yaml:"listen" json:"listen" jsonschema:"description=Status server listen address, empty disables it"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
}

// JournalConfig holds delivery journal settings
type JournalConfig struct {
	Path      string        `yaml:"path" json:"path" jsonschema:"description=SQLite file for the delivery journal, empty disables it"`
	Retention time.Duration `yaml:"retention" json:"retention" jsonschema:"default=168h,description=How long delivery records are kept"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	// set defaults for telegram
	if c.Telegram.Timeout == 0 {
		c.Telegram.Timeout = 10 * time.Second
	}
	if c.Telegram.ElevatedHeader == "" {
		c.Telegram.ElevatedHeader = notify.DefaultElevatedHeader
	}

	// feed name defaults to URL
	for i := range c.Feeds {
		c.Feeds[i].Name = strings.TrimSpace(c.Feeds[i].Name)
		if c.Feeds[i].Name == "" {
			c.Feeds[i].Name = c.Feeds[i].URL
		}
	}

	// set defaults for schedule
	if c.Schedule.CheckInterval == 0 {
		c.Schedule.CheckInterval = 30 * time.Second
	}
	if c.Schedule.SendPacing == 0 {
		c.Schedule.SendPacing = 3 * time.Second
	}
	if c.Schedule.FetchTimeout == 0 {
		c.Schedule.FetchTimeout = 30 * time.Second
	}
	if c.Schedule.UserAgent == "" {
		c.Schedule.UserAgent = "feedwatch/1.0"
	}

	// set defaults for cache
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 24 * time.Hour
	}
	if c.Cache.MaxSize == 0 {
		c.Cache.MaxSize = 1000
	}

	// set defaults for server and journal
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}
	if c.Journal.Retention == 0 {
		c.Journal.Retention = 7 * 24 * time.Hour
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Telegram.ChatID) == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}

	if len(cfg.Feeds) == 0 {
		return fmt.Errorf("at least one feed is required")
	}
	names := make(map[string]bool, len(cfg.Feeds))
	for i, f := range cfg.Feeds {
		if strings.TrimSpace(f.URL) == "" {
			return fmt.Errorf("feeds[%d].url is required", i)
		}
		if names[f.Name] {
			return fmt.Errorf("duplicate feed name %q", f.Name)
		}
		names[f.Name] = true
	}

	hasKeyword := false
	for _, kw := range cfg.Watch.Keywords {
		if strings.TrimSpace(kw) != "" {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		return fmt.Errorf("watch.keywords must have at least one non-empty keyword")
	}
	if cfg.Watch.PrimarySource != "" && !names[cfg.Watch.PrimarySource] {
		return fmt.Errorf("watch.primary_source %q is not a configured feed", cfg.Watch.PrimarySource)
	}

	if cfg.Schedule.CheckInterval < time.Second {
		return fmt.Errorf("schedule.check_interval must be at least 1 second")
	}
	if cfg.Schedule.SendPacing < 0 {
		return fmt.Errorf("schedule.send_pacing must be non-negative")
	}
	if cfg.Schedule.FetchTimeout < time.Second {
		return fmt.Errorf("schedule.fetch_timeout must be at least 1 second")
	}

	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	if cfg.Cache.MaxSize < 1 {
		return fmt.Errorf("cache.max_size must be at least 1")
	}

	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	return nil
}

// Sources returns configured feeds in polling order
func (c *Config) Sources() []domain.Source {
	res := make([]domain.Source, 0, len(c.Feeds))
	for _, f := range c.Feeds {
		res = append(res, domain.Source{Name: f.Name, URL: f.URL, Badge: f.Badge})
	}
	return res
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}
