package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	// parse schema
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(embeddedSchema), &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	// convert config to JSON for validation
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	var configMap map[string]interface{}
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	// every top-level section declared by the schema must be present
	if defs, ok := schema["$defs"].(map[string]interface{}); ok {
		if root, ok := defs["Config"].(map[string]interface{}); ok {
			if props, ok := root["properties"].(map[string]interface{}); ok {
				for name := range props {
					if _, found := configMap[name]; !found {
						return fmt.Errorf("missing section %q", name)
					}
				}
			}
		}
	}

	// basic validation - check required fields match
	if err := validateRequiredFields(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// validateRequiredFields performs basic validation of required fields
func validateRequiredFields(cfg *Config) error {
	if cfg.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if len(cfg.Feeds) == 0 {
		return fmt.Errorf("feeds are required")
	}
	for i, f := range cfg.Feeds {
		if f.URL == "" {
			return fmt.Errorf("feeds[%d].url is required", i)
		}
		if !strings.HasPrefix(f.URL, "http://") && !strings.HasPrefix(f.URL, "https://") {
			return fmt.Errorf("feeds[%d].url must be http or https, got %q", i, f.URL)
		}
	}
	if len(cfg.Watch.Keywords) == 0 {
		return fmt.Errorf("watch.keywords are required")
	}
	if cfg.Schedule.CheckInterval == 0 {
		return fmt.Errorf("schedule.check_interval is required")
	}
	if cfg.Cache.MaxSize == 0 {
		return fmt.Errorf("cache.max_size is required")
	}
	if cfg.Server.Listen != "" && cfg.Server.Timeout == 0 {
		return fmt.Errorf("server.timeout is required when server is enabled")
	}
	return nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() (*jsonschema.Schema, error) {
	return jsonschema.Reflect(&Config{}), nil
}
