package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// loadYAML overlays the values present in the YAML file at path onto cfg.
// Keys missing from the file keep their current value.
//
// Example:
//
//	port: 8080
//	database_dsn: /var/lib/blog/blog.db
//	token_ttl: 2h
//	allowed_origins: [https://blog.example.com]
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}
