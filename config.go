package boolgo

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the static backend configuration. It mirrors the connection
// settings a host framework passes per site.
type Config struct {
	// Path is the directory the index lives in. Required.
	Path string `yaml:"path"`

	// Language selects the stemming language. Defaults to "english".
	Language string `yaml:"language"`

	// IncludeSpelling populates the spelling dictionary during indexing and
	// enables suggestions in search results.
	IncludeSpelling bool `yaml:"include_spelling"`

	// Codec names the payload/schema codec ("json", "go-json"). Empty picks
	// the default.
	Codec string `yaml:"codec"`
}

// LoadConfig reads a Config from a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("boolgo: read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("boolgo: parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Language == "" {
		c.Language = "english"
	}
}
