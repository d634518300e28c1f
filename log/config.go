package log

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes the content of the optional log config file.
// Filters use zapfilter rule syntax, e.g. "debug:ingest.* info:*".
type Config struct {
	DefaultLevel string `yaml:"defaultLevel"`
	Filters      string `yaml:"filters"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
