package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerAddr     string        `yaml:"server_addr"`
	PrometheusAddr string        `yaml:"prometheus_addr"`
	APIKey         string        `yaml:"api_key"`
	StoreURL       string        `yaml:"store_url"`
	StoreToken     string        `yaml:"store_token"`
	StorePrefix    string        `yaml:"store_prefix"`
	StoreTimeout   time.Duration `yaml:"store_timeout"`
	SeriesCap      int           `yaml:"series_cap"`
	ChartTimezone  string        `yaml:"chart_timezone"`
	LogLevel       string        `yaml:"log_level"`
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ServerAddr:   ":8080",
		StorePrefix:  "monke",
		StoreTimeout: 5 * time.Second,
		SeriesCap:    24,
		LogLevel:     "info",
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg, os.LookupEnv)
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}

	set(&cfg.StoreURL, "REDIS_URL", "UPSTASH_REDIS_URL")
	set(&cfg.StoreToken, "REDIS_TOKEN", "UPSTASH_REDIS_TOKEN")
	set(&cfg.APIKey, "MONKE_API_KEY")
	set(&cfg.ServerAddr, "PLAYERCOUNT_ADDR")
	set(&cfg.LogLevel, "PLAYERCOUNT_LOG_LEVEL")
}
