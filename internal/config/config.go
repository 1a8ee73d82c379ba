package config

import (
	"os"
	"time"

	"econquest-progress-service/internal/domain"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Activity struct {
		TTL string `yaml:"ttl"`
	} `yaml:"activity"`
	Game GameDefaults `yaml:"game"`
}

// GameDefaults seed the settings row the first time it is created.
type GameDefaults struct {
	XPBase             *int `yaml:"xp_base"`
	XPGrowth           *int `yaml:"xp_growth"`
	MaxAttemptsDefault *int `yaml:"max_attempts_default"`
	UnlimitedAttempts  bool `yaml:"unlimited_attempts"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Settings overlays the configured defaults on the built-in ones.
func (g GameDefaults) Settings() domain.GameSettings {
	s := domain.DefaultGameSettings()
	if g.XPBase != nil {
		s.XPBase = *g.XPBase
	}
	if g.XPGrowth != nil {
		s.XPGrowth = *g.XPGrowth
	}
	if g.MaxAttemptsDefault != nil {
		limit := *g.MaxAttemptsDefault
		s.MaxAttemptsDefault = &limit
	}
	if g.UnlimitedAttempts {
		s.MaxAttemptsDefault = nil
	}
	return s
}
