package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration, loaded from yaml with env overrides.
type Config struct {
	Server  ServerConfig `yaml:"server" json:"server"`
	Data    DataConfig   `yaml:"data" json:"data"`
	Balance Balance      `yaml:"balance" json:"balance"`
	WorldID WorldID      `yaml:"world_id" json:"world_id"`
}

type ServerConfig struct {
	Port string `yaml:"port" json:"port"`
}

type DataConfig struct {
	Dir    string `yaml:"dir" json:"dir"`
	DBFile string `yaml:"db_file" json:"db_file"`
}

// WorldID configures the proof-of-humanity integration.
type WorldID struct {
	AppID        string `yaml:"app_id" json:"app_id"`
	ClaimSignKey string `yaml:"claim_sign_key" json:"claim_sign_key"`
	// DevMode accepts any proof without calling out to the verifier backend.
	DevMode bool `yaml:"dev_mode" json:"dev_mode"`
}

// AutosaveConfig controls the session save scheduler.
type AutosaveConfig struct {
	DebounceSeconds int `yaml:"debounce_seconds" json:"debounce_seconds"`
	PeriodicSeconds int `yaml:"periodic_seconds" json:"periodic_seconds"`
}

func (a AutosaveConfig) Debounce() time.Duration {
	return time.Duration(a.DebounceSeconds) * time.Second
}

func (a AutosaveConfig) Periodic() time.Duration {
	return time.Duration(a.PeriodicSeconds) * time.Second
}

// Load reads a yaml config file, fills defaults, and applies env overrides.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	c.ApplyDefaults()
	c.applyEnv()
	return &c, nil
}

// DefaultConfig returns a runnable configuration without a config file.
func DefaultConfig() *Config {
	c := &Config{}
	c.ApplyDefaults()
	c.applyEnv()
	return c
}

func (c *Config) ApplyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Data.DBFile == "" {
		c.Data.DBFile = "worldidle.db"
	}
	if c.WorldID.ClaimSignKey == "" {
		c.WorldID.ClaimSignKey = "dev-insecure-claim-key"
	}
	c.Balance.applyDefaults()
}
