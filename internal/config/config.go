// Package config handles configuration loading for the grid server.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Data   DataConfig   `yaml:"data"`
	Cache  CacheConfig  `yaml:"cache"`
	Render RenderConfig `yaml:"render"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// DataConfig contains neuPrint data source settings.
type DataConfig struct {
	NeuPrintURI      string `yaml:"neuprint_uri"`
	NeuPrintUser     string `yaml:"neuprint_user"`
	NeuPrintPassword string `yaml:"neuprint_password"`
	NeuPrintDatabase string `yaml:"neuprint_database"`
	Dataset          string `yaml:"dataset"`
}

// CacheConfig contains caching settings.
type CacheConfig struct {
	GridSizeMB     int    `yaml:"grid_size_mb"`
	GridTTLMinutes int    `yaml:"grid_ttl_minutes"`
	QueryCacheSize int    `yaml:"query_cache_size"`
	StorePath      string `yaml:"store_path"`
	StoreTTLHours  int    `yaml:"store_ttl_hours"`
}

// RenderConfig contains rendering settings.
type RenderConfig struct {
	HexSize       float64 `yaml:"hex_size"`
	SpacingFactor float64 `yaml:"spacing_factor"`
	PNGWidth      int     `yaml:"png_width"`
	PNGHeight     int     `yaml:"png_height"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return default config if file doesn't exist
		return DefaultConfig(), nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Data: DataConfig{
			NeuPrintURI: "neo4j://localhost:7687",
			Dataset:     "optic-lobe:v1.0",
		},
		Cache: CacheConfig{
			GridSizeMB:     256,
			GridTTLMinutes: 60,
			QueryCacheSize: 512,
			StorePath:      "./data/grids.sqlite",
			StoreTTLHours:  24,
		},
		Render: RenderConfig{
			HexSize:       12,
			SpacingFactor: 1.05,
			PNGWidth:      800,
			PNGHeight:     800,
		},
	}
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = defaults.Server.CORSOrigins
	}
	if cfg.Data.NeuPrintURI == "" {
		cfg.Data.NeuPrintURI = defaults.Data.NeuPrintURI
	}
	if cfg.Data.Dataset == "" {
		cfg.Data.Dataset = defaults.Data.Dataset
	}
	if cfg.Cache.GridSizeMB == 0 {
		cfg.Cache.GridSizeMB = defaults.Cache.GridSizeMB
	}
	if cfg.Cache.GridTTLMinutes == 0 {
		cfg.Cache.GridTTLMinutes = defaults.Cache.GridTTLMinutes
	}
	if cfg.Cache.QueryCacheSize == 0 {
		cfg.Cache.QueryCacheSize = defaults.Cache.QueryCacheSize
	}
	if cfg.Cache.StoreTTLHours == 0 {
		cfg.Cache.StoreTTLHours = defaults.Cache.StoreTTLHours
	}
	if cfg.Render.HexSize == 0 {
		cfg.Render.HexSize = defaults.Render.HexSize
	}
	if cfg.Render.SpacingFactor == 0 {
		cfg.Render.SpacingFactor = defaults.Render.SpacingFactor
	}
	if cfg.Render.PNGWidth == 0 {
		cfg.Render.PNGWidth = defaults.Render.PNGWidth
	}
	if cfg.Render.PNGHeight == 0 {
		cfg.Render.PNGHeight = defaults.Render.PNGHeight
	}
}
