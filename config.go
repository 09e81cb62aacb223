package main

import (
	"fmt"
	"log/slog"

	"gopkg.in/ini.v1"
)

type Config struct {
	Paths    PathsConfig    `ini:"paths"`
	API      APIConfig      `ini:"api"`
	Download DownloadConfig `ini:"download"`
	Log      LogConfig      `ini:"log"`
}

type PathsConfig struct {
	SetsDir  string `ini:"sets_dir"`
	Database string `ini:"database"`
}

// APIConfig holds the osu! OAuth client and the browser session cookie
// needed for set downloads.
type APIConfig struct {
	BaseURL      string `ini:"base_url"`
	ClientID     int    `ini:"client_id"`
	ClientSecret string `ini:"client_secret"`
	Session      string `ini:"session"`
}

type DownloadConfig struct {
	Workers           int `ini:"workers"`
	RequestsPerMinute int `ini:"requests_per_minute"`
}

type LogConfig struct {
	Level string `ini:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			SetsDir:  "sets",
			Database: "cmania.db",
		},
		API: APIConfig{
			BaseURL: "https://osu.ppy.sh",
		},
		Download: DownloadConfig{
			Workers:           2,
			RequestsPerMinute: 30,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig overlays the ini file at path onto the defaults. A missing file
// is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := ini.LoadSources(ini.LoadOptions{Loose: true}, path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := f.MapTo(cfg); err != nil {
		return nil, fmt.Errorf("map config %s: %w", path, err)
	}
	if cfg.Download.Workers < 1 {
		cfg.Download.Workers = 1
	}
	if cfg.Download.RequestsPerMinute < 1 {
		return nil, fmt.Errorf("config %s: requests_per_minute must be positive", path)
	}
	return cfg, nil
}

func (c LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
