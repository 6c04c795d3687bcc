package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the defaults loaded from the configuration file.
// Command line flags take precedence.
type Config struct {
	Width   float64 `toml:"width"`
	Height  float64 `toml:"height"`
	Backend string  `toml:"backend"`
	Strict  bool    `toml:"strict"`
	Verbose bool    `toml:"verbose"`
}

const (
	backendRaster = "raster"
	backendCanvas = "canvas"
	backendPDF    = "pdf"
)

// loadConfig reads the TOML file at path. An empty path
// returns the zero Config.
func loadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if err := checkBackend(cfg.Backend); err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

func checkBackend(backend string) error {
	switch backend {
	case "", backendRaster, backendCanvas, backendPDF:
		return nil
	}
	return fmt.Errorf("unknown backend %q", backend)
}
