// Package config loads the panel's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Listen         string        `yaml:"listen"`
	Device         string        `yaml:"device"`
	Width          int           `yaml:"width"`
	Height         int           `yaml:"height"`
	PixelRatio     int           `yaml:"pixelRatio"`
	ChunkSize      int           `yaml:"chunkSize"`
	ChunkDelay     time.Duration `yaml:"chunkDelay"`
	ImageRows      int           `yaml:"imageRows"`
	ReconnectDelay time.Duration `yaml:"reconnectDelay"`
	ViewsFile      string        `yaml:"viewsFile"`
	Debug          bool          `yaml:"debug"`
}

func Default() Config {
	return Config{
		Listen:         ":9001",
		Device:         "ws://pixelclock.local/ws",
		Width:          64,
		Height:         32,
		PixelRatio:     10,
		ChunkSize:      25,
		ChunkDelay:     50 * time.Millisecond,
		ImageRows:      200,
		ReconnectDelay: 5 * time.Second,
		ViewsFile:      "pixelctl_views.json",
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	} else if err != nil {
		return c, fmt.Errorf("unable to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("unable to parse config %s: %w", path, err)
	}

	return c.Normalize(), nil
}

// Normalize replaces values that cannot work with their defaults. A reconnect delay of 0
// is kept: it turns redialling off.
func (c Config) Normalize() Config {
	d := Default()

	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.Device == "" {
		c.Device = d.Device
	}
	if c.Width < 1 {
		c.Width = d.Width
	}
	if c.Height < 1 {
		c.Height = d.Height
	}
	if c.PixelRatio < 2 {
		c.PixelRatio = d.PixelRatio
	}
	if c.ChunkSize < 1 {
		c.ChunkSize = d.ChunkSize
	}
	if c.ChunkDelay < 0 {
		c.ChunkDelay = d.ChunkDelay
	}
	if c.ImageRows < 1 {
		c.ImageRows = d.ImageRows
	}
	if c.ReconnectDelay < 0 {
		c.ReconnectDelay = d.ReconnectDelay
	}
	if c.ViewsFile == "" {
		c.ViewsFile = d.ViewsFile
	}

	return c
}
