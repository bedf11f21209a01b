package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if c != Default() {
		t.Errorf("Load() = %+v, want defaults", c)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixelctl.yaml")
	data := `
listen: ":8080"
device: ws://10.0.0.7/ws
chunkDelay: 20ms
reconnectDelay: 0s
debug: true
width: -3
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	want := Default()
	want.Listen = ":8080"
	want.Device = "ws://10.0.0.7/ws"
	want.ChunkDelay = 20 * time.Millisecond
	want.ReconnectDelay = 0
	want.Debug = true

	if c != want {
		t.Errorf("Load() = %+v, want %+v", c, want)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("listen: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() of invalid yaml should fail")
	}
}

func TestNormalize(t *testing.T) {
	c := Config{ChunkSize: -1, PixelRatio: 1, ChunkDelay: -time.Second}.Normalize()

	if c.ChunkSize != 25 || c.PixelRatio != 10 || c.ChunkDelay != 50*time.Millisecond {
		t.Errorf("Normalize() = %+v", c)
	}
	if c.ReconnectDelay != 0 {
		t.Errorf("ReconnectDelay = %v, want 0 kept", c.ReconnectDelay)
	}
}
