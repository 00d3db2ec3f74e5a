// Package config handles viewer and map compiler configuration.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Map      MapConfig      `yaml:"map"`
	Mesh     MeshConfig     `yaml:"mesh"`
	Memory   MemoryConfig   `yaml:"memory"`
	Watch    WatchConfig    `yaml:"watch"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	FPSLimit   int     `yaml:"fps_limit"`
	FOV        float32 `yaml:"fov"` // vertical, degrees
	Wireframe  bool    `yaml:"wireframe"`
}

// MapConfig selects the level and how map units translate to world units.
type MapConfig struct {
	Path      string  `yaml:"path"`
	UnitScale float32 `yaml:"unit_scale"` // map units per world unit
}

// MeshConfig bounds the size of a single brush mesh.
type MeshConfig struct {
	MaxPlanes    int  `yaml:"max_planes"`
	MaxVertices  int  `yaml:"max_vertices"`
	MaxIndices   int  `yaml:"max_indices"`
	SplitUVSeams bool `yaml:"split_uv_seams"`
}

// MemoryConfig sizes the arenas used while loading a level.
type MemoryConfig struct {
	TransientFaces    int `yaml:"transient_faces"`
	PermanentVertices int `yaml:"permanent_vertices"`
	PermanentIndices  int `yaml:"permanent_indices"`
}

// WatchConfig controls hot reload of the map file.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
			FOV:        70,
		},
		Map: MapConfig{
			Path:      "assets/maps/start.map",
			UnitScale: 40,
		},
		Mesh: MeshConfig{
			MaxPlanes:   100,
			MaxVertices: 500,
			MaxIndices:  1500,
		},
		Memory: MemoryConfig{
			TransientFaces:    4096,
			PermanentVertices: 1 << 18,
			PermanentIndices:  3 << 18,
		},
		Watch: WatchConfig{
			Enabled:  false,
			Debounce: 100 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
	}
}

// ErrInvalidConfig is wrapped by every Validate error.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks values that would make loading impossible.
func (c *Config) Validate() error {
	switch {
	case c.Map.UnitScale <= 0:
		return fmt.Errorf("%w: map.unit_scale must be positive, got %g", ErrInvalidConfig, c.Map.UnitScale)
	case c.Mesh.MaxPlanes <= 0 || c.Mesh.MaxVertices <= 0 || c.Mesh.MaxIndices <= 0:
		return fmt.Errorf("%w: mesh limits must be positive", ErrInvalidConfig)
	case c.Mesh.MaxIndices%3 != 0:
		return fmt.Errorf("%w: mesh.max_indices must be a multiple of 3, got %d", ErrInvalidConfig, c.Mesh.MaxIndices)
	case c.Memory.TransientFaces < 2*(6+c.Mesh.MaxPlanes):
		return fmt.Errorf("%w: memory.transient_faces must hold two polyhedra of %d faces", ErrInvalidConfig, 6+c.Mesh.MaxPlanes)
	case c.Memory.PermanentVertices < c.Mesh.MaxVertices || c.Memory.PermanentIndices < c.Mesh.MaxIndices:
		return fmt.Errorf("%w: permanent memory smaller than one brush mesh", ErrInvalidConfig)
	case c.Watch.Debounce < 0:
		return fmt.Errorf("%w: watch.debounce must not be negative", ErrInvalidConfig)
	}
	return nil
}
