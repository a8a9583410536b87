package main

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/tileraster"
)

// Config is the scene and output description of a render run.
type Config struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Output string `toml:"output"`

	// DepthOutput, when set, also writes the depth target.
	DepthOutput string `toml:"depth_output"`

	// Frames > 1 numbers the output files and animates the camera and the
	// light intensity.
	Frames int     `toml:"frames"`
	Step   float32 `toml:"step"`

	Backend  string `toml:"backend"`
	Workers  int    `toml:"workers"`
	LogLevel string `toml:"log_level"`
	Debug    bool   `toml:"debug"`

	MaxTileEntries int `toml:"max_tile_entries"`

	Scene SceneConfig `toml:"scene"`
}

// SceneConfig places the mesh and the camera.
type SceneConfig struct {
	// Mesh is one of "triangle", "cube" or "sphere".
	Mesh     string     `toml:"mesh"`
	Segments int        `toml:"segments"`
	Scale    float32    `toml:"scale"`
	Position [3]float32 `toml:"position"`

	Eye    [3]float32 `toml:"eye"`
	Target [3]float32 `toml:"target"`
	FOV    float32    `toml:"fov"`

	Background [4]float32 `toml:"background"`
	BaseColor  [3]float32 `toml:"base_color"`
}

// DefaultConfig returns a single-frame render of the fallback triangle.
func DefaultConfig() Config {
	return Config{
		Width:          640,
		Height:         480,
		Output:         "tileraster.png",
		Frames:         1,
		Step:           0.1,
		Backend:        "cpu",
		LogLevel:       "info",
		MaxTileEntries: tileraster.DefaultMaxTileEntries,
		Scene: SceneConfig{
			Mesh:       "triangle",
			Segments:   24,
			Scale:      1,
			Eye:        [3]float32{0, 4, -16},
			Target:     [3]float32{0, 4, 0},
			FOV:        60,
			Background: [4]float32{0.05, 0.05, 0.08, 1},
			BaseColor:  [3]float32{1, 1, 0.5},
		},
	}
}

// LoadConfig decodes path over the defaults. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("%s: %s", path, strict.String())
		}
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the config and returns the first problem found.
func (c *Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("size %dx%d must be positive", c.Width, c.Height)
	case c.Frames <= 0:
		return fmt.Errorf("frames %d must be positive", c.Frames)
	case c.Output == "":
		return errors.New("output path is empty")
	case c.MaxTileEntries <= 0 || c.MaxTileEntries > tileraster.MaxTileEntries:
		return fmt.Errorf("max_tile_entries %d outside [1, %d]", c.MaxTileEntries, tileraster.MaxTileEntries)
	case c.Scene.Scale <= 0:
		return fmt.Errorf("scene.scale %g must be positive", c.Scene.Scale)
	case c.Scene.FOV <= 0 || c.Scene.FOV >= 180:
		return fmt.Errorf("scene.fov %g must be in (0, 180)", c.Scene.FOV)
	case c.Scene.Eye == c.Scene.Target:
		return errors.New("scene.eye and scene.target coincide")
	}
	if _, err := c.backend(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	for _, p := range []string{c.Output, c.DepthOutput} {
		if p == "" {
			continue
		}
		if _, err := formatFor(p); err != nil {
			return err
		}
	}
	switch c.Scene.Mesh {
	case "triangle", "cube":
	case "sphere":
		if c.Scene.Segments < 3 {
			return fmt.Errorf("scene.segments %d must be at least 3", c.Scene.Segments)
		}
	default:
		return fmt.Errorf("unknown scene.mesh %q", c.Scene.Mesh)
	}
	return nil
}

func (c *Config) backend() (tileraster.Backend, error) {
	switch strings.ToLower(c.Backend) {
	case "cpu", "":
		return tileraster.BackendCPU, nil
	case "gpu":
		return tileraster.BackendGPU, nil
	default:
		return 0, fmt.Errorf("unknown backend %q", c.Backend)
	}
}

// fovRadians returns the vertical field of view in radians.
func (s *SceneConfig) fovRadians() float32 {
	return s.FOV * math.Pi / 180
}

// framePath returns the output path of frame i. Multi-frame runs insert a
// zero-padded frame number before the extension.
func (c *Config) framePath(path string, i int) string {
	if c.Frames <= 1 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%03d%s", strings.TrimSuffix(path, ext), i, ext)
}
