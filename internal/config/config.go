// Package config holds the viewer configuration: where oases come from,
// where their layout is cached, the background asset and the camera. Files
// may be YAML, TOML or JSON, chosen by extension.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"oasis-map/internal/anchor"
	"oasis-map/internal/camera"
	"oasis-map/internal/geom"
	"oasis-map/internal/layout"
)

// DefaultPath is the config file used when none is given on the command line.
const DefaultPath = "config/oasismap.yaml"

// Config is the full viewer configuration.
type Config struct {
	RemoteURL string `json:"remote_url" yaml:"remote_url" toml:"remote_url"`
	CacheDir  string `json:"cache_dir" yaml:"cache_dir" toml:"cache_dir"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFile   string `json:"log_file" yaml:"log_file" toml:"log_file"`
	// DetailURL is the oasis detail route; {id} is replaced by the oasis id.
	DetailURL string `json:"detail_url" yaml:"detail_url" toml:"detail_url"`
	Mode      string `json:"mode" yaml:"mode" toml:"mode"`

	Layout     Layout     `json:"layout" yaml:"layout" toml:"layout"`
	Camera     Camera     `json:"camera" yaml:"camera" toml:"camera"`
	Background Background `json:"background" yaml:"background" toml:"background"`
	Markers    Markers    `json:"markers" yaml:"markers" toml:"markers"`
	Debug      Debug      `json:"debug" yaml:"debug" toml:"debug"`
}

// Layout picks the default placement policy for new oases.
type Layout struct {
	Policy  string  `json:"policy" yaml:"policy" toml:"policy"`
	Columns int     `json:"columns" yaml:"columns" toml:"columns"`
	Spacing float32 `json:"spacing" yaml:"spacing" toml:"spacing"`
	Radius  float32 `json:"radius" yaml:"radius" toml:"radius"`
}

// Camera holds the travel bounds, glide settings and the initial rig.
type Camera struct {
	Bounds   camera.Bounds `json:"bounds" yaml:"bounds" toml:"bounds"`
	Step     float32       `json:"step" yaml:"step" toml:"step"`
	Duration float32       `json:"duration" yaml:"duration" toml:"duration"`
	Eye      geom.Vec3     `json:"eye" yaml:"eye" toml:"eye"`
	Target   geom.Vec3     `json:"target" yaml:"target" toml:"target"`
}

// Background describes the terrain asset and how it is anchored. Rotation is
// in degrees.
type Background struct {
	Model                string    `json:"model" yaml:"model" toml:"model"`
	TargetWidth          float32   `json:"target_width" yaml:"target_width" toml:"target_width"`
	ScaleMultiplier      float32   `json:"scale_multiplier" yaml:"scale_multiplier" toml:"scale_multiplier"`
	FallbackScale        float32   `json:"fallback_scale" yaml:"fallback_scale" toml:"fallback_scale"`
	Rotation             geom.Vec3 `json:"rotation" yaml:"rotation" toml:"rotation"`
	AnchorX              string    `json:"anchor_x" yaml:"anchor_x" toml:"anchor_x"`
	AnchorZ              string    `json:"anchor_z" yaml:"anchor_z" toml:"anchor_z"`
	TargetX              float32   `json:"target_x" yaml:"target_x" toml:"target_x"`
	TargetZ              float32   `json:"target_z" yaml:"target_z" toml:"target_z"`
	Offset               geom.Vec3 `json:"offset" yaml:"offset" toml:"offset"`
	AnchorBeforeRotation bool      `json:"anchor_before_rotation" yaml:"anchor_before_rotation" toml:"anchor_before_rotation"`
}

// Markers is the model drawn for every oasis. Empty means a cube.
type Markers struct {
	Model string `json:"model" yaml:"model" toml:"model"`
}

// Debug holds the overlay toggles.
type Debug struct {
	ShowFPS      bool `json:"show_fps" yaml:"show_fps" toml:"show_fps"`
	ShowMemAlloc bool `json:"show_memalloc" yaml:"show_memalloc" toml:"show_memalloc"`
	GridVisible  bool `json:"grid_visible" yaml:"grid_visible" toml:"grid_visible"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RemoteURL: "http://localhost:8080",
		CacheDir:  ".cache",
		LogLevel:  "info",
		LogFile:   "logs/oasismap.log",
		DetailURL: "/oasis/{id}",
		Mode:      "map",
		Layout:    Layout{Policy: "grid", Columns: 4, Spacing: 6, Radius: 12},
		Camera: Camera{
			Bounds:   camera.DefaultBounds(),
			Step:     camera.DefaultStep,
			Duration: camera.DefaultDuration,
			Eye:      geom.Vec3{0, 18, 22},
			Target:   geom.Vec3{0, 0, 0},
		},
		Background: Background{
			Model:       "assets/models/island.glb",
			TargetWidth: 80,
			AnchorX:     "center",
			AnchorZ:     "max",
			TargetZ:     15,
		},
		Debug: Debug{GridVisible: false},
	}
}

type format int

const (
	formatYAML format = iota
	formatTOML
	formatJSON
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".toml":
		return formatTOML, nil
	case ".json":
		return formatJSON, nil
	}
	return 0, fmt.Errorf("config: unsupported file type %q", filepath.Ext(path))
}

// Load reads path over Default(). A missing file is not an error.
func Load(path string) (Config, error) {
	c := Default()
	f, err := formatOf(path)
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c, nil
		}
		return c, fmt.Errorf("config: %w", err)
	}
	if err := decode(f, data, &c); err != nil {
		return Default(), fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

func decode(f format, data []byte, c *Config) error {
	switch f {
	case formatTOML:
		return toml.Unmarshal(data, c)
	case formatJSON:
		return json.Unmarshal(data, c)
	default:
		return yaml.Unmarshal(data, c)
	}
}

// Save writes c to path, creating its directory.
func Save(path string, c Config) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}
	var data []byte
	switch f {
	case formatTOML:
		data, err = toml.Marshal(c)
	case formatJSON:
		data, err = json.MarshalIndent(c, "", "\t")
	default:
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if err := c.Camera.Bounds.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Camera.Step <= 0 {
		errs = append(errs, fmt.Errorf("config: camera.step must be positive, got %g", c.Camera.Step))
	}
	if c.Camera.Duration <= 0 {
		errs = append(errs, fmt.Errorf("config: camera.duration must be positive, got %g", c.Camera.Duration))
	}
	if c.Background.TargetWidth <= 0 {
		errs = append(errs, fmt.Errorf("config: background.target_width must be positive, got %g", c.Background.TargetWidth))
	}
	if _, err := c.AnchorSpec(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Generator(); err != nil {
		errs = append(errs, err)
	}
	if c.RemoteURL == "" {
		errs = append(errs, errors.New("config: remote_url is required"))
	}
	return errors.Join(errs...)
}

// AnchorSpec converts the background settings.
func (c Config) AnchorSpec() (anchor.Spec, error) {
	b := c.Background
	ax, err := geom.ParseEdge(b.AnchorX)
	if err != nil {
		return anchor.Spec{}, fmt.Errorf("config: background.anchor_x: %w", err)
	}
	az, err := geom.ParseEdge(b.AnchorZ)
	if err != nil {
		return anchor.Spec{}, fmt.Errorf("config: background.anchor_z: %w", err)
	}
	return anchor.Spec{
		TargetWidth:     b.TargetWidth,
		ScaleMultiplier: b.ScaleMultiplier,
		FallbackScale:   b.FallbackScale,
		Rotation: geom.Vec3{
			mgl32.DegToRad(b.Rotation.X()),
			mgl32.DegToRad(b.Rotation.Y()),
			mgl32.DegToRad(b.Rotation.Z()),
		},
		AnchorX:              ax,
		AnchorZ:              az,
		TargetX:              b.TargetX,
		TargetZ:              b.TargetZ,
		Offset:               b.Offset,
		AnchorBeforeRotation: b.AnchorBeforeRotation,
	}, nil
}

// Generator returns the default layout generator.
func (c Config) Generator() (layout.Generator, error) {
	return layout.NewGenerator(c.Layout.Policy, c.Layout.Columns, c.Layout.Spacing, c.Layout.Radius)
}

// Rig returns the initial camera rig.
func (c Config) Rig() camera.Rig {
	return camera.Rig{Eye: c.Camera.Eye, Target: c.Camera.Target}
}

// DetailRoute returns the detail route for id, escaped as a path segment.
func (c Config) DetailRoute(id string) string {
	return strings.ReplaceAll(c.DetailURL, "{id}", url.PathEscape(id))
}
