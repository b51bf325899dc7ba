// Package config loads forcegraph settings from TOML or YAML files.
//
// Settings are grouped by concern (viewport, simulation, forces, render,
// server) and converted to a [sim.Config] with [Config.SimConfig]. Files are
// decoded on top of [Default], so a file only needs the keys it changes.
//
// The default location is $XDG_CONFIG_HOME/forcegraph/config.toml
// (~/.config/forcegraph/config.toml), overridden by FORCEGRAPH_CONFIG.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

const (
	// AppName is the directory name under XDG_CONFIG_HOME.
	AppName = "forcegraph"
	// FileName is the default config file name.
	FileName = "config.toml"
	// EnvVar overrides the config file location.
	EnvVar = "FORCEGRAPH_CONFIG"
)

// Config is the on-disk configuration.
type Config struct {
	Viewport   Viewport   `toml:"viewport" yaml:"viewport"`
	Simulation Simulation `toml:"simulation" yaml:"simulation"`
	Forces     Forces     `toml:"forces" yaml:"forces"`
	Render     Render     `toml:"render" yaml:"render"`
	Server     Server     `toml:"server" yaml:"server"`
}

// Viewport is the initial drawing area, centred on the origin.
type Viewport struct {
	Width  float64 `toml:"width" yaml:"width"`
	Height float64 `toml:"height" yaml:"height"`
}

// Simulation holds the cooling schedule and seeding.
type Simulation struct {
	Seed          uint64  `toml:"seed" yaml:"seed"`
	Seeding       string  `toml:"seeding" yaml:"seeding"`
	AlphaMin      float64 `toml:"alpha_min" yaml:"alpha_min"`
	AlphaDecay    float64 `toml:"alpha_decay" yaml:"alpha_decay"`
	VelocityDecay float64 `toml:"velocity_decay" yaml:"velocity_decay"`
	MaxTicks      int     `toml:"max_ticks" yaml:"max_ticks"`
}

// Forces groups the per-force settings.
type Forces struct {
	Link    Link    `toml:"link" yaml:"link"`
	Charge  Charge  `toml:"charge" yaml:"charge"`
	Axis    Axis    `toml:"axis" yaml:"axis"`
	Collide Collide `toml:"collide" yaml:"collide"`
	Center  bool    `toml:"center" yaml:"center"`
}

// Link configures the spring force. Rest length is
// distance + distance_scale·sqrt(value).
type Link struct {
	Disabled      bool    `toml:"disabled,omitempty" yaml:"disabled,omitempty"`
	Distance      float64 `toml:"distance" yaml:"distance"`
	DistanceScale float64 `toml:"distance_scale" yaml:"distance_scale"`
	Strength      float64 `toml:"strength,omitempty" yaml:"strength,omitempty"`
	Iterations    int     `toml:"iterations" yaml:"iterations"`
}

// Charge configures the many-body force. When reference_width is set the
// strength scales with viewport width down to min_factor.
type Charge struct {
	Disabled       bool    `toml:"disabled,omitempty" yaml:"disabled,omitempty"`
	Strength       float64 `toml:"strength" yaml:"strength"`
	Theta          float64 `toml:"theta" yaml:"theta"`
	DistanceMin    float64 `toml:"distance_min" yaml:"distance_min"`
	DistanceMax    float64 `toml:"distance_max,omitempty" yaml:"distance_max,omitempty"`
	ReferenceWidth float64 `toml:"reference_width,omitempty" yaml:"reference_width,omitempty"`
	MinFactor      float64 `toml:"min_factor,omitempty" yaml:"min_factor,omitempty"`
}

// Axis configures the x and y centering forces.
type Axis struct {
	Disabled bool    `toml:"disabled,omitempty" yaml:"disabled,omitempty"`
	Strength float64 `toml:"strength" yaml:"strength"`
}

// Collide configures the collision force.
type Collide struct {
	Disabled   bool    `toml:"disabled,omitempty" yaml:"disabled,omitempty"`
	Padding    float64 `toml:"padding" yaml:"padding"`
	Strength   float64 `toml:"strength" yaml:"strength"`
	Iterations int     `toml:"iterations" yaml:"iterations"`
}

// Render holds output defaults for the render command.
type Render struct {
	Formats []string `toml:"formats" yaml:"formats"`
	Labels  bool     `toml:"labels" yaml:"labels"`
}

// Server holds settings for the serve command.
type Server struct {
	Addr     string  `toml:"addr" yaml:"addr"`
	TickRate float64 `toml:"tick_rate" yaml:"tick_rate"` // ticks per second
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Viewport: Viewport{Width: sim.DefaultWidth, Height: sim.DefaultHeight},
		Simulation: Simulation{
			Seed:          1,
			Seeding:       sim.SeedPhyllotaxis.String(),
			AlphaMin:      sim.DefaultAlphaMin,
			AlphaDecay:    sim.DefaultAlphaDecay,
			VelocityDecay: sim.DefaultVelocityDecay,
			MaxTicks:      1000,
		},
		Forces: Forces{
			Link:    Link{Distance: 100, DistanceScale: 10, Iterations: 1},
			Charge:  Charge{Strength: force.DefaultCharge, Theta: force.DefaultTheta, DistanceMin: force.DefaultDistanceMin},
			Axis:    Axis{Strength: force.DefaultAxisStrength},
			Collide: Collide{Padding: force.DefaultCollidePadding, Strength: 1, Iterations: 1},
		},
		Render: Render{Formats: []string{"svg"}, Labels: true},
		Server: Server{Addr: ":8080", TickRate: 60},
	}
}

// Path returns the config file location: $FORCEGRAPH_CONFIG if set,
// otherwise $XDG_CONFIG_HOME/forcegraph/config.toml.
func Path() (string, error) {
	if p := os.Getenv(EnvVar); p != "" {
		return p, nil
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, AppName, FileName), nil
}

// LoadDefault loads the file at Path. A missing file yields Default.
func LoadDefault() (Config, string, error) {
	path, err := Path()
	if err != nil {
		return Default(), "", err
	}
	cfg, err := Load(path)
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		return Default(), path, nil
	}
	return cfg, path, err
}

// Load decodes the file at path on top of Default. The format is chosen by
// extension: .toml, .yaml or .yml.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Decode(data, format(path))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses data in the given format ("toml" or "yaml") on top of
// Default and validates the result.
func Decode(data []byte, format string) (Config, error) {
	cfg := Default()
	switch format {
	case "toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse toml")
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse yaml")
		}
	default:
		return Config{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode serializes cfg in the given format ("toml" or "yaml").
func Encode(cfg Config, format string) ([]byte, error) {
	switch format {
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, fmt.Errorf("encode toml: %w", err)
		}
		return buf.Bytes(), nil
	case "yaml":
		return yaml.Marshal(cfg)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q", format)
	}
}

// Save writes cfg to path, creating parent directories. The format is
// chosen by extension.
func Save(cfg Config, path string) error {
	data, err := Encode(cfg, format(path))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := c.SimConfig(nil); err != nil {
		return err
	}
	if c.Simulation.MaxTicks < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "simulation.max_ticks must not be negative")
	}
	if c.Server.TickRate <= 0 || !errors.IsFinite(c.Server.TickRate) {
		return errors.New(errors.ErrCodeInvalidConfig, "server.tick_rate must be positive")
	}
	if c.Forces.Charge.ReferenceWidth < 0 || c.Forces.Charge.MinFactor < 0 || c.Forces.Charge.MinFactor > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "charge scaling needs reference_width >= 0 and min_factor in [0, 1]")
	}
	return nil
}

// SimConfig converts the file settings to a validated simulation config.
func (c Config) SimConfig(logger *log.Logger) (sim.Config, error) {
	seeding, err := sim.ParseSeeding(c.Simulation.Seeding)
	if err != nil {
		return sim.Config{}, err
	}
	f := c.Forces
	out := sim.Config{
		Width:         c.Viewport.Width,
		Height:        c.Viewport.Height,
		Seed:          c.Simulation.Seed,
		Seeding:       seeding,
		AlphaMin:      c.Simulation.AlphaMin,
		AlphaDecay:    c.Simulation.AlphaDecay,
		VelocityDecay: c.Simulation.VelocityDecay,

		DisableLink:    f.Link.Disabled,
		LinkDistance:   force.DistanceFunc(f.Link.Distance, f.Link.DistanceScale),
		LinkStrength:   f.Link.Strength,
		LinkIterations: f.Link.Iterations,

		DisableCharge: f.Charge.Disabled,
		Charge:        sim.Float(f.Charge.Strength),
		Theta:         sim.Float(f.Charge.Theta),
		DistanceMin:   f.Charge.DistanceMin,
		DistanceMax:   f.Charge.DistanceMax,

		DisableAxis:  f.Axis.Disabled,
		AxisStrength: sim.Float(f.Axis.Strength),

		DisableCollide:    f.Collide.Disabled,
		CollidePadding:    sim.Float(f.Collide.Padding),
		CollideStrength:   f.Collide.Strength,
		CollideIterations: f.Collide.Iterations,

		Center: f.Center,
		Logger: logger,
	}
	if f.Charge.ReferenceWidth > 0 {
		out.ChargeFunc = force.ViewportStrength(f.Charge.Strength, f.Charge.ReferenceWidth, f.Charge.MinFactor)
	}
	if err := out.Validate(); err != nil {
		return sim.Config{}, err
	}
	return out, nil
}
