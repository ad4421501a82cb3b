// Package config loads scrollreveal settings from a YAML file and the
// environment. Environment variables carry the SCROLLREVEAL_ prefix and win
// over the file, which wins over the defaults.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"scrollreveal/pkg/aos"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "SCROLLREVEAL_"

// Config is the top-level configuration.
type Config struct {
	Viewport ViewportConfig `yaml:"viewport" envPrefix:"VIEWPORT_"`
	LogLevel string         `yaml:"log_level" env:"LOG_LEVEL"`
	AOS      aos.Settings   `yaml:"aos" envPrefix:"AOS_"`
	// AutoInit calls AOS.init with AOS when no page script did.
	AutoInit bool         `yaml:"auto_init" env:"AUTO_INIT"`
	Frames   FramesConfig `yaml:"frames" envPrefix:"FRAMES_"`
}

// ViewportConfig is the initial window size in CSS pixels.
type ViewportConfig struct {
	Width  float64 `yaml:"width" env:"WIDTH"`
	Height float64 `yaml:"height" env:"HEIGHT"`
}

// FramesConfig controls PNG frame output. When Golden is set every frame
// is also compared with the reference image of the same name there.
type FramesConfig struct {
	Dir       string  `yaml:"dir" env:"DIR"`
	ShowBand  bool    `yaml:"show_band" env:"SHOW_BAND"`
	Golden    string  `yaml:"golden" env:"GOLDEN"`
	Tolerance int     `yaml:"tolerance" env:"TOLERANCE"`
	MaxDiff   float64 `yaml:"max_diff_percent" env:"MAX_DIFF_PERCENT"`
}

// Enabled reports whether frames are rendered at all.
func (f FramesConfig) Enabled() bool { return f.Dir != "" || f.Golden != "" }

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Viewport: ViewportConfig{Width: 1024, Height: 768},
		LogLevel: "info",
		AOS:      aos.DefaultSettings(),
		AutoInit: true,
		Frames:   FramesConfig{ShowBand: true, Tolerance: 2},
	}
}

// Load reads path (optional) over the defaults, then applies the process
// environment.
func Load(path string) (Config, error) {
	return load(path, nil)
}

// LoadWithEnv is Load with an explicit environment instead of os.Environ.
func LoadWithEnv(path string, environ map[string]string) (Config, error) {
	if environ == nil {
		environ = map[string]string{}
	}
	return load(path, environ)
}

func load(path string, environ map[string]string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the simulator cannot run.
func (c Config) Validate() error {
	var errs []error
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		errs = append(errs, fmt.Errorf("config: viewport must be positive, got %vx%v", c.Viewport.Width, c.Viewport.Height))
	}
	if _, ok := aos.ParsePlacement(string(c.AOS.AnchorPlacement)); !ok {
		errs = append(errs, fmt.Errorf("config: unknown anchorPlacement %q", c.AOS.AnchorPlacement))
	}
	if c.AOS.Duration < 0 || c.AOS.Delay < 0 {
		errs = append(errs, errors.New("config: aos delay and duration must not be negative"))
	}
	if c.Frames.Tolerance < 0 || c.Frames.Tolerance > 255 || c.Frames.MaxDiff < 0 || c.Frames.MaxDiff > 100 {
		errs = append(errs, fmt.Errorf("config: frame tolerance %d or max diff %v%% out of range", c.Frames.Tolerance, c.Frames.MaxDiff))
	}
	return errors.Join(errs...)
}
