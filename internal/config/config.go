package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Host      HostConfig      `toml:"host"`
	Scripting ScriptingConfig `toml:"scripting"`
	Logging   LoggingConfig   `toml:"logging"`
}

type HostConfig struct {
	Name          string        `toml:"name"`
	FrameRate     time.Duration `toml:"frame_rate"`      // wall-clock interval between frames
	FixedStep     time.Duration `toml:"fixed_step"`      // FixedUpdate interval
	MaxFixedSteps int           `toml:"max_fixed_steps"` // FixedUpdate ticks allowed per frame
	MaxEntities   int           `toml:"max_entities"`    // 0 = unlimited
}

type ScriptingConfig struct {
	Dir      string `toml:"dir"`
	Triggers string `toml:"triggers"` // YAML trigger table, empty to skip
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads a TOML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Host.FrameRate <= 0 {
		return fmt.Errorf("host.frame_rate must be positive, got %s", c.Host.FrameRate)
	}
	if c.Host.FixedStep <= 0 {
		return fmt.Errorf("host.fixed_step must be positive, got %s", c.Host.FixedStep)
	}
	if c.Host.MaxFixedSteps < 1 {
		return fmt.Errorf("host.max_fixed_steps must be at least 1, got %d", c.Host.MaxFixedSteps)
	}
	if c.Host.MaxEntities < 0 {
		return fmt.Errorf("host.max_entities must not be negative, got %d", c.Host.MaxEntities)
	}
	return nil
}

func Defaults() *Config {
	return &Config{
		Host: HostConfig{
			Name:          "tickpoll",
			FrameRate:     16 * time.Millisecond, // ~60 fps
			FixedStep:     20 * time.Millisecond, // 50 Hz
			MaxFixedSteps: 5,
			MaxEntities:   4096,
		},
		Scripting: ScriptingConfig{
			Dir:      "scripts",
			Triggers: "data/yaml/triggers.yaml",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
