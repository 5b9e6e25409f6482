package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"extwing/pkg/actuator"
)

// Config holds the application configuration.
type Config struct {
	Log       LogConfig        `yaml:"log"`
	DB        DBConfig         `yaml:"db"`
	Server    ServerConfig     `yaml:"server"`
	Ticker    TickerConfig     `yaml:"ticker"`
	Sim       SimConfig        `yaml:"sim"`
	Wing      WingConfig       `yaml:"wing"`
	Actuators []ActuatorConfig `yaml:"actuators"`
}

// SimConfig holds settings for the simulation connection.
type SimConfig struct {
	Provider string        `yaml:"provider"` // "mock"
	Mock     MockSimConfig `yaml:"mock"`
}

// MockSimConfig holds settings for the mock vehicle profile.
type MockSimConfig struct {
	StartLat       float64  `yaml:"start_lat"`
	StartLon       float64  `yaml:"start_lon"`
	StartHeading   *float64 `yaml:"start_heading"`
	DurationParked Duration `yaml:"duration_parked"`
	DurationTaxi   Duration `yaml:"duration_taxi"`
	DurationCruise Duration `yaml:"duration_cruise"`
	CruiseSpeed    Speed    `yaml:"cruise_speed"`
	RotateSpeed    Speed    `yaml:"rotate_speed"`
	DropoutEvery   int      `yaml:"dropout_every"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server LogSettings `yaml:"server"`
	Events LogSettings `yaml:"events"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// TickerConfig holds ticker settings.
type TickerConfig struct {
	TelemetryLoop Duration `yaml:"telemetry_loop"`
}

// WingConfig holds settings shared by every actuator.
type WingConfig struct {
	TransitionTime Duration `yaml:"transition_time"`
	ControlLiftAdd float64  `yaml:"control_lift_add"`
	RigidLiftAdd   float64  `yaml:"rigid_lift_add"`
	MaxTickDelta   Duration `yaml:"max_tick_delta"`
}

// ActuatorConfig describes one extendable part on the vessel.
type ActuatorConfig struct {
	Name                string  `yaml:"name"`
	Kind                string  `yaml:"kind"` // "control" or "rigid"
	BaseLiftCoefficient float64 `yaml:"base_lift_coefficient"`
	Extended            bool    `yaml:"extended"`
	AutoExtend          bool    `yaml:"auto_extend"`
	ExtendSpeed         Speed   `yaml:"extend_speed"`
}

// UnmarshalYAML starts each entry from the default threshold, since a file's
// actuator list replaces the default one wholesale.
func (a *ActuatorConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain ActuatorConfig
	p := plain{ExtendSpeed: Speed(actuator.DefaultExtendSpeed)}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*a = ActuatorConfig(p)
	return nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Events: LogSettings{
				Path:  "./logs/events.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/extwing.db",
		},
		Server: ServerConfig{
			Address: "localhost:1921",
		},
		Ticker: TickerConfig{
			TelemetryLoop: Duration(100 * time.Millisecond),
		},
		Sim: SimConfig{
			Provider: "mock",
			Mock: MockSimConfig{
				StartLat:       51.6845,
				StartLon:       14.4234,
				DurationParked: Duration(10 * time.Second),
				DurationTaxi:   Duration(20 * time.Second),
				DurationCruise: Duration(60 * time.Second),
				CruiseSpeed:    220,
				RotateSpeed:    70,
			},
		},
		Wing: WingConfig{
			TransitionTime: Duration(actuator.DefaultTransitionTime),
			ControlLiftAdd: actuator.DefaultControlLiftAdd,
			RigidLiftAdd:   actuator.DefaultRigidLiftAdd,
			MaxTickDelta:   Duration(actuator.DefaultMaxTickDelta),
		},
		Actuators: []ActuatorConfig{
			{Name: "wing_left", Kind: "control", BaseLiftCoefficient: 1.0, ExtendSpeed: actuator.DefaultExtendSpeed},
			{Name: "wing_right", Kind: "control", BaseLiftCoefficient: 1.0, ExtendSpeed: actuator.DefaultExtendSpeed},
			{Name: "canard", Kind: "rigid", BaseLiftCoefficient: 0.5, ExtendSpeed: actuator.DefaultExtendSpeed},
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT save back to disk.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Validate checks the wing and actuator sections.
func (c *Config) Validate() error {
	if c.Wing.TransitionTime <= 0 {
		return &actuator.ConfigError{Field: "wing.transition_time", Err: actuator.ErrInvalidDuration}
	}
	if c.Wing.MaxTickDelta < 0 {
		return &actuator.ConfigError{Field: "wing.max_tick_delta", Err: actuator.ErrInvalidDuration}
	}
	if c.Wing.ControlLiftAdd < 0 || c.Wing.ControlLiftAdd > 1 {
		return &actuator.ConfigError{Field: "wing.control_lift_add", Err: actuator.ErrInvalidLiftAdd}
	}
	if c.Wing.RigidLiftAdd < 0 || c.Wing.RigidLiftAdd > 1 {
		return &actuator.ConfigError{Field: "wing.rigid_lift_add", Err: actuator.ErrInvalidLiftAdd}
	}
	if len(c.Actuators) == 0 {
		return errors.New("config: no actuators configured")
	}

	seen := make(map[string]bool, len(c.Actuators))
	for i := range c.Actuators {
		a := &c.Actuators[i]
		if !validName.MatchString(a.Name) {
			return fmt.Errorf("config: invalid actuator name %q: must match %s", a.Name, validName)
		}
		if seen[a.Name] {
			return fmt.Errorf("config: duplicate actuator name %q", a.Name)
		}
		seen[a.Name] = true

		if _, err := actuator.ParseKind(a.Kind); err != nil {
			return &actuator.ConfigError{Field: "actuators." + a.Name + ".kind", Err: err}
		}
		if !actuator.ValidThreshold(float64(a.ExtendSpeed)) {
			return &actuator.ConfigError{Field: "actuators." + a.Name + ".extend_speed", Err: actuator.ErrThresholdOutOfRange}
		}
	}
	return nil
}

// LiftAdd returns the configured additional lift for a surface kind.
func (w WingConfig) LiftAdd(k actuator.Kind) float64 {
	if k == actuator.KindControl {
		return w.ControlLiftAdd
	}
	return w.RigidLiftAdd
}

// ControllerConfig builds the engine configuration for one actuator entry.
func (c *Config) ControllerConfig(a ActuatorConfig) (actuator.Config, error) {
	kind, err := actuator.ParseKind(a.Kind)
	if err != nil {
		return actuator.Config{}, err
	}
	return actuator.Config{
		Kind:                kind,
		BaseLiftCoefficient: a.BaseLiftCoefficient,
		LiftAdd:             c.Wing.LiftAdd(kind),
		TransitionTime:      time.Duration(c.Wing.TransitionTime),
		MaxTickDelta:        time.Duration(c.Wing.MaxTickDelta),
		Extended:            a.Extended,
		AutoExtend:          a.AutoExtend,
		ExtendSpeed:         float64(a.ExtendSpeed),
	}, nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Extendable Wing Configuration
# -----------------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Speed: m/s, km/h, kn (unitless values are m/s)

`)
	data = append(header, data...)

	reKind := regexp.MustCompile(`(?m)^(\s+)kind:`)
	data = reKind.ReplaceAll(data, []byte("${1}# Options: control, rigid\n${1}kind:"))

	reProvider := regexp.MustCompile(`(?m)^(\s+)provider:`)
	data = reProvider.ReplaceAll(data, []byte("${1}# Options: mock\n${1}provider:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
