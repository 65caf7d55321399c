package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Network    NetworkConfig    `toml:"network"`
	Simulation SimulationConfig `toml:"simulation"`
	Replay     ReplayConfig     `toml:"replay"`
	Level      LevelConfig      `toml:"level"`
	Scripting  ScriptingConfig  `toml:"scripting"`
	Logging    LoggingConfig    `toml:"logging"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	StartTime int64  // set at boot, not from config
}

type NetworkConfig struct {
	BindAddress      string        `toml:"bind_address"`
	Path             string        `toml:"path"`
	InQueueSize      int           `toml:"in_queue_size"`  // accepted sessions waiting for the game loop
	OutQueueSize     int           `toml:"out_queue_size"` // outbound frames per session
	WriteTimeout     time.Duration `toml:"write_timeout"`
	ReadTimeout      time.Duration `toml:"read_timeout"`
	HandshakeTimeout time.Duration `toml:"handshake_timeout"`
}

// SimulationConfig holds tick pacing and scheduler constants. Delays and
// offsets are in virtual time units (milliseconds with the default tic).
type SimulationConfig struct {
	TicSize                float64       `toml:"tic_size"`  // seconds per virtual time unit
	GameRate               float64       `toml:"game_rate"` // gameplay timeline multiplier, 0 = paused
	ConnectionPolls        int           `toml:"connection_polls"`
	PreDispatchSleep       time.Duration `toml:"pre_dispatch_sleep"`
	PostDispatchSleep      time.Duration `toml:"post_dispatch_sleep"`
	StillFallingDelay      float64       `toml:"still_falling_delay"`
	StillJumpingDelay      float64       `toml:"still_jumping_delay"`
	PlatformPriorityOffset float64       `toml:"platform_priority_offset"`
	DigestInterval         int           `toml:"digest_interval"` // ticks between state digests, 0 = off
}

type ReplayConfig struct {
	FastSpeed   float64 `toml:"fast_speed"`
	NormalSpeed float64 `toml:"normal_speed"`
	SlowSpeed   float64 `toml:"slow_speed"`
}

type LevelConfig struct {
	Path string `toml:"path"`
}

type ScriptingConfig struct {
	Dir string `toml:"dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := defaults()
	cfg.Server.StartTime = time.Now().Unix()
	return cfg
}

func (c *Config) validate() error {
	if c.Simulation.TicSize <= 0 {
		return fmt.Errorf("simulation.tic_size must be positive, got %g", c.Simulation.TicSize)
	}
	if c.Simulation.GameRate < 0 {
		return fmt.Errorf("simulation.game_rate must not be negative, got %g", c.Simulation.GameRate)
	}
	if c.Simulation.ConnectionPolls < 1 {
		return fmt.Errorf("simulation.connection_polls must be at least 1, got %d", c.Simulation.ConnectionPolls)
	}
	for name, v := range map[string]float64{
		"replay.fast_speed":   c.Replay.FastSpeed,
		"replay.normal_speed": c.Replay.NormalSpeed,
		"replay.slow_speed":   c.Replay.SlowSpeed,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %g", name, v)
		}
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "platformsim",
		},
		Network: NetworkConfig{
			BindAddress:      "0.0.0.0:5555",
			Path:             "/ws",
			InQueueSize:      64,
			OutQueueSize:     256,
			WriteTimeout:     10 * time.Second,
			ReadTimeout:      0,
			HandshakeTimeout: 5 * time.Second,
		},
		Simulation: SimulationConfig{
			TicSize:                0.001,
			GameRate:               1,
			ConnectionPolls:        5,
			PreDispatchSleep:       15 * time.Millisecond,
			PostDispatchSleep:      20 * time.Millisecond,
			StillFallingDelay:      100,
			StillJumpingDelay:      100,
			PlatformPriorityOffset: 1000,
			DigestInterval:         0,
		},
		Replay: ReplayConfig{
			FastSpeed:   2,
			NormalSpeed: 1,
			SlowSpeed:   0.5,
		},
		Level: LevelConfig{
			Path: "data/yaml/level.yaml",
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
