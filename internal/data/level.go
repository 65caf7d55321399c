package data

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Box is an axis-aligned rectangle placed at its top-left corner.
type Box struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// RoutePoint is one waypoint of a moving platform.
type RoutePoint struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Pause bool    `yaml:"pause"`
}

// MovingPlatform is a platform that patrols its route. It starts at route[0].
type MovingPlatform struct {
	W             float64      `yaml:"w"`
	H             float64      `yaml:"h"`
	Route         []RoutePoint `yaml:"route"`
	PauseDuration float64      `yaml:"pause_duration"` // virtual time units
	Speed         float64      `yaml:"speed"`          // distance per virtual time unit
}

// SpawnPoint is where characters appear and respawn.
type SpawnPoint struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
}

// CharacterTemplate controls how connecting characters are seeded.
type CharacterTemplate struct {
	SpawnPoint int `yaml:"spawn_point"` // index into SpawnPoints
	StartOn    int `yaml:"start_on"`    // index into StaticPlatforms, -1 = none
}

// Level is the static description of the playfield.
type Level struct {
	Name            string            `yaml:"name"`
	StaticPlatforms []Box             `yaml:"static_platforms"`
	MovingPlatforms []MovingPlatform  `yaml:"moving_platforms"`
	SpawnPoints     []SpawnPoint      `yaml:"spawn_points"`
	DeathZones      []Box             `yaml:"death_zones"`
	Character       CharacterTemplate `yaml:"character"`
}

// LoadLevel loads a level layout from YAML.
func LoadLevel(path string) (*Level, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("level: read %s: %w", path, err)
	}
	lv, err := ParseLevel(raw)
	if err != nil {
		return nil, fmt.Errorf("level: %s: %w", path, err)
	}
	return lv, nil
}

// ParseLevel decodes and validates a level layout.
func ParseLevel(raw []byte) (*Level, error) {
	lv := &Level{Character: CharacterTemplate{StartOn: -1}}
	if err := yaml.Unmarshal(raw, lv); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := lv.Validate(); err != nil {
		return nil, err
	}
	return lv, nil
}

// Validate checks cross references and geometry.
func (lv *Level) Validate() error {
	var errs []error
	if len(lv.SpawnPoints) == 0 {
		errs = append(errs, errors.New("no spawn points"))
	}
	if c := lv.Character.SpawnPoint; c < 0 || c >= len(lv.SpawnPoints) {
		errs = append(errs, fmt.Errorf("character.spawn_point %d out of range", c))
	}
	if s := lv.Character.StartOn; s < -1 || s >= len(lv.StaticPlatforms) {
		errs = append(errs, fmt.Errorf("character.start_on %d out of range", s))
	}
	for i, b := range lv.StaticPlatforms {
		if b.W <= 0 || b.H <= 0 {
			errs = append(errs, fmt.Errorf("static_platforms[%d]: non-positive size", i))
		}
	}
	for i, b := range lv.DeathZones {
		if b.W <= 0 || b.H <= 0 {
			errs = append(errs, fmt.Errorf("death_zones[%d]: non-positive size", i))
		}
	}
	for i, mp := range lv.MovingPlatforms {
		if len(mp.Route) < 2 {
			errs = append(errs, fmt.Errorf("moving_platforms[%d]: route needs at least 2 points", i))
		}
		if mp.W <= 0 || mp.H <= 0 {
			errs = append(errs, fmt.Errorf("moving_platforms[%d]: non-positive size", i))
		}
		if mp.Speed <= 0 {
			errs = append(errs, fmt.Errorf("moving_platforms[%d]: speed must be positive", i))
		}
	}
	for i, sp := range lv.SpawnPoints {
		if sp.Radius <= 0 {
			errs = append(errs, fmt.Errorf("spawn_points[%d]: radius must be positive", i))
		}
	}
	return errors.Join(errs...)
}
