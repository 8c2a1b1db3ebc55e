// Package config loads the server settings and the fixed airfield constants the
// planner depends on.
package config

import (
	"fmt"
	"os"

	"lintang/dronepatrol/pkg/datastructure"
	"lintang/dronepatrol/pkg/engine/planner"
	"lintang/dronepatrol/pkg/layout"
	"lintang/dronepatrol/pkg/log"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Point struct {
	Lat float64 `yaml:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `yaml:"lon" validate:"gte=-180,lte=180"`
}

func (p Point) Coordinate() datastructure.Coordinate {
	return datastructure.NewCoordinate(p.Lat, p.Lon)
}

type Aerodrome struct {
	Center Point   `yaml:"center"`
	Radius float64 `yaml:"radius" validate:"gt=0"`
}

type Airfield struct {
	Name      string    `yaml:"name" validate:"required"`
	Aerodrome Aerodrome `yaml:"aerodrome"`
	Terminal  Point     `yaml:"terminal"`
}

// Log configures pkg/log. Dir enables the rotating log file when set.
type Log struct {
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	Dir        string `yaml:"dir"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"gte=0"`
}

// Config is the file form of the settings. LayoutFile is an osm/pbf layout, empty means
// the generated demo airfield.
type Config struct {
	ListenAddr   string   `yaml:"listen_addr" validate:"required"`
	DBPath       string   `yaml:"db_path" validate:"required"`
	LayoutFile   string   `yaml:"layout_file"`
	HotspotCount int      `yaml:"hotspot_count" validate:"gte=0"`
	Seed         uint64   `yaml:"seed"`
	Airfield     Airfield `yaml:"airfield"`
	Log          Log      `yaml:"log"`
}

func Default() Config {
	return Config{
		ListenAddr:   ":5000",
		DBPath:       "dronepatrolDB",
		HotspotCount: 30,
		Seed:         1,
		Airfield: Airfield{
			Name: "pit",
			Aerodrome: Aerodrome{
				Center: Point{Lat: 40.4900, Lon: -80.2365},
				Radius: 0.0025,
			},
			Terminal: Point{Lat: 40.4900, Lon: -80.2315},
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  64,
			MaxAgeDays: 14,
		},
	}
}

// Load reads a yaml file over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	bb, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(bb, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the field tags. Without a layout file the aerodrome circle must also
// fit inside the demo airfield property.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.LayoutFile == "" {
		return c.AirfieldLayout().Validate()
	}
	return nil
}

func (c Config) Planner() planner.Config {
	return planner.Config{
		ExclusionCenter:   c.Airfield.Aerodrome.Center.Coordinate(),
		ExclusionRadius:   c.Airfield.Aerodrome.Radius,
		TerminalReference: c.Airfield.Terminal.Coordinate(),
	}
}

// AirfieldLayout is the demo airfield with the configured aerodrome circle.
func (c Config) AirfieldLayout() layout.Airfield {
	a := layout.PittsburghAirfield()
	a.AerodromeCenter = c.Airfield.Aerodrome.Center.Coordinate()
	a.AerodromeRadius = c.Airfield.Aerodrome.Radius
	return a
}

func (l Log) Options() log.Options {
	return log.Options{
		Level:      l.Level,
		Dir:        l.Dir,
		MaxSizeMB:  l.MaxSizeMB,
		MaxAgeDays: l.MaxAgeDays,
	}
}
