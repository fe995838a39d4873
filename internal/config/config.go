package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// DefaultPaths are tried, in order, when Load is given no path.
var DefaultPaths = []string{"geobench.yaml", "configs/geobench.yaml"}

type Config struct {
	DataDir    string       `yaml:"data_dir"`
	BaseName   string       `yaml:"base_name"`
	NumPoints  int          `yaml:"num_points"`
	Seed       int64        `yaml:"seed"` // 0 picks a random seed
	Region     Region       `yaml:"region"`
	Formats    []string     `yaml:"formats"`
	Engines    []string     `yaml:"engines"`
	CrossCheck bool         `yaml:"cross_check"`
	DuckDB     DuckDBConfig `yaml:"duckdb"`
	LogLevel   string       `yaml:"log_level"`
}

// Region is the query rectangle.
type Region struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

type DuckDBConfig struct {
	InstallExtensions bool     `yaml:"install_extensions"`
	Extensions        []string `yaml:"extensions"`
}

// Default returns the configuration of a plain run: one million points in
// data/, queried in [-10,10]x[-10,10] from Shapefile and GeoParquet through
// the in-memory frame and DuckDB.
func Default() *Config {
	return &Config{
		DataDir:   "data",
		BaseName:  "points",
		NumPoints: 1_000_000,
		Region: Region{
			MinX: -10,
			MinY: -10,
			MaxX: 10,
			MaxY: 10,
		},
		Formats:    []string{"shapefile", "geoparquet"},
		Engines:    []string{"frame", "duckdb"},
		CrossCheck: true,
		DuckDB: DuckDBConfig{
			InstallExtensions: true,
			Extensions:        []string{"spatial"},
		},
		LogLevel: "info",
	}
}

// Load reads configPath over the defaults. With an empty path the
// DefaultPaths are tried and a missing file means defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		for _, p := range DefaultPaths {
			data, err := os.ReadFile(p)
			if err == nil {
				if err := yaml.Unmarshal(data, cfg); err != nil {
					return cfg, fmt.Errorf("config %s: %w", p, err)
				}
				return cfg, cfg.Validate()
			}
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", configPath, err)
	}

	return cfg, cfg.Validate()
}

// Validate checks the structural constraints. Format and engine names are
// resolved by the packages that own them.
func (c *Config) Validate() error {
	switch {
	case c.DataDir == "":
		return fmt.Errorf("%w: data_dir is empty", ErrInvalid)
	case c.BaseName == "":
		return fmt.Errorf("%w: base_name is empty", ErrInvalid)
	case c.NumPoints <= 0:
		return fmt.Errorf("%w: num_points must be positive, got %d", ErrInvalid, c.NumPoints)
	case c.Region.MinX > c.Region.MaxX || c.Region.MinY > c.Region.MaxY:
		return fmt.Errorf("%w: region min exceeds max", ErrInvalid)
	case len(c.Formats) == 0:
		return fmt.Errorf("%w: no formats", ErrInvalid)
	case len(c.Engines) == 0:
		return fmt.Errorf("%w: no engines", ErrInvalid)
	}

	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Bound returns the query region as an orb.Bound.
func (c *Config) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{c.Region.MinX, c.Region.MinY},
		Max: orb.Point{c.Region.MaxX, c.Region.MaxY},
	}
}

// Level parses LogLevel. An empty level means info.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(c.LogLevel) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return level, nil
}
