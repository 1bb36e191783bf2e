// Package config loads the configuration of an analysis from YAML.
//
// A configuration file looks like this; every field is optional:
//
//	explore:
//	  max_depth: 32
//	  max_alt_depth: 8
//	  strategy: priority
//	  comparator: shared-prefix
//	solver:
//	  name: enum
//	  max_candidates: 65536
//	  timeout: 2s
//	termination:
//	  max_runs: 1000
//	  timeout: 1m
//	log:
//	  level: info
//	  structured: false
//	preset: seeds.yaml
package config

import (
	"io/ioutil"
	"os"
	"time"

	"github.com/ajalab/concolic/explore"
	"github.com/ajalab/concolic/log"
	"github.com/ajalab/concolic/solver"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Termination bounds an analysis. Zero fields mean no bound.
type Termination struct {
	MaxRuns int           `yaml:"max_runs"`
	Timeout time.Duration `yaml:"timeout"`
}

// Strategy returns the termination strategy described by t.
func (t Termination) Strategy() explore.Termination {
	return explore.Any(explore.MaxRuns(t.MaxRuns), explore.Timeout(t.Timeout))
}

// Log configures logging.
type Log struct {
	Level      string `yaml:"level"`
	Structured bool   `yaml:"structured"`
}

// Config is the configuration of an analysis.
type Config struct {
	Explore     explore.Options `yaml:"explore"`
	Solver      solver.Options  `yaml:"solver"`
	Termination Termination     `yaml:"termination"`
	Log         Log             `yaml:"log"`
	// Preset is the path of a preset valuation file.
	Preset string `yaml:"preset"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Explore: explore.DefaultOptions(),
		Solver:  solver.DefaultOptions(),
		Log:     Log{Level: "info"},
	}
}

// MergeWithDefaults fills the fields left unset with their default values.
func (c *Config) MergeWithDefaults() {
	d := Default()
	c.Explore = d.Explore.Merge(c.Explore)
	c.Solver = d.Solver.Merge(c.Solver)
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Explore.Validate(); err != nil {
		return errors.Wrap(err, "invalid explore section")
	}
	if c.Termination.MaxRuns < 0 || c.Termination.Timeout < 0 {
		return errors.New("termination bounds must not be negative")
	}
	if _, ok := log.ParseLevel(c.Log.Level); !ok {
		return errors.Errorf("unknown log level: %s", c.Log.Level)
	}
	return nil
}

// Parse decodes a YAML configuration and merges it with the defaults.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	c.MergeWithDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}
	return Parse(data)
}

// ApplyLog configures the process-wide logger.
func (c *Config) ApplyLog() {
	log.SetOutput(os.Stderr, c.Log.Structured)
	log.SetLevelByName(c.Log.Level)
}
