package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Defaults used when config.json omits a value
const (
	DefaultRootSize      = 1000
	DefaultSampleCap     = 200
	DefaultMaxIterations = 100000
	DefaultEpsilon       = 1e-9
	DefaultTopK          = 1000
)

type Config struct {
	Inlinks          string  `json:"inlinks"`
	Outlinks         string  `json:"outlinks"`
	Pages            string  `json:"pages"`
	RootSet          string  `json:"root_set"`
	BaseSet          string  `json:"base_set"`
	Ranked           string  `json:"ranked"`
	Output           string  `json:"output"`
	Query            string  `json:"query"`
	RootSize         int     `json:"root_size"`
	SampleCap        int     `json:"sample_cap"`
	MaxIterations    int     `json:"max_iterations"`
	EpsilonAuthority float64 `json:"epsilon_authority"`
	EpsilonHub       float64 `json:"epsilon_hub"`
	TopK             int     `json:"top_k"`
}

// Configuration used when no config.json is present; it mirrors the
// info/ and result/ directory layout the link graph files are produced in
func DefaultConfiguration() Config {
	return Config{
		Inlinks:          "info/inlinks.json",
		Outlinks:         "info/outlinks.json",
		Pages:            "info/docno_list.json",
		RootSet:          "info/root_set.json",
		BaseSet:          "info/base_set.json",
		Output:           "result",
		RootSize:         DefaultRootSize,
		SampleCap:        DefaultSampleCap,
		MaxIterations:    DefaultMaxIterations,
		EpsilonAuthority: DefaultEpsilon,
		EpsilonHub:       DefaultEpsilon,
		TopK:             DefaultTopK,
	}
}

// Load config file at path; missing values are filled with the defaults.
// A missing file is not an error: the default configuration is returned
func LoadConfiguration(path string) (config Config, err error) {
	config = DefaultConfiguration()
	bytes, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		WarnLog("config", "file does not exist, using defaults", "path", path)
		return config, nil
	}
	if err != nil {
		err = fmt.Errorf("read: %w", err)
		return
	}
	// Parse config file over the defaults
	if err = json.Unmarshal(bytes, &config); err != nil {
		err = fmt.Errorf("parse: %w", err)
		return
	}
	config.fillDefaults()
	return config, config.Validate()
}

func (c *Config) fillDefaults() {
	if c.RootSize == 0 {
		c.RootSize = DefaultRootSize
	}
	if c.SampleCap == 0 {
		c.SampleCap = DefaultSampleCap
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.EpsilonAuthority == 0 {
		c.EpsilonAuthority = DefaultEpsilon
	}
	if c.EpsilonHub == 0 {
		c.EpsilonHub = DefaultEpsilon
	}
	if c.TopK == 0 {
		c.TopK = DefaultTopK
	}
}

func (c Config) Validate() error {
	switch {
	case c.RootSize < 0:
		return fmt.Errorf("root_size must be positive, got %d", c.RootSize)
	case c.SampleCap < 0:
		return fmt.Errorf("sample_cap must be positive, got %d", c.SampleCap)
	case c.MaxIterations < 0:
		return fmt.Errorf("max_iterations must be positive, got %d", c.MaxIterations)
	case c.EpsilonAuthority < 0 || c.EpsilonHub < 0:
		return errors.New("epsilons must be positive")
	case c.TopK < 0:
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	return nil
}
