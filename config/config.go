/*
Package config provides configuration management for haspoly.

Configuration is read from YAML files:

    matcher: scoped            # or "native"
    events:                    # event type -> parents | group
      focus: parents
      change: group
    fetch:
      base: https://example.com/css/
      timeout: 10s
    tracing:
      adapter: go
      level: Error
      levels:
        haspoly.engine: Debug

A Config implements schuko.Configuration, which makes it usable for setting
up tracing with trace2go. Trace levels are found under keys
"tracelevel.<tracer>".

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/npillmayer/haspoly/engine"
	"github.com/npillmayer/haspoly/stylesheet"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"gopkg.in/yaml.v3"
)

// Matcher strategies.
const (
	Scoped = "scoped"
	Native = "native"
)

// Config holds the haspoly configuration.
type Config struct {
	Matcher string            `yaml:"matcher,omitempty"`
	Events  map[string]string `yaml:"events,omitempty"`
	Fetch   Fetch             `yaml:"fetch,omitempty"`
	Tracing Tracing           `yaml:"tracing,omitempty"`
}

// Fetch configures retrieval of external stylesheets.
type Fetch struct {
	Base    string        `yaml:"base,omitempty"`    // URL or directory for relative locators
	Timeout time.Duration `yaml:"timeout,omitempty"` // for HTTP requests
}

// Tracing configures trace output.
type Tracing struct {
	Adapter     string            `yaml:"adapter,omitempty"`
	Level       string            `yaml:"level,omitempty"`  // default trace level
	Levels      map[string]string `yaml:"levels,omitempty"` // per tracer
	Destination string            `yaml:"destination,omitempty"`
}

// Default returns a configuration with default values set.
func Default() *Config {
	c := &Config{}
	c.InitDefaults()
	return c
}

// InitDefaults sets default values for every unset configuration value.
//
// Part of interface schuko.Configuration.
func (c *Config) InitDefaults() {
	if c.Matcher == "" {
		c.Matcher = Scoped
	}
	if len(c.Events) == 0 {
		c.Events = make(map[string]string)
		for typ, b := range engine.DefaultBindings() {
			c.Events[typ] = b.String()
		}
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = stylesheet.DefaultTimeout
	}
	if c.Tracing.Adapter == "" {
		c.Tracing.Adapter = "go"
	}
	if c.Tracing.Level == "" {
		c.Tracing.Level = "Error"
	}
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	switch c.Matcher {
	case Scoped, Native:
	default:
		return fmt.Errorf("matcher must be %q or %q, is %q", Scoped, Native, c.Matcher)
	}
	if _, err := c.Bindings(); err != nil {
		return err
	}
	if c.Fetch.Timeout < 0 {
		return errors.New("fetch timeout must not be negative")
	}
	if isURL(c.Fetch.Base) {
		if _, err := url.Parse(c.Fetch.Base); err != nil {
			return fmt.Errorf("invalid fetch base: %w", err)
		}
	}
	return nil
}

// Bindings returns the event bindings for the update engine.
func (c *Config) Bindings() (engine.Bindings, error) {
	bindings := make(engine.Bindings, len(c.Events))
	for typ, name := range c.Events {
		b, err := engine.ParseBinding(name)
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", typ, err)
		}
		bindings[typ] = b
	}
	return bindings, nil
}

// Fetcher returns a stylesheet fetcher. Relative locators are resolved
// against the fetch base, which is either a URL or a directory. If dir is
// non-empty, it replaces a fetch base which is not a URL.
func (c *Config) Fetcher(dir string) (stylesheet.Fetcher, error) {
	if isURL(c.Fetch.Base) {
		f, err := stylesheet.NewHTTPFetcher(c.Fetch.Base, c.Fetch.Timeout)
		if err != nil {
			return nil, err
		}
		return stylesheet.Resolver{HTTP: f}, nil
	}
	f, err := stylesheet.NewHTTPFetcher("", c.Fetch.Timeout)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = c.Fetch.Base
	}
	if dir == "" {
		dir = "."
	}
	return stylesheet.Resolver{HTTP: f, Local: stylesheet.FileFetcher{Dir: dir}}, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// LoadFromEnv overrides configuration values with environment variables,
// if set and non-empty.
func (c *Config) LoadFromEnv() {
	if m := os.Getenv("HASPOLY_MATCHER"); m != "" {
		c.Matcher = m
	}
	if base := os.Getenv("HASPOLY_FETCH_BASE"); base != "" {
		c.Fetch.Base = base
	}
	if level := os.Getenv("HASPOLY_TRACE_LEVEL"); level != "" {
		c.Tracing.Level = level
	}
}

// Load reads the configuration from the specified path. Values missing from
// the file are set to their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.InitDefaults()
	return &cfg, nil
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// --- schuko.Configuration ------------------------------------------------

var _ schuko.Configuration = &Config{}

// TraceLevelKey is the prefix of configuration keys for trace levels.
const TraceLevelKey = "tracelevel"

// GetString returns a configuration value as a string, or "" if not set.
//
// Part of interface schuko.Configuration.
func (c *Config) GetString(key string) string {
	switch key {
	case "matcher":
		return c.Matcher
	case "fetch.base":
		return c.Fetch.Base
	case "fetch.timeout":
		if c.Fetch.Timeout == 0 {
			return ""
		}
		return c.Fetch.Timeout.String()
	case "tracing.adapter":
		return c.Tracing.Adapter
	case "tracing.destination":
		return c.Tracing.Destination
	case "tracing.level":
		return c.Tracing.Level
	}
	if typ := strings.TrimPrefix(key, "events."); typ != key {
		return c.Events[typ]
	}
	if name := strings.TrimPrefix(key, TraceLevelKey+"."); name != key {
		if l, ok := c.Tracing.Levels[name]; ok {
			return l
		}
		return c.Tracing.Level
	}
	return ""
}

// IsSet is part of interface schuko.Configuration.
func (c *Config) IsSet(key string) bool {
	return c.GetString(key) != ""
}

// GetInt returns a configuration value as an integer. Durations are
// returned in seconds.
//
// Part of interface schuko.Configuration.
func (c *Config) GetInt(key string) int {
	if key == "fetch.timeout" {
		return int(c.Fetch.Timeout / time.Second)
	}
	n, _ := strconv.Atoi(c.GetString(key))
	return n
}

// GetBool is part of interface schuko.Configuration.
func (c *Config) GetBool(key string) bool {
	b, _ := strconv.ParseBool(c.GetString(key))
	return b
}

// IsInteractive is part of interface schuko.Configuration.
func (c *Config) IsInteractive() bool {
	return false
}

// SetupTracing installs trace2go as the tracer factory, configured from c.
// Existing tracers are replaced.
func (c *Config) SetupTracing() error {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	tracing.SetTraceSelector(trace2go.Selector())
	if err := trace2go.ConfigureRoot(c, TraceLevelKey, trace2go.ReplaceTracers(true)); err != nil {
		return fmt.Errorf("cannot configure tracing: %w", err)
	}
	return nil
}
