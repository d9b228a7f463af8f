// Package config provides configuration management for mibwalk.
//
// The config file says which agents to poll and how; the database holds
// what was learned from them and can be wiped without losing the setup.
//
// Config file locations (priority order):
//  1. $MIBWALK_CONFIG
//  2. ./mibwalk.yaml or ./mibwalk.toml
//  3. ~/.config/mibwalk/config.yaml (or config.toml)
//  4. /etc/mibwalk/config.yaml (or config.toml)
//
// Files ending in .toml are read with TOML; everything else is YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"mibwalk/internal/mib"
)

// ErrInvalid is wrapped by every Validate failure
var ErrInvalid = errors.New("invalid config")

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if isTOML(path) {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(c); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
	}

	return os.WriteFile(path, data, 0644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Posture == "" {
		c.Posture = PostureBalanced
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./mibwalk.db"
	}
	if c.SNMP.Port == 0 {
		c.SNMP.Port = 161
	}
	if c.SNMP.Community == "" {
		c.SNMP.Community = "public"
	}
	if c.SNMP.Version == "" {
		c.SNMP.Version = "2c"
	}
	if c.SNMP.MaxRepetitions == 0 {
		c.SNMP.MaxRepetitions = 63
	}
	if len(c.MIBs) == 0 {
		c.MIBs = []string{"mib-2"}
	}
	if len(c.Discovery.Ports) == 0 {
		c.Discovery.Ports = []string{"161"}
	}
	if c.Discovery.Timeout == 0 {
		c.Discovery.Timeout = Duration(2 * time.Minute)
	}
}

// Validate reports the first problem that would stop mibwalk from running
func (c *Config) Validate() error {
	if !c.Posture.Valid() {
		return fmt.Errorf("%w: unknown posture %q", ErrInvalid, c.Posture)
	}
	if err := checkVersion(c.SNMP.Version); err != nil {
		return fmt.Errorf("%w: snmp: %v", ErrInvalid, err)
	}
	switch c.Log.Format {
	case "console", "text", "json", "auto":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.Log.Format)
	}
	if err := checkMIBs(c.MIBs); err != nil {
		return fmt.Errorf("%w: mibs: %v", ErrInvalid, err)
	}

	seen := make(map[string]bool, len(c.Targets))
	for i, t := range c.Targets {
		if t.Address == "" {
			return fmt.Errorf("%w: targets[%d]: address is required", ErrInvalid, i)
		}
		name := t.Key()
		if seen[name] {
			return fmt.Errorf("%w: targets[%d]: duplicate target %q", ErrInvalid, i, name)
		}
		seen[name] = true
		if t.Version != "" {
			if err := checkVersion(t.Version); err != nil {
				return fmt.Errorf("%w: target %s: %v", ErrInvalid, name, err)
			}
		}
		if t.Interval != nil && t.Interval.Duration() <= 0 {
			return fmt.Errorf("%w: target %s: interval must be positive", ErrInvalid, name)
		}
		if err := checkMIBs(t.MIBs); err != nil {
			return fmt.Errorf("%w: target %s: %v", ErrInvalid, name, err)
		}
	}

	for _, n := range c.Discovery.Networks {
		if _, err := netip.ParsePrefix(n); err != nil {
			if _, err := netip.ParseAddr(n); err != nil {
				return fmt.Errorf("%w: discovery network %q", ErrInvalid, n)
			}
		}
	}
	return nil
}

func checkVersion(v string) error {
	if v != "1" && v != "2c" {
		return fmt.Errorf("unsupported SNMP version %q (want 1 or 2c)", v)
	}
	return nil
}

func checkMIBs(names []string) error {
	for _, n := range names {
		if _, ok := mib.Lookup(n); !ok {
			return fmt.Errorf("unknown module %q", n)
		}
	}
	return nil
}

// EffectiveBehavior returns behavior profile with overrides applied
func (c *Config) EffectiveBehavior() BehaviorProfile {
	base := c.Posture.GetProfile()

	if c.Behavior == nil {
		return base
	}

	if c.Behavior.PollInterval != nil {
		base.PollInterval = c.Behavior.PollInterval.Duration()
	}
	if c.Behavior.RequestTimeout != nil {
		base.RequestTimeout = c.Behavior.RequestTimeout.Duration()
	}
	if c.Behavior.MaxConcurrentPolls != nil {
		base.MaxConcurrentPolls = *c.Behavior.MaxConcurrentPolls
	}
	if c.Behavior.MaxRetries != nil {
		base.MaxRetries = *c.Behavior.MaxRetries
	}

	return base
}

// Key names a target in logs and the database: its name, else its address
func (t Target) Key() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Address
}

// Endpoint is a target with every setting resolved
type Endpoint struct {
	Name           string
	Address        string
	Port           uint16
	Community      string
	Version        string
	Timeout        time.Duration
	Retries        int
	MaxRepetitions uint32
	Interval       time.Duration
	MIBs           []string
}

// Endpoint resolves t against the SNMP defaults and the effective behavior.
// The request timeout comes from snmp.timeout when set, else the posture.
func (c *Config) Endpoint(t Target) Endpoint {
	behavior := c.EffectiveBehavior()

	e := Endpoint{
		Name:           t.Key(),
		Address:        t.Address,
		Port:           c.SNMP.Port,
		Community:      c.SNMP.Community,
		Version:        c.SNMP.Version,
		Timeout:        behavior.RequestTimeout,
		Retries:        behavior.MaxRetries,
		MaxRepetitions: c.SNMP.MaxRepetitions,
		Interval:       behavior.PollInterval,
		MIBs:           c.MIBs,
	}
	if c.SNMP.Timeout > 0 {
		e.Timeout = c.SNMP.Timeout.Duration()
	}
	if t.Port != 0 {
		e.Port = t.Port
	}
	if t.Community != "" {
		e.Community = t.Community
	}
	if t.Version != "" {
		e.Version = t.Version
	}
	if t.Interval != nil {
		e.Interval = t.Interval.Duration()
	}
	if len(t.MIBs) > 0 {
		e.MIBs = t.MIBs
	}
	return e
}

// Endpoints resolves every configured target
func (c *Config) Endpoints() []Endpoint {
	out := make([]Endpoint, len(c.Targets))
	for i, t := range c.Targets {
		out[i] = c.Endpoint(t)
	}
	return out
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	behavior := c.EffectiveBehavior()

	summary := fmt.Sprintf("Posture: %s, MIBs: %s\n", c.Posture, strings.Join(c.MIBs, ","))
	summary += fmt.Sprintf("Poll: %s, Timeout: %s, Concurrency: %d\n",
		behavior.PollInterval, behavior.RequestTimeout, behavior.MaxConcurrentPolls)
	summary += fmt.Sprintf("Targets (%d):", len(c.Targets))
	for _, t := range c.Targets {
		summary += fmt.Sprintf(" %s", t.Key())
	}

	return summary
}
