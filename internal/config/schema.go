package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version   int               `yaml:"version" toml:"version"`
	Posture   Posture           `yaml:"posture" toml:"posture"`
	Behavior  *BehaviorOverride `yaml:"behavior,omitempty" toml:"behavior,omitempty"`
	Log       LogConfig         `yaml:"log" toml:"log"`
	Database  DatabaseConfig    `yaml:"database" toml:"database"`
	SNMP      SNMPConfig        `yaml:"snmp" toml:"snmp"`
	MIBs      []string          `yaml:"mibs,omitempty" toml:"mibs,omitempty"`
	Targets   []Target          `yaml:"targets,omitempty" toml:"targets,omitempty"`
	Discovery DiscoveryConfig   `yaml:"discovery" toml:"discovery"`
}

// LogConfig controls the process logger
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`   // trace, debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // console, json, auto
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path      string   `yaml:"path" toml:"path"`
	Retention Duration `yaml:"retention" toml:"retention"` // 0 keeps everything
}

// SNMPConfig holds agent defaults shared by every target
type SNMPConfig struct {
	Port           uint16   `yaml:"port" toml:"port"`
	Community      string   `yaml:"community" toml:"community"`
	Version        string   `yaml:"version" toml:"version"` // "1" or "2c"
	Timeout        Duration `yaml:"timeout" toml:"timeout"`
	MaxRepetitions uint32   `yaml:"max_repetitions" toml:"max_repetitions"`
}

// Target is one polled agent. Empty fields inherit from SNMPConfig and the
// posture profile.
type Target struct {
	Name      string    `yaml:"name" toml:"name"`
	Address   string    `yaml:"address" toml:"address"`
	Port      uint16    `yaml:"port,omitempty" toml:"port,omitempty"`
	Community string    `yaml:"community,omitempty" toml:"community,omitempty"`
	Version   string    `yaml:"version,omitempty" toml:"version,omitempty"`
	Interval  *Duration `yaml:"interval,omitempty" toml:"interval,omitempty"`
	MIBs      []string  `yaml:"mibs,omitempty" toml:"mibs,omitempty"`
}

// DiscoveryConfig holds nmap sweep settings
type DiscoveryConfig struct {
	Networks []string `yaml:"networks,omitempty" toml:"networks,omitempty"`
	Ports    []string `yaml:"ports,omitempty" toml:"ports,omitempty"`
	Timeout  Duration `yaml:"timeout" toml:"timeout"`
}

// BehaviorOverride allows overriding posture defaults
type BehaviorOverride struct {
	PollInterval       *Duration `yaml:"poll_interval,omitempty" toml:"poll_interval,omitempty"`
	RequestTimeout     *Duration `yaml:"request_timeout,omitempty" toml:"request_timeout,omitempty"`
	MaxConcurrentPolls *int      `yaml:"max_concurrent_polls,omitempty" toml:"max_concurrent_polls,omitempty"`
	MaxRetries         *int      `yaml:"max_retries,omitempty" toml:"max_retries,omitempty"`
}

// Duration wraps time.Duration for YAML and TOML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
