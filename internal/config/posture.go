package config

import "time"

// Posture defines how hard mibwalk leans on the agents it polls
type Posture string

const (
	PostureGentle     Posture = "gentle"     // slow polling, one device at a time
	PostureCautious   Posture = "cautious"   // conservative, suits older switch CPUs
	PostureBalanced   Posture = "balanced"   // default
	PostureAggressive Posture = "aggressive" // fast polling, many devices in parallel
)

// ParsePosture converts a string to Posture, defaulting to PostureBalanced
func ParsePosture(s string) Posture {
	switch s {
	case "gentle":
		return PostureGentle
	case "cautious":
		return PostureCautious
	case "balanced":
		return PostureBalanced
	case "aggressive":
		return PostureAggressive
	default:
		return PostureBalanced
	}
}

// Valid reports whether p names a known posture
func (p Posture) Valid() bool {
	_, ok := PostureProfiles[p]
	return ok
}

// BehaviorProfile defines timing and concurrency settings
type BehaviorProfile struct {
	PollInterval       time.Duration `yaml:"poll_interval"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	MaxConcurrentPolls int           `yaml:"max_concurrent_polls"`
	MaxRetries         int           `yaml:"max_retries"`
	JitterPercent      int           `yaml:"jitter_percent"` // spread of first poll
}

// PostureProfiles maps postures to their default behavior profiles
var PostureProfiles = map[Posture]BehaviorProfile{
	PostureGentle: {
		PollInterval:       30 * time.Minute,
		RequestTimeout:     10 * time.Second,
		MaxConcurrentPolls: 1,
		MaxRetries:         0,
		JitterPercent:      30,
	},
	PostureCautious: {
		PollInterval:       10 * time.Minute,
		RequestTimeout:     5 * time.Second,
		MaxConcurrentPolls: 2,
		MaxRetries:         1,
		JitterPercent:      20,
	},
	PostureBalanced: {
		PollInterval:       5 * time.Minute,
		RequestTimeout:     5 * time.Second,
		MaxConcurrentPolls: 8,
		MaxRetries:         1,
		JitterPercent:      10,
	},
	PostureAggressive: {
		PollInterval:       30 * time.Second,
		RequestTimeout:     2 * time.Second,
		MaxConcurrentPolls: 32,
		MaxRetries:         2,
		JitterPercent:      0,
	},
}

// GetProfile returns the behavior profile for a posture
func (p Posture) GetProfile() BehaviorProfile {
	if profile, ok := PostureProfiles[p]; ok {
		return profile
	}
	return PostureProfiles[PostureBalanced]
}
