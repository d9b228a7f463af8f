package discovery

import (
	"strings"
	"time"

	"mibwalk/internal/config"
)

// Option is a functional option for configuring Scanner
type Option func(*Scanner)

// WithTimeout bounds the whole sweep
func WithTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithPorts sets the UDP ports to probe. Invalid lists are ignored.
// Format: "161" or "161,1161" or "161-162"
func WithPorts(ports ...string) Option {
	return func(s *Scanner) {
		if len(ports) == 0 {
			return
		}
		if validated, err := parsePorts(strings.Join(ports, ",")); err == nil {
			s.ports = validated
		}
	}
}

// WithFiltered also reports ports nmap marks open|filtered. Agents with a
// wrong community stay silent and show up only this way.
func WithFiltered(include bool) Option {
	return func(s *Scanner) {
		s.includeFiltered = include
	}
}

// WithSkipHostDiscovery treats every host as up (-Pn), for networks that
// drop ICMP
func WithSkipHostDiscovery(skip bool) Option {
	return func(s *Scanner) {
		s.skipHostDiscovery = skip
	}
}

// FromConfig builds a scanner from the discovery section. Extra options are
// applied after the configured ones.
func FromConfig(cfg config.DiscoveryConfig, opts ...Option) *Scanner {
	base := []Option{WithPorts(cfg.Ports...), WithTimeout(cfg.Timeout.Duration())}
	return NewScanner(cfg.Networks, append(base, opts...)...)
}
