// Package discovery finds SNMP agents with an nmap UDP sweep.
//
// nmap must be on PATH, and UDP scans need root or CAP_NET_RAW. nmap sends a
// real SNMP probe to 161/udp, so hosts reported "open" did answer.
package discovery

import (
	"context"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"
	"github.com/rs/zerolog/log"

	"mibwalk/internal/config"
)

// Agent is a host that answered on an SNMP port
type Agent struct {
	Address   string
	Hostname  string
	MAC       string
	MACVendor string
	Port      uint16
	State     string
}

// Name returns the short hostname when known, else the address
func (a Agent) Name() string {
	if a.Hostname == "" {
		return a.Address
	}
	if idx := strings.Index(a.Hostname, "."); idx > 0 {
		return a.Hostname[:idx]
	}
	return a.Hostname
}

// Target converts the agent into a config target. The port is left empty
// when it is the SNMP default.
func (a Agent) Target() config.Target {
	t := config.Target{Name: a.Name(), Address: a.Address}
	if a.Port != 0 && a.Port != 161 {
		t.Port = a.Port
	}
	return t
}

// Scanner sweeps networks for SNMP agents
type Scanner struct {
	networks          []string
	ports             string
	timeout           time.Duration
	includeFiltered   bool
	skipHostDiscovery bool
}

// NewScanner creates a scanner for CIDR ranges or single addresses
func NewScanner(networks []string, opts ...Option) *Scanner {
	s := &Scanner{
		networks: networks,
		ports:    "161",
		timeout:  2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Discover runs one sweep and returns the agents found
func (s *Scanner) Discover(ctx context.Context) ([]Agent, error) {
	if len(s.networks) == 0 {
		log.Debug().Msg("discovery: no networks configured")
		return nil, nil
	}
	targets, err := expandTargets(s.networks)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := []nmap.Option{
		nmap.WithTargets(targets...),
		nmap.WithUDPScan(),
		nmap.WithPorts(s.ports),
	}
	if s.skipHostDiscovery {
		opts = append(opts, nmap.WithSkipHostDiscovery())
	}

	scanner, err := nmap.NewScanner(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}

	log.Info().Strs("networks", targets).Str("ports", s.ports).Msg("discovery: scan started")
	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if warnings != nil && len(*warnings) > 0 {
		log.Warn().Strs("warnings", *warnings).Msg("discovery: nmap warnings")
	}

	agents, err := s.processResults(result)
	if err != nil {
		return nil, err
	}
	log.Info().Int("agents", len(agents)).Msg("discovery: scan complete")
	return agents, nil
}

// processResults turns a scan into agents, one per open port per host
func (s *Scanner) processResults(result *nmap.Run) ([]Agent, error) {
	if result == nil {
		return nil, fmt.Errorf("nil scan result")
	}

	var agents []Agent
	for _, host := range result.Hosts {
		if len(host.Addresses) == 0 || host.Status.State != "up" {
			continue
		}

		base := Agent{}
		for _, addr := range host.Addresses {
			switch addr.AddrType {
			case "ipv4":
				if base.Address == "" {
					base.Address = addr.Addr
				}
			case "mac":
				base.MAC = strings.ToUpper(addr.Addr)
				base.MACVendor = addr.Vendor
			}
		}
		if base.Address == "" {
			base.Address = host.Addresses[0].Addr
		}
		if len(host.Hostnames) > 0 {
			base.Hostname = host.Hostnames[0].Name
		}

		for _, port := range host.Ports {
			if port.Protocol != "udp" || !s.answered(port.State.State) {
				continue
			}
			a := base
			a.Port = port.ID
			a.State = port.State.State
			agents = append(agents, a)
		}
	}
	return agents, nil
}

func (s *Scanner) answered(state string) bool {
	return state == "open" || (s.includeFiltered && state == "open|filtered")
}

// expandTargets validates CIDR ranges and addresses. Hostnames pass through.
func expandTargets(targets []string) ([]string, error) {
	var expanded []string
	for _, target := range targets {
		if strings.Contains(target, "/") {
			prefix, err := netip.ParsePrefix(target)
			if err != nil {
				return nil, fmt.Errorf("invalid CIDR %s: %w", target, err)
			}
			expanded = append(expanded, prefix.Masked().String())
			continue
		}
		expanded = append(expanded, target)
	}
	return expanded, nil
}

// parsePorts validates an nmap port list such as "161,1161" or "161-162"
func parsePorts(portRange string) (string, error) {
	for _, part := range strings.Split(portRange, ",") {
		part = strings.TrimSpace(part)
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := parsePort(lo)
			if err != nil {
				return "", err
			}
			end, err := parsePort(hi)
			if err != nil {
				return "", err
			}
			if end < start {
				return "", fmt.Errorf("invalid port range: %s", part)
			}
			continue
		}
		if _, err := parsePort(part); err != nil {
			return "", err
		}
	}
	return portRange, nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port number: %s", s)
	}
	return port, nil
}
