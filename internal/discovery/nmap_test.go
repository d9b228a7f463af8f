package discovery

import (
	"testing"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"

	"mibwalk/internal/config"
)

func TestScannerOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s := NewScanner([]string{"192.168.1.0/24"})
		if s.ports != "161" {
			t.Errorf("expected ports 161, got %s", s.ports)
		}
		if s.timeout != 2*time.Minute {
			t.Errorf("expected timeout 2m, got %v", s.timeout)
		}
	})

	t.Run("WithPorts", func(t *testing.T) {
		s := NewScanner(nil, WithPorts("161", "1161"))
		if s.ports != "161,1161" {
			t.Errorf("expected ports 161,1161, got %s", s.ports)
		}
	})

	t.Run("WithPorts invalid is ignored", func(t *testing.T) {
		s := NewScanner(nil, WithPorts("snmp"))
		if s.ports != "161" {
			t.Errorf("expected ports unchanged, got %s", s.ports)
		}
	})

	t.Run("WithTimeout", func(t *testing.T) {
		s := NewScanner(nil, WithTimeout(30*time.Second))
		if s.timeout != 30*time.Second {
			t.Errorf("expected timeout 30s, got %v", s.timeout)
		}
		s = NewScanner(nil, WithTimeout(0))
		if s.timeout != 2*time.Minute {
			t.Errorf("zero timeout should keep default, got %v", s.timeout)
		}
	})

	t.Run("FromConfig", func(t *testing.T) {
		cfg := config.DiscoveryConfig{
			Networks: []string{"10.0.0.0/24"},
			Ports:    []string{"161-162"},
			Timeout:  config.Duration(time.Minute),
		}
		s := FromConfig(cfg, WithFiltered(true))
		if s.ports != "161-162" || s.timeout != time.Minute || !s.includeFiltered {
			t.Errorf("unexpected scanner %+v", s)
		}
		if len(s.networks) != 1 {
			t.Errorf("expected 1 network, got %d", len(s.networks))
		}
	})
}

func testRun() *nmap.Run {
	return &nmap.Run{
		Hosts: []nmap.Host{
			{
				Addresses: []nmap.Address{
					{Addr: "192.168.1.10", AddrType: "ipv4"},
					{Addr: "aa:bb:cc:dd:ee:ff", AddrType: "mac", Vendor: "Cisco Systems"},
				},
				Hostnames: []nmap.Hostname{{Name: "sw-core-1.lab.local"}},
				Status:    nmap.Status{State: "up"},
				Ports: []nmap.Port{
					{ID: 161, Protocol: "udp", State: nmap.State{State: "open"}},
					{ID: 162, Protocol: "udp", State: nmap.State{State: "closed"}},
				},
			},
			{
				Addresses: []nmap.Address{{Addr: "192.168.1.11", AddrType: "ipv4"}},
				Status:    nmap.Status{State: "up"},
				Ports: []nmap.Port{
					{ID: 161, Protocol: "udp", State: nmap.State{State: "open|filtered"}},
				},
			},
			{
				Addresses: []nmap.Address{{Addr: "192.168.1.12", AddrType: "ipv4"}},
				Status:    nmap.Status{State: "down"},
				Ports: []nmap.Port{
					{ID: 161, Protocol: "udp", State: nmap.State{State: "open"}},
				},
			},
			{
				Addresses: []nmap.Address{{Addr: "fe80::1", AddrType: "ipv6"}},
				Status:    nmap.Status{State: "up"},
				Ports: []nmap.Port{
					{ID: 1161, Protocol: "udp", State: nmap.State{State: "open"}},
				},
			},
		},
	}
}

func TestProcessResults(t *testing.T) {
	agents, err := NewScanner(nil).processResults(testRun())
	if err != nil {
		t.Fatalf("processResults failed: %v", err)
	}
	if len(agents) != 2 {
		t.Fatalf("expected 2 agents, got %d: %+v", len(agents), agents)
	}

	sw := agents[0]
	if sw.Address != "192.168.1.10" {
		t.Errorf("expected address 192.168.1.10, got %s", sw.Address)
	}
	if sw.MAC != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("expected upper-case MAC, got %s", sw.MAC)
	}
	if sw.MACVendor != "Cisco Systems" {
		t.Errorf("expected vendor Cisco Systems, got %s", sw.MACVendor)
	}
	if sw.Name() != "sw-core-1" {
		t.Errorf("expected short name sw-core-1, got %s", sw.Name())
	}
	if sw.Port != 161 || sw.State != "open" {
		t.Errorf("unexpected port %d/%s", sw.Port, sw.State)
	}

	v6 := agents[1]
	if v6.Address != "fe80::1" || v6.Port != 1161 {
		t.Errorf("unexpected ipv6 agent %+v", v6)
	}
}

func TestProcessResultsFiltered(t *testing.T) {
	agents, err := NewScanner(nil, WithFiltered(true)).processResults(testRun())
	if err != nil {
		t.Fatalf("processResults failed: %v", err)
	}
	if len(agents) != 3 {
		t.Fatalf("expected 3 agents, got %d", len(agents))
	}
	if agents[1].Address != "192.168.1.11" || agents[1].State != "open|filtered" {
		t.Errorf("unexpected filtered agent %+v", agents[1])
	}
}

func TestProcessResultsNil(t *testing.T) {
	if _, err := NewScanner(nil).processResults(nil); err == nil {
		t.Error("expected error for nil result")
	}
}

func TestAgentTarget(t *testing.T) {
	tests := []struct {
		name  string
		agent Agent
		want  config.Target
	}{
		{
			name:  "default port",
			agent: Agent{Address: "10.0.0.1", Hostname: "edge.example.net", Port: 161},
			want:  config.Target{Name: "edge", Address: "10.0.0.1"},
		},
		{
			name:  "custom port",
			agent: Agent{Address: "10.0.0.2", Port: 1161},
			want:  config.Target{Name: "10.0.0.2", Address: "10.0.0.2", Port: 1161},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.agent.Target()
			if got.Name != tt.want.Name || got.Address != tt.want.Address || got.Port != tt.want.Port {
				t.Errorf("Target() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParsePorts(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"161", false},
		{"161,1161", false},
		{"161-162", false},
		{"161, 1161-1162", false},
		{"0", true},
		{"70000", true},
		{"162-161", true},
		{"snmp", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := parsePorts(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("parsePorts(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestExpandTargets(t *testing.T) {
	got, err := expandTargets([]string{"192.168.1.7/24", "10.0.0.1", "switch.lab"})
	if err != nil {
		t.Fatalf("expandTargets failed: %v", err)
	}
	want := []string{"192.168.1.0/24", "10.0.0.1", "switch.lab"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("target %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	if _, err := expandTargets([]string{"10.0.0.0/33"}); err == nil {
		t.Error("expected error for invalid CIDR")
	}
}
