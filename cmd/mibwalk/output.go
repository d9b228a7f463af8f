package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"mibwalk/internal/domain"
)

func printInterfaces(w io.Writer, states []domain.InterfaceState) {
	fmt.Fprintf(w, "%-6s %-20s %-16s %-8s %-8s %-7s %10s %10s %10s\n",
		"INDEX", "NAME", "TYPE", "ADMIN", "OPER", "DUPLEX", "SPEED", "IN", "OUT")
	for _, s := range states {
		name := s.Name
		if name == "" {
			name = s.Descr
		}
		fmt.Fprintf(w, "%-6d %-20s %-16s %-8s %-8s %-7s %10s %10s %10s\n",
			s.Index, name, s.Type, s.AdminStatus, s.OperStatus, s.Duplex,
			humanize.SI(float64(s.SpeedMbps)*1e6, "bps"),
			humanize.Bytes(s.InOctets), humanize.Bytes(s.OutOctets))
	}
}

func printSnapshotLine(w io.Writer, s *domain.Snapshot) {
	adminUp, operUp := s.Counts()
	fmt.Fprintf(w, "%-16s %-11s %3d interfaces %3d/%-3d up  %s\n",
		s.Target, s.Status, len(s.Interfaces), operUp, adminUp,
		s.Elapsed.Round(time.Millisecond))
	for _, e := range s.Errors {
		fmt.Fprintf(w, "    error: %s\n", e)
	}
}

func printSnapshot(w io.Writer, s *domain.Snapshot) {
	fmt.Fprintf(w, "Snapshot:  %s\n", s.ID)
	fmt.Fprintf(w, "Target:    %s (%s)\n", s.Target, s.Address)
	fmt.Fprintf(w, "Taken:     %s (%s)\n", s.TakenAt.Format(time.RFC3339), humanize.Time(s.TakenAt))
	fmt.Fprintf(w, "Status:    %s\n", s.Status)
	if s.System != nil {
		fmt.Fprintf(w, "System:    %s, %s\n", s.System.Name, s.System.Descr)
		fmt.Fprintf(w, "Vendor:    %s\n", s.System.Vendor)
		fmt.Fprintf(w, "Uptime:    %s\n", s.System.Uptime)
	}
	for _, e := range s.Errors {
		fmt.Fprintf(w, "Error:     %s\n", e)
	}
	if len(s.Interfaces) > 0 {
		fmt.Fprintln(w)
		printInterfaces(w, s.Interfaces)
	}
}
