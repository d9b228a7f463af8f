package poller

import (
	"context"
	"slices"

	"github.com/rs/zerolog/log"

	"mibwalk/internal/config"
	"mibwalk/internal/domain"
	"mibwalk/internal/mib"
	"mibwalk/internal/oidtree"
	"mibwalk/internal/snmp"
	"mibwalk/internal/walk"
)

// collect fills snap from dev. A failed walk stops collection; a failed
// extraction is recorded and the next module is tried.
func collect(ctx context.Context, dev *snmp.Device, client *watchedClient, ep config.Endpoint, snap *domain.Snapshot) {
	failed := func(module string, err error) bool {
		snap.AddError(err)
		log.Debug().Err(err).Str("target", ep.Name).Str("module", module).Msg("extraction failed")
		return client.err != nil
	}

	sys, err := mib.SystemFrom(ctx, dev)
	if err != nil {
		if failed("system", err) {
			return
		}
	} else {
		info := SystemInfo(sys, dev.Tree())
		snap.System = &info
	}

	ifs, err := mib.InterfacesFrom(ctx, dev)
	if err != nil {
		if failed("interfaces", err) {
			return
		}
	}
	snap.Interfaces = InterfaceStates(ifs)

	xs, err := mib.InterfaceExtensionsFrom(ctx, dev)
	if err != nil {
		if failed("ifXTable", err) {
			return
		}
	} else {
		MergeExtensions(snap.Interfaces, xs)
	}

	if slices.Contains(ep.MIBs, "cisco-sb") {
		ports, err := mib.SwitchPortsFrom(ctx, dev)
		if err != nil {
			failed("cisco-sb", err)
			return
		}
		MergeSwitchPorts(snap.Interfaces, ports)
	}
}

// SystemInfo converts the system group, naming the vendor OID from tree
func SystemInfo(sys mib.System, tree *oidtree.Tree) domain.SystemInfo {
	info := domain.SystemInfo{
		Name:     sys.Name,
		Descr:    sys.Descr,
		Contact:  sys.Contact,
		Location: sys.Location,
		ObjectID: sys.ObjectID.String(),
		Uptime:   sys.Uptime(),
	}
	if name, err := tree.Describe(sys.ObjectID); err == nil {
		info.Vendor = name.String()
	}
	return info
}

// InterfaceStates converts ifTable rows in index order
func InterfaceStates(t walk.Table[mib.Interface]) []domain.InterfaceState {
	if t.Len() == 0 {
		return nil
	}
	out := make([]domain.InterfaceState, 0, t.Len())
	for idx, i := range t.All() {
		s := domain.InterfaceState{
			Index:       idx,
			Descr:       i.Descr,
			AdminStatus: i.AdminStatus.String(),
			OperStatus:  i.OperStatus.String(),
			SpeedMbps:   uint64(i.Speed) / 1_000_000,
			InOctets:    uint64(i.InOctets),
			OutOctets:   uint64(i.OutOctets),
			InErrors:    i.InErrors,
			OutErrors:   i.OutErrors,
		}
		if i.Type != 0 {
			s.Type = i.Type.String()
		}
		if len(i.PhysAddress) > 0 {
			s.MAC = i.PhysAddress.String()
		}
		out = append(out, s)
	}
	return out
}

// MergeExtensions prefers the 64-bit counters and ifHighSpeed when the agent
// reports them
func MergeExtensions(states []domain.InterfaceState, xs walk.Table[mib.InterfaceX]) {
	for i := range states {
		x, ok := xs.Get(states[i].Index)
		if !ok {
			continue
		}
		states[i].Name = x.Name
		states[i].Alias = x.Alias
		if x.HCInOctets > 0 {
			states[i].InOctets = x.HCInOctets
		}
		if x.HCOutOctets > 0 {
			states[i].OutOctets = x.HCOutOctets
		}
		if x.HighSpeed > 0 {
			states[i].SpeedMbps = uint64(x.HighSpeed)
		}
	}
}

// MergeSwitchPorts copies duplex from swIfTable. Cisco SB agents index
// swIfTable by ifIndex.
func MergeSwitchPorts(states []domain.InterfaceState, ports walk.Table[mib.SwitchPort]) {
	for i := range states {
		p, ok := ports.Get(states[i].Index)
		if !ok || p.DuplexOperMode == 0 {
			continue
		}
		states[i].Duplex = p.DuplexOperMode.String()
	}
}
