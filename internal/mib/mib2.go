package mib

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"mibwalk/internal/oid"
	"mibwalk/internal/oidtree"
	"mibwalk/internal/value"
	"mibwalk/internal/walk"
)

// Names of the MIB-2 nodes used by the extractors
const (
	SystemName      = "internet.mgmt.mib-2.system"
	SysOREntryName  = "internet.mgmt.mib-2.system.sysORTable.sysOREntry"
	InterfacesName  = "internet.mgmt.mib-2.interfaces"
	IfNumberName    = "internet.mgmt.mib-2.interfaces.ifNumber"
	IfEntryName     = "internet.mgmt.mib-2.interfaces.ifTable.ifEntry"
	IfXEntryName    = "internet.mgmt.mib-2.ifMIB.ifMIBObjects.ifXTable.ifXEntry"
	IfAdminStatName = IfEntryName + ".ifAdminStatus"
	IfOperStatName  = IfEntryName + ".ifOperStatus"
)

var ifEntryColumns = []string{
	"ifIndex", "ifDescr", "ifType", "ifMtu", "ifSpeed", "ifPhysAddress",
	"ifAdminStatus", "ifOperStatus", "ifLastChange", "ifInOctets",
	"ifInUcastPkts", "ifInNUcastPkts", "ifInDiscards", "ifInErrors",
	"ifInUnknownProtos", "ifOutOctets", "ifOutUcastPkts", "ifOutNUcastPkts",
	"ifOutDiscards", "ifOutErrors", "ifOutQLen", "ifSpecific",
}

var ifXEntryColumns = []string{
	"ifName", "ifInMulticastPkts", "ifInBroadcastPkts", "ifOutMulticastPkts",
	"ifOutBroadcastPkts", "ifHCInOctets", "ifHCInUcastPkts",
	"ifHCInMulticastPkts", "ifHCInBroadcastPkts", "ifHCOutOctets",
	"ifHCOutUcastPkts", "ifHCOutMulticastPkts", "ifHCOutBroadcastPkts",
	"ifLinkUpDownTrapEnable", "ifHighSpeed", "ifPromiscuousMode",
	"ifConnectorPresent", "ifAlias", "ifCounterDiscontinuityTime",
}

// PopulateMIB2 adds the system and interfaces groups and the IF-MIB
// extension table
func PopulateMIB2(tree *oidtree.Tree) error {
	mgmt, err := tree.Resolve("internet.mgmt")
	if err != nil {
		return err
	}

	in := []oidtree.Instruction{
		{Name: "mib-2", Parent: "mgmt", Arc: 1},

		{Name: "system", Parent: "mib-2", Arc: 1},
		{Name: "sysDescr", Parent: "system", Arc: 1},
		{Name: "sysObjectID", Parent: "system", Arc: 2},
		{Name: "sysUpTime", Parent: "system", Arc: 3},
		{Name: "sysContact", Parent: "system", Arc: 4},
		{Name: "sysName", Parent: "system", Arc: 5},
		{Name: "sysLocation", Parent: "system", Arc: 6},
		{Name: "sysServices", Parent: "system", Arc: 7},
		{Name: "sysORLastChange", Parent: "system", Arc: 8},
		{Name: "sysORTable", Parent: "system", Arc: 9},
		{Name: "sysOREntry", Parent: "sysORTable", Arc: 1},
		{Name: "sysORIndex", Parent: "sysOREntry", Arc: 1},
		{Name: "sysORID", Parent: "sysOREntry", Arc: 2},
		{Name: "sysORDescr", Parent: "sysOREntry", Arc: 3},
		{Name: "sysORUpTime", Parent: "sysOREntry", Arc: 4},

		{Name: "interfaces", Parent: "mib-2", Arc: 2},
		{Name: "ifNumber", Parent: "interfaces", Arc: 1},
		{Name: "ifTable", Parent: "interfaces", Arc: 2},
		{Name: "ifEntry", Parent: "ifTable", Arc: 1},

		{Name: "ifMIB", Parent: "mib-2", Arc: 31},
		{Name: "ifMIBObjects", Parent: "ifMIB", Arc: 1},
		{Name: "ifXTable", Parent: "ifMIBObjects", Arc: 1},
		{Name: "ifXEntry", Parent: "ifXTable", Arc: 1},
	}
	in = appendColumns(in, "ifEntry", ifEntryColumns)
	in = appendColumns(in, "ifXEntry", ifXEntryColumns)

	return tree.AddInstructions("mgmt", mgmt, in)
}

// appendColumns numbers columns from 1 in order
func appendColumns(in []oidtree.Instruction, parent string, columns []string) []oidtree.Instruction {
	for i, name := range columns {
		in = append(in, oidtree.Instruction{Name: name, Parent: parent, Arc: uint32(i + 1)})
	}
	return in
}

// System is the MIB-2 system group
type System struct {
	Descr        string
	ObjectID     oid.OID
	UpTime       uint32
	Contact      string
	Name         string
	Location     string
	Services     int32
	ORLastChange uint32
}

// DecodeFields implements value.Record
func (s *System) DecodeFields(f *value.Fields) error {
	s.Descr = f.String("Descr")
	s.ObjectID = f.OID("ObjectID")
	s.UpTime = f.Uint32("UpTime")
	s.Contact = f.OptionalString("Contact")
	s.Name = f.OptionalString("Name")
	s.Location = f.OptionalString("Location")
	s.Services = f.OptionalInt32("Services")
	s.ORLastChange = f.OptionalUint32("ORLastChange")
	return f.Err()
}

// Uptime converts sysUpTime hundredths of a second to a duration
func (s System) Uptime() time.Duration {
	return Ticks(s.UpTime)
}

// Ticks converts TimeTicks to a duration
func Ticks(t uint32) time.Duration {
	return time.Duration(t) * 10 * time.Millisecond
}

// Capability is one sysORTable row
type Capability struct {
	ID     oid.OID
	Descr  string
	UpTime uint32
}

// DecodeFields implements value.Record
func (c *Capability) DecodeFields(f *value.Fields) error {
	c.ID = f.OID("ID")
	c.Descr = f.OptionalString("Descr")
	c.UpTime = f.OptionalUint32("UpTime")
	return f.Err()
}

// Interface is one ifTable row
type Interface struct {
	Index       int32
	Descr       string
	Type        IfType
	MTU         int32
	Speed       uint32
	PhysAddress net.HardwareAddr
	AdminStatus AdminStatus
	OperStatus  OperStatus
	LastChange  uint32
	InOctets    uint32
	InUcast     uint32
	InDiscards  uint32
	InErrors    uint32
	OutOctets   uint32
	OutUcast    uint32
	OutDiscards uint32
	OutErrors   uint32
}

// DecodeFields implements value.Record
func (i *Interface) DecodeFields(f *value.Fields) error {
	i.Index = f.Int32("Index")
	i.Descr = f.String("Descr")
	i.Type = IfType(f.OptionalInt32("Type"))
	i.MTU = f.OptionalInt32("Mtu")
	i.Speed = f.OptionalUint32("Speed")
	if b := f.OptionalBytes("PhysAddress"); len(b) > 0 {
		i.PhysAddress = net.HardwareAddr(b)
	}
	i.AdminStatus = AdminStatus(f.Int32("AdminStatus"))
	i.OperStatus = OperStatus(f.Int32("OperStatus"))
	i.LastChange = f.OptionalUint32("LastChange")
	i.InOctets = f.OptionalUint32("InOctets")
	i.InUcast = f.OptionalUint32("InUcastPkts")
	i.InDiscards = f.OptionalUint32("InDiscards")
	i.InErrors = f.OptionalUint32("InErrors")
	i.OutOctets = f.OptionalUint32("OutOctets")
	i.OutUcast = f.OptionalUint32("OutUcastPkts")
	i.OutDiscards = f.OptionalUint32("OutDiscards")
	i.OutErrors = f.OptionalUint32("OutErrors")
	return f.Err()
}

// InterfaceX is one ifXTable row
type InterfaceX struct {
	Name        string
	Alias       string
	HCInOctets  uint64
	HCOutOctets uint64
	HighSpeed   uint32
}

// DecodeFields implements value.Record
func (x *InterfaceX) DecodeFields(f *value.Fields) error {
	x.Name = f.OptionalString("Name")
	x.Alias = f.OptionalString("Alias")
	x.HCInOctets = f.OptionalUint64("HCInOctets")
	x.HCOutOctets = f.OptionalUint64("HCOutOctets")
	x.HighSpeed = f.OptionalUint32("HighSpeed")
	return f.Err()
}

// SystemFrom walks the system group and decodes it
func SystemFrom(ctx context.Context, w Walker) (System, error) {
	root, err := w.Tree().Resolve(SystemName)
	if err != nil {
		return System{}, err
	}
	vals, err := w.Walk(ctx, root)
	if err != nil {
		return System{}, fmt.Errorf("walk system: %w", err)
	}
	return walk.ExtractObject[System](vals, root, "sys")
}

// CapabilitiesFrom walks sysORTable
func CapabilitiesFrom(ctx context.Context, w Walker) (walk.Table[Capability], error) {
	entry, err := w.Tree().Resolve(SysOREntryName)
	if err != nil {
		return walk.Table[Capability]{}, err
	}
	vals, err := w.Walk(ctx, entry)
	if err != nil {
		return walk.Table[Capability]{}, fmt.Errorf("walk sysORTable: %w", err)
	}
	return walk.ExtractRows[Capability](vals, entry, "sysOR")
}

// InterfacesFrom walks the interfaces group and decodes ifTable, checking
// that every row up to ifNumber is present. Agents with sparse ifIndex
// values fail that check; the rows they did report are then returned
// together with the *walk.IndexGapError.
func InterfacesFrom(ctx context.Context, w Walker) (walk.Table[Interface], error) {
	oids, err := resolveAll(w.Tree(), InterfacesName, IfNumberName, IfEntryName)
	if err != nil {
		return walk.Table[Interface]{}, err
	}
	vals, err := w.Walk(ctx, oids[0])
	if err != nil {
		return walk.Table[Interface]{}, fmt.Errorf("walk interfaces: %w", err)
	}

	table, err := walk.ExtractTable[Interface](vals, oids[1], oids[2], "if")
	if !errors.Is(err, walk.ErrTableIndexGap) {
		return table, err
	}
	rows, rowsErr := walk.ExtractRows[Interface](vals, oids[2], "if")
	if rowsErr != nil {
		return walk.Table[Interface]{}, rowsErr
	}
	return rows, err
}

// InterfaceExtensionsFrom walks ifXTable
func InterfaceExtensionsFrom(ctx context.Context, w Walker) (walk.Table[InterfaceX], error) {
	entry, err := w.Tree().Resolve(IfXEntryName)
	if err != nil {
		return walk.Table[InterfaceX]{}, err
	}
	vals, err := w.Walk(ctx, entry)
	if err != nil {
		return walk.Table[InterfaceX]{}, fmt.Errorf("walk ifXTable: %w", err)
	}
	return walk.ExtractRows[InterfaceX](vals, entry, "if")
}

// SetAdminStatus writes ifAdminStatus for one interface and returns the
// status the agent reports back
func SetAdminStatus(ctx context.Context, s Setter, tree *oidtree.Tree, ifIndex uint32, status AdminStatus) (AdminStatus, error) {
	if !status.Valid() {
		return 0, fmt.Errorf("invalid admin status %d", int32(status))
	}
	column, err := tree.Resolve(IfAdminStatName)
	if err != nil {
		return 0, err
	}
	got, err := s.Set(ctx, column.Child(ifIndex), value.Integer(int32(status)))
	if err != nil {
		return 0, fmt.Errorf("set ifAdminStatus.%d: %w", ifIndex, err)
	}
	n, err := got.AsInt32()
	if err != nil {
		return 0, fmt.Errorf("set ifAdminStatus.%d: %w", ifIndex, err)
	}
	return AdminStatus(n), nil
}

// AdminStatusOf reads ifAdminStatus of one interface
func AdminStatusOf(ctx context.Context, g Getter, ifIndex uint32) (AdminStatus, error) {
	v, err := g.Get(ctx, IfAdminStatName, ifIndex)
	if err != nil {
		return 0, err
	}
	n, err := v.AsInt32()
	if err != nil {
		return 0, fmt.Errorf("ifAdminStatus.%d: %w", ifIndex, err)
	}
	return AdminStatus(n), nil
}

// OperStatusOf reads ifOperStatus of one interface
func OperStatusOf(ctx context.Context, g Getter, ifIndex uint32) (OperStatus, error) {
	v, err := g.Get(ctx, IfOperStatName, ifIndex)
	if err != nil {
		return 0, err
	}
	n, err := v.AsInt32()
	if err != nil {
		return 0, fmt.Errorf("ifOperStatus.%d: %w", ifIndex, err)
	}
	return OperStatus(n), nil
}

// WaitOperStatus reads ifOperStatus every interval until it equals want or
// ctx ends. The last status read is returned in both cases.
func WaitOperStatus(ctx context.Context, g Getter, ifIndex uint32, want OperStatus, interval time.Duration) (OperStatus, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last OperStatus
	for {
		got, err := OperStatusOf(ctx, g, ifIndex)
		if err != nil {
			return last, err
		}
		last = got
		if got == want {
			return got, nil
		}

		select {
		case <-ctx.Done():
			return last, fmt.Errorf("ifOperStatus.%d still %s, want %s: %w", ifIndex, last, want, ctx.Err())
		case <-ticker.C:
		}
	}
}
