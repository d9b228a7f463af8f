package mib

import (
	"context"
	"fmt"

	"mibwalk/internal/oidtree"
	"mibwalk/internal/value"
	"mibwalk/internal/walk"
)

// SwIfEntryName is the Cisco SB switch port table entry
const SwIfEntryName = "internet.private.enterprises.cisco.otherEnterprises.ciscoSB.switch001.swInterfaces.swIfTable.swIfEntry"

var swIfEntryColumns = []string{
	"swIfIndex",
	"swIfPhysAddressType",
	"swIfDuplexAdminMode",
	"swIfDuplexOperMode",
	"swIfBackPressureMode",
	"swIfTaggedMode",
	"swIfTransceiverType",
	"swIfLockAdminStatus",
	"swIfLockOperStatus",
	"swIfType",
	"swIfDefaultTag",
	"swIfDefaultPriority",
	"swIfAdminStatus",
	"swIfFlowControlMode",
	"swIfSpeedAdminMode",
	"swIfSpeedDuplexAutoNegotiation",
	"swIfOperFlowControlMode",
	"swIfOperSpeedDuplexAutoNegotiation",
	"swIfOperBackPressureMode",
	"swIfAdminLockAction",
	"swIfOperLockAction",
	"swIfAdminLockTrapEnable",
	"swIfOperLockTrapEnable",
	"swIfOperSuspendedStatus",
	"swIfLockOperTrapCount",
	"swIfLockAdminTrapFrequency",
	"swIfReActivate",
	"swIfAdminMdix",
	"swIfOperMdix",
	"swIfHostMode",
	"swIfSingleHostViolationAdminAction",
	"swIfSingleHostViolationOperAction",
	"swIfSingleHostViolationAdminTrapEnable",
	"swIfSingleHostViolationOperTrapEnable",
	"swIfSingleHostViolationOperTrapCount",
	"swIfSingleHostViolationAdminTrapFrequency",
	"swIfLockLimitationMode",
	"swIfLockMaxMacAddresses",
	"swIfLockMacAddressesCount",
	"swIfAdminSpeedDuplexAutoNegotiationLocalCapabilities",
	"swIfOperSpeedDuplexAutoNegotiationLocalCapabilities",
	"swIfSpeedDuplexNegotiationRemoteCapabilities",
	"swIfAdminComboMode",
	"swIfOperComboMode",
	"swIfAutoNegotiationMasterSlavePreference",
	"swIfPortCapabilities",
	"swIfPortStateDuration",
	"swIfApNegotiationLane",
	"swIfPortFecMode",
	"swIfPortNumOfLanes",
}

// PopulateCisco adds the Cisco small business swIfTable
func PopulateCisco(tree *oidtree.Tree) error {
	enterprises, err := tree.Resolve("internet.private.enterprises")
	if err != nil {
		return err
	}

	in := []oidtree.Instruction{
		{Name: "cisco", Parent: "enterprises", Arc: 9},
		{Name: "otherEnterprises", Parent: "cisco", Arc: 6},
		{Name: "ciscoSB", Parent: "otherEnterprises", Arc: 1},
		{Name: "switch001", Parent: "ciscoSB", Arc: 101},
		{Name: "swInterfaces", Parent: "switch001", Arc: 43},
		{Name: "swIfTable", Parent: "swInterfaces", Arc: 1},
		{Name: "swIfEntry", Parent: "swIfTable", Arc: 1},
	}
	in = appendColumns(in, "swIfEntry", swIfEntryColumns)

	if err := tree.AddInstructions("enterprises", enterprises, in); err != nil {
		return fmt.Errorf("cisco: %w", err)
	}
	return nil
}

// SwitchPort is one swIfTable row. Only the columns worth reporting are
// decoded; the rest stay in the tree for naming.
type SwitchPort struct {
	Index            int32
	DuplexOperMode   Duplex
	TaggedMode       int32
	Type             int32
	DefaultTag       int32
	AdminStatus      AdminStatus
	SpeedAdminMode   int32
	OperSuspended    int32
	HostMode         int32
	LockMaxMACs      int32
	LockMACCount     int32
	PortStateSeconds int32
}

// DecodeFields implements value.Record
func (p *SwitchPort) DecodeFields(f *value.Fields) error {
	p.Index = f.Int32("Index")
	p.DuplexOperMode = Duplex(f.OptionalInt32("DuplexOperMode"))
	p.TaggedMode = f.OptionalInt32("TaggedMode")
	p.Type = f.OptionalInt32("Type")
	p.DefaultTag = f.OptionalInt32("DefaultTag")
	p.AdminStatus = AdminStatus(f.OptionalInt32("AdminStatus"))
	p.SpeedAdminMode = f.OptionalInt32("SpeedAdminMode")
	p.OperSuspended = f.OptionalInt32("OperSuspendedStatus")
	p.HostMode = f.OptionalInt32("HostMode")
	p.LockMaxMACs = f.OptionalInt32("LockMaxMacAddresses")
	p.LockMACCount = f.OptionalInt32("LockMacAddressesCount")
	p.PortStateSeconds = f.OptionalInt32("PortStateDuration")
	return f.Err()
}

// SwitchPortsFrom walks swIfTable. The table has no row count object, so
// every observed row is returned.
func SwitchPortsFrom(ctx context.Context, w Walker) (walk.Table[SwitchPort], error) {
	entry, err := w.Tree().Resolve(SwIfEntryName)
	if err != nil {
		return walk.Table[SwitchPort]{}, err
	}
	vals, err := w.Walk(ctx, entry)
	if err != nil {
		return walk.Table[SwitchPort]{}, fmt.Errorf("walk swIfTable: %w", err)
	}
	return walk.ExtractRows[SwitchPort](vals, entry, "swIf")
}
