package mib

import (
	"fmt"

	"mibwalk/internal/oid"
	"mibwalk/internal/oidtree"
)

// internetOID is iso(1) org(3) dod(6) internet(1). Nothing above it is
// useful for polling, so the tree is rooted there.
var internetOID = oid.New(1, 3, 6, 1)

// Base returns a tree holding the SNMPv2-SMI top level
func Base() (*oidtree.Tree, error) {
	tree := oidtree.New()

	internet, err := tree.AddRoot(internetOID, "internet")
	if err != nil {
		return nil, err
	}

	err = tree.AddInstructions("internet", internet, []oidtree.Instruction{
		{Name: "directory", Parent: "internet", Arc: 1},
		{Name: "mgmt", Parent: "internet", Arc: 2},
		{Name: "experimental", Parent: "internet", Arc: 3},
		{Name: "private", Parent: "internet", Arc: 4},
		{Name: "security", Parent: "internet", Arc: 5},
		{Name: "snmpV2", Parent: "internet", Arc: 6},
		{Name: "enterprises", Parent: "private", Arc: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("populate base: %w", err)
	}

	return tree, nil
}
