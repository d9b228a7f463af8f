package oidtree

import (
	"strconv"
	"strings"
)

// Name is the reverse mapping of an OID. Components runs from a root down to
// the deepest node found in the tree; unnamed nodes appear as their arc.
// Suffix holds the trailing arcs that had no node, such as a row index.
type Name struct {
	Components []string
	Suffix     []uint32
}

// Parts returns the components followed by the suffix arcs
func (n Name) Parts() []string {
	out := make([]string, 0, len(n.Components)+len(n.Suffix))
	out = append(out, n.Components...)
	for _, a := range n.Suffix {
		out = append(out, strconv.FormatUint(uint64(a), 10))
	}
	return out
}

// Base returns the last rendered part, suffix included
func (n Name) Base() string {
	parts := n.Parts()
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// Anchor returns the last component found in the tree, ignoring the suffix
func (n Name) Anchor() string {
	if len(n.Components) == 0 {
		return ""
	}
	return n.Components[len(n.Components)-1]
}

// String renders the full dotted name, e.g. "internet.mgmt.mib-2.interfaces.ifTable.ifEntry.ifDescr.3"
func (n Name) String() string {
	return strings.Join(n.Parts(), ".")
}
