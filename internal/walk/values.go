// Package walk rebuilds typed records from the flat result of an SNMP walk.
//
// A walk returns (OID, value) pairs in no particular order. Values sorts
// them by OID once; after that every subtree is one contiguous slice, found
// by binary search between the subtree root and the first OID past it.
// ExtractObject reads scalar groups (fields at <field>.0) and ExtractTable
// reads conceptual tables (cells at <entry>.<column>.<row>), naming each
// field through the namespace tree.
package walk

import (
	"slices"

	"mibwalk/internal/oid"
	"mibwalk/internal/oidtree"
	"mibwalk/internal/value"
)

// Pair is one variable binding
type Pair struct {
	OID   oid.OID
	Value value.Value
}

// Values is a sorted walk result bound to the tree used to name it.
// It is owned by one poll cycle and not modified after New.
type Values struct {
	tree    *oidtree.Tree
	entries []Pair
}

// New sorts pairs by OID. When an OID repeats, the last pair wins.
func New(tree *oidtree.Tree, pairs []Pair) *Values {
	entries := slices.Clone(pairs)
	slices.SortStableFunc(entries, func(a, b Pair) int {
		return oid.Compare(a.OID, b.OID)
	})

	out := entries[:0]
	for i, p := range entries {
		if i+1 < len(entries) && entries[i+1].OID.Equal(p.OID) {
			continue
		}
		out = append(out, p)
	}

	return &Values{tree: tree, entries: out}
}

// Tree returns the namespace used to name fields
func (w *Values) Tree() *oidtree.Tree {
	return w.tree
}

// Len returns the number of distinct OIDs
func (w *Values) Len() int {
	return len(w.entries)
}

// Pairs returns every binding in OID order
func (w *Values) Pairs() []Pair {
	return slices.Clone(w.entries)
}

// Get returns the value stored at exactly o
func (w *Values) Get(o oid.OID) (value.Value, bool) {
	i, found := w.search(o)
	if !found {
		return value.Value{}, false
	}
	return w.entries[i].Value, true
}

// Range returns the bindings at root and beneath it, in OID order
func (w *Values) Range(root oid.OID) ([]Pair, error) {
	end, err := root.SubtreeEnd()
	if err != nil {
		return nil, err
	}
	lo, _ := w.search(root)
	hi, _ := w.search(end)
	return w.entries[lo:hi], nil
}

func (w *Values) search(o oid.OID) (int, bool) {
	return slices.BinarySearchFunc(w.entries, o, func(p Pair, target oid.OID) int {
		return oid.Compare(p.OID, target)
	})
}
