// Package oidtree maps dotted MIB names to numeric OIDs and back.
//
// The tree is an arena of nodes. Each node holds one arc, the index of its
// parent, an optional name and a root flag. Children are found by scanning
// for a parent index, with a (parent, arc) index to keep numeric lookups
// cheap. Names are resolved relative to a root or a parent node, so two
// nodes under different parents may share a name.
//
// A Tree is built by a single goroutine and is read-only afterwards. Once
// construction is done the same *Tree may be shared by any number of
// concurrent readers without locking.
package oidtree

import (
	"fmt"
	"strconv"
	"strings"

	"mibwalk/internal/oid"
)

const noParent = -1

type node struct {
	arc    uint32
	parent int
	name   string
	root   bool
}

type edge struct {
	parent int
	arc    uint32
}

// Tree is the namespace arena
type Tree struct {
	nodes []node
	edges map[edge]int
}

// New returns an empty tree
func New() *Tree {
	return &Tree{edges: make(map[edge]int)}
}

// Len returns the number of nodes, named or not
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Clone returns an independent copy that can be extended without touching t
func (t *Tree) Clone() *Tree {
	c := &Tree{
		nodes: append([]node(nil), t.nodes...),
		edges: make(map[edge]int, len(t.edges)),
	}
	for k, v := range t.edges {
		c.edges[k] = v
	}
	return c
}

// AddRoot names the node at o as a root, creating unnamed intermediate nodes as needed
func (t *Tree) AddRoot(o oid.OID, name string) (oid.OID, error) {
	if o.IsEmpty() {
		return oid.OID{}, fmt.Errorf("%w: root %q has an empty OID", ErrNameSyntax, name)
	}
	if err := checkNodeName(name); err != nil {
		return oid.OID{}, err
	}

	idx := t.populate(noParent, o)
	t.nodes[idx].name = name
	t.nodes[idx].root = true

	return o, nil
}

// AddUnder names the node at parent+rel and returns its absolute OID.
// Adding the same name at the same place twice is a no-op.
func (t *Tree) AddUnder(parent, rel oid.OID, name string) (oid.OID, error) {
	if rel.IsEmpty() {
		return oid.OID{}, fmt.Errorf("%w: %q under %s has an empty relative OID", ErrNameSyntax, name, parent)
	}
	if err := checkNodeName(name); err != nil {
		return oid.OID{}, err
	}

	start, ok := t.find(parent)
	if !ok {
		return oid.OID{}, fmt.Errorf("%w: parent %s for %q", ErrAddressNotFound, parent, name)
	}

	idx := t.populate(start, rel)
	t.nodes[idx].name = name
	t.nodes[idx].root = false

	return parent.Append(rel), nil
}

// Resolve maps a dotted name whose first component is a root name to its OID
func (t *Tree) Resolve(name string) (oid.OID, error) {
	parts, err := splitName(name)
	if err != nil {
		return oid.OID{}, err
	}

	root := -1
	for i := range t.nodes {
		if t.nodes[i].root && t.nodes[i].name == parts[0] {
			root = i
			break
		}
	}
	if root < 0 {
		return oid.OID{}, fmt.Errorf("%w: could not find root node %q", ErrNameResolution, parts[0])
	}

	end, err := t.walkDown(root, parts[1:])
	if err != nil {
		return oid.OID{}, fmt.Errorf("mapping OID %q: %w", name, err)
	}
	return t.oidFor(end), nil
}

// ResolveUnder maps a dotted name relative to the node at parent
func (t *Tree) ResolveUnder(parent oid.OID, name string) (oid.OID, error) {
	parts, err := splitName(name)
	if err != nil {
		return oid.OID{}, err
	}

	start, ok := t.find(parent)
	if !ok {
		return oid.OID{}, fmt.Errorf("%w: no node for parent OID %s", ErrNameResolution, parent)
	}

	end, err := t.walkDown(start, parts)
	if err != nil {
		return oid.OID{}, fmt.Errorf("mapping OID %q under %s: %w", name, parent, err)
	}
	return t.oidFor(end), nil
}

// Describe maps a numeric OID back to a name. Trailing arcs with no node of
// their own (usually table row indices) are stripped until a prefix anchors
// in the tree; they are returned as the numeric suffix of the Name.
func (t *Tree) Describe(o oid.OID) (Name, error) {
	arcs := o.Arcs()

	n := len(arcs)
	anchor := -1
	for n > 0 {
		if idx, ok := t.find(oid.New(arcs[:n]...)); ok {
			anchor = idx
			break
		}
		n--
	}
	if anchor < 0 {
		return Name{}, fmt.Errorf("%w: %s", ErrAddressNotFound, o)
	}

	var components []string
	for idx := anchor; idx != noParent; {
		nd := t.nodes[idx]
		if nd.name != "" {
			components = append(components, nd.name)
		} else {
			components = append(components, strconv.FormatUint(uint64(nd.arc), 10))
		}
		if nd.root {
			break
		}
		idx = nd.parent
	}
	for i, j := 0, len(components)-1; i < j; i, j = i+1, j-1 {
		components[i], components[j] = components[j], components[i]
	}

	return Name{Components: components, Suffix: arcs[n:]}, nil
}

// find follows o arc by arc from the origin
func (t *Tree) find(o oid.OID) (int, bool) {
	cur := noParent
	for i := 0; i < o.Len(); i++ {
		next, ok := t.edges[edge{parent: cur, arc: o.At(i)}]
		if !ok {
			return 0, false
		}
		cur = next
	}
	if cur == noParent {
		return 0, false
	}
	return cur, true
}

// populate ensures a node chain for rel exists below start and returns the last node
func (t *Tree) populate(start int, rel oid.OID) int {
	if t.edges == nil {
		t.edges = make(map[edge]int)
	}

	cur := start
	for i := 0; i < rel.Len(); i++ {
		e := edge{parent: cur, arc: rel.At(i)}
		next, ok := t.edges[e]
		if !ok {
			next = len(t.nodes)
			t.nodes = append(t.nodes, node{arc: e.arc, parent: cur})
			t.edges[e] = next
		}
		cur = next
	}
	return cur
}

// walkDown selects, for each name, the non-root child of the previous node carrying it.
// A purely numeric component also matches an unnamed child with that arc.
func (t *Tree) walkDown(start int, names []string) (int, error) {
	cur := start
	for _, want := range names {
		next := -1
		for i := range t.nodes {
			nd := &t.nodes[i]
			if !nd.root && nd.parent == cur && nd.name == want {
				next = i
				break
			}
		}
		if next < 0 {
			// Describe renders unnamed nodes by arc; accept that form back.
			if arc, err := strconv.ParseUint(want, 10, 32); err == nil {
				if idx, ok := t.edges[edge{parent: cur, arc: uint32(arc)}]; ok && t.nodes[idx].name == "" {
					next = idx
				}
			}
		}
		if next < 0 {
			return 0, fmt.Errorf("%w: could not find %q", ErrNameResolution, want)
		}
		cur = next
	}
	return cur, nil
}

// oidFor climbs from a node to the origin
func (t *Tree) oidFor(idx int) oid.OID {
	var arcs []uint32
	for ; idx != noParent; idx = t.nodes[idx].parent {
		arcs = append(arcs, t.nodes[idx].arc)
	}
	for i, j := 0, len(arcs)-1; i < j; i, j = i+1, j-1 {
		arcs[i], arcs[j] = arcs[j], arcs[i]
	}
	return oid.New(arcs...)
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '-':
		default:
			return false
		}
	}
	return true
}

func splitName(name string) ([]string, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrNameSyntax, name)
	}
	parts := strings.Split(name, ".")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: %q has an empty component", ErrNameSyntax, name)
		}
	}
	return parts, nil
}

// checkNodeName validates a single node name; dots would make it unreachable by Resolve
func checkNodeName(name string) error {
	if !validName(name) || strings.Contains(name, ".") {
		return fmt.Errorf("%w: %q", ErrNameSyntax, name)
	}
	return nil
}
