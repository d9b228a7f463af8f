// Package mib holds the namespace definitions and record types for the
// device families mibwalk understands.
//
// Every module adds names to an oidtree.Tree below the base "internet"
// root. Records are plain structs implementing value.Record; the helpers in
// this package walk the right subtree and extract them.
package mib

import (
	"context"
	"fmt"
	"slices"

	"mibwalk/internal/oid"
	"mibwalk/internal/oidtree"
	"mibwalk/internal/value"
	"mibwalk/internal/walk"
)

// Module is a named set of tree definitions
type Module struct {
	Name        string
	Description string
	Populate    func(tree *oidtree.Tree) error
}

var modules = map[string]Module{
	"mib-2": {
		Name:        "mib-2",
		Description: "RFC 1213 system and interfaces groups, IF-MIB ifXTable",
		Populate:    PopulateMIB2,
	},
	"cisco-sb": {
		Name:        "cisco-sb",
		Description: "Cisco small business switch port table (swIfTable)",
		Populate:    PopulateCisco,
	},
}

// Modules returns the known modules sorted by name
func Modules() []Module {
	out := make([]Module, 0, len(modules))
	for _, m := range modules {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b Module) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out
}

// Lookup returns the module with the given name
func Lookup(name string) (Module, bool) {
	m, ok := modules[name]
	return m, ok
}

// NewTree builds the base tree plus the named modules. The result is
// complete and may be shared read-only.
func NewTree(names ...string) (*oidtree.Tree, error) {
	tree, err := Base()
	if err != nil {
		return nil, err
	}
	if err := Populate(tree, names...); err != nil {
		return nil, err
	}
	return tree, nil
}

// Populate adds the named modules to tree in order
func Populate(tree *oidtree.Tree, names ...string) error {
	for _, name := range names {
		m, ok := modules[name]
		if !ok {
			return fmt.Errorf("unknown MIB module %q", name)
		}
		if err := m.Populate(tree); err != nil {
			return fmt.Errorf("populate %s: %w", name, err)
		}
	}
	return nil
}

// Walker fetches and sorts a subtree from one device
type Walker interface {
	Tree() *oidtree.Tree
	Walk(ctx context.Context, roots ...oid.OID) (*walk.Values, error)
}

// Setter writes a single object
type Setter interface {
	Set(ctx context.Context, o oid.OID, v value.Value) (value.Value, error)
}

// Getter reads a single object by tree name and instance arcs
type Getter interface {
	Get(ctx context.Context, name string, instance ...uint32) (value.Value, error)
}

func resolveAll(tree *oidtree.Tree, names ...string) ([]oid.OID, error) {
	out := make([]oid.OID, len(names))
	for i, n := range names {
		o, err := tree.Resolve(n)
		if err != nil {
			return nil, err
		}
		out[i] = o
	}
	return out, nil
}
