package snmp

import (
	"context"
	"fmt"

	"mibwalk/internal/oid"
	"mibwalk/internal/oidtree"
	"mibwalk/internal/value"
	"mibwalk/internal/walk"
)

// Device is a Client together with the namespace used to name its objects.
// The tree is shared and must not be modified once a Device uses it.
type Device struct {
	client Client
	tree   *oidtree.Tree
}

// NewDevice binds client to tree
func NewDevice(client Client, tree *oidtree.Tree) *Device {
	return &Device{client: client, tree: tree}
}

// Tree returns the namespace
func (d *Device) Tree() *oidtree.Tree {
	return d.tree
}

// Client returns the underlying client
func (d *Device) Client() Client {
	return d.client
}

// Walk walks each root and returns the combined, sorted result
func (d *Device) Walk(ctx context.Context, roots ...oid.OID) (*walk.Values, error) {
	var pairs []walk.Pair
	for _, root := range roots {
		got, err := d.client.Walk(ctx, root)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, got...)
	}
	return walk.New(d.tree, pairs), nil
}

// WalkName walks the subtree at a dotted name
func (d *Device) WalkName(ctx context.Context, name string) (*walk.Values, oid.OID, error) {
	root, err := d.tree.Resolve(name)
	if err != nil {
		return nil, oid.OID{}, err
	}
	vals, err := d.Walk(ctx, root)
	if err != nil {
		return nil, oid.OID{}, err
	}
	return vals, root, nil
}

// Get reads one object by dotted name plus instance arcs
func (d *Device) Get(ctx context.Context, name string, instance ...uint32) (value.Value, error) {
	o, err := d.tree.Resolve(name)
	if err != nil {
		return value.Value{}, err
	}
	o = o.Append(oid.New(instance...))
	v, err := d.client.Get(ctx, o)
	if err != nil {
		return value.Value{}, fmt.Errorf("get %s: %w", name, err)
	}
	return v, nil
}

// Set writes one object through the client
func (d *Device) Set(ctx context.Context, o oid.OID, v value.Value) (value.Value, error) {
	return d.client.Set(ctx, o, v)
}
