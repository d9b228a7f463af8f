package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"mibwalk/internal/config"
	"mibwalk/internal/mib"
	"mibwalk/internal/oid"
	"mibwalk/internal/oidtree"
	"mibwalk/internal/poller"
	"mibwalk/internal/snmp"
	"mibwalk/internal/walk"
)

// endpointFor returns the configured target matching arg by name or
// address, or an ad-hoc endpoint for arg as an address
func endpointFor(arg string) config.Endpoint {
	for _, t := range cfg.Targets {
		if t.Key() == arg || t.Address == arg {
			return cfg.Endpoint(t)
		}
	}
	return cfg.Endpoint(config.Target{Address: arg})
}

// loadTree builds a tree for modules plus any extra ones, always with mib-2
func loadTree(modules []string, extra ...string) (*oidtree.Tree, error) {
	names := []string{"mib-2"}
	for _, m := range append(slices.Clone(modules), extra...) {
		if !slices.Contains(names, m) {
			names = append(names, m)
		}
	}
	return mib.NewTree(names...)
}

type replayConn struct {
	*snmp.StaticClient
}

func (replayConn) Close() error { return nil }

// connector dials real agents, or serves every endpoint from the replay dump
func connector() (poller.Connector, error) {
	if replayPath == "" {
		return poller.SessionConnector(trace), nil
	}

	pairs, err := loadReplay(replayPath)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, ep config.Endpoint) (poller.Conn, error) {
		return replayConn{snmp.NewStaticClient(pairs...)}, nil
	}, nil
}

func loadReplay(path string) ([]walk.Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	defer f.Close()

	pairs, err := snmp.ParseDump(f)
	if err != nil {
		return nil, fmt.Errorf("parse replay %s: %w", path, err)
	}
	return pairs, nil
}

// openDevice connects to the agent named by arg. The returned func closes it.
func openDevice(ctx context.Context, arg string, extraMIBs ...string) (*snmp.Device, func(), error) {
	ep := endpointFor(arg)
	tree, err := loadTree(ep.MIBs, extraMIBs...)
	if err != nil {
		return nil, nil, err
	}

	connect, err := connector()
	if err != nil {
		return nil, nil, err
	}
	conn, err := connect(ctx, ep)
	if err != nil {
		return nil, nil, err
	}
	return snmp.NewDevice(conn, tree), func() { conn.Close() }, nil
}

// parseTarget accepts a numeric OID or a dotted tree name
func parseTarget(tree *oidtree.Tree, s string) (oid.OID, error) {
	if o, err := oid.Parse(s); err == nil {
		return o, nil
	}
	return tree.Resolve(s)
}

// describe renders o by name when the tree knows it
func describe(tree *oidtree.Tree, o oid.OID) string {
	if name, err := tree.Describe(o); err == nil {
		return name.String()
	}
	return o.String()
}
