package oidtree

import (
	"fmt"

	"mibwalk/internal/oid"
)

// Instruction defines Name as arc Arc beneath the node called Parent.
// Parent must be the batch anchor or a name defined earlier in the batch.
type Instruction struct {
	Name   string
	Parent string
	Arc    uint32
}

// AddInstructions applies a batch of definitions in order below an anchor
func (t *Tree) AddInstructions(anchorName string, anchor oid.OID, instructions []Instruction) error {
	seen := map[string]oid.OID{anchorName: anchor}

	for _, ins := range instructions {
		under, ok := seen[ins.Parent]
		if !ok {
			return fmt.Errorf("%w: adding %q: parent %q (arc %d) not defined", ErrNameResolution, ins.Name, ins.Parent, ins.Arc)
		}
		if _, dup := seen[ins.Name]; dup {
			return fmt.Errorf("%w: %q -> { %q %d }", ErrDuplicateDefinition, ins.Name, ins.Parent, ins.Arc)
		}

		added, err := t.AddUnder(under, oid.New(ins.Arc), ins.Name)
		if err != nil {
			return fmt.Errorf("adding %q: %w", ins.Name, err)
		}
		seen[ins.Name] = added
	}

	return nil
}
