// Package oid implements SNMP object identifiers as immutable arc sequences.
//
// OIDs order lexicographically, arc by arc, with a strict prefix sorting before
// anything beneath it. Walk results are kept sorted by that order, so every
// subtree occupies one contiguous range bounded by the subtree root and
// SubtreeEnd.
package oid

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalid is returned when an OID string cannot be parsed
var ErrInvalid = errors.New("invalid OID")

// OID is an ordered sequence of arcs. The zero value is the empty OID.
// Arcs are never modified after construction; every derivation copies.
type OID struct {
	arcs []uint32
}

// New creates an OID from the given arcs
func New(arcs ...uint32) OID {
	if len(arcs) == 0 {
		return OID{}
	}
	return OID{arcs: append([]uint32(nil), arcs...)}
}

// Parse reads a dotted OID such as "1.3.6.1.2.1" or ".1.3.6.1"
func Parse(s string) (OID, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), ".")
	if s == "" {
		return OID{}, fmt.Errorf("%w: empty", ErrInvalid)
	}

	parts := strings.Split(s, ".")
	arcs := make([]uint32, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return OID{}, fmt.Errorf("%w: %q: arc %d: %v", ErrInvalid, s, i, err)
		}
		arcs[i] = uint32(n)
	}
	return OID{arcs: arcs}, nil
}

// MustParse is Parse for static tables; it panics on malformed input
func MustParse(s string) OID {
	o, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return o
}

// Len returns the number of arcs
func (o OID) Len() int {
	return len(o.arcs)
}

// IsEmpty reports whether the OID has no arcs
func (o OID) IsEmpty() bool {
	return len(o.arcs) == 0
}

// At returns the arc at position i
func (o OID) At(i int) uint32 {
	return o.arcs[i]
}

// Last returns the final arc, false for the empty OID
func (o OID) Last() (uint32, bool) {
	if len(o.arcs) == 0 {
		return 0, false
	}
	return o.arcs[len(o.arcs)-1], true
}

// Arcs returns a copy of the arcs
func (o OID) Arcs() []uint32 {
	return append([]uint32(nil), o.arcs...)
}

// Parent returns the OID without its last arc
func (o OID) Parent() (OID, bool) {
	if len(o.arcs) == 0 {
		return OID{}, false
	}
	return New(o.arcs[:len(o.arcs)-1]...), true
}

// Child returns a new OID with arc appended
func (o OID) Child(arc uint32) OID {
	out := make([]uint32, len(o.arcs)+1)
	copy(out, o.arcs)
	out[len(o.arcs)] = arc
	return OID{arcs: out}
}

// Append returns o followed by every arc of rel
func (o OID) Append(rel OID) OID {
	out := make([]uint32, 0, len(o.arcs)+len(rel.arcs))
	out = append(out, o.arcs...)
	out = append(out, rel.arcs...)
	return OID{arcs: out}
}

// HasPrefix reports whether prefix is a (not necessarily strict) prefix of o
func (o OID) HasPrefix(prefix OID) bool {
	if len(prefix.arcs) > len(o.arcs) {
		return false
	}
	for i, a := range prefix.arcs {
		if o.arcs[i] != a {
			return false
		}
	}
	return true
}

// RelativeTo returns the arcs of o below base, false if base is not a prefix of o
func (o OID) RelativeTo(base OID) (OID, bool) {
	if !o.HasPrefix(base) {
		return OID{}, false
	}
	return New(o.arcs[len(base.arcs):]...), true
}

// SubtreeEnd returns the first OID after the subtree rooted at o: the last arc
// incremented, under o's parent. Every descendant of o sorts in [o, end).
func (o OID) SubtreeEnd() (OID, error) {
	last, ok := o.Last()
	if !ok {
		return OID{}, fmt.Errorf("%w: empty OID has no subtree bound", ErrInvalid)
	}
	if last == math.MaxUint32 {
		return OID{}, fmt.Errorf("%w: %s: last arc cannot be incremented", ErrInvalid, o)
	}
	parent, _ := o.Parent()
	return parent.Child(last + 1), nil
}

// Equal reports whether both OIDs have the same arcs
func (o OID) Equal(other OID) bool {
	return Compare(o, other) == 0
}

// Compare orders OIDs arc by arc; a strict prefix sorts first
func Compare(a, b OID) int {
	n := min(len(a.arcs), len(b.arcs))
	for i := 0; i < n; i++ {
		switch {
		case a.arcs[i] < b.arcs[i]:
			return -1
		case a.arcs[i] > b.arcs[i]:
			return 1
		}
	}
	switch {
	case len(a.arcs) < len(b.arcs):
		return -1
	case len(a.arcs) > len(b.arcs):
		return 1
	}
	return 0
}

// String renders the dotted form without a leading dot
func (o OID) String() string {
	var sb strings.Builder
	for i, a := range o.arcs {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.FormatUint(uint64(a), 10))
	}
	return sb.String()
}

// MarshalText implements encoding.TextMarshaler
func (o OID) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *OID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
