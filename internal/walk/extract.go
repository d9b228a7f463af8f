package walk

import (
	"fmt"
	"strings"

	"mibwalk/internal/oid"
	"mibwalk/internal/value"
)

// ExtractObject decodes the scalar group at root. Each field lives at
// <field>.0 directly beneath root; its name is the tree name of <field>
// with prefix removed. Anything deeper, such as tables inside the group,
// is skipped.
func ExtractObject[T any, PT value.RecordPtr[T]](w *Values, root oid.OID, prefix string) (T, error) {
	var zero T

	fields, err := w.Scalars(root, prefix)
	if err != nil {
		return zero, err
	}

	out, err := value.DecodeRecord[T, PT](fields)
	if err != nil {
		return zero, fmt.Errorf("decoding object %s: %w", root, err)
	}
	return out, nil
}

// Scalars returns the scalar fields of the group at root keyed by stripped name
func (w *Values) Scalars(root oid.OID, prefix string) (map[string]value.Value, error) {
	pairs, err := w.Range(root)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]value.Value)
	for _, p := range pairs {
		rel, _ := p.OID.RelativeTo(root)
		if rel.Len() != 2 || rel.At(1) != 0 {
			continue
		}

		field, _ := p.OID.Parent()
		name, err := w.fieldName(field, prefix)
		if err != nil {
			return nil, err
		}
		fields[name] = p.Value
	}
	return fields, nil
}

// ExtractTable decodes a conceptual table. The row count is read from
// sizeOID.0 and every row from 1 to that count must be present under entry.
// Rows past the count are returned as well.
func ExtractTable[T any, PT value.RecordPtr[T]](w *Values, sizeOID, entry oid.OID, prefix string) (Table[T], error) {
	size, err := w.tableSize(sizeOID)
	if err != nil {
		return Table[T]{}, err
	}

	rows, err := w.rows(entry, prefix)
	if err != nil {
		return Table[T]{}, err
	}

	for i := uint32(1); i <= size; i++ {
		if _, ok := rows[i]; !ok {
			return Table[T]{}, &IndexGapError{Entry: entry, Index: i, Size: size}
		}
	}

	return decodeRows[T, PT](entry, rows)
}

// ExtractRows decodes every row observed under entry, for tables that have
// no row count object
func ExtractRows[T any, PT value.RecordPtr[T]](w *Values, entry oid.OID, prefix string) (Table[T], error) {
	rows, err := w.rows(entry, prefix)
	if err != nil {
		return Table[T]{}, err
	}
	return decodeRows[T, PT](entry, rows)
}

func (w *Values) tableSize(sizeOID oid.OID) (uint32, error) {
	v, ok := w.Get(sizeOID.Child(0))
	if !ok {
		return 0, fmt.Errorf("%w: could not locate table size at %s", ErrTableSize, sizeOID)
	}

	// row counts are INTEGER; Gauge32 and the other unsigned kinds are refused
	if v.Kind() != value.KindInteger {
		return 0, fmt.Errorf("%w: %w: size %s %s at %s", ErrTableSize, value.ErrValueShape, v.Kind(), v, sizeOID)
	}
	n, err := v.AsInt32()
	if err != nil {
		return 0, fmt.Errorf("%w: size %s at %s: %w", ErrTableSize, v, sizeOID, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: size %d at %s", ErrTableSize, n, sizeOID)
	}
	return uint32(n), nil
}

// rows groups the cells under entry by row index
func (w *Values) rows(entry oid.OID, prefix string) (map[uint32]map[string]value.Value, error) {
	pairs, err := w.Range(entry)
	if err != nil {
		return nil, err
	}

	rows := make(map[uint32]map[string]value.Value)
	for _, p := range pairs {
		rel, _ := p.OID.RelativeTo(entry)
		if rel.Len() != 2 || rel.At(1) == 0 {
			return nil, fmt.Errorf("%w: %s under %s", ErrTableStructure, rel, entry)
		}

		column, _ := p.OID.Parent()
		name, err := w.fieldName(column, prefix)
		if err != nil {
			return nil, err
		}

		idx := rel.At(1)
		row, ok := rows[idx]
		if !ok {
			row = make(map[string]value.Value)
			rows[idx] = row
		}
		if _, dup := row[name]; dup {
			return nil, fmt.Errorf("%w: %q[%d] under %s", ErrDuplicateColumn, name, idx, entry)
		}
		row[name] = p.Value
	}
	return rows, nil
}

// fieldName names the object at o and strips prefix from its last component
func (w *Values) fieldName(o oid.OID, prefix string) (string, error) {
	name, err := w.tree.Describe(o)
	if err != nil {
		return "", fmt.Errorf("naming %s: %w", o, err)
	}
	base := name.Base()
	stripped, ok := strings.CutPrefix(base, prefix)
	if !ok {
		return "", fmt.Errorf("%w: name %s not prefixed with %q", ErrNamePrefix, name, prefix)
	}
	return stripped, nil
}
