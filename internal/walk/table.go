package walk

import (
	"fmt"
	"iter"
	"slices"

	"mibwalk/internal/oid"
	"mibwalk/internal/value"
)

// Row is one decoded table row
type Row[T any] struct {
	Index  uint32
	Record T
}

// Table holds decoded rows in ascending index order
type Table[T any] struct {
	rows []Row[T]
}

// Len returns the number of rows
func (t Table[T]) Len() int {
	return len(t.rows)
}

// Get returns the row with the given index
func (t Table[T]) Get(index uint32) (T, bool) {
	i, ok := slices.BinarySearchFunc(t.rows, index, func(r Row[T], idx uint32) int {
		switch {
		case r.Index < idx:
			return -1
		case r.Index > idx:
			return 1
		}
		return 0
	})
	if !ok {
		var zero T
		return zero, false
	}
	return t.rows[i].Record, true
}

// Indices returns the row indices in ascending order
func (t Table[T]) Indices() []uint32 {
	out := make([]uint32, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Index
	}
	return out
}

// Rows returns a copy of the rows
func (t Table[T]) Rows() []Row[T] {
	return slices.Clone(t.rows)
}

// All iterates rows in index order
func (t Table[T]) All() iter.Seq2[uint32, T] {
	return func(yield func(uint32, T) bool) {
		for _, r := range t.rows {
			if !yield(r.Index, r.Record) {
				return
			}
		}
	}
}

func decodeRows[T any, PT value.RecordPtr[T]](entry oid.OID, rows map[uint32]map[string]value.Value) (Table[T], error) {
	indices := make([]uint32, 0, len(rows))
	for idx := range rows {
		indices = append(indices, idx)
	}
	slices.Sort(indices)

	out := make([]Row[T], 0, len(indices))
	for _, idx := range indices {
		rec, err := value.DecodeRecord[T, PT](rows[idx])
		if err != nil {
			return Table[T]{}, fmt.Errorf("decoding %s row %d: %w", entry, idx, err)
		}
		out = append(out, Row[T]{Index: idx, Record: rec})
	}
	return Table[T]{rows: out}, nil
}
