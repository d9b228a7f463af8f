package walk

import (
	"errors"
	"fmt"

	"mibwalk/internal/oid"
)

var (
	// ErrTableSize is returned when the row count object is absent, not an integer, or negative
	ErrTableSize = errors.New("invalid table size")
	// ErrTableIndexGap is returned when a row between 1 and the table size is missing
	ErrTableIndexGap = errors.New("table is missing a row")
	// ErrDuplicateColumn is returned when one row names the same column twice
	ErrDuplicateColumn = errors.New("duplicate column in table row")
	// ErrNamePrefix is returned when a field name lacks the expected prefix
	ErrNamePrefix = errors.New("field name does not carry expected prefix")
	// ErrTableStructure is returned for bindings under a table entry that are not <column>.<row>
	ErrTableStructure = errors.New("unusual table structure")
)

// IndexGapError names the first missing row of a table
type IndexGapError struct {
	Entry oid.OID
	Index uint32
	Size  uint32
}

func (e *IndexGapError) Error() string {
	return fmt.Sprintf("table %s of size %d is missing index %d", e.Entry, e.Size, e.Index)
}

func (e *IndexGapError) Unwrap() error {
	return ErrTableIndexGap
}
