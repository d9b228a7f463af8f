package value

import (
	"fmt"
	"net/netip"
	"slices"

	"mibwalk/internal/oid"
)

// Record is implemented by types decoded from a set of named values,
// typically a MIB group or one row of a table
type Record interface {
	DecodeFields(f *Fields) error
}

// RecordPtr constrains a pointer to T that implements Record
type RecordPtr[T any] interface {
	*T
	Record
}

// Fields hands named values to a Record. Accessors record the first error
// and return zero values afterwards, so a DecodeFields method can read every
// field and return Err once.
type Fields struct {
	values map[string]Value
	err    error
}

// NewFields wraps a name to value mapping
func NewFields(values map[string]Value) *Fields {
	return &Fields{values: values}
}

// DecodeRecord builds a T from values
func DecodeRecord[T any, PT RecordPtr[T]](values map[string]Value) (T, error) {
	var out T
	f := NewFields(values)
	if err := PT(&out).DecodeFields(f); err != nil {
		return out, err
	}
	if err := f.Err(); err != nil {
		return out, err
	}
	return out, nil
}

// Err returns the first error hit by an accessor
func (f *Fields) Err() error {
	return f.err
}

// Len returns the number of named values
func (f *Fields) Len() int {
	return len(f.values)
}

// Names returns the field names in sorted order
func (f *Fields) Names() []string {
	names := make([]string, 0, len(f.values))
	for n := range f.values {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the raw value for name
func (f *Fields) Lookup(name string) (Value, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Decode fetches name as shape; a missing field is an error
func (f *Fields) Decode(name string, shape Shape) (any, error) {
	v, ok := f.values[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, name)
	}
	out, err := v.Decode(shape)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", name, err)
	}
	return out, nil
}

func field[T any](f *Fields, name string, shape Shape, optional bool) T {
	var zero T
	if f.err != nil {
		return zero
	}
	if optional {
		if _, ok := f.values[name]; !ok {
			return zero
		}
	}
	out, err := f.Decode(name, shape)
	if err != nil {
		f.err = err
		return zero
	}
	return out.(T)
}

// Int8 reads a required int8 field
func (f *Fields) Int8(name string) int8 { return field[int8](f, name, ShapeInt8, false) }

// Int16 reads a required int16 field
func (f *Fields) Int16(name string) int16 { return field[int16](f, name, ShapeInt16, false) }

// Int32 reads a required int32 field
func (f *Fields) Int32(name string) int32 { return field[int32](f, name, ShapeInt32, false) }

// Int64 reads a required int64 field
func (f *Fields) Int64(name string) int64 { return field[int64](f, name, ShapeInt64, false) }

// Uint8 reads a required uint8 field
func (f *Fields) Uint8(name string) uint8 { return field[uint8](f, name, ShapeUint8, false) }

// Uint16 reads a required uint16 field
func (f *Fields) Uint16(name string) uint16 { return field[uint16](f, name, ShapeUint16, false) }

// Uint32 reads a required uint32 field
func (f *Fields) Uint32(name string) uint32 { return field[uint32](f, name, ShapeUint32, false) }

// Uint64 reads a required uint64 field
func (f *Fields) Uint64(name string) uint64 { return field[uint64](f, name, ShapeUint64, false) }

// String reads a required UTF-8 text field
func (f *Fields) String(name string) string { return field[string](f, name, ShapeString, false) }

// Bytes reads a required octet string or opaque field
func (f *Fields) Bytes(name string) []byte { return field[[]byte](f, name, ShapeBytes, false) }

// OID reads a required object identifier field
func (f *Fields) OID(name string) oid.OID { return field[oid.OID](f, name, ShapeOID, false) }

// IP reads a required IpAddress field
func (f *Fields) IP(name string) netip.Addr { return field[netip.Addr](f, name, ShapeIP, false) }

// OptionalInt32 reads an int32 field, zero when absent
func (f *Fields) OptionalInt32(name string) int32 { return field[int32](f, name, ShapeInt32, true) }

// OptionalUint32 reads a uint32 field, zero when absent
func (f *Fields) OptionalUint32(name string) uint32 {
	return field[uint32](f, name, ShapeUint32, true)
}

// OptionalUint64 reads a uint64 field, zero when absent
func (f *Fields) OptionalUint64(name string) uint64 {
	return field[uint64](f, name, ShapeUint64, true)
}

// OptionalString reads a text field, empty when absent
func (f *Fields) OptionalString(name string) string {
	return field[string](f, name, ShapeString, true)
}

// OptionalBytes reads an octet string field, nil when absent
func (f *Fields) OptionalBytes(name string) []byte {
	return field[[]byte](f, name, ShapeBytes, true)
}
