package value

import (
	"bytes"
	"fmt"
	"math"
	"net/netip"
	"strconv"
	"unicode/utf8"

	"mibwalk/internal/oid"
)

// Shape is the Go form a caller asks a Value to take
type Shape uint8

const (
	ShapeAny Shape = iota
	ShapeInt8
	ShapeInt16
	ShapeInt32
	ShapeInt64
	ShapeUint8
	ShapeUint16
	ShapeUint32
	ShapeUint64
	ShapeString
	ShapeBytes
	ShapeOID
	ShapeIP
	ShapeBool
	ShapeFloat32
	ShapeFloat64
	ShapeChar
	ShapeMap
	ShapeStruct
	ShapeEnum
)

var shapeNames = [...]string{
	ShapeAny:     "any",
	ShapeInt8:    "int8",
	ShapeInt16:   "int16",
	ShapeInt32:   "int32",
	ShapeInt64:   "int64",
	ShapeUint8:   "uint8",
	ShapeUint16:  "uint16",
	ShapeUint32:  "uint32",
	ShapeUint64:  "uint64",
	ShapeString:  "string",
	ShapeBytes:   "bytes",
	ShapeOID:     "OID",
	ShapeIP:      "IP address",
	ShapeBool:    "bool",
	ShapeFloat32: "float32",
	ShapeFloat64: "float64",
	ShapeChar:    "char",
	ShapeMap:     "map",
	ShapeStruct:  "struct",
	ShapeEnum:    "enum",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "Shape(" + strconv.Itoa(int(s)) + ")"
}

// Decode converts v to the Go type matching shape:
// int8..int64, uint8..uint64, string, []byte, oid.OID or netip.Addr.
// ShapeAny picks the shape from v's own kind.
func (v Value) Decode(shape Shape) (any, error) {
	switch shape {
	case ShapeAny:
		return v.Decode(v.naturalShape())

	case ShapeInt8:
		return signed[int8](v, shape, math.MinInt8, math.MaxInt8)
	case ShapeInt16:
		return signed[int16](v, shape, math.MinInt16, math.MaxInt16)
	case ShapeInt32:
		return signed[int32](v, shape, math.MinInt32, math.MaxInt32)
	case ShapeInt64:
		return signed[int64](v, shape, math.MinInt64, math.MaxInt64)

	case ShapeUint8:
		return unsigned[uint8](v, shape, math.MaxUint8)
	case ShapeUint16:
		return unsigned[uint16](v, shape, math.MaxUint16)
	case ShapeUint32:
		return unsigned[uint32](v, shape, math.MaxUint32)
	case ShapeUint64:
		return unsigned[uint64](v, shape, math.MaxUint64)

	case ShapeString:
		if v.kind != KindOctetString {
			return nil, v.shapeError(shape, "")
		}
		if !utf8.Valid(v.buf) {
			return nil, fmt.Errorf("%w: % x", ErrUTF8, v.buf)
		}
		return string(v.buf), nil

	case ShapeBytes:
		if v.kind != KindOctetString && v.kind != KindOpaque {
			return nil, v.shapeError(shape, "")
		}
		return bytes.Clone(v.buf), nil

	case ShapeOID:
		if v.kind != KindObjectIdentifier {
			return nil, v.shapeError(shape, "")
		}
		return v.oid, nil

	case ShapeIP:
		if v.kind != KindIPAddress {
			return nil, v.shapeError(shape, "")
		}
		return v.ip, nil

	case ShapeBool, ShapeFloat32, ShapeFloat64, ShapeChar, ShapeMap, ShapeStruct, ShapeEnum:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedShape, shape)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedShape, shape)
}

func (v Value) naturalShape() Shape {
	switch v.kind {
	case KindInteger:
		return ShapeInt32
	case KindCounter32, KindGauge32, KindTimeTicks:
		return ShapeUint32
	case KindCounter64:
		return ShapeUint64
	case KindOctetString:
		return ShapeString
	case KindObjectIdentifier:
		return ShapeOID
	case KindOpaque:
		return ShapeBytes
	case KindIPAddress:
		return ShapeIP
	}
	// an invalid value fails every numeric request
	return ShapeInt64
}

// int64Value widens v to an int64
func (v Value) int64Value(shape Shape) (int64, error) {
	switch {
	case v.kind == KindInteger:
		return int64(int32(v.num)), nil
	case v.kind.isUnsigned32():
		return int64(v.num), nil
	case v.kind == KindCounter64:
		if v.num > math.MaxInt64 {
			return 0, v.shapeError(shape, "out of range")
		}
		return int64(v.num), nil
	}
	return 0, v.shapeError(shape, "")
}

// uint64Value widens v to a uint64
func (v Value) uint64Value(shape Shape) (uint64, error) {
	switch {
	case v.kind == KindInteger:
		if int32(v.num) < 0 {
			return 0, v.shapeError(shape, "negative")
		}
		return uint64(int32(v.num)), nil
	case v.kind.isUnsigned32(), v.kind == KindCounter64:
		return v.num, nil
	}
	return 0, v.shapeError(shape, "")
}

func signed[T int8 | int16 | int32 | int64](v Value, shape Shape, lo, hi int64) (any, error) {
	n, err := v.int64Value(shape)
	if err != nil {
		return nil, err
	}
	if n < lo || n > hi {
		return nil, v.shapeError(shape, "out of range")
	}
	return T(n), nil
}

func unsigned[T uint8 | uint16 | uint32 | uint64](v Value, shape Shape, hi uint64) (any, error) {
	n, err := v.uint64Value(shape)
	if err != nil {
		return nil, err
	}
	if n > hi {
		return nil, v.shapeError(shape, "out of range")
	}
	return T(n), nil
}

func (v Value) shapeError(shape Shape, detail string) error {
	if detail != "" {
		return fmt.Errorf("%w: %s %s requested as %s: %s", ErrValueShape, v.kind, v, shape, detail)
	}
	return fmt.Errorf("%w: %s %s requested as %s", ErrValueShape, v.kind, v, shape)
}

func decodeAs[T any](v Value, shape Shape) (T, error) {
	var zero T
	out, err := v.Decode(shape)
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

// AsInt32 decodes v as an int32
func (v Value) AsInt32() (int32, error) { return decodeAs[int32](v, ShapeInt32) }

// AsInt64 decodes v as an int64
func (v Value) AsInt64() (int64, error) { return decodeAs[int64](v, ShapeInt64) }

// AsUint32 decodes v as a uint32
func (v Value) AsUint32() (uint32, error) { return decodeAs[uint32](v, ShapeUint32) }

// AsUint64 decodes v as a uint64
func (v Value) AsUint64() (uint64, error) { return decodeAs[uint64](v, ShapeUint64) }

// AsString decodes an octet string as UTF-8 text
func (v Value) AsString() (string, error) { return decodeAs[string](v, ShapeString) }

// AsBytes returns the payload of an octet string or opaque value
func (v Value) AsBytes() ([]byte, error) { return decodeAs[[]byte](v, ShapeBytes) }

// AsOID decodes an object identifier value
func (v Value) AsOID() (oid.OID, error) { return decodeAs[oid.OID](v, ShapeOID) }

// AsIP decodes an IpAddress value
func (v Value) AsIP() (netip.Addr, error) { return decodeAs[netip.Addr](v, ShapeIP) }
