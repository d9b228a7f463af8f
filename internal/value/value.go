// Package value holds the SNMP variable-binding value model and the
// coercion rules that turn a loosely typed value into a Go scalar.
//
// A Value is one of a closed set of kinds. Callers never switch on the kind
// to read a field; they request a Shape and Decode applies the narrowing
// rules. Records are decoded field by field through Fields.
package value

import (
	"bytes"
	"fmt"
	"net/netip"
	"strconv"

	"mibwalk/internal/oid"
)

// Kind identifies the SNMP type carried by a Value
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInteger
	KindCounter32
	KindGauge32
	KindTimeTicks
	KindCounter64
	KindOctetString
	KindObjectIdentifier
	KindOpaque
	KindIPAddress
)

var kindNames = [...]string{
	KindInvalid:          "invalid",
	KindInteger:          "INTEGER",
	KindCounter32:        "Counter32",
	KindGauge32:          "Gauge32",
	KindTimeTicks:        "TimeTicks",
	KindCounter64:        "Counter64",
	KindOctetString:      "OCTET STRING",
	KindObjectIdentifier: "OBJECT IDENTIFIER",
	KindOpaque:           "Opaque",
	KindIPAddress:        "IpAddress",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// isUnsigned32 reports the kinds that share the unsigned 32-bit coercion rules
func (k Kind) isUnsigned32() bool {
	return k == KindCounter32 || k == KindGauge32 || k == KindTimeTicks
}

// Value is an immutable SNMP value
type Value struct {
	kind Kind
	num  uint64
	buf  []byte
	oid  oid.OID
	ip   netip.Addr
}

// Integer returns an INTEGER (Integer32) value
func Integer(i int32) Value {
	return Value{kind: KindInteger, num: uint64(int64(i))}
}

// Counter32 returns a Counter32 value
func Counter32(u uint32) Value {
	return Value{kind: KindCounter32, num: uint64(u)}
}

// Gauge32 returns a Gauge32 (Unsigned32) value
func Gauge32(u uint32) Value {
	return Value{kind: KindGauge32, num: uint64(u)}
}

// TimeTicks returns a TimeTicks value in hundredths of a second
func TimeTicks(u uint32) Value {
	return Value{kind: KindTimeTicks, num: uint64(u)}
}

// Counter64 returns a Counter64 value
func Counter64(u uint64) Value {
	return Value{kind: KindCounter64, num: u}
}

// OctetString returns an OCTET STRING value holding a copy of b
func OctetString(b []byte) Value {
	return Value{kind: KindOctetString, buf: bytes.Clone(b)}
}

// Text returns an OCTET STRING value holding s
func Text(s string) Value {
	return Value{kind: KindOctetString, buf: []byte(s)}
}

// ObjectIdentifier returns an OBJECT IDENTIFIER value
func ObjectIdentifier(o oid.OID) Value {
	return Value{kind: KindObjectIdentifier, oid: o}
}

// Opaque returns an Opaque value holding a copy of b
func Opaque(b []byte) Value {
	return Value{kind: KindOpaque, buf: bytes.Clone(b)}
}

// IPAddress returns an IpAddress value
func IPAddress(a netip.Addr) Value {
	return Value{kind: KindIPAddress, ip: a}
}

// Kind returns the SNMP type of v
func (v Value) Kind() Kind {
	return v.kind
}

// Equal reports whether both values have the same kind and payload
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindOctetString, KindOpaque:
		return bytes.Equal(v.buf, other.buf)
	case KindObjectIdentifier:
		return v.oid.Equal(other.oid)
	case KindIPAddress:
		return v.ip == other.ip
	}
	return v.num == other.num
}

// String renders v for humans; octet strings are quoted with invalid bytes replaced
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(int64(int32(v.num)), 10)
	case KindCounter32, KindGauge32, KindTimeTicks, KindCounter64:
		return strconv.FormatUint(v.num, 10)
	case KindOctetString:
		return strconv.Quote(string(bytes.ToValidUTF8(v.buf, []byte("\uFFFD"))))
	case KindObjectIdentifier:
		return "<oid:" + v.oid.String() + ">"
	case KindOpaque:
		return fmt.Sprintf("%v", v.buf)
	case KindIPAddress:
		return v.ip.String()
	}
	return "<invalid>"
}
