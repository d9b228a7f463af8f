package snmp

import (
	"fmt"
	"math"
	"math/big"
	"net/netip"

	"github.com/gosnmp/gosnmp"

	"mibwalk/internal/oid"
	"mibwalk/internal/value"
	"mibwalk/internal/walk"
)

// absent reports whether pdu carries an exception or null instead of a value
func absent(pdu gosnmp.SnmpPDU) bool {
	switch pdu.Type {
	case gosnmp.Null, gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView:
		return true
	}
	return false
}

// fromPDU converts a variable binding. Callers check absent first.
func fromPDU(pdu gosnmp.SnmpPDU) (walk.Pair, error) {
	o, err := oid.Parse(pdu.Name)
	if err != nil {
		return walk.Pair{}, fmt.Errorf("binding name %q: %w", pdu.Name, err)
	}
	v, err := valueOf(pdu)
	if err != nil {
		return walk.Pair{}, fmt.Errorf("binding %s: %w", o, err)
	}
	return walk.Pair{OID: o, Value: v}, nil
}

func valueOf(pdu gosnmp.SnmpPDU) (value.Value, error) {
	switch pdu.Type {
	case gosnmp.Integer:
		n, err := bounded(pdu, math.MinInt32, math.MaxInt32)
		return value.Integer(int32(n)), err
	case gosnmp.Counter32:
		n, err := bounded(pdu, 0, math.MaxUint32)
		return value.Counter32(uint32(n)), err
	case gosnmp.Gauge32, gosnmp.Uinteger32:
		n, err := bounded(pdu, 0, math.MaxUint32)
		return value.Gauge32(uint32(n)), err
	case gosnmp.TimeTicks:
		n, err := bounded(pdu, 0, math.MaxUint32)
		return value.TimeTicks(uint32(n)), err
	case gosnmp.Counter64:
		n := gosnmp.ToBigInt(pdu.Value)
		if n.Sign() < 0 || !n.IsUint64() {
			return value.Value{}, fmt.Errorf("counter64 %v out of range", pdu.Value)
		}
		return value.Counter64(n.Uint64()), nil
	case gosnmp.OctetString:
		b, ok := pdu.Value.([]byte)
		if !ok {
			return value.Value{}, fmt.Errorf("octet string has Go type %T", pdu.Value)
		}
		return value.OctetString(b), nil
	case gosnmp.Opaque:
		b, ok := pdu.Value.([]byte)
		if !ok {
			return value.Value{}, fmt.Errorf("%w: opaque holding %T", ErrUnsupportedType, pdu.Value)
		}
		return value.Opaque(b), nil
	case gosnmp.ObjectIdentifier:
		s, ok := pdu.Value.(string)
		if !ok {
			return value.Value{}, fmt.Errorf("object identifier has Go type %T", pdu.Value)
		}
		o, err := oid.Parse(s)
		if err != nil {
			return value.Value{}, err
		}
		return value.ObjectIdentifier(o), nil
	case gosnmp.IPAddress:
		s, ok := pdu.Value.(string)
		if !ok {
			return value.Value{}, fmt.Errorf("ip address has Go type %T", pdu.Value)
		}
		a, err := netip.ParseAddr(s)
		if err != nil {
			return value.Value{}, fmt.Errorf("ip address: %w", err)
		}
		return value.IPAddress(a), nil
	}
	return value.Value{}, fmt.Errorf("%w: %v", ErrUnsupportedType, pdu.Type)
}

func bounded(pdu gosnmp.SnmpPDU, lo, hi int64) (int64, error) {
	n := gosnmp.ToBigInt(pdu.Value)
	if !n.IsInt64() || n.Cmp(big.NewInt(lo)) < 0 || n.Cmp(big.NewInt(hi)) > 0 {
		return 0, fmt.Errorf("%v %v out of range", pdu.Type, pdu.Value)
	}
	return n.Int64(), nil
}

// toPDU builds a binding for a Set request
func toPDU(o oid.OID, v value.Value) (gosnmp.SnmpPDU, error) {
	pdu := gosnmp.SnmpPDU{Name: "." + o.String()}

	switch v.Kind() {
	case value.KindInteger:
		n, _ := v.AsInt32()
		pdu.Type, pdu.Value = gosnmp.Integer, int(n)
	case value.KindCounter32:
		n, _ := v.AsUint32()
		pdu.Type, pdu.Value = gosnmp.Counter32, n
	case value.KindGauge32:
		n, _ := v.AsUint32()
		pdu.Type, pdu.Value = gosnmp.Gauge32, n
	case value.KindTimeTicks:
		n, _ := v.AsUint32()
		pdu.Type, pdu.Value = gosnmp.TimeTicks, n
	case value.KindCounter64:
		n, _ := v.AsUint64()
		pdu.Type, pdu.Value = gosnmp.Counter64, n
	case value.KindOctetString:
		b, _ := v.AsBytes()
		pdu.Type, pdu.Value = gosnmp.OctetString, b
	case value.KindOpaque:
		b, _ := v.AsBytes()
		pdu.Type, pdu.Value = gosnmp.Opaque, b
	case value.KindObjectIdentifier:
		x, _ := v.AsOID()
		pdu.Type, pdu.Value = gosnmp.ObjectIdentifier, "."+x.String()
	case value.KindIPAddress:
		a, _ := v.AsIP()
		if !a.Is4() {
			return pdu, fmt.Errorf("%w: IpAddress must be IPv4, got %s", ErrUnsupportedType, a)
		}
		pdu.Type, pdu.Value = gosnmp.IPAddress, a.String()
	default:
		return pdu, fmt.Errorf("%w: %s", ErrUnsupportedType, v.Kind())
	}
	return pdu, nil
}
