package snmp

import (
	"context"
	"errors"
	"net/netip"
	"strings"
	"testing"

	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mibwalk/internal/mib"
	"mibwalk/internal/oid"
	"mibwalk/internal/value"
	"mibwalk/internal/walk"
)

func TestValueOf(t *testing.T) {
	tests := []struct {
		name string
		pdu  gosnmp.SnmpPDU
		want value.Value
	}{
		{"integer", gosnmp.SnmpPDU{Type: gosnmp.Integer, Value: -5}, value.Integer(-5)},
		{"counter32", gosnmp.SnmpPDU{Type: gosnmp.Counter32, Value: uint(7)}, value.Counter32(7)},
		{"gauge32", gosnmp.SnmpPDU{Type: gosnmp.Gauge32, Value: uint(1000000000)}, value.Gauge32(1000000000)},
		{"uinteger32", gosnmp.SnmpPDU{Type: gosnmp.Uinteger32, Value: uint32(3)}, value.Gauge32(3)},
		{"timeticks", gosnmp.SnmpPDU{Type: gosnmp.TimeTicks, Value: uint32(360000)}, value.TimeTicks(360000)},
		{"counter64", gosnmp.SnmpPDU{Type: gosnmp.Counter64, Value: uint64(1) << 40}, value.Counter64(1 << 40)},
		{"octets", gosnmp.SnmpPDU{Type: gosnmp.OctetString, Value: []byte("eth0")}, value.Text("eth0")},
		{"opaque", gosnmp.SnmpPDU{Type: gosnmp.Opaque, Value: []byte{1, 2}}, value.Opaque([]byte{1, 2})},
		{"oid", gosnmp.SnmpPDU{Type: gosnmp.ObjectIdentifier, Value: ".1.3.6.1.4.1.9"}, value.ObjectIdentifier(oid.New(1, 3, 6, 1, 4, 1, 9))},
		{"ip", gosnmp.SnmpPDU{Type: gosnmp.IPAddress, Value: "10.0.0.1"}, value.IPAddress(netip.MustParseAddr("10.0.0.1"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := valueOf(tt.pdu)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestValueOfRejects(t *testing.T) {
	_, err := valueOf(gosnmp.SnmpPDU{Type: gosnmp.Integer, Value: int64(1) << 40})
	require.Error(t, err)

	_, err = valueOf(gosnmp.SnmpPDU{Type: gosnmp.Counter32, Value: -1})
	require.Error(t, err)

	_, err = valueOf(gosnmp.SnmpPDU{Type: gosnmp.Boolean, Value: true})
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = valueOf(gosnmp.SnmpPDU{Type: gosnmp.IPAddress, Value: "not-an-ip"})
	require.Error(t, err)
}

func TestConvertWalkSkipsEmpty(t *testing.T) {
	pdus := []gosnmp.SnmpPDU{
		{Name: ".1.3.6.1.2.1.1.5.0", Type: gosnmp.OctetString, Value: []byte("sw1")},
		{Name: ".1.3.6.1.2.1.1.6.0", Type: gosnmp.Null},
		{Name: ".1.3.6.1.2.1.1.7.0", Type: gosnmp.Boolean, Value: true},
		{Name: ".1.3.6.1.2.1.1.8.0", Type: gosnmp.EndOfMibView},
	}

	pairs, err := convertWalk(pdus)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "1.3.6.1.2.1.1.5.0", pairs[0].OID.String())
}

func TestConvertWalkBadName(t *testing.T) {
	_, err := convertWalk([]gosnmp.SnmpPDU{{Name: ".1.x", Type: gosnmp.Integer, Value: 1}})
	require.ErrorIs(t, err, oid.ErrInvalid)
}

func TestSingleResult(t *testing.T) {
	o := oid.MustParse("1.3.6.1.2.1.1.5.0")

	v, err := singleResult(&gosnmp.SnmpPacket{Variables: []gosnmp.SnmpPDU{
		{Name: ".1.3.6.1.2.1.1.5.0", Type: gosnmp.OctetString, Value: []byte("sw1")},
	}}, o)
	require.NoError(t, err)
	assert.True(t, value.Text("sw1").Equal(v))

	for _, typ := range []gosnmp.Asn1BER{gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView} {
		_, err = singleResult(&gosnmp.SnmpPacket{Variables: []gosnmp.SnmpPDU{{Name: "." + o.String(), Type: typ}}}, o)
		require.ErrorIs(t, err, ErrNoSuchObject)
	}

	_, err = singleResult(&gosnmp.SnmpPacket{Error: gosnmp.NoSuchName, ErrorIndex: 1}, o)
	require.ErrorIs(t, err, ErrAgent)
}

func TestToPDU(t *testing.T) {
	o := oid.MustParse("1.3.6.1.2.1.2.2.1.7.3")

	pdu, err := toPDU(o, value.Integer(2))
	require.NoError(t, err)
	assert.Equal(t, ".1.3.6.1.2.1.2.2.1.7.3", pdu.Name)
	assert.Equal(t, gosnmp.Integer, pdu.Type)
	assert.Equal(t, 2, pdu.Value)

	pdu, err = toPDU(o, value.Text("x"))
	require.NoError(t, err)
	assert.Equal(t, gosnmp.OctetString, pdu.Type)
	assert.Equal(t, []byte("x"), pdu.Value)

	pdu, err = toPDU(o, value.ObjectIdentifier(oid.New(1, 3, 6)))
	require.NoError(t, err)
	assert.Equal(t, ".1.3.6", pdu.Value)

	_, err = toPDU(o, value.IPAddress(netip.MustParseAddr("::1")))
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = toPDU(o, value.Value{})
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSessionDefaults(t *testing.T) {
	s := NewSession("192.0.2.1")
	assert.Equal(t, "192.0.2.1", s.Target())
	assert.Equal(t, uint16(DefaultPort), s.port)
	assert.Equal(t, DefaultCommunity, s.community)
	assert.Equal(t, V2c, s.version)
	assert.Equal(t, DefaultTimeout, s.timeout)
	assert.Zero(t, s.retries)
	assert.Equal(t, uint32(DefaultMaxRepetitions), s.maxRepetitions)

	s = NewSession("192.0.2.1", WithPort(1161), WithCommunity("private"), WithVersion(V1), WithRetries(2), WithMaxRepetitions(10))
	assert.Equal(t, uint16(1161), s.port)
	assert.Equal(t, "private", s.community)
	assert.Equal(t, V1, s.version)
	assert.Equal(t, 2, s.retries)
	assert.Equal(t, uint32(10), s.maxRepetitions)
}

func TestSessionNotConnected(t *testing.T) {
	s := NewSession("192.0.2.1")
	_, err := s.Get(context.Background(), oid.New(1, 3))
	require.ErrorIs(t, err, ErrNotConnected)
	_, err = s.Walk(context.Background(), oid.New(1, 3))
	require.ErrorIs(t, err, ErrNotConnected)
	require.NoError(t, s.Close())
}

func TestSessionBadVersion(t *testing.T) {
	s := NewSession("192.0.2.1", WithVersion("3"))
	require.Error(t, s.Connect(context.Background()))
}

func TestStaticClient(t *testing.T) {
	ctx := context.Background()
	c := NewStaticClient(
		walk.Pair{OID: oid.MustParse("1.3.6.1.2.1.1.5.0"), Value: value.Text("sw1")},
		walk.Pair{OID: oid.MustParse("1.3.6.1.2.1.1.1.0"), Value: value.Text("descr")},
		walk.Pair{OID: oid.MustParse("1.3.6.1.2.1.2.1.0"), Value: value.Integer(0)},
	)

	v, err := c.Get(ctx, oid.MustParse("1.3.6.1.2.1.1.5.0"))
	require.NoError(t, err)
	assert.True(t, value.Text("sw1").Equal(v))

	_, err = c.Get(ctx, oid.MustParse("1.3.6.1.2.1.1.6.0"))
	require.ErrorIs(t, err, ErrNoSuchObject)

	pairs, err := c.Walk(ctx, oid.MustParse("1.3.6.1.2.1.1"))
	require.NoError(t, err)
	assert.Len(t, pairs, 2)

	_, err = c.Set(ctx, oid.MustParse("1.3.6.1.2.1.1.6.0"), value.Text("lab"))
	require.NoError(t, err)
	v, err = c.Get(ctx, oid.MustParse("1.3.6.1.2.1.1.6.0"))
	require.NoError(t, err)
	assert.True(t, value.Text("lab").Equal(v))

	boom := errors.New("timeout")
	c.Fail(boom)
	_, err = c.Walk(ctx, oid.MustParse("1.3.6.1"))
	require.ErrorIs(t, err, boom)
	c.Fail(nil)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = c.Get(cancelled, oid.MustParse("1.3.6.1.2.1.1.5.0"))
	require.ErrorIs(t, err, context.Canceled)
}

const dump = `
# captured from a lab switch
.1.3.6.1.2.1.1.1.0 = STRING: "SG350-10 10-Port Gigabit Managed Switch"
.1.3.6.1.2.1.1.2.0 = OID: .1.3.6.1.4.1.9.6.1.101
.1.3.6.1.2.1.1.3.0 = Timeticks: (360000) 1:00:00.00
.1.3.6.1.2.1.1.4.0 = ""
.1.3.6.1.2.1.1.5.0 = STRING: "sw-lab"
.1.3.6.1.2.1.2.1.0 = INTEGER: 2
.1.3.6.1.2.1.2.2.1.1.1 = INTEGER: 1
.1.3.6.1.2.1.2.2.1.1.2 = INTEGER: 2
.1.3.6.1.2.1.2.2.1.2.1 = STRING: "gi1"
.1.3.6.1.2.1.2.2.1.2.2 = STRING: "gi2"
.1.3.6.1.2.1.2.2.1.6.1 = Hex-STRING: 00 1B 54 00 00 01
.1.3.6.1.2.1.2.2.1.7.1 = INTEGER: up(1)
.1.3.6.1.2.1.2.2.1.7.2 = INTEGER: down(2)
.1.3.6.1.2.1.2.2.1.8.1 = INTEGER: up(1)
.1.3.6.1.2.1.2.2.1.8.2 = INTEGER: down(2)
.1.3.6.1.2.1.2.2.1.10.1 = Counter32: 12345
.1.3.6.1.2.1.31.1.1.1.6.1 = Counter64: 1099511627776
.1.3.6.1.2.1.4.20.1.1.10.0.0.1 = IpAddress: 10.0.0.1
`

func TestParseDump(t *testing.T) {
	pairs, err := ParseDump(strings.NewReader(dump))
	require.NoError(t, err)
	require.Len(t, pairs, 18)

	assert.True(t, value.TimeTicks(360000).Equal(pairs[2].Value))
	assert.True(t, value.OctetString(nil).Equal(pairs[3].Value))
	assert.True(t, value.Integer(1).Equal(pairs[11].Value))
	assert.True(t, value.OctetString([]byte{0, 0x1b, 0x54, 0, 0, 1}).Equal(pairs[10].Value))
	assert.True(t, value.Counter64(1<<40).Equal(pairs[16].Value))
	assert.True(t, value.IPAddress(netip.MustParseAddr("10.0.0.1")).Equal(pairs[17].Value))
}

func TestParseDumpErrors(t *testing.T) {
	_, err := ParseDump(strings.NewReader(".1.3.6 STRING: x\n"))
	require.ErrorContains(t, err, "line 1")

	_, err = ParseDump(strings.NewReader(".1.3.6 = BITS: 80\n"))
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = ParseDump(strings.NewReader("\n.1.3.6 = INTEGER: many\n"))
	require.ErrorContains(t, err, "line 2")
}

func TestParseDumpNetSNMPOutput(t *testing.T) {
	const out = `.1.3.6.1.2.1.1.1.0 = STRING: "Cisco IOS Software, C2960 Software
Technical Support: http://www.cisco.com/techsupport

Compiled by \"prod_rel_team\""
.1.3.6.1.2.1.1.4.0 = STRING: "noc"
.1.3.6.1.2.1.1.7.0 = No Such Object available on this agent at this OID
.1.3.6.1.2.1.2.2.1.6.3 = No Such Instance currently exists at this OID
.1.3.6.1.4.1.9.9.1.0 = Hex-STRING: 00 01 02 03 04 05 06 07 08 09 0A 0B 0C 0D 0E 0F
10 11
.1.3.6.1.2.1.1.5.0 = STRING: "sw"
.1.3.6.1.6.3.1 = No more variables left in this MIB View (It is past the end of the MIB tree)
`
	pairs, err := ParseDump(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, pairs, 4)

	descr, err := pairs[0].Value.AsString()
	require.NoError(t, err)
	assert.Equal(t, "Cisco IOS Software, C2960 Software\nTechnical Support: http://www.cisco.com/techsupport\n\nCompiled by \"prod_rel_team\"", descr)
	assert.Equal(t, "1.3.6.1.2.1.1.4.0", pairs[1].OID.String())

	assert.Equal(t, "1.3.6.1.4.1.9.9.1.0", pairs[2].OID.String())
	b, err := pairs[2].Value.AsBytes()
	require.NoError(t, err)
	assert.Len(t, b, 18)
	assert.Equal(t, byte(0x11), b[17])

	assert.Equal(t, "1.3.6.1.2.1.1.5.0", pairs[3].OID.String())
}

func TestParseDumpUnterminatedString(t *testing.T) {
	_, err := ParseDump(strings.NewReader(".1.3.6.1.2.1.1.1.0 = STRING: \"open\nstill open\n"))
	require.ErrorContains(t, err, "line 1: unterminated string")
}

func TestDeviceWithMIB(t *testing.T) {
	pairs, err := ParseDump(strings.NewReader(dump))
	require.NoError(t, err)

	tree, err := mib.NewTree("mib-2", "cisco-sb")
	require.NoError(t, err)
	dev := NewDevice(NewStaticClient(pairs...), tree)
	ctx := context.Background()

	sys, err := mib.SystemFrom(ctx, dev)
	require.NoError(t, err)
	assert.Equal(t, "sw-lab", sys.Name)
	assert.Empty(t, sys.Contact)

	ifs, err := mib.InterfacesFrom(ctx, dev)
	require.NoError(t, err)
	require.Equal(t, 2, ifs.Len())
	gi2, _ := ifs.Get(2)
	assert.Equal(t, mib.AdminDown, gi2.AdminStatus)

	got, err := mib.SetAdminStatus(ctx, dev, tree, 2, mib.AdminUp)
	require.NoError(t, err)
	assert.Equal(t, mib.AdminUp, got)

	v, err := dev.Get(ctx, mib.IfAdminStatName, 2)
	require.NoError(t, err)
	assert.True(t, value.Integer(1).Equal(v))

	vals, root, err := dev.WalkName(ctx, "internet.mgmt.mib-2.system")
	require.NoError(t, err)
	assert.Equal(t, "1.3.6.1.2.1.1", root.String())
	assert.Equal(t, 5, vals.Len())
}
