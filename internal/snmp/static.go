package snmp

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/netip"
	"strconv"
	"strings"
	"sync"

	"mibwalk/internal/oid"
	"mibwalk/internal/value"
	"mibwalk/internal/walk"
)

// StaticClient answers from a fixed set of bindings. Set replaces the
// stored value. Walk returns bindings in map order, like an agent that
// does not sort.
type StaticClient struct {
	mu     sync.RWMutex
	values map[string]walk.Pair
	err    error
}

// NewStaticClient returns a client serving pairs
func NewStaticClient(pairs ...walk.Pair) *StaticClient {
	c := &StaticClient{values: make(map[string]walk.Pair, len(pairs))}
	for _, p := range pairs {
		c.values[p.OID.String()] = p
	}
	return c
}

// Fail makes every following call return err. A nil err clears it.
func (c *StaticClient) Fail(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

// Get implements Client
func (c *StaticClient) Get(ctx context.Context, o oid.OID) (value.Value, error) {
	if err := ctx.Err(); err != nil {
		return value.Value{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.err != nil {
		return value.Value{}, c.err
	}

	p, ok := c.values[o.String()]
	if !ok {
		return value.Value{}, fmt.Errorf("%s: %w", o, ErrNoSuchObject)
	}
	return p.Value, nil
}

// Set implements Client
func (c *StaticClient) Set(ctx context.Context, o oid.OID, v value.Value) (value.Value, error) {
	if err := ctx.Err(); err != nil {
		return value.Value{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return value.Value{}, c.err
	}

	c.values[o.String()] = walk.Pair{OID: o, Value: v}
	return v, nil
}

// Walk implements Client
func (c *StaticClient) Walk(ctx context.Context, root oid.OID) ([]walk.Pair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.err != nil {
		return nil, c.err
	}

	var out []walk.Pair
	for _, p := range c.values {
		if p.OID.HasPrefix(root) && !p.OID.Equal(root) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ParseDump reads numeric snmpwalk output (snmpwalk -On), one binding per
// line in the form ".1.3.6.1.2.1.1.5.0 = STRING: "name"". Blank lines and
// lines starting with # are ignored, as are the "No Such Object",
// "No Such Instance" and "No more variables" exceptions. A quoted STRING
// may run over several lines, and Hex-STRING bytes may wrap onto following
// lines.
func ParseDump(r io.Reader) ([]walk.Pair, error) {
	var (
		pairs []walk.Pair
		cur   dumpBinding
	)
	flush := func() error {
		if cur.text == "" {
			return nil
		}
		p, ok, err := parseDumpLine(cur.text)
		if err != nil {
			return fmt.Errorf("line %d: %w", cur.line, err)
		}
		if ok {
			pairs = append(pairs, p)
		}
		cur = dumpBinding{}
		return nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Text()
		if cur.quoted {
			cur.text += "\n" + raw
			cur.quoted = !closesQuote(raw)
			continue
		}

		text := strings.TrimSpace(raw)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if cur.hex && !strings.Contains(text, " = ") && isHexBytes(text) {
			cur.text += " " + text
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}
		cur = newDumpBinding(line, text)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if cur.quoted {
		return nil, fmt.Errorf("line %d: unterminated string", cur.line)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// dumpBinding is one binding of a dump, possibly spread over several lines
type dumpBinding struct {
	line   int
	text   string
	quoted bool // inside a STRING whose closing quote is on a later line
	hex    bool
}

func newDumpBinding(line int, text string) dumpBinding {
	b := dumpBinding{line: line, text: text}
	_, rest, ok := strings.Cut(text, " = ")
	if !ok {
		return b
	}
	typ, raw, ok := strings.Cut(rest, ":")
	if !ok {
		return b
	}
	raw = strings.TrimSpace(raw)
	switch strings.TrimSpace(typ) {
	case "STRING":
		b.quoted = strings.HasPrefix(raw, `"`) && !closesQuote(raw[1:])
	case "Hex-STRING":
		b.hex = true
	}
	return b
}

// closesQuote reports whether s ends with a double quote that is not escaped
func closesQuote(s string) bool {
	s = strings.TrimRight(s, " \t\r")
	if !strings.HasSuffix(s, `"`) {
		return false
	}
	escapes := 0
	for i := len(s) - 2; i >= 0 && s[i] == '\\'; i-- {
		escapes++
	}
	return escapes%2 == 0
}

func isHexBytes(text string) bool {
	for _, f := range strings.Fields(text) {
		if len(f) != 2 {
			return false
		}
		if _, err := hex.DecodeString(f); err != nil {
			return false
		}
	}
	return true
}

// dumpExceptions are the net-snmp texts printed in place of a missing value
var dumpExceptions = []string{"No Such Object", "No Such Instance", "No more variables"}

// parseDumpLine decodes one binding. It reports false for exception lines.
func parseDumpLine(text string) (walk.Pair, bool, error) {
	name, rest, ok := strings.Cut(text, " = ")
	if !ok {
		return walk.Pair{}, false, fmt.Errorf("missing \" = \" in %q", text)
	}
	o, err := oid.Parse(strings.TrimSpace(name))
	if err != nil {
		return walk.Pair{}, false, err
	}

	rest = strings.TrimSpace(rest)
	for _, e := range dumpExceptions {
		if strings.HasPrefix(rest, e) {
			return walk.Pair{}, false, nil
		}
	}
	if rest == `""` {
		return walk.Pair{OID: o, Value: value.OctetString(nil)}, true, nil
	}
	typ, raw, ok := strings.Cut(rest, ":")
	if !ok {
		return walk.Pair{}, false, fmt.Errorf("%s: missing type in %q", o, rest)
	}
	v, err := parseDumpValue(strings.TrimSpace(typ), strings.TrimSpace(raw))
	if err != nil {
		return walk.Pair{}, false, fmt.Errorf("%s: %w", o, err)
	}
	return walk.Pair{OID: o, Value: v}, true, nil
}

func parseDumpValue(typ, raw string) (value.Value, error) {
	switch typ {
	case "INTEGER":
		n, err := strconv.ParseInt(enumNumber(raw), 10, 32)
		return value.Integer(int32(n)), err
	case "Counter32":
		n, err := strconv.ParseUint(raw, 10, 32)
		return value.Counter32(uint32(n)), err
	case "Gauge32", "Unsigned32":
		n, err := strconv.ParseUint(raw, 10, 32)
		return value.Gauge32(uint32(n)), err
	case "Timeticks":
		if strings.HasPrefix(raw, "(") {
			raw, _, _ = strings.Cut(raw[1:], ")")
		}
		n, err := strconv.ParseUint(raw, 10, 32)
		return value.TimeTicks(uint32(n)), err
	case "Counter64":
		n, err := strconv.ParseUint(raw, 10, 64)
		return value.Counter64(n), err
	case "STRING":
		if s, err := strconv.Unquote(raw); err == nil {
			return value.Text(s), nil
		}
		return value.Text(dumpString(raw)), nil
	case "Hex-STRING":
		b, err := hex.DecodeString(strings.ReplaceAll(raw, " ", ""))
		return value.OctetString(b), err
	case "OID":
		o, err := oid.Parse(raw)
		return value.ObjectIdentifier(o), err
	case "IpAddress":
		a, err := netip.ParseAddr(raw)
		return value.IPAddress(a), err
	case "Opaque":
		b, err := hex.DecodeString(strings.ReplaceAll(raw, " ", ""))
		return value.Opaque(b), err
	}
	return value.Value{}, fmt.Errorf("%w: %s", ErrUnsupportedType, typ)
}

// dumpString strips the quotes around a STRING value and undoes the \" and
// \\ escapes. Values spanning several lines carry raw newlines, which
// strconv.Unquote refuses.
func dumpString(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	return dumpUnescaper.Replace(raw)
}

var dumpUnescaper = strings.NewReplacer(`\"`, `"`, `\\`, `\`)

// enumNumber extracts 1 from "up(1)"
func enumNumber(raw string) string {
	if i := strings.LastIndexByte(raw, '('); i >= 0 && strings.HasSuffix(raw, ")") {
		return raw[i+1 : len(raw)-1]
	}
	return raw
}
