// Package snmp talks to SNMP agents and binds the results to a namespace
// tree. Session is the network client; StaticClient serves a fixed set of
// bindings for replay and tests.
package snmp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/rs/zerolog/log"

	"mibwalk/internal/oid"
	"mibwalk/internal/value"
	"mibwalk/internal/walk"
)

const (
	DefaultPort           = 161
	DefaultCommunity      = "public"
	DefaultTimeout        = 5 * time.Second
	DefaultMaxRepetitions = 63
)

// Client is the set of agent operations the rest of mibwalk uses
type Client interface {
	Get(ctx context.Context, o oid.OID) (value.Value, error)
	Set(ctx context.Context, o oid.OID, v value.Value) (value.Value, error)
	Walk(ctx context.Context, root oid.OID) ([]walk.Pair, error)
}

// Version is the protocol version spoken by a Session
type Version string

const (
	V1  Version = "1"
	V2c Version = "2c"
)

func (v Version) gosnmp() (gosnmp.SnmpVersion, error) {
	switch v {
	case V1:
		return gosnmp.Version1, nil
	case V2c, "":
		return gosnmp.Version2c, nil
	}
	return 0, fmt.Errorf("unsupported SNMP version %q", string(v))
}

// Session is a community-based SNMP client for one agent. Requests are
// serialized; gosnmp connections are not safe for concurrent use.
type Session struct {
	target         string
	port           uint16
	community      string
	version        Version
	timeout        time.Duration
	retries        int
	maxRepetitions uint32
	trace          bool

	mu   sync.Mutex
	conn *gosnmp.GoSNMP
}

// Option configures a Session
type Option func(*Session)

// WithPort sets the agent UDP port
func WithPort(port uint16) Option {
	return func(s *Session) { s.port = port }
}

// WithCommunity sets the community string
func WithCommunity(community string) Option {
	return func(s *Session) { s.community = community }
}

// WithVersion selects SNMPv1 or SNMPv2c
func WithVersion(v Version) Option {
	return func(s *Session) { s.version = v }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// WithRetries sets how many times a request is resent
func WithRetries(n int) Option {
	return func(s *Session) { s.retries = n }
}

// WithMaxRepetitions sets the GETBULK repetition count used by walks
func WithMaxRepetitions(n uint32) Option {
	return func(s *Session) { s.maxRepetitions = n }
}

// WithTrace logs gosnmp packet traces at debug level
func WithTrace(on bool) Option {
	return func(s *Session) { s.trace = on }
}

// NewSession returns an unconnected session for target (host or IP)
func NewSession(target string, opts ...Option) *Session {
	s := &Session{
		target:         target,
		port:           DefaultPort,
		community:      DefaultCommunity,
		version:        V2c,
		timeout:        DefaultTimeout,
		maxRepetitions: DefaultMaxRepetitions,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Target returns the agent address
func (s *Session) Target() string {
	return s.target
}

// Connect opens the UDP socket
func (s *Session) Connect(ctx context.Context) error {
	version, err := s.version.gosnmp()
	if err != nil {
		return err
	}

	g := &gosnmp.GoSNMP{
		Target:             s.target,
		Port:               s.port,
		Transport:          "udp",
		Community:          s.community,
		Version:            version,
		Context:            ctx,
		Timeout:            s.timeout,
		Retries:            s.retries,
		ExponentialTimeout: true,
		MaxOids:            gosnmp.MaxOids,
		MaxRepetitions:     s.maxRepetitions,
	}
	if s.trace {
		lg := log.Logger.With().Str("target", s.target).Str("component", "gosnmp").Logger()
		g.Logger = gosnmp.NewLogger(&lg)
	}

	if err := g.Connect(); err != nil {
		return fmt.Errorf("connect %s:%d: %w", s.target, s.port, err)
	}

	s.mu.Lock()
	s.conn = g
	s.mu.Unlock()

	log.Debug().
		Str("target", s.target).
		Uint16("port", s.port).
		Str("version", string(s.version)).
		Msg("snmp session open")
	return nil
}

// Close releases the socket. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil || s.conn.Conn == nil {
		s.conn = nil
		return nil
	}
	err := s.conn.Conn.Close()
	s.conn = nil
	return err
}

// lock returns the connection bound to ctx with the session mutex held
func (s *Session) lock(ctx context.Context) (*gosnmp.GoSNMP, error) {
	s.mu.Lock()
	if s.conn == nil {
		s.mu.Unlock()
		return nil, ErrNotConnected
	}
	s.conn.Context = ctx
	return s.conn, nil
}

// Get fetches a single object
func (s *Session) Get(ctx context.Context, o oid.OID) (value.Value, error) {
	g, err := s.lock(ctx)
	if err != nil {
		return value.Value{}, err
	}
	defer s.mu.Unlock()

	res, err := g.Get([]string{"." + o.String()})
	if err != nil {
		return value.Value{}, fmt.Errorf("get %s: %w", o, err)
	}
	return singleResult(res, o)
}

// Set writes a single object and returns the value echoed by the agent
func (s *Session) Set(ctx context.Context, o oid.OID, v value.Value) (value.Value, error) {
	pdu, err := toPDU(o, v)
	if err != nil {
		return value.Value{}, fmt.Errorf("set %s: %w", o, err)
	}

	g, err := s.lock(ctx)
	if err != nil {
		return value.Value{}, err
	}
	defer s.mu.Unlock()

	log.Debug().Str("target", s.target).Str("oid", o.String()).Stringer("value", v).Msg("snmp set")

	res, err := g.Set([]gosnmp.SnmpPDU{pdu})
	if err != nil {
		return value.Value{}, fmt.Errorf("set %s: %w", o, err)
	}
	return singleResult(res, o)
}

// Walk fetches every binding beneath root. SNMPv2c uses GETBULK.
func (s *Session) Walk(ctx context.Context, root oid.OID) ([]walk.Pair, error) {
	g, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	start := time.Now()
	var pdus []gosnmp.SnmpPDU
	if g.Version == gosnmp.Version1 {
		pdus, err = g.WalkAll("." + root.String())
	} else {
		pdus, err = g.BulkWalkAll("." + root.String())
	}
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	pairs, err := convertWalk(pdus)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	log.Debug().
		Str("target", s.target).
		Str("root", root.String()).
		Int("pairs", len(pairs)).
		Dur("elapsed", time.Since(start)).
		Msg("snmp walk")
	return pairs, nil
}

func convertWalk(pdus []gosnmp.SnmpPDU) ([]walk.Pair, error) {
	pairs := make([]walk.Pair, 0, len(pdus))
	for _, pdu := range pdus {
		if absent(pdu) {
			log.Debug().Str("oid", pdu.Name).Str("type", fmt.Sprint(pdu.Type)).Msg("skipping empty binding")
			continue
		}
		p, err := fromPDU(pdu)
		if errors.Is(err, ErrUnsupportedType) {
			log.Debug().Err(err).Msg("skipping binding")
			continue
		}
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func singleResult(res *gosnmp.SnmpPacket, o oid.OID) (value.Value, error) {
	if res.Error != gosnmp.NoError {
		return value.Value{}, fmt.Errorf("%s: %w: %v (index %d)", o, ErrAgent, res.Error, res.ErrorIndex)
	}
	if len(res.Variables) != 1 {
		return value.Value{}, fmt.Errorf("%s: %w: %d bindings in response", o, ErrAgent, len(res.Variables))
	}

	pdu := res.Variables[0]
	if absent(pdu) {
		return value.Value{}, fmt.Errorf("%s: %w", o, ErrNoSuchObject)
	}
	p, err := fromPDU(pdu)
	if err != nil {
		return value.Value{}, err
	}
	return p.Value, nil
}
