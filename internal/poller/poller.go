// Package poller walks configured SNMP targets on a schedule and stores a
// snapshot per poll.
//
// Each target gets its own goroutine and ticker. A semaphore bounds how many
// polls talk to agents at once, so a long target list cannot flood the
// network. The first poll of each target is delayed by a random share of its
// interval to spread load after a restart.
package poller

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"mibwalk/internal/config"
	"mibwalk/internal/domain"
	"mibwalk/internal/mib"
	"mibwalk/internal/oid"
	"mibwalk/internal/oidtree"
	"mibwalk/internal/repository"
	"mibwalk/internal/snmp"
	"mibwalk/internal/walk"
)

// DefaultInterval is used for endpoints without an interval
const DefaultInterval = 5 * time.Minute

var (
	// ErrUnreachable marks a poll that failed in transport
	ErrUnreachable = errors.New("target unreachable")

	// ErrUnknownTarget is returned for a name that was never added
	ErrUnknownTarget = errors.New("unknown target")

	// ErrRunning is returned by Start on a running poller
	ErrRunning = errors.New("poller already running")
)

// Conn is an open agent connection
type Conn interface {
	snmp.Client
	Close() error
}

// Connector opens a connection to an endpoint
type Connector func(ctx context.Context, ep config.Endpoint) (Conn, error)

// SessionConnector dials endpoints over UDP with gosnmp
func SessionConnector(trace bool) Connector {
	return func(ctx context.Context, ep config.Endpoint) (Conn, error) {
		s := snmp.NewSession(ep.Address,
			snmp.WithPort(ep.Port),
			snmp.WithCommunity(ep.Community),
			snmp.WithVersion(snmp.Version(ep.Version)),
			snmp.WithTimeout(ep.Timeout),
			snmp.WithRetries(ep.Retries),
			snmp.WithMaxRepetitions(ep.MaxRepetitions),
			snmp.WithTrace(trace),
		)
		if err := s.Connect(ctx); err != nil {
			return nil, err
		}
		return s, nil
	}
}

// SnapshotFunc is called after every stored snapshot
type SnapshotFunc func(s *domain.Snapshot)

// Option configures a Poller
type Option func(*Poller)

// WithConcurrency caps simultaneous polls. Values below one mean one.
func WithConcurrency(n int) Option {
	return func(p *Poller) {
		if n < 1 {
			n = 1
		}
		p.sem = make(chan struct{}, n)
	}
}

// WithJitter delays each target's first poll by up to pct percent of its
// interval
func WithJitter(pct int) Option {
	return func(p *Poller) { p.jitterPct = pct }
}

// WithRetention prunes snapshots older than d after each save
func WithRetention(d time.Duration) Option {
	return func(p *Poller) { p.retention = d }
}

// WithSnapshotHandler registers fn to receive every stored snapshot
func WithSnapshotHandler(fn SnapshotFunc) Option {
	return func(p *Poller) { p.onSnapshot = fn }
}

// Poller polls endpoints and persists the results
type Poller struct {
	mu      sync.RWMutex
	targets map[string]config.Endpoint
	trees   map[string]*oidtree.Tree

	connect    Connector
	store      repository.SnapshotStore
	sem        chan struct{}
	jitterPct  int
	retention  time.Duration
	onSnapshot SnapshotFunc

	ctx    context.Context
	cancel context.CancelFunc
	loops  map[string]context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a poller saving into store
func New(store repository.SnapshotStore, connect Connector, opts ...Option) *Poller {
	p := &Poller{
		targets: make(map[string]config.Endpoint),
		trees:   make(map[string]*oidtree.Tree),
		loops:   make(map[string]context.CancelFunc),
		connect: connect,
		store:   store,
		sem:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Add registers an endpoint. Its MIB modules are checked here so a bad name
// fails at startup rather than on the first poll. On a running poller the
// endpoint's loop starts at once.
func (p *Poller) Add(ep config.Endpoint) error {
	if ep.Name == "" {
		return errors.New("endpoint name is required")
	}
	if _, err := p.treeFor(ep.MIBs); err != nil {
		return fmt.Errorf("target %s: %w", ep.Name, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.targets[ep.Name]; exists {
		return fmt.Errorf("target %s already registered", ep.Name)
	}
	p.targets[ep.Name] = ep
	if p.cancel != nil {
		p.startLoop(ep)
	}
	return nil
}

// Remove unregisters an endpoint and stops its loop
func (p *Poller) Remove(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.targets[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, name)
	}
	delete(p.targets, name)
	if cancel, ok := p.loops[name]; ok {
		cancel()
		delete(p.loops, name)
	}
	return nil
}

// Sync makes the registered endpoints match eps. Endpoints whose settings
// changed are replaced and count as both removed and added.
func (p *Poller) Sync(eps []config.Endpoint) (added, removed int, err error) {
	want := make(map[string]config.Endpoint, len(eps))
	for _, ep := range eps {
		want[ep.Name] = ep
	}
	for _, ep := range p.Targets() {
		if next, ok := want[ep.Name]; ok && reflect.DeepEqual(ep, next) {
			delete(want, ep.Name)
			continue
		}
		if err := p.Remove(ep.Name); err == nil {
			removed++
		}
	}

	var errs []error
	for _, ep := range eps {
		if _, ok := want[ep.Name]; !ok {
			continue
		}
		if err := p.Add(ep); err != nil {
			errs = append(errs, err)
			continue
		}
		added++
	}
	return added, removed, errors.Join(errs...)
}

// Targets returns the registered endpoints sorted by name
func (p *Poller) Targets() []config.Endpoint {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]config.Endpoint, 0, len(p.targets))
	for _, ep := range p.targets {
		out = append(out, ep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Start begins a polling loop per endpoint
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return ErrRunning
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	for _, ep := range p.targets {
		p.startLoop(ep)
	}

	log.Info().Int("targets", len(p.targets)).Int("concurrency", cap(p.sem)).Msg("poller started")
	return nil
}

// startLoop runs ep under the poller context. Callers hold mu.
func (p *Poller) startLoop(ep config.Endpoint) {
	ctx, cancel := context.WithCancel(p.ctx)
	p.loops[ep.Name] = cancel
	p.wg.Add(1)
	go p.loop(ctx, ep)
}

// Stop cancels every loop and waits for in-flight polls
func (p *Poller) Stop() error {
	p.mu.Lock()
	cancel := p.cancel
	p.ctx, p.cancel = nil, nil
	clear(p.loops)
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
	return nil
}

// PollOnce polls one registered target immediately
func (p *Poller) PollOnce(ctx context.Context, name string) (*domain.Snapshot, error) {
	p.mu.RLock()
	ep, ok := p.targets[name]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, name)
	}
	return p.poll(ctx, ep)
}

// PollAll polls every target concurrently and returns the snapshots in name
// order. Targets that produced no snapshot are left out; their errors are
// joined.
func (p *Poller) PollAll(ctx context.Context) ([]*domain.Snapshot, error) {
	targets := p.Targets()
	snaps := make([]*domain.Snapshot, len(targets))
	errs := make([]error, len(targets))

	var wg sync.WaitGroup
	for i, ep := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snaps[i], errs[i] = p.poll(ctx, ep)
		}()
	}
	wg.Wait()

	return slices.DeleteFunc(snaps, func(s *domain.Snapshot) bool { return s == nil }), errors.Join(errs...)
}

func (p *Poller) loop(ctx context.Context, ep config.Endpoint) {
	defer p.wg.Done()

	interval := ep.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	if delay := p.jitter(interval); delay > 0 {
		log.Debug().Str("target", ep.Name).Dur("delay", delay).Msg("delaying first poll")
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}

	p.pollLogged(ctx, ep)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollLogged(ctx, ep)
		}
	}
}

func (p *Poller) pollLogged(ctx context.Context, ep config.Endpoint) {
	if _, err := p.poll(ctx, ep); err != nil && ctx.Err() == nil {
		log.Warn().Err(err).Str("target", ep.Name).Msg("poll failed")
	}
}

func (p *Poller) jitter(interval time.Duration) time.Duration {
	if p.jitterPct <= 0 {
		return 0
	}
	span := int64(interval) * int64(p.jitterPct) / 100
	if span <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(span))
}

// treeFor returns the shared tree for a module set. mib-2 is always loaded.
func (p *Poller) treeFor(modules []string) (*oidtree.Tree, error) {
	names := append([]string{"mib-2"}, modules...)
	slices.Sort(names)
	names = slices.Compact(names)
	key := strings.Join(names, ",")

	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.trees[key]; ok {
		return t, nil
	}
	t, err := mib.NewTree(names...)
	if err != nil {
		return nil, err
	}
	p.trees[key] = t
	return t, nil
}

func (p *Poller) poll(ctx context.Context, ep config.Endpoint) (*domain.Snapshot, error) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-p.sem }()

	tree, err := p.treeFor(ep.MIBs)
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", ep.Name, err)
	}

	start := time.Now()
	snap := domain.NewSnapshot(ep.Name, ep.Address, start)

	var transportErr error
	conn, err := p.connect(ctx, ep)
	if err != nil {
		transportErr = err
		snap.AddError(err)
	} else {
		client := &watchedClient{Client: conn}
		collect(ctx, snmp.NewDevice(client, tree), client, ep, snap)
		transportErr = client.err
		if err := conn.Close(); err != nil {
			log.Debug().Err(err).Str("target", ep.Name).Msg("close session")
		}
	}
	if transportErr != nil {
		snap.Status = domain.PollStatusUnreachable
	}
	snap.Elapsed = time.Since(start)

	if err := p.store.SaveSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("save snapshot for %s: %w", ep.Name, err)
	}
	p.prune(ctx, snap.TakenAt)

	adminUp, operUp := snap.Counts()
	log.Info().
		Str("target", ep.Name).
		Str("status", string(snap.Status)).
		Int("interfaces", len(snap.Interfaces)).
		Int("admin_up", adminUp).
		Int("oper_up", operUp).
		Dur("elapsed", snap.Elapsed).
		Msg("poll complete")

	if p.onSnapshot != nil {
		p.onSnapshot(snap)
	}

	if transportErr != nil {
		return snap, fmt.Errorf("%w: %s: %w", ErrUnreachable, ep.Name, transportErr)
	}
	return snap, nil
}

func (p *Poller) prune(ctx context.Context, now time.Time) {
	if p.retention <= 0 {
		return
	}
	n, err := p.store.PruneSnapshots(ctx, now.Add(-p.retention))
	if err != nil {
		log.Warn().Err(err).Msg("prune snapshots")
		return
	}
	if n > 0 {
		log.Debug().Int64("deleted", n).Dur("retention", p.retention).Msg("pruned snapshots")
	}
}

// watchedClient remembers the first walk failure so extraction errors can be
// told apart from transport errors
type watchedClient struct {
	snmp.Client
	err error
}

func (c *watchedClient) Walk(ctx context.Context, root oid.OID) ([]walk.Pair, error) {
	pairs, err := c.Client.Walk(ctx, root)
	if err != nil && c.err == nil {
		c.err = err
	}
	return pairs, err
}
