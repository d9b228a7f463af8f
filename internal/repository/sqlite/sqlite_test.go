package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"mibwalk/internal/domain"
	"mibwalk/internal/repository"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

// testSnapshot builds a snapshot at a millisecond-aligned time
func testSnapshot(target string, at time.Time) *domain.Snapshot {
	s := domain.NewSnapshot(target, "10.0.0.1", at.Truncate(time.Millisecond))
	s.Elapsed = 1500 * time.Millisecond
	s.System = &domain.SystemInfo{
		Name:     "sw-core-1",
		Descr:    "SG350-28",
		ObjectID: "1.3.6.1.4.1.9.6.1.101",
		Vendor:   "internet.private.enterprises.cisco.otherEnterprises.ciscoSB.switch001",
		Uptime:   time.Hour,
	}
	s.Interfaces = []domain.InterfaceState{
		{Index: 2, Descr: "gi2", AdminStatus: "up", OperStatus: "down", InErrors: 3},
		{Index: 1, Name: "Gi1/0/1", Descr: "gi1", Alias: "uplink", Type: "ethernetCsmacd",
			MAC: "00:1b:54:00:00:01", AdminStatus: "up", OperStatus: "up",
			SpeedMbps: 1000, Duplex: "full", InOctets: 1 << 40, OutOctets: 12345},
	}
	return s
}

// ============================================================================
// Snapshot Tests
// ============================================================================

func TestSaveAndLatestSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	snap := testSnapshot("core", time.Now())
	assertNoError(t, repo.SaveSnapshot(ctx, snap))

	got, err := repo.LatestSnapshot(ctx, "core")
	assertNoError(t, err)

	assertEqual(t, snap.ID, got.ID)
	assertEqual(t, "core", got.Target)
	assertEqual(t, "10.0.0.1", got.Address)
	assertEqual(t, domain.PollStatusOK, got.Status)
	assertEqual(t, snap.Elapsed, got.Elapsed)
	if !got.TakenAt.Equal(snap.TakenAt) {
		t.Fatalf("TakenAt = %v, want %v", got.TakenAt, snap.TakenAt)
	}
	assertEqual(t, *snap.System, *got.System)

	// Interfaces come back ordered by ifIndex
	if len(got.Interfaces) != 2 {
		t.Fatalf("expected 2 interfaces, got %d", len(got.Interfaces))
	}
	assertEqual(t, snap.Interfaces[1], got.Interfaces[0])
	assertEqual(t, snap.Interfaces[0], got.Interfaces[1])
}

func TestLatestSnapshotPicksNewest(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Now()

	older := testSnapshot("core", base.Add(-time.Hour))
	newer := testSnapshot("core", base)
	other := testSnapshot("edge", base.Add(time.Hour))

	// Insert out of order
	assertNoError(t, repo.SaveSnapshot(ctx, newer))
	assertNoError(t, repo.SaveSnapshot(ctx, older))
	assertNoError(t, repo.SaveSnapshot(ctx, other))

	got, err := repo.LatestSnapshot(ctx, "core")
	assertNoError(t, err)
	assertEqual(t, newer.ID, got.ID)
}

func TestLatestSnapshotNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.LatestSnapshot(context.Background(), "nobody")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSnapshotWithoutSystem(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	snap := domain.NewSnapshot("dead", "10.9.9.9", time.Now().Truncate(time.Millisecond))
	snap.Status = domain.PollStatusUnreachable
	snap.Errors = []string{"walk system: request timeout"}
	assertNoError(t, repo.SaveSnapshot(ctx, snap))

	got, err := repo.LatestSnapshot(ctx, "dead")
	assertNoError(t, err)
	if got.System != nil {
		t.Fatalf("expected nil system, got %+v", got.System)
	}
	assertEqual(t, domain.PollStatusUnreachable, got.Status)
	assertEqual(t, snap.Errors, got.Errors)
	if len(got.Interfaces) != 0 {
		t.Fatalf("expected no interfaces, got %d", len(got.Interfaces))
	}
}

func TestSaveSnapshotDuplicateID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	snap := testSnapshot("core", time.Now())
	assertNoError(t, repo.SaveSnapshot(ctx, snap))
	if err := repo.SaveSnapshot(ctx, snap); err == nil {
		t.Fatal("expected error saving the same snapshot twice")
	}

	// The failed save must not leave partial rows behind
	list, err := repo.ListSnapshots(ctx, "core", 0)
	assertNoError(t, err)
	assertEqual(t, 1, len(list))
}

func TestListSnapshots(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		assertNoError(t, repo.SaveSnapshot(ctx, testSnapshot("core", base.Add(time.Duration(i)*time.Minute))))
	}
	assertNoError(t, repo.SaveSnapshot(ctx, testSnapshot("edge", base)))

	all, err := repo.ListSnapshots(ctx, "core", 0)
	assertNoError(t, err)
	assertEqual(t, 5, len(all))
	for i := 1; i < len(all); i++ {
		if !all[i-1].TakenAt.After(all[i].TakenAt) {
			t.Fatalf("snapshots not newest first at %d", i)
		}
	}
	if all[0].Interfaces != nil {
		t.Fatal("ListSnapshots should not load interfaces")
	}

	limited, err := repo.ListSnapshots(ctx, "core", 2)
	assertNoError(t, err)
	assertEqual(t, 2, len(limited))
	assertEqual(t, all[0].ID, limited[0].ID)

	targets, err := repo.Targets(ctx)
	assertNoError(t, err)
	assertEqual(t, []string{"core", "edge"}, targets)
}

func TestPruneSnapshots(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	old := testSnapshot("core", now.Add(-48*time.Hour))
	recent := testSnapshot("core", now)
	assertNoError(t, repo.SaveSnapshot(ctx, old))
	assertNoError(t, repo.SaveSnapshot(ctx, recent))

	n, err := repo.PruneSnapshots(ctx, now.Add(-24*time.Hour))
	assertNoError(t, err)
	assertEqual(t, int64(1), n)

	list, err := repo.ListSnapshots(ctx, "core", 0)
	assertNoError(t, err)
	assertEqual(t, 1, len(list))
	assertEqual(t, recent.ID, list[0].ID)

	// Interfaces of the pruned snapshot are gone with it
	var count int
	err = repo.db.QueryRow(`SELECT COUNT(*) FROM interfaces WHERE snapshot_id = ?`, old.ID.String()).Scan(&count)
	assertNoError(t, err)
	assertEqual(t, 0, count)
}

func TestReopenFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mibwalk.db")
	ctx := context.Background()

	repo, err := New(path)
	assertNoError(t, err)
	snap := testSnapshot("core", time.Now())
	assertNoError(t, repo.SaveSnapshot(ctx, snap))
	assertNoError(t, repo.Close())

	// Migration is idempotent and data survives
	repo, err = New(path)
	assertNoError(t, err)
	defer repo.Close()

	got, err := repo.LatestSnapshot(ctx, "core")
	assertNoError(t, err)
	assertEqual(t, snap.ID, got.ID)
	assertEqual(t, 2, len(got.Interfaces))
}
