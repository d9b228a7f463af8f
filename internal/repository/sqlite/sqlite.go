package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mibwalk/internal/domain"
	"mibwalk/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.SnapshotStore using SQLite
type Repository struct {
	db *sql.DB
}

var _ repository.SnapshotStore = (*Repository)(nil)

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// each connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func dsn(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		target TEXT NOT NULL,
		address TEXT NOT NULL,
		taken_at INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		system JSON,
		errors JSON
	);

	CREATE TABLE IF NOT EXISTS interfaces (
		snapshot_id TEXT NOT NULL,
		if_index INTEGER NOT NULL,
		name TEXT,
		descr TEXT NOT NULL,
		alias TEXT,
		type TEXT,
		mac TEXT,
		admin_status TEXT NOT NULL,
		oper_status TEXT NOT NULL,
		speed_mbps INTEGER NOT NULL DEFAULT 0,
		duplex TEXT,
		in_octets INTEGER NOT NULL DEFAULT 0,
		out_octets INTEGER NOT NULL DEFAULT 0,
		in_errors INTEGER NOT NULL DEFAULT 0,
		out_errors INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (snapshot_id, if_index),
		FOREIGN KEY (snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_target_time ON snapshots(target, taken_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveSnapshot stores a snapshot and its interfaces in one transaction
func (r *Repository) SaveSnapshot(ctx context.Context, s *domain.Snapshot) error {
	args, err := snapshotInsertArgs(s)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (`+snapshotColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	if len(s.Interfaces) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO interfaces (snapshot_id, `+interfaceColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare interface insert: %w", err)
		}
		defer stmt.Close()

		for _, iface := range s.Interfaces {
			args := append([]interface{}{s.ID.String()}, interfaceInsertArgs(iface)...)
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("failed to insert interface %d: %w", iface.Index, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot for target
func (r *Repository) LatestSnapshot(ctx context.Context, target string) (*domain.Snapshot, error) {
	var row snapshotRow
	err := r.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		WHERE target = ?
		ORDER BY taken_at DESC
		LIMIT 1
	`, target).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: target %s", repository.ErrNotFound, target)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	snap, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	if snap.Interfaces, err = r.loadInterfaces(ctx, snap.ID.String()); err != nil {
		return nil, err
	}
	return snap, nil
}

// ListSnapshots returns up to limit snapshots for target, newest first.
// Interfaces are not loaded; use LatestSnapshot for a full record.
// A limit of zero or less means no limit.
func (r *Repository) ListSnapshots(ctx context.Context, target string, limit int) ([]*domain.Snapshot, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		WHERE target = ?
		ORDER BY taken_at DESC
		LIMIT ?
	`, target, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []*domain.Snapshot
	for rows.Next() {
		var row snapshotRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snap, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return out, nil
}

// Targets lists every target with at least one snapshot
func (r *Repository) Targets(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT target FROM snapshots ORDER BY target`)
	if err != nil {
		return nil, fmt.Errorf("failed to query targets: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// PruneSnapshots deletes snapshots taken before the cutoff. Interfaces go
// with them by cascade.
func (r *Repository) PruneSnapshots(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE taken_at < ?`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return res.RowsAffected()
}

func (r *Repository) loadInterfaces(ctx context.Context, snapshotID string) ([]domain.InterfaceState, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+interfaceColumns+`
		FROM interfaces
		WHERE snapshot_id = ?
		ORDER BY if_index
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query interfaces: %w", err)
	}
	defer rows.Close()

	var out []domain.InterfaceState
	for rows.Next() {
		var row interfaceRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan interface: %w", err)
		}
		out = append(out, row.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interfaces: %w", err)
	}
	return out, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
