package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mibwalk/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField safely unmarshals JSON from nullable string into target
func unmarshalJSONField(ns sql.NullString, target interface{}) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalToNull marshals a value to nullable JSON. Nil pointers and empty
// slices are stored as NULL.
func marshalToNull(v interface{}) (sql.NullString, error) {
	switch x := v.(type) {
	case nil:
		return sql.NullString{}, nil
	case *domain.SystemInfo:
		if x == nil {
			return sql.NullString{}, nil
		}
	case []string:
		if len(x) == 0 {
			return sql.NullString{}, nil
		}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a column to snapshots or interfaces:
// 1. Add field to the row struct (below)
// 2. Update scanArgs() - APPEND to end to match column order
// 3. Update the columns constant - APPEND to end
// 4. Update toDomain() and the insert args
// 5. Add the column in migrate()
//
// Column order must match between the columns constant, scanArgs() and
// the insert args.

// ============================================================================
// Snapshot Row Scanner
// ============================================================================

const snapshotColumns = `id, target, address, taken_at, elapsed_ms, status, system, errors`

// snapshotRow holds all columns from a snapshot query for scanning
type snapshotRow struct {
	ID         string
	Target     string
	Address    string
	TakenAt    int64
	ElapsedMS  int64
	Status     string
	SystemJSON sql.NullString
	ErrorsJSON sql.NullString
}

// scanArgs returns pointers to all fields for sql.Scan()
func (r *snapshotRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID, &r.Target, &r.Address, &r.TakenAt,
		&r.ElapsedMS, &r.Status, &r.SystemJSON, &r.ErrorsJSON,
	}
}

// toDomain converts the row to a snapshot without interfaces
func (r *snapshotRow) toDomain() (*domain.Snapshot, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("snapshot id %q: %w", r.ID, err)
	}

	snap := &domain.Snapshot{
		ID:      id,
		Target:  r.Target,
		Address: r.Address,
		TakenAt: time.UnixMilli(r.TakenAt),
		Elapsed: time.Duration(r.ElapsedMS) * time.Millisecond,
		Status:  domain.PollStatus(r.Status),
	}

	if r.SystemJSON.Valid {
		snap.System = &domain.SystemInfo{}
		if err := unmarshalJSONField(r.SystemJSON, snap.System); err != nil {
			return nil, fmt.Errorf("snapshot %s system: %w", r.ID, err)
		}
	}
	if err := unmarshalJSONField(r.ErrorsJSON, &snap.Errors); err != nil {
		return nil, fmt.Errorf("snapshot %s errors: %w", r.ID, err)
	}
	return snap, nil
}

func snapshotInsertArgs(s *domain.Snapshot) ([]interface{}, error) {
	system, err := marshalToNull(s.System)
	if err != nil {
		return nil, err
	}
	errs, err := marshalToNull(s.Errors)
	if err != nil {
		return nil, err
	}
	return []interface{}{
		s.ID.String(), s.Target, s.Address, s.TakenAt.UnixMilli(),
		s.Elapsed.Milliseconds(), string(s.Status), system, errs,
	}, nil
}

// ============================================================================
// Interface Row Scanner
// ============================================================================

const interfaceColumns = `if_index, name, descr, alias, type, mac, admin_status, oper_status, speed_mbps, duplex, in_octets, out_octets, in_errors, out_errors`

// interfaceRow holds all columns from an interface query for scanning
type interfaceRow struct {
	Index       int64
	Name        sql.NullString
	Descr       string
	Alias       sql.NullString
	Type        sql.NullString
	MAC         sql.NullString
	AdminStatus string
	OperStatus  string
	SpeedMbps   int64
	Duplex      sql.NullString
	InOctets    int64
	OutOctets   int64
	InErrors    int64
	OutErrors   int64
}

// scanArgs returns pointers to all fields for sql.Scan()
func (r *interfaceRow) scanArgs() []interface{} {
	return []interface{}{
		&r.Index, &r.Name, &r.Descr, &r.Alias, &r.Type, &r.MAC,
		&r.AdminStatus, &r.OperStatus, &r.SpeedMbps, &r.Duplex,
		&r.InOctets, &r.OutOctets, &r.InErrors, &r.OutErrors,
	}
}

func (r *interfaceRow) toDomain() domain.InterfaceState {
	return domain.InterfaceState{
		Index:       uint32(r.Index),
		Name:        nullToString(r.Name),
		Descr:       r.Descr,
		Alias:       nullToString(r.Alias),
		Type:        nullToString(r.Type),
		MAC:         nullToString(r.MAC),
		AdminStatus: r.AdminStatus,
		OperStatus:  r.OperStatus,
		SpeedMbps:   uint64(r.SpeedMbps),
		Duplex:      nullToString(r.Duplex),
		InOctets:    uint64(r.InOctets),
		OutOctets:   uint64(r.OutOctets),
		InErrors:    uint32(r.InErrors),
		OutErrors:   uint32(r.OutErrors),
	}
}

// interfaceInsertArgs matches interfaceColumns. SQLite integers are
// signed; counters above MaxInt64 are stored modulo 2^64.
func interfaceInsertArgs(i domain.InterfaceState) []interface{} {
	return []interface{}{
		int64(i.Index), stringToNull(i.Name), i.Descr, stringToNull(i.Alias),
		stringToNull(i.Type), stringToNull(i.MAC), i.AdminStatus, i.OperStatus,
		int64(i.SpeedMbps), stringToNull(i.Duplex), int64(i.InOctets), int64(i.OutOctets),
		int64(i.InErrors), int64(i.OutErrors),
	}
}
