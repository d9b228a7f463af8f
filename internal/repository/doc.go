// Package repository defines the storage interface for poll history.
//
// The sqlite subpackage implements it with modernc.org/sqlite (no cgo) in
// WAL mode. A snapshot row holds the system group and poll metadata; its
// interfaces live in a child table removed by cascade when the snapshot
// is pruned.
package repository
