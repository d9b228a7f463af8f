package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewSnapshot(t *testing.T) {
	now := time.Now()
	a := NewSnapshot("core", "10.0.0.1", now)
	b := NewSnapshot("core", "10.0.0.1", now)

	if a.ID == b.ID {
		t.Error("snapshots should get distinct IDs")
	}
	if a.Status != PollStatusOK {
		t.Errorf("Status = %s, want %s", a.Status, PollStatusOK)
	}
	if !a.TakenAt.Equal(now) {
		t.Errorf("TakenAt = %v, want %v", a.TakenAt, now)
	}
}

func TestSnapshotAddError(t *testing.T) {
	s := NewSnapshot("core", "10.0.0.1", time.Now())
	s.AddError(errors.New("swIfTable: timeout"))

	if s.Status != PollStatusPartial {
		t.Errorf("Status = %s, want %s", s.Status, PollStatusPartial)
	}
	if len(s.Errors) != 1 || s.Errors[0] != "swIfTable: timeout" {
		t.Errorf("Errors = %v", s.Errors)
	}

	// An unreachable snapshot stays unreachable
	s.Status = PollStatusUnreachable
	s.AddError(errors.New("again"))
	if s.Status != PollStatusUnreachable {
		t.Errorf("Status = %s, want %s", s.Status, PollStatusUnreachable)
	}
}

func TestSnapshotInterfaces(t *testing.T) {
	s := &Snapshot{Interfaces: []InterfaceState{
		{Index: 1, AdminStatus: "up", OperStatus: "up"},
		{Index: 2, AdminStatus: "up", OperStatus: "down"},
		{Index: 3, AdminStatus: "down", OperStatus: "down"},
	}}

	adminUp, operUp := s.Counts()
	if adminUp != 2 || operUp != 1 {
		t.Errorf("Counts() = %d, %d, want 2, 1", adminUp, operUp)
	}

	if i, ok := s.Interface(2); !ok || i.OperStatus != "down" {
		t.Errorf("Interface(2) = %+v, %v", i, ok)
	}
	if _, ok := s.Interface(9); ok {
		t.Error("Interface(9) should not exist")
	}
}
