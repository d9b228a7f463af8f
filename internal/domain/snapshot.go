// Package domain defines the records mibwalk keeps about polled devices.
//
// A Snapshot is everything learned from one agent in one poll cycle: the
// system group, the interface table and any errors from optional modules.
// Snapshots are immutable once taken; history is a list of them.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// PollStatus summarizes how a poll went
type PollStatus string

const (
	PollStatusOK          PollStatus = "ok"          // every module extracted
	PollStatusPartial     PollStatus = "partial"     // system read, some module failed
	PollStatusUnreachable PollStatus = "unreachable" // transport failed
)

// Snapshot is the result of polling one target once
type Snapshot struct {
	ID         uuid.UUID        `json:"id"`
	Target     string           `json:"target"`
	Address    string           `json:"address"`
	TakenAt    time.Time        `json:"taken_at"`
	Elapsed    time.Duration    `json:"elapsed"`
	Status     PollStatus       `json:"status"`
	System     *SystemInfo      `json:"system,omitempty"`
	Interfaces []InterfaceState `json:"interfaces,omitempty"`
	Errors     []string         `json:"errors,omitempty"`
}

// NewSnapshot starts a snapshot for target with a fresh ID
func NewSnapshot(target, address string, takenAt time.Time) *Snapshot {
	return &Snapshot{
		ID:      uuid.New(),
		Target:  target,
		Address: address,
		TakenAt: takenAt,
		Status:  PollStatusOK,
	}
}

// AddError records a non-fatal problem and downgrades the status
func (s *Snapshot) AddError(err error) {
	s.Errors = append(s.Errors, err.Error())
	if s.Status == PollStatusOK {
		s.Status = PollStatusPartial
	}
}

// Interface returns the interface with the given ifIndex
func (s *Snapshot) Interface(index uint32) (InterfaceState, bool) {
	for _, i := range s.Interfaces {
		if i.Index == index {
			return i, true
		}
	}
	return InterfaceState{}, false
}

// Counts returns how many interfaces are administratively up and how many
// of those are operationally up
func (s *Snapshot) Counts() (adminUp, operUp int) {
	for _, i := range s.Interfaces {
		if i.AdminStatus == "up" {
			adminUp++
			if i.OperStatus == "up" {
				operUp++
			}
		}
	}
	return adminUp, operUp
}

// SystemInfo is the MIB-2 system group in display form
type SystemInfo struct {
	Name     string        `json:"name"`
	Descr    string        `json:"descr"`
	Contact  string        `json:"contact,omitempty"`
	Location string        `json:"location,omitempty"`
	ObjectID string        `json:"object_id"`
	Vendor   string        `json:"vendor,omitempty"` // tree name of ObjectID when known
	Uptime   time.Duration `json:"uptime"`
}

// InterfaceState is one interface as seen in a snapshot
type InterfaceState struct {
	Index       uint32 `json:"index"`
	Name        string `json:"name,omitempty"`
	Descr       string `json:"descr"`
	Alias       string `json:"alias,omitempty"`
	Type        string `json:"type,omitempty"`
	MAC         string `json:"mac,omitempty"`
	AdminStatus string `json:"admin_status"`
	OperStatus  string `json:"oper_status"`
	SpeedMbps   uint64 `json:"speed_mbps,omitempty"`
	Duplex      string `json:"duplex,omitempty"`
	InOctets    uint64 `json:"in_octets"`
	OutOctets   uint64 `json:"out_octets"`
	InErrors    uint32 `json:"in_errors"`
	OutErrors   uint32 `json:"out_errors"`
}
