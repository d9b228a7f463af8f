package snmp

import "errors"

var (
	// ErrNoSuchObject is returned by Get when the agent has no value at the OID
	ErrNoSuchObject = errors.New("no such object")

	// ErrUnsupportedType is returned for SNMP types with no value.Kind
	ErrUnsupportedType = errors.New("unsupported SNMP type")

	// ErrAgent wraps a non-zero error-status in a response PDU
	ErrAgent = errors.New("agent error")

	// ErrNotConnected is returned when a Session is used before Connect
	ErrNotConnected = errors.New("session not connected")
)
