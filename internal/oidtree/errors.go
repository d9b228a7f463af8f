package oidtree

import "errors"

var (
	// ErrNameSyntax is returned for empty names or names with characters outside [A-Za-z0-9.-]
	ErrNameSyntax = errors.New("invalid OID name")
	// ErrNameResolution is returned when a name component matches no node
	ErrNameResolution = errors.New("OID name not resolved")
	// ErrDuplicateDefinition is returned when an instruction batch defines a name twice
	ErrDuplicateDefinition = errors.New("duplicate OID definition")
	// ErrAddressNotFound is returned when no node anchors a numeric OID
	ErrAddressNotFound = errors.New("OID not found in tree")
)
