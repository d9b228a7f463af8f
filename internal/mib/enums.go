package mib

import (
	"fmt"
	"strconv"
	"strings"
)

// AdminStatus is the desired state of an interface (ifAdminStatus)
type AdminStatus int32

const (
	AdminUp      AdminStatus = 1
	AdminDown    AdminStatus = 2
	AdminTesting AdminStatus = 3
)

var adminStatusNames = map[AdminStatus]string{
	AdminUp:      "up",
	AdminDown:    "down",
	AdminTesting: "testing",
}

func (s AdminStatus) String() string {
	if n, ok := adminStatusNames[s]; ok {
		return n
	}
	return "unknown(" + strconv.Itoa(int(s)) + ")"
}

// Valid reports whether s is a defined status
func (s AdminStatus) Valid() bool {
	_, ok := adminStatusNames[s]
	return ok
}

// Oper is the ifOperStatus an interface settles in once s takes effect
func (s AdminStatus) Oper() OperStatus {
	switch s {
	case AdminUp:
		return OperUp
	case AdminTesting:
		return OperTesting
	}
	return OperDown
}

// ParseAdminStatus accepts a status name or its number
func ParseAdminStatus(s string) (AdminStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, n := range adminStatusNames {
		if n == s {
			return k, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && AdminStatus(n).Valid() {
		return AdminStatus(n), nil
	}
	return 0, fmt.Errorf("invalid admin status %q (want up, down or testing)", s)
}

// OperStatus is the current state of an interface (ifOperStatus)
type OperStatus int32

const (
	OperUp             OperStatus = 1
	OperDown           OperStatus = 2
	OperTesting        OperStatus = 3
	OperUnknown        OperStatus = 4
	OperDormant        OperStatus = 5
	OperNotPresent     OperStatus = 6
	OperLowerLayerDown OperStatus = 7
)

var operStatusNames = map[OperStatus]string{
	OperUp:             "up",
	OperDown:           "down",
	OperTesting:        "testing",
	OperUnknown:        "unknown",
	OperDormant:        "dormant",
	OperNotPresent:     "notPresent",
	OperLowerLayerDown: "lowerLayerDown",
}

func (s OperStatus) String() string {
	if n, ok := operStatusNames[s]; ok {
		return n
	}
	return "invalid(" + strconv.Itoa(int(s)) + ")"
}

// IfType is the IANAifType of an interface. Only the common values are named.
type IfType int32

var ifTypeNames = map[IfType]string{
	1:   "other",
	6:   "ethernetCsmacd",
	23:  "ppp",
	24:  "softwareLoopback",
	53:  "propVirtual",
	71:  "ieee80211",
	131: "tunnel",
	135: "l2vlan",
	136: "l3ipvlan",
	161: "ieee8023adLag",
}

func (t IfType) String() string {
	if n, ok := ifTypeNames[t]; ok {
		return n
	}
	return strconv.Itoa(int(t))
}

// Duplex is the negotiated duplex of a switch port
type Duplex int32

const (
	DuplexHalf    Duplex = 1
	DuplexFull    Duplex = 2
	DuplexHybrid  Duplex = 3
	DuplexUnknown Duplex = 4
)

func (d Duplex) String() string {
	switch d {
	case DuplexHalf:
		return "half"
	case DuplexFull:
		return "full"
	case DuplexHybrid:
		return "hybrid"
	case DuplexUnknown:
		return "unknown"
	}
	return strconv.Itoa(int(d))
}
