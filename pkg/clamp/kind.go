package clamp

import (
	"fmt"
	"strings"
)

// PartKind selects which sub-solids a builder emits.
type PartKind int

const (
	PartFull       PartKind = iota // plate, tube bodies, champfered bores and screws
	PartSupport                    // plate and tube supports only
	PartTubes                      // tube shells only, no plate
	PartBridge                     // tube bodies with everything below the bore axis removed
	PartNoChampfer                 // like PartFull with plain bores
)

var kindNames = map[PartKind]string{
	PartFull:       "full",
	PartSupport:    "support",
	PartTubes:      "tubes",
	PartBridge:     "bridge",
	PartNoChampfer: "no-champfer",
}

func (k PartKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("PartKind(%d)", int(k))
}

// Valid reports whether k is one of the defined kinds.
func (k PartKind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParsePartKind converts a name as printed by String back to a PartKind.
func ParsePartKind(s string) (PartKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return PartFull, fmt.Errorf("clamp: unknown part kind %q", s)
}

// champfer is the bevel depth bores get under this kind.
func (k PartKind) champfer(depth float64) float64 {
	if k == PartNoChampfer {
		return 0
	}
	return depth
}
