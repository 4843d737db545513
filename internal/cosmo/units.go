package cosmo

import (
	"fmt"
	"strings"
)

// Unit selects the length unit of distance queries.
type Unit int

const (
	UnitMpc Unit = iota
	UnitCm
)

// Scale is the size of one unit in cm.
func (u Unit) Scale() float64 {
	switch u {
	case UnitCm:
		return 1.0
	default:
		return MpcCGS
	}
}

func (u Unit) String() string {
	switch u {
	case UnitMpc:
		return "mpc"
	case UnitCm:
		return "cm"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

func (u Unit) valid() bool {
	return u == UnitMpc || u == UnitCm
}

// ParseUnit maps "mpc" or "cm" (case-insensitive) to a Unit.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mpc", "":
		return UnitMpc, nil
	case "cm":
		return UnitCm, nil
	default:
		return 0, fmt.Errorf("%w: unknown distance unit %q", ErrConfiguration, s)
	}
}
