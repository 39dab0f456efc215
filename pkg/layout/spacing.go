package layout

import "fmt"

// Spacing is either a single gap applied between every pair of neighbouring
// tubes, or an explicit list. The zero value is an empty list.
type Spacing struct {
	values []float64
	scalar bool
}

// Scalar returns a Spacing that broadcasts v to every gap.
func Scalar(v float64) Spacing {
	return Spacing{values: []float64{v}, scalar: true}
}

// List returns a Spacing with explicit entries.
func List(v ...float64) Spacing {
	return Spacing{values: append([]float64(nil), v...)}
}

// IsScalar reports whether s broadcasts a single value.
func (s Spacing) IsScalar() bool { return s.scalar }

// Len is the number of stored entries (1 for a scalar).
func (s Spacing) Len() int { return len(s.values) }

// Resolve expands s for n tubes. A scalar becomes n-1 copies; a list is
// returned as a copy and checked later by Layout.
func (s Spacing) Resolve(n int) []float64 {
	if !s.scalar {
		return append([]float64(nil), s.values...)
	}
	if n <= 1 {
		return nil
	}
	out := make([]float64, n-1)
	for i := range out {
		out[i] = s.values[0]
	}
	return out
}

func (s Spacing) String() string {
	if s.scalar {
		return fmt.Sprintf("%g", s.values[0])
	}
	return fmt.Sprintf("%v", s.values)
}
