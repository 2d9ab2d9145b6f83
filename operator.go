package qcavity

import (
	"math"
	"slices"

	"github.com/samber/lo"
)

// The operators below act on canonical basis states and return the resulting
// state with its amplitude scaled by multiplier. A nil state with amplitude 0
// stands for the zero vector. Input states are never modified.

// Number returns the occupation of loc times multiplier, the state is unchanged.
func Number(loc Locus, s State, multiplier complex128) (State, complex128) {
	n := lo.Count(s, loc)
	if n == 0 || multiplier == 0 {
		return nil, 0
	}
	return s, complex(float64(n), 0) * multiplier
}

// Destroy removes one quantum at loc, with amplitude sqrt(n).
func Destroy(loc Locus, s State, multiplier complex128) (State, complex128) {
	_, n := Number(loc, s, 1)
	if n == 0 || multiplier == 0 {
		return nil, 0
	}
	i := slices.Index(s, loc)
	d := slices.Delete(slices.Clone(s), i, i+1)
	return d, complex(math.Sqrt(real(n)), 0) * multiplier
}

// Create adds one photon at loc, with amplitude sqrt(n+1).
// Emitters are two-level, raising one is handled by the caller's bookkeeping,
// so creating at an emitter locus yields the zero vector.
func Create(loc Locus, s State, multiplier complex128) (State, complex128) {
	if !loc.IsPhoton() || multiplier == 0 {
		return nil, 0
	}
	n := lo.Count(s, loc)
	i, _ := slices.BinarySearchFunc(s, loc, compareLocus)
	c := slices.Insert(slices.Clone(s), i, loc)
	return c, complex(math.Sqrt(float64(n+1)), 0) * multiplier
}
