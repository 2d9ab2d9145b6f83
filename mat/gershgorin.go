package mat

import (
	"cmp"
	"math/cmplx"
	"slices"
)

// Disc is a Gershgorin disc, every eigenvalue lies in the union of the discs of a matrix.
type Disc struct {
	Center complex128
	Radius float64
}

func (d Disc) Contains(v complex128) bool { return cmplx.Abs(v-d.Center) <= d.Radius }

// Gershgorin returns the disc of every row of a square matrix.
//
// Theorem A3, Bounds for the eigenvalues of a matrix, Kenneth R. Garren.
func (m *COO) Gershgorin() []Disc {
	discs := make([]Disc, m.rows)
	for _, v := range m.Data {
		if v.row == v.col {
			discs[v.row].Center = v.v
			continue
		}
		discs[v.row].Radius += cmplx.Abs(v.v)
	}
	return discs
}

// RealBounds returns an interval holding the real part of every eigenvalue.
func RealBounds(discs []Disc) (float64, float64) {
	lo := func(d Disc) float64 { return real(d.Center) - d.Radius }
	hi := func(d Disc) float64 { return real(d.Center) + d.Radius }
	floor := slices.MinFunc(discs, func(a, b Disc) int { return cmp.Compare(lo(a), lo(b)) })
	ceil := slices.MaxFunc(discs, func(a, b Disc) int { return cmp.Compare(hi(a), hi(b)) })
	return lo(floor), hi(ceil)
}
