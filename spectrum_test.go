package qcavity

import (
	"cmp"
	"fmt"
	"math"
	"math/cmplx"
	"slices"
	"testing"

	"github.com/pkg/errors"
	gonum "gonum.org/v1/gonum/mat"

	"github.com/fumin/qcavity/mat"
)

func TestEigenstatesCached(t *testing.T) {
	t.Parallel()
	models := []Model{
		mustArray(t, 2, 2, uniform(1, 1, 0.1, 0.2, 1, 0.1, 0.3), false),
		mustProductArray(t, 2, 2, uniform(1, 1, 0.1, 0.2, 1, 0.1, 0.3), false),
	}
	for _, m := range models {
		if m.Hamiltonian() != m.Hamiltonian() {
			t.Fatalf("hamiltonian rebuilt")
		}
		e1, err := m.Eigenstates()
		if err != nil {
			t.Fatalf("%+v", err)
		}
		e2, err := m.Eigenstates()
		if err != nil {
			t.Fatalf("%+v", err)
		}
		if e1 != e2 {
			t.Fatalf("eigenstates recomputed")
		}

		discs := mat.FromCDense(m.Hamiltonian()).Gershgorin()
		for _, v := range e1.Values {
			if !slices.ContainsFunc(discs, func(d mat.Disc) bool { return d.Contains(v) }) {
				t.Fatalf("%v outside %v", v, discs)
			}
		}
	}
}

func TestSortEnergy(t *testing.T) {
	t.Parallel()
	a := mustArray(t, 3, 1, uniform(0, 1, 0, 0.5, 0, 0, 0), false)
	e, err := a.Eigenstates()
	if err != nil {
		t.Fatalf("%+v", err)
	}
	expected := []float64{1 - 0.5*math.Sqrt2, 1, 1 + 0.5*math.Sqrt2}
	for j, v := range e.Values {
		if math.Abs(real(v)-expected[j]) > 1e-9 || math.Abs(imag(v)) > 1e-9 {
			t.Fatalf("%v, expected %v", e.Values, expected)
		}
	}

	// Residual of every sorted pair.
	h := a.Hamiltonian()
	for j := range e.Values {
		v := e.Vector(j)
		for i := range v {
			var hv complex128
			for k := range v {
				hv += h.At(i, k) * v[k]
			}
			if d := cmplx.Abs(hv - e.Values[j]*v[i]); d > 1e-9 {
				t.Fatalf("%d %d %v", j, i, d)
			}
		}
	}
}

func TestSortEnergyTies(t *testing.T) {
	t.Parallel()
	e := &Eigenstates{Values: []complex128{2, 1 + 0.1i, 1 - 0.1i, 1 + 0.1i}}
	e.Vectors = identity(len(e.Values))
	e.Vectors.Set(0, 3, 0.5)

	sorted, err := SortEigenstates(e, SortEnergy)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if expected := []complex128{1 - 0.1i, 1 + 0.1i, 1 + 0.1i, 2}; !slices.Equal(sorted.Values, expected) {
		t.Fatalf("%v, expected %v", sorted.Values, expected)
	}
	// The stable sort keeps column 1 ahead of column 3.
	if sorted.Vectors.At(1, 1) != 1 || sorted.Vectors.At(0, 2) != 0.5 {
		t.Fatalf("%v", cdenseRows(sorted.Vectors))
	}
	if e.Values[0] != 2 {
		t.Fatalf("input modified %v", e.Values)
	}
}

func TestSortParticipation(t *testing.T) {
	t.Parallel()
	a := mustArray(t, 3, 2, uniform(1, 1, 0.1, 0.2, 0.9, 0.05, 0.1), true, WithSortMode(SortParticipation))
	e, err := a.Eigenstates()
	if err != nil {
		t.Fatalf("%+v", err)
	}
	p := Participation(e.Vectors, false)
	if !slices.IsSortedFunc(p, func(a, b float64) int { return cmp.Compare(b, a) }) {
		t.Fatalf("%v", p)
	}
}

func TestSortUnsupported(t *testing.T) {
	t.Parallel()
	raw := uniform(1, 1, 0.1, 0.2, 0.9, 0.05, 0.1)
	a := mustArray(t, 2, 1, raw, false, WithSortMode("brightness"))
	e, err := a.Eigenstates()
	if err != nil {
		t.Fatalf("%+v", err)
	}

	solved, err := Solve(a.Hamiltonian())
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !slices.Equal(e.Values, solved.Values) {
		t.Fatalf("%v, expected %v", e.Values, solved.Values)
	}

	same, err := SortEigenstates(solved, "brightness")
	if !errors.Is(err, ErrSortMode) {
		t.Fatalf("%+v", err)
	}
	if same != solved {
		t.Fatalf("expected the input back")
	}
}

func TestPolaritonBands(t *testing.T) {
	t.Parallel()
	tests := []struct {
		sites    int
		emitters int
		periodic bool
	}{
		{sites: 1, emitters: 1},
		{sites: 4, emitters: 1},
		{sites: 4, emitters: 2},
		{sites: 5, emitters: 2, periodic: true},
		{sites: 4, emitters: 3, periodic: true},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d_%d_%v", test.sites, test.emitters, test.periodic), func(t *testing.T) {
			t.Parallel()
			const wc, we, g, j = 1, 0.9, 0.1, 0.2
			a := mustArray(t, test.sites, 1, uniform(test.emitters, wc, 0, j, we, 0, g), test.periodic)
			e, err := a.Eigenstates()
			if err != nil {
				t.Fatalf("%+v", err)
			}

			expected := polaritonBands(test.sites, test.emitters, wc, we, g, j, test.periodic)
			if len(expected) != e.Len() {
				t.Fatalf("%d, expected %d", e.Len(), len(expected))
			}
			for k, v := range e.Values {
				if math.Abs(real(v)-expected[k]) > 1e-9 || math.Abs(imag(v)) > 1e-9 {
					t.Fatalf("%v, expected %v", e.Values, expected)
				}
			}
		})
	}
}

// polaritonBands returns the sorted single excitation spectrum of identical
// lossless cavities, each coupled to m identical emitters. Every photonic
// momentum mode hybridizes with the bright emitter combination into a lower
// and an upper polariton, while the remaining m-1 emitter combinations per site
// stay dark at the emitter frequency.
func polaritonBands(n, m int, wc, we, g, j float64, periodic bool) []float64 {
	var bands []float64
	for q := 0; q < n; q++ {
		k := float64(q+1) * math.Pi / float64(n+1)
		if periodic {
			k = 2 * math.Pi * float64(q) / float64(n)
		}
		w := wc
		if n > 1 {
			w -= 2 * j * math.Cos(k)
		}
		split := math.Sqrt((w-we)*(w-we) + 4*float64(m)*g*g)
		bands = append(bands, (w+we-split)/2, (w+we+split)/2)
	}
	for range n * (m - 1) {
		bands = append(bands, we)
	}
	slices.Sort(bands)
	return bands
}

func mustArray(t *testing.T, sites, photons int, raw map[string]any, periodic bool, opts ...Option) *Array {
	t.Helper()
	a, err := NewArray(sites, photons, raw, periodic, opts...)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	return a
}

func mustProductArray(t *testing.T, sites, photons int, raw map[string]any, periodic bool, opts ...Option) *ProductArray {
	t.Helper()
	a, err := NewProductArray(sites, photons, raw, periodic, opts...)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	return a
}

func identity(n int) *gonum.CDense {
	m := gonum.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
