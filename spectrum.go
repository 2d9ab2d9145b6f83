package qcavity

import (
	"cmp"
	"slices"

	"github.com/pkg/errors"
	gonum "gonum.org/v1/gonum/mat"

	"github.com/fumin/qcavity/mat"
)

type SortMode string

const (
	// SortEnergy orders eigenstates by ascending real part of the eigenvalue.
	SortEnergy SortMode = "energy"
	// SortParticipation orders eigenstates by descending participation ratio.
	SortParticipation SortMode = "participation"
)

// Eigenstates holds eigenvalues and the matching unit eigenvectors, column j
// of Vectors belonging to Values[j]. Rows follow the basis order.
type Eigenstates struct {
	Values  []complex128
	Vectors *gonum.CDense
}

func (e *Eigenstates) Len() int { return len(e.Values) }

// Vector returns a copy of the j-th eigenvector.
func (e *Eigenstates) Vector(j int) []complex128 {
	n, _ := e.Vectors.Dims()
	v := make([]complex128, n)
	for i := range v {
		v[i] = e.Vectors.At(i, j)
	}
	return v
}

// Solve diagonalizes h. The eigenpairs are in factorization order.
func Solve(h *gonum.CDense) (*Eigenstates, error) {
	vvs, err := mat.Eigen(h)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	n, _ := h.Dims()
	e := &Eigenstates{Values: make([]complex128, n), Vectors: gonum.NewCDense(n, n, nil)}
	for j, vv := range vvs {
		e.Values[j] = vv.Val
		for i, v := range vv.Vec {
			e.Vectors.Set(i, j, v)
		}
	}
	return e, nil
}

// SortEigenstates returns a reordered copy of e. Ties keep their original
// relative order. An unsupported mode returns e unchanged along with an error
// wrapping ErrSortMode.
func SortEigenstates(e *Eigenstates, mode SortMode) (*Eigenstates, error) {
	order := make([]int, e.Len())
	for i := range order {
		order[i] = i
	}

	switch mode {
	case SortEnergy:
		slices.SortStableFunc(order, func(a, b int) int {
			if c := cmp.Compare(real(e.Values[a]), real(e.Values[b])); c != 0 {
				return c
			}
			return cmp.Compare(imag(e.Values[a]), imag(e.Values[b]))
		})
	case SortParticipation:
		p := Participation(e.Vectors, false)
		slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(p[b], p[a]) })
	default:
		return e, errors.Wrapf(ErrSortMode, "%q, accepted %q %q", mode, SortEnergy, SortParticipation)
	}

	n, _ := e.Vectors.Dims()
	sorted := &Eigenstates{Values: make([]complex128, len(order)), Vectors: gonum.NewCDense(n, len(order), nil)}
	for j, k := range order {
		sorted.Values[j] = e.Values[k]
		for i := 0; i < n; i++ {
			sorted.Vectors.Set(i, j, e.Vectors.At(i, k))
		}
	}
	return sorted, nil
}
