package qcavity

import (
	"math/cmplx"

	"github.com/pkg/errors"
	gonum "gonum.org/v1/gonum/mat"

	"github.com/fumin/qcavity/mat"
)

// Propagator returns exp(-iHt) of the model's Hamiltonian, computed from its
// eigendecomposition as V diag(exp(-iλt)) V⁻¹. Loss makes it contract norms.
func Propagator(m Model, t float64) (*gonum.CDense, error) {
	eig, err := m.Eigenstates()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	inv, err := mat.Inverse(eig.Vectors)
	if err != nil {
		return nil, errors.Wrap(err, "eigenvectors are not a basis")
	}

	phases := make([]complex128, eig.Len())
	for j, v := range eig.Values {
		phases[j] = cmplx.Exp(complex(0, -t) * v)
	}
	u := mat.Mul(eig.Vectors, mat.Diag(phases))
	return mat.Mul(u, inv), nil
}

// Evolve applies the propagator of time t to the state vector psi.
func Evolve(m Model, psi []complex128, t float64) ([]complex128, error) {
	u, err := Propagator(m, t)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	n, _ := u.Dims()
	if len(psi) != n {
		return nil, errors.Errorf("state of length %d, basis has %d", len(psi), n)
	}
	out := mat.Mul(u, gonum.NewCDense(n, 1, append([]complex128(nil), psi...)))
	res := make([]complex128, n)
	for i := range res {
		res[i] = out.At(i, 0)
	}
	return res, nil
}
