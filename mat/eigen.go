package mat

import (
	"cmp"
	"fmt"
	"math"
	"math/cmplx"
	"slices"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	// clusterTol is the relative distance under which two eigenvalues of the
	// real embedding are treated as one eigenvalue.
	clusterTol = 1e-7
	// independentTol is the relative residual under which a projected
	// eigenvector is considered dependent on the ones already accepted.
	independentTol = 1e-4
	// projectedTol is the norm under which a projected eigenvector belongs to
	// the conjugate matrix only.
	projectedTol = 1e-6
)

type ValVec struct {
	Val complex128
	Vec []complex128
}

// MustEigen is like Eigen but panics on failure.
func MustEigen(a *mat.CDense) []ValVec {
	vvs, err := Eigen(a)
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	return vvs
}

// Eigen computes the right eigenpairs of a general complex square matrix.
// Eigenvectors are normalized to unit length with their largest component real and positive.
// The pairs are returned in the order produced by the factorization.
func Eigen(a *mat.CDense) ([]ValVec, error) {
	n, c := a.Dims()
	if n != c {
		return nil, errors.Errorf("not square %d %d", n, c)
	}

	var vvs []ValVec
	var err error
	switch {
	case isReal(a) && isSymmetric(a):
		vvs, err = eigenSym(a)
	case isReal(a):
		vvs, err = eigenReal(a)
	default:
		vvs, err = eigenEmbedded(a)
	}
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	for _, vv := range vvs {
		normalize(vv.Vec)
	}
	return vvs, nil
}

func eigenSym(a *mat.CDense) ([]ValVec, error) {
	n, _ := a.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, real(a.At(i, j)))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, errors.Errorf("symmetric factorization failed %d", n)
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	vvs := make([]ValVec, 0, n)
	for k, v := range vals {
		vec := make([]complex128, n)
		for i := range vec {
			vec[i] = complex(vecs.At(i, k), 0)
		}
		vvs = append(vvs, ValVec{Val: complex(v, 0), Vec: vec})
	}
	return vvs, nil
}

func eigenReal(a *mat.CDense) ([]ValVec, error) {
	n, _ := a.Dims()
	gnm := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			gnm.Set(i, j, real(a.At(i, j)))
		}
	}

	var eig mat.Eigen
	if ok := eig.Factorize(gnm, mat.EigenRight); !ok {
		return nil, errors.Errorf("factorization failed %d", n)
	}
	vals := eig.Values(nil)
	vecs := mat.NewCDense(n, n, nil)
	eig.VectorsTo(vecs)

	vvs := make([]ValVec, 0, n)
	for k, v := range vals {
		vec := make([]complex128, n)
		for i := range vec {
			vec[i] = vecs.At(i, k)
		}
		vvs = append(vvs, ValVec{Val: v, Vec: vec})
	}
	return vvs, nil
}

// eigenEmbedded diagonalizes a = A + iB through the real matrix
//
//	[A -B]
//	[B  A]
//
// whose spectrum is the union of the spectra of a and conj(a).
// An eigenvector [x; y] contributes (x + iy)/2 to the eigenspace of a.
func eigenEmbedded(a *mat.CDense) ([]ValVec, error) {
	n, _ := a.Dims()
	emb := embed(a)

	var eig mat.Eigen
	if ok := eig.Factorize(emb, mat.EigenRight); !ok {
		return nil, errors.Errorf("embedded factorization failed %d", n)
	}
	vals := eig.Values(nil)
	vecs := mat.NewCDense(2*n, 2*n, nil)
	eig.VectorsTo(vecs)

	projected := make([]ValVec, 0, 2*n)
	for k, v := range vals {
		vec := make([]complex128, n)
		for i := range vec {
			vec[i] = (vecs.At(i, k) + 1i*vecs.At(i+n, k)) / 2
		}
		projected = append(projected, ValVec{Val: v, Vec: vec})
	}

	var scale float64 = 1
	for _, v := range vals {
		scale = max(scale, cmplx.Abs(v))
	}

	vvs := make([]ValVec, 0, n)
	for _, cluster := range clusters(projected, clusterTol*scale) {
		// Strongest projections first so that noise is never preferred.
		slices.SortStableFunc(cluster, func(x, y ValVec) int { return cmp.Compare(norm(y.Vec), norm(x.Vec)) })

		basis := make([][]complex128, 0, len(cluster))
		for _, vv := range cluster {
			pn := norm(vv.Vec)
			if pn < projectedTol {
				continue
			}
			r := slices.Clone(vv.Vec)
			for _, q := range basis {
				d := dot(q, r)
				for i := range r {
					r[i] -= d * q[i]
				}
			}
			rn := norm(r)
			if rn < independentTol*pn {
				continue
			}
			for i := range r {
				r[i] /= complex(rn, 0)
			}
			basis = append(basis, r)
			vvs = append(vvs, vv)
		}
	}
	if len(vvs) != n {
		return nil, errors.Errorf("found %d eigenvectors, expected %d", len(vvs), n)
	}
	return vvs, nil
}

// Inverse inverts a general complex square matrix through its real embedding.
func Inverse(a *mat.CDense) (*mat.CDense, error) {
	n, c := a.Dims()
	if n != c {
		return nil, errors.Errorf("not square %d %d", n, c)
	}

	var inv mat.Dense
	if err := inv.Inverse(embed(a)); err != nil {
		return nil, errors.Wrap(err, "")
	}

	b := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			b.Set(i, j, complex(inv.At(i, j), inv.At(i+n, j)))
		}
	}
	return b, nil
}

func embed(a *mat.CDense) *mat.Dense {
	n, _ := a.Dims()
	emb := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := a.At(i, j)
			emb.Set(i, j, real(v))
			emb.Set(i, j+n, -imag(v))
			emb.Set(i+n, j, imag(v))
			emb.Set(i+n, j+n, real(v))
		}
	}
	return emb
}

// clusters groups eigenpairs whose eigenvalues lie within tol of each other.
func clusters(vvs []ValVec, tol float64) [][]ValVec {
	assigned := make([]bool, len(vvs))
	groups := make([][]ValVec, 0)
	for i := range vvs {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		group := []ValVec{vvs[i]}
		for j := i + 1; j < len(vvs); j++ {
			if assigned[j] {
				continue
			}
			if cmplx.Abs(vvs[j].Val-vvs[i].Val) > tol {
				continue
			}
			assigned[j] = true
			group = append(group, vvs[j])
		}
		groups = append(groups, group)
	}
	return groups
}

// normalize scales v to unit length and rotates its largest component onto the positive real axis.
func normalize(v []complex128) {
	var big complex128
	for _, x := range v {
		if cmplx.Abs(x) > cmplx.Abs(big) {
			big = x
		}
	}
	n := norm(v)
	if n == 0 {
		return
	}
	phase := cmplx.Conj(big) / complex(cmplx.Abs(big), 0)
	for i := range v {
		v[i] = v[i] * phase / complex(n, 0)
	}
}

func norm(v []complex128) float64 {
	var s float64
	for _, x := range v {
		s += real(x)*real(x) + imag(x)*imag(x)
	}
	return math.Sqrt(s)
}

// dot returns the inner product <q|r>.
func dot(q, r []complex128) complex128 {
	var s complex128
	for i := range q {
		s += cmplx.Conj(q[i]) * r[i]
	}
	return s
}

func isReal(a *mat.CDense) bool {
	n, c := a.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < c; j++ {
			if imag(a.At(i, j)) != 0 {
				return false
			}
		}
	}
	return true
}

func isSymmetric(a *mat.CDense) bool {
	n, _ := a.Dims()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if a.At(i, j) != a.At(j, i) {
				return false
			}
		}
	}
	return true
}
