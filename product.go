package qcavity

import (
	"github.com/pkg/errors"
	gonum "gonum.org/v1/gonum/mat"

	"github.com/fumin/qcavity/mat"
)

var (
	sigmaMinus = mat.M(mat.SigmaMinus)
	sigmaPlus  = mat.M(mat.SigmaPlus)
)

// ProductArray builds its Hamiltonian from operators on the tensor product of
// per-site factors: a cavity truncated to numPhotons+1 Fock states followed by
// the two-level emitters of that site. Only the product states holding
// exactly numPhotons excitations are kept, and they form its basis in product
// order.
type ProductArray struct {
	array

	// dims is the dimension of each factor.
	dims []int
	// cavity is the factor index of each site's cavity.
	cavity []int
	// sector lists the product indices of the kept states.
	sector []int
}

func NewProductArray(numSites, numPhotons int, raw map[string]any, periodic bool, opts ...Option) (*ProductArray, error) {
	cfg, err := NewConfig(numSites, numPhotons, raw, periodic)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return NewProductArrayFromConfig(cfg, opts...), nil
}

func NewProductArrayFromConfig(cfg *Config, opts ...Option) *ProductArray {
	a := &ProductArray{}
	a.cfg = cfg
	a.opts = newOptions(opts)

	a.cavity = make([]int, cfg.numSites)
	for i, s := range cfg.sites {
		a.cavity[i] = len(a.dims)
		a.dims = append(a.dims, cfg.numPhotons+1)
		for range s.NumEmitters {
			a.dims = append(a.dims, 2)
		}
	}

	states := make([]State, 0)
	digits := make([]int, len(a.dims))
	for idx := range product(a.dims) {
		a.digits(digits, idx)
		var n int
		for _, d := range digits {
			n += d
		}
		if n != cfg.numPhotons {
			continue
		}
		a.sector = append(a.sector, idx)
		states = append(states, a.state(digits))
	}
	a.basis = newBasis(states)
	a.opts.logger.Debug().Ints("dims", a.dims).Int("basis", a.basis.Len()).Msg("product sector generated")
	return a
}

func (a *ProductArray) Hamiltonian() *gonum.CDense {
	return a.hamiltonian(a.build)
}

func (a *ProductArray) Eigenstates() (*Eigenstates, error) {
	return a.eigenstates(a.Hamiltonian)
}

func (a *ProductArray) build() *gonum.CDense {
	h := mat.COOZeros(len(a.sector), len(a.sector))
	buf := mat.COOZeros(1, 1)

	for i, s := range a.cfg.sites {
		c := a.cavity[i]
		d := a.dims[c]
		num := mat.Create(d)
		num.MatMul(mat.Destroy(d))
		a.term(h, buf, map[int]*mat.COO{c: num}, complex(s.Freq, -s.Decay/2))

		for k := range s.NumEmitters {
			e := c + 1 + k
			excited := mat.M(mat.SigmaPlus)
			excited.MatMul(sigmaMinus)
			a.term(h, buf, map[int]*mat.COO{e: excited}, complex(s.EmitterFreq[k], -s.EmitterDecay[k]/2))

			g := complex(s.Coupling[k], 0)
			a.term(h, buf, map[int]*mat.COO{c: mat.Create(d), e: sigmaMinus}, g)
			a.term(h, buf, map[int]*mat.COO{c: mat.Destroy(d), e: sigmaPlus}, g)
		}
	}

	for b, j := range a.cfg.hopping {
		from, to := a.cavity[b], a.cavity[(b+1)%a.cfg.numSites]
		d := a.cfg.numPhotons + 1
		a.term(h, buf, map[int]*mat.COO{from: mat.Create(d), to: mat.Destroy(d)}, complex(-j, 0))
		a.term(h, buf, map[int]*mat.COO{from: mat.Destroy(d), to: mat.Create(d)}, complex(-j, 0))
	}
	return h.CDense()
}

// term adds c times the product of ops, identity on the other factors, to h
// after restricting it to the sector.
func (a *ProductArray) term(h, buf *mat.COO, ops map[int]*mat.COO, c complex128) {
	buf.Scalar(1)
	for f, d := range a.dims {
		op, ok := ops[f]
		if !ok {
			op = mat.COOIdentity(d)
		}
		buf.Kron(op)
	}
	h.Add(c, buf.Restrict(a.sector))
}

// digits decodes a product index into the level of every factor, the first factor being the most significant.
func (a *ProductArray) digits(dst []int, idx int) {
	for f := len(a.dims) - 1; f >= 0; f-- {
		dst[f] = idx % a.dims[f]
		idx /= a.dims[f]
	}
}

// state converts factor levels into a canonical basis state.
func (a *ProductArray) state(digits []int) State {
	s := make(State, 0, a.cfg.numPhotons)
	for i, site := range a.cfg.sites {
		c := a.cavity[i]
		for range digits[c] {
			s = append(s, Locus{Site: i, Sublevel: Photon})
		}
		for k := range site.NumEmitters {
			if digits[c+1+k] == 1 {
				s = append(s, Locus{Site: i, Sublevel: k})
			}
		}
	}
	return s
}

// product yields every index of a space with the given factor dimensions.
func product(dims []int) func(yield func(int) bool) {
	return func(yield func(int) bool) {
		n := 1
		for _, d := range dims {
			n *= d
		}
		for i := 0; i < n; i++ {
			if !yield(i) {
				return
			}
		}
	}
}
