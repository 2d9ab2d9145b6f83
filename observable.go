package qcavity

import (
	"math/cmplx"

	"github.com/samber/lo"
	gonum "gonum.org/v1/gonum/mat"
)

// Participation returns the inverse participation ratio 1/Σ|v_k|⁴ of each
// column of vecs. It ranges from 1 for a single basis state to the basis size
// for a uniform superposition. When normalize is set it is mapped linearly onto [0, 1].
func Participation(vecs *gonum.CDense, normalize bool) []float64 {
	rows, cols := vecs.Dims()
	p := make([]float64, cols)
	for j := range p {
		var s float64
		for i := 0; i < rows; i++ {
			s += sq(prob(vecs.At(i, j)))
		}
		p[j] = 1 / s
	}
	if normalize {
		rescale(p, rows)
	}
	return p
}

// SiteParticipation is the participation ratio of the probability coarse
// grained per site. A basis state counts toward the site of its first locus;
// the vacuum counts toward site 0.
func SiteParticipation(vecs *gonum.CDense, b *Basis, numSites int, normalize bool) []float64 {
	p := coarseParticipation(vecs, b, numSites, func(s State) int {
		if len(s) == 0 {
			return 0
		}
		return s[0].Site
	})
	if normalize {
		rescale(p, numSites)
	}
	return p
}

// PolaritonParticipation is the participation ratio of the probability split
// between photonic and emitter excitations.
func PolaritonParticipation(vecs *gonum.CDense, b *Basis, normalize bool) []float64 {
	p := coarseParticipation(vecs, b, 2, func(s State) int {
		if len(s) == 0 || s[0].IsPhoton() {
			return 0
		}
		return 1
	})
	if normalize {
		rescale(p, 2)
	}
	return p
}

// coarseParticipation sums the probability of each basis state into the group
// of its first locus.
func coarseParticipation(vecs *gonum.CDense, b *Basis, groups int, group func(State) int) []float64 {
	_, cols := vecs.Dims()
	gs := lo.Map(b.states, func(s State, _ int) int { return group(s) })

	p := make([]float64, cols)
	for j := range p {
		g := make([]float64, groups)
		for i, k := range gs {
			g[k] += prob(vecs.At(i, j))
		}
		p[j] = 1 / lo.SumBy(g, sq)
	}
	return p
}

// PhotonExpectation returns <a†a> of every site, indexed [eigenstate][site].
func PhotonExpectation(vecs *gonum.CDense, b *Basis, numSites int) [][]float64 {
	_, cols := vecs.Dims()
	expect := make([][]float64, cols)
	for j := range expect {
		expect[j] = make([]float64, numSites)
	}
	for site := 0; site < numSites; site++ {
		e := Expectation([]Locus{{Site: site, Sublevel: Photon}}, vecs, b)
		for j, v := range e {
			expect[j][site] = v
		}
	}
	return expect
}

// ExcitationExpectation returns the summed <σ†σ> of the emitters of every site, indexed [eigenstate][site].
func ExcitationExpectation(vecs *gonum.CDense, b *Basis, cfg *Config) [][]float64 {
	_, cols := vecs.Dims()
	expect := make([][]float64, cols)
	for j := range expect {
		expect[j] = make([]float64, cfg.numSites)
	}
	for site, s := range cfg.sites {
		locs := lo.Times(s.NumEmitters, func(k int) Locus { return Locus{Site: site, Sublevel: k} })
		e := Expectation(locs, vecs, b)
		for j, v := range e {
			expect[j][site] = v
		}
	}
	return expect
}

// Expectation returns, for every column of vecs, the summed number expectation of locs.
func Expectation(locs []Locus, vecs *gonum.CDense, b *Basis) []float64 {
	_, cols := vecs.Dims()
	expect := make([]float64, cols)
	for _, loc := range locs {
		occ := occupations(loc, b)
		for j := range expect {
			for i, n := range occ {
				if n == 0 {
					continue
				}
				expect[j] += n * prob(vecs.At(i, j))
			}
		}
	}
	return expect
}

// NumberApply returns vecs with row i scaled by the occupation of loc in basis state i.
func NumberApply(loc Locus, vecs *gonum.CDense, b *Basis) *gonum.CDense {
	rows, cols := vecs.Dims()
	occ := occupations(loc, b)
	out := gonum.NewCDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, complex(occ[i], 0)*vecs.At(i, j))
		}
	}
	return out
}

func occupations(loc Locus, b *Basis) []float64 {
	return lo.Map(b.states, func(s State, _ int) float64 {
		_, n := Number(loc, s, 1)
		return real(n)
	})
}

// rescale maps participation ratios in [1, n] onto [0, 1].
func rescale(p []float64, n int) {
	for j := range p {
		if n <= 1 {
			p[j] = 0
			continue
		}
		p[j] = (p[j] - 1) / float64(n-1)
	}
}

func prob(v complex128) float64 {
	a := cmplx.Abs(v)
	return a * a
}

func sq(x float64) float64 { return x * x }
