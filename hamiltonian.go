package qcavity

import (
	gonum "gonum.org/v1/gonum/mat"
)

// BuildHamiltonian assembles the effective Hamiltonian of cfg in basis b.
//
// The off diagonal pass adds, for every column state, the coupling constant g
// of each excited emitter at the row where it has turned into a photon, and
// the hopping -J a†(i+1) a(i). The conversion carries g alone, without the
// bosonic amplitude of the photon created. Terms whose result leaves
// the basis, such as hopping past the last site of an open chain, are
// dropped. The Hermitian conjugate terms are then completed by adding the
// transpose, which is valid as every element is real at that point. Finally
// the diagonal receives n(ω - iκ/2) for every occupied locus.
func BuildHamiltonian(cfg *Config, b *Basis) *gonum.CDense {
	n := b.Len()
	h := gonum.NewCDense(n, n, nil)
	add := func(row, col int, v complex128) {
		h.Set(row, col, h.At(row, col)+v)
	}

	for col, state := range b.All() {
		for _, loc := range state.distinct() {
			switch {
			case !loc.IsPhoton():
				s, amp := Destroy(loc, state, 1)
				s, amp = Create(Locus{Site: loc.Site, Sublevel: Photon}, s, amp)
				if amp == 0 {
					continue
				}
				row, err := b.Index(s)
				if err != nil {
					continue
				}
				add(row, col, complex(cfg.sites[loc.Site].Coupling[loc.Sublevel], 0))
			default:
				s, amp := Destroy(loc, state, 1)
				s, amp = Create(Locus{Site: nextSite(cfg, loc.Site), Sublevel: Photon}, s, amp)
				if amp == 0 {
					continue
				}
				row, err := b.Index(s)
				if err != nil {
					continue
				}
				add(row, col, -complex(cfg.hopping[loc.Site], 0)*amp)
			}
		}
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := h.At(i, j) + h.At(j, i)
			h.Set(i, j, v)
			h.Set(j, i, v)
		}
	}

	for col, state := range b.All() {
		for _, loc := range state.distinct() {
			_, occ := Number(loc, state, 1)
			site := cfg.sites[loc.Site]
			var w complex128
			switch {
			case loc.IsPhoton():
				w = complex(site.Freq, -site.Decay/2)
			default:
				w = complex(site.EmitterFreq[loc.Sublevel], -site.EmitterDecay[loc.Sublevel]/2)
			}
			add(col, col, w*occ)
		}
	}
	return h
}

// nextSite is the site a photon at site i hops to. It wraps around on
// periodic rings of more than two sites and otherwise may fall outside the array.
func nextSite(cfg *Config, i int) int {
	next := i + 1
	if cfg.periodic && cfg.numSites > 2 {
		next %= cfg.numSites
	}
	return next
}
