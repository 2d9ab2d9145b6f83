// Package qcavity computes the spectra of coupled cavity arrays.
//
// Each cavity holds a bosonic light mode coupled to two-level emitters, and
// photons hop between neighbouring cavities. For a fixed number of
// excitations the package enumerates the occupation number basis, assembles
// the effective non-Hermitian Hamiltonian, where loss enters as a negative
// imaginary frequency shift, and diagonalizes it.
package qcavity

import (
	"iter"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	gonum "gonum.org/v1/gonum/mat"

	"github.com/fumin/qcavity/mat"
)

// Model is a cavity array with a basis, a Hamiltonian in that basis and its eigenstates.
// Hamiltonian and eigenstates are computed on first use and cached; callers must not modify them.
type Model interface {
	Config() *Config
	Basis() *Basis
	Hamiltonian() *gonum.CDense
	Eigenstates() (*Eigenstates, error)
}

type options struct {
	sortMode SortMode
	logger   zerolog.Logger
}

type Option func(*options)

// WithSortMode selects the eigenstate order, SortEnergy by default.
func WithSortMode(mode SortMode) Option {
	return func(o *options) { o.sortMode = mode }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func newOptions(opts []Option) options {
	o := options{sortMode: SortEnergy, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// array holds what the variants share: configuration, basis and the cache.
type array struct {
	cfg   *Config
	basis *Basis
	opts  options

	hOnce sync.Once
	h     *gonum.CDense

	eOnce  sync.Once
	eig    *Eigenstates
	eigErr error
}

func (a *array) Config() *Config { return a.cfg }
func (a *array) Basis() *Basis { return a.basis }

// Len returns the number of sites.
func (a *array) Len() int { return a.cfg.numSites }
func (a *array) Site(i int) Site { return a.cfg.Site(i) }
func (a *array) Sites() iter.Seq2[int, Site] { return a.cfg.Sites() }
func (a *array) Hopping() []float64 { return a.cfg.Hopping() }
func (a *array) NumPhotons() int { return a.cfg.numPhotons }
func (a *array) Periodic() bool { return a.cfg.periodic }

func (a *array) hamiltonian(build func() *gonum.CDense) *gonum.CDense {
	a.hOnce.Do(func() {
		a.h = build()
		if e := a.opts.logger.Debug(); e.Enabled() {
			floor, ceil := mat.RealBounds(mat.FromCDense(a.h).Gershgorin())
			e.Int("basis", a.basis.Len()).Float64("floor", floor).Float64("ceil", ceil).Msg("hamiltonian assembled")
		}
		if e := a.opts.logger.Trace(); e.Enabled() {
			e.Strs("labels", a.basis.Labels()).Stringer("h", mat.FromCDense(a.h)).Msg("hamiltonian matrix")
		}
	})
	return a.h
}

func (a *array) eigenstates(h func() *gonum.CDense) (*Eigenstates, error) {
	a.eOnce.Do(func() {
		eig, err := Solve(h())
		if err != nil {
			a.eigErr = errors.Wrap(err, "")
			return
		}

		sorted, err := SortEigenstates(eig, a.opts.sortMode)
		if err != nil {
			a.opts.logger.Warn().Err(err).Msg("eigenstates left unsorted")
		}
		a.eig = sorted
		a.opts.logger.Debug().Int("basis", a.basis.Len()).Str("sort", string(a.opts.sortMode)).Msg("eigenstates solved")
	})
	return a.eig, a.eigErr
}

// Array builds its Hamiltonian directly on the occupation number basis.
type Array struct {
	array
}

// NewArray creates an array of numSites cavities sharing numPhotons
// excitations. raw holds the parameters described by Params.
func NewArray(numSites, numPhotons int, raw map[string]any, periodic bool, opts ...Option) (*Array, error) {
	cfg, err := NewConfig(numSites, numPhotons, raw, periodic)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return NewArrayFromConfig(cfg, opts...), nil
}

func NewArrayFromConfig(cfg *Config, opts ...Option) *Array {
	a := &Array{}
	a.cfg = cfg
	a.opts = newOptions(opts)
	a.basis = NewBasis(cfg.numSites, cfg.EmittersPerSite(), cfg.numPhotons)
	a.opts.logger.Debug().Int("sites", cfg.numSites).Int("photons", cfg.numPhotons).Int("basis", a.basis.Len()).Msg("basis generated")
	return a
}

func (a *Array) Hamiltonian() *gonum.CDense {
	return a.hamiltonian(func() *gonum.CDense { return BuildHamiltonian(a.cfg, a.basis) })
}

func (a *Array) Eigenstates() (*Eigenstates, error) {
	return a.eigenstates(a.Hamiltonian)
}
