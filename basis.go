package qcavity

import (
	"cmp"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Photon is the sublevel of a quantum held by the cavity mode.
const Photon = -1

// Locus is where a quantum of excitation lives: the cavity mode of Site when
// Sublevel is Photon, otherwise emitter Sublevel of that site.
type Locus struct {
	Site     int
	Sublevel int
}

func (l Locus) IsPhoton() bool { return l.Sublevel == Photon }

func (l Locus) String() string {
	if l.IsPhoton() {
		return "c" + strconv.Itoa(l.Site)
	}
	return "e" + strconv.Itoa(l.Site) + "," + strconv.Itoa(l.Sublevel)
}

func compareLocus(a, b Locus) int {
	if c := cmp.Compare(a.Site, b.Site); c != 0 {
		return c
	}
	return cmp.Compare(a.Sublevel, b.Sublevel)
}

// State is an occupation number basis state, a multiset of loci.
// Canonical states are sorted by site then sublevel.
type State []Locus

// Canonical returns a sorted copy of s.
func (s State) Canonical() State {
	c := slices.Clone(s)
	slices.SortFunc(c, compareLocus)
	return c
}

func (s State) String() string {
	ls := lo.Map(s, func(l Locus, _ int) string { return l.String() })
	return "[" + strings.Join(ls, " ") + "]"
}

// key encodes a canonical state for map lookups.
func (s State) key() string {
	var b strings.Builder
	for _, l := range s {
		b.WriteString(strconv.Itoa(l.Site))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(l.Sublevel))
		b.WriteByte(';')
	}
	return b.String()
}

// distinct returns the unique loci of a canonical state in order.
func (s State) distinct() []Locus {
	return slices.Compact(slices.Clone(s))
}

func compareState(a, b State) int {
	return slices.CompareFunc(a, b, compareLocus)
}

// hasRepeatedEmitter reports whether a canonical state excites an emitter twice.
func hasRepeatedEmitter(s State) bool {
	for i := 1; i < len(s); i++ {
		if !s[i].IsPhoton() && s[i] == s[i-1] {
			return true
		}
	}
	return false
}

// GenerateStates enumerates the basis of numPhotons excitations.
// Photons are first distributed over sites, as combinations with replacement
// in lexicographic order. Each photon then either stays in its cavity or
// excites one of the emitters of its site. Within a site distribution the
// states are canonical, deduplicated and sorted lexicographically.
func GenerateStates(numSites int, emittersPerSite []int, numPhotons int) []State {
	if numPhotons == 0 {
		return []State{{}}
	}

	states := make([]State, 0)
	for sites := range combinations(numSites, numPhotons) {
		seen := make(map[string]struct{})
		dist := make([]State, 0)
		for sublevels := range assignments(sites, emittersPerSite) {
			s := make(State, numPhotons)
			for k, site := range sites {
				s[k] = Locus{Site: site, Sublevel: sublevels[k]}
			}
			slices.SortFunc(s, compareLocus)
			if hasRepeatedEmitter(s) {
				continue
			}
			key := s.key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			dist = append(dist, s)
		}
		slices.SortFunc(dist, compareState)
		states = append(states, dist...)
	}
	return states
}

// combinations yields the non-decreasing sequences of length k over [0, n).
func combinations(n, k int) func(yield func([]int) bool) {
	return func(yield func([]int) bool) {
		if n <= 0 {
			return
		}
		c := make([]int, k)
		for {
			if !yield(c) {
				return
			}
			i := k - 1
			for i >= 0 && c[i] == n-1 {
				i--
			}
			if i < 0 {
				return
			}
			c[i]++
			for j := i + 1; j < k; j++ {
				c[j] = c[i]
			}
		}
	}
}

// assignments yields every choice of sublevel in [Photon, emitters(site)) for each slot.
func assignments(sites []int, emittersPerSite []int) func(yield func([]int) bool) {
	return func(yield func([]int) bool) {
		a := make([]int, len(sites))
		for i := range a {
			a[i] = Photon
		}
		for {
			if !yield(a) {
				return
			}
			i := len(a) - 1
			for i >= 0 && a[i] == emittersPerSite[sites[i]]-1 {
				a[i] = Photon
				i--
			}
			if i < 0 {
				return
			}
			a[i]++
		}
	}
}

// Basis is an ordered set of canonical states. It is immutable.
type Basis struct {
	states []State
	index  map[string]int
}

func NewBasis(numSites int, emittersPerSite []int, numPhotons int) *Basis {
	return newBasis(GenerateStates(numSites, emittersPerSite, numPhotons))
}

func newBasis(states []State) *Basis {
	b := &Basis{states: states, index: make(map[string]int, len(states))}
	for i, s := range states {
		b.index[s.key()] = i
	}
	return b
}

func (b *Basis) Len() int { return len(b.states) }

// States returns a copy of the states in basis order.
func (b *Basis) States() []State {
	return slices.Clone(b.states)
}

// State returns the i-th state. The result must not be modified.
func (b *Basis) State(i int) State { return b.states[i] }

func (b *Basis) All() iter.Seq2[int, State] {
	return func(yield func(int, State) bool) {
		for i, s := range b.states {
			if !yield(i, s) {
				return
			}
		}
	}
}

// Index returns the position of s, which may be given in any locus order.
func (b *Basis) Index(s State) (int, error) {
	i, ok := b.index[s.Canonical().key()]
	if !ok {
		return -1, errors.WithStack(&LookupError{State: s.Canonical()})
	}
	return i, nil
}

func (b *Basis) Contains(s State) bool {
	_, ok := b.index[s.Canonical().key()]
	return ok
}

// Vec returns the unit vector of s in this basis.
func (b *Basis) Vec(s State) ([]complex128, error) {
	i, err := b.Index(s)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	v := make([]complex128, b.Len())
	v[i] = 1
	return v, nil
}

// Labels returns a display label per state, in basis order.
// A cavity holding m > 1 photons renders as "mc<site>", an excited emitter as "e<site>,<emitter>".
func (b *Basis) Labels() []string {
	return lo.Map(b.states, func(s State, _ int) string {
		if len(s) == 0 {
			return "vac"
		}
		var label strings.Builder
		for _, l := range s.distinct() {
			if m := lo.Count(s, l); l.IsPhoton() && m > 1 {
				label.WriteString(strconv.Itoa(m))
			}
			label.WriteString(l.String())
		}
		return label.String()
	})
}
