package qcavity

import (
	"fmt"
	"iter"
	"math"
	"reflect"
	"slices"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const (
	KeyEmittersPerSite = "emitters_per_site"
	KeySiteDecay       = "site_decay"
	KeyHopping         = "hopping"
	KeyEmitterDecay    = "emitter_decay"
	KeyCoupling        = "coupling"
	KeySiteFreq        = "site_freq"
	KeyEmitterFreq     = "emitter_freq"
)

var (
	// paramKeys lists the raw keys in resolution order, emitter counts first.
	paramKeys = []string{
		KeyEmittersPerSite,
		KeySiteDecay,
		KeyHopping,
		KeyEmitterDecay,
		KeyCoupling,
		KeySiteFreq,
		KeyEmitterFreq,
	}
)

// Params holds raw array parameters. Each field is either a scalar, which is
// broadcast, or a list with one entry per site (per bond for Hopping).
// Emitter level entries may again be a scalar or a list per emitter.
type Params struct {
	EmittersPerSite any `mapstructure:"emitters_per_site" yaml:"emitters_per_site" json:"emitters_per_site"`
	SiteDecay       any `mapstructure:"site_decay" yaml:"site_decay" json:"site_decay"`
	Hopping         any `mapstructure:"hopping" yaml:"hopping" json:"hopping"`
	EmitterDecay    any `mapstructure:"emitter_decay" yaml:"emitter_decay" json:"emitter_decay"`
	Coupling        any `mapstructure:"coupling" yaml:"coupling" json:"coupling"`
	SiteFreq        any `mapstructure:"site_freq" yaml:"site_freq" json:"site_freq"`
	EmitterFreq     any `mapstructure:"emitter_freq" yaml:"emitter_freq" json:"emitter_freq"`
}

func (p Params) get(key string) any {
	switch key {
	case KeyEmittersPerSite:
		return p.EmittersPerSite
	case KeySiteDecay:
		return p.SiteDecay
	case KeyHopping:
		return p.Hopping
	case KeyEmitterDecay:
		return p.EmitterDecay
	case KeyCoupling:
		return p.Coupling
	case KeySiteFreq:
		return p.SiteFreq
	default:
		return p.EmitterFreq
	}
}

// DecodeParams decodes a raw parameter dictionary. Missing keys are rejected, unknown ones ignored.
func DecodeParams(raw map[string]any) (Params, error) {
	for _, key := range paramKeys {
		if _, ok := raw[key]; !ok {
			return Params{}, &ConfigError{Key: key, Site: -1, Reason: "missing"}
		}
	}

	var p Params
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &p})
	if err != nil {
		return Params{}, errors.Wrap(err, "")
	}
	if err := decoder.Decode(raw); err != nil {
		return Params{}, &ConfigError{Key: "params", Site: -1, Reason: err.Error()}
	}
	return p, nil
}

// Site holds the parameters of a single cavity and its emitters.
type Site struct {
	NumEmitters  int
	Freq         float64
	Decay        float64
	EmitterFreq  []float64
	EmitterDecay []float64
	Coupling     []float64
}

func (s Site) clone() Site {
	s.EmitterFreq = slices.Clone(s.EmitterFreq)
	s.EmitterDecay = slices.Clone(s.EmitterDecay)
	s.Coupling = slices.Clone(s.Coupling)
	return s
}

// Config is the validated, fully broadcast parameter table of an array.
// It is immutable after construction.
type Config struct {
	numSites   int
	numPhotons int
	periodic   bool
	sites      []Site
	hopping    []float64
}

// NewConfig validates a raw parameter dictionary, see DecodeParams.
func NewConfig(numSites, numPhotons int, raw map[string]any, periodic bool) (*Config, error) {
	p, err := DecodeParams(raw)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	cfg, err := NewConfigFromParams(numSites, numPhotons, p, periodic)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return cfg, nil
}

func NewConfigFromParams(numSites, numPhotons int, p Params, periodic bool) (*Config, error) {
	if numSites < 1 {
		return nil, &ConfigError{Key: "num_sites", Site: -1, Reason: fmt.Sprintf("%d sites", numSites)}
	}
	if numPhotons < 0 {
		return nil, &ConfigError{Key: "num_photons", Site: -1, Reason: fmt.Sprintf("%d photons", numPhotons)}
	}

	cfg := &Config{numSites: numSites, numPhotons: numPhotons, periodic: periodic}
	cfg.sites = make([]Site, numSites)
	for _, key := range paramKeys {
		v := p.get(key)
		if v == nil {
			return nil, &ConfigError{Key: key, Site: -1, Reason: "missing"}
		}

		n := numSites
		if key == KeyHopping {
			n = hoppingLen(numSites, periodic)
		}
		vals, err := broadcast(key, -1, v, n)
		if err != nil {
			return nil, err
		}

		switch key {
		case KeyEmittersPerSite:
			for i, v := range vals {
				m, err := toInt(key, i, v)
				if err != nil {
					return nil, err
				}
				cfg.sites[i].NumEmitters = m
			}
		case KeyHopping:
			cfg.hopping, err = toFloats(key, -1, vals)
			if err != nil {
				return nil, err
			}
		case KeySiteDecay, KeySiteFreq:
			fs, err := toFloats(key, -1, vals)
			if err != nil {
				return nil, err
			}
			for i, f := range fs {
				if key == KeySiteDecay {
					cfg.sites[i].Decay = f
				} else {
					cfg.sites[i].Freq = f
				}
			}
		default:
			for i, v := range vals {
				ev, err := broadcast(key, i, v, cfg.sites[i].NumEmitters)
				if err != nil {
					return nil, err
				}
				fs, err := toFloats(key, i, ev)
				if err != nil {
					return nil, err
				}
				switch key {
				case KeyEmitterDecay:
					cfg.sites[i].EmitterDecay = fs
				case KeyCoupling:
					cfg.sites[i].Coupling = fs
				default:
					cfg.sites[i].EmitterFreq = fs
				}
			}
		}
	}
	return cfg, nil
}

// hoppingLen is the number of bonds. Two sites share a single bond even when periodic.
func hoppingLen(numSites int, periodic bool) int {
	n := numSites
	if !periodic || numSites <= 2 {
		n--
	}
	return max(0, n)
}

func (c *Config) NumSites() int { return c.numSites }
func (c *Config) NumPhotons() int { return c.numPhotons }
func (c *Config) Periodic() bool { return c.periodic }

func (c *Config) Site(i int) Site { return c.sites[i].clone() }

func (c *Config) Sites() iter.Seq2[int, Site] {
	return func(yield func(int, Site) bool) {
		for i, s := range c.sites {
			if !yield(i, s.clone()) {
				return
			}
		}
	}
}

// Hopping returns the hopping rate of each bond, bond i joining site i and site i+1.
func (c *Config) Hopping() []float64 { return slices.Clone(c.hopping) }

func (c *Config) EmittersPerSite() []int {
	return lo.Map(c.sites, func(s Site, _ int) int { return s.NumEmitters })
}

// Params returns the fully broadcast parameters as explicit lists.
func (c *Config) Params() Params {
	return Params{
		EmittersPerSite: c.EmittersPerSite(),
		SiteDecay:       lo.Map(c.sites, func(s Site, _ int) float64 { return s.Decay }),
		Hopping:         c.Hopping(),
		EmitterDecay:    lo.Map(c.sites, func(s Site, _ int) []float64 { return slices.Clone(s.EmitterDecay) }),
		Coupling:        lo.Map(c.sites, func(s Site, _ int) []float64 { return slices.Clone(s.Coupling) }),
		SiteFreq:        lo.Map(c.sites, func(s Site, _ int) float64 { return s.Freq }),
		EmitterFreq:     lo.Map(c.sites, func(s Site, _ int) []float64 { return slices.Clone(s.EmitterFreq) }),
	}
}

// broadcast expands a scalar into n copies, or checks that a list has n entries.
func broadcast(key string, site int, v any, n int) ([]any, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, &ConfigError{Key: key, Site: site, Reason: "missing"}
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return lo.Times(n, func(int) any { return v }), nil
	}

	if rv.Len() != n {
		return nil, &ConfigError{Key: key, Site: site, Expected: n, Got: rv.Len()}
	}
	vals := make([]any, n)
	for i := range vals {
		vals[i] = rv.Index(i).Interface()
	}
	return vals, nil
}

func toFloats(key string, site int, vals []any) ([]float64, error) {
	fs := make([]float64, len(vals))
	for i, v := range vals {
		if err := mapstructure.Decode(v, &fs[i]); err != nil {
			return nil, &ConfigError{Key: key, Site: site, Reason: fmt.Sprintf("entry %d: %v", i, err)}
		}
	}
	return fs, nil
}

func toInt(key string, site int, v any) (int, error) {
	var f float64
	if err := mapstructure.Decode(v, &f); err != nil {
		return -1, &ConfigError{Key: key, Site: site, Reason: err.Error()}
	}
	if f < 0 || f != math.Trunc(f) {
		return -1, &ConfigError{Key: key, Site: site, Reason: fmt.Sprintf("%v is not a count", v)}
	}
	return int(f), nil
}
