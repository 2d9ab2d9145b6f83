package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fumin/qcavity"
	"github.com/fumin/qcavity/store"
	"github.com/fumin/qcavity/util"
)

const (
	variantDirect  = "direct"
	variantProduct = "product"
)

// Entry is one array of the configuration file.
type Entry struct {
	Name     string         `yaml:"name"`
	Sites    int            `yaml:"sites"`
	Photons  int            `yaml:"photons"`
	Periodic bool           `yaml:"periodic"`
	Params   qcavity.Params `yaml:"params"`
}

type flags struct {
	config  string
	db      string
	sort    string
	variant string
}

func readEntries(fpath string) ([]Entry, error) {
	b, err := os.ReadFile(fpath)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	var entries []Entry
	if err := yaml.Unmarshal(b, &entries); err != nil {
		return nil, errors.Wrap(err, fpath)
	}
	for i, e := range entries {
		if e.Name == "" {
			return nil, errors.Errorf("entry %d has no name", i)
		}
	}
	return entries, nil
}

func newModel(cfg *qcavity.Config, variant string, opts ...qcavity.Option) (qcavity.Model, error) {
	switch variant {
	case variantDirect:
		return qcavity.NewArrayFromConfig(cfg, opts...), nil
	case variantProduct:
		return qcavity.NewProductArrayFromConfig(cfg, opts...), nil
	default:
		return nil, errors.Errorf("unknown variant %q", variant)
	}
}

// solve returns the spectrum of e, from the store when it was solved before.
func solve(ctx context.Context, st *store.Store, e Entry, f flags, logger zerolog.Logger) (store.Record, error) {
	cfg, err := qcavity.NewConfigFromParams(e.Sites, e.Photons, e.Params, e.Periodic)
	if err != nil {
		return store.Record{}, errors.Wrap(err, e.Name)
	}
	key, err := store.Key(cfg, f.variant, qcavity.SortMode(f.sort))
	if err != nil {
		return store.Record{}, errors.Wrap(err, "")
	}
	r, ok, err := st.Get(ctx, key)
	if err != nil {
		return store.Record{}, errors.Wrap(err, "")
	}
	if ok {
		logger.Info().Str("name", e.Name).Str("key", key[:12]).Msg("already solved")
		return r, nil
	}

	m, err := newModel(cfg, f.variant, qcavity.WithSortMode(qcavity.SortMode(f.sort)), qcavity.WithLogger(logger))
	if err != nil {
		return store.Record{}, errors.Wrap(err, "")
	}
	eig, err := m.Eigenstates()
	if err != nil {
		return store.Record{}, errors.Wrap(err, e.Name)
	}
	r = store.NewRecord(e.Name, f.variant, eig.Values, qcavity.Participation(eig.Vectors, false), m.Basis().Labels())
	if err := st.Put(ctx, key, r); err != nil {
		return store.Record{}, errors.Wrap(err, "")
	}
	return r, nil
}

func writeRecord(w *csv.Writer, r store.Record) error {
	for i, v := range r.Values() {
		row := []string{
			r.Name,
			strconv.Itoa(i),
			strconv.FormatFloat(real(v), 'g', -1, 64),
			strconv.FormatFloat(imag(v), 'g', -1, 64),
			strconv.FormatFloat(r.Participation[i], 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, "")
		}
	}
	return nil
}

func mainWithErr(ctx context.Context, f flags, out io.Writer, logger zerolog.Logger) (err error) {
	entries, err := readEntries(f.config)
	if err != nil {
		return errors.Wrap(err, "")
	}
	st, err := store.Open(f.db)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer func() {
		if cerr := st.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "")
		}
	}()

	w := csv.NewWriter(out)
	if err := w.Write([]string{"name", "index", "re", "im", "participation"}); err != nil {
		return errors.Wrap(err, "")
	}
	progress := util.NewThrottle(time.Second)
	for i, e := range entries {
		r, err := solve(ctx, st, e, f, logger)
		if err != nil {
			return errors.Wrap(err, "")
		}
		if err := writeRecord(w, r); err != nil {
			return errors.Wrap(err, "")
		}
		if ok, dropped := progress.Ok(); ok {
			logger.Info().Int("done", i+1).Int("total", len(entries)).Int("quiet", dropped).Msg("progress")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func newRootCmd(logger zerolog.Logger) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Solve the spectra of the cavity arrays in a configuration file",
		Long: `Solve the spectra of the cavity arrays listed in a YAML configuration file.
Each eigenstate is printed as a CSV row of name, index, eigenvalue and
participation ratio. Arrays already held in the database are not solved again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mainWithErr(cmd.Context(), f, cmd.OutOrStdout(), logger)
		},
	}
	cmd.Flags().StringVarP(&f.config, "config", "c", "arrays.yaml", "array configuration file")
	cmd.Flags().StringVar(&f.db, "db", "runs.db", "spectrum database")
	cmd.Flags().StringVar(&f.sort, "sort", string(qcavity.SortEnergy), fmt.Sprintf("eigenstate order, %s or %s", qcavity.SortEnergy, qcavity.SortParticipation))
	cmd.Flags().StringVar(&f.variant, "variant", variantDirect, fmt.Sprintf("hamiltonian construction, %s or %s", variantDirect, variantProduct))
	return cmd
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000000"}).With().Timestamp().Caller().Logger()

	if err := newRootCmd(logger).ExecuteContext(context.Background()); err != nil {
		logger.Fatal().Msgf("%+v", err)
	}
}
