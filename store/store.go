// Package store persists solved spectra in a sqlite database keyed by the
// configuration that produced them.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/fumin/qcavity"
)

const (
	tableSpectrum = "spectrum"
)

// Record is a solved spectrum. Complex eigenvalues are split into real and
// imaginary parts.
type Record struct {
	Name          string    `msgpack:"name"`
	Variant       string    `msgpack:"variant"`
	Re            []float64 `msgpack:"re"`
	Im            []float64 `msgpack:"im"`
	Participation []float64 `msgpack:"participation"`
	Labels        []string  `msgpack:"labels"`
	Solved        time.Time `msgpack:"solved"`
}

// NewRecord flattens eigenvalues and their participation ratios.
func NewRecord(name, variant string, values []complex128, participation []float64, labels []string) Record {
	r := Record{
		Name:          name,
		Variant:       variant,
		Re:            make([]float64, len(values)),
		Im:            make([]float64, len(values)),
		Participation: participation,
		Labels:        labels,
		Solved:        time.Now().UTC(),
	}
	for i, v := range values {
		r.Re[i], r.Im[i] = real(v), imag(v)
	}
	return r
}

func (r Record) Values() []complex128 {
	vals := make([]complex128, len(r.Re))
	for i := range vals {
		vals[i] = complex(r.Re[i], r.Im[i])
	}
	return vals
}

// Key identifies a configuration solved by a variant in a sort order. Equal configurations
// have equal keys however their raw parameters were broadcast.
func Key(cfg *qcavity.Config, variant string, sort qcavity.SortMode) (string, error) {
	b, err := json.Marshal(struct {
		Variant  string           `json:"variant"`
		Sort     qcavity.SortMode `json:"sort"`
		Sites    int              `json:"sites"`
		Photons  int              `json:"photons"`
		Periodic bool             `json:"periodic"`
		Params   qcavity.Params   `json:"params"`
	}{
		Variant:  variant,
		Sort:     sort,
		Sites:    cfg.NumSites(),
		Photons:  cfg.NumPhotons(),
		Periodic: cfg.Periodic(),
		Params:   cfg.Params(),
	})
	if err != nil {
		return "", errors.Wrap(err, "")
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

type Store struct {
	Path string
	db   *sql.DB
}

func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := prepareDB(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "")
	}
	return &Store{Path: dbPath, db: db}, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func (s *Store) Put(ctx context.Context, key string, r Record) error {
	blob, err := msgpack.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "")
	}
	sqlStr := fmt.Sprintf(`INSERT OR REPLACE INTO %s (key, name, solved, blob) VALUES (?, ?, ?, ?)`, tableSpectrum)
	if _, err := s.db.ExecContext(ctx, sqlStr, key, r.Name, r.Solved.Unix(), blob); err != nil {
		return errors.Wrap(err, fmt.Sprintf("%s %s", sqlStr, key))
	}
	return nil
}

// Get returns the record stored under key, ok is false if there is none.
func (s *Store) Get(ctx context.Context, key string) (Record, bool, error) {
	sqlStr := fmt.Sprintf(`SELECT blob FROM %s WHERE key=?`, tableSpectrum)
	var blob []byte
	err := s.db.QueryRowContext(ctx, sqlStr, key).Scan(&blob)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Record{}, false, nil
	case err != nil:
		return Record{}, false, errors.Wrap(err, fmt.Sprintf("%s %s", sqlStr, key))
	}

	var r Record
	if err := msgpack.Unmarshal(blob, &r); err != nil {
		return Record{}, false, errors.Wrap(err, key)
	}
	return r, true, nil
}

// Names lists the names of the stored records, oldest first.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	sqlStr := fmt.Sprintf(`SELECT name FROM %s ORDER BY solved, name`, tableSpectrum)
	rows, err := s.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return names, nil
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, name TEXT, solved INTEGER, blob BLOB) STRICT`, tableSpectrum)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
