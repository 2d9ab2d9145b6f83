package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fumin/qcavity"
)

func raw(coupling any) map[string]any {
	return map[string]any{
		qcavity.KeyEmittersPerSite: 1,
		qcavity.KeySiteFreq:        1.0,
		qcavity.KeySiteDecay:       0.1,
		qcavity.KeyHopping:         0.2,
		qcavity.KeyEmitterFreq:     0.9,
		qcavity.KeyEmitterDecay:    0.05,
		qcavity.KeyCoupling:        coupling,
	}
}

func TestPutGet(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dbPath := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(dbPath)
	require.NoError(t, err)

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	r := NewRecord("pair", "direct", []complex128{1 - 0.1i, 2}, []float64{1.5, 1.2}, []string{"c0", "c1"})
	require.NoError(t, s.Put(ctx, "k", r))

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []complex128{1 - 0.1i, 2}, got.Values())
	assert.Equal(t, r.Participation, got.Participation)
	assert.Equal(t, r.Labels, got.Labels)
	assert.Equal(t, "direct", got.Variant)
	assert.True(t, r.Solved.Equal(got.Solved))

	// Reopening keeps what was stored.
	require.NoError(t, s.Close())
	s, err = Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	names, err := s.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"pair"}, names)
}

func TestKey(t *testing.T) {
	t.Parallel()
	scalar, err := qcavity.NewConfig(2, 1, raw(0.3), false)
	require.NoError(t, err)
	list, err := qcavity.NewConfig(2, 1, raw([]float64{0.3, 0.3}), false)
	require.NoError(t, err)
	other, err := qcavity.NewConfig(2, 1, raw(0.4), false)
	require.NoError(t, err)

	k1, err := Key(scalar, "direct", qcavity.SortEnergy)
	require.NoError(t, err)
	k2, err := Key(list, "direct", qcavity.SortEnergy)
	require.NoError(t, err)
	k3, err := Key(other, "direct", qcavity.SortEnergy)
	require.NoError(t, err)
	k4, err := Key(scalar, "product", qcavity.SortEnergy)
	require.NoError(t, err)
	k5, err := Key(scalar, "direct", qcavity.SortParticipation)
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.NotEqual(t, k1, k4)
	assert.NotEqual(t, k1, k5)
	assert.Len(t, k1, 64)
}
