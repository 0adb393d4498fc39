package jfile

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/rootjson/registry"
)

type trackBase struct {
	ID int
}

type fullTrack struct {
	trackBase
	E float64
}

func TestCreateKeyCycles(t *testing.T) {
	f := openMem(t, memfs.New(), "events", "RECREATE")
	defer func() { _ = f.Close() }()

	for i := 1; i <= 3; i++ {
		k, err := f.CreateKey(nil, &particle{Name: "e-", Charge: -i}, "electron")
		require.NoError(t, err)
		assert.Equal(t, i, k.Cycle())
	}
	k, err := f.CreateKey(nil, &particle{Name: "p"}, "proton")
	require.NoError(t, err)
	assert.Equal(t, 1, k.Cycle())

	// Insertion order is preserved; Key resolves to the newest cycle.
	keys := f.Root().Keys()
	require.Len(t, keys, 4)
	assert.Equal(t, []int{1, 2, 3, 1}, []int{keys[0].Cycle(), keys[1].Cycle(), keys[2].Cycle(), keys[3].Cycle()})

	newest, ok := f.Root().Key("electron")
	require.True(t, ok)
	assert.Equal(t, 3, newest.Cycle())
}

func TestCyclesSurviveReopen(t *testing.T) {
	fs := memfs.New()
	f := openMem(t, fs, "events", "RECREATE")
	for i := 0; i < 2; i++ {
		_, err := f.CreateKey(nil, &particle{Name: "mu", Charge: i}, "muon")
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())

	f = openMem(t, fs, "events", "UPDATE")
	defer func() { _ = f.Close() }()

	// New writes keep counting where the file left off.
	k, err := f.CreateKey(nil, &particle{Name: "mu", Charge: 2}, "muon")
	require.NoError(t, err)
	assert.Equal(t, 3, k.Cycle())
}

func TestPayloadRoundTrip(t *testing.T) {
	fs := memfs.New()
	in := &run{Number: 42, Particles: []particle{
		{Name: "e-", Charge: -1, Px: 0.1, Py: 0.2},
		{Name: "p", Charge: 1, Px: -3.5},
	}}

	f := openMem(t, fs, "events", "RECREATE")
	k, err := f.CreateKey(nil, in, "run42")
	require.NoError(t, err)
	assert.Equal(t, "run", k.ClassName())
	require.NoError(t, f.Close())

	f = openMem(t, fs, "events", "READ")
	defer func() { _ = f.Close() }()

	out, err := f.Get("run42")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestGetCycle(t *testing.T) {
	fs := memfs.New()
	f := openMem(t, fs, "events", "RECREATE")
	for i := 1; i <= 3; i++ {
		_, err := f.CreateKey(nil, &particle{Name: "e-", Charge: -i}, "electron")
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())

	f = openMem(t, fs, "events", "READ")
	defer func() { _ = f.Close() }()

	v, err := f.Root().GetCycle("electron", 2)
	require.NoError(t, err)
	assert.Equal(t, -2, v.(*particle).Charge)

	// Get without a cycle resolves to the newest write.
	v, err = f.Get("electron")
	require.NoError(t, err)
	assert.Equal(t, -3, v.(*particle).Charge)

	_, err = f.Root().GetCycle("electron", 9)
	assert.Error(t, err)
	_, err = f.Get("positron")
	assert.Error(t, err)
}

func TestKeyRead(t *testing.T) {
	f := openMem(t, memfs.New(), "events", "RECREATE")
	defer func() { _ = f.Close() }()

	k, err := f.CreateKey(nil, &particle{Name: "pi0", Px: 1.5}, "pion")
	require.NoError(t, err)

	var got particle
	require.NoError(t, k.Read(&got))
	assert.Equal(t, particle{Name: "pi0", Px: 1.5}, got)

	var wrong run
	assert.Error(t, k.Read(&wrong))
}

func TestReadObjAs(t *testing.T) {
	r := registry.NewRegistry()
	r.MustRegister(fullTrack{})
	unrelated := r.MustRegister(particle{})
	base, ok := r.Lookup("trackBase")
	require.True(t, ok)

	f, err := Open("tracks", "RECREATE", WithFilesystem(memfs.New()), WithRegistry(r))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	k, err := f.CreateKey(nil, &fullTrack{trackBase: trackBase{ID: 7}, E: 13.6}, "t0")
	require.NoError(t, err)

	v, err := k.ReadObjAs(base)
	require.NoError(t, err)
	assert.IsType(t, &fullTrack{}, v)

	_, err = k.ReadObjAs(unrelated)
	assert.ErrorIs(t, err, ErrIncompatibleClass)
}

func TestUpdateObject(t *testing.T) {
	fs := memfs.New()
	f := openMem(t, fs, "events", "RECREATE")
	k, err := f.CreateKey(nil, &particle{Name: "e-", Charge: -1}, "electron")
	require.NoError(t, err)

	require.NoError(t, k.UpdateObject(&particle{Name: "e+", Charge: 1}))
	assert.Equal(t, 1, k.Cycle())
	require.NoError(t, f.Close())

	f = openMem(t, fs, "events", "READ")
	defer func() { _ = f.Close() }()
	v, err := f.Get("electron")
	require.NoError(t, err)
	assert.Equal(t, &particle{Name: "e+", Charge: 1}, v)
}

func TestUpdateObjectReadOnly(t *testing.T) {
	fs := memfs.New()
	f := openMem(t, fs, "events", "RECREATE")
	_, err := f.CreateKey(nil, &particle{Name: "e-"}, "electron")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f = openMem(t, fs, "events", "READ")
	defer func() { _ = f.Close() }()
	k, ok := f.Root().Key("electron")
	require.True(t, ok)
	assert.ErrorIs(t, k.UpdateObject(&particle{Name: "e+"}), ErrNotWritable)
}

func TestKeyDelete(t *testing.T) {
	fs := memfs.New()
	f := openMem(t, fs, "events", "RECREATE")
	k, err := f.CreateKey(nil, &particle{Name: "e-"}, "gone")
	require.NoError(t, err)
	_, err = f.CreateKey(nil, &particle{Name: "p"}, "kept")
	require.NoError(t, err)

	k.Delete()
	require.NoError(t, f.Close())

	f = openMem(t, fs, "events", "READ")
	defer func() { _ = f.Close() }()
	_, ok := f.Root().Key("gone")
	assert.False(t, ok)
	_, ok = f.Root().Key("kept")
	assert.True(t, ok)
}

func TestCreateKeyDefaultName(t *testing.T) {
	f := openMem(t, memfs.New(), "events", "RECREATE")
	defer func() { _ = f.Close() }()

	k, err := f.CreateKey(nil, &particle{Name: "x"}, "")
	require.NoError(t, err)
	assert.Equal(t, "particle", k.Name())
}

func TestCreateKeyUnregistered(t *testing.T) {
	type stranger struct{ A int }

	f := openMem(t, memfs.New(), "events", "RECREATE")
	defer func() { _ = f.Close() }()

	_, err := f.CreateKey(nil, &stranger{A: 1}, "odd")
	require.ErrorIs(t, err, registry.ErrUnknownClass)

	// The failed store leaves no half-built record behind.
	assert.Empty(t, f.Root().Keys())
}
