package jfile

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMkdir(t *testing.T) {
	f := openMem(t, memfs.New(), "events", "RECREATE")
	defer func() { _ = f.Close() }()

	sub, err := f.Root().Mkdir("calib", "calibration data")
	require.NoError(t, err)
	assert.Equal(t, "calib", sub.Name())
	assert.Equal(t, "calibration data", sub.Title())
	assert.Same(t, f.Root(), sub.Parent())
	assert.Same(t, f, sub.File())

	// The representing key and the directory are linked by id.
	k, ok := f.Root().Key("calib")
	require.True(t, ok)
	assert.True(t, k.IsSubdir())
	assert.Equal(t, "TDirectory", k.ClassName())
	assert.Equal(t, k.KeyID(), sub.SeekDir())

	t.Run("empty name", func(t *testing.T) {
		_, err := f.Root().Mkdir("", "")
		assert.ErrorIs(t, err, ErrNoName)
	})
}

func TestMkdirReadOnly(t *testing.T) {
	fs := memfs.New()
	f := openMem(t, fs, "events", "RECREATE")
	require.NoError(t, f.Close())

	f = openMem(t, fs, "events", "READ")
	defer func() { _ = f.Close() }()
	_, err := f.Root().Mkdir("calib", "")
	assert.ErrorIs(t, err, ErrNotWritable)
}

func TestNestedDirectoriesRoundTrip(t *testing.T) {
	fs := memfs.New()
	f := openMem(t, fs, "events", "RECREATE")

	calib, err := f.Root().Mkdir("calib", "calibration")
	require.NoError(t, err)
	inner, err := calib.Mkdir("ecal", "")
	require.NoError(t, err)

	_, err = f.CreateKey(calib, &particle{Name: "e-", Charge: -1}, "probe")
	require.NoError(t, err)
	_, err = f.CreateKey(inner, &particle{Name: "gamma"}, "cluster")
	require.NoError(t, err)
	_, err = f.CreateKey(nil, &particle{Name: "p"}, "beam")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f = openMem(t, fs, "events", "READ")
	defer func() { _ = f.Close() }()

	calib, ok := f.Root().Dir("calib")
	require.True(t, ok)
	assert.Equal(t, "calibration", calib.Title())

	// seekDir linkage holds right after open.
	k, ok := f.Root().Key("calib")
	require.True(t, ok)
	assert.Equal(t, k.KeyID(), calib.SeekDir())

	v, err := calib.Get("probe")
	require.NoError(t, err)
	assert.Equal(t, &particle{Name: "e-", Charge: -1}, v)

	inner, ok = calib.Dir("ecal")
	require.True(t, ok)
	v, err = inner.Get("cluster")
	require.NoError(t, err)
	assert.Equal(t, &particle{Name: "gamma"}, v)

	v, err = f.Get("beam")
	require.NoError(t, err)
	assert.Equal(t, &particle{Name: "p"}, v)
}

func TestDirKeyReadObj(t *testing.T) {
	f := openMem(t, memfs.New(), "events", "RECREATE")
	defer func() { _ = f.Close() }()

	sub, err := f.Root().Mkdir("histos", "")
	require.NoError(t, err)

	// Reading a directory key hands back the attached directory.
	v, err := f.Get("histos")
	require.NoError(t, err)
	assert.Same(t, sub, v)
}

func TestReadKeysRebuilds(t *testing.T) {
	fs := memfs.New()
	f := openMem(t, fs, "events", "RECREATE")
	sub, err := f.Root().Mkdir("calib", "")
	require.NoError(t, err)
	_, err = f.CreateKey(sub, &particle{Name: "e-"}, "probe")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f = openMem(t, fs, "events", "READ")
	defer func() { _ = f.Close() }()

	n, err := f.Root().ReadKeys()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	sub, ok := f.Root().Dir("calib")
	require.True(t, ok)
	n, err = sub.ReadKeys()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWriteHeaderRenames(t *testing.T) {
	fs := memfs.New()
	f := openMem(t, fs, "events", "RECREATE")
	sub, err := f.Root().Mkdir("calib", "old title")
	require.NoError(t, err)

	// Rename through the directory, then push it into the key record.
	subKey, ok := f.Root().Key("calib")
	require.True(t, ok)
	require.Equal(t, "old title", subKey.Title())

	subRenamed := sub
	subRenamed.title = "new title"
	subRenamed.WriteHeader()
	assert.Equal(t, "new title", subKey.Title())

	// Root header lives in the document; a no-op here.
	f.Root().WriteHeader()
	require.NoError(t, f.Close())
}

func TestMalformedKeysSkipped(t *testing.T) {
	fs := memfs.New()
	doc := `{
   "type": "ROOTfile",
   "IOVersion": 1,
   "Keys": [
      42,
      {"name": "noPayload", "cycle": 1},
      {"name": "good", "cycle": 1, "Object": {"_typename": "particle", "name": "e-"}}
   ]
}`
	require.NoError(t, util.WriteFile(fs, "mixed.json", []byte(doc), 0o644))

	f := openMem(t, fs, "mixed", "READ")
	defer func() { _ = f.Close() }()

	keys := f.Root().Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, "good", keys[0].Name())
}
