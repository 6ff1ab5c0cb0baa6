package phconvert

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := OpenCatalog("sqlite3", filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { catalog.Close() })
	return catalog
}

func TestCatalogSaveAndGetSetup(t *testing.T) {
	catalog := openTestCatalog(t)

	preset := DefaultSetup()
	preset.Name = "picoharp-532-635"
	preset.LaserPulseRate = 20e6
	require.NoError(t, catalog.SaveSetup(preset))

	loaded, err := catalog.GetSetup("picoharp-532-635")
	require.NoError(t, err)
	assert.Equal(t, preset, loaded)

	_, err = catalog.GetSetup("missing")
	assert.ErrorContains(t, err, "not found")
}

func TestCatalogSaveSetupReplaces(t *testing.T) {
	catalog := openTestCatalog(t)

	preset := DefaultSetup()
	preset.Name = "bench"
	require.NoError(t, catalog.SaveSetup(preset))

	preset.AlexPeriod = 4000
	require.NoError(t, catalog.SaveSetup(preset))

	loaded, err := catalog.GetSetup("bench")
	require.NoError(t, err)
	assert.Equal(t, int64(4000), loaded.AlexPeriod)
}

func TestCatalogSaveSetupNeedsName(t *testing.T) {
	catalog := openTestCatalog(t)
	err := catalog.SaveSetup(SetupPreset{})
	assert.ErrorContains(t, err, "name")
}

func TestCatalogListSetups(t *testing.T) {
	catalog := openTestCatalog(t)

	for _, name := range []string{"zeta", "alpha"} {
		preset := DefaultSetup()
		preset.Name = name
		require.NoError(t, catalog.SaveSetup(preset))
	}

	presets, err := catalog.ListSetups()
	require.NoError(t, err)
	require.Len(t, presets, 2)
	assert.Equal(t, "alpha", presets[0].Name)
	assert.Equal(t, "zeta", presets[1].Name)
}

func TestCatalogLogConversion(t *testing.T) {
	catalog := openTestCatalog(t)

	entry := ConversionEntry{
		FileIn:    "in.pt3",
		FileOut:   "out.hdf5",
		Photons:   12345,
		Dropped:   67,
		SetupName: "default",
	}
	firstID, err := catalog.LogConversion(entry)
	require.NoError(t, err)
	secondID, err := catalog.LogConversion(entry)
	require.NoError(t, err)
	assert.NotEqual(t, firstID, secondID)

	entries, err := catalog.ListConversions()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "in.pt3", entries[0].FileIn)
	assert.Equal(t, int64(12345), entries[0].Photons)
}
