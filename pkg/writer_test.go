package phconvert

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() *Record {
	return &Record{
		Description:     "dual-color smFRET measurement",
		Comment:         "converted from pt3",
		AcquisitionTime: 120,
		Photons: &PhotonData{
			Timestamps: []int64{100, 250, 65576},
			Detectors:  []uint8{1, 2, 1},
			Nanotimes:  []uint16{32, 320, 17},
		},
		TimestampsUnit: 5e-8,
		TCSPCUnit:      3.2e-11,
		TCSPCRange:     3.2e-11 * TCSPCNumBins,
		TCSPCBins:      TCSPCNumBins,
		Setup:          DefaultSetup(),
		Sample: SampleInfo{
			SampleName: "40bp dsDNA",
			DyeNames:   "ATTO550, ATTO647N",
			BufferName: "TE50",
			NumDyes:    2,
		},
		Identity: IdentityInfo{
			Author:            "A. Researcher",
			AuthorAffiliation: "Example University",
		},
		SourceFilename: "sample.pt3",
		User: map[string]any{
			"picoquant": map[string]any{
				"hardware_serial": int32(10047),
			},
		},
	}
}

func TestSaveAndReload(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "out.hdf5")
	record := testRecord()
	require.NoError(t, SavePhotonHDF5(filename, record))

	pf, err := OpenPhotonHDF5(filename)
	require.NoError(t, err)
	defer pf.Close()

	description, err := pf.ReadString("/description")
	require.NoError(t, err)
	assert.Equal(t, record.Description, description)

	comment, err := pf.ReadString("/comment")
	require.NoError(t, err)
	assert.Equal(t, record.Comment, comment)

	acquisitionTime, err := pf.ReadScalar("/acquisition_time")
	require.NoError(t, err)
	assert.Equal(t, 120.0, acquisitionTime)

	photons, err := pf.LoadPhotonData()
	require.NoError(t, err)
	assert.Equal(t, record.Photons.Timestamps, photons.Timestamps)
	assert.Equal(t, record.Photons.Detectors, photons.Detectors)
	assert.Equal(t, record.Photons.Nanotimes, photons.Nanotimes)

	unit, err := pf.ReadScalar("/photon_data/timestamps_specs/timestamps_unit")
	require.NoError(t, err)
	assert.InDelta(t, 5e-8, unit, 1e-15)

	bins, err := pf.ReadScalar("/photon_data/nanotimes_specs/tcspc_num_bins")
	require.NoError(t, err)
	assert.Equal(t, float64(TCSPCNumBins), bins)

	measurementType, err := pf.ReadString("/photon_data/measurement_specs/measurement_type")
	require.NoError(t, err)
	assert.Equal(t, "smFRET-nsALEX", measurementType)

	formatName, err := pf.ReadString("/identity/format_name")
	require.NoError(t, err)
	assert.Equal(t, FormatName, formatName)

	serial, err := pf.ReadScalar("/user/picoquant/hardware_serial")
	require.NoError(t, err)
	assert.Equal(t, 10047.0, serial)
}

func TestLoadPhotonHDF5Validates(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "out.hdf5")
	require.NoError(t, SavePhotonHDF5(filename, testRecord()))

	pf, err := LoadPhotonHDF5(filename, true)
	require.NoError(t, err)
	pf.Close()

	_, err = LoadPhotonHDF5(filepath.Join(t.TempDir(), "missing.hdf5"), false)
	var open *ErrOpenFile
	require.ErrorAs(t, err, &open)
}

func TestTree(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "out.hdf5")
	record := testRecord()
	require.NoError(t, SavePhotonHDF5(filename, record))

	pf, err := OpenPhotonHDF5(filename)
	require.NoError(t, err)
	defer pf.Close()

	tree, err := pf.Tree("/sample")
	require.NoError(t, err)
	assert.Equal(t, record.Sample.SampleName, tree["sample_name"])
	assert.Equal(t, 2.0, tree["num_dyes"])

	tree, err = pf.Tree("/photon_data")
	require.NoError(t, err)
	timestamps, ok := tree["timestamps"].([]float64)
	require.True(t, ok)
	assert.Equal(t, []float64{100, 250, 65576}, timestamps)
	specs, ok := tree["nanotimes_specs"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(TCSPCNumBins), specs["tcspc_num_bins"])
}

func TestSaveWritesFieldDescriptions(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "out.hdf5")
	require.NoError(t, SavePhotonHDF5(filename, testRecord()))

	pf, err := OpenPhotonHDF5(filename)
	require.NoError(t, err)
	defer pf.Close()

	dataset, err := pf.Dataset("/photon_data/timestamps")
	require.NoError(t, err)
	title, err := dataset.ReadAttribute("TITLE")
	require.NoError(t, err)
	assert.Equal(t, officialFieldsDescr["/photon_data/timestamps"], title)
}

func TestSaveEmptyPhotonStream(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "out.hdf5")
	record := testRecord()
	record.Photons = NewPhotonData(0)

	err := SavePhotonHDF5(filename, record)
	var empty *ErrEmptyPhotonData
	require.ErrorAs(t, err, &empty)
}

func TestSaveInvalidUserMetadata(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "out.hdf5")
	record := testRecord()
	record.User["picoquant"].(map[string]any)["display_curves"] = []any{1, 2}

	err := SavePhotonHDF5(filename, record)
	var invalid *ErrInvalidUserMetadata
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"/user/picoquant/display_curves"}, invalid.Paths)
}

func TestSaveDropsInvalidUserMetadata(t *testing.T) {
	config := GetConfiguration()
	config.DropInvalidUser = true
	SetConfiguration(config)
	defer SetConfiguration(DefaultConfiguration())

	filename := filepath.Join(t.TempDir(), "out.hdf5")
	record := testRecord()
	record.User["picoquant"].(map[string]any)["display_curves"] = []any{1, 2}

	require.NoError(t, SavePhotonHDF5(filename, record))

	pf, err := OpenPhotonHDF5(filename)
	require.NoError(t, err)
	defer pf.Close()

	assert.False(t, pf.HasObject("/user/picoquant/display_curves"))
	assert.True(t, pf.HasObject("/user/picoquant/hardware_serial"))
}

func TestPruneUserMetadata(t *testing.T) {
	user := map[string]any{
		"a": "keep",
		"b": []any{1},
		"nested": map[string]any{
			"c": int32(3),
			"d": struct{}{},
		},
	}
	pruned := PruneUserMetadata(user)
	assert.Equal(t, []string{"/user/b", "/user/nested/d"}, pruned)
	assert.Equal(t, "keep", user["a"])
	assert.NotContains(t, user, "b")
	assert.NotContains(t, user["nested"], "d")
}
