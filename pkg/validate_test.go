package phconvert

import (
	"path/filepath"
	"testing"

	hdf5 "github.com/scigolib/hdf5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/photon_data/timestamps", "/photon_data/timestamps"},
		{"/photon_data0/timestamps", "/photon_data/timestamps"},
		{"/photon_data12/nanotimes_specs/", "/photon_data/nanotimes_specs"},
		{"/setup/num_pixels", "/setup/num_pixels"},
		{"/", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, normalizePath(tc.path), tc.path)
	}
}

func TestValidateConvertedFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "out.hdf5")
	require.NoError(t, SavePhotonHDF5(filename, testRecord()))

	assert.NoError(t, ValidateFile(filename, true))
	assert.NoError(t, ValidateFile(filename, false))
}

func TestValidateMissingMandatoryFields(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "bad.hdf5")
	fw, err := openFile(filename)
	require.NoError(t, err)
	require.NoError(t, writeString(fw, "/description", "incomplete", ""))
	require.NoError(t, fw.Close())

	err = ValidateFile(filename, false)
	require.Error(t, err)
	var invalid *InvalidPhotonHDF5
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, err.Error(), "/photon_data")
	assert.Contains(t, err.Error(), "/setup")
}

func TestValidateUnknownFieldStrict(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "extra.hdf5")
	record := testRecord()
	require.NoError(t, SavePhotonHDF5(filename, record))

	fw, err := hdf5.OpenForWrite(filename, hdf5.OpenReadWrite)
	require.NoError(t, err)
	require.NoError(t, writeString(fw, "/not_a_field", "oops", ""))
	require.NoError(t, fw.Close())

	err = ValidateFile(filename, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/not_a_field")

	// Lax mode only warns about unknown fields.
	assert.NoError(t, ValidateFile(filename, false))
}

func TestValidateBadMeasurementType(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "badtype.hdf5")
	record := testRecord()
	record.Setup.MeasurementType = "smFRET-made-up"
	require.NoError(t, SavePhotonHDF5(filename, record))

	err := ValidateFile(filename, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smFRET-made-up")
}

func TestValidateNsALEXRequiresPulseRate(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "nsalex.hdf5")
	record := testRecord()
	record.Setup.LaserPulseRate = 0
	require.NoError(t, SavePhotonHDF5(filename, record))

	err := ValidateFile(filename, false)
	require.Error(t, err)
	var invalid *InvalidPhotonHDF5
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, err.Error(), "laser_pulse_rate")
}

func TestValidateUsALEXRequiresAlexPeriod(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "usalex.hdf5")
	record := testRecord()
	record.Setup.MeasurementType = "smFRET-usALEX"
	record.Setup.AlexPeriod = 0
	require.NoError(t, SavePhotonHDF5(filename, record))

	err := ValidateFile(filename, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alex_period")
}
