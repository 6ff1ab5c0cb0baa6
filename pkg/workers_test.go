package phconvert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPT3(t *testing.T, dir, name string, records []uint32) string {
	t.Helper()
	filename := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(filename, testPT3Stream(t, records), 0o644))
	return filename
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	fileIn := writeTestPT3(t, dir, "sample.pt3", []uint32{
		0x1<<28 | 0x020<<16 | 100,
		0xF << 28, // overflow, dropped by the filter
		0x2<<28 | 0x140<<16 | 50,
	})
	fileOut := filepath.Join(dir, "sample.hdf5")

	result, err := ConvertFile(fileIn, fileOut)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Photons)
	assert.Equal(t, 1, result.Dropped)

	require.NoError(t, ValidateFile(fileOut, false))

	pf, err := OpenPhotonHDF5(fileOut)
	require.NoError(t, err)
	defer pf.Close()
	photons, err := pf.LoadPhotonData()
	require.NoError(t, err)
	assert.Equal(t, []int64{100, NSyncWrap + 50}, photons.Timestamps)
}

func TestConvertFileKeepOverflow(t *testing.T) {
	config := GetConfiguration()
	config.KeepOverflow = true
	SetConfiguration(config)
	defer SetConfiguration(DefaultConfiguration())

	dir := t.TempDir()
	fileIn := writeTestPT3(t, dir, "sample.pt3", []uint32{
		0x1<<28 | 0x020<<16 | 100,
		0xF << 28,
	})

	result, err := ConvertFile(fileIn, filepath.Join(dir, "out.hdf5"))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Photons)
	assert.Equal(t, 0, result.Dropped)
}

func TestConvertFileMissingInput(t *testing.T) {
	dir := t.TempDir()
	result, err := ConvertFile(filepath.Join(dir, "nope.pt3"), filepath.Join(dir, "out.hdf5"))
	require.Error(t, err)
	assert.Error(t, result.Error)
}

func TestConvertAll(t *testing.T) {
	config := GetConfiguration()
	config.NumWorkers = 2
	SetConfiguration(config)
	defer SetConfiguration(DefaultConfiguration())

	dir := t.TempDir()
	var jobs []ConvertJob
	for _, name := range []string{"a", "b", "c"} {
		fileIn := writeTestPT3(t, dir, name+".pt3", []uint32{0x1<<28 | 0x020<<16 | 7})
		jobs = append(jobs, ConvertJob{FileIn: fileIn, FileOut: filepath.Join(dir, name+".hdf5")})
	}

	results := ConvertAll(jobs)
	require.Len(t, results, 3)
	for _, result := range results {
		assert.NoError(t, result.Error)
		assert.Equal(t, 1, result.Photons)
	}
}

func TestConvertAllReportsFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeTestPT3(t, dir, "good.pt3", []uint32{0x1<<28 | 0x020<<16 | 7})
	jobs := []ConvertJob{
		{FileIn: good, FileOut: filepath.Join(dir, "good.hdf5")},
		{FileIn: filepath.Join(dir, "missing.pt3"), FileOut: filepath.Join(dir, "bad.hdf5")},
	}

	results := ConvertAll(jobs)
	require.Len(t, results, 2)

	failures := 0
	for _, result := range results {
		if result.Error != nil {
			failures++
		}
	}
	assert.Equal(t, 1, failures)
}
