package phconvert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityMap(t *testing.T) {
	identity := IdentityInfo{Author: "A. Researcher", AuthorAffiliation: "Example University"}
	m := identity.toMap("/data/out.hdf5")

	assert.Equal(t, "out.hdf5", m["filename"])
	assert.Equal(t, FormatName, m["format_name"])
	assert.Equal(t, FormatVersion, m["format_version"])
	assert.Equal(t, Software, m["software"])
	assert.Equal(t, "A. Researcher", m["author"])
	assert.Contains(t, m, "creation_time")
}

func TestIdentityMapOmitsEmptyAuthor(t *testing.T) {
	m := IdentityInfo{}.toMap("out.hdf5")
	assert.NotContains(t, m, "author")
	assert.NotContains(t, m, "author_affiliation")
}

func TestProvenanceMap(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "input.pt3")
	require.NoError(t, os.WriteFile(source, []byte("x"), 0o644))

	m := provenanceMap(source)
	assert.Equal(t, "input.pt3", m["filename"])
	assert.Contains(t, m, "creation_time")
	assert.Contains(t, m, "modification_time")
}

func TestProvenanceMapMissingSource(t *testing.T) {
	m := provenanceMap(filepath.Join(t.TempDir(), "gone.pt3"))
	assert.Equal(t, "gone.pt3", m["filename"])
	assert.NotContains(t, m, "creation_time")
}

func TestFieldDescriptionsCoverMandatoryPaths(t *testing.T) {
	for _, path := range []string{
		"/description", "/comment", "/acquisition_time",
		"/photon_data/timestamps", "/photon_data/detectors", "/photon_data/nanotimes",
		"/photon_data/timestamps_specs/timestamps_unit",
		"/photon_data/nanotimes_specs/tcspc_unit",
		"/photon_data/measurement_specs/measurement_type",
		"/setup/num_pixels", "/setup/lifetime",
		"/identity/format_name", "/provenance/filename",
	} {
		assert.NotEmpty(t, fieldDescription(path), path)
	}
}
