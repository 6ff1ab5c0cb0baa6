package phconvert

import (
	"os"
	"path/filepath"
	"time"
)

const (
	Software        = "phconvert_go"
	SoftwareVersion = "0.3.1"
	FormatName      = "Photon-HDF5"
	FormatVersion   = "0.3"
	FormatURL       = "http://photon-hdf5.readthedocs.org/"
)

const timeLayout = "2006-01-02 15:04:05"

// officialFieldsDescr maps every standard Photon-HDF5 path to its one-line
// description. The description is stored as a TITLE attribute on the
// dataset. Paths under /user are free form and need no entry; paths under
// /photon_dataNN normalize to /photon_data.
var officialFieldsDescr = map[string]string{
	"/": "Photon-HDF5: a file format for photon-counting detector based single-molecule spectroscopy experiments.",

	"/acquisition_time": "Measurement duration in seconds.",
	"/comment":          "A user-defined comment for the data file.",
	"/description":      "A string describing the measurement.",

	"/photon_data":                                        "Group containing arrays of photon data.",
	"/photon_data/timestamps":                             "Array of photon timestamps, in sync-clock ticks.",
	"/photon_data/detectors":                              "Array of detector IDs for each timestamp.",
	"/photon_data/nanotimes":                              "TCSPC photon arrival time (nanotime) in TCSPC bin units.",
	"/photon_data/timestamps_specs":                       "Specifications for timestamps.",
	"/photon_data/timestamps_specs/timestamps_unit":       "Value of 1 unit of timestamps, in seconds.",
	"/photon_data/nanotimes_specs":                        "Specifications for nanotimes.",
	"/photon_data/nanotimes_specs/tcspc_unit":             "TCSPC bin width (in seconds).",
	"/photon_data/nanotimes_specs/tcspc_range":            "Full TCSPC range (in seconds).",
	"/photon_data/nanotimes_specs/tcspc_num_bins":         "Number of TCSPC bins.",
	"/photon_data/nanotimes_specs/time_reversed":          "True if nanotimes are recorded in reverse time order.",
	"/photon_data/measurement_specs":                      "Metadata necessary for interpretation of the particular type of measurement.",
	"/photon_data/measurement_specs/measurement_type":     "Name of the measurement the data represents.",
	"/photon_data/measurement_specs/alex_period":          "Period of laser alternation, in timestamps units.",
	"/photon_data/measurement_specs/laser_pulse_rate":     "Repetition rate of the pulsed excitation laser (in Hz).",
	"/photon_data/measurement_specs/alex_period_donor":    "Start and stop of the donor excitation period, in nanotimes units.",
	"/photon_data/measurement_specs/alex_period_acceptor": "Start and stop of the acceptor excitation period, in nanotimes units.",
	"/photon_data/measurement_specs/detectors_specs":      "Mapping between the detector IDs and the detection channels.",

	"/photon_data/measurement_specs/detectors_specs/spectral_ch1": "Detector IDs for the first spectral channel (donor in 2-color smFRET).",
	"/photon_data/measurement_specs/detectors_specs/spectral_ch2": "Detector IDs for the second spectral channel (acceptor in 2-color smFRET).",

	"/setup":                        "Information about the experimental setup.",
	"/setup/num_pixels":             "Total number of detector pixels.",
	"/setup/num_spots":              "Number of excitation (or detection) spots in the sample.",
	"/setup/num_spectral_ch":        "Number of distinct spectral bands in the detection channels.",
	"/setup/num_polarization_ch":    "Number of distinct polarization states in the detection channels.",
	"/setup/num_split_ch":           "Number of beam-split channels.",
	"/setup/modulated_excitation":   "True if excitation is alternated or modulated.",
	"/setup/lifetime":               "True if the measurement includes a nanotimes array of photon arrival times.",
	"/setup/excitation_wavelengths": "List of excitation wavelengths (center wavelength if broad-band), in increasing order (m).",
	"/setup/detection_wavelengths":  "Reference wavelengths for detection of each spectral channel (m).",

	"/identity":                    "Information about the data file.",
	"/identity/filename":           "Name of the original file.",
	"/identity/filename_full":      "Name and full path of the original file.",
	"/identity/creation_time":      "File creation time.",
	"/identity/software":           "Name of the software used to create the file.",
	"/identity/software_version":   "Version of the software used to create the file.",
	"/identity/format_name":        "Name of the file format.",
	"/identity/format_version":     "Version of the file format.",
	"/identity/format_url":         "Official URL of the file format.",
	"/identity/author":             "Author of the measurement (or of the file if a simulation).",
	"/identity/author_affiliation": "Company or institution the author is affiliated with.",

	"/provenance":                   "Information about the original data file.",
	"/provenance/filename":          "Name of the original data file.",
	"/provenance/filename_full":     "Name and full path of the original data file.",
	"/provenance/creation_time":     "Creation time of the original data file.",
	"/provenance/modification_time": "Last modification time of the original data file.",

	"/sample":             "Information about the measured sample.",
	"/sample/sample_name": "A descriptive name for the sample.",
	"/sample/dye_names":   "String containing a comma-separated list of dye or fluorophore names.",
	"/sample/buffer_name": "A descriptive name for the buffer.",
	"/sample/num_dyes":    "Number of different dyes present in the sample.",

	"/user": "Group of user-defined custom fields.",
}

func fieldDescription(metaPath string) string {
	return officialFieldsDescr[metaPath]
}

// IdentityInfo describes /identity. Filename fields and software metadata
// are filled in by the writer at save time.
type IdentityInfo struct {
	Author            string
	AuthorAffiliation string
}

func (id IdentityInfo) toMap(outputPath string) map[string]any {
	full, err := filepath.Abs(outputPath)
	if err != nil {
		full = outputPath
	}
	m := map[string]any{
		"filename":         filepath.Base(full),
		"filename_full":    full,
		"creation_time":    time.Now().Format(timeLayout),
		"software":         Software,
		"software_version": SoftwareVersion,
		"format_name":      FormatName,
		"format_version":   FormatVersion,
		"format_url":       FormatURL,
	}
	if id.Author != "" {
		m["author"] = id.Author
	}
	if id.AuthorAffiliation != "" {
		m["author_affiliation"] = id.AuthorAffiliation
	}
	return m
}

// provenanceMap collects file metadata of the original data file. A missing
// source file is reported as a warning and the filename fields are still
// written.
func provenanceMap(sourcePath string) map[string]any {
	full, err := filepath.Abs(sourcePath)
	if err != nil {
		full = sourcePath
	}
	m := map[string]any{
		"filename":      filepath.Base(full),
		"filename_full": full,
	}
	info, err := os.Stat(sourcePath)
	if err != nil {
		logger.Error("could not locate original file " + sourcePath)
		return m
	}
	// Go exposes only the modification time portably; the original
	// creation time is not available on every platform.
	m["creation_time"] = info.ModTime().Format(timeLayout)
	m["modification_time"] = info.ModTime().Format(timeLayout)
	return m
}
