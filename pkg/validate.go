package phconvert

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Measurement types understood by the 0.3 format.
var validMeasurementTypes = map[string]bool{
	"smFRET":           true,
	"smFRET-usALEX":    true,
	"smFRET-usALEX-3c": true,
	"smFRET-nsALEX":    true,
}

var photonDataRe = regexp.MustCompile(`^/photon_data[0-9]*`)

// normalizePath maps a file path to its schema entry: numbered photon_data
// groups (photon_data0, photon_data1, ...) all map onto /photon_data.
func normalizePath(path string) string {
	path = strings.TrimSuffix(path, "/")
	return photonDataRe.ReplaceAllString(path, "/photon_data")
}

// ValidateFile opens filename and checks it against the Photon-HDF5 0.3
// layout rules.
func ValidateFile(filename string, strict bool) error {
	pf, err := OpenPhotonHDF5(filename)
	if err != nil {
		return err
	}
	defer pf.Close()
	return ValidatePhotonHDF5(pf, strict)
}

// ValidatePhotonHDF5 checks an open file. Missing mandatory fields and bad
// values are always errors. Fields outside the official layout are errors in
// strict mode and logged warnings otherwise.
func ValidatePhotonHDF5(pf *PhotonFile, strict bool) error {
	var problems []error

	fail := func(path, format string, args ...any) {
		problems = append(problems, &InvalidPhotonHDF5{
			Path: path,
			Msg:  fmt.Sprintf(format, args...),
		})
	}

	for _, path := range pf.Paths() {
		if path == "/" {
			continue
		}
		meta := normalizePath(path)
		if meta == "/user" || strings.HasPrefix(meta, "/user/") {
			continue
		}
		if _, known := officialFieldsDescr[meta]; known {
			continue
		}
		if strict {
			fail(path, "not a valid Photon-HDF5 field")
		} else {
			logger.Error(fmt.Sprintf("unknown field %s in %s", path, pf.Filename))
		}
	}

	for _, path := range []string{
		"/acquisition_time", "/comment", "/description",
		"/photon_data", "/setup", "/identity", "/provenance",
	} {
		if !pf.HasObject(path) {
			fail(path, "mandatory field missing")
		}
	}

	problems = append(problems, checkIdentity(pf)...)
	problems = append(problems, checkPhotonData(pf)...)
	problems = append(problems, checkSetup(pf)...)

	return errors.Join(problems...)
}

func checkIdentity(pf *PhotonFile) []error {
	var problems []error
	name, err := pf.ReadString("/identity/format_name")
	if err != nil {
		problems = append(problems, &InvalidPhotonHDF5{
			Path: "/identity/format_name", Msg: "mandatory field missing",
		})
	} else if name != FormatName {
		problems = append(problems, &InvalidPhotonHDF5{
			Path: "/identity/format_name",
			Msg:  fmt.Sprintf("format name is %q, expected %q", name, FormatName),
		})
	}
	if !pf.HasObject("/identity/format_version") {
		problems = append(problems, &InvalidPhotonHDF5{
			Path: "/identity/format_version", Msg: "mandatory field missing",
		})
	}
	return problems
}

func checkPhotonData(pf *PhotonFile) []error {
	var problems []error
	missing := func(path string) {
		problems = append(problems, &InvalidPhotonHDF5{Path: path, Msg: "mandatory field missing"})
	}

	for _, path := range []string{
		"/photon_data/timestamps",
		"/photon_data/detectors",
		"/photon_data/timestamps_specs/timestamps_unit",
	} {
		if !pf.HasObject(path) {
			missing(path)
		}
	}

	if !pf.HasObject("/photon_data/measurement_specs") {
		return problems
	}

	base := "/photon_data/measurement_specs"
	measurementType, err := pf.ReadString(base + "/measurement_type")
	if err != nil {
		missing(base + "/measurement_type")
		return problems
	}
	if !validMeasurementTypes[measurementType] {
		problems = append(problems, &InvalidPhotonHDF5{
			Path: base + "/measurement_type",
			Msg:  fmt.Sprintf("unknown measurement type %q", measurementType),
		})
		return problems
	}

	for _, path := range []string{
		base + "/detectors_specs/spectral_ch1",
		base + "/detectors_specs/spectral_ch2",
	} {
		if !pf.HasObject(path) {
			missing(path)
		}
	}

	switch measurementType {
	case "smFRET-usALEX", "smFRET-usALEX-3c":
		if !pf.HasObject(base + "/alex_period") {
			missing(base + "/alex_period")
		}
	case "smFRET-nsALEX":
		for _, path := range []string{
			base + "/laser_pulse_rate",
			"/photon_data/nanotimes",
			"/photon_data/nanotimes_specs/tcspc_unit",
			"/photon_data/nanotimes_specs/tcspc_range",
			"/photon_data/nanotimes_specs/tcspc_num_bins",
		} {
			if !pf.HasObject(path) {
				missing(path)
			}
		}
	}
	return problems
}

func checkSetup(pf *PhotonFile) []error {
	var problems []error
	for _, name := range []string{
		"num_pixels", "num_spots", "num_spectral_ch",
		"num_polarization_ch", "num_split_ch",
		"modulated_excitation", "lifetime",
	} {
		path := "/setup/" + name
		if !pf.HasObject(path) {
			problems = append(problems, &InvalidPhotonHDF5{Path: path, Msg: "mandatory field missing"})
		}
	}
	return problems
}
