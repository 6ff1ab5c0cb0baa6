package phconvert

import (
	"errors"
	"fmt"

	hdf5 "github.com/scigolib/hdf5"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Writer serializes Records to Photon-HDF5 files.
type Writer struct {
	File     *hdf5.FileWriter
	Filename string
}

func NewWriter(filename string) (*Writer, error) {
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Creating file %s", filename), "writer")
	}
	fw, err := openFile(filename)
	if err != nil {
		return nil, err
	}
	return &Writer{File: fw, Filename: filename}, nil
}

func (w *Writer) Close() error {
	if err := w.File.Close(); err != nil {
		return fmt.Errorf("error closing file %q: %w", w.Filename, err)
	}
	return nil
}

// SavePhotonHDF5 writes the record to filename and closes the file.
func SavePhotonHDF5(filename string, rec *Record) error {
	writer, err := NewWriter(filename)
	if err != nil {
		return err
	}
	writeErr := writer.WriteRecord(rec)
	closeErr := writer.Close()
	return errors.Join(writeErr, closeErr)
}

// WriteRecord lays out the full Photon-HDF5 structure. User metadata is
// checked before anything is written, so an invalid record does not leave a
// half-filled file behind.
func (w *Writer) WriteRecord(rec *Record) error {
	if rec.Photons == nil || rec.Photons.Len() == 0 {
		return &ErrEmptyPhotonData{}
	}

	if invalid := CheckUserMetadata(rec.User); len(invalid) > 0 {
		if !configuration.DropInvalidUser {
			return &ErrInvalidUserMetadata{Paths: invalid}
		}
		dropped := PruneUserMetadata(rec.User)
		for _, path := range dropped {
			logger.Error("dropping unserializable user metadata field " + path)
		}
	}

	if err := w.writeRoot(rec); err != nil {
		return err
	}
	if err := w.writePhotonData(rec); err != nil {
		return err
	}
	if err := w.writeSetup(rec.Setup); err != nil {
		return err
	}
	if err := w.writeSample(rec.Sample); err != nil {
		return err
	}
	if err := w.writeStringGroup("/identity", rec.Identity.toMap(w.Filename)); err != nil {
		return err
	}
	if err := w.writeStringGroup("/provenance", provenanceMap(rec.SourceFilename)); err != nil {
		return err
	}
	if len(rec.User) > 0 {
		if err := createGroup(w.File, "/user"); err != nil {
			return err
		}
		if err := w.writeTree("/user", rec.User); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeRoot(rec *Record) error {
	if err := writeString(w.File, "/description", rec.Description,
		fieldDescription("/description")); err != nil {
		return err
	}
	if err := writeString(w.File, "/comment", rec.Comment,
		fieldDescription("/comment")); err != nil {
		return err
	}
	return writeLeaf(w.File, "/acquisition_time", rec.AcquisitionTime,
		fieldDescription("/acquisition_time"), false)
}

func (w *Writer) writePhotonData(rec *Record) error {
	for _, group := range []string{
		"/photon_data",
		"/photon_data/timestamps_specs",
		"/photon_data/nanotimes_specs",
		"/photon_data/measurement_specs",
		"/photon_data/measurement_specs/detectors_specs",
	} {
		if err := createGroup(w.File, group); err != nil {
			return err
		}
	}

	photons := rec.Photons
	if err := writeLeaf(w.File, "/photon_data/timestamps", photons.Timestamps,
		fieldDescription("/photon_data/timestamps"), true); err != nil {
		return err
	}
	// Detectors and nanotimes are widened to int32 on disk so they stay
	// readable by the pure-Go reader, which only decodes 4 and 8 byte
	// numeric types.
	detectors := make([]int32, len(photons.Detectors))
	for i, d := range photons.Detectors {
		detectors[i] = int32(d)
	}
	if err := writeLeaf(w.File, "/photon_data/detectors", detectors,
		fieldDescription("/photon_data/detectors"), true); err != nil {
		return err
	}
	nanotimes := make([]int32, len(photons.Nanotimes))
	for i, nt := range photons.Nanotimes {
		nanotimes[i] = int32(nt)
	}
	if err := writeLeaf(w.File, "/photon_data/nanotimes", nanotimes,
		fieldDescription("/photon_data/nanotimes"), true); err != nil {
		return err
	}

	if err := writeLeaf(w.File, "/photon_data/timestamps_specs/timestamps_unit",
		rec.TimestampsUnit,
		fieldDescription("/photon_data/timestamps_specs/timestamps_unit"), false); err != nil {
		return err
	}

	nanotimesSpecs := map[string]any{
		"tcspc_unit":     rec.TCSPCUnit,
		"tcspc_range":    rec.TCSPCRange,
		"tcspc_num_bins": rec.TCSPCBins,
		"time_reversed":  rec.TimeReversed,
	}
	for _, name := range sortedKeys(nanotimesSpecs) {
		path := "/photon_data/nanotimes_specs/" + name
		if err := writeLeaf(w.File, path, nanotimesSpecs[name],
			fieldDescription(path), false); err != nil {
			return err
		}
	}

	return w.writeMeasurementSpecs(rec.Setup)
}

func (w *Writer) writeMeasurementSpecs(setup SetupPreset) error {
	base := "/photon_data/measurement_specs"
	if err := writeString(w.File, base+"/measurement_type", setup.MeasurementType,
		fieldDescription(base+"/measurement_type")); err != nil {
		return err
	}
	if setup.AlexPeriod > 0 {
		if err := writeLeaf(w.File, base+"/alex_period", setup.AlexPeriod,
			fieldDescription(base+"/alex_period"), false); err != nil {
			return err
		}
	}
	if setup.LaserPulseRate > 0 {
		if err := writeLeaf(w.File, base+"/laser_pulse_rate", setup.LaserPulseRate,
			fieldDescription(base+"/laser_pulse_rate"), false); err != nil {
			return err
		}
	}
	if setup.DonorStop > setup.DonorStart {
		window := []int64{setup.DonorStart, setup.DonorStop}
		if err := writeLeaf(w.File, base+"/alex_period_donor", window,
			fieldDescription(base+"/alex_period_donor"), false); err != nil {
			return err
		}
	}
	if setup.AcceptorStop > setup.AcceptorStart {
		window := []int64{setup.AcceptorStart, setup.AcceptorStop}
		if err := writeLeaf(w.File, base+"/alex_period_acceptor", window,
			fieldDescription(base+"/alex_period_acceptor"), false); err != nil {
			return err
		}
	}

	specs := base + "/detectors_specs"
	if err := writeLeaf(w.File, specs+"/spectral_ch1", []int64{setup.SpectralCh1},
		fieldDescription(specs+"/spectral_ch1"), false); err != nil {
		return err
	}
	return writeLeaf(w.File, specs+"/spectral_ch2", []int64{setup.SpectralCh2},
		fieldDescription(specs+"/spectral_ch2"), false)
}

func (w *Writer) writeSetup(setup SetupPreset) error {
	if err := createGroup(w.File, "/setup"); err != nil {
		return err
	}
	scalars := map[string]any{
		"num_pixels":           setup.NumPixels,
		"num_spots":            setup.NumSpots,
		"num_spectral_ch":      setup.NumSpectralCh,
		"num_polarization_ch":  setup.NumPolarizationCh,
		"num_split_ch":         setup.NumSplitCh,
		"modulated_excitation": setup.ModulatedExcitation,
		"lifetime":             setup.Lifetime,
	}
	for _, name := range sortedKeys(scalars) {
		path := "/setup/" + name
		if err := writeLeaf(w.File, path, scalars[name], fieldDescription(path), false); err != nil {
			return err
		}
	}

	if excitation := wavelengths(setup.ExcitationWl1, setup.ExcitationWl2); len(excitation) > 0 {
		if err := writeLeaf(w.File, "/setup/excitation_wavelengths", excitation,
			fieldDescription("/setup/excitation_wavelengths"), false); err != nil {
			return err
		}
	}
	if detection := wavelengths(setup.DetectionWl1, setup.DetectionWl2); len(detection) > 0 {
		if err := writeLeaf(w.File, "/setup/detection_wavelengths", detection,
			fieldDescription("/setup/detection_wavelengths"), false); err != nil {
			return err
		}
	}
	return nil
}

func wavelengths(wls ...float64) []float64 {
	var out []float64
	for _, wl := range wls {
		if wl > 0 {
			out = append(out, wl)
		}
	}
	return out
}

func (w *Writer) writeSample(sample SampleInfo) error {
	if err := createGroup(w.File, "/sample"); err != nil {
		return err
	}
	strings := map[string]string{
		"sample_name": sample.SampleName,
		"dye_names":   sample.DyeNames,
		"buffer_name": sample.BufferName,
	}
	for _, name := range sortedKeys(strings) {
		path := "/sample/" + name
		if err := writeString(w.File, path, strings[name], fieldDescription(path)); err != nil {
			return err
		}
	}
	return writeLeaf(w.File, "/sample/num_dyes", sample.NumDyes,
		fieldDescription("/sample/num_dyes"), false)
}

func (w *Writer) writeStringGroup(group string, fields map[string]any) error {
	if err := createGroup(w.File, group); err != nil {
		return err
	}
	return w.writeTree(group, fields)
}

// writeTree walks a nested map in sorted key order, creating sub-groups for
// map values and leaf datasets for everything else.
func (w *Writer) writeTree(prefix string, tree map[string]any) error {
	for _, name := range sortedKeys(tree) {
		path := prefix + "/" + name
		switch value := tree[name].(type) {
		case map[string]any:
			if err := createGroup(w.File, path); err != nil {
				return err
			}
			if err := w.writeTree(path, value); err != nil {
				return err
			}
		default:
			if err := writeLeaf(w.File, path, value, fieldDescription(path), false); err != nil {
				return err
			}
		}
	}
	return nil
}

// CheckUserMetadata returns the path of every field whose value cannot be
// stored as an HDF5 leaf, in sorted order. An empty result means the whole
// tree is serializable.
func CheckUserMetadata(tree map[string]any) []string {
	return walkInvalid("/user", tree, nil)
}

func walkInvalid(prefix string, tree map[string]any, acc []string) []string {
	for _, name := range sortedKeys(tree) {
		path := prefix + "/" + name
		switch value := tree[name].(type) {
		case map[string]any:
			acc = walkInvalid(path, value, acc)
		default:
			if !leafSerializable(value) {
				acc = append(acc, path)
			}
		}
	}
	return acc
}

// PruneUserMetadata removes every unserializable field in place and returns
// the pruned paths.
func PruneUserMetadata(tree map[string]any) []string {
	return pruneInvalid("/user", tree, nil)
}

func pruneInvalid(prefix string, tree map[string]any, acc []string) []string {
	for _, name := range sortedKeys(tree) {
		path := prefix + "/" + name
		switch value := tree[name].(type) {
		case map[string]any:
			acc = pruneInvalid(path, value, acc)
		default:
			if !leafSerializable(value) {
				delete(tree, name)
				acc = append(acc, path)
			}
		}
	}
	return acc
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
