package phconvert

import (
	"fmt"
	"strings"
)

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error { return e.Err }

// ErrBadFormat represents a malformed or unsupported input file.
type ErrBadFormat struct {
	Filename string
	Reason   string
}

func (e *ErrBadFormat) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("not a supported PicoQuant pt3 file: %s", e.Reason)
	}
	return fmt.Sprintf("file %q is not a supported PicoQuant pt3 file: %s", e.Filename, e.Reason)
}

// ErrCreateGroup represents an error when creating an HDF5 group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

func (e *ErrCreateGroup) Unwrap() error { return e.Err }

// ErrCreateDataset represents an error when creating or writing an HDF5 dataset.
type ErrCreateDataset struct {
	Path string
	Err  error
}

func (e *ErrCreateDataset) Error() string {
	return fmt.Sprintf("error writing dataset %q: %v", e.Path, e.Err)
}

func (e *ErrCreateDataset) Unwrap() error { return e.Err }

// ErrEmptyPhotonData is returned when a save is attempted with zero photons.
// The HDF5 backend cannot create zero-length datasets, so an empty stream
// (for example when every record was an overflow) is rejected up front.
type ErrEmptyPhotonData struct{}

func (e *ErrEmptyPhotonData) Error() string {
	return "photon stream is empty: no records left after overflow filtering"
}

// ErrInvalidUserMetadata lists every user-metadata path whose value cannot be
// serialized as an HDF5 leaf. Callers can drop the offending fields and retry.
type ErrInvalidUserMetadata struct {
	Paths []string
}

func (e *ErrInvalidUserMetadata) Error() string {
	return fmt.Sprintf("user metadata fields cannot be serialized: %s",
		strings.Join(e.Paths, ", "))
}

// InvalidPhotonHDF5 is raised when a file does not follow the Photon-HDF5
// structure.
type InvalidPhotonHDF5 struct {
	Path string
	Msg  string
}

func (e *InvalidPhotonHDF5) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid Photon-HDF5 file: %s", e.Msg)
	}
	return fmt.Sprintf("invalid Photon-HDF5 file: %s (at %q)", e.Msg, e.Path)
}
