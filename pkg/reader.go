package phconvert

import (
	"fmt"
	"io"
	"sort"
	"strings"

	hdf5 "github.com/scigolib/hdf5"
)

// PhotonFile is an opened Photon-HDF5 file. Datasets are read lazily through
// the path-based accessors; the full object index is built once at open time.
type PhotonFile struct {
	Filename string
	file     *hdf5.File
	objects  map[string]hdf5.Object
}

// OpenPhotonHDF5 opens an existing Photon-HDF5 file for inspection.
// Dataset paths are stored without a trailing slash, group paths with one,
// except the root which is "/".
func OpenPhotonHDF5(filename string) (*PhotonFile, error) {
	f, err := hdf5.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	pf := &PhotonFile{
		Filename: filename,
		file:     f,
		objects:  make(map[string]hdf5.Object),
	}
	f.Walk(func(path string, obj hdf5.Object) {
		pf.objects[path] = obj
	})
	return pf, nil
}

func (pf *PhotonFile) Close() error {
	return pf.file.Close()
}

// Paths returns every object path in the file, sorted.
func (pf *PhotonFile) Paths() []string {
	paths := make([]string, 0, len(pf.objects))
	for path := range pf.objects {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Group looks up a group by path, accepting it with or without the trailing
// slash.
func (pf *PhotonFile) Group(path string) (*hdf5.Group, error) {
	if path != "/" && !strings.HasSuffix(path, "/") {
		path += "/"
	}
	obj, ok := pf.objects[path]
	if !ok {
		return nil, fmt.Errorf("group %q not found in %s", path, pf.Filename)
	}
	group, ok := obj.(*hdf5.Group)
	if !ok {
		return nil, fmt.Errorf("object %q in %s is not a group", path, pf.Filename)
	}
	return group, nil
}

// Dataset looks up a dataset by path.
func (pf *PhotonFile) Dataset(path string) (*hdf5.Dataset, error) {
	obj, ok := pf.objects[path]
	if !ok {
		return nil, fmt.Errorf("dataset %q not found in %s", path, pf.Filename)
	}
	dataset, ok := obj.(*hdf5.Dataset)
	if !ok {
		return nil, fmt.Errorf("object %q in %s is not a dataset", path, pf.Filename)
	}
	return dataset, nil
}

// HasObject reports whether a group or dataset exists at the given path.
func (pf *PhotonFile) HasObject(path string) bool {
	if _, ok := pf.objects[path]; ok {
		return true
	}
	_, ok := pf.objects[path+"/"]
	return ok
}

// ReadFloats reads a numeric dataset, converted to float64.
func (pf *PhotonFile) ReadFloats(path string) ([]float64, error) {
	dataset, err := pf.Dataset(path)
	if err != nil {
		return nil, err
	}
	return dataset.Read()
}

// ReadScalar reads a single-element numeric dataset.
func (pf *PhotonFile) ReadScalar(path string) (float64, error) {
	values, err := pf.ReadFloats(path)
	if err != nil {
		return 0, err
	}
	if len(values) != 1 {
		return 0, fmt.Errorf("dataset %q holds %d values, expected a scalar", path, len(values))
	}
	return values[0], nil
}

// ReadString reads a scalar string dataset.
func (pf *PhotonFile) ReadString(path string) (string, error) {
	dataset, err := pf.Dataset(path)
	if err != nil {
		return "", err
	}
	values, err := dataset.ReadStrings()
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", nil
	}
	return values[0], nil
}

// PrintChildren lists the direct members of a group, with a short preview of
// dataset contents and each member's TITLE description when present.
func (pf *PhotonFile) PrintChildren(w io.Writer, groupPath string) error {
	group, err := pf.Group(groupPath)
	if err != nil {
		return err
	}
	for _, child := range group.Children() {
		switch obj := child.(type) {
		case *hdf5.Group:
			fmt.Fprintf(w, "%s/ (Group)\n", child.Name())
		case *hdf5.Dataset:
			fmt.Fprintf(w, "%s: %s\n", child.Name(), datasetPreview(obj))
			if title, err := obj.ReadAttribute("TITLE"); err == nil {
				fmt.Fprintf(w, "    %v\n", title)
			}
		}
	}
	return nil
}

// PrintAttrs prints the attributes attached to a dataset.
func (pf *PhotonFile) PrintAttrs(w io.Writer, path string) error {
	dataset, err := pf.Dataset(path)
	if err != nil {
		return err
	}
	attrs, err := dataset.Attributes()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s attributes:\n", path)
	for _, attr := range attrs {
		value, err := attr.ReadValue()
		if err != nil {
			fmt.Fprintf(w, "    %s: <unreadable: %v>\n", attr.Name, err)
			continue
		}
		fmt.Fprintf(w, "    %s: %v\n", attr.Name, value)
	}
	return nil
}

const previewElements = 4

func datasetPreview(dataset *hdf5.Dataset) string {
	if values, err := dataset.Read(); err == nil {
		if len(values) == 1 {
			return fmt.Sprintf("%v", values[0])
		}
		if len(values) <= previewElements {
			return fmt.Sprintf("%v (%d values)", values, len(values))
		}
		return fmt.Sprintf("%v ... (%d values)", values[:previewElements], len(values))
	}
	if values, err := dataset.ReadStrings(); err == nil && len(values) > 0 {
		return fmt.Sprintf("%q", values[0])
	}
	return "<unreadable>"
}

// LoadPhotonHDF5 opens a file and validates it before handing it back.
func LoadPhotonHDF5(filename string, strict bool) (*PhotonFile, error) {
	pf, err := OpenPhotonHDF5(filename)
	if err != nil {
		return nil, err
	}
	if err := ValidatePhotonHDF5(pf, strict); err != nil {
		pf.Close()
		return nil, err
	}
	return pf, nil
}

// Tree reads a whole group recursively into a nested map: sub-groups become
// nested maps, numeric datasets []float64 (scalars unwrapped), string
// datasets strings.
func (pf *PhotonFile) Tree(groupPath string) (map[string]any, error) {
	group, err := pf.Group(groupPath)
	if err != nil {
		return nil, err
	}
	prefix := groupPath
	if prefix == "/" {
		prefix = ""
	} else {
		prefix = strings.TrimSuffix(prefix, "/")
	}

	tree := make(map[string]any)
	for _, child := range group.Children() {
		switch obj := child.(type) {
		case *hdf5.Group:
			sub, err := pf.Tree(prefix + "/" + child.Name())
			if err != nil {
				return nil, err
			}
			tree[child.Name()] = sub
		case *hdf5.Dataset:
			if values, err := obj.Read(); err == nil {
				if len(values) == 1 {
					tree[child.Name()] = values[0]
				} else {
					tree[child.Name()] = values
				}
				continue
			}
			values, err := obj.ReadStrings()
			if err != nil {
				return nil, fmt.Errorf("error reading dataset %q in %s: %w",
					child.Name(), pf.Filename, err)
			}
			if len(values) == 1 {
				tree[child.Name()] = values[0]
			} else {
				tree[child.Name()] = values
			}
		}
	}
	return tree, nil
}

// LoadPhotonData reads the three photon arrays back from a Photon-HDF5 file.
func (pf *PhotonFile) LoadPhotonData() (*PhotonData, error) {
	timestamps, err := pf.ReadFloats("/photon_data/timestamps")
	if err != nil {
		return nil, err
	}
	detectors, err := pf.ReadFloats("/photon_data/detectors")
	if err != nil {
		return nil, err
	}
	nanotimes, err := pf.ReadFloats("/photon_data/nanotimes")
	if err != nil {
		return nil, err
	}
	if len(detectors) != len(timestamps) || len(nanotimes) != len(timestamps) {
		return nil, fmt.Errorf("photon arrays in %s have mismatched lengths", pf.Filename)
	}
	data := NewPhotonData(len(timestamps))
	for i := range timestamps {
		data.append(int64(timestamps[i]), uint8(detectors[i]), uint16(nanotimes[i]))
	}
	return data, nil
}
