package phconvert

import (
	"fmt"

	hdf5 "github.com/scigolib/hdf5"
)

const maxChunkLen = 32768

func openFile(fname string) (*hdf5.FileWriter, error) {
	fw, err := hdf5.CreateForWrite(fname, hdf5.CreateTruncate)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return fw, nil
}

func createGroup(fw *hdf5.FileWriter, path string) error {
	if err := fw.CreateGroup(path); err != nil {
		return &ErrCreateGroup{GroupName: path, Err: err}
	}
	return nil
}

func chunkOpts(length int) []hdf5.DatasetOption {
	chunk := uint64(length)
	if chunk > maxChunkLen {
		chunk = maxChunkLen
	}
	opts := []hdf5.DatasetOption{hdf5.WithChunkDims([]uint64{chunk})}
	if level := configuration.CompressionLevel; level > 0 {
		opts = append(opts, hdf5.WithGZIPCompression(level))
	}
	return opts
}

func writeDataset(fw *hdf5.FileWriter, path string, dtype hdf5.Datatype,
	dims []uint64, data any, descr string, opts ...hdf5.DatasetOption) error {
	ds, err := fw.CreateDataset(path, dtype, dims, opts...)
	if err != nil {
		return &ErrCreateDataset{Path: path, Err: err}
	}
	if err := ds.Write(data); err != nil {
		return &ErrCreateDataset{Path: path, Err: err}
	}
	if descr != "" {
		if err := ds.WriteAttribute("TITLE", descr); err != nil {
			return &ErrCreateDataset{Path: path, Err: err}
		}
	}
	if err := ds.Close(); err != nil {
		return &ErrCreateDataset{Path: path, Err: err}
	}
	return nil
}

func writeString(fw *hdf5.FileWriter, path, value, descr string) error {
	// Zero-size string datatypes are rejected by the backend; an empty
	// string is stored as a single NUL byte, which reads back as "".
	size := uint32(len(value))
	if size == 0 {
		size = 1
	}
	return writeDataset(fw, path, hdf5.String, []uint64{1}, []string{value},
		descr, hdf5.WithStringSize(size))
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// writeLeaf stores a Go value as an HDF5 leaf dataset. The accepted types
// are exactly the ones leafSerializable admits; everything else is reported
// through ErrInvalidUserMetadata before the save starts.
func writeLeaf(fw *hdf5.FileWriter, path string, value any, descr string, chunked bool) error {
	var opts []hdf5.DatasetOption

	switch v := value.(type) {
	case string:
		return writeString(fw, path, v, descr)
	case bool:
		// Stored as int32: the reader side only decodes 4 and 8 byte
		// numeric types.
		return writeDataset(fw, path, hdf5.Int32, []uint64{1}, []int32{boolToInt32(v)}, descr)
	case int:
		return writeDataset(fw, path, hdf5.Int64, []uint64{1}, []int64{int64(v)}, descr)
	case int8:
		return writeDataset(fw, path, hdf5.Int8, []uint64{1}, []int8{v}, descr)
	case int16:
		return writeDataset(fw, path, hdf5.Int16, []uint64{1}, []int16{v}, descr)
	case int32:
		return writeDataset(fw, path, hdf5.Int32, []uint64{1}, []int32{v}, descr)
	case int64:
		return writeDataset(fw, path, hdf5.Int64, []uint64{1}, []int64{v}, descr)
	case uint8:
		return writeDataset(fw, path, hdf5.Uint8, []uint64{1}, []uint8{v}, descr)
	case uint16:
		return writeDataset(fw, path, hdf5.Uint16, []uint64{1}, []uint16{v}, descr)
	case uint32:
		return writeDataset(fw, path, hdf5.Uint32, []uint64{1}, []uint32{v}, descr)
	case uint64:
		return writeDataset(fw, path, hdf5.Uint64, []uint64{1}, []uint64{v}, descr)
	case float32:
		return writeDataset(fw, path, hdf5.Float32, []uint64{1}, []float32{v}, descr)
	case float64:
		return writeDataset(fw, path, hdf5.Float64, []uint64{1}, []float64{v}, descr)
	case []int64:
		if chunked {
			opts = chunkOpts(len(v))
		}
		return writeDataset(fw, path, hdf5.Int64, []uint64{uint64(len(v))}, v, descr, opts...)
	case []int32:
		if chunked {
			opts = chunkOpts(len(v))
		}
		return writeDataset(fw, path, hdf5.Int32, []uint64{uint64(len(v))}, v, descr, opts...)
	case []uint8:
		if chunked {
			opts = chunkOpts(len(v))
		}
		return writeDataset(fw, path, hdf5.Uint8, []uint64{uint64(len(v))}, v, descr, opts...)
	case []uint16:
		if chunked {
			opts = chunkOpts(len(v))
		}
		return writeDataset(fw, path, hdf5.Uint16, []uint64{uint64(len(v))}, v, descr, opts...)
	case []float32:
		if chunked {
			opts = chunkOpts(len(v))
		}
		return writeDataset(fw, path, hdf5.Float32, []uint64{uint64(len(v))}, v, descr, opts...)
	case []float64:
		if chunked {
			opts = chunkOpts(len(v))
		}
		return writeDataset(fw, path, hdf5.Float64, []uint64{uint64(len(v))}, v, descr, opts...)
	default:
		return &ErrCreateDataset{
			Path: path,
			Err:  fmt.Errorf("unsupported leaf type %T", value),
		}
	}
}

// leafSerializable reports whether writeLeaf can store the value.
func leafSerializable(value any) bool {
	switch value.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint8, uint16, uint32, uint64,
		float32, float64,
		[]int64, []int32, []uint8, []uint16, []float32, []float64:
		return true
	default:
		return false
	}
}
