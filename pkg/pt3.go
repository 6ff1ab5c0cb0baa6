package phconvert

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// Header layout of a PicoHarp 300 T3-mode file. All fields are little
// endian. The three fixed blocks (text, binary, board) are followed by the
// T3-specific block and the record stream.

type TextHeaderStruct struct {
	Ident          [16]byte
	FormatVersion  [6]byte
	CreatorName    [18]byte
	CreatorVersion [12]byte
	FileTime       [18]byte
	CRLF           [2]byte
	Comment        [256]byte
}

type DisplayCurveStruct struct {
	MapTo int32
	Show  int32
}

type ParamStruct struct {
	Start float32
	Step  float32
	End   float32
}

type BinaryHeaderStruct struct {
	Curves            int32
	BitsPerRecord     int32
	RoutingChannels   int32
	NumberOfBoards    int32
	ActiveCurve       int32
	MeasurementMode   int32
	SubMode           int32
	RangeNo           int32
	Offset            int32
	AcquisitionTime   int32 // ms
	StopAt            int32
	StopOnOvfl        int32
	Restart           int32
	DispLinLog        int32
	DispTimeAxisFrom  int32
	DispTimeAxisTo    int32
	DispCountAxisFrom int32
	DispCountAxisTo   int32
	DispCurves        [8]DisplayCurveStruct
	Params            [3]ParamStruct
	RepeatMode        int32
	RepeatsPerCurve   int32
	RepeatTime        int32
	RepeatWaitTime    int32
	ScriptName        [20]byte
}

type RouterChannelStruct struct {
	InputType    int32
	InputLevel   int32
	InputEdge    int32
	CFDPresent   int32
	CFDLevel     int32
	CFDZeroCross int32
}

type BoardHeaderStruct struct {
	HardwareIdent   [16]byte
	HardwareVersion [8]byte
	HardwareSerial  int32
	SyncDivider     int32
	CFDZeroCross0   int32
	CFDLevel0       int32
	CFDZeroCross1   int32
	CFDLevel1       int32
	Resolution      float32 // ns per dtime bin
	RouterModelCode int32
	RouterEnabled   int32
	RtChannels      [RoutingChannels]RouterChannelStruct
}

type T3HeaderStruct struct {
	ExtDevices int32
	Reserved1  int32
	Reserved2  int32
	InpRate0   int32 // sync rate in Hz
	InpRate1   int32
	StopAfter  int32
	StopReason int32
	NumRecords int32
	ImgHdrSize int32
}

const (
	pt3Ident         = "PicoHarp 300"
	pt3FormatVersion = "2.0"
	// MeasurementMode value for T3 files.
	measurementModeT3 = 3
)

// PT3File is one decoded acquisition: the four header blocks plus the
// photon record arrays.
type PT3File struct {
	Filename string
	Text     TextHeaderStruct
	Binary   BinaryHeaderStruct
	Board    BoardHeaderStruct
	T3       T3HeaderStruct
	Photons  *PhotonData
	Markers  int
	Overflow int
}

// ReadPT3 opens and decodes a .pt3 file.
func ReadPT3(filename string) (*PT3File, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	pt3, err := DecodePT3(file)
	if err != nil {
		if bad, ok := err.(*ErrBadFormat); ok {
			bad.Filename = filename
		}
		return nil, err
	}
	pt3.Filename = filename
	return pt3, nil
}

// DecodePT3 decodes a pt3 stream. The record arrays include overflow and
// marker entries with a zero nanotime; callers drop them with
// PhotonData.RemoveOverflow.
func DecodePT3(r io.Reader) (*PT3File, error) {
	pt3 := &PT3File{}

	if err := binary.Read(r, binary.LittleEndian, &pt3.Text); err != nil {
		return nil, &ErrBadFormat{Reason: fmt.Sprintf("short text header: %v", err)}
	}
	if ident := cstr(pt3.Text.Ident[:]); ident != pt3Ident {
		return nil, &ErrBadFormat{Reason: fmt.Sprintf("ident %q, want %q", ident, pt3Ident)}
	}
	if version := cstr(pt3.Text.FormatVersion[:]); version != pt3FormatVersion {
		return nil, &ErrBadFormat{Reason: fmt.Sprintf("format version %q, want %q", version, pt3FormatVersion)}
	}

	if err := binary.Read(r, binary.LittleEndian, &pt3.Binary); err != nil {
		return nil, &ErrBadFormat{Reason: fmt.Sprintf("short binary header: %v", err)}
	}
	if pt3.Binary.MeasurementMode != measurementModeT3 {
		return nil, &ErrBadFormat{
			Reason: fmt.Sprintf("measurement mode %d, want %d (T3)", pt3.Binary.MeasurementMode, measurementModeT3),
		}
	}

	if err := binary.Read(r, binary.LittleEndian, &pt3.Board); err != nil {
		return nil, &ErrBadFormat{Reason: fmt.Sprintf("short board header: %v", err)}
	}
	if err := binary.Read(r, binary.LittleEndian, &pt3.T3); err != nil {
		return nil, &ErrBadFormat{Reason: fmt.Sprintf("short T3 header: %v", err)}
	}

	// Imaging header is not used, skip it.
	if pt3.T3.ImgHdrSize > 0 {
		imgHdr := make([]int32, pt3.T3.ImgHdrSize)
		if err := binary.Read(r, binary.LittleEndian, &imgHdr); err != nil {
			return nil, &ErrBadFormat{Reason: fmt.Sprintf("short imaging header: %v", err)}
		}
	}

	nRecords := int(pt3.T3.NumRecords)
	if nRecords < 0 {
		return nil, &ErrBadFormat{Reason: fmt.Sprintf("negative record count %d", nRecords)}
	}
	maxRecords := configuration.MaxRecords
	if maxRecords > 0 && nRecords > maxRecords {
		if configuration.Verbosity > 0 {
			message := fmt.Sprintf("Reading %d of %d records", maxRecords, nRecords)
			logger.Info(message, "pt3")
		}
		nRecords = maxRecords
	}

	raw := make([]uint32, nRecords)
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return nil, &ErrBadFormat{Reason: fmt.Sprintf("short record stream: %v", err)}
	}

	photons := NewPhotonData(nRecords)
	var wrap int64
	for _, word := range raw {
		record := T3Record(word)
		timestamp := wrap + int64(record.NSync())
		switch {
		case record.IsOverflow():
			wrap += NSyncWrap
			pt3.Overflow++
			photons.append(timestamp, record.Channel(), 0)
		case record.IsMarker():
			pt3.Markers++
			photons.append(timestamp, record.Channel(), 0)
		default:
			photons.append(timestamp, record.Channel(), record.DTime())
		}
	}
	pt3.Photons = photons

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Decoded %d records (%d overflows, %d markers)",
			photons.Len(), pt3.Overflow, pt3.Markers)
		logger.Info(message, "pt3")
	}
	return pt3, nil
}

// TimestampsUnit is the sync period in seconds.
func (f *PT3File) TimestampsUnit() float64 {
	if f.T3.InpRate0 <= 0 {
		return 0
	}
	return 1.0 / float64(f.T3.InpRate0)
}

// NanotimesUnit is the TCSPC bin width in seconds.
func (f *PT3File) NanotimesUnit() float64 {
	return float64(f.Board.Resolution) * 1e-9
}

// TCSPCRange is the full dtime span in seconds.
func (f *PT3File) TCSPCRange() float64 {
	return f.NanotimesUnit() * TCSPCNumBins
}

// AcquisitionSeconds converts the header acquisition time from ms.
func (f *PT3File) AcquisitionSeconds() float64 {
	return float64(f.Binary.AcquisitionTime) / 1000.0
}

// Metadata returns the raw instrument header as a nested map, the way it is
// stored under /user in the output file. The display_curves and params
// sub-trees are slices of mappings, which no HDF5 leaf type can represent;
// CheckUserMetadata reports them and DropInvalidUser removes them.
func (f *PT3File) Metadata() map[string]any {
	displayCurves := make([]any, len(f.Binary.DispCurves))
	for i, dc := range f.Binary.DispCurves {
		displayCurves[i] = map[string]any{
			"map_to": dc.MapTo,
			"show":   dc.Show,
		}
	}
	params := make([]any, len(f.Binary.Params))
	for i, p := range f.Binary.Params {
		params[i] = map[string]any{
			"start": p.Start,
			"step":  p.Step,
			"end":   p.End,
		}
	}

	return map[string]any{
		"picoquant": map[string]any{
			"file": map[string]any{
				"ident":           cstr(f.Text.Ident[:]),
				"format_version":  cstr(f.Text.FormatVersion[:]),
				"creator_name":    cstr(f.Text.CreatorName[:]),
				"creator_version": cstr(f.Text.CreatorVersion[:]),
				"file_time":       cstr(f.Text.FileTime[:]),
				"comment":         cstr(f.Text.Comment[:]),
			},
			"acquisition": map[string]any{
				"measurement_mode":    f.Binary.MeasurementMode,
				"sub_mode":            f.Binary.SubMode,
				"range_no":            f.Binary.RangeNo,
				"offset":              f.Binary.Offset,
				"acquisition_time_ms": f.Binary.AcquisitionTime,
				"stop_at":             f.Binary.StopAt,
				"stop_on_overflow":    f.Binary.StopOnOvfl,
				"restart":             f.Binary.Restart,
				"routing_channels":    f.Binary.RoutingChannels,
				"bits_per_record":     f.Binary.BitsPerRecord,
				"sync_rate":           f.T3.InpRate0,
				"input_rate":          f.T3.InpRate1,
				"stop_after":          f.T3.StopAfter,
				"stop_reason":         f.T3.StopReason,
				"number_of_records":   f.T3.NumRecords,
				"ext_devices":         f.T3.ExtDevices,
				"overflow_records":    int32(f.Overflow),
				"marker_records":      int32(f.Markers),
			},
			"hardware": map[string]any{
				"hardware_ident":    cstr(f.Board.HardwareIdent[:]),
				"hardware_version":  cstr(f.Board.HardwareVersion[:]),
				"hardware_serial":   f.Board.HardwareSerial,
				"sync_divider":      f.Board.SyncDivider,
				"cfd_zero_cross0":   f.Board.CFDZeroCross0,
				"cfd_level0":        f.Board.CFDLevel0,
				"cfd_zero_cross1":   f.Board.CFDZeroCross1,
				"cfd_level1":        f.Board.CFDLevel1,
				"resolution_ns":     f.Board.Resolution,
				"router_model_code": f.Board.RouterModelCode,
				"router_enabled":    f.Board.RouterEnabled,
			},
			"display_curves": displayCurves,
			"params":         params,
		},
	}
}

// cstr converts a fixed-size header field to a Go string, stopping at the
// first NUL.
func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimRight(string(b), "\r\n ")
}
