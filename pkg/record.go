package phconvert

// Record is one acquisition ready to be saved: the photon arrays, their
// units, and the descriptive metadata groups of the Photon-HDF5 layout.
type Record struct {
	Description     string
	Comment         string
	AcquisitionTime float64

	Photons        *PhotonData
	TimestampsUnit float64
	TCSPCUnit      float64
	TCSPCRange     float64
	TCSPCBins      int64
	TimeReversed   bool

	Setup    SetupPreset
	Sample   SampleInfo
	Identity IdentityInfo

	// SourceFilename feeds the /provenance group.
	SourceFilename string

	// User holds free-form instrument metadata stored under /user.
	User map[string]any
}

// SampleInfo describes /sample.
type SampleInfo struct {
	SampleName string
	DyeNames   string
	BufferName string
	NumDyes    int64
}

// BuildRecord assembles a Record from a decoded pt3 file and the active
// configuration. The photon arrays are shared, not copied.
func BuildRecord(pt3 *PT3File, cfg Configuration) *Record {
	return &Record{
		Description:     cfg.Description,
		Comment:         cfg.Comment,
		AcquisitionTime: pt3.AcquisitionSeconds(),
		Photons:         pt3.Photons,
		TimestampsUnit:  pt3.TimestampsUnit(),
		TCSPCUnit:       pt3.NanotimesUnit(),
		TCSPCRange:      pt3.TCSPCRange(),
		TCSPCBins:       TCSPCNumBins,
		Setup:           cfg.Setup,
		Sample: SampleInfo{
			SampleName: cfg.SampleName,
			DyeNames:   cfg.DyeNames,
			BufferName: cfg.BufferName,
			NumDyes:    cfg.NumDyes,
		},
		Identity: IdentityInfo{
			Author:            cfg.Author,
			AuthorAffiliation: cfg.AuthorAffiliation,
		},
		SourceFilename: pt3.Filename,
		User:           pt3.Metadata(),
	}
}
