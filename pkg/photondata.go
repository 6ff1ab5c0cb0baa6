package phconvert

// PhotonData bundles the three index-aligned arrays describing one
// acquisition: the absolute arrival time in sync ticks, the detector channel
// and the sub-sync (TCSPC) arrival time of every record. The arrays always
// have the same length.
type PhotonData struct {
	Timestamps []int64
	Detectors  []uint8
	Nanotimes  []uint16
}

func NewPhotonData(capacity int) *PhotonData {
	return &PhotonData{
		Timestamps: make([]int64, 0, capacity),
		Detectors:  make([]uint8, 0, capacity),
		Nanotimes:  make([]uint16, 0, capacity),
	}
}

func (p *PhotonData) Len() int {
	return len(p.Timestamps)
}

func (p *PhotonData) append(timestamp int64, detector uint8, nanotime uint16) {
	p.Timestamps = append(p.Timestamps, timestamp)
	p.Detectors = append(p.Detectors, detector)
	p.Nanotimes = append(p.Nanotimes, nanotime)
}

// Aligned reports whether the three arrays still have equal length.
func (p *PhotonData) Aligned() bool {
	return len(p.Timestamps) == len(p.Detectors) &&
		len(p.Detectors) == len(p.Nanotimes)
}

// RemoveOverflow drops every record whose nanotime is zero, the loader
// convention for overflow and marker entries. All three arrays are filtered
// in place with the same mask, so index alignment is preserved. Returns the
// number of records dropped. Applying the filter twice is a no-op.
func (p *PhotonData) RemoveOverflow() int {
	out := 0
	for i, nt := range p.Nanotimes {
		if nt == 0 {
			continue
		}
		p.Timestamps[out] = p.Timestamps[i]
		p.Detectors[out] = p.Detectors[i]
		p.Nanotimes[out] = p.Nanotimes[i]
		out++
	}
	dropped := len(p.Nanotimes) - out
	p.Timestamps = p.Timestamps[:out]
	p.Detectors = p.Detectors[:out]
	p.Nanotimes = p.Nanotimes[:out]
	return dropped
}
