package phconvert

// T3-mode record layout (32 bits, little endian):
// channel:4 | dtime:12 | nsync:16
type T3Record uint32

const (
	// SpecialChannel marks overflow and external-marker records.
	SpecialChannel = 15

	// NSyncWrap is the sync counter range; one overflow record advances the
	// absolute timestamp by this amount.
	NSyncWrap = 65536

	// RoutingChannels is the number of router inputs on a PicoHarp 300.
	RoutingChannels = 4

	// TCSPCNumBins is the number of dtime bins in T3 mode (12 bits).
	TCSPCNumBins = 4096
)

func (r T3Record) NSync() uint16 {
	return uint16(r & 0xFFFF)
}

func (r T3Record) DTime() uint16 {
	return uint16((r >> 16) & 0x0FFF)
}

func (r T3Record) Channel() uint8 {
	return uint8(r >> 28)
}

func (r T3Record) IsSpecial() bool {
	return r.Channel() == SpecialChannel
}

// IsOverflow reports whether the record is a sync-counter overflow. Overflow
// records carry a zero dtime; marker records reuse the dtime field for the
// marker bits.
func (r T3Record) IsOverflow() bool {
	return r.IsSpecial() && r.DTime() == 0
}

func (r T3Record) IsMarker() bool {
	return r.IsSpecial() && r.DTime() != 0
}

func (r T3Record) MarkerBits() uint16 {
	return r.DTime()
}
