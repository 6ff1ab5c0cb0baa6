package phconvert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveOverflow(t *testing.T) {
	data := &PhotonData{
		Timestamps: []int64{100, 200, 300, 400, 500},
		Detectors:  []uint8{1, 2, 1, 15, 1},
		Nanotimes:  []uint16{0, 5, 3, 0, 7},
	}

	dropped := data.RemoveOverflow()

	require.Equal(t, 2, dropped)
	assert.Equal(t, []int64{200, 300, 500}, data.Timestamps)
	assert.Equal(t, []uint8{2, 1, 1}, data.Detectors)
	assert.Equal(t, []uint16{5, 3, 7}, data.Nanotimes)
	assert.True(t, data.Aligned())
}

func TestRemoveOverflowIdempotent(t *testing.T) {
	data := &PhotonData{
		Timestamps: []int64{100, 200, 300},
		Detectors:  []uint8{1, 15, 2},
		Nanotimes:  []uint16{4, 0, 9},
	}

	require.Equal(t, 1, data.RemoveOverflow())
	require.Equal(t, 0, data.RemoveOverflow())
	assert.Equal(t, 2, data.Len())
}

func TestRemoveOverflowEmpty(t *testing.T) {
	data := NewPhotonData(0)
	assert.Equal(t, 0, data.RemoveOverflow())
	assert.Equal(t, 0, data.Len())
}

func TestT3RecordBits(t *testing.T) {
	// channel 2, dtime 0x123, nsync 0x4567
	record := T3Record(0x2<<28 | 0x123<<16 | 0x4567)
	assert.Equal(t, uint8(2), record.Channel())
	assert.Equal(t, uint16(0x123), record.DTime())
	assert.Equal(t, uint16(0x4567), record.NSync())
	assert.False(t, record.IsSpecial())

	overflow := T3Record(0xF << 28)
	assert.True(t, overflow.IsOverflow())
	assert.False(t, overflow.IsMarker())

	marker := T3Record(0xF<<28 | 0x5<<16)
	assert.True(t, marker.IsMarker())
	assert.False(t, marker.IsOverflow())
	assert.Equal(t, uint16(5), marker.MarkerBits())
}
