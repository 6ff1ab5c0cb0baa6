package phconvert

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alternationPhotons() *PhotonData {
	data := NewPhotonData(0)
	// Six photons in the donor window, three in the acceptor window, one
	// outside both.
	for _, nt := range []uint16{200, 400, 600, 800, 1000, 1200} {
		data.append(int64(nt), 1, nt)
	}
	for _, nt := range []uint16{1600, 2000, 2400} {
		data.append(int64(nt), 2, nt)
	}
	data.append(4000, 1, 3500)
	return data
}

func TestCountWindows(t *testing.T) {
	donor, acceptor, unclassified := CountWindows(alternationPhotons(), DefaultSetup())
	assert.Equal(t, 6, donor)
	assert.Equal(t, 3, acceptor)
	assert.Equal(t, 1, unclassified)
}

func TestAlternationHistogram(t *testing.T) {
	hist, err := NewAlternationHistogram(alternationPhotons(), DefaultSetup(), 8)
	require.NoError(t, err)

	require.Len(t, hist.Counts, 8)
	require.Len(t, hist.Dividers, 9)
	assert.Equal(t, 10, hist.Total)

	total := 0.0
	for _, count := range hist.Counts {
		total += count
	}
	assert.Equal(t, 10.0, total)

	// Bins are 512 wide: the six donor photons land in bins 0-2, the three
	// acceptor photons in bins 3-4.
	assert.InDelta(t, 0.0, hist.Counts[7], 1e-9)
	assert.Greater(t, hist.DonorFraction(), hist.AcceptorFraction())
}

func TestAlternationHistogramDeepTCSPCRange(t *testing.T) {
	// A 15-bit TCSPC instrument produces nanotimes past the 4096-bin default
	// range; they must land in the top bin, not blow up the binning.
	data := NewPhotonData(0)
	data.append(100, 1, 100)
	data.append(200, 1, 5000)
	data.append(300, 2, 32767)

	hist, err := NewAlternationHistogram(data, DefaultSetup(), 8)
	require.NoError(t, err)

	require.Len(t, hist.Counts, 8)
	assert.Equal(t, 32768.0, hist.Dividers[len(hist.Dividers)-1])

	total := 0.0
	for _, count := range hist.Counts {
		total += count
	}
	assert.Equal(t, 3.0, total)
	assert.Equal(t, 1.0, hist.Counts[len(hist.Counts)-1])
}

func TestAlternationHistogramEmpty(t *testing.T) {
	_, err := NewAlternationHistogram(NewPhotonData(0), DefaultSetup(), 8)
	var empty *ErrEmptyPhotonData
	require.ErrorAs(t, err, &empty)

	_, err = NewAlternationHistogram(alternationPhotons(), DefaultSetup(), 0)
	require.Error(t, err)
}

func TestAlternationSavePlot(t *testing.T) {
	hist, err := NewAlternationHistogram(alternationPhotons(), DefaultSetup(), 16)
	require.NoError(t, err)

	filename := filepath.Join(t.TempDir(), "hist.png")
	require.NoError(t, hist.SavePlot(filename))

	info, err := os.Stat(filename)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestAlternationRenderReport(t *testing.T) {
	hist, err := NewAlternationHistogram(alternationPhotons(), DefaultSetup(), 16)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, hist.RenderReport(&buf))
	assert.Contains(t, buf.String(), "TCSPC nanotime histogram")
}
